package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	candidates "github.com/hireline/talenttrack/domains/candidates/be/service"
	"github.com/hireline/talenttrack/domains/dashboard/be/service"
	jobs "github.com/hireline/talenttrack/domains/jobs/be/service"
)

type stubJobCounter map[jobs.Status]int64

func (s stubJobCounter) CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[jobs.Status]int64, error) {
	return s, nil
}

type stubCandidateCounter map[candidates.Status]int64

func (s stubCandidateCounter) CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[candidates.Status]int64, error) {
	return s, nil
}

type windowRecorder struct {
	calls [][2]time.Time
}

func (w *windowRecorder) CountScheduledBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (int64, error) {
	w.calls = append(w.calls, [2]time.Time{from, to})
	return int64(len(w.calls)), nil
}

func TestMetricsWindows(t *testing.T) {
	ctx := context.Background()

	recorder := &windowRecorder{}
	svc := service.New(
		stubJobCounter{jobs.StatusOpen: 3, jobs.StatusClosed: 1},
		stubCandidateCounter{candidates.StatusApplied: 5},
		recorder,
	)
	// A Wednesday, 14:30 UTC.
	svc.WithClock(func() time.Time {
		return time.Date(2026, 3, 11, 14, 30, 0, 0, time.UTC)
	})

	m, err := svc.Metrics(ctx, uuid.New())
	require.NoError(t, err)

	require.Equal(t, int64(3), m.Jobs.Open)
	require.Equal(t, int64(1), m.Jobs.Closed)
	require.Equal(t, int64(0), m.Jobs.Paused)
	require.Equal(t, int64(5), m.Candidates[candidates.StatusApplied])

	require.Len(t, recorder.calls, 2)

	day := recorder.calls[0]
	require.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), day[0])
	require.Equal(t, time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC), day[1])

	// The week window runs Sunday to Sunday.
	week := recorder.calls[1]
	require.Equal(t, time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), week[0])
	require.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), week[1])

	require.Equal(t, int64(1), m.Interviews.Today)
	require.Equal(t, int64(2), m.Interviews.ThisWeek)
}

func TestMetricsEmptyCounts(t *testing.T) {
	ctx := context.Background()

	svc := service.New(stubJobCounter{}, stubCandidateCounter(nil), &windowRecorder{})
	m, err := svc.Metrics(ctx, uuid.New())
	require.NoError(t, err)
	require.Zero(t, m.Jobs.Open)
	require.NotNil(t, m.Candidates)
	require.Empty(t, m.Candidates)
}
