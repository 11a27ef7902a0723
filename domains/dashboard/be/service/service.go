// Package service aggregates per-organization metrics for the dashboard.
// It only reads: everything comes from counters exposed by the resource
// services.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	candidates "github.com/hireline/talenttrack/domains/candidates/be/service"
	jobs "github.com/hireline/talenttrack/domains/jobs/be/service"
)

// JobMetrics counts postings per lifecycle status.
type JobMetrics struct {
	Open   int64 `json:"open"`
	Closed int64 `json:"closed"`
	Paused int64 `json:"paused"`
}

// InterviewMetrics counts scheduled interviews in the two standing windows.
type InterviewMetrics struct {
	Today    int64 `json:"today"`
	ThisWeek int64 `json:"thisWeek"`
}

// Metrics is the dashboard snapshot for one organization.
type Metrics struct {
	Jobs       JobMetrics                  `json:"jobs"`
	Candidates map[candidates.Status]int64 `json:"candidates"`
	Interviews InterviewMetrics            `json:"interviews"`
}

// JobCounter counts jobs per status.
type JobCounter interface {
	CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[jobs.Status]int64, error)
}

// CandidateCounter counts candidates per pipeline stage.
type CandidateCounter interface {
	CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[candidates.Status]int64, error)
}

// InterviewCounter counts scheduled interviews inside [from, to).
type InterviewCounter interface {
	CountScheduledBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (int64, error)
}

// Service computes dashboard metrics.
type Service struct {
	jobs       JobCounter
	candidates CandidateCounter
	interviews InterviewCounter
	now        func() time.Time
}

// New constructs a Service with required dependencies.
func New(jobs JobCounter, candidates CandidateCounter, interviews InterviewCounter) *Service {
	if jobs == nil {
		panic("job counter is required")
	}
	if candidates == nil {
		panic("candidate counter is required")
	}
	if interviews == nil {
		panic("interview counter is required")
	}
	return &Service{jobs: jobs, candidates: candidates, interviews: interviews, now: time.Now}
}

// WithClock overrides the time source. Tests only.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Metrics builds the snapshot for one organization. Today runs from UTC
// midnight; the week runs Sunday to Sunday, also in UTC.
func (s *Service) Metrics(ctx context.Context, tenantID uuid.UUID) (Metrics, error) {
	jobCounts, err := s.jobs.CountByStatus(ctx, tenantID)
	if err != nil {
		return Metrics{}, fmt.Errorf("count jobs: %w", err)
	}

	candidateCounts, err := s.candidates.CountByStatus(ctx, tenantID)
	if err != nil {
		return Metrics{}, fmt.Errorf("count candidates: %w", err)
	}
	if candidateCounts == nil {
		candidateCounts = map[candidates.Status]int64{}
	}

	now := s.now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekStart := dayStart.AddDate(0, 0, -int(dayStart.Weekday()))

	today, err := s.interviews.CountScheduledBetween(ctx, tenantID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return Metrics{}, fmt.Errorf("count interviews today: %w", err)
	}
	week, err := s.interviews.CountScheduledBetween(ctx, tenantID, weekStart, weekStart.AddDate(0, 0, 7))
	if err != nil {
		return Metrics{}, fmt.Errorf("count interviews this week: %w", err)
	}

	return Metrics{
		Jobs: JobMetrics{
			Open:   jobCounts[jobs.StatusOpen],
			Closed: jobCounts[jobs.StatusClosed],
			Paused: jobCounts[jobs.StatusPaused],
		},
		Candidates: candidateCounts,
		Interviews: InterviewMetrics{Today: today, ThisWeek: week},
	}, nil
}
