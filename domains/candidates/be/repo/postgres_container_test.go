package repo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/hireline/talenttrack/domains/candidates/be/service"
	interviewsrepo "github.com/hireline/talenttrack/domains/interviews/be/repo"
	interviewsservice "github.com/hireline/talenttrack/domains/interviews/be/service"
	jobsrepo "github.com/hireline/talenttrack/domains/jobs/be/repo"
	jobsservice "github.com/hireline/talenttrack/domains/jobs/be/service"
	tenantsrepo "github.com/hireline/talenttrack/domains/tenants/be/repo"
	tenantsservice "github.com/hireline/talenttrack/domains/tenants/be/service"
	"github.com/hireline/talenttrack/platform/go/persistence"
)

// Spins up a throwaway Postgres and walks the whole relational chain:
// tenant, job, candidate, interview, including the unique constraints
// each repository maps to a domain error.
func TestPostgresPipelineWithContainer(t *testing.T) {
	t.Parallel()

	if testing.Short() {
		t.Skip("skipping container integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("talenttrack"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(wait.ForListeningPort("5432/tcp").WithStartupTimeout(2*time.Minute)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = pgContainer.Terminate(context.Background())
	})

	connString, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := persistence.NewPool(ctx, persistence.PoolConfig{ConnString: connString})
	require.NoError(t, err)
	t.Cleanup(func() { persistence.ClosePool(pool) })

	// Constructors run DDL, so creation order follows the foreign keys.
	tenants, err := tenantsrepo.NewPostgresRepository(ctx, pool)
	require.NoError(t, err)
	jobs, err := jobsrepo.NewPostgresRepository(ctx, pool)
	require.NoError(t, err)
	candidates, err := NewPostgresRepository(ctx, pool)
	require.NoError(t, err)
	interviews, err := interviewsrepo.NewPostgresRepository(ctx, pool)
	require.NoError(t, err)

	tenant, err := tenants.Create(ctx, tenantsservice.Tenant{
		ID:        uuid.New(),
		Name:      "acme",
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	job, err := jobs.Create(ctx, jobsservice.Job{
		ID:        uuid.New(),
		Title:     "Backend Engineer",
		Status:    jobsservice.StatusOpen,
		TenantID:  tenant.ID,
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	require.Positive(t, job.SequenceID)

	candidate, err := candidates.Create(ctx, service.Candidate{
		ID:        uuid.New(),
		Name:      "Dana Smith",
		Email:     "dana@example.com",
		Status:    service.StatusApplied,
		JobID:     job.ID,
		TenantID:  tenant.ID,
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	// Same email on the same job trips the unique pair.
	_, err = candidates.Create(ctx, service.Candidate{
		ID:        uuid.New(),
		Name:      "Dana Smith",
		Email:     "dana@example.com",
		Status:    service.StatusApplied,
		JobID:     job.ID,
		TenantID:  tenant.ID,
		CreatedAt: time.Now().UTC(),
	})
	require.ErrorIs(t, err, service.ErrAlreadyApplied)

	slot := time.Now().UTC().Truncate(time.Second).Add(48 * time.Hour)
	iv, err := interviews.Create(ctx, interviewsservice.Interview{
		ID:           uuid.New(),
		CandidateID:  candidate.ID,
		ScheduledAt:  slot,
		Status:       interviewsservice.StatusScheduled,
		CalendarLink: "https://calendar.mock/interview/deadbeef",
		TenantID:     tenant.ID,
		CreatedAt:    time.Now().UTC(),
	})
	require.NoError(t, err)

	// Same candidate, same slot: taken.
	_, err = interviews.Create(ctx, interviewsservice.Interview{
		ID:           uuid.New(),
		CandidateID:  candidate.ID,
		ScheduledAt:  slot,
		Status:       interviewsservice.StatusScheduled,
		CalendarLink: "https://calendar.mock/interview/cafebabe",
		TenantID:     tenant.ID,
		CreatedAt:    time.Now().UTC(),
	})
	require.ErrorIs(t, err, interviewsservice.ErrSlotTaken)

	count, err := interviews.CountScheduledBetween(ctx, tenant.ID, slot.Add(-time.Hour), slot.Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	fetched, err := candidates.Get(ctx, candidate.ID)
	require.NoError(t, err)
	require.Equal(t, job.ID, fetched.JobID)
	require.Equal(t, tenant.ID, fetched.TenantID)

	hasInterviews, err := interviews.ExistsByCandidate(ctx, candidate.ID)
	require.NoError(t, err)
	require.True(t, hasInterviews)

	// Deleting in reverse dependency order keeps the foreign keys happy.
	require.NoError(t, interviews.Delete(ctx, iv.ID))
	require.NoError(t, candidates.Delete(ctx, candidate.ID))
	require.NoError(t, jobs.Delete(ctx, job.ID))
	require.NoError(t, tenants.Delete(ctx, tenant.ID))
}
