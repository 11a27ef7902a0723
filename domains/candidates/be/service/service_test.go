package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hireline/talenttrack/domains/candidates/be/repo"
	"github.com/hireline/talenttrack/domains/candidates/be/service"
	jobs "github.com/hireline/talenttrack/domains/jobs/be/service"
)

type stubJobs struct {
	byID map[uuid.UUID]jobs.Job
}

func (s stubJobs) Get(ctx context.Context, id uuid.UUID) (jobs.Job, error) {
	j, ok := s.byID[id]
	if !ok {
		return jobs.Job{}, jobs.ErrNotFound
	}
	return j, nil
}

func seedJob(dir stubJobs, tenantID uuid.UUID) jobs.Job {
	j := jobs.Job{ID: uuid.New(), Title: "Role", Status: jobs.StatusOpen, TenantID: tenantID}
	dir.byID[j.ID] = j
	return j
}

func TestCreateDerivesTenantFromJob(t *testing.T) {
	ctx := context.Background()
	t1, t2 := uuid.New(), uuid.New()
	dir := stubJobs{byID: map[uuid.UUID]jobs.Job{}}
	jobT1 := seedJob(dir, t1)
	jobT2 := seedJob(dir, t2)

	svc := service.New(repo.NewMemoryRepository(), dir)

	// A recruiter scoped to t1 creates a candidate for a t1 job. Whatever
	// organization the request carried was already dropped at the boundary;
	// the stored tenant is the job's.
	c, err := svc.Create(ctx, service.CreateInput{
		Name:        "Ada",
		Email:       "ada@example.com",
		JobID:       jobT1.ID,
		ActorTenant: &t1,
	})
	require.NoError(t, err)
	require.Equal(t, t1, c.TenantID)
	require.Equal(t, service.StatusApplied, c.Status)

	// Same email, same job: one application per job.
	_, err = svc.Create(ctx, service.CreateInput{
		Name:        "Ada",
		Email:       "ADA@example.com",
		JobID:       jobT1.ID,
		ActorTenant: &t1,
	})
	require.ErrorIs(t, err, service.ErrAlreadyApplied)

	// Same email against another job is a separate application.
	other, err := svc.Create(ctx, service.CreateInput{
		Name:  "Ada",
		Email: "ada@example.com",
		JobID: jobT2.ID,
	})
	require.NoError(t, err)
	require.Equal(t, t2, other.TenantID)

	// Unscoped admin listing sees candidates from both organizations.
	page, err := svc.List(ctx, service.ListOptions{})
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	tenants := map[uuid.UUID]bool{}
	for _, got := range page.Data {
		tenants[got.TenantID] = true
	}
	require.True(t, tenants[t1])
	require.True(t, tenants[t2])
}

func TestCreateHidesJobsOutsideActorTenant(t *testing.T) {
	ctx := context.Background()
	t1, t2 := uuid.New(), uuid.New()
	dir := stubJobs{byID: map[uuid.UUID]jobs.Job{}}
	jobT2 := seedJob(dir, t2)

	svc := service.New(repo.NewMemoryRepository(), dir)

	_, err := svc.Create(ctx, service.CreateInput{
		Name:        "Eve",
		Email:       "eve@example.com",
		JobID:       jobT2.ID,
		ActorTenant: &t1,
	})
	require.ErrorIs(t, err, service.ErrJobUnknown)

	_, err = svc.Create(ctx, service.CreateInput{
		Name:  "Eve",
		Email: "eve@example.com",
		JobID: uuid.New(),
	})
	require.ErrorIs(t, err, service.ErrJobUnknown)
}

func TestCreateValidatesInput(t *testing.T) {
	ctx := context.Background()
	tenant := uuid.New()
	dir := stubJobs{byID: map[uuid.UUID]jobs.Job{}}
	job := seedJob(dir, tenant)

	svc := service.New(repo.NewMemoryRepository(), dir)

	var validationErr *service.ValidationError
	_, err := svc.Create(ctx, service.CreateInput{Name: "", Email: "a@b.c", JobID: job.ID})
	require.ErrorAs(t, err, &validationErr)
	require.Contains(t, validationErr.Fields, "name")

	_, err = svc.Create(ctx, service.CreateInput{Name: "Bob", Email: "not-an-email", JobID: job.ID})
	require.ErrorAs(t, err, &validationErr)
	require.Contains(t, validationErr.Fields, "email")

	_, err = svc.Create(ctx, service.CreateInput{Name: "Bob", Email: "b@b.c", Status: "ghosted", JobID: job.ID})
	require.ErrorAs(t, err, &validationErr)
	require.Contains(t, validationErr.Fields, "status")
}

func TestListFiltersByJobAndStatus(t *testing.T) {
	ctx := context.Background()
	tenant := uuid.New()
	dir := stubJobs{byID: map[uuid.UUID]jobs.Job{}}
	jobA := seedJob(dir, tenant)
	jobB := seedJob(dir, tenant)

	svc := service.New(repo.NewMemoryRepository(), dir)

	screening := service.StatusScreening
	_, err := svc.Create(ctx, service.CreateInput{Name: "A", Email: "a@x.io", JobID: jobA.ID})
	require.NoError(t, err)
	_, err = svc.Create(ctx, service.CreateInput{Name: "B", Email: "b@x.io", Status: screening, JobID: jobA.ID})
	require.NoError(t, err)
	_, err = svc.Create(ctx, service.CreateInput{Name: "C", Email: "c@x.io", JobID: jobB.ID})
	require.NoError(t, err)

	page, err := svc.List(ctx, service.ListOptions{JobID: &jobA.ID})
	require.NoError(t, err)
	require.Len(t, page.Data, 2)

	page, err = svc.List(ctx, service.ListOptions{JobID: &jobA.ID, Status: &screening})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	require.Equal(t, "B", page.Data[0].Name)
}

func TestUpdateChangesNameAndStatusOnly(t *testing.T) {
	ctx := context.Background()
	tenant := uuid.New()
	dir := stubJobs{byID: map[uuid.UUID]jobs.Job{}}
	job := seedJob(dir, tenant)

	svc := service.New(repo.NewMemoryRepository(), dir)

	c, err := svc.Create(ctx, service.CreateInput{Name: "Dana", Email: "dana@x.io", JobID: job.ID})
	require.NoError(t, err)

	hired := service.StatusHired
	updated, err := svc.Update(ctx, c.ID, service.UpdateInput{Status: &hired})
	require.NoError(t, err)
	require.Equal(t, service.StatusHired, updated.Status)
	require.Equal(t, c.Email, updated.Email)
	require.Equal(t, c.JobID, updated.JobID)
	require.Equal(t, c.TenantID, updated.TenantID)

	_, err = svc.Update(ctx, uuid.New(), service.UpdateInput{})
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestDeleteRejectedWhileInterviewsExist(t *testing.T) {
	ctx := context.Background()
	tenant := uuid.New()
	dir := stubJobs{byID: map[uuid.UUID]jobs.Job{}}
	job := seedJob(dir, tenant)

	inUse := true
	guard := func(ctx context.Context, candidateID uuid.UUID) (bool, error) {
		return inUse, nil
	}
	svc := service.New(repo.NewMemoryRepository(), dir, guard)

	c, err := svc.Create(ctx, service.CreateInput{Name: "Finn", Email: "finn@x.io", JobID: job.ID})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(ctx, c.ID), service.ErrInUse)

	inUse = false
	require.NoError(t, svc.Delete(ctx, c.ID))

	// The application slot frees up after delete.
	_, err = svc.Create(ctx, service.CreateInput{Name: "Finn", Email: "finn@x.io", JobID: job.ID})
	require.NoError(t, err)
}
