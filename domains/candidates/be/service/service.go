// Package service implements candidate applications. A candidate belongs to
// exactly one job and inherits the job's organization; the caller never
// chooses the tenant directly.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	jobs "github.com/hireline/talenttrack/domains/jobs/be/service"
	"github.com/hireline/talenttrack/platform/go/paging"
)

// Errors returned by the service layer.
var (
	ErrNotFound       = errors.New("candidate not found")
	ErrJobUnknown     = errors.New("job does not exist")
	ErrAlreadyApplied = errors.New("candidate already applied to this job")
	ErrInUse          = errors.New("candidate has dependent interviews")
)

// ValidationError is returned when the input payload is invalid.
type ValidationError struct {
	Fields map[string]string
}

func (v *ValidationError) Error() string {
	return "validation error"
}

// Status enumerates the pipeline stages of an application.
type Status string

const (
	StatusApplied            Status = "applied"
	StatusScreening          Status = "screening"
	StatusInterviewScheduled Status = "interview_scheduled"
	StatusOffer              Status = "offer"
	StatusHired              Status = "hired"
	StatusRejected           Status = "rejected"
)

// Valid reports whether the status is a known value.
func (s Status) Valid() bool {
	switch s {
	case StatusApplied, StatusScreening, StatusInterviewScheduled, StatusOffer, StatusHired, StatusRejected:
		return true
	}
	return false
}

// Candidate is one application of a person to a job. The (Email, JobID)
// pair is unique; the same email may apply to different jobs.
type Candidate struct {
	ID         uuid.UUID `json:"id"`
	SequenceID int64     `json:"sequenceId"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Status     Status    `json:"status"`
	JobID      uuid.UUID `json:"jobId"`
	TenantID   uuid.UUID `json:"organizationId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CreateInput represents the request to create a candidate. There is no
// tenant field: the organization comes from the job. ActorTenant restricts
// which jobs the caller may attach to; nil means unrestricted.
type CreateInput struct {
	Name        string
	Email       string
	Status      Status
	JobID       uuid.UUID
	ActorTenant *uuid.UUID
}

// UpdateInput represents mutable fields. Nil leaves a field unchanged.
type UpdateInput struct {
	Name   *string
	Status *Status
}

// ListOptions captures filters and the cursor.
type ListOptions struct {
	TenantID *uuid.UUID // nil means unscoped (admin cross-tenant read)
	JobID    *uuid.UUID
	Status   *Status
	Cursor   int64
	Limit    int
}

// Repository abstracts persistence. Create must reject a duplicate
// (email, job) pair with ErrAlreadyApplied. List must return rows ordered
// ascending by sequence id, honoring filters and the exclusive cursor
// bound, fetching at most fetch rows.
type Repository interface {
	Create(ctx context.Context, c Candidate) (Candidate, error)
	Get(ctx context.Context, id uuid.UUID) (Candidate, error)
	List(ctx context.Context, opts ListOptions, fetch int) ([]Candidate, error)
	Update(ctx context.Context, c Candidate) (Candidate, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByJob(ctx context.Context, jobID uuid.UUID) (bool, error)
	ExistsByTenant(ctx context.Context, tenantID uuid.UUID) (bool, error)
	CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[Status]int64, error)
}

// JobDirectory resolves jobs so candidates can inherit the organization.
type JobDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (jobs.Job, error)
}

// DependencyGuard reports whether any interview still references the
// candidate.
type DependencyGuard func(ctx context.Context, candidateID uuid.UUID) (bool, error)

// Service provides candidate operations.
type Service struct {
	repo   Repository
	jobs   JobDirectory
	guards []DependencyGuard
}

// New constructs a Service with required dependencies.
func New(repo Repository, jobs JobDirectory, guards ...DependencyGuard) *Service {
	if repo == nil {
		panic("candidates repo is required")
	}
	if jobs == nil {
		panic("job directory is required")
	}
	return &Service{repo: repo, jobs: jobs, guards: guards}
}

// Create persists a new application. The organization is copied from the
// job; any tenant id carried by the request is ignored upstream.
func (s *Service) Create(ctx context.Context, input CreateInput) (Candidate, error) {
	fields := map[string]string{}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		fields["name"] = "name is required"
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		fields["email"] = "a valid email is required"
	}
	status := input.Status
	if status == "" {
		status = StatusApplied
	}
	if !status.Valid() {
		fields["status"] = fmt.Sprintf("unknown status %q", status)
	}
	if len(fields) > 0 {
		return Candidate{}, &ValidationError{Fields: fields}
	}

	job, err := s.jobs.Get(ctx, input.JobID)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			return Candidate{}, ErrJobUnknown
		}
		return Candidate{}, fmt.Errorf("resolve job: %w", err)
	}
	// Jobs outside the caller's organization are reported as absent.
	if input.ActorTenant != nil && job.TenantID != *input.ActorTenant {
		return Candidate{}, ErrJobUnknown
	}

	c := Candidate{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		Status:    status,
		JobID:     job.ID,
		TenantID:  job.TenantID,
		CreatedAt: time.Now().UTC(),
	}
	return s.repo.Create(ctx, c)
}

// Get returns a candidate by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Candidate, error) {
	return s.repo.Get(ctx, id)
}

// List returns one page of the cursor walk.
func (s *Service) List(ctx context.Context, opts ListOptions) (paging.Page[Candidate], error) {
	limit := paging.Limit(opts.Limit)
	rows, err := s.repo.List(ctx, opts, limit+1)
	if err != nil {
		return paging.Page[Candidate]{}, err
	}
	return paging.Slice(rows, limit, func(c Candidate) int64 { return c.SequenceID }), nil
}

// Update modifies mutable fields. Email, job and tenant never change; a
// different application is a new candidate.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (Candidate, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Candidate{}, err
	}

	next := current
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return Candidate{}, &ValidationError{Fields: map[string]string{"name": "name is required"}}
		}
		next.Name = name
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return Candidate{}, &ValidationError{Fields: map[string]string{"status": fmt.Sprintf("unknown status %q", *input.Status)}}
		}
		next.Status = *input.Status
	}

	return s.repo.Update(ctx, next)
}

// Delete removes an application. Rejected while interviews reference it.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}

	for _, guard := range s.guards {
		inUse, err := guard(ctx, id)
		if err != nil {
			return fmt.Errorf("check candidate usage: %w", err)
		}
		if inUse {
			return ErrInUse
		}
	}
	return s.repo.Delete(ctx, id)
}

// ExistsByJob reports whether any candidate references the job. Wired as a
// jobs dependency guard.
func (s *Service) ExistsByJob(ctx context.Context, jobID uuid.UUID) (bool, error) {
	return s.repo.ExistsByJob(ctx, jobID)
}

// ExistsByTenant reports whether any candidate belongs to the organization.
// Wired as a tenants dependency guard.
func (s *Service) ExistsByTenant(ctx context.Context, tenantID uuid.UUID) (bool, error) {
	return s.repo.ExistsByTenant(ctx, tenantID)
}

// CountByStatus aggregates candidates per pipeline stage for the dashboard.
func (s *Service) CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[Status]int64, error) {
	return s.repo.CountByStatus(ctx, tenantID)
}
