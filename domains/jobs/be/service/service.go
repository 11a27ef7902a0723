// Package service implements job postings, the root of the recruitment
// hierarchy. Candidates attach to jobs, interviews attach to candidates.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hireline/talenttrack/platform/go/paging"
)

// Errors returned by the service layer.
var (
	ErrNotFound      = errors.New("job not found")
	ErrTenantUnknown = errors.New("organization does not exist")
	ErrInUse         = errors.New("job has dependent candidates")
)

// ValidationError is returned when the input payload is invalid.
type ValidationError struct {
	Fields map[string]string
}

func (v *ValidationError) Error() string {
	return "validation error"
}

// Status enumerates the lifecycle of a posting.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
	StatusPaused Status = "paused"
)

// Valid reports whether the status is a known value.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusClosed, StatusPaused:
		return true
	}
	return false
}

// Job is a tenant-scoped posting. SequenceID is assigned by the store at
// creation, strictly increasing and never reused; it is the only field
// cursors are built from.
type Job struct {
	ID         uuid.UUID `json:"id"`
	SequenceID int64     `json:"sequenceId"`
	Title      string    `json:"title"`
	Status     Status    `json:"status"`
	TenantID   uuid.UUID `json:"organizationId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CreateInput represents the request to create a job. TenantID comes from
// the access evaluator, never straight from the caller.
type CreateInput struct {
	Title    string
	Status   Status
	TenantID uuid.UUID
}

// UpdateInput represents mutable fields. Nil leaves a field unchanged.
type UpdateInput struct {
	Title  *string
	Status *Status
}

// ListOptions captures filters and the cursor.
type ListOptions struct {
	TenantID *uuid.UUID // nil means unscoped (admin cross-tenant read)
	Status   *Status
	Cursor   int64
	Limit    int
}

// Repository abstracts persistence. List must return rows ordered ascending
// by sequence id, honoring ListOptions filters and the exclusive cursor
// bound, fetching at most fetch rows.
type Repository interface {
	Create(ctx context.Context, j Job) (Job, error)
	Get(ctx context.Context, id uuid.UUID) (Job, error)
	List(ctx context.Context, opts ListOptions, fetch int) ([]Job, error)
	Update(ctx context.Context, j Job) (Job, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByTenant(ctx context.Context, tenantID uuid.UUID) (bool, error)
	CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[Status]int64, error)
}

// TenantDirectory validates organization ids.
type TenantDirectory interface {
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
}

// DependencyGuard reports whether any candidate still references the job.
type DependencyGuard func(ctx context.Context, jobID uuid.UUID) (bool, error)

// Service provides job operations.
type Service struct {
	repo    Repository
	tenants TenantDirectory
	guards  []DependencyGuard
}

// New constructs a Service with required dependencies.
func New(repo Repository, tenants TenantDirectory, guards ...DependencyGuard) *Service {
	if repo == nil {
		panic("jobs repo is required")
	}
	if tenants == nil {
		panic("tenant directory is required")
	}
	return &Service{repo: repo, tenants: tenants, guards: guards}
}

// Create validates the tenant and persists a new posting.
func (s *Service) Create(ctx context.Context, input CreateInput) (Job, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return Job{}, &ValidationError{Fields: map[string]string{"title": "title is required"}}
	}
	status := input.Status
	if status == "" {
		status = StatusOpen
	}
	if !status.Valid() {
		return Job{}, &ValidationError{Fields: map[string]string{"status": fmt.Sprintf("unknown status %q", status)}}
	}

	ok, err := s.tenants.ExistsByID(ctx, input.TenantID)
	if err != nil {
		return Job{}, fmt.Errorf("check organization: %w", err)
	}
	if !ok {
		return Job{}, ErrTenantUnknown
	}

	j := Job{
		ID:        uuid.New(),
		Title:     title,
		Status:    status,
		TenantID:  input.TenantID,
		CreatedAt: time.Now().UTC(),
	}
	return s.repo.Create(ctx, j)
}

// Get returns a job by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Job, error) {
	return s.repo.Get(ctx, id)
}

// List returns one page of the cursor walk.
func (s *Service) List(ctx context.Context, opts ListOptions) (paging.Page[Job], error) {
	limit := paging.Limit(opts.Limit)
	rows, err := s.repo.List(ctx, opts, limit+1)
	if err != nil {
		return paging.Page[Job]{}, err
	}
	return paging.Slice(rows, limit, func(j Job) int64 { return j.SequenceID }), nil
}

// Update modifies mutable fields. Identity and tenant never change.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (Job, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Job{}, err
	}

	next := current
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return Job{}, &ValidationError{Fields: map[string]string{"title": "title is required"}}
		}
		next.Title = title
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return Job{}, &ValidationError{Fields: map[string]string{"status": fmt.Sprintf("unknown status %q", *input.Status)}}
		}
		next.Status = *input.Status
	}

	return s.repo.Update(ctx, next)
}

// Delete removes a posting. Rejected while candidates reference it.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}

	for _, guard := range s.guards {
		inUse, err := guard(ctx, id)
		if err != nil {
			return fmt.Errorf("check job usage: %w", err)
		}
		if inUse {
			return ErrInUse
		}
	}

	return s.repo.Delete(ctx, id)
}

// ExistsByTenant reports whether any job belongs to the organization.
// Wired as a tenants dependency guard.
func (s *Service) ExistsByTenant(ctx context.Context, tenantID uuid.UUID) (bool, error) {
	return s.repo.ExistsByTenant(ctx, tenantID)
}

// CountByStatus aggregates postings per status for the dashboard.
func (s *Service) CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[Status]int64, error) {
	return s.repo.CountByStatus(ctx, tenantID)
}
