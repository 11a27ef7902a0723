// Package service implements interview scheduling. Interviews attach to a
// candidate and inherit its organization. Status moves either through the
// normal update path or through calendar events delivered by webhook.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	candidates "github.com/hireline/talenttrack/domains/candidates/be/service"
	"github.com/hireline/talenttrack/platform/go/paging"
)

// Errors returned by the service layer.
var (
	ErrNotFound         = errors.New("interview not found")
	ErrCandidateUnknown = errors.New("candidate does not exist")
	ErrSlotTaken        = errors.New("candidate already has an interview at this time")
)

// ValidationError is returned when the input payload is invalid.
type ValidationError struct {
	Fields map[string]string
}

func (v *ValidationError) Error() string {
	return "validation error"
}

// Status enumerates the interview lifecycle.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether the status is a known value.
func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CalendarEvent is a calendar-side lifecycle event delivered over webhook.
type CalendarEvent string

const (
	EventCreated   CalendarEvent = "created"
	EventUpdated   CalendarEvent = "updated"
	EventCancelled CalendarEvent = "cancelled"
)

// Transition computes the status after a calendar event. Cancelled is
// terminal: no event reopens a cancelled interview, replayed created or
// updated events leave it untouched.
func Transition(current Status, event CalendarEvent) Status {
	if current == StatusCancelled {
		return StatusCancelled
	}
	switch event {
	case EventCreated, EventUpdated:
		return StatusScheduled
	case EventCancelled:
		return StatusCancelled
	}
	return current
}

// Interview is one scheduled meeting with a candidate. CalendarLink points
// at the mock calendar provider.
type Interview struct {
	ID           uuid.UUID `json:"id"`
	SequenceID   int64     `json:"sequenceId"`
	CandidateID  uuid.UUID `json:"candidateId"`
	ScheduledAt  time.Time `json:"scheduledAt"`
	Status       Status    `json:"status"`
	CalendarLink string    `json:"calendarLink"`
	TenantID     uuid.UUID `json:"organizationId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CreateInput represents the request to schedule an interview. The tenant
// comes from the candidate; ActorTenant restricts which candidates the
// caller may schedule for, nil means unrestricted.
type CreateInput struct {
	CandidateID uuid.UUID
	ScheduledAt time.Time
	ActorTenant *uuid.UUID
}

// UpdateInput represents mutable fields. Nil leaves a field unchanged.
type UpdateInput struct {
	ScheduledAt *time.Time
	Status      *Status
}

// ListOptions captures filters and the cursor.
type ListOptions struct {
	TenantID    *uuid.UUID // nil means unscoped (admin cross-tenant read)
	CandidateID *uuid.UUID
	Status      *Status
	Cursor      int64
	Limit       int
}

// Repository abstracts persistence. Create and Update must reject a
// duplicate (candidate, scheduledAt) pair with ErrSlotTaken. List must
// return rows ordered ascending by sequence id, honoring filters and the
// exclusive cursor bound, fetching at most fetch rows.
type Repository interface {
	Create(ctx context.Context, iv Interview) (Interview, error)
	Get(ctx context.Context, id uuid.UUID) (Interview, error)
	List(ctx context.Context, opts ListOptions, fetch int) ([]Interview, error)
	Update(ctx context.Context, iv Interview) (Interview, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByCandidate(ctx context.Context, candidateID uuid.UUID) (bool, error)
	CountScheduledBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (int64, error)
}

// CandidateDirectory resolves candidates so interviews can inherit the
// organization.
type CandidateDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (candidates.Candidate, error)
}

// Service provides interview operations.
type Service struct {
	repo       Repository
	candidates CandidateDirectory
}

// New constructs a Service with required dependencies.
func New(repo Repository, candidates CandidateDirectory) *Service {
	if repo == nil {
		panic("interviews repo is required")
	}
	if candidates == nil {
		panic("candidate directory is required")
	}
	return &Service{repo: repo, candidates: candidates}
}

// Create schedules an interview. A generated mock calendar link stands in
// for the external provider.
func (s *Service) Create(ctx context.Context, input CreateInput) (Interview, error) {
	if input.ScheduledAt.IsZero() {
		return Interview{}, &ValidationError{Fields: map[string]string{"scheduledAt": "scheduledAt is required"}}
	}

	cand, err := s.candidates.Get(ctx, input.CandidateID)
	if err != nil {
		if errors.Is(err, candidates.ErrNotFound) {
			return Interview{}, ErrCandidateUnknown
		}
		return Interview{}, fmt.Errorf("resolve candidate: %w", err)
	}
	// Candidates outside the caller's organization are reported as absent.
	if input.ActorTenant != nil && cand.TenantID != *input.ActorTenant {
		return Interview{}, ErrCandidateUnknown
	}

	iv := Interview{
		ID:           uuid.New(),
		CandidateID:  cand.ID,
		ScheduledAt:  input.ScheduledAt.UTC(),
		Status:       StatusScheduled,
		CalendarLink: mockCalendarLink(),
		TenantID:     cand.TenantID,
		CreatedAt:    time.Now().UTC(),
	}
	return s.repo.Create(ctx, iv)
}

// Get returns an interview by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Interview, error) {
	return s.repo.Get(ctx, id)
}

// List returns one page of the cursor walk.
func (s *Service) List(ctx context.Context, opts ListOptions) (paging.Page[Interview], error) {
	limit := paging.Limit(opts.Limit)
	rows, err := s.repo.List(ctx, opts, limit+1)
	if err != nil {
		return paging.Page[Interview]{}, err
	}
	return paging.Slice(rows, limit, func(iv Interview) int64 { return iv.SequenceID }), nil
}

// Update modifies mutable fields. Candidate and tenant never change;
// rescheduling re-checks the slot.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (Interview, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Interview{}, err
	}

	next := current
	if input.ScheduledAt != nil {
		if input.ScheduledAt.IsZero() {
			return Interview{}, &ValidationError{Fields: map[string]string{"scheduledAt": "scheduledAt is required"}}
		}
		next.ScheduledAt = input.ScheduledAt.UTC()
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return Interview{}, &ValidationError{Fields: map[string]string{"status": fmt.Sprintf("unknown status %q", *input.Status)}}
		}
		next.Status = *input.Status
	}

	return s.repo.Update(ctx, next)
}

// ApplyCalendarEvent moves the interview through the calendar state
// machine. A created or updated event may carry a new scheduled time;
// cancelled never does. Events on a cancelled interview are no-ops,
// returning the interview unchanged.
func (s *Service) ApplyCalendarEvent(ctx context.Context, id uuid.UUID, event CalendarEvent, scheduledAt *time.Time) (Interview, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Interview{}, err
	}

	next := current
	next.Status = Transition(current.Status, event)
	if current.Status != StatusCancelled && scheduledAt != nil && (event == EventCreated || event == EventUpdated) {
		next.ScheduledAt = scheduledAt.UTC()
	}
	if next == current {
		return current, nil
	}
	return s.repo.Update(ctx, next)
}

// Delete removes an interview.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// ExistsByCandidate reports whether any interview references the candidate.
// Wired as a candidates dependency guard.
func (s *Service) ExistsByCandidate(ctx context.Context, candidateID uuid.UUID) (bool, error) {
	return s.repo.ExistsByCandidate(ctx, candidateID)
}

// CountScheduledBetween counts interviews scheduled inside [from, to) for
// the dashboard windows.
func (s *Service) CountScheduledBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (int64, error) {
	return s.repo.CountScheduledBetween(ctx, tenantID, from, to)
}

func mockCalendarLink() string {
	return "https://calendar.mock/interview/" + uuid.NewString()[:8]
}
