// Package service implements the tenant directory: the authoritative source
// of valid organization identifiers everything else hangs off.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Errors returned by the service layer.
var (
	ErrNotFound     = errors.New("tenant not found")
	ErrConflictName = errors.New("tenant name already exists")
	ErrInUse        = errors.New("tenant has dependent resources")
)

// ValidationError is returned when the input payload is invalid.
type ValidationError struct {
	Fields map[string]string
}

func (v *ValidationError) Error() string {
	return "validation error"
}

// Tenant is an isolated organization. Immutable once referenced by other
// entities except for rename.
type Tenant struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListOptions captures the optional name filter.
type ListOptions struct {
	Name *string
}

// Repository abstracts persistence.
type Repository interface {
	Create(ctx context.Context, t Tenant) (Tenant, error)
	Get(ctx context.Context, id uuid.UUID) (Tenant, error)
	FindByName(ctx context.Context, name string) (Tenant, error)
	List(ctx context.Context, opts ListOptions) ([]Tenant, error)
	Rename(ctx context.Context, id uuid.UUID, name string) (Tenant, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// DependencyGuard reports whether any resource still references the tenant.
// Each dependent domain contributes one guard; deletion is rejected while
// any of them fires (restrict policy, no cascades).
type DependencyGuard func(ctx context.Context, tenantID uuid.UUID) (bool, error)

// Service provides tenant directory operations.
type Service struct {
	repo   Repository
	guards []DependencyGuard
}

// New constructs a Service with required dependencies.
func New(repo Repository, guards ...DependencyGuard) *Service {
	if repo == nil {
		panic("tenants repo is required")
	}
	return &Service{repo: repo, guards: guards}
}

// Create registers a new tenant with a unique name.
func (s *Service) Create(ctx context.Context, name string) (Tenant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Tenant{}, &ValidationError{Fields: map[string]string{"name": "name is required"}}
	}

	if _, err := s.repo.FindByName(ctx, name); err == nil {
		return Tenant{}, ErrConflictName
	} else if !errors.Is(err, ErrNotFound) {
		return Tenant{}, fmt.Errorf("check tenant name: %w", err)
	}

	t := Tenant{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	return s.repo.Create(ctx, t)
}

// Get returns a tenant by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Tenant, error) {
	return s.repo.Get(ctx, id)
}

// ExistsByID reports whether the tenant id is a real organization. Used to
// validate caller-supplied tenant ids before attaching them to new resources.
func (s *Service) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	_, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// List returns tenants, optionally filtered by exact name.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]Tenant, error) {
	return s.repo.List(ctx, opts)
}

// Rename changes the tenant's name, keeping it unique.
func (s *Service) Rename(ctx context.Context, id uuid.UUID, name string) (Tenant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Tenant{}, &ValidationError{Fields: map[string]string{"name": "name is required"}}
	}

	existing, err := s.repo.FindByName(ctx, name)
	if err == nil && existing.ID != id {
		return Tenant{}, ErrConflictName
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return Tenant{}, fmt.Errorf("check tenant name: %w", err)
	}

	return s.repo.Rename(ctx, id, name)
}

// Delete removes a tenant. Rejected while dependents exist.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}

	for _, guard := range s.guards {
		inUse, err := guard(ctx, id)
		if err != nil {
			return fmt.Errorf("check tenant usage: %w", err)
		}
		if inUse {
			return ErrInUse
		}
	}

	return s.repo.Delete(ctx, id)
}
