// Package service implements user accounts. Passwords are stored as bcrypt
// hashes and never leave the package; the HTTP layer only ever sees the
// hashless view.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hireline/talenttrack/platform/go/access"
)

// Errors returned by the service layer.
var (
	ErrNotFound           = errors.New("user not found")
	ErrConflictEmail      = errors.New("email already registered")
	ErrTenantUnknown      = errors.New("organization does not exist")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError is returned when the input payload is invalid.
type ValidationError struct {
	Fields map[string]string
}

func (v *ValidationError) Error() string {
	return "validation error"
}

// User is an account bound to one organization. PasswordHash never
// serializes.
type User struct {
	ID           uuid.UUID   `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Role         access.Role `json:"role"`
	TenantID     uuid.UUID   `json:"organizationId"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// RegisterInput represents the request to create an account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     access.Role
	TenantID uuid.UUID
}

// UpdateInput represents mutable fields. Nil leaves a field unchanged.
type UpdateInput struct {
	Name *string
	Role *access.Role
}

// ListOptions captures the optional tenant filter.
type ListOptions struct {
	TenantID *uuid.UUID
}

// Repository abstracts persistence. Create must reject a duplicate email
// with ErrConflictEmail.
type Repository interface {
	Create(ctx context.Context, u User) (User, error)
	Get(ctx context.Context, id uuid.UUID) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context, opts ListOptions) ([]User, error)
	Update(ctx context.Context, u User) (User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByTenant(ctx context.Context, tenantID uuid.UUID) (bool, error)
}

// TenantDirectory validates organization ids.
type TenantDirectory interface {
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service provides account operations.
type Service struct {
	repo    Repository
	tenants TenantDirectory
}

// New constructs a Service with required dependencies.
func New(repo Repository, tenants TenantDirectory) *Service {
	if repo == nil {
		panic("users repo is required")
	}
	if tenants == nil {
		panic("tenant directory is required")
	}
	return &Service{repo: repo, tenants: tenants}
}

// Register creates an account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, input RegisterInput) (User, error) {
	fields := map[string]string{}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		fields["name"] = "name is required"
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		fields["email"] = "a valid email is required"
	}
	if len(input.Password) < 8 {
		fields["password"] = "password must be at least 8 characters"
	}
	role := input.Role
	if role == "" {
		role = access.RoleRecruiter
	}
	if !role.Valid() {
		fields["role"] = fmt.Sprintf("unknown role %q", role)
	}
	if len(fields) > 0 {
		return User{}, &ValidationError{Fields: fields}
	}

	ok, err := s.tenants.ExistsByID(ctx, input.TenantID)
	if err != nil {
		return User{}, fmt.Errorf("check organization: %w", err)
	}
	if !ok {
		return User{}, ErrTenantUnknown
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	u := User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		TenantID:     input.TenantID,
		CreatedAt:    time.Now().UTC(),
	}
	return s.repo.Create(ctx, u)
}

// Authenticate checks credentials and returns the account. Missing account
// and bad password are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Principal builds the access identity for a user.
func (u User) Principal() access.Principal {
	return access.Principal{UserID: u.ID, Email: u.Email, Role: u.Role, TenantID: u.TenantID}
}

// Get returns a user by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (User, error) {
	return s.repo.Get(ctx, id)
}

// List returns users, optionally filtered by organization.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]User, error) {
	return s.repo.List(ctx, opts)
}

// Update modifies mutable fields. Email, tenant and password do not change
// through this path.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (User, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return User{}, err
	}

	next := current
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return User{}, &ValidationError{Fields: map[string]string{"name": "name is required"}}
		}
		next.Name = name
	}
	if input.Role != nil {
		if !input.Role.Valid() {
			return User{}, &ValidationError{Fields: map[string]string{"role": fmt.Sprintf("unknown role %q", *input.Role)}}
		}
		next.Role = *input.Role
	}

	return s.repo.Update(ctx, next)
}

// Delete removes an account.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// ExistsByTenant reports whether any account belongs to the organization.
// Wired as a tenants dependency guard.
func (s *Service) ExistsByTenant(ctx context.Context, tenantID uuid.UUID) (bool, error) {
	return s.repo.ExistsByTenant(ctx, tenantID)
}
