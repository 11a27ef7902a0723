package repo

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/hireline/talenttrack/domains/users/be/service"
)

// MemoryRepository is an in-memory implementation for tests and early
// development.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]service.User
	byEmail map[string]uuid.UUID
}

// NewMemoryRepository constructs a MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[uuid.UUID]service.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, u service.User) (service.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[u.Email]; exists {
		return service.User{}, service.ErrConflictEmail
	}
	r.byID[u.ID] = u
	r.byEmail[u.Email] = u.ID
	return u, nil
}

func (r *MemoryRepository) Get(ctx context.Context, id uuid.UUID) (service.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return service.User{}, service.ErrNotFound
	}
	return u, nil
}

func (r *MemoryRepository) FindByEmail(ctx context.Context, email string) (service.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return service.User{}, service.ErrNotFound
	}
	return r.byID[id], nil
}

func (r *MemoryRepository) List(ctx context.Context, opts service.ListOptions) ([]service.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]service.User, 0, len(r.byID))
	for _, u := range r.byID {
		if opts.TenantID != nil && u.TenantID != *opts.TenantID {
			continue
		}
		users = append(users, u)
	}
	sort.Slice(users, func(i, k int) bool { return users[i].Email < users[k].Email })
	return users, nil
}

func (r *MemoryRepository) Update(ctx context.Context, u service.User) (service.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[u.ID]; !ok {
		return service.User{}, service.ErrNotFound
	}
	r.byID[u.ID] = u
	return u, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return service.ErrNotFound
	}
	delete(r.byID, id)
	delete(r.byEmail, u.Email)
	return nil
}

func (r *MemoryRepository) ExistsByTenant(ctx context.Context, tenantID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if u.TenantID == tenantID {
			return true, nil
		}
	}
	return false, nil
}

var _ service.Repository = (*MemoryRepository)(nil)
