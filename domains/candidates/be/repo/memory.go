package repo

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/hireline/talenttrack/domains/candidates/be/service"
)

type applicationKey struct {
	email string
	jobID uuid.UUID
}

// MemoryRepository is an in-memory implementation for tests and early
// development. The (email, job) uniqueness constraint is enforced with a
// secondary index, matching the database unique constraint.
type MemoryRepository struct {
	mu    sync.RWMutex
	byID  map[uuid.UUID]service.Candidate
	byApp map[applicationKey]uuid.UUID
	seq   int64
}

// NewMemoryRepository constructs a MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:  make(map[uuid.UUID]service.Candidate),
		byApp: make(map[applicationKey]uuid.UUID),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, c service.Candidate) (service.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := applicationKey{email: c.Email, jobID: c.JobID}
	if _, exists := r.byApp[key]; exists {
		return service.Candidate{}, service.ErrAlreadyApplied
	}

	r.seq++
	c.SequenceID = r.seq
	r.byID[c.ID] = c
	r.byApp[key] = c.ID
	return c, nil
}

func (r *MemoryRepository) Get(ctx context.Context, id uuid.UUID) (service.Candidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return service.Candidate{}, service.ErrNotFound
	}
	return c, nil
}

func (r *MemoryRepository) List(ctx context.Context, opts service.ListOptions, fetch int) ([]service.Candidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]service.Candidate, 0, len(r.byID))
	for _, c := range r.byID {
		if opts.TenantID != nil && c.TenantID != *opts.TenantID {
			continue
		}
		if opts.JobID != nil && c.JobID != *opts.JobID {
			continue
		}
		if opts.Status != nil && c.Status != *opts.Status {
			continue
		}
		if c.SequenceID <= opts.Cursor {
			continue
		}
		matched = append(matched, c)
	}
	sort.Slice(matched, func(i, k int) bool { return matched[i].SequenceID < matched[k].SequenceID })

	if len(matched) > fetch {
		matched = matched[:fetch]
	}
	return matched, nil
}

func (r *MemoryRepository) Update(ctx context.Context, c service.Candidate) (service.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[c.ID]; !ok {
		return service.Candidate{}, service.ErrNotFound
	}
	r.byID[c.ID] = c
	return c, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[id]
	if !ok {
		return service.ErrNotFound
	}
	delete(r.byID, id)
	delete(r.byApp, applicationKey{email: c.Email, jobID: c.JobID})
	return nil
}

func (r *MemoryRepository) ExistsByJob(ctx context.Context, jobID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.byID {
		if c.JobID == jobID {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepository) ExistsByTenant(ctx context.Context, tenantID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.byID {
		if c.TenantID == tenantID {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[service.Status]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[service.Status]int64)
	for _, c := range r.byID {
		if c.TenantID == tenantID {
			counts[c.Status]++
		}
	}
	return counts, nil
}

var _ service.Repository = (*MemoryRepository)(nil)
