package repo

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/hireline/talenttrack/domains/jobs/be/service"
)

// MemoryRepository is an in-memory implementation for tests and early
// development. Sequence ids are assigned from a monotonic counter, matching
// the store contract.
type MemoryRepository struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]service.Job
	seq  int64
}

// NewMemoryRepository constructs a MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[uuid.UUID]service.Job)}
}

func (r *MemoryRepository) Create(ctx context.Context, j service.Job) (service.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	j.SequenceID = r.seq
	r.byID[j.ID] = j
	return j, nil
}

func (r *MemoryRepository) Get(ctx context.Context, id uuid.UUID) (service.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	j, ok := r.byID[id]
	if !ok {
		return service.Job{}, service.ErrNotFound
	}
	return j, nil
}

func (r *MemoryRepository) List(ctx context.Context, opts service.ListOptions, fetch int) ([]service.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]service.Job, 0, len(r.byID))
	for _, j := range r.byID {
		if opts.TenantID != nil && j.TenantID != *opts.TenantID {
			continue
		}
		if opts.Status != nil && j.Status != *opts.Status {
			continue
		}
		if j.SequenceID <= opts.Cursor {
			continue
		}
		matched = append(matched, j)
	}
	sort.Slice(matched, func(i, k int) bool { return matched[i].SequenceID < matched[k].SequenceID })

	if len(matched) > fetch {
		matched = matched[:fetch]
	}
	return matched, nil
}

func (r *MemoryRepository) Update(ctx context.Context, j service.Job) (service.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[j.ID]; !ok {
		return service.Job{}, service.ErrNotFound
	}
	r.byID[j.ID] = j
	return j, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return service.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *MemoryRepository) ExistsByTenant(ctx context.Context, tenantID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, j := range r.byID {
		if j.TenantID == tenantID {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[service.Status]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[service.Status]int64)
	for _, j := range r.byID {
		if j.TenantID == tenantID {
			counts[j.Status]++
		}
	}
	return counts, nil
}

// Ensure interface compliance.
var _ service.Repository = (*MemoryRepository)(nil)
