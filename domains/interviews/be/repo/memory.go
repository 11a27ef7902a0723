package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hireline/talenttrack/domains/interviews/be/service"
)

type slotKey struct {
	candidateID uuid.UUID
	at          int64
}

func slotOf(iv service.Interview) slotKey {
	return slotKey{candidateID: iv.CandidateID, at: iv.ScheduledAt.UnixNano()}
}

// MemoryRepository is an in-memory implementation for tests and early
// development. The (candidate, scheduledAt) uniqueness constraint is
// enforced with a secondary index, matching the database unique constraint.
type MemoryRepository struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]service.Interview
	bySlot map[slotKey]uuid.UUID
	seq    int64
}

// NewMemoryRepository constructs a MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:   make(map[uuid.UUID]service.Interview),
		bySlot: make(map[slotKey]uuid.UUID),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, iv service.Interview) (service.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := slotOf(iv)
	if _, exists := r.bySlot[key]; exists {
		return service.Interview{}, service.ErrSlotTaken
	}

	r.seq++
	iv.SequenceID = r.seq
	r.byID[iv.ID] = iv
	r.bySlot[key] = iv.ID
	return iv, nil
}

func (r *MemoryRepository) Get(ctx context.Context, id uuid.UUID) (service.Interview, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	iv, ok := r.byID[id]
	if !ok {
		return service.Interview{}, service.ErrNotFound
	}
	return iv, nil
}

func (r *MemoryRepository) List(ctx context.Context, opts service.ListOptions, fetch int) ([]service.Interview, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]service.Interview, 0, len(r.byID))
	for _, iv := range r.byID {
		if opts.TenantID != nil && iv.TenantID != *opts.TenantID {
			continue
		}
		if opts.CandidateID != nil && iv.CandidateID != *opts.CandidateID {
			continue
		}
		if opts.Status != nil && iv.Status != *opts.Status {
			continue
		}
		if iv.SequenceID <= opts.Cursor {
			continue
		}
		matched = append(matched, iv)
	}
	sort.Slice(matched, func(i, k int) bool { return matched[i].SequenceID < matched[k].SequenceID })

	if len(matched) > fetch {
		matched = matched[:fetch]
	}
	return matched, nil
}

func (r *MemoryRepository) Update(ctx context.Context, iv service.Interview) (service.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[iv.ID]
	if !ok {
		return service.Interview{}, service.ErrNotFound
	}

	key := slotOf(iv)
	if holder, exists := r.bySlot[key]; exists && holder != iv.ID {
		return service.Interview{}, service.ErrSlotTaken
	}
	delete(r.bySlot, slotOf(current))
	r.bySlot[key] = iv.ID
	r.byID[iv.ID] = iv
	return iv, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	iv, ok := r.byID[id]
	if !ok {
		return service.ErrNotFound
	}
	delete(r.byID, id)
	delete(r.bySlot, slotOf(iv))
	return nil
}

func (r *MemoryRepository) ExistsByCandidate(ctx context.Context, candidateID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, iv := range r.byID {
		if iv.CandidateID == candidateID {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepository) CountScheduledBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, iv := range r.byID {
		if iv.TenantID != tenantID || iv.Status != service.StatusScheduled {
			continue
		}
		if !iv.ScheduledAt.Before(from) && iv.ScheduledAt.Before(to) {
			n++
		}
	}
	return n, nil
}

var _ service.Repository = (*MemoryRepository)(nil)
