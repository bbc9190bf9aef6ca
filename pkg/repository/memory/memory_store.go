package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/model"
)

type memoryRepository struct {
	mu      sync.RWMutex
	entries map[model.MemoryID]*model.Memory
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		entries: make(map[model.MemoryID]*model.Memory),
	}
}

func copyMemory(m *model.Memory) *model.Memory {
	copied := *m
	return &copied
}

func (r *memoryRepository) Create(ctx context.Context, mem *model.Memory) (*model.Memory, error) {
	created := copyMemory(mem)
	if created.ID == "" {
		created.ID = model.NewMemoryID()
	}
	created.ReactionCount = 0
	created.IsNew = true
	created.CreatedAt = time.Now().UTC()

	if err := created.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid memory")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[created.ID] = created
	return copyMemory(created), nil
}

func (r *memoryRepository) Get(ctx context.Context, id model.MemoryID) (*model.Memory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mem, exists := r.entries[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "memory not found", goerr.V(model.MemoryIDKey, id))
	}

	return copyMemory(mem), nil
}

func (r *memoryRepository) GetByIDs(ctx context.Context, ids []model.MemoryID) (map[model.MemoryID]*model.Memory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[model.MemoryID]*model.Memory, len(ids))
	for _, id := range ids {
		if mem, exists := r.entries[id]; exists {
			result[id] = copyMemory(mem)
		}
	}

	return result, nil
}

func (r *memoryRepository) ListByRelationship(ctx context.Context, relationshipID model.RelationshipID) ([]*model.Memory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Memory, 0)
	for _, m := range r.entries {
		if m.RelationshipID == relationshipID {
			result = append(result, copyMemory(m))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func (r *memoryRepository) MarkViewed(ctx context.Context, ids []model.MemoryID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		if mem, exists := r.entries[id]; exists {
			mem.IsNew = false
		}
	}

	return nil
}

// incrementReaction must be called while the caller holds the quota lock so
// that the quota record and the count change become visible together.
func (r *memoryRepository) incrementReaction(id model.MemoryID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	mem, exists := r.entries[id]
	if !exists {
		return goerr.Wrap(ErrNotFound, "memory not found", goerr.V(model.MemoryIDKey, id))
	}
	mem.ReactionCount++
	return nil
}

func (r *memoryRepository) exists(id model.MemoryID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.entries[id]
	return ok
}
