package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/model"
)

type reactionQuotaRepository struct {
	mu       sync.RWMutex
	quotas   map[string]*model.ReactionQuota
	memories *memoryRepository
}

func newReactionQuotaRepository(memories *memoryRepository) *reactionQuotaRepository {
	return &reactionQuotaRepository{
		quotas:   make(map[string]*model.ReactionQuota),
		memories: memories,
	}
}

func copyQuota(q *model.ReactionQuota) *model.ReactionQuota {
	ids := make([]model.MemoryID, len(q.MemoryIDs))
	copy(ids, q.MemoryIDs)

	return &model.ReactionQuota{
		UserID:    q.UserID,
		Date:      q.Date,
		MemoryIDs: ids,
		UpdatedAt: q.UpdatedAt,
	}
}

func (r *reactionQuotaRepository) Get(ctx context.Context, userID string, date model.Day) (*model.ReactionQuota, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q, exists := r.quotas[model.ReactionQuotaKey(userID, date)]
	if !exists {
		return nil, nil
	}

	return copyQuota(q), nil
}

func (r *reactionQuotaRepository) Consume(ctx context.Context, userID string, date model.Day, memoryID model.MemoryID, limit int) (*model.ReactionQuota, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := model.ReactionQuotaKey(userID, date)
	current := r.quotas[key]

	if !r.memories.exists(memoryID) {
		return nil, goerr.Wrap(ErrNotFound, "memory not found", goerr.V(model.MemoryIDKey, memoryID))
	}
	if current.HasReacted(memoryID) {
		return nil, goerr.Wrap(model.ErrAlreadyReacted, "memory already reacted",
			goerr.V(model.UserIDKey, userID), goerr.V(model.MemoryIDKey, memoryID))
	}
	if current.UsedCount() >= limit {
		return nil, goerr.Wrap(model.ErrQuotaExceeded, "reaction quota exceeded",
			goerr.V(model.UserIDKey, userID), goerr.V("limit", limit))
	}

	if err := r.memories.incrementReaction(memoryID); err != nil {
		return nil, goerr.Wrap(err, "failed to increment reaction count")
	}

	updated := &model.ReactionQuota{UserID: userID, Date: date}
	if current != nil {
		updated = copyQuota(current)
	}
	updated.MemoryIDs = append(updated.MemoryIDs, memoryID)
	updated.UpdatedAt = time.Now().UTC()
	r.quotas[key] = updated

	return copyQuota(updated), nil
}
