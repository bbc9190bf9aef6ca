package interfaces

import (
	"context"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/model"
)

// ReactionQuotaRepository owns per-user daily reaction quota records
type ReactionQuotaRepository interface {
	// Get returns the user's quota record for the day, or nil when nothing was spent
	Get(ctx context.Context, userID string, date model.Day) (*model.ReactionQuota, error)

	// Consume atomically checks the quota, records the reaction and increments
	// the memory's reaction count. It fails with model.ErrQuotaExceeded,
	// model.ErrAlreadyReacted or model.ErrNotFound without mutating anything.
	Consume(ctx context.Context, userID string, date model.Day, memoryID model.MemoryID, limit int) (*model.ReactionQuota, error)
}
