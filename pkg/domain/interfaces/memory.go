package interfaces

import (
	"context"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/model"
)

// MemoryRepository defines the interface for Memory data persistence
type MemoryRepository interface {
	// Create creates a new memory entry. ID and CreatedAt are assigned, IsNew is set.
	Create(ctx context.Context, mem *model.Memory) (*model.Memory, error)

	// Get retrieves a memory entry by ID
	Get(ctx context.Context, id model.MemoryID) (*model.Memory, error)

	// GetByIDs retrieves multiple memories. Missing IDs are not included in the result map.
	GetByIDs(ctx context.Context, ids []model.MemoryID) (map[model.MemoryID]*model.Memory, error)

	// ListByRelationship retrieves all memories of a relationship sorted by CreatedAt desc
	ListByRelationship(ctx context.Context, relationshipID model.RelationshipID) ([]*model.Memory, error)

	// MarkViewed sets IsNew=false on the given memories in one batch
	MarkViewed(ctx context.Context, ids []model.MemoryID) error
}
