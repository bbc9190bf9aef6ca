package interfaces

import (
	"context"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/model"
)

// DailySelectionRepository stores at most one selection per relationship and day
type DailySelectionRepository interface {
	// Get returns the selection, or nil without error when none exists
	Get(ctx context.Context, relationshipID model.RelationshipID, date model.Day) (*model.DailySelection, error)

	// Put stores the selection, overwriting any existing one for the same relationship and day
	Put(ctx context.Context, sel *model.DailySelection) error
}
