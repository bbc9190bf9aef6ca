package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/interfaces"
	"github.com/Neperienx/souvella-web-sub000/pkg/domain/model"
	"github.com/Neperienx/souvella-web-sub000/pkg/utils/logging"
)

// FreshnessUseCase drives the New -> Viewed transition of memories. The
// transition is one-way; only creating a memory produces a New one.
type FreshnessUseCase struct {
	repo interfaces.Repository
	days *calendar
}

func NewFreshnessUseCase(repo interfaces.Repository, days *calendar) *FreshnessUseCase {
	return &FreshnessUseCase{
		repo: repo,
		days: days,
	}
}

// MarkRelationshipMemoriesViewed flips every New memory created before today
// to Viewed and returns how many changed. Memories posted today stay New.
func (uc *FreshnessUseCase) MarkRelationshipMemoriesViewed(ctx context.Context, relationshipID model.RelationshipID) (int, error) {
	memories, err := uc.listMemories(ctx, relationshipID)
	if err != nil {
		return 0, err
	}

	start := uc.days.startOfToday()
	var ids []model.MemoryID
	for _, m := range memories {
		if m.IsNew && m.CreatedBefore(start) {
			ids = append(ids, m.ID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}

	if err := uc.repo.Memory().MarkViewed(ctx, ids); err != nil {
		return 0, storeError(err, "failed to mark memories viewed",
			goerr.V(RelationshipIDKey, relationshipID), goerr.V("count", len(ids)))
	}

	logging.From(ctx).Debug("memories marked viewed",
		"relationship_id", relationshipID, "count", len(ids))
	return len(ids), nil
}

// ListNewMemories returns memories flagged New or created today, newest first
func (uc *FreshnessUseCase) ListNewMemories(ctx context.Context, relationshipID model.RelationshipID) ([]*model.Memory, error) {
	memories, err := uc.listMemories(ctx, relationshipID)
	if err != nil {
		return nil, err
	}

	start := uc.days.startOfToday()
	result := make([]*model.Memory, 0)
	for _, m := range memories {
		if m.IsNew || !m.CreatedBefore(start) {
			result = append(result, m)
		}
	}
	return result, nil
}

func (uc *FreshnessUseCase) listMemories(ctx context.Context, relationshipID model.RelationshipID) ([]*model.Memory, error) {
	if _, err := uc.repo.Relationship().Get(ctx, relationshipID); err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrRelationshipNotFound, "relationship not found", goerr.V(RelationshipIDKey, relationshipID))
		}
		return nil, storeError(err, "failed to get relationship", goerr.V(RelationshipIDKey, relationshipID))
	}

	memories, err := uc.repo.Memory().ListByRelationship(ctx, relationshipID)
	if err != nil {
		return nil, storeError(err, "failed to list memories", goerr.V(RelationshipIDKey, relationshipID))
	}
	return memories, nil
}
