package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/interfaces"
	"github.com/Neperienx/souvella-web-sub000/pkg/domain/model"
	"github.com/Neperienx/souvella-web-sub000/pkg/domain/types"
	"github.com/Neperienx/souvella-web-sub000/pkg/utils/logging"
)

// SelectionUseCase materializes "Today's Memory Gems". A selection is
// Absent until the first read of the day computes it; from then on it is
// Computed and reads only re-resolve the stored IDs. Two concurrent first
// reads may both compute, and the last write wins.
type SelectionUseCase struct {
	repo         interfaces.Repository
	sampler      *Sampler
	days         *calendar
	defaultCount int
}

func NewSelectionUseCase(repo interfaces.Repository, sampler *Sampler, days *calendar, defaultCount int) *SelectionUseCase {
	return &SelectionUseCase{
		repo:         repo,
		sampler:      sampler,
		days:         days,
		defaultCount: defaultCount,
	}
}

// ComputeOrFetchDailySelection returns the selection of the day, computing and
// storing it when absent. A count of zero or less uses the default count.
func (uc *SelectionUseCase) ComputeOrFetchDailySelection(ctx context.Context, relationshipID model.RelationshipID, date model.Day, count int) ([]*model.Memory, error) {
	if count <= 0 {
		count = uc.defaultCount
	}

	if err := uc.requireRelationship(ctx, relationshipID); err != nil {
		return nil, err
	}

	sel, err := uc.repo.DailySelection().Get(ctx, relationshipID, date)
	if err != nil {
		return nil, storeError(err, "failed to get daily selection",
			goerr.V(RelationshipIDKey, relationshipID), goerr.V(DateKey, date))
	}

	switch sel.State() {
	case types.SelectionStateComputed:
		return uc.resolve(ctx, sel)
	default:
		return uc.compute(ctx, relationshipID, date, count)
	}
}

// RerollDailySelection samples a new selection for today and overwrites the
// stored one.
func (uc *SelectionUseCase) RerollDailySelection(ctx context.Context, relationshipID model.RelationshipID, count int) ([]*model.Memory, error) {
	if err := uc.requireRelationship(ctx, relationshipID); err != nil {
		return nil, err
	}

	return uc.compute(ctx, relationshipID, uc.days.today(), count)
}

func (uc *SelectionUseCase) requireRelationship(ctx context.Context, relationshipID model.RelationshipID) error {
	_, err := uc.repo.Relationship().Get(ctx, relationshipID)
	if errors.Is(err, model.ErrNotFound) {
		return goerr.Wrap(ErrRelationshipNotFound, "relationship not found", goerr.V(RelationshipIDKey, relationshipID))
	}
	if err != nil {
		return storeError(err, "failed to get relationship", goerr.V(RelationshipIDKey, relationshipID))
	}
	return nil
}

func (uc *SelectionUseCase) compute(ctx context.Context, relationshipID model.RelationshipID, date model.Day, count int) ([]*model.Memory, error) {
	candidates, err := uc.repo.Memory().ListByRelationship(ctx, relationshipID)
	if err != nil {
		return nil, storeError(err, "failed to list selection candidates", goerr.V(RelationshipIDKey, relationshipID))
	}

	selected := uc.sampler.Sample(candidates, count)

	// An empty selection is stored too, so "no memories yet" is not sampled again
	sel := model.NewDailySelection(relationshipID, date, selected, uc.days.now())
	if err := uc.repo.DailySelection().Put(ctx, sel); err != nil {
		return nil, storeError(err, "failed to store daily selection",
			goerr.V(RelationshipIDKey, relationshipID), goerr.V(DateKey, date))
	}

	logging.From(ctx).Debug("daily selection computed",
		"relationship_id", relationshipID,
		"date", date,
		"candidates", len(candidates),
		"selected", len(selected))

	return selected, nil
}

// resolve loads the stored IDs in order. IDs that no longer resolve, or that
// belong to another relationship, are skipped since the selection is only a
// cache of the memory collection.
func (uc *SelectionUseCase) resolve(ctx context.Context, sel *model.DailySelection) ([]*model.Memory, error) {
	found, err := uc.repo.Memory().GetByIDs(ctx, sel.MemoryIDs)
	if err != nil {
		return nil, storeError(err, "failed to resolve daily selection",
			goerr.V(RelationshipIDKey, sel.RelationshipID), goerr.V(DateKey, sel.Date))
	}

	logger := logging.From(ctx)
	result := make([]*model.Memory, 0, len(sel.MemoryIDs))
	for _, id := range sel.MemoryIDs {
		mem, ok := found[id]
		if !ok {
			logger.Warn("inconsistent reference in daily selection: memory not found",
				"memory_id", id, "relationship_id", sel.RelationshipID, "date", sel.Date)
			continue
		}
		if mem.RelationshipID != sel.RelationshipID {
			logger.Warn("inconsistent reference in daily selection: memory of another relationship",
				"memory_id", id, "relationship_id", sel.RelationshipID, "owner_relationship_id", mem.RelationshipID)
			continue
		}
		result = append(result, mem)
	}

	return result, nil
}
