package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/model"
)

type dailySelectionRepository struct {
	mu         sync.RWMutex
	selections map[string]*model.DailySelection
}

func newDailySelectionRepository() *dailySelectionRepository {
	return &dailySelectionRepository{
		selections: make(map[string]*model.DailySelection),
	}
}

func copySelection(s *model.DailySelection) *model.DailySelection {
	ids := make([]model.MemoryID, len(s.MemoryIDs))
	copy(ids, s.MemoryIDs)

	return &model.DailySelection{
		RelationshipID: s.RelationshipID,
		Date:           s.Date,
		MemoryIDs:      ids,
		CreatedAt:      s.CreatedAt,
	}
}

func (r *dailySelectionRepository) Get(ctx context.Context, relationshipID model.RelationshipID, date model.Day) (*model.DailySelection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sel, exists := r.selections[model.DailySelectionKey(relationshipID, date)]
	if !exists {
		return nil, nil
	}

	return copySelection(sel), nil
}

func (r *dailySelectionRepository) Put(ctx context.Context, sel *model.DailySelection) error {
	if err := sel.Validate(); err != nil {
		return goerr.Wrap(err, "invalid daily selection")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.selections[sel.Key()] = copySelection(sel)
	return nil
}
