package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/m-mizutani/goerr/v2"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/model"
)

type dailySelectionRepository struct {
	db *sql.DB
}

func (r *dailySelectionRepository) Get(ctx context.Context, relationshipID model.RelationshipID, date model.Day) (*model.DailySelection, error) {
	var (
		raw       string
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT memory_ids, created_at FROM daily_selections WHERE relationship_id = ? AND date = ?",
		string(relationshipID), string(date),
	).Scan(&raw, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get daily selection",
			goerr.V(model.RelationshipIDKey, relationshipID), goerr.V("date", date))
	}

	sel := &model.DailySelection{
		RelationshipID: relationshipID,
		Date:           date,
		CreatedAt:      fromUnix(createdAt),
	}
	if err := json.Unmarshal([]byte(raw), &sel.MemoryIDs); err != nil {
		return nil, goerr.Wrap(model.ErrInvalidDocument, "failed to decode selection memory IDs",
			goerr.V(model.RelationshipIDKey, relationshipID), goerr.V("date", date), goerr.V("error", err.Error()))
	}
	if err := sel.Validate(); err != nil {
		return nil, goerr.Wrap(err, "stored daily selection is invalid")
	}
	return sel, nil
}

func (r *dailySelectionRepository) Put(ctx context.Context, sel *model.DailySelection) error {
	if err := sel.Validate(); err != nil {
		return goerr.Wrap(err, "invalid daily selection")
	}

	ids := sel.MemoryIDs
	if ids == nil {
		ids = []model.MemoryID{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return goerr.Wrap(err, "failed to encode selection memory IDs")
	}

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO daily_selections (relationship_id, date, memory_ids, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (relationship_id, date) DO UPDATE SET memory_ids = excluded.memory_ids, created_at = excluded.created_at`,
		string(sel.RelationshipID), string(sel.Date), string(raw), toUnix(sel.CreatedAt),
	); err != nil {
		return goerr.Wrap(err, "failed to put daily selection",
			goerr.V(model.RelationshipIDKey, sel.RelationshipID), goerr.V("date", sel.Date))
	}
	return nil
}
