package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/model"
	"github.com/Neperienx/souvella-web-sub000/pkg/utils/safe"
)

type reactionQuotaRepository struct {
	db *sql.DB
}

func loadQuota(ctx context.Context, q querier, userID string, date model.Day) (*model.ReactionQuota, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT memory_id, created_at FROM reactions WHERE user_id = ? AND date = ? ORDER BY created_at ASC, memory_id ASC",
		userID, string(date))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get reactions", goerr.V(model.UserIDKey, userID), goerr.V("date", date))
	}
	defer safe.Close(ctx, rows)

	var quota *model.ReactionQuota
	for rows.Next() {
		var (
			memoryID  string
			createdAt int64
		)
		if err := rows.Scan(&memoryID, &createdAt); err != nil {
			return nil, goerr.Wrap(err, "failed to scan reaction", goerr.V(model.UserIDKey, userID))
		}
		if quota == nil {
			quota = &model.ReactionQuota{UserID: userID, Date: date}
		}
		quota.MemoryIDs = append(quota.MemoryIDs, model.MemoryID(memoryID))
		quota.UpdatedAt = fromUnix(createdAt)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate reactions", goerr.V(model.UserIDKey, userID))
	}

	return quota, nil
}

func (r *reactionQuotaRepository) Get(ctx context.Context, userID string, date model.Day) (*model.ReactionQuota, error) {
	return loadQuota(ctx, r.db, userID, date)
}

func (r *reactionQuotaRepository) Consume(ctx context.Context, userID string, date model.Day, memoryID model.MemoryID, limit int) (*model.ReactionQuota, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to begin transaction")
	}
	defer safe.Rollback(ctx, tx)

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM memories WHERE id = ?", string(memoryID)).Scan(&exists); err != nil {
		return nil, goerr.Wrap(err, "failed to check memory", goerr.V(model.MemoryIDKey, memoryID))
	}
	if exists == 0 {
		return nil, goerr.Wrap(ErrNotFound, "memory not found", goerr.V(model.MemoryIDKey, memoryID))
	}

	current, err := loadQuota(ctx, tx, userID, date)
	if err != nil {
		return nil, err
	}
	if current.HasReacted(memoryID) {
		return nil, goerr.Wrap(model.ErrAlreadyReacted, "memory already reacted",
			goerr.V(model.UserIDKey, userID), goerr.V(model.MemoryIDKey, memoryID))
	}
	if current.UsedCount() >= limit {
		return nil, goerr.Wrap(model.ErrQuotaExceeded, "reaction quota exceeded",
			goerr.V(model.UserIDKey, userID), goerr.V("limit", limit))
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO reactions (user_id, date, memory_id, created_at) VALUES (?, ?, ?, ?)",
		userID, string(date), string(memoryID), toUnix(now),
	); err != nil {
		return nil, goerr.Wrap(err, "failed to record reaction",
			goerr.V(model.UserIDKey, userID), goerr.V(model.MemoryIDKey, memoryID))
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE memories SET reaction_count = reaction_count + 1 WHERE id = ?", string(memoryID),
	); err != nil {
		return nil, goerr.Wrap(err, "failed to increment reaction count", goerr.V(model.MemoryIDKey, memoryID))
	}

	if err := tx.Commit(); err != nil {
		return nil, goerr.Wrap(err, "failed to commit reaction",
			goerr.V(model.UserIDKey, userID), goerr.V(model.MemoryIDKey, memoryID))
	}

	updated := &model.ReactionQuota{UserID: userID, Date: date, UpdatedAt: now}
	if current != nil {
		updated.MemoryIDs = append(updated.MemoryIDs, current.MemoryIDs...)
	}
	updated.MemoryIDs = append(updated.MemoryIDs, memoryID)
	return updated, nil
}
