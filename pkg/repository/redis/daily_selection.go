package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/interfaces"
	"github.com/Neperienx/souvella-web-sub000/pkg/domain/model"
	"github.com/Neperienx/souvella-web-sub000/pkg/utils/logging"
)

type dailySelectionRepository struct {
	base      interfaces.DailySelectionRepository
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

type selectionEntry struct {
	MemoryIDs []string  `json:"memory_ids"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *dailySelectionRepository) key(relationshipID model.RelationshipID, date model.Day) string {
	return r.keyPrefix + model.DailySelectionKey(relationshipID, date)
}

func (r *dailySelectionRepository) Get(ctx context.Context, relationshipID model.RelationshipID, date model.Day) (*model.DailySelection, error) {
	key := r.key(relationshipID, date)

	raw, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if sel, ok := decodeSelection(ctx, raw, relationshipID, date); ok {
			return sel, nil
		}
	case errors.Is(err, redis.Nil):
		// miss
	default:
		// Cache failures fall through to the durable store
		logging.From(ctx).Warn("failed to read selection cache", "key", key, "error", err)
	}

	sel, err := r.base.Get(ctx, relationshipID, date)
	if err != nil {
		return nil, err
	}
	if sel != nil {
		r.store(ctx, sel)
	}
	return sel, nil
}

func (r *dailySelectionRepository) Put(ctx context.Context, sel *model.DailySelection) error {
	if err := r.base.Put(ctx, sel); err != nil {
		return err
	}
	r.store(ctx, sel)
	return nil
}

func (r *dailySelectionRepository) store(ctx context.Context, sel *model.DailySelection) {
	entry := selectionEntry{
		MemoryIDs: make([]string, len(sel.MemoryIDs)),
		CreatedAt: sel.CreatedAt,
	}
	for i, id := range sel.MemoryIDs {
		entry.MemoryIDs[i] = string(id)
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		logging.From(ctx).Warn("failed to encode selection cache entry", "error", err)
		return
	}

	key := r.key(sel.RelationshipID, sel.Date)
	if err := r.client.Set(ctx, key, raw, r.ttl).Err(); err != nil {
		// A stale entry would shadow the new selection, so drop it
		logging.From(ctx).Warn("failed to write selection cache", "key", key, "error", err)
		if delErr := r.client.Del(ctx, key).Err(); delErr != nil {
			logging.From(ctx).Error("failed to invalidate selection cache",
				slog.String("key", key), slog.Any("error", goerr.Wrap(delErr, "redis DEL failed")))
		}
	}
}

func decodeSelection(ctx context.Context, raw []byte, relationshipID model.RelationshipID, date model.Day) (*model.DailySelection, bool) {
	var entry selectionEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		logging.From(ctx).Warn("broken selection cache entry", "relationship_id", relationshipID, "error", err)
		return nil, false
	}

	sel := &model.DailySelection{
		RelationshipID: relationshipID,
		Date:           date,
		MemoryIDs:      make([]model.MemoryID, len(entry.MemoryIDs)),
		CreatedAt:      entry.CreatedAt,
	}
	for i, id := range entry.MemoryIDs {
		sel.MemoryIDs[i] = model.MemoryID(id)
	}
	if err := sel.Validate(); err != nil {
		logging.From(ctx).Warn("invalid selection cache entry", "relationship_id", relationshipID, "error", err)
		return nil, false
	}
	return sel, true
}
