package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/model"
)

const reactionQuotasCollection = "reaction_quotas"

type reactionQuotaDoc struct {
	UserID    string    `firestore:"user_id"`
	Date      string    `firestore:"date"`
	MemoryIDs []string  `firestore:"memory_ids"`
	UsedCount int64     `firestore:"used_count"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

func toReactionQuota(d *reactionQuotaDoc) *model.ReactionQuota {
	ids := make([]model.MemoryID, len(d.MemoryIDs))
	for i, id := range d.MemoryIDs {
		ids[i] = model.MemoryID(id)
	}
	return &model.ReactionQuota{
		UserID:    d.UserID,
		Date:      model.Day(d.Date),
		MemoryIDs: ids,
		UpdatedAt: d.UpdatedAt,
	}
}

func toReactionQuotaDoc(q *model.ReactionQuota) *reactionQuotaDoc {
	ids := make([]string, len(q.MemoryIDs))
	for i, id := range q.MemoryIDs {
		ids[i] = string(id)
	}
	return &reactionQuotaDoc{
		UserID:    q.UserID,
		Date:      string(q.Date),
		MemoryIDs: ids,
		UsedCount: int64(len(ids)),
		UpdatedAt: q.UpdatedAt,
	}
}

type reactionQuotaRepository struct {
	client           *firestore.Client
	collectionPrefix string
	memories         *memoryRepository
}

func newReactionQuotaRepository(client *firestore.Client, memories *memoryRepository) *reactionQuotaRepository {
	return &reactionQuotaRepository{
		client:   client,
		memories: memories,
	}
}

func (r *reactionQuotaRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, reactionQuotasCollection))
}

func (r *reactionQuotaRepository) Get(ctx context.Context, userID string, date model.Day) (*model.ReactionQuota, error) {
	key := model.ReactionQuotaKey(userID, date)
	doc, err := r.collection().Doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get reaction quota", goerr.V("key", key))
	}

	var d reactionQuotaDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal reaction quota", goerr.V("key", key))
	}

	return toReactionQuota(&d), nil
}

// Consume runs the quota check, the quota record and the reaction count
// increment in one transaction. Firestore retries the transaction on
// contention, so two concurrent requests for the last unit cannot both pass
// the check.
func (r *reactionQuotaRepository) Consume(ctx context.Context, userID string, date model.Day, memoryID model.MemoryID, limit int) (*model.ReactionQuota, error) {
	quotaRef := r.collection().Doc(model.ReactionQuotaKey(userID, date))
	memoryRef := r.memories.collection().Doc(string(memoryID))

	var updated *model.ReactionQuota
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(memoryRef); err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "memory not found", goerr.V(model.MemoryIDKey, memoryID))
			}
			return goerr.Wrap(err, "failed to get memory")
		}

		current := &model.ReactionQuota{UserID: userID, Date: date}
		doc, err := tx.Get(quotaRef)
		if err != nil && status.Code(err) != codes.NotFound {
			return goerr.Wrap(err, "failed to get reaction quota")
		}
		if err == nil {
			var d reactionQuotaDoc
			if err := doc.DataTo(&d); err != nil {
				return goerr.Wrap(err, "failed to unmarshal reaction quota")
			}
			current = toReactionQuota(&d)
		}

		if current.HasReacted(memoryID) {
			return goerr.Wrap(model.ErrAlreadyReacted, "memory already reacted",
				goerr.V(model.UserIDKey, userID), goerr.V(model.MemoryIDKey, memoryID))
		}
		if current.UsedCount() >= limit {
			return goerr.Wrap(model.ErrQuotaExceeded, "reaction quota exceeded",
				goerr.V(model.UserIDKey, userID), goerr.V("limit", limit))
		}

		current.MemoryIDs = append(current.MemoryIDs, memoryID)
		current.UpdatedAt = time.Now().UTC()
		updated = current

		if err := tx.Set(quotaRef, toReactionQuotaDoc(current)); err != nil {
			return err
		}
		return tx.Update(memoryRef, []firestore.Update{
			{Path: "reaction_count", Value: firestore.Increment(1)},
		})
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to consume reaction quota",
			goerr.V(model.UserIDKey, userID), goerr.V(model.MemoryIDKey, memoryID))
	}

	return updated, nil
}
