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

const dailySelectionsCollection = "daily_selections"

type dailySelectionDoc struct {
	RelationshipID string    `firestore:"relationship_id"`
	Date           string    `firestore:"date"`
	MemoryIDs      []string  `firestore:"memory_ids"`
	CreatedAt      time.Time `firestore:"created_at"`
}

type dailySelectionRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newDailySelectionRepository(client *firestore.Client) *dailySelectionRepository {
	return &dailySelectionRepository{client: client}
}

func (r *dailySelectionRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, dailySelectionsCollection))
}

func (r *dailySelectionRepository) Get(ctx context.Context, relationshipID model.RelationshipID, date model.Day) (*model.DailySelection, error) {
	key := model.DailySelectionKey(relationshipID, date)
	doc, err := r.collection().Doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get daily selection", goerr.V("key", key))
	}

	var d dailySelectionDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal daily selection", goerr.V("key", key))
	}

	ids := make([]model.MemoryID, len(d.MemoryIDs))
	for i, id := range d.MemoryIDs {
		ids[i] = model.MemoryID(id)
	}
	sel := &model.DailySelection{
		RelationshipID: model.RelationshipID(d.RelationshipID),
		Date:           model.Day(d.Date),
		MemoryIDs:      ids,
		CreatedAt:      d.CreatedAt,
	}
	if err := sel.Validate(); err != nil {
		return nil, goerr.Wrap(err, "malformed daily selection document", goerr.V("key", key))
	}

	return sel, nil
}

// Put overwrites the selection document. Concurrent writers resolve as last writer wins.
func (r *dailySelectionRepository) Put(ctx context.Context, sel *model.DailySelection) error {
	if err := sel.Validate(); err != nil {
		return goerr.Wrap(err, "invalid daily selection")
	}

	ids := make([]string, len(sel.MemoryIDs))
	for i, id := range sel.MemoryIDs {
		ids[i] = string(id)
	}

	d := &dailySelectionDoc{
		RelationshipID: string(sel.RelationshipID),
		Date:           string(sel.Date),
		MemoryIDs:      ids,
		CreatedAt:      sel.CreatedAt,
	}
	if _, err := r.collection().Doc(sel.Key()).Set(ctx, d); err != nil {
		return goerr.Wrap(err, "failed to put daily selection", goerr.V("key", sel.Key()))
	}

	return nil
}
