package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/interfaces"
)

type Firestore struct {
	client         *firestore.Client
	relationship   *relationshipRepository
	memory         *memoryRepository
	dailySelection *dailySelectionRepository
	reactionQuota  *reactionQuotaRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix prefixes every collection name, e.g. "test" gives
// "test_memories". Used to isolate integration test runs.
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.relationship.collectionPrefix = prefix
		f.memory.collectionPrefix = prefix
		f.dailySelection.collectionPrefix = prefix
		f.reactionQuota.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	memoryRepo := newMemoryRepository(client)

	f := &Firestore{
		client:         client,
		relationship:   newRelationshipRepository(client),
		memory:         memoryRepo,
		dailySelection: newDailySelectionRepository(client),
		reactionQuota:  newReactionQuotaRepository(client, memoryRepo),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Relationship() interfaces.RelationshipRepository {
	return f.relationship
}

func (f *Firestore) Memory() interfaces.MemoryRepository {
	return f.memory
}

func (f *Firestore) DailySelection() interfaces.DailySelectionRepository {
	return f.dailySelection
}

func (f *Firestore) ReactionQuota() interfaces.ReactionQuotaRepository {
	return f.reactionQuota
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

func collectionName(prefix, name string) string {
	if prefix != "" {
		return prefix + "_" + name
	}
	return name
}
