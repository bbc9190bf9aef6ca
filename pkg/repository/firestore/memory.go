package firestore

import (
	"context"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/model"
	"github.com/Neperienx/souvella-web-sub000/pkg/domain/types"
)

const (
	memoriesCollection = "memories"

	// Maximum document references per GetAll request
	firestoreGetAllLimit = 30
)

// memoryDoc is the Firestore document representation of model.Memory.
type memoryDoc struct {
	ID             string    `firestore:"id"`
	RelationshipID string    `firestore:"relationship_id"`
	AuthorID       string    `firestore:"author_id"`
	Kind           string    `firestore:"kind"`
	Body           string    `firestore:"body"`
	MediaRef       string    `firestore:"media_ref,omitempty"`
	ReactionCount  int64     `firestore:"reaction_count"`
	IsNew          bool      `firestore:"is_new"`
	CreatedAt      time.Time `firestore:"created_at"`
}

func toMemoryDoc(m *model.Memory) *memoryDoc {
	return &memoryDoc{
		ID:             string(m.ID),
		RelationshipID: string(m.RelationshipID),
		AuthorID:       m.AuthorID,
		Kind:           string(m.Kind),
		Body:           m.Body,
		MediaRef:       m.MediaRef,
		ReactionCount:  int64(m.ReactionCount),
		IsNew:          m.IsNew,
		CreatedAt:      m.CreatedAt,
	}
}

// fromMemoryDoc converts and validates a stored document so that malformed
// data is rejected at the store boundary.
func fromMemoryDoc(d *memoryDoc) (*model.Memory, error) {
	m := &model.Memory{
		ID:             model.MemoryID(d.ID),
		RelationshipID: model.RelationshipID(d.RelationshipID),
		AuthorID:       d.AuthorID,
		Kind:           types.MemoryKind(d.Kind),
		Body:           d.Body,
		MediaRef:       d.MediaRef,
		ReactionCount:  int(d.ReactionCount),
		IsNew:          d.IsNew,
		CreatedAt:      d.CreatedAt,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeMemory(snap *firestore.DocumentSnapshot) (*model.Memory, error) {
	var d memoryDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal memory", goerr.V("doc_id", snap.Ref.ID))
	}
	m, err := fromMemoryDoc(&d)
	if err != nil {
		return nil, goerr.Wrap(err, "malformed memory document", goerr.V("doc_id", snap.Ref.ID))
	}
	return m, nil
}

type memoryRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newMemoryRepository(client *firestore.Client) *memoryRepository {
	return &memoryRepository{client: client}
}

func (r *memoryRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, memoriesCollection))
}

func (r *memoryRepository) Create(ctx context.Context, mem *model.Memory) (*model.Memory, error) {
	created := *mem
	if created.ID == "" {
		created.ID = model.NewMemoryID()
	}
	created.ReactionCount = 0
	created.IsNew = true
	created.CreatedAt = time.Now().UTC()

	if err := created.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid memory")
	}

	docRef := r.collection().Doc(string(created.ID))
	if _, err := docRef.Create(ctx, toMemoryDoc(&created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create memory", goerr.V(model.MemoryIDKey, created.ID))
	}

	return &created, nil
}

func (r *memoryRepository) Get(ctx context.Context, id model.MemoryID) (*model.Memory, error) {
	doc, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "memory not found", goerr.V(model.MemoryIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get memory", goerr.V(model.MemoryIDKey, id))
	}

	return decodeMemory(doc)
}

// GetByIDs splits the IDs into GetAll batches and fetches them concurrently
func (r *memoryRepository) GetByIDs(ctx context.Context, ids []model.MemoryID) (map[model.MemoryID]*model.Memory, error) {
	result := make(map[model.MemoryID]*model.Memory, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var mu sync.Mutex
	eg, ctx := errgroup.WithContext(ctx)

	for i := 0; i < len(ids); i += firestoreGetAllLimit {
		end := min(i+firestoreGetAllLimit, len(ids))
		batch := ids[i:end]

		eg.Go(func() error {
			refs := make([]*firestore.DocumentRef, len(batch))
			for j, id := range batch {
				refs[j] = r.collection().Doc(string(id))
			}

			docs, err := r.client.GetAll(ctx, refs)
			if err != nil {
				return goerr.Wrap(err, "failed to batch get memories", goerr.V("count", len(batch)))
			}

			for _, doc := range docs {
				if !doc.Exists() {
					// Missing memories are not included in the result map
					continue
				}
				m, err := decodeMemory(doc)
				if err != nil {
					return err
				}

				mu.Lock()
				result[m.ID] = m
				mu.Unlock()
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *memoryRepository) ListByRelationship(ctx context.Context, relationshipID model.RelationshipID) ([]*model.Memory, error) {
	iter := r.collection().
		Where("relationship_id", "==", string(relationshipID)).
		OrderBy("created_at", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	memories := make([]*model.Memory, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate memories",
				goerr.V(model.RelationshipIDKey, relationshipID))
		}

		m, err := decodeMemory(doc)
		if err != nil {
			return nil, err
		}
		memories = append(memories, m)
	}

	return memories, nil
}

// MarkViewed clears the freshness flag with a BulkWriter, which batches the
// updates within Firestore write limits.
func (r *memoryRepository) MarkViewed(ctx context.Context, ids []model.MemoryID) error {
	if len(ids) == 0 {
		return nil
	}

	bulkWriter := r.client.BulkWriter(ctx)

	jobs := make([]*firestore.BulkWriterJob, 0, len(ids))
	for _, id := range ids {
		job, err := bulkWriter.Update(r.collection().Doc(string(id)), []firestore.Update{
			{Path: "is_new", Value: false},
		})
		if err != nil {
			bulkWriter.End()
			return goerr.Wrap(err, "failed to add Update operation to bulk writer", goerr.V(model.MemoryIDKey, id))
		}
		jobs = append(jobs, job)
	}

	// Flush and wait for all operations to complete
	bulkWriter.End()

	for i, job := range jobs {
		if _, err := job.Results(); err != nil {
			if status.Code(err) == codes.NotFound {
				continue
			}
			return goerr.Wrap(err, "failed to mark memory as viewed", goerr.V(model.MemoryIDKey, ids[i]))
		}
	}

	return nil
}
