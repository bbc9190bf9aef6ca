package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/model"
)

const (
	relationshipsCollection = "relationships"
	inviteCodesCollection   = "invite_codes"
)

type relationshipDoc struct {
	ID         string    `firestore:"id"`
	Name       string    `firestore:"name"`
	MemberIDs  []string  `firestore:"member_ids"`
	InviteCode string    `firestore:"invite_code"`
	CreatedAt  time.Time `firestore:"created_at"`
}

// inviteCodeDoc reserves an invite code so that codes stay unique without a query
type inviteCodeDoc struct {
	RelationshipID string `firestore:"relationship_id"`
}

func toRelationshipDoc(r *model.Relationship) *relationshipDoc {
	return &relationshipDoc{
		ID:         string(r.ID),
		Name:       r.Name,
		MemberIDs:  r.MemberIDs,
		InviteCode: r.InviteCode,
		CreatedAt:  r.CreatedAt,
	}
}

func decodeRelationship(snap *firestore.DocumentSnapshot) (*model.Relationship, error) {
	var d relationshipDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal relationship", goerr.V("doc_id", snap.Ref.ID))
	}

	rel := &model.Relationship{
		ID:         model.RelationshipID(d.ID),
		Name:       d.Name,
		MemberIDs:  d.MemberIDs,
		InviteCode: d.InviteCode,
		CreatedAt:  d.CreatedAt,
	}
	if err := rel.Validate(); err != nil {
		return nil, goerr.Wrap(err, "malformed relationship document", goerr.V("doc_id", snap.Ref.ID))
	}
	return rel, nil
}

type relationshipRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newRelationshipRepository(client *firestore.Client) *relationshipRepository {
	return &relationshipRepository{client: client}
}

func (r *relationshipRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, relationshipsCollection))
}

func (r *relationshipRepository) inviteCodes() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, inviteCodesCollection))
}

func (r *relationshipRepository) Create(ctx context.Context, rel *model.Relationship) (*model.Relationship, error) {
	created := *rel
	if created.ID == "" {
		created.ID = model.NewRelationshipID()
	}
	created.CreatedAt = time.Now().UTC()

	if err := created.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid relationship")
	}

	relRef := r.collection().Doc(string(created.ID))
	codeRef := r.inviteCodes().Doc(created.InviteCode)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(codeRef); err == nil {
			return goerr.New("invite code already in use", goerr.V("invite_code", created.InviteCode))
		} else if status.Code(err) != codes.NotFound {
			return goerr.Wrap(err, "failed to check invite code")
		}

		if err := tx.Create(codeRef, &inviteCodeDoc{RelationshipID: string(created.ID)}); err != nil {
			return err
		}
		return tx.Create(relRef, toRelationshipDoc(&created))
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create relationship", goerr.V(model.RelationshipIDKey, created.ID))
	}

	return &created, nil
}

func (r *relationshipRepository) Get(ctx context.Context, id model.RelationshipID) (*model.Relationship, error) {
	doc, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "relationship not found", goerr.V(model.RelationshipIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get relationship", goerr.V(model.RelationshipIDKey, id))
	}

	return decodeRelationship(doc)
}

func (r *relationshipRepository) GetByInviteCode(ctx context.Context, code string) (*model.Relationship, error) {
	doc, err := r.inviteCodes().Doc(code).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "invite code not found", goerr.V("invite_code", code))
		}
		return nil, goerr.Wrap(err, "failed to get invite code", goerr.V("invite_code", code))
	}

	var d inviteCodeDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal invite code", goerr.V("invite_code", code))
	}

	return r.Get(ctx, model.RelationshipID(d.RelationshipID))
}

func (r *relationshipRepository) AddMember(ctx context.Context, id model.RelationshipID, userID string, maxMembers int) (*model.Relationship, error) {
	relRef := r.collection().Doc(string(id))

	var updated *model.Relationship
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(relRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "relationship not found", goerr.V(model.RelationshipIDKey, id))
			}
			return goerr.Wrap(err, "failed to get relationship")
		}

		rel, err := decodeRelationship(doc)
		if err != nil {
			return err
		}
		updated = rel

		if rel.HasMember(userID) {
			return nil
		}
		if len(rel.MemberIDs) >= maxMembers {
			return goerr.Wrap(model.ErrRelationshipFull, "relationship is full",
				goerr.V(model.RelationshipIDKey, id), goerr.V("max_members", maxMembers))
		}

		updated.MemberIDs = append(updated.MemberIDs, userID)
		return tx.Update(relRef, []firestore.Update{
			{Path: "member_ids", Value: firestore.ArrayUnion(userID)},
		})
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to add member", goerr.V(model.RelationshipIDKey, id))
	}

	return updated, nil
}

func (r *relationshipRepository) ListByMember(ctx context.Context, userID string) ([]*model.Relationship, error) {
	iter := r.collection().
		Where("member_ids", "array-contains", userID).
		Documents(ctx)
	defer iter.Stop()

	relationships := make([]*model.Relationship, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate relationships", goerr.V(model.UserIDKey, userID))
		}

		rel, err := decodeRelationship(doc)
		if err != nil {
			return nil, err
		}
		relationships = append(relationships, rel)
	}

	return relationships, nil
}
