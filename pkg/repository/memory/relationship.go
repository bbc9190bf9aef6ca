package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/model"
)

type relationshipRepository struct {
	mu            sync.RWMutex
	relationships map[model.RelationshipID]*model.Relationship
}

func newRelationshipRepository() *relationshipRepository {
	return &relationshipRepository{
		relationships: make(map[model.RelationshipID]*model.Relationship),
	}
}

// copyRelationship creates a deep copy of a relationship
func copyRelationship(r *model.Relationship) *model.Relationship {
	memberIDs := make([]string, len(r.MemberIDs))
	copy(memberIDs, r.MemberIDs)

	return &model.Relationship{
		ID:         r.ID,
		Name:       r.Name,
		MemberIDs:  memberIDs,
		InviteCode: r.InviteCode,
		CreatedAt:  r.CreatedAt,
	}
}

func (r *relationshipRepository) Create(ctx context.Context, rel *model.Relationship) (*model.Relationship, error) {
	created := copyRelationship(rel)
	if created.ID == "" {
		created.ID = model.NewRelationshipID()
	}
	created.CreatedAt = time.Now().UTC()

	if err := created.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid relationship")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.relationships {
		if existing.InviteCode == created.InviteCode {
			return nil, goerr.New("invite code already in use", goerr.V("invite_code", created.InviteCode))
		}
	}

	r.relationships[created.ID] = created
	return copyRelationship(created), nil
}

func (r *relationshipRepository) Get(ctx context.Context, id model.RelationshipID) (*model.Relationship, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rel, exists := r.relationships[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "relationship not found", goerr.V(model.RelationshipIDKey, id))
	}

	return copyRelationship(rel), nil
}

func (r *relationshipRepository) GetByInviteCode(ctx context.Context, code string) (*model.Relationship, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rel := range r.relationships {
		if rel.InviteCode == code {
			return copyRelationship(rel), nil
		}
	}

	return nil, goerr.Wrap(ErrNotFound, "relationship not found", goerr.V("invite_code", code))
}

func (r *relationshipRepository) AddMember(ctx context.Context, id model.RelationshipID, userID string, maxMembers int) (*model.Relationship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rel, exists := r.relationships[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "relationship not found", goerr.V(model.RelationshipIDKey, id))
	}

	if rel.HasMember(userID) {
		return copyRelationship(rel), nil
	}
	if len(rel.MemberIDs) >= maxMembers {
		return nil, goerr.Wrap(model.ErrRelationshipFull, "relationship is full",
			goerr.V(model.RelationshipIDKey, id), goerr.V("max_members", maxMembers))
	}

	rel.MemberIDs = append(rel.MemberIDs, userID)
	return copyRelationship(rel), nil
}

func (r *relationshipRepository) ListByMember(ctx context.Context, userID string) ([]*model.Relationship, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Relationship, 0)
	for _, rel := range r.relationships {
		if rel.HasMember(userID) {
			result = append(result, copyRelationship(rel))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}
