package interfaces

import (
	"context"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/model"
)

// RelationshipRepository defines the interface for Relationship data persistence
type RelationshipRepository interface {
	// Create creates a new relationship. ID and CreatedAt are assigned when empty.
	Create(ctx context.Context, rel *model.Relationship) (*model.Relationship, error)

	// Get retrieves a relationship by ID
	Get(ctx context.Context, id model.RelationshipID) (*model.Relationship, error)

	// GetByInviteCode retrieves the relationship owning an invite code
	GetByInviteCode(ctx context.Context, code string) (*model.Relationship, error)

	// AddMember appends a user to the relationship unless already a member.
	// Fails with model.ErrRelationshipFull when maxMembers would be exceeded.
	AddMember(ctx context.Context, id model.RelationshipID, userID string, maxMembers int) (*model.Relationship, error)

	// ListByMember retrieves all relationships the user belongs to
	ListByMember(ctx context.Context, userID string) ([]*model.Relationship, error)
}
