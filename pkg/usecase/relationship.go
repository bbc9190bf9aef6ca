package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/interfaces"
	"github.com/Neperienx/souvella-web-sub000/pkg/domain/model"
	"github.com/Neperienx/souvella-web-sub000/pkg/utils/logging"
)

// inviteCodeAttempts bounds retries when a generated code is already taken
const inviteCodeAttempts = 5

type RelationshipUseCase struct {
	repo       interfaces.Repository
	maxMembers int
}

func NewRelationshipUseCase(repo interfaces.Repository, maxMembers int) *RelationshipUseCase {
	return &RelationshipUseCase{
		repo:       repo,
		maxMembers: maxMembers,
	}
}

// CreateRelationship creates a relationship with the user as its first member
func (uc *RelationshipUseCase) CreateRelationship(ctx context.Context, userID, name string) (*model.Relationship, error) {
	if userID == "" {
		return nil, goerr.New("user ID is required")
	}

	code, err := uc.freeInviteCode(ctx)
	if err != nil {
		return nil, err
	}

	created, err := uc.repo.Relationship().Create(ctx, &model.Relationship{
		Name:       strings.TrimSpace(name),
		MemberIDs:  []string{userID},
		InviteCode: code,
	})
	if err != nil {
		return nil, storeError(err, "failed to create relationship", goerr.V(UserIDKey, userID))
	}

	logging.From(ctx).Info("relationship created",
		"relationship_id", created.ID, "user_id", userID)
	return created, nil
}

func (uc *RelationshipUseCase) freeInviteCode(ctx context.Context) (string, error) {
	for range inviteCodeAttempts {
		code, err := model.NewInviteCode()
		if err != nil {
			return "", err
		}

		_, err = uc.repo.Relationship().GetByInviteCode(ctx, code)
		if errors.Is(err, model.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", storeError(err, "failed to check invite code")
		}
	}
	return "", goerr.New("could not allocate a free invite code", goerr.V("attempts", inviteCodeAttempts))
}

// JoinRelationship adds the user to the relationship owning the invite code.
// Joining a relationship the user already belongs to succeeds without change.
func (uc *RelationshipUseCase) JoinRelationship(ctx context.Context, userID, inviteCode string) (*model.Relationship, error) {
	if userID == "" {
		return nil, goerr.New("user ID is required")
	}

	code := strings.ToUpper(strings.TrimSpace(inviteCode))
	if !model.IsValidInviteCode(code) {
		return nil, goerr.Wrap(ErrInvalidInviteCode, "malformed invite code", goerr.V("invite_code", inviteCode))
	}

	rel, err := uc.repo.Relationship().GetByInviteCode(ctx, code)
	if errors.Is(err, model.ErrNotFound) {
		return nil, goerr.Wrap(ErrInvalidInviteCode, "unknown invite code", goerr.V("invite_code", code))
	}
	if err != nil {
		return nil, storeError(err, "failed to look up invite code")
	}

	joined, err := uc.repo.Relationship().AddMember(ctx, rel.ID, userID, uc.maxMembers)
	switch {
	case errors.Is(err, model.ErrRelationshipFull):
		return nil, goerr.Wrap(ErrRelationshipFull, "relationship has no free seat",
			goerr.V(RelationshipIDKey, rel.ID), goerr.V("max_members", uc.maxMembers))
	case errors.Is(err, model.ErrNotFound):
		return nil, goerr.Wrap(ErrRelationshipNotFound, "relationship disappeared while joining",
			goerr.V(RelationshipIDKey, rel.ID))
	case err != nil:
		return nil, storeError(err, "failed to join relationship", goerr.V(RelationshipIDKey, rel.ID))
	}

	return joined, nil
}

// GetRelationship returns the relationship or ErrRelationshipNotFound
func (uc *RelationshipUseCase) GetRelationship(ctx context.Context, id model.RelationshipID) (*model.Relationship, error) {
	rel, err := uc.repo.Relationship().Get(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return nil, goerr.Wrap(ErrRelationshipNotFound, "relationship not found", goerr.V(RelationshipIDKey, id))
	}
	if err != nil {
		return nil, storeError(err, "failed to get relationship", goerr.V(RelationshipIDKey, id))
	}
	return rel, nil
}

// RequireMember returns the relationship when the user belongs to it
func (uc *RelationshipUseCase) RequireMember(ctx context.Context, id model.RelationshipID, userID string) (*model.Relationship, error) {
	rel, err := uc.GetRelationship(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rel.HasMember(userID) {
		return nil, goerr.Wrap(ErrAccessDenied, "not a member",
			goerr.V(RelationshipIDKey, id), goerr.V(UserIDKey, userID))
	}
	return rel, nil
}

// ListRelationshipsForUser returns every relationship the user belongs to
func (uc *RelationshipUseCase) ListRelationshipsForUser(ctx context.Context, userID string) ([]*model.Relationship, error) {
	list, err := uc.repo.Relationship().ListByMember(ctx, userID)
	if err != nil {
		return nil, storeError(err, "failed to list relationships", goerr.V(UserIDKey, userID))
	}
	return list, nil
}
