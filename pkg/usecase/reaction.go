package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/interfaces"
	"github.com/Neperienx/souvella-web-sub000/pkg/domain/model"
	"github.com/Neperienx/souvella-web-sub000/pkg/utils/logging"
)

const (
	msgReactionAccepted = "reaction recorded"
	msgQuotaExceeded    = "no reactions left today"
	msgAlreadyReacted   = "already reacted to this memory today"
)

// ReactionUseCase gates thumbs up reactions with a per user daily quota.
// The quota record and the reaction count change in one repository call, so
// readers never observe one without the other.
type ReactionUseCase struct {
	repo  interfaces.Repository
	days  *calendar
	limit int
}

func NewReactionUseCase(repo interfaces.Repository, days *calendar, limit int) *ReactionUseCase {
	return &ReactionUseCase{
		repo:  repo,
		days:  days,
		limit: limit,
	}
}

// Limit returns the configured number of reactions per user and day
func (uc *ReactionUseCase) Limit() int {
	return uc.limit
}

// GetRemainingReactions returns how many reactions the user has left today
func (uc *ReactionUseCase) GetRemainingReactions(ctx context.Context, userID string) (int, error) {
	today := uc.days.today()
	quota, err := uc.repo.ReactionQuota().Get(ctx, userID, today)
	if err != nil {
		return 0, storeError(err, "failed to get reaction quota",
			goerr.V(UserIDKey, userID), goerr.V(DateKey, today))
	}
	return quota.Remaining(uc.limit), nil
}

// ReactToMemory spends one reaction of the user's daily quota on the memory.
// An exhausted quota or a repeated reaction is reported with Accepted=false
// and is not an error. The user must be a member of the memory's relationship.
func (uc *ReactionUseCase) ReactToMemory(ctx context.Context, memoryID model.MemoryID, userID string) (*model.ReactionResult, error) {
	if userID == "" {
		return nil, goerr.New("user ID is required")
	}

	mem, err := uc.repo.Memory().Get(ctx, memoryID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, goerr.Wrap(ErrMemoryNotFound, "memory not found", goerr.V(MemoryIDKey, memoryID))
	}
	if err != nil {
		return nil, storeError(err, "failed to get memory", goerr.V(MemoryIDKey, memoryID))
	}

	if err := uc.requireMember(ctx, mem, userID); err != nil {
		return nil, err
	}

	today := uc.days.today()
	quota, err := uc.repo.ReactionQuota().Consume(ctx, userID, today, memoryID, uc.limit)
	switch {
	case err == nil:
		logging.From(ctx).Info("reaction accepted",
			"user_id", userID, "memory_id", memoryID, "used", quota.UsedCount())
		return &model.ReactionResult{
			Accepted:  true,
			Remaining: quota.Remaining(uc.limit),
			Message:   msgReactionAccepted,
		}, nil

	case errors.Is(err, model.ErrQuotaExceeded):
		return uc.rejected(ctx, userID, msgQuotaExceeded)

	case errors.Is(err, model.ErrAlreadyReacted):
		return uc.rejected(ctx, userID, msgAlreadyReacted)

	case errors.Is(err, model.ErrNotFound):
		return nil, goerr.Wrap(ErrMemoryNotFound, "memory removed while reacting", goerr.V(MemoryIDKey, memoryID))

	default:
		return nil, storeError(err, "failed to record reaction",
			goerr.V(UserIDKey, userID), goerr.V(MemoryIDKey, memoryID))
	}
}

func (uc *ReactionUseCase) rejected(ctx context.Context, userID, msg string) (*model.ReactionResult, error) {
	remaining, err := uc.GetRemainingReactions(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &model.ReactionResult{
		Accepted:  false,
		Remaining: remaining,
		Message:   msg,
	}, nil
}

func (uc *ReactionUseCase) requireMember(ctx context.Context, mem *model.Memory, userID string) error {
	rel, err := uc.repo.Relationship().Get(ctx, mem.RelationshipID)
	if errors.Is(err, model.ErrNotFound) {
		// Orphaned memories have no member list to check against
		logging.From(ctx).Warn("memory references unknown relationship",
			"memory_id", mem.ID, "relationship_id", mem.RelationshipID)
		return nil
	}
	if err != nil {
		return storeError(err, "failed to get relationship", goerr.V(RelationshipIDKey, mem.RelationshipID))
	}

	if !rel.HasMember(userID) {
		return goerr.Wrap(ErrAccessDenied, "user cannot react to this memory",
			goerr.V(UserIDKey, userID), goerr.V(MemoryIDKey, mem.ID))
	}
	return nil
}
