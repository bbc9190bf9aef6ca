package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/interfaces"
	"github.com/Neperienx/souvella-web-sub000/pkg/domain/model"
	"github.com/Neperienx/souvella-web-sub000/pkg/domain/types"
)

type MemoryUseCase struct {
	repo          interfaces.Repository
	relationships *RelationshipUseCase
	media         interfaces.MediaStore
}

func NewMemoryUseCase(repo interfaces.Repository, relationships *RelationshipUseCase, media interfaces.MediaStore) *MemoryUseCase {
	return &MemoryUseCase{
		repo:          repo,
		relationships: relationships,
		media:         media,
	}
}

// CreateMemoryInput holds the user supplied fields of a new memory
type CreateMemoryInput struct {
	Kind     types.MemoryKind
	Body     string
	MediaRef string
}

// CreateMemory posts a memory to the relationship. The author must be a
// member. Media memories must reference an uploaded object when a media
// store is configured.
func (uc *MemoryUseCase) CreateMemory(ctx context.Context, relationshipID model.RelationshipID, authorID string, input CreateMemoryInput) (*model.Memory, error) {
	if _, err := uc.relationships.RequireMember(ctx, relationshipID, authorID); err != nil {
		return nil, err
	}

	body := strings.TrimSpace(input.Body)
	mediaRef := strings.TrimSpace(input.MediaRef)

	if !input.Kind.IsValid() {
		return nil, goerr.Wrap(ErrInvalidMemory, "unknown memory kind", goerr.V("kind", input.Kind))
	}
	if input.Kind == types.MemoryKindText && body == "" {
		return nil, goerr.Wrap(ErrInvalidMemory, "text memory requires a body")
	}
	if input.Kind.HasMedia() {
		if mediaRef == "" {
			return nil, goerr.Wrap(ErrInvalidMedia, "media memory requires a media reference", goerr.V("kind", input.Kind))
		}
		if err := uc.verifyMedia(ctx, mediaRef); err != nil {
			return nil, err
		}
	} else if mediaRef != "" {
		return nil, goerr.Wrap(ErrInvalidMemory, "text memory must not carry media")
	}

	created, err := uc.repo.Memory().Create(ctx, &model.Memory{
		RelationshipID: relationshipID,
		AuthorID:       authorID,
		Kind:           input.Kind,
		Body:           body,
		MediaRef:       mediaRef,
	})
	if errors.Is(err, model.ErrInvalidDocument) {
		return nil, goerr.Wrap(errors.Join(ErrInvalidMemory, err), "memory rejected by store")
	}
	if err != nil {
		return nil, storeError(err, "failed to create memory", goerr.V(RelationshipIDKey, relationshipID))
	}

	return created, nil
}

func (uc *MemoryUseCase) verifyMedia(ctx context.Context, ref string) error {
	if uc.media == nil {
		return nil
	}

	exists, err := uc.media.Exists(ctx, ref)
	if err != nil {
		return storeError(err, "failed to check media reference", goerr.V("media_ref", ref))
	}
	if !exists {
		return goerr.Wrap(ErrInvalidMedia, "media object not found", goerr.V("media_ref", ref))
	}
	return nil
}

// GetMemory returns a memory the user is allowed to see
func (uc *MemoryUseCase) GetMemory(ctx context.Context, id model.MemoryID, userID string) (*model.Memory, error) {
	mem, err := uc.repo.Memory().Get(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return nil, goerr.Wrap(ErrMemoryNotFound, "memory not found", goerr.V(MemoryIDKey, id))
	}
	if err != nil {
		return nil, storeError(err, "failed to get memory", goerr.V(MemoryIDKey, id))
	}

	if _, err := uc.relationships.RequireMember(ctx, mem.RelationshipID, userID); err != nil {
		return nil, err
	}
	return mem, nil
}

// ListTimeline returns all memories of the relationship, newest first
func (uc *MemoryUseCase) ListTimeline(ctx context.Context, relationshipID model.RelationshipID) ([]*model.Memory, error) {
	if _, err := uc.relationships.GetRelationship(ctx, relationshipID); err != nil {
		return nil, err
	}

	list, err := uc.repo.Memory().ListByRelationship(ctx, relationshipID)
	if err != nil {
		return nil, storeError(err, "failed to list memories", goerr.V(RelationshipIDKey, relationshipID))
	}
	return list, nil
}
