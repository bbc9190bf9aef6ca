package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/model"
	"github.com/Neperienx/souvella-web-sub000/pkg/domain/types"
	"github.com/Neperienx/souvella-web-sub000/pkg/usecase"
)

type mediaStoreMock struct {
	objects map[string]bool
	err     error
}

func (m *mediaStoreMock) Exists(_ context.Context, ref string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.objects[ref], nil
}

func TestCreateMemory(t *testing.T) {
	t.Run("text memory", func(t *testing.T) {
		f := newFixture(t)
		rel := f.relationship(t, "alice", "bob")

		mem, err := f.uc.Memory.CreateMemory(context.Background(), rel.ID, "bob", usecase.CreateMemoryInput{
			Kind: types.MemoryKindText,
			Body: " picnic by the river ",
		})
		gt.NoError(t, err).Required()
		gt.V(t, mem.Body).Equal("picnic by the river")
		gt.V(t, mem.AuthorID).Equal("bob")
		gt.B(t, mem.IsNew).True()
		gt.Number(t, mem.ReactionCount).Equal(0)
	})

	t.Run("validation", func(t *testing.T) {
		f := newFixture(t)
		rel := f.relationship(t, "alice")

		testCases := []struct {
			name   string
			input  usecase.CreateMemoryInput
			expect error
		}{
			{"empty text", usecase.CreateMemoryInput{Kind: types.MemoryKindText, Body: "  "}, usecase.ErrInvalidMemory},
			{"unknown kind", usecase.CreateMemoryInput{Kind: "video", Body: "x"}, usecase.ErrInvalidMemory},
			{"text with media", usecase.CreateMemoryInput{Kind: types.MemoryKindText, Body: "x", MediaRef: "gs://b/o"}, usecase.ErrInvalidMemory},
			{"image without media", usecase.CreateMemoryInput{Kind: types.MemoryKindImage}, usecase.ErrInvalidMedia},
			{"audio without media", usecase.CreateMemoryInput{Kind: types.MemoryKindAudio, Body: "song"}, usecase.ErrInvalidMedia},
		}
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := f.uc.Memory.CreateMemory(context.Background(), rel.ID, "alice", tc.input)
				gt.Error(t, err).Is(tc.expect)
			})
		}
	})

	t.Run("media reference must exist when a store is configured", func(t *testing.T) {
		media := &mediaStoreMock{objects: map[string]bool{"gs://jar/photo.jpg": true}}
		f := newFixture(t, usecase.WithMediaStore(media))
		ctx := context.Background()
		rel := f.relationship(t, "alice")

		mem, err := f.uc.Memory.CreateMemory(ctx, rel.ID, "alice", usecase.CreateMemoryInput{
			Kind:     types.MemoryKindImage,
			MediaRef: "gs://jar/photo.jpg",
		})
		gt.NoError(t, err).Required()
		gt.V(t, mem.MediaRef).Equal("gs://jar/photo.jpg")

		_, err = f.uc.Memory.CreateMemory(ctx, rel.ID, "alice", usecase.CreateMemoryInput{
			Kind:     types.MemoryKindImage,
			MediaRef: "gs://jar/failed-upload.jpg",
		})
		gt.Error(t, err).Is(usecase.ErrInvalidMedia)

		media.err = errors.New("storage timeout")
		_, err = f.uc.Memory.CreateMemory(ctx, rel.ID, "alice", usecase.CreateMemoryInput{
			Kind:     types.MemoryKindAudio,
			MediaRef: "gs://jar/voice.m4a",
		})
		gt.Error(t, err).Is(usecase.ErrStoreUnavailable)
	})

	t.Run("author must be a member", func(t *testing.T) {
		f := newFixture(t)
		rel := f.relationship(t, "alice")

		_, err := f.uc.Memory.CreateMemory(context.Background(), rel.ID, "mallory", usecase.CreateMemoryInput{
			Kind: types.MemoryKindText,
			Body: "hi",
		})
		gt.Error(t, err).Is(usecase.ErrAccessDenied)

		_, err = f.uc.Memory.CreateMemory(context.Background(), model.NewRelationshipID(), "alice", usecase.CreateMemoryInput{
			Kind: types.MemoryKindText,
			Body: "hi",
		})
		gt.Error(t, err).Is(usecase.ErrRelationshipNotFound)
	})
}

func TestTimelineAndGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rel := f.relationship(t, "alice", "bob")
	m1 := f.textMemory(t, rel, "first")
	m2 := f.textMemory(t, rel, "second")

	timeline, err := f.uc.Memory.ListTimeline(ctx, rel.ID)
	gt.NoError(t, err).Required()
	gt.A(t, memoryIDs(timeline)).Equal([]model.MemoryID{m2.ID, m1.ID})

	got, err := f.uc.Memory.GetMemory(ctx, m1.ID, "bob")
	gt.NoError(t, err).Required()
	gt.V(t, got.Body).Equal("first")

	_, err = f.uc.Memory.GetMemory(ctx, m1.ID, "mallory")
	gt.Error(t, err).Is(usecase.ErrAccessDenied)

	_, err = f.uc.Memory.GetMemory(ctx, model.NewMemoryID(), "bob")
	gt.Error(t, err).Is(usecase.ErrMemoryNotFound)
}
