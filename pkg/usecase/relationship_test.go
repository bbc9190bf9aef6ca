package usecase_test

import (
	"context"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/model"
	"github.com/Neperienx/souvella-web-sub000/pkg/usecase"
)

func TestRelationshipUseCase(t *testing.T) {
	t.Run("create and join by invite code", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()

		created, err := f.uc.Relationship.CreateRelationship(ctx, "alice", "  our jar ")
		gt.NoError(t, err).Required()
		gt.V(t, created.Name).Equal("our jar")
		gt.B(t, model.IsValidInviteCode(created.InviteCode)).True()

		// Codes are accepted case-insensitively
		joined, err := f.uc.Relationship.JoinRelationship(ctx, "bob", strings.ToLower(created.InviteCode))
		gt.NoError(t, err).Required()
		gt.A(t, joined.MemberIDs).Equal([]string{"alice", "bob"})

		list, err := f.uc.Relationship.ListRelationshipsForUser(ctx, "bob")
		gt.NoError(t, err).Required()
		gt.A(t, list).Length(1)
		gt.V(t, list[0].ID).Equal(created.ID)
	})

	t.Run("joining twice is a no-op", func(t *testing.T) {
		f := newFixture(t)
		rel := f.relationship(t, "alice", "bob")

		again, err := f.uc.Relationship.JoinRelationship(context.Background(), "bob", rel.InviteCode)
		gt.NoError(t, err).Required()
		gt.A(t, again.MemberIDs).Length(2)
	})

	t.Run("third member is rejected", func(t *testing.T) {
		f := newFixture(t)
		rel := f.relationship(t, "alice", "bob")

		_, err := f.uc.Relationship.JoinRelationship(context.Background(), "carol", rel.InviteCode)
		gt.Error(t, err).Is(usecase.ErrRelationshipFull)
	})

	t.Run("invalid invite codes", func(t *testing.T) {
		f := newFixture(t)
		f.relationship(t, "alice")

		for _, code := range []string{"", "ABC", "ABCDE0", "ZZZZZZ"} {
			_, err := f.uc.Relationship.JoinRelationship(context.Background(), "bob", code)
			gt.Error(t, err).Is(usecase.ErrInvalidInviteCode)
		}
	})

	t.Run("membership is required", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		rel := f.relationship(t, "alice")

		got, err := f.uc.Relationship.RequireMember(ctx, rel.ID, "alice")
		gt.NoError(t, err).Required()
		gt.V(t, got.ID).Equal(rel.ID)

		_, err = f.uc.Relationship.RequireMember(ctx, rel.ID, "mallory")
		gt.Error(t, err).Is(usecase.ErrAccessDenied)

		_, err = f.uc.Relationship.GetRelationship(ctx, model.NewRelationshipID())
		gt.Error(t, err).Is(usecase.ErrRelationshipNotFound)
	})
}
