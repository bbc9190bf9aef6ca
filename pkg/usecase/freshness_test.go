package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/model"
	"github.com/Neperienx/souvella-web-sub000/pkg/usecase"
)

func TestFreshness(t *testing.T) {
	t.Run("memories created today stay new after mark viewed", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		rel := f.relationship(t, "alice", "bob")
		mem := f.textMemory(t, rel, "today")
		f.clock.Set(mem.CreatedAt)

		marked, err := f.uc.Freshness.MarkRelationshipMemoriesViewed(ctx, rel.ID)
		gt.NoError(t, err).Required()
		gt.Number(t, marked).Equal(0)

		stored, err := f.repo.Memory().Get(ctx, mem.ID)
		gt.NoError(t, err).Required()
		gt.B(t, stored.IsNew).True()

		list, err := f.uc.Freshness.ListNewMemories(ctx, rel.ID)
		gt.NoError(t, err).Required()
		gt.A(t, memoryIDs(list)).Equal([]model.MemoryID{mem.ID})
	})

	t.Run("memories from before today become viewed", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		rel := f.relationship(t, "alice", "bob")
		f.textMemory(t, rel, "first")
		last := f.textMemory(t, rel, "second")
		f.clock.Set(last.CreatedAt.Add(24 * time.Hour))

		marked, err := f.uc.Freshness.MarkRelationshipMemoriesViewed(ctx, rel.ID)
		gt.NoError(t, err).Required()
		gt.Number(t, marked).Equal(2)

		list, err := f.uc.Freshness.ListNewMemories(ctx, rel.ID)
		gt.NoError(t, err).Required()
		gt.A(t, list).Length(0)

		// Idempotent
		again, err := f.uc.Freshness.MarkRelationshipMemoriesViewed(ctx, rel.ID)
		gt.NoError(t, err).Required()
		gt.Number(t, again).Equal(0)
	})

	t.Run("same day memory viewed by another path is still listed", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		rel := f.relationship(t, "alice")
		mem := f.textMemory(t, rel, "flipped")
		f.clock.Set(mem.CreatedAt)

		gt.NoError(t, f.repo.Memory().MarkViewed(ctx, []model.MemoryID{mem.ID})).Required()

		list, err := f.uc.Freshness.ListNewMemories(ctx, rel.ID)
		gt.NoError(t, err).Required()
		gt.A(t, memoryIDs(list)).Equal([]model.MemoryID{mem.ID})

		// The window closes when the day rolls over
		f.clock.Set(mem.CreatedAt.Add(24 * time.Hour))
		list, err = f.uc.Freshness.ListNewMemories(ctx, rel.ID)
		gt.NoError(t, err).Required()
		gt.A(t, list).Length(0)
	})

	t.Run("viewed memories never become new again", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		rel := f.relationship(t, "alice", "bob")
		mem := f.textMemory(t, rel, "old")
		f.clock.Set(mem.CreatedAt.Add(48 * time.Hour))

		_, err := f.uc.Freshness.MarkRelationshipMemoriesViewed(ctx, rel.ID)
		gt.NoError(t, err).Required()

		_, err = f.uc.Reaction.ReactToMemory(ctx, mem.ID, "bob")
		gt.NoError(t, err).Required()
		_, err = f.uc.Selection.RerollDailySelection(ctx, rel.ID, 1)
		gt.NoError(t, err).Required()
		_, err = f.uc.Freshness.MarkRelationshipMemoriesViewed(ctx, rel.ID)
		gt.NoError(t, err).Required()

		stored, err := f.repo.Memory().Get(ctx, mem.ID)
		gt.NoError(t, err).Required()
		gt.B(t, stored.IsNew).False()
		gt.Number(t, stored.ReactionCount).Equal(1)
	})

	t.Run("day boundary follows the policy time zone", func(t *testing.T) {
		tokyo := time.FixedZone("JST", 9*60*60)
		policy := model.DefaultPolicy()
		policy.Location = tokyo
		f := newFixture(t, usecase.WithPolicy(policy))
		ctx := context.Background()
		rel := f.relationship(t, "alice")
		mem := f.textMemory(t, rel, "late night")

		// Just after the next Tokyo midnight
		local := mem.CreatedAt.In(tokyo)
		nextMidnight := time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 1, 0, tokyo)
		f.clock.Set(nextMidnight)

		marked, err := f.uc.Freshness.MarkRelationshipMemoriesViewed(ctx, rel.ID)
		gt.NoError(t, err).Required()
		gt.Number(t, marked).Equal(1)
	})

	t.Run("unknown relationship", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.uc.Freshness.ListNewMemories(context.Background(), model.NewRelationshipID())
		gt.Error(t, err).Is(usecase.ErrRelationshipNotFound)

		_, err = f.uc.Freshness.MarkRelationshipMemoriesViewed(context.Background(), model.NewRelationshipID())
		gt.Error(t, err).Is(usecase.ErrRelationshipNotFound)
	})
}
