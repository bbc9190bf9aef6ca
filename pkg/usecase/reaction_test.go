package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/model"
	"github.com/Neperienx/souvella-web-sub000/pkg/usecase"
)

func TestReactToMemory(t *testing.T) {
	t.Run("quota of two allows two reactions a day", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		rel := f.relationship(t, "alice", "bob")
		memories := []*model.Memory{
			f.textMemory(t, rel, "one"),
			f.textMemory(t, rel, "two"),
			f.textMemory(t, rel, "three"),
		}

		remaining, err := f.uc.Reaction.GetRemainingReactions(ctx, "bob")
		gt.NoError(t, err).Required()
		gt.Number(t, remaining).Equal(2)

		var accepted []bool
		var remainingAfter []int
		for _, m := range memories {
			result, err := f.uc.Reaction.ReactToMemory(ctx, m.ID, "bob")
			gt.NoError(t, err).Required()
			accepted = append(accepted, result.Accepted)

			left, err := f.uc.Reaction.GetRemainingReactions(ctx, "bob")
			gt.NoError(t, err).Required()
			gt.Number(t, result.Remaining).Equal(left)
			remainingAfter = append(remainingAfter, left)
		}

		gt.A(t, accepted).Equal([]bool{true, true, false})
		gt.A(t, remainingAfter).Equal([]int{1, 0, 0})

		third, err := f.repo.Memory().Get(ctx, memories[2].ID)
		gt.NoError(t, err).Required()
		gt.Number(t, third.ReactionCount).Equal(0)
	})

	t.Run("configured limit plus one reactions accept exactly the limit", func(t *testing.T) {
		policy := model.DefaultPolicy()
		policy.MaxDailyReactions = 4
		f := newFixture(t, usecase.WithPolicy(policy))
		ctx := context.Background()
		rel := f.relationship(t, "alice", "bob")

		acceptedCount := 0
		for range policy.MaxDailyReactions + 1 {
			mem := f.textMemory(t, rel, "memory")
			result, err := f.uc.Reaction.ReactToMemory(ctx, mem.ID, "alice")
			gt.NoError(t, err).Required()
			if result.Accepted {
				acceptedCount++
			}
		}
		gt.Number(t, acceptedCount).Equal(policy.MaxDailyReactions)
	})

	t.Run("reacting twice to the same memory is rejected", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		rel := f.relationship(t, "alice", "bob")
		mem := f.textMemory(t, rel, "dinner")

		first, err := f.uc.Reaction.ReactToMemory(ctx, mem.ID, "bob")
		gt.NoError(t, err).Required()
		gt.B(t, first.Accepted).True()

		second, err := f.uc.Reaction.ReactToMemory(ctx, mem.ID, "bob")
		gt.NoError(t, err).Required()
		gt.B(t, second.Accepted).False()
		gt.Number(t, second.Remaining).Equal(1)

		stored, err := f.repo.Memory().Get(ctx, mem.ID)
		gt.NoError(t, err).Required()
		gt.Number(t, stored.ReactionCount).Equal(1)
	})

	t.Run("quota resets on the next day", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		rel := f.relationship(t, "alice", "bob")
		m1 := f.textMemory(t, rel, "one")
		m2 := f.textMemory(t, rel, "two")

		for _, m := range []*model.Memory{m1, m2} {
			result, err := f.uc.Reaction.ReactToMemory(ctx, m.ID, "bob")
			gt.NoError(t, err).Required()
			gt.B(t, result.Accepted).True()
		}

		f.clock.Set(f.clock.Now().Add(24 * time.Hour))

		remaining, err := f.uc.Reaction.GetRemainingReactions(ctx, "bob")
		gt.NoError(t, err).Required()
		gt.Number(t, remaining).Equal(2)

		result, err := f.uc.Reaction.ReactToMemory(ctx, m1.ID, "bob")
		gt.NoError(t, err).Required()
		gt.B(t, result.Accepted).True()

		stored, err := f.repo.Memory().Get(ctx, m1.ID)
		gt.NoError(t, err).Required()
		gt.Number(t, stored.ReactionCount).Equal(2)
	})

	t.Run("zero limit rejects every reaction", func(t *testing.T) {
		policy := model.DefaultPolicy()
		policy.MaxDailyReactions = 0
		f := newFixture(t, usecase.WithPolicy(policy))
		rel := f.relationship(t, "alice")
		mem := f.textMemory(t, rel, "one")

		result, err := f.uc.Reaction.ReactToMemory(context.Background(), mem.ID, "alice")
		gt.NoError(t, err).Required()
		gt.B(t, result.Accepted).False()
		gt.Number(t, result.Remaining).Equal(0)
	})

	t.Run("unknown memory", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.uc.Reaction.ReactToMemory(context.Background(), model.NewMemoryID(), "bob")
		gt.Error(t, err).Is(usecase.ErrMemoryNotFound)
	})

	t.Run("non member cannot react", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		rel := f.relationship(t, "alice", "bob")
		mem := f.textMemory(t, rel, "private")

		_, err := f.uc.Reaction.ReactToMemory(ctx, mem.ID, "mallory")
		gt.Error(t, err).Is(usecase.ErrAccessDenied)

		remaining, err := f.uc.Reaction.GetRemainingReactions(ctx, "mallory")
		gt.NoError(t, err).Required()
		gt.Number(t, remaining).Equal(2)
	})
}
