package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/model"
	"github.com/Neperienx/souvella-web-sub000/pkg/domain/types"
)

func TestDailySelectionRepository(t *testing.T) {
	forEachBackend(t, func(t *testing.T, newRepo repoFactory) {
		now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
		today := model.Day("2026-03-14")

		t.Run("Get returns nil when absent", func(t *testing.T) {
			repo := newRepo(t)

			sel, err := repo.DailySelection().Get(context.Background(), model.NewRelationshipID(), today)
			gt.NoError(t, err).Required()
			gt.Value(t, sel.State()).Equal(types.SelectionStateAbsent)
		})

		t.Run("Put then Get preserves order", func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()
			relID := model.NewRelationshipID()
			ids := []model.MemoryID{model.NewMemoryID(), model.NewMemoryID(), model.NewMemoryID()}
			// Reverse so stored order differs from ID order
			ids[0], ids[2] = ids[2], ids[0]

			gt.NoError(t, repo.DailySelection().Put(ctx, &model.DailySelection{
				RelationshipID: relID,
				Date:           today,
				MemoryIDs:      ids,
				CreatedAt:      now,
			})).Required()

			sel, err := repo.DailySelection().Get(ctx, relID, today)
			gt.NoError(t, err).Required()
			gt.Value(t, sel.State()).Equal(types.SelectionStateComputed)
			gt.Array(t, sel.MemoryIDs).Equal(ids)
			gt.True(t, sel.CreatedAt.Equal(now))

			other, err := repo.DailySelection().Get(ctx, relID, "2026-03-15")
			gt.NoError(t, err).Required()
			gt.Value(t, other).Nil()
		})

		t.Run("Put overwrites the same day", func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()
			relID := model.NewRelationshipID()
			first := []model.MemoryID{model.NewMemoryID()}
			second := []model.MemoryID{model.NewMemoryID(), model.NewMemoryID()}

			gt.NoError(t, repo.DailySelection().Put(ctx, &model.DailySelection{
				RelationshipID: relID, Date: today, MemoryIDs: first, CreatedAt: now,
			})).Required()
			gt.NoError(t, repo.DailySelection().Put(ctx, &model.DailySelection{
				RelationshipID: relID, Date: today, MemoryIDs: second, CreatedAt: now.Add(time.Hour),
			})).Required()

			sel, err := repo.DailySelection().Get(ctx, relID, today)
			gt.NoError(t, err).Required()
			gt.Array(t, sel.MemoryIDs).Equal(second)
		})

		t.Run("empty selection is stored as computed", func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()
			relID := model.NewRelationshipID()

			gt.NoError(t, repo.DailySelection().Put(ctx, &model.DailySelection{
				RelationshipID: relID, Date: today, CreatedAt: now,
			})).Required()

			sel, err := repo.DailySelection().Get(ctx, relID, today)
			gt.NoError(t, err).Required()
			gt.Value(t, sel.State()).Equal(types.SelectionStateComputed)
			gt.Array(t, sel.MemoryIDs).Length(0)
		})

		t.Run("Put rejects duplicate memory IDs", func(t *testing.T) {
			repo := newRepo(t)
			id := model.NewMemoryID()

			err := repo.DailySelection().Put(context.Background(), &model.DailySelection{
				RelationshipID: model.NewRelationshipID(),
				Date:           today,
				MemoryIDs:      []model.MemoryID{id, id},
				CreatedAt:      now,
			})
			gt.Error(t, err).Is(model.ErrInvalidDocument)
		})
	})
}
