package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/model"
)

func TestReactionQuota(t *testing.T) {
	t.Run("nil quota has nothing used", func(t *testing.T) {
		var q *model.ReactionQuota
		gt.Number(t, q.UsedCount()).Equal(0)
		gt.Number(t, q.Remaining(2)).Equal(2)
		gt.Bool(t, q.HasReacted("m1")).False()
	})

	t.Run("remaining is floored at zero", func(t *testing.T) {
		q := &model.ReactionQuota{UserID: "u1", Date: "2024-03-01", MemoryIDs: []model.MemoryID{"m1", "m2", "m3"}}
		gt.Number(t, q.UsedCount()).Equal(3)
		gt.Number(t, q.Remaining(2)).Equal(0)
		gt.Bool(t, q.HasReacted("m2")).True()
		gt.Bool(t, q.HasReacted("m4")).False()
	})

	t.Run("key is user and day", func(t *testing.T) {
		gt.Value(t, model.ReactionQuotaKey("u1", "2024-03-01")).Equal("u1_2024-03-01")
	})
}
