package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/model"
	"github.com/Neperienx/souvella-web-sub000/pkg/domain/types"
)

func TestDailySelection_State(t *testing.T) {
	var absent *model.DailySelection
	gt.Value(t, absent.State()).Equal(types.SelectionStateAbsent)

	computed := model.NewDailySelection("rel-1", "2024-03-01", nil, time.Now())
	gt.Value(t, computed.State()).Equal(types.SelectionStateComputed)
	gt.A(t, computed.MemoryIDs).Length(0)
}

func TestNewDailySelection_KeepsOrder(t *testing.T) {
	memories := []*model.Memory{{ID: "c"}, {ID: "a"}, {ID: "b"}}
	sel := model.NewDailySelection("rel-1", "2024-03-01", memories, time.Now())

	gt.A(t, sel.MemoryIDs).Equal([]model.MemoryID{"c", "a", "b"})
	gt.Value(t, sel.Key()).Equal("rel-1_2024-03-01")
	gt.Value(t, model.DailySelectionKey("rel-1", "2024-03-01")).Equal(sel.Key())
}

func TestDailySelection_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		sel := &model.DailySelection{RelationshipID: "rel-1", Date: "2024-03-01", MemoryIDs: []model.MemoryID{"a", "b"}}
		gt.NoError(t, sel.Validate())
	})

	t.Run("duplicate ids", func(t *testing.T) {
		sel := &model.DailySelection{RelationshipID: "rel-1", Date: "2024-03-01", MemoryIDs: []model.MemoryID{"a", "a"}}
		err := sel.Validate()
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, model.ErrInvalidDocument)).True()
	})

	t.Run("bad date", func(t *testing.T) {
		sel := &model.DailySelection{RelationshipID: "rel-1", Date: "03/01/2024"}
		gt.Error(t, sel.Validate())
	})

	t.Run("missing relationship", func(t *testing.T) {
		sel := &model.DailySelection{Date: "2024-03-01"}
		gt.Error(t, sel.Validate())
	})
}
