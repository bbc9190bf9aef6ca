package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/model"
)

func TestNewInviteCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := model.NewInviteCode()
		gt.NoError(t, err).Required()
		gt.Number(t, len(code)).Equal(model.InviteCodeLength)
		gt.Bool(t, model.IsValidInviteCode(code)).True()
		seen[code] = true
	}
	gt.Number(t, len(seen)).Greater(1)
}

func TestIsValidInviteCode(t *testing.T) {
	gt.Bool(t, model.IsValidInviteCode("ABC234")).True()
	gt.Bool(t, model.IsValidInviteCode("abc234")).False()
	gt.Bool(t, model.IsValidInviteCode("ABC0O1")).False()
	gt.Bool(t, model.IsValidInviteCode("ABC23")).False()
}

func TestRelationship(t *testing.T) {
	r := &model.Relationship{
		ID:         model.NewRelationshipID(),
		MemberIDs:  []string{"alice"},
		InviteCode: "ABC234",
		CreatedAt:  time.Now(),
	}
	gt.NoError(t, r.Validate())
	gt.Bool(t, r.HasMember("alice")).True()
	gt.Bool(t, r.HasMember("bob")).False()

	r.MemberIDs = nil
	gt.Error(t, r.Validate())
}
