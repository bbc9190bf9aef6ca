package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/types"
)

// DailySelection is the cached set of "Today's Memory Gems" for a
// relationship. At most one selection exists per relationship and day; a
// reroll replaces it wholesale.
type DailySelection struct {
	RelationshipID RelationshipID
	Date           Day
	MemoryIDs      []MemoryID // Ordered as selected, no duplicates
	CreatedAt      time.Time
}

// NewDailySelection builds a selection from selected memories, keeping their order.
func NewDailySelection(relationshipID RelationshipID, date Day, memories []*Memory, now time.Time) *DailySelection {
	ids := make([]MemoryID, len(memories))
	for i, m := range memories {
		ids[i] = m.ID
	}
	return &DailySelection{
		RelationshipID: relationshipID,
		Date:           date,
		MemoryIDs:      ids,
		CreatedAt:      now,
	}
}

// DailySelectionKey returns the deterministic document key of a selection
func DailySelectionKey(relationshipID RelationshipID, date Day) string {
	return string(relationshipID) + "_" + string(date)
}

// Key returns the deterministic document key of the selection
func (s *DailySelection) Key() string {
	return DailySelectionKey(s.RelationshipID, s.Date)
}

// State returns the materialization state of a possibly nil selection
func (s *DailySelection) State() types.SelectionState {
	if s == nil {
		return types.SelectionStateAbsent
	}
	return types.SelectionStateComputed
}

// Validate checks the structural invariants of a stored selection
func (s *DailySelection) Validate() error {
	if s.RelationshipID == "" {
		return goerr.Wrap(ErrInvalidDocument, "relationship ID is required")
	}
	if _, err := ParseDay(string(s.Date)); err != nil {
		return goerr.Wrap(ErrInvalidDocument, "invalid selection date",
			goerr.V(RelationshipIDKey, s.RelationshipID), goerr.V("date", s.Date))
	}

	seen := make(map[MemoryID]bool, len(s.MemoryIDs))
	for _, id := range s.MemoryIDs {
		if id == "" {
			return goerr.Wrap(ErrInvalidDocument, "empty memory ID in selection",
				goerr.V(RelationshipIDKey, s.RelationshipID))
		}
		if seen[id] {
			return goerr.Wrap(ErrInvalidDocument, "duplicate memory ID in selection",
				goerr.V(RelationshipIDKey, s.RelationshipID), goerr.V(MemoryIDKey, id))
		}
		seen[id] = true
	}
	return nil
}
