package model

import (
	"slices"
	"time"
)

// ReactionQuota tracks the thumbs up a user has spent on one day. Each
// reacted memory appears at most once, so UsedCount never double counts a
// retried request.
type ReactionQuota struct {
	UserID    string
	Date      Day
	MemoryIDs []MemoryID
	UpdatedAt time.Time
}

// ReactionQuotaKey returns the deterministic document key of a quota record
func ReactionQuotaKey(userID string, date Day) string {
	return userID + "_" + string(date)
}

// UsedCount returns the number of reactions spent on the day
func (q *ReactionQuota) UsedCount() int {
	if q == nil {
		return 0
	}
	return len(q.MemoryIDs)
}

// HasReacted reports whether the memory was already reacted to on the day
func (q *ReactionQuota) HasReacted(id MemoryID) bool {
	if q == nil {
		return false
	}
	return slices.Contains(q.MemoryIDs, id)
}

// Remaining returns the reactions left under limit, floored at zero
func (q *ReactionQuota) Remaining(limit int) int {
	remaining := limit - q.UsedCount()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ReactionResult is the outcome of a reaction attempt. Rejections caused by
// an exhausted quota are a normal outcome and are reported with Accepted=false
// rather than an error.
type ReactionResult struct {
	Accepted  bool
	Remaining int
	Message   string
}
