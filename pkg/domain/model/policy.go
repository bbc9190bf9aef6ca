package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

const (
	DefaultMaxDailyReactions = 2
	DefaultSelectionCount    = 3
	DefaultMaxMembers        = 2
)

// Policy holds the tunable product rules. The same Location is used for
// every day-scoped state so that selections, quotas and the freshness
// window roll over together.
type Policy struct {
	MaxDailyReactions     int
	DefaultSelectionCount int
	MaxMembers            int
	Location              *time.Location
}

// DefaultPolicy returns the policy used when no policy file is given
func DefaultPolicy() Policy {
	return Policy{
		MaxDailyReactions:     DefaultMaxDailyReactions,
		DefaultSelectionCount: DefaultSelectionCount,
		MaxMembers:            DefaultMaxMembers,
		Location:              time.UTC,
	}
}

// Loc returns the policy time zone, UTC when unset
func (p Policy) Loc() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// Validate checks that the policy values are usable
func (p Policy) Validate() error {
	if p.MaxDailyReactions < 0 {
		return goerr.New("max daily reactions must not be negative",
			goerr.V("max_daily_reactions", p.MaxDailyReactions))
	}
	if p.DefaultSelectionCount < 1 {
		return goerr.New("default selection count must be positive",
			goerr.V("default_selection_count", p.DefaultSelectionCount))
	}
	if p.MaxMembers < 1 {
		return goerr.New("max members must be positive", goerr.V("max_members", p.MaxMembers))
	}
	return nil
}
