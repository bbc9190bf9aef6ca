package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// dayLayout is the canonical calendar day format used in document keys
const dayLayout = "2006-01-02"

// Day is a calendar day in the configured policy time zone, formatted as
// YYYY-MM-DD. Daily selections, reaction quotas and the freshness window are
// all scoped by Day.
type Day string

// DayOf returns the calendar day of t in loc
func DayOf(t time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.UTC
	}
	return Day(t.In(loc).Format(dayLayout))
}

// ParseDay parses a YYYY-MM-DD string into a Day
func ParseDay(s string) (Day, error) {
	if _, err := time.Parse(dayLayout, s); err != nil {
		return "", goerr.Wrap(err, "invalid day format", goerr.V("day", s))
	}
	return Day(s), nil
}

// Start returns the first instant of the day in loc
func (d Day) Start(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(dayLayout, string(d), loc)
	if err != nil {
		return time.Time{}, goerr.Wrap(err, "invalid day format", goerr.V("day", d))
	}
	return t, nil
}

// String returns the string representation of the day
func (d Day) String() string {
	return string(d)
}
