package types

// SelectionState is the materialization state of a daily selection for a
// relationship and day. A selection is Absent until the first read or reroll
// computes it, and Computed afterwards until the day rolls over.
type SelectionState string

const (
	SelectionStateAbsent   SelectionState = "ABSENT"
	SelectionStateComputed SelectionState = "COMPUTED"
)

// IsValid checks if the selection state is valid
func (s SelectionState) IsValid() bool {
	switch s {
	case SelectionStateAbsent, SelectionStateComputed:
		return true
	default:
		return false
	}
}

// String returns the string representation of the selection state
func (s SelectionState) String() string {
	return string(s)
}
