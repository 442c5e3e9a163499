package models

// Status is the workflow state of a complaint
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
)

var statusRank = map[Status]int{
	StatusPending:    0,
	StatusProcessing: 1,
	StatusCompleted:  2,
}

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Rank returns the position of s in the workflow, or -1 if s is unknown
func (s Status) Rank() int {
	if r, ok := statusRank[s]; ok {
		return r
	}
	return -1
}

// Terminal reports whether no further transition is possible from s
func (s Status) Terminal() bool {
	return s == StatusCompleted
}

// CanTransition reports whether a ticket in status from may move to to.
// Moves only go forward in rank; staying put is allowed.
func CanTransition(from, to Status) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	return to.Rank() >= from.Rank()
}
