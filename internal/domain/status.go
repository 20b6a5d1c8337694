package domain

import (
	"fmt"
	"slices"
)

type Status string

const (
	StatusWaiting Status = "WAITING"
	StatusCalled  Status = "CALLED"
	StatusDone    Status = "DONE"
	StatusSkipped Status = "SKIPPED"
)

var allStatuses = []Status{StatusWaiting, StatusCalled, StatusDone, StatusSkipped}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown ticket status %q", s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	return slices.Contains(allStatuses, s)
}

func (s Status) String() string { return string(s) }

// Action is a staff or patient operation that moves a ticket to a new status.
type Action string

const (
	ActionCall     Action = "call"
	ActionRecall   Action = "recall"
	ActionComplete Action = "complete"
	ActionSkip     Action = "skip"
	ActionCancel   Action = "cancel"
)

type transition struct {
	from []Status
	to   Status
}

// Recall and skip are staff overrides and accept any prior status.
var transitions = map[Action]transition{
	ActionCall:     {from: []Status{StatusWaiting}, to: StatusCalled},
	ActionRecall:   {from: allStatuses, to: StatusCalled},
	ActionComplete: {from: []Status{StatusCalled}, to: StatusDone},
	ActionSkip:     {from: allStatuses, to: StatusSkipped},
	ActionCancel:   {from: []Status{StatusWaiting}, to: StatusSkipped},
}

// AllowedFrom lists the statuses an action may start from. Unknown actions
// allow nothing.
func (a Action) AllowedFrom() []Status {
	t, ok := transitions[a]
	if !ok {
		return nil
	}
	return slices.Clone(t.from)
}

// Target is the status an action produces.
func (a Action) Target() (Status, bool) {
	t, ok := transitions[a]
	return t.to, ok
}

// CanApply reports whether action may be applied to a ticket in status from.
func (a Action) CanApply(from Status) bool {
	t, ok := transitions[a]
	if !ok {
		return false
	}
	return slices.Contains(t.from, from)
}

// StatusNames converts statuses to their stored string form.
func StatusNames(ss []Status) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = string(s)
	}
	return out
}
