package core

import "errors"

// Action represents the result of a node execution that determines flow control.
// Each node declares the set of actions it may return; the flow maps every
// non-terminal action to a successor node.
type Action string

// Framework actions. Domain packages declare their own routing vocabulary
// as typed constants next to their nodes.
const (
	ActionDefault Action = "default"
	ActionEnd     Action = "end"
)

// Structural faults. These indicate graph configuration bugs, not runtime
// conditions, and abort the whole run.
var (
	// ErrUnknownRoute is returned when a node yields a non-terminal action
	// that has no registered successor.
	ErrUnknownRoute = errors.New("workflow: no successor for action")

	// ErrRecursionLimit is returned when a run visits more nodes than the
	// configured limit, which indicates a routing cycle.
	ErrRecursionLimit = errors.New("workflow: recursion limit exceeded")
)
