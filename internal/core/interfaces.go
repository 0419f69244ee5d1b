package core

import "context"

// BaseNode defines the core interface for all nodes in the workflow.
// It follows the three-phase execution model: Prep -> Exec -> Post.
//
// Prep reads the shared state and produces the input for Exec. Exec performs
// the node's core logic (typically an LLM or catalog call) and is the only
// phase allowed to fail. Post merges the result back into the state and
// decides the routing action. ExecFallback converts a failed Exec into a
// degraded result so one node's failure never aborts the run — Post is
// expected to record the degradation in the state's error log.
//
// Type parameters:
//   - State: the shared state passed through the workflow
//   - PrepResult: the type returned by Prep and consumed by Exec
//   - ExecResult: the type returned by Exec and consumed by Post
type BaseNode[State any, PrepResult any, ExecResult any] interface {
	Prep(state *State) PrepResult

	Exec(ctx context.Context, prepResult PrepResult) (ExecResult, error)

	Post(state *State, prepRes PrepResult, execResult ExecResult) Action

	ExecFallback(err error) ExecResult
}

// Workflow represents a unit of execution that can be connected to other
// workflows. Both Node and Flow implement this interface.
type Workflow[State any] interface {
	// Run executes the workflow and returns an action for routing.
	Run(ctx context.Context, state *State) Action

	// Name identifies the workflow in logs and error-log entries.
	Name() string

	// GetSuccessor returns the successor workflow for a given action.
	GetSuccessor(action Action) Workflow[State]

	// AddSuccessor connects a successor workflow for a specific action.
	// Returns the successor for chaining.
	AddSuccessor(successor Workflow[State], action ...Action) Workflow[State]
}
