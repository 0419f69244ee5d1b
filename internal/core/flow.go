package core

import (
	"context"
	"fmt"
	"log"
)

// DefaultRecursionLimit caps the number of node visits per Run call.
// Exceeding it indicates a routing cycle and aborts the run as a
// configuration fault rather than silently truncating.
const DefaultRecursionLimit = 50

// Flow orchestrates the execution of connected workflows using action-based
// routing. The graph has one entry node; a run ends when a node returns
// ActionEnd. A non-terminal action without a registered successor and a run
// that outlives the recursion limit are both structural faults surfaced as
// errors — they are programmer mistakes, not runtime conditions.
type Flow[State any] struct {
	name           string
	startNode      Workflow[State]
	successors     map[Action]Workflow[State]
	RecursionLimit int
}

// NewFlow creates a new Flow with the given start node.
func NewFlow[State any](name string, startNode Workflow[State]) *Flow[State] {
	return &Flow[State]{
		name:           name,
		startNode:      startNode,
		successors:     make(map[Action]Workflow[State]),
		RecursionLimit: DefaultRecursionLimit,
	}
}

// Name implements Workflow.Name.
func (f *Flow[State]) Name() string { return f.name }

// Execute runs the graph to a terminal node. It returns an error only for
// whole-graph structural faults (unknown route, recursion limit, cancelled
// context); per-node failures are handled inside the nodes and never
// propagate here.
func (f *Flow[State]) Execute(ctx context.Context, state *State) error {
	current := f.startNode
	if current == nil {
		return fmt.Errorf("workflow %s: no start node", f.name)
	}

	limit := f.RecursionLimit
	if limit <= 0 {
		limit = DefaultRecursionLimit
	}

	for i := 0; ; i++ {
		if i >= limit {
			return fmt.Errorf("%w: %d nodes visited in %s", ErrRecursionLimit, i, f.name)
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("workflow %s: %w", f.name, err)
		}

		action := current.Run(ctx, state)
		if action == ActionEnd {
			return nil
		}

		next := current.GetSuccessor(action)
		if next == nil {
			next = f.GetSuccessor(action)
		}
		if next == nil {
			return fmt.Errorf("%w: %q from node %s", ErrUnknownRoute, action, current.Name())
		}
		current = next
	}
}

// Run implements Workflow.Run so flows can be nested. Structural faults are
// logged and collapse to ActionEnd; standalone callers should prefer Execute.
func (f *Flow[State]) Run(ctx context.Context, state *State) Action {
	if err := f.Execute(ctx, state); err != nil {
		log.Printf("[Flow:%s] Structural fault: %v", f.name, err)
	}
	return ActionEnd
}

// AddSuccessor connects a flow-level successor for a given action.
func (f *Flow[State]) AddSuccessor(successor Workflow[State], action ...Action) Workflow[State] {
	if successor == nil {
		return successor
	}
	if len(action) == 0 {
		f.successors[ActionDefault] = successor
	} else {
		f.successors[action[0]] = successor
	}
	return successor
}

// GetSuccessor returns the flow-level successor for the given action.
func (f *Flow[State]) GetSuccessor(action Action) Workflow[State] {
	return f.successors[action]
}
