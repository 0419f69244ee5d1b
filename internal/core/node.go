package core

import (
	"context"
	"log"
)

// Node wraps a BaseNode implementation with retry logic and successor routing.
// It implements the Workflow interface.
type Node[State any, PrepResult any, ExecResult any] struct {
	name       string
	node       BaseNode[State, PrepResult, ExecResult]
	maxRetries int
	successors map[Action]Workflow[State]
}

// NewNode creates a new Node wrapping the given BaseNode implementation.
// maxRetries is the number of additional Exec attempts after the first.
func NewNode[State any, PrepResult any, ExecResult any](
	name string,
	basenode BaseNode[State, PrepResult, ExecResult],
	maxRetries int,
) *Node[State, PrepResult, ExecResult] {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Node[State, PrepResult, ExecResult]{
		name:       name,
		node:       basenode,
		maxRetries: maxRetries,
		successors: make(map[Action]Workflow[State]),
	}
}

// Name implements Workflow.Name.
func (n *Node[State, PrepResult, ExecResult]) Name() string {
	return n.name
}

// executeWithRetry runs Exec with retry logic.
func (n *Node[State, PrepResult, ExecResult]) executeWithRetry(ctx context.Context, input PrepResult) (ExecResult, error) {
	var result ExecResult
	var err error

	for i := 0; i <= n.maxRetries; i++ {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		result, err = n.node.Exec(ctx, input)
		if err == nil {
			return result, nil
		}
		if i < n.maxRetries {
			log.Printf("[Node:%s] Exec retry %d/%d, error: %v", n.name, i+1, n.maxRetries, err)
		}
	}
	return result, err
}

// Run implements Workflow.Run — executes the full Prep → Exec → Post lifecycle.
// A failed Exec is converted by ExecFallback into a degraded result; Post still
// runs, so one node's failure never prevents the state merge or routing.
func (n *Node[State, PrepResult, ExecResult]) Run(ctx context.Context, state *State) Action {
	prepRes := n.node.Prep(state)

	execResult, err := n.executeWithRetry(ctx, prepRes)
	if err != nil {
		log.Printf("[Node:%s] Exec failed, using fallback: %v", n.name, err)
		execResult = n.node.ExecFallback(err)
	}

	return n.node.Post(state, prepRes, execResult)
}

// AddSuccessor connects a successor workflow for a given action.
func (n *Node[State, PrepResult, ExecResult]) AddSuccessor(
	workflow Workflow[State], action ...Action,
) Workflow[State] {
	if workflow == nil {
		return workflow
	}
	if len(action) == 0 {
		n.successors[ActionDefault] = workflow
	} else {
		n.successors[action[0]] = workflow
	}
	return workflow
}

// GetSuccessor returns the successor for the given action.
func (n *Node[State, PrepResult, ExecResult]) GetSuccessor(action Action) Workflow[State] {
	return n.successors[action]
}
