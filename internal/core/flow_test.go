package core_test

import (
	"context"
	"errors"
	"testing"

	"github.com/melodia/melodia/internal/core"
)

// ── stub node for testing ──

type stubState struct {
	visited []string
}

type stubBaseNode struct {
	name    string
	execErr error
	action  core.Action
}

func (s *stubBaseNode) Prep(state *stubState) string {
	state.visited = append(state.visited, s.name+":prep")
	return "item"
}

func (s *stubBaseNode) Exec(_ context.Context, _ string) (string, error) {
	return "result", s.execErr
}

func (s *stubBaseNode) Post(state *stubState, _ string, result string) core.Action {
	state.visited = append(state.visited, s.name+":post:"+result)
	return s.action
}

func (s *stubBaseNode) ExecFallback(_ error) string {
	return "fallback"
}

func newStubNode(name string, action core.Action) *core.Node[stubState, string, string] {
	return core.NewNode[stubState, string, string](name, &stubBaseNode{name: name, action: action}, 0)
}

// ── Flow tests ──

func TestFlowExecuteSingleNode(t *testing.T) {
	state := &stubState{}
	n := newStubNode("A", core.ActionEnd)
	flow := core.NewFlow[stubState]("test", n)

	if err := flow.Execute(context.Background(), state); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(state.visited) != 2 {
		t.Errorf("expected 2 visited phases, got %v", state.visited)
	}
}

func TestFlowExecuteChainTwoNodes(t *testing.T) {
	state := &stubState{}
	a := newStubNode("A", core.ActionDefault)
	b := newStubNode("B", core.ActionEnd)
	a.AddSuccessor(b)

	flow := core.NewFlow[stubState]("test", a)
	if err := flow.Execute(context.Background(), state); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	// A:prep, A:post, B:prep, B:post
	if len(state.visited) != 4 {
		t.Errorf("expected 4 visited phases, got %v", state.visited)
	}
}

func TestFlowExecuteNilStartNode(t *testing.T) {
	flow := core.NewFlow[stubState]("test", nil)
	if err := flow.Execute(context.Background(), &stubState{}); err == nil {
		t.Error("expected error for nil start node")
	}
}

func TestFlowExecuteContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n := newStubNode("A", core.ActionDefault)
	flow := core.NewFlow[stubState]("test", n)
	err := flow.Execute(ctx, &stubState{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestFlowExecuteUnknownRouteIsFatal(t *testing.T) {
	// A returns an action with no successor registered anywhere.
	a := newStubNode("A", core.Action("nowhere"))
	flow := core.NewFlow[stubState]("test", a)

	err := flow.Execute(context.Background(), &stubState{})
	if !errors.Is(err, core.ErrUnknownRoute) {
		t.Errorf("expected ErrUnknownRoute, got %v", err)
	}
}

func TestFlowExecuteRecursionLimit(t *testing.T) {
	// A routes to itself forever.
	a := newStubNode("A", core.ActionDefault)
	a.AddSuccessor(a)

	flow := core.NewFlow[stubState]("test", a)
	flow.RecursionLimit = 10

	state := &stubState{}
	err := flow.Execute(context.Background(), state)
	if !errors.Is(err, core.ErrRecursionLimit) {
		t.Errorf("expected ErrRecursionLimit, got %v", err)
	}
	// 10 visits = 20 phase records, never more.
	if len(state.visited) != 20 {
		t.Errorf("expected exactly 20 phase records before abort, got %d", len(state.visited))
	}
}

func TestFlowFlowLevelSuccessor(t *testing.T) {
	state := &stubState{}
	a := newStubNode("A", actionNext)
	b := newStubNode("B", core.ActionEnd)

	flow := core.NewFlow[stubState]("test", a)
	flow.AddSuccessor(b, actionNext)

	if err := flow.Execute(context.Background(), state); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(state.visited) != 4 {
		t.Errorf("expected both nodes to run via flow-level successor, got %v", state.visited)
	}
}

func TestFlowRunCollapsesStructuralFault(t *testing.T) {
	a := newStubNode("A", core.Action("nowhere"))
	flow := core.NewFlow[stubState]("test", a)

	// Run (the nestable form) must not panic and must return ActionEnd.
	if action := flow.Run(context.Background(), &stubState{}); action != core.ActionEnd {
		t.Errorf("Run() = %q, want ActionEnd", action)
	}
}
