package music

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/melodia/melodia/internal/core"
	"github.com/melodia/melodia/internal/llm"
	"github.com/melodia/melodia/internal/prompt"
)

// structuralFaultResponse is returned when the workflow itself fails (bad
// routing, runaway loop), as opposed to a degraded but completed run.
const structuralFaultResponse = "抱歉，处理你的请求时遇到了问题。请稍后重试。"

// Request is one user turn handed to the agent.
type Request struct {
	Input       string
	ChatHistory []ChatTurn

	// UserPreferences seeds the initial listening profile. The
	// preference-analysis node replaces it with a catalog-derived profile
	// when its path runs.
	UserPreferences UserPreferences

	// OnStreamChunk receives incremental narrative text. Optional.
	OnStreamChunk llm.StreamCallback
}

// Result is the outcome of one agent run. Success is false only for
// structural workflow faults; a run where individual nodes degraded still
// succeeds, with the degradations listed in Errors.
type Result struct {
	RunID           string           `json:"run_id"`
	Success         bool             `json:"success"`
	Response        string           `json:"response"`
	IntentType      string           `json:"intent_type,omitempty"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
	SearchResults   []Song           `json:"search_results,omitempty"`
	Explanation     string           `json:"explanation,omitempty"`
	Playlist        *PlaylistInfo    `json:"playlist,omitempty"`
	Errors          []NodeError      `json:"errors,omitempty"`
}

// Agent runs the music recommendation workflow. Safe for concurrent use:
// each Run builds fresh state, and the flow graph itself is immutable after
// construction.
type Agent struct {
	flow           *core.Flow[MusicState]
	recursionLimit int
}

// Option configures an Agent.
type Option func(*Agent)

// WithRecursionLimit overrides the default workflow step limit.
func WithRecursionLimit(limit int) Option {
	return func(a *Agent) { a.recursionLimit = limit }
}

// NewAgent wires the workflow from its dependencies. All dependencies are
// required; prompts may be NewLoader("") for embedded defaults only.
func NewAgent(provider llm.Provider, catalog Catalog, prompts *prompt.Loader, opts ...Option) *Agent {
	a := &Agent{
		flow:           BuildMusicFlow(provider, catalog, prompts),
		recursionLimit: core.DefaultRecursionLimit,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.flow.RecursionLimit = a.recursionLimit
	return a
}

// Run executes one full workflow pass for the request.
func (a *Agent) Run(ctx context.Context, req Request) Result {
	runID := uuid.NewString()
	state := newRunState(req)

	start := time.Now()
	log.Printf("[Agent] run %s started: %q", runID, req.Input)

	if err := a.flow.Execute(ctx, state); err != nil {
		log.Printf("[Agent] run %s failed after %d steps: %v", runID, state.StepCount, err)
		return Result{
			RunID:    runID,
			Success:  false,
			Response: structuralFaultResponse,
			Errors:   append(state.ErrorLog, NodeError{Node: "workflow", Error: err.Error()}),
		}
	}

	log.Printf("[Agent] run %s completed in %s (%d steps, intent=%s)",
		runID, time.Since(start).Round(time.Millisecond), state.StepCount, state.Intent.Label())

	return Result{
		RunID:           runID,
		Success:         true,
		Response:        state.FinalResponse,
		IntentType:      state.Intent.Label(),
		Recommendations: state.Recommendations,
		SearchResults:   state.SearchResults,
		Explanation:     state.Explanation,
		Playlist:        state.Playlist,
		Errors:          state.ErrorLog,
	}
}

// newRunState builds the initial workflow state for one request. All fields
// the request does not carry start at their empty defaults.
func newRunState(req Request) *MusicState {
	return &MusicState{
		Input:           req.Input,
		ChatHistory:     req.ChatHistory,
		UserPreferences: req.UserPreferences,
		IntentParams:    map[string]any{},
		OnStreamChunk:   req.OnStreamChunk,
	}
}
