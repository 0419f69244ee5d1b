package music

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/melodia/melodia/internal/core"
	"github.com/melodia/melodia/internal/llm"
	"github.com/melodia/melodia/internal/prompt"
	"github.com/melodia/melodia/internal/util"
)

// AnalyzeIntentNode classifies the raw user input into an Intent via the
// LLM. Classification failures never abort the run: any LLM, extraction or
// parse error degrades to general chat.
type AnalyzeIntentNode struct {
	provider llm.Provider
	prompts  *prompt.Loader
}

func NewAnalyzeIntentNode(provider llm.Provider, prompts *prompt.Loader) *AnalyzeIntentNode {
	return &AnalyzeIntentNode{provider: provider, prompts: prompts}
}

type IntentPrep struct {
	Input string
}

type IntentResult struct {
	Intent  Intent
	Params  map[string]any
	Context string
	Err     string
}

// intentPayload mirrors the JSON object the classifier prompt asks for.
type intentPayload struct {
	IntentType string         `json:"intent_type"`
	Parameters map[string]any `json:"parameters"`
	Context    string         `json:"context"`
}

func (n *AnalyzeIntentNode) Prep(state *MusicState) IntentPrep {
	return IntentPrep{Input: state.Input}
}

func (n *AnalyzeIntentNode) Exec(ctx context.Context, prep IntentPrep) (IntentResult, error) {
	text := n.prompts.Render("intent_analyzer.md", map[string]string{
		"user_input": prep.Input,
	})

	resp, err := n.provider.CallLLM(ctx, []llm.Message{
		{Role: llm.RoleUser, Content: text},
	})
	if err != nil {
		return IntentResult{}, fmt.Errorf("intent classification call: %w", err)
	}

	payload, err := util.ExtractJSON(resp.Content)
	if err != nil {
		return IntentResult{}, fmt.Errorf("intent payload extraction: %w", err)
	}

	var parsed intentPayload
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return IntentResult{}, fmt.Errorf("intent payload parse: %w", err)
	}

	params := parsed.Parameters
	if params == nil {
		params = map[string]any{}
	}
	return IntentResult{
		Intent:  ParseIntent(parsed.IntentType),
		Params:  params,
		Context: parsed.Context,
	}, nil
}

// ExecFallback degrades to general chat so the user always gets a response.
func (n *AnalyzeIntentNode) ExecFallback(err error) IntentResult {
	return IntentResult{Err: err.Error()}
}

func (n *AnalyzeIntentNode) Post(state *MusicState, prep IntentPrep, result IntentResult) core.Action {
	if result.Err != "" {
		state.Intent = Intent{Kind: IntentGeneralChat}
		state.IntentParams = map[string]any{}
		state.IntentContext = prep.Input
		state.logError("analyze_intent", result.Err)
	} else {
		state.Intent = result.Intent
		state.IntentParams = result.Params
		state.IntentContext = result.Context
	}
	state.bumpStep()

	action := routeByIntent(state.Intent)
	log.Printf("[Music] intent=%s action=%s", state.Intent.Label(), action)
	return action
}
