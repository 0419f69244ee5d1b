package music

import (
	"context"
	"fmt"
	"strings"

	"github.com/melodia/melodia/internal/core"
	"github.com/melodia/melodia/internal/llm"
	"github.com/melodia/melodia/internal/prompt"
)

// chatFallbackResponse is the canned reply when the LLM is unavailable.
const chatFallbackResponse = "抱歉，我现在遇到了一些问题。不过我很乐意和你聊音乐！你可以告诉我你喜欢什么类型的音乐吗？"

// GeneralChatNode handles open conversation about music, carrying the most
// recent turns of history into the prompt.
type GeneralChatNode struct {
	provider llm.Provider
	prompts  *prompt.Loader
}

func NewGeneralChatNode(provider llm.Provider, prompts *prompt.Loader) *GeneralChatNode {
	return &GeneralChatNode{provider: provider, prompts: prompts}
}

type ChatPrep struct {
	Message string
	History string
	OnChunk llm.StreamCallback
}

type ChatResult struct {
	Response string
	Err      string
}

func (n *GeneralChatNode) Prep(state *MusicState) ChatPrep {
	history := state.ChatHistory
	if len(history) > 5 {
		history = history[len(history)-5:]
	}
	var b strings.Builder
	for _, turn := range history {
		fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Content)
	}
	return ChatPrep{
		Message: state.Input,
		History: strings.TrimRight(b.String(), "\n"),
		OnChunk: state.OnStreamChunk,
	}
}

func (n *GeneralChatNode) Exec(ctx context.Context, prep ChatPrep) (ChatResult, error) {
	text := n.prompts.Render("chat.md", map[string]string{
		"chat_history": prep.History,
		"user_message": prep.Message,
	})
	messages := []llm.Message{{Role: llm.RoleUser, Content: text}}

	var resp llm.Message
	var err error
	if prep.OnChunk != nil {
		resp, err = n.provider.CallLLMStream(ctx, messages, prep.OnChunk)
	} else {
		resp, err = n.provider.CallLLM(ctx, messages)
	}
	if err != nil {
		return ChatResult{}, fmt.Errorf("chat response: %w", err)
	}
	return ChatResult{Response: resp.Content}, nil
}

func (n *GeneralChatNode) ExecFallback(err error) ChatResult {
	return ChatResult{Response: chatFallbackResponse, Err: err.Error()}
}

func (n *GeneralChatNode) Post(state *MusicState, prep ChatPrep, result ChatResult) core.Action {
	state.FinalResponse = result.Response
	if result.Err != "" {
		state.logError("general_chat", result.Err)
	}
	state.bumpStep()
	return core.ActionEnd
}
