package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/melodia/melodia/internal/prompt"
	"github.com/melodia/melodia/internal/session"
)

// CommandHandlerOptions configures the slash command handler.
type CommandHandlerOptions struct {
	Loader        *prompt.Loader // used by /reload
	Store         *session.Store
	ModelName     string // used by /stats
	CatalogName   string // used by /stats
	CatalogAuthed bool   // used by /stats
}

// commandResult is the JSON response from a slash command.
type commandResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"` // optional frontend action (e.g. "clear_chat")
}

// commandFunc handles a single slash command.
type commandFunc func(ctx context.Context, args string, sessionID string) commandResult

// CommandHandler routes slash commands to handlers without involving the LLM.
type CommandHandler struct {
	loader        *prompt.Loader
	store         *session.Store
	modelName     string
	catalogName   string
	catalogAuthed bool
	commands      map[string]commandFunc
}

// NewCommandHandler creates a command handler with built-in commands.
func NewCommandHandler(opts CommandHandlerOptions) *CommandHandler {
	h := &CommandHandler{
		loader:        opts.Loader,
		store:         opts.Store,
		modelName:     opts.ModelName,
		catalogName:   opts.CatalogName,
		catalogAuthed: opts.CatalogAuthed,
	}
	h.commands = map[string]commandFunc{
		"reload": h.cmdReload,
		"clear":  h.cmdClear,
		"help":   h.cmdHelp,
		"stats":  h.cmdStats,
	}
	return h
}

type commandRequest struct {
	Command   string `json:"command"`
	Args      string `json:"args"`
	SessionID string `json:"session_id"`
}

// HandleCommand is the HTTP handler for POST /api/command.
func (h *CommandHandler) HandleCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	w.Header().Set("Content-Type", "application/json")

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		json.NewEncoder(w).Encode(commandResult{OK: false, Message: "请求解析失败: " + err.Error()})
		return
	}

	fn, ok := h.commands[req.Command]
	if !ok {
		json.NewEncoder(w).Encode(commandResult{
			OK:      false,
			Message: "未知命令 /" + req.Command + "，输入 /help 查看可用命令",
		})
		return
	}

	result := fn(r.Context(), req.Args, req.SessionID)
	json.NewEncoder(w).Encode(result)
}

// ── Built-in commands ──

func (h *CommandHandler) cmdReload(ctx context.Context, args, sessionID string) commandResult {
	if h.loader != nil {
		h.loader.Reload()
	}
	log.Printf("[Command] /reload executed")
	return commandResult{OK: true, Message: "✅ 提示词已重载"}
}

func (h *CommandHandler) cmdClear(ctx context.Context, args, sessionID string) commandResult {
	if sessionID != "" && h.store != nil {
		h.store.Delete(sessionID)
	}
	log.Printf("[Command] /clear executed, session=%s", sessionID)
	return commandResult{OK: true, Message: "✅ 对话已清空", Action: "clear_chat"}
}

func (h *CommandHandler) cmdHelp(ctx context.Context, args, sessionID string) commandResult {
	return commandResult{
		OK: true,
		Message: "可用命令:\n" +
			"/reload — 重载提示词模板\n" +
			"/clear — 清空当前对话\n" +
			"/stats — 显示当前会话状态和系统信息\n" +
			"/help — 显示此帮助",
	}
}

func (h *CommandHandler) cmdStats(ctx context.Context, args, sessionID string) commandResult {
	var sb strings.Builder
	sb.WriteString("📊 当前会话状态\n")

	if sessionID != "" && h.store != nil {
		turns := h.store.GetHistory(sessionID)
		sb.WriteString(fmt.Sprintf("• 会话轮次：%d 轮\n", len(turns)))
	} else {
		sb.WriteString("• 会话轮次：无活跃会话\n")
	}

	if h.catalogName != "" {
		authed := "未授权"
		if h.catalogAuthed {
			authed = "已授权"
		}
		sb.WriteString(fmt.Sprintf("• 曲库：%s（用户%s）\n", h.catalogName, authed))
	}

	if h.modelName != "" {
		sb.WriteString(fmt.Sprintf("• 模型：%s\n", h.modelName))
	}

	return commandResult{OK: true, Message: sb.String()}
}
