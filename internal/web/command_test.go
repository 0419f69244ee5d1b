package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/melodia/melodia/internal/session"
)

func newTestCommandHandler(t *testing.T) *CommandHandler {
	t.Helper()
	h := NewCommandHandler(CommandHandlerOptions{
		Store:       session.NewStore(time.Minute, 10),
		ModelName:   "test-model",
		CatalogName: "spotify",
	})
	t.Cleanup(func() { h.store.Close() })
	return h
}

func doCommand(t *testing.T, h *CommandHandler, method string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, "/api/command", &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.HandleCommand(w, req)
	return w
}

func TestHandleCommand_Reload_OK(t *testing.T) {
	h := newTestCommandHandler(t)
	w := doCommand(t, h, http.MethodPost, commandRequest{Command: "reload"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var result commandResult
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !result.OK {
		t.Errorf("expected ok=true, got %+v", result)
	}
}

func TestHandleCommand_Clear_DeletesSession(t *testing.T) {
	h := newTestCommandHandler(t)
	sid := "test-session-123"
	h.store.AppendTurn(sid, session.Turn{UserMsg: "来点摇滚", Assistant: "好的"})
	if turns := h.store.GetHistory(sid); len(turns) == 0 {
		t.Fatal("session should exist before clear")
	}

	w := doCommand(t, h, http.MethodPost, commandRequest{Command: "clear", SessionID: sid})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var result commandResult
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !result.OK || result.Action != "clear_chat" {
		t.Errorf("expected ok=true action=clear_chat, got %+v", result)
	}

	if turns := h.store.GetHistory(sid); len(turns) != 0 {
		t.Error("session should be deleted after clear")
	}
}

func TestHandleCommand_Help(t *testing.T) {
	h := newTestCommandHandler(t)
	w := doCommand(t, h, http.MethodPost, commandRequest{Command: "help"})
	var result commandResult
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !result.OK {
		t.Errorf("expected ok=true, got %+v", result)
	}
	for _, keyword := range []string{"/reload", "/clear", "/stats", "/help"} {
		if !strings.Contains(result.Message, keyword) {
			t.Errorf("help message missing %q", keyword)
		}
	}
}

func TestHandleCommand_Stats(t *testing.T) {
	h := newTestCommandHandler(t)
	sid := "test-stats"
	h.store.AppendTurn(sid, session.Turn{UserMsg: "q", Assistant: "a"})
	h.store.AppendTurn(sid, session.Turn{UserMsg: "q2", Assistant: "a2"})

	w := doCommand(t, h, http.MethodPost, commandRequest{Command: "stats", SessionID: sid})
	var result commandResult
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !result.OK {
		t.Fatalf("expected ok=true, got %+v", result)
	}
	if !strings.Contains(result.Message, "2 轮") {
		t.Errorf("stats should report 2 turns, got: %s", result.Message)
	}
	if !strings.Contains(result.Message, "spotify") {
		t.Errorf("stats should report catalog name, got: %s", result.Message)
	}
	if !strings.Contains(result.Message, "test-model") {
		t.Errorf("stats should report model name, got: %s", result.Message)
	}
}

func TestHandleCommand_Unknown(t *testing.T) {
	h := newTestCommandHandler(t)
	w := doCommand(t, h, http.MethodPost, commandRequest{Command: "nonexistent"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var result commandResult
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.OK {
		t.Error("unknown command should return ok=false")
	}
}

func TestHandleCommand_MethodNotAllowed(t *testing.T) {
	h := newTestCommandHandler(t)
	w := doCommand(t, h, http.MethodGet, nil)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
}
