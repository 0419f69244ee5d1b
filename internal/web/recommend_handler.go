package web

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/melodia/melodia/internal/music"
	"github.com/melodia/melodia/internal/session"
)

// recommender runs one recommendation turn. Satisfied by *music.Agent.
type recommender interface {
	Run(ctx context.Context, req music.Request) music.Result
}

// RecommendHandler serves the recommendation endpoints, streaming and not.
type RecommendHandler struct {
	agent         recommender
	store         *session.Store
	historyBudget int
}

// NewRecommendHandler creates a handler. store is optional; without it the
// endpoints are stateless and session_id is ignored.
func NewRecommendHandler(agent recommender, store *session.Store, historyBudget int) *RecommendHandler {
	return &RecommendHandler{agent: agent, store: store, historyBudget: historyBudget}
}

type recommendRequest struct {
	Query           string                 `json:"query"`
	SessionID       string                 `json:"session_id,omitempty"`
	UserPreferences *music.UserPreferences `json:"user_preferences,omitempty"`
}

func (r *recommendRequest) UserQuery() string { return r.Query }

func (r *recommendRequest) preferences() music.UserPreferences {
	if r.UserPreferences == nil {
		return music.UserPreferences{}
	}
	return *r.UserPreferences
}

// HandleStream processes POST /api/recommendations/stream with SSE output.
func (h *RecommendHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := decodeJSONRequest(w, r, &req); err != nil {
		return
	}
	query := strings.TrimSpace(req.Query)
	log.Printf("[Web] recommend stream: %s", query)

	sse := newSSEWriter(w, r)
	if sse == nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	sse.Send(sseEventStart, sseStatusEvent{Message: "开始分析你的需求..."})
	sse.Send(sseEventThinking, sseStatusEvent{Message: "正在理解你的音乐偏好..."})

	// Narrative text streams as it is generated, each event carrying the
	// accumulated text so far.
	var narrative strings.Builder
	result := h.agent.Run(ctx, music.Request{
		Input:           query,
		ChatHistory:     h.historyFor(req.SessionID),
		UserPreferences: req.preferences(),
		OnStreamChunk: func(chunk string) {
			narrative.WriteString(chunk)
			sse.Send(sseEventResponse, sseResponseEvent{Text: narrative.String(), IsComplete: false})
		},
	})

	if !result.Success {
		sse.Send(sseEventError, sseErrorEvent{Message: result.Response})
		return
	}

	sse.Send(sseEventResponse, sseResponseEvent{Text: result.Response, IsComplete: true})

	songs := make([]music.Song, 0, len(result.Recommendations))
	for _, rec := range result.Recommendations {
		songs = append(songs, rec.Song)
	}
	if !sse.sendSongs(songs) {
		return
	}

	if result.Playlist != nil {
		sse.Send(sseEventPlaylist, ssePlaylistEvent{Playlist: result.Playlist})
	}
	sse.Send(sseEventComplete, sseCompleteEvent{Success: true})

	h.persistTurn(req.SessionID, query, result)
}

// HandleRecommend processes POST /api/recommendations, returning the full
// result as one JSON document.
func (h *RecommendHandler) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := decodeJSONRequest(w, r, &req); err != nil {
		return
	}
	query := strings.TrimSpace(req.Query)
	log.Printf("[Web] recommend: %s", query)

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result := h.agent.Run(ctx, music.Request{
		Input:           query,
		ChatHistory:     h.historyFor(req.SessionID),
		UserPreferences: req.preferences(),
	})

	writeJSON(w, http.StatusOK, result)
	h.persistTurn(req.SessionID, query, result)
}

func (h *RecommendHandler) historyFor(sessionID string) []music.ChatTurn {
	if sessionID == "" || h.store == nil {
		return nil
	}
	return session.ToChatTurns(h.store.GetHistory(sessionID), h.historyBudget)
}

func (h *RecommendHandler) persistTurn(sessionID, query string, result music.Result) {
	if sessionID == "" || h.store == nil || !result.Success {
		return
	}
	h.store.AppendTurn(sessionID, session.Turn{
		UserMsg:   query,
		Assistant: result.Response,
		Intent:    result.IntentType,
	})
}
