package web

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/melodia/melodia/internal/music"
	"github.com/melodia/melodia/internal/playlist"
)

// generator produces smart playlists. Satisfied by *playlist.Service.
type generator interface {
	Generate(ctx context.Context, params playlist.Params) (*playlist.SmartPlaylist, error)
}

// PlaylistHandler serves the smart playlist endpoints.
type PlaylistHandler struct {
	service generator
}

func NewPlaylistHandler(service generator) *PlaylistHandler {
	return &PlaylistHandler{service: service}
}

type playlistRequest struct {
	Query                 string                 `json:"query"`
	TargetSize            int                    `json:"target_size,omitempty"`
	CreateSpotifyPlaylist bool                   `json:"create_spotify_playlist,omitempty"`
	Public                bool                   `json:"public,omitempty"`
	UserPreferences       *music.UserPreferences `json:"user_preferences,omitempty"`
	FavoriteSongs         []music.TrackName      `json:"favorite_songs,omitempty"`
}

func (r *playlistRequest) UserQuery() string { return r.Query }

func (r *playlistRequest) params() playlist.Params {
	p := playlist.Params{
		Query:         strings.TrimSpace(r.Query),
		TargetSize:    r.TargetSize,
		Persist:       r.CreateSpotifyPlaylist,
		Public:        r.Public,
		FavoriteSongs: r.FavoriteSongs,
	}
	if r.UserPreferences != nil {
		p.Preferences = *r.UserPreferences
	}
	return p
}

// HandleStream processes POST /api/playlist/stream with SSE output.
func (h *PlaylistHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	var req playlistRequest
	if err := decodeJSONRequest(w, r, &req); err != nil {
		return
	}
	log.Printf("[Web] playlist stream: %s", strings.TrimSpace(req.Query))

	sse := newSSEWriter(w, r)
	if sse == nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	sse.Send(sseEventStart, sseStatusEvent{Message: "开始生成你的专属歌单..."})
	sse.Send(sseEventThinking, sseStatusEvent{Message: "正在分析你的需求..."})
	sse.Send(sseEventThinking, sseStatusEvent{Message: "正在准备推荐种子..."})
	sse.Send(sseEventThinking, sseStatusEvent{Message: "正在从曲库获取推荐..."})

	result, err := h.service.Generate(ctx, req.params())
	if err != nil {
		sse.Send(sseEventError, sseErrorEvent{Message: err.Error()})
		return
	}

	sse.Send(sseEventContext, sseContextEvent{Context: result.Context})
	sse.Send(sseEventSeedSummary, sseSeedSummaryEvent{SeedSummary: result.SeedSummary})

	if !sse.sendSongs(result.Songs) {
		return
	}
	if result.Playlist != nil {
		sse.Send(sseEventPlaylist, ssePlaylistEvent{Playlist: result.Playlist})
	}
	sse.Send(sseEventComplete, sseCompleteEvent{Success: true})
}

// HandleGenerate processes POST /api/playlist, returning the generation
// result as one JSON document.
func (h *PlaylistHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req playlistRequest
	if err := decodeJSONRequest(w, r, &req); err != nil {
		return
	}
	log.Printf("[Web] playlist: %s", strings.TrimSpace(req.Query))

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := h.service.Generate(ctx, req.params())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}
