package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/melodia/melodia/internal/music"
	"github.com/melodia/melodia/internal/playlist"
)

// ── SSE Writer ──

// sseWriter wraps an http.ResponseWriter with SSE event writing and
// client disconnect detection. Shared by the recommendation and playlist
// handlers.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	ctx     context.Context
}

// newSSEWriter prepares SSE headers and returns a writer.
// Returns nil if streaming is not supported.
func newSSEWriter(w http.ResponseWriter, r *http.Request) *sseWriter {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return nil
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	return &sseWriter{w: w, flusher: flusher, ctx: r.Context()}
}

// Send writes an SSE event. Returns false if the client has disconnected.
func (s *sseWriter) Send(event string, data interface{}) bool {
	select {
	case <-s.ctx.Done():
		return false
	default:
	}
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		log.Printf("[SSE] JSON marshal error: %v", err)
		return false
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, string(jsonBytes)); err != nil {
		log.Printf("[SSE] Write error (client disconnected?): %v", err)
		return false
	}
	s.flusher.Flush()
	return true
}

// ── SSE Event Vocabulary ──
//
// Events are emitted in a fixed order: start, thinking, response,
// recommendations_start, song (repeated, ranking order), then
// recommendations_complete, playlist (if one was created), complete.
// An error event terminates the stream.

const (
	sseEventStart        = "start"
	sseEventThinking     = "thinking"
	sseEventResponse     = "response"
	sseEventRecsStart    = "recommendations_start"
	sseEventSong         = "song"
	sseEventRecsComplete = "recommendations_complete"
	sseEventContext      = "context"
	sseEventSeedSummary  = "seed_summary"
	sseEventPlaylist     = "playlist"
	sseEventComplete     = "complete"
	sseEventError        = "error"
)

type sseStatusEvent struct {
	Message string `json:"message"`
}

type sseResponseEvent struct {
	Text       string `json:"text"`
	IsComplete bool   `json:"is_complete"`
}

type sseRecsStartEvent struct {
	Count int `json:"count"`
}

type sseSongEvent struct {
	Song  music.Song `json:"song"`
	Index int        `json:"index"`
	Total int        `json:"total"`
}

type sseContextEvent struct {
	Context playlist.QueryContext `json:"context"`
}

type sseSeedSummaryEvent struct {
	SeedSummary playlist.SeedSummary `json:"seed_summary"`
}

type ssePlaylistEvent struct {
	Playlist *music.PlaylistInfo `json:"playlist"`
}

type sseCompleteEvent struct {
	Success bool `json:"success"`
}

type sseErrorEvent struct {
	Message string `json:"message"`
}

// sendSongs streams a song list as recommendations_start, one song event
// per track in ranking order, then recommendations_complete.
func (s *sseWriter) sendSongs(songs []music.Song) bool {
	if len(songs) == 0 {
		return true
	}
	if !s.Send(sseEventRecsStart, sseRecsStartEvent{Count: len(songs)}) {
		return false
	}
	for i, song := range songs {
		if !s.Send(sseEventSong, sseSongEvent{Song: song, Index: i, Total: len(songs)}) {
			return false
		}
	}
	return s.Send(sseEventRecsComplete, struct{}{})
}
