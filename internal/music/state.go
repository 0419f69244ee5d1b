// Package music implements the music recommendation workflow: a fixed graph
// of nodes over a shared MusicState, from intent classification through
// recommendation strategies to the final user-facing explanation.
package music

import (
	"strings"

	"github.com/melodia/melodia/internal/llm"
)

// Song is an immutable value object describing one track.
// Title and Artist are required; everything else is optional.
type Song struct {
	Title           string `json:"title"`
	Artist          string `json:"artist"`
	Album           string `json:"album,omitempty"`
	Genre           string `json:"genre,omitempty"`
	Year            int    `json:"year,omitempty"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
	Popularity      int    `json:"popularity,omitempty"` // 0-100
	PreviewURL      string `json:"preview_url,omitempty"`
	ExternalURL     string `json:"external_url,omitempty"`
	CatalogID       string `json:"catalog_id,omitempty"`
}

// Key returns the dedup identity: the catalog ID when present, else
// lowercase "title-artist". Known limitation: the string form
// under-deduplicates near-duplicates (remaster suffixes, alternate
// spellings).
func (s Song) Key() string {
	if s.CatalogID != "" {
		return s.CatalogID
	}
	return strings.ToLower(s.Title + "-" + s.Artist)
}

// Artist describes a performer as returned by the catalog's top-items API.
type Artist struct {
	Name       string   `json:"name"`
	ID         string   `json:"id,omitempty"`
	Genres     []string `json:"genres,omitempty"`
	Popularity int      `json:"popularity,omitempty"`
}

// Recommendation pairs a song with the reason it was suggested.
type Recommendation struct {
	Song            Song    `json:"song"`
	Reason          string  `json:"reason,omitempty"`
	SimilarityScore float64 `json:"similarity_score"` // 0-1
}

// PlaylistInfo describes a playlist persisted by the catalog. It is only
// ever constructed from a successful create-playlist call.
type PlaylistInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
	TrackCount  int    `json:"track_count"`
}

// UserPreferences is the listening profile, supplied by the caller or
// derived by the preference-analysis node.
type UserPreferences struct {
	FavoriteGenres  []string `json:"favorite_genres,omitempty"`
	FavoriteArtists []string `json:"favorite_artists,omitempty"`
	FavoriteDecades []string `json:"favorite_decades,omitempty"`
}

// IsEmpty reports whether no preference signal was derived.
func (p UserPreferences) IsEmpty() bool {
	return len(p.FavoriteGenres) == 0 && len(p.FavoriteArtists) == 0 && len(p.FavoriteDecades) == 0
}

// ChatTurn is one prior turn of the conversation, supplied by the caller.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NodeError is one entry of the append-only error log.
type NodeError struct {
	Node  string `json:"node"`
	Error string `json:"error"`
}

// MusicState is the shared state threaded through every workflow node.
// It is created once per request, mutated only by node Post phases, and
// discarded when the run ends — never persisted.
//
// NOT goroutine-safe: the flow executes nodes strictly sequentially, so all
// access happens from a single goroutine. Every field other than Input is
// optional; downstream nodes must tolerate any upstream field being empty.
type MusicState struct {
	Input       string     `json:"input"`
	ChatHistory []ChatTurn `json:"chat_history,omitempty"` // read-only within the workflow

	Intent        Intent         `json:"intent"`
	IntentParams  map[string]any `json:"intent_parameters,omitempty"`
	IntentContext string         `json:"intent_context,omitempty"`

	SearchResults   []Song           `json:"search_results,omitempty"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`

	UserPreferences UserPreferences `json:"user_preferences,omitempty"`
	FavoriteSongs   []Song          `json:"favorite_songs,omitempty"`

	Explanation   string        `json:"explanation,omitempty"`
	FinalResponse string        `json:"final_response,omitempty"`
	Playlist      *PlaylistInfo `json:"playlist,omitempty"`

	StepCount int         `json:"step_count"`
	ErrorLog  []NodeError `json:"error_log,omitempty"`

	// OnStreamChunk receives incremental narrative text from the chat and
	// explanation nodes. Optional; nil disables streaming.
	OnStreamChunk llm.StreamCallback `json:"-"`
}

// logError appends an entry to the append-only error log.
func (st *MusicState) logError(node, message string) {
	st.ErrorLog = append(st.ErrorLog, NodeError{Node: node, Error: message})
}

// bumpStep increments the step counter; every node Post calls it exactly once.
func (st *MusicState) bumpStep() {
	st.StepCount++
}

// paramString extracts a string-valued intent parameter, or def when absent
// or of the wrong type. Intent parameters come from parsed LLM JSON, so any
// shape must be tolerated.
func paramString(params map[string]any, key, def string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return def
}

// paramTrackNames extracts a favorite-songs parameter: a list of objects
// with title/artist fields. Malformed entries are skipped.
func paramTrackNames(params map[string]any, key string) []TrackName {
	raw, ok := params[key].([]any)
	if !ok {
		return nil
	}
	var names []TrackName
	for _, item := range raw {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		title := paramString(entry, "title", "")
		if title == "" {
			title = paramString(entry, "name", "")
		}
		if title == "" {
			continue
		}
		names = append(names, TrackName{
			Title:  title,
			Artist: paramString(entry, "artist", ""),
		})
	}
	return names
}
