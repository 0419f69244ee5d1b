package music

import "strings"

// IntentKind enumerates the request categories the classifier can produce.
type IntentKind string

const (
	IntentSearch             IntentKind = "search"
	IntentRecommendMood      IntentKind = "recommend_by_mood"
	IntentRecommendActivity  IntentKind = "recommend_by_activity"
	IntentRecommendGenre     IntentKind = "recommend_by_genre"
	IntentRecommendArtist    IntentKind = "recommend_by_artist"
	IntentRecommendFavorites IntentKind = "recommend_by_favorites"
	IntentCreatePlaylist     IntentKind = "create_playlist"
	IntentGeneralChat        IntentKind = "general_chat"
)

// Intent is the classified request category. Playlist-creation intents carry
// an optional Subkind qualifier (e.g. "by_mood" from a classifier label of
// "create_playlist_by_mood"); all subkinds share playlist-creation routing.
type Intent struct {
	Kind    IntentKind `json:"kind"`
	Subkind string     `json:"subkind,omitempty"`
}

// ParseIntent maps a raw classifier label onto an Intent. Any label starting
// with "create_playlist" is a playlist-creation intent; unrecognized labels
// fall back to general chat so the workflow always has a route.
func ParseIntent(label string) Intent {
	label = strings.TrimSpace(label)
	if strings.HasPrefix(label, string(IntentCreatePlaylist)) {
		sub := strings.TrimPrefix(label, string(IntentCreatePlaylist))
		return Intent{Kind: IntentCreatePlaylist, Subkind: strings.TrimPrefix(sub, "_")}
	}
	switch IntentKind(label) {
	case IntentSearch, IntentRecommendMood, IntentRecommendActivity,
		IntentRecommendGenre, IntentRecommendArtist, IntentRecommendFavorites,
		IntentGeneralChat:
		return Intent{Kind: IntentKind(label)}
	}
	return Intent{Kind: IntentGeneralChat}
}

// Label reconstructs the flat classifier label, for logging and API payloads.
func (in Intent) Label() string {
	if in.Subkind == "" {
		return string(in.Kind)
	}
	return string(in.Kind) + "_" + in.Subkind
}

// IsCreatePlaylist reports whether the intent requests playlist creation.
func (in Intent) IsCreatePlaylist() bool {
	return in.Kind == IntentCreatePlaylist
}

// IsZero reports whether the intent has not been classified yet.
func (in Intent) IsZero() bool {
	return in.Kind == ""
}
