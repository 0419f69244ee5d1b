package music

import (
	"testing"

	"github.com/melodia/melodia/internal/core"
)

func TestParseIntent(t *testing.T) {
	tests := []struct {
		label       string
		wantKind    IntentKind
		wantSubkind string
	}{
		{"search", IntentSearch, ""},
		{"recommend_by_mood", IntentRecommendMood, ""},
		{"recommend_by_activity", IntentRecommendActivity, ""},
		{"recommend_by_genre", IntentRecommendGenre, ""},
		{"recommend_by_artist", IntentRecommendArtist, ""},
		{"recommend_by_favorites", IntentRecommendFavorites, ""},
		{"general_chat", IntentGeneralChat, ""},
		{"create_playlist", IntentCreatePlaylist, ""},
		{"create_playlist_by_mood", IntentCreatePlaylist, "by_mood"},
		{"create_playlist_by_activity", IntentCreatePlaylist, "by_activity"},
		{"  search  ", IntentSearch, ""},
		{"", IntentGeneralChat, ""},
		{"order_pizza", IntentGeneralChat, ""},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got := ParseIntent(tt.label)
			if got.Kind != tt.wantKind || got.Subkind != tt.wantSubkind {
				t.Errorf("ParseIntent(%q) = %+v, want kind=%s subkind=%q",
					tt.label, got, tt.wantKind, tt.wantSubkind)
			}
		})
	}
}

func TestIntentLabelRoundTrip(t *testing.T) {
	for _, label := range []string{"search", "create_playlist", "create_playlist_by_mood"} {
		if got := ParseIntent(label).Label(); got != label {
			t.Errorf("Label() = %q, want %q", got, label)
		}
	}
}

func TestRouteByIntent(t *testing.T) {
	tests := []struct {
		intent Intent
		want   core.Action
	}{
		{Intent{Kind: IntentSearch}, ActionSearch},
		{Intent{Kind: IntentRecommendMood}, ActionRecommend},
		{Intent{Kind: IntentRecommendActivity}, ActionRecommend},
		{Intent{Kind: IntentRecommendGenre}, ActionRecommend},
		{Intent{Kind: IntentRecommendArtist}, ActionRecommend},
		{Intent{Kind: IntentRecommendFavorites}, ActionRecommend},
		{Intent{Kind: IntentCreatePlaylist}, ActionPreferences},
		{Intent{Kind: IntentCreatePlaylist, Subkind: "by_mood"}, ActionPreferences},
		{Intent{Kind: IntentGeneralChat}, ActionChat},
		{Intent{}, ActionChat},
	}

	for _, tt := range tests {
		if got := routeByIntent(tt.intent); got != tt.want {
			t.Errorf("routeByIntent(%s) = %s, want %s", tt.intent.Label(), got, tt.want)
		}
	}
}

func TestRouteAfterPreferences(t *testing.T) {
	if got := routeAfterPreferences(Intent{Kind: IntentCreatePlaylist, Subkind: "by_activity"}); got != ActionEnhanced {
		t.Errorf("playlist intent: got %s, want %s", got, ActionEnhanced)
	}
	if got := routeAfterPreferences(Intent{Kind: IntentRecommendMood}); got != ActionRecommend {
		t.Errorf("non-playlist intent: got %s, want %s", got, ActionRecommend)
	}
}

func TestRouteAfterRecommendations(t *testing.T) {
	if got := routeAfterRecommendations(Intent{Kind: IntentCreatePlaylist}); got != ActionCreatePlaylist {
		t.Errorf("playlist intent: got %s, want %s", got, ActionCreatePlaylist)
	}
	if got := routeAfterRecommendations(Intent{Kind: IntentRecommendMood}); got != ActionExplain {
		t.Errorf("non-playlist intent: got %s, want %s", got, ActionExplain)
	}
}
