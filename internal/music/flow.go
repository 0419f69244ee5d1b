package music

import (
	"github.com/melodia/melodia/internal/core"
	"github.com/melodia/melodia/internal/llm"
	"github.com/melodia/melodia/internal/prompt"
)

// routeByIntent picks the branch after intent classification.
func routeByIntent(in Intent) core.Action {
	switch {
	case in.Kind == IntentSearch:
		return ActionSearch
	case in.IsCreatePlaylist():
		return ActionPreferences
	case in.Kind == IntentRecommendMood, in.Kind == IntentRecommendActivity,
		in.Kind == IntentRecommendGenre, in.Kind == IntentRecommendArtist,
		in.Kind == IntentRecommendFavorites:
		return ActionRecommend
	default:
		return ActionChat
	}
}

// routeAfterPreferences sends playlist requests to the preference-aware
// recommender and everything else to the plain one.
func routeAfterPreferences(in Intent) core.Action {
	if in.IsCreatePlaylist() {
		return ActionEnhanced
	}
	return ActionRecommend
}

// routeAfterRecommendations decides whether a playlist still has to be
// persisted before the explanation.
func routeAfterRecommendations(in Intent) core.Action {
	if in.IsCreatePlaylist() {
		return ActionCreatePlaylist
	}
	return ActionExplain
}

// BuildMusicFlow wires the workflow graph. Every run starts at
// analyze_intent and ends at general_chat or generate_explanation; playlist
// requests take the longest path through preference analysis, enhanced
// recommendations and playlist creation.
//
// LLM-backed nodes retry once; catalog-backed nodes rely on the catalog's
// own retry policy.
func BuildMusicFlow(provider llm.Provider, catalog Catalog, prompts *prompt.Loader) *core.Flow[MusicState] {
	intent := core.NewNode("analyze_intent", NewAnalyzeIntentNode(provider, prompts), 1)
	search := core.NewNode("search_songs", NewSearchSongsNode(catalog), 0)
	preferences := core.NewNode("analyze_user_preferences", NewAnalyzeUserPreferencesNode(catalog), 0)
	recommend := core.NewNode("generate_recommendations", NewGenerateRecommendationsNode(catalog), 0)
	enhanced := core.NewNode("enhanced_recommendations", NewEnhancedRecommendationsNode(catalog), 0)
	playlist := core.NewNode("create_playlist", NewCreatePlaylistNode(catalog), 0)
	chat := core.NewNode("general_chat", NewGeneralChatNode(provider, prompts), 1)
	explain := core.NewNode("generate_explanation", NewGenerateExplanationNode(provider, prompts), 1)

	intent.AddSuccessor(search, ActionSearch)
	intent.AddSuccessor(preferences, ActionPreferences)
	intent.AddSuccessor(recommend, ActionRecommend)
	intent.AddSuccessor(chat, ActionChat)

	preferences.AddSuccessor(enhanced, ActionEnhanced)
	preferences.AddSuccessor(recommend, ActionRecommend)

	enhanced.AddSuccessor(playlist, ActionCreatePlaylist)
	enhanced.AddSuccessor(explain, ActionExplain)

	search.AddSuccessor(explain, ActionExplain)
	recommend.AddSuccessor(explain, ActionExplain)
	playlist.AddSuccessor(explain, ActionExplain)

	return core.NewFlow("music", intent)
}
