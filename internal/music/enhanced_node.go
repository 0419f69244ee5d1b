package music

import (
	"context"
	"fmt"
	"log"

	"github.com/melodia/melodia/internal/core"
)

// EnhancedRecommendationsNode blends the derived preference profile into
// recommendations. For playlist intents it gathers a larger candidate pool
// seeded by the user's favorite tracks and genres; for anything else it
// falls back to the plain mood or activity strategies.
type EnhancedRecommendationsNode struct {
	catalog Catalog
}

func NewEnhancedRecommendationsNode(catalog Catalog) *EnhancedRecommendationsNode {
	return &EnhancedRecommendationsNode{catalog: catalog}
}

type EnhancedPrep struct {
	Intent        Intent
	Params        map[string]any
	Prefs         UserPreferences
	FavoriteSongs []Song
}

type EnhancedResult struct {
	Recs []Recommendation
	Err  string
}

func (n *EnhancedRecommendationsNode) Prep(state *MusicState) EnhancedPrep {
	return EnhancedPrep{
		Intent:        state.Intent,
		Params:        state.IntentParams,
		Prefs:         state.UserPreferences,
		FavoriteSongs: state.FavoriteSongs,
	}
}

func (n *EnhancedRecommendationsNode) Exec(ctx context.Context, prep EnhancedPrep) (EnhancedResult, error) {
	if !prep.Intent.IsCreatePlaylist() {
		// Non-playlist intents only reach this node through unusual routing;
		// serve them with the plain strategies.
		switch prep.Intent.Kind {
		case IntentRecommendMood:
			recs, err := recommendByMood(ctx, n.catalog, paramString(prep.Params, "mood", "开心"), 5)
			if err != nil {
				return EnhancedResult{}, err
			}
			return EnhancedResult{Recs: recs}, nil
		case IntentRecommendActivity:
			recs, err := recommendByActivity(ctx, n.catalog, paramString(prep.Params, "activity", "放松"), 5)
			if err != nil {
				return EnhancedResult{}, err
			}
			return EnhancedResult{Recs: recs}, nil
		default:
			return EnhancedResult{}, nil
		}
	}

	// Track seeds from the user's favorites, capped at the catalog seed limit.
	var trackIDs []string
	for _, s := range prep.FavoriteSongs {
		if len(trackIDs) == 5 {
			break
		}
		if s.CatalogID != "" {
			trackIDs = append(trackIDs, s.CatalogID)
		}
	}

	// Genre seeds from the profile, replaced outright by the activity
	// override table when the request names a matching activity.
	genres := prep.Prefs.FavoriteGenres
	if len(genres) > 3 {
		genres = genres[:3]
	}
	if len(genres) == 0 {
		genres = []string{"pop"}
	}
	if activity := paramString(prep.Params, "activity", ""); activity != "" {
		if override, ok := PlaylistGenresForActivity(activity); ok {
			genres = override
		}
	}

	// A playlist needs a larger candidate pool than a plain recommendation.
	songs, err := n.catalog.GetRecommendations(ctx, SeedIDs{TrackIDs: trackIDs, Genres: genres}, 30)
	if err != nil {
		return EnhancedResult{}, fmt.Errorf("enhanced recommendation: %w", err)
	}

	log.Printf("[Music] enhanced recommendations: %d candidates (seeds: %d tracks, genres=%v)",
		len(songs), len(trackIDs), genres)
	return EnhancedResult{Recs: wrapRecommendations(songs, "结合你的音乐偏好推荐", 0.9)}, nil
}

func (n *EnhancedRecommendationsNode) ExecFallback(err error) EnhancedResult {
	return EnhancedResult{Err: err.Error()}
}

func (n *EnhancedRecommendationsNode) Post(state *MusicState, prep EnhancedPrep, result EnhancedResult) core.Action {
	state.Recommendations = result.Recs
	if result.Err != "" {
		state.logError("enhanced_recommendations", result.Err)
	}
	state.bumpStep()
	return routeAfterRecommendations(state.Intent)
}
