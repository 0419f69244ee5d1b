package music

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/melodia/melodia/internal/core"
)

// GenerateRecommendationsNode produces recommendations with the strategy
// matching the classified intent: mood, activity, genre, artist or
// favorites. A catalog failure degrades to an empty list.
type GenerateRecommendationsNode struct {
	catalog Catalog
}

func NewGenerateRecommendationsNode(catalog Catalog) *GenerateRecommendationsNode {
	return &GenerateRecommendationsNode{catalog: catalog}
}

type RecommendPrep struct {
	Intent Intent
	Params map[string]any
}

type RecommendResult struct {
	Recs []Recommendation
	Err  string
}

func (n *GenerateRecommendationsNode) Prep(state *MusicState) RecommendPrep {
	return RecommendPrep{Intent: state.Intent, Params: state.IntentParams}
}

func (n *GenerateRecommendationsNode) Exec(ctx context.Context, prep RecommendPrep) (RecommendResult, error) {
	var recs []Recommendation
	var err error

	switch prep.Intent.Kind {
	case IntentRecommendMood:
		recs, err = recommendByMood(ctx, n.catalog, paramString(prep.Params, "mood", "开心"), 5)
	case IntentRecommendActivity:
		recs, err = recommendByActivity(ctx, n.catalog, paramString(prep.Params, "activity", "放松"), 5)
	case IntentRecommendGenre:
		recs, err = n.recommendByGenre(ctx, paramString(prep.Params, "genre", "流行"), 5)
	case IntentRecommendArtist:
		recs, err = n.recommendByArtist(ctx, paramString(prep.Params, "artist", ""), 5)
	case IntentRecommendFavorites:
		recs, err = n.recommendByFavorites(ctx, paramTrackNames(prep.Params, "favorite_songs"), 5)
	default:
		// Reached as a fallback route for playlist intents whose preference
		// analysis failed; reuse the mood strategy off whatever hint exists.
		recs, err = recommendByMood(ctx, n.catalog, paramString(prep.Params, "mood", "开心"), 5)
	}
	if err != nil {
		return RecommendResult{}, err
	}

	log.Printf("[Music] generated %d recommendations via %s", len(recs), prep.Intent.Label())
	return RecommendResult{Recs: recs}, nil
}

func (n *GenerateRecommendationsNode) recommendByGenre(ctx context.Context, genre string, limit int) ([]Recommendation, error) {
	songs, err := n.catalog.SearchTracks(ctx, "", genre, limit)
	if err != nil {
		return nil, fmt.Errorf("genre lookup %q: %w", genre, err)
	}
	return wrapRecommendations(songs, "这是一首优秀的"+genre+"作品", 0.85), nil
}

func (n *GenerateRecommendationsNode) recommendByArtist(ctx context.Context, artist string, limit int) ([]Recommendation, error) {
	songs, err := n.catalog.SearchTracks(ctx, artist, "", limit)
	if err != nil {
		return nil, fmt.Errorf("artist lookup %q: %w", artist, err)
	}
	return wrapRecommendations(songs, artist+"的经典作品", 0.9), nil
}

func (n *GenerateRecommendationsNode) recommendByFavorites(ctx context.Context, favorites []TrackName, limit int) ([]Recommendation, error) {
	if len(favorites) == 0 {
		return nil, nil
	}
	if len(favorites) > 5 { // catalog seed cap
		favorites = favorites[:5]
	}
	songs, err := n.catalog.GetRecommendationsByNames(ctx, SeedNames{TrackNames: favorites}, limit)
	if err != nil {
		return nil, fmt.Errorf("favorites recommendation: %w", err)
	}
	recs := make([]Recommendation, 0, len(songs))
	for _, s := range songs {
		recs = append(recs, Recommendation{
			Song:            s,
			Reason:          "因为你喜欢类似风格的歌曲，这首" + s.Artist + "的作品可能也会打动你",
			SimilarityScore: 0.9,
		})
	}
	return recs, nil
}

func (n *GenerateRecommendationsNode) ExecFallback(err error) RecommendResult {
	return RecommendResult{Err: err.Error()}
}

func (n *GenerateRecommendationsNode) Post(state *MusicState, prep RecommendPrep, result RecommendResult) core.Action {
	state.Recommendations = result.Recs
	if result.Err != "" {
		state.logError("generate_recommendations", result.Err)
	}
	state.bumpStep()
	return ActionExplain
}

// recommendByMood maps the mood onto seed genres and recommends from them,
// then thins out repeated artists. Shared with the enhanced node's fallback.
func recommendByMood(ctx context.Context, catalog Catalog, mood string, limit int) ([]Recommendation, error) {
	genres := GenresForMood(mood)
	songs, err := catalog.GetRecommendations(ctx, SeedIDs{Genres: genres}, limit)
	if err != nil {
		return nil, fmt.Errorf("mood recommendation %q: %w", mood, err)
	}
	songs = dedupeByArtist(songs, limit)
	return wrapRecommendations(songs, "这首歌曲很适合你现在的"+mood+"心情", 0.9), nil
}

// recommendByActivity maps the activity onto seed genres and recommends
// from them. Shared with the enhanced node's fallback.
func recommendByActivity(ctx context.Context, catalog Catalog, activity string, limit int) ([]Recommendation, error) {
	genres := GenresForActivity(activity)
	songs, err := catalog.GetRecommendations(ctx, SeedIDs{Genres: genres}, limit)
	if err != nil {
		return nil, fmt.Errorf("activity recommendation %q: %w", activity, err)
	}
	return wrapRecommendations(songs, "这首歌很适合"+activity+"时听，节奏和氛围都很搭", 0.88), nil
}

func wrapRecommendations(songs []Song, reason string, score float64) []Recommendation {
	recs := make([]Recommendation, 0, len(songs))
	for _, s := range songs {
		recs = append(recs, Recommendation{Song: s, Reason: reason, SimilarityScore: score})
	}
	return recs
}

// dedupeByArtist keeps the first track per artist, capped at limit. Tracks
// with no artist field always pass. Falls back to a plain cap when
// everything was filtered out.
func dedupeByArtist(songs []Song, limit int) []Song {
	var unique []Song
	seen := make(map[string]bool)
	for _, s := range songs {
		key := strings.ToLower(s.Artist)
		if key != "" && seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, s)
		if len(unique) >= limit {
			break
		}
	}
	if len(unique) == 0 {
		if len(songs) > limit {
			return songs[:limit]
		}
		return songs
	}
	return unique
}
