package music

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/melodia/melodia/internal/core"
)

// AnalyzeUserPreferencesNode derives a listening profile from the user's
// catalog history. Missing authorization or a catalog failure degrades to an
// empty profile; the run continues either way.
type AnalyzeUserPreferencesNode struct {
	catalog Catalog
}

func NewAnalyzeUserPreferencesNode(catalog Catalog) *AnalyzeUserPreferencesNode {
	return &AnalyzeUserPreferencesNode{catalog: catalog}
}

type PreferencesPrep struct {
	Intent Intent
}

type PreferencesResult struct {
	Prefs         UserPreferences
	FavoriteSongs []Song
	Err           string
}

func (n *AnalyzeUserPreferencesNode) Prep(state *MusicState) PreferencesPrep {
	return PreferencesPrep{Intent: state.Intent}
}

func (n *AnalyzeUserPreferencesNode) Exec(ctx context.Context, prep PreferencesPrep) (PreferencesResult, error) {
	topTracks, err := n.catalog.GetUserTopTracks(ctx, 20, "medium_term")
	if err != nil {
		return PreferencesResult{}, fmt.Errorf("top tracks: %w", err)
	}
	topArtists, err := n.catalog.GetUserTopArtists(ctx, 20, "medium_term")
	if err != nil {
		return PreferencesResult{}, fmt.Errorf("top artists: %w", err)
	}

	artistNames := make([]string, 0, 10)
	for _, a := range topArtists {
		if len(artistNames) == 10 {
			break
		}
		artistNames = append(artistNames, a.Name)
	}

	var genres []string
	for _, a := range topArtists {
		genres = append(genres, a.Genres...)
	}

	var decades []string
	for _, s := range topTracks {
		if s.Year > 0 {
			decades = append(decades, fmt.Sprintf("%ds", (s.Year/10)*10))
		}
	}

	favorites := topTracks
	if len(favorites) > 10 {
		favorites = favorites[:10]
	}

	prefs := UserPreferences{
		FavoriteGenres:  topByFrequency(genres, 5),
		FavoriteArtists: artistNames,
		FavoriteDecades: topByFrequency(decades, 3),
	}
	log.Printf("[Music] preference profile: genres=%v artists=%d decades=%v",
		prefs.FavoriteGenres, len(prefs.FavoriteArtists), prefs.FavoriteDecades)

	return PreferencesResult{Prefs: prefs, FavoriteSongs: favorites}, nil
}

func (n *AnalyzeUserPreferencesNode) ExecFallback(err error) PreferencesResult {
	return PreferencesResult{Err: err.Error()}
}

func (n *AnalyzeUserPreferencesNode) Post(state *MusicState, prep PreferencesPrep, result PreferencesResult) core.Action {
	state.UserPreferences = result.Prefs
	state.FavoriteSongs = result.FavoriteSongs
	if result.Err != "" {
		state.logError("analyze_user_preferences", result.Err)
	}
	state.bumpStep()
	return routeAfterPreferences(state.Intent)
}

// topByFrequency returns the n most frequent items, breaking count ties by
// first appearance so results are deterministic.
func topByFrequency(items []string, n int) []string {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	var order []string
	for i, item := range items {
		if _, ok := counts[item]; !ok {
			firstSeen[item] = i
			order = append(order, item)
		}
		counts[item]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		if counts[order[i]] != counts[order[j]] {
			return counts[order[i]] > counts[order[j]]
		}
		return firstSeen[order[i]] < firstSeen[order[j]]
	})

	if len(order) > n {
		order = order[:n]
	}
	return order
}
