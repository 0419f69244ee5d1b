package music

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/melodia/melodia/internal/core"
)

// SearchSongsNode runs a catalog text search for directed queries and seeds
// the recommendation list with the first hits.
type SearchSongsNode struct {
	catalog Catalog
}

func NewSearchSongsNode(catalog Catalog) *SearchSongsNode {
	return &SearchSongsNode{catalog: catalog}
}

type SearchPrep struct {
	Query string
	Genre string
}

type SearchResult struct {
	Songs []Song
	Err   string
}

func (n *SearchSongsNode) Prep(state *MusicState) SearchPrep {
	return SearchPrep{
		Query: paramString(state.IntentParams, "query", ""),
		Genre: paramString(state.IntentParams, "genre", ""),
	}
}

func (n *SearchSongsNode) Exec(ctx context.Context, prep SearchPrep) (SearchResult, error) {
	// A classifier that extracted no query yields a clean empty result,
	// not a catalog error.
	if strings.TrimSpace(prep.Query) == "" && prep.Genre == "" {
		return SearchResult{}, nil
	}

	songs, err := n.catalog.SearchTracks(ctx, prep.Query, prep.Genre, 10)
	if err != nil {
		return SearchResult{}, fmt.Errorf("track search %q: %w", prep.Query, err)
	}
	log.Printf("[Music] search %q returned %d tracks", prep.Query, len(songs))
	return SearchResult{Songs: songs}, nil
}

func (n *SearchSongsNode) ExecFallback(err error) SearchResult {
	return SearchResult{Err: err.Error()}
}

func (n *SearchSongsNode) Post(state *MusicState, prep SearchPrep, result SearchResult) core.Action {
	state.SearchResults = result.Songs

	// The first hits double as recommendations so the explanation node has
	// something to narrate.
	top := result.Songs
	if len(top) > 5 {
		top = top[:5]
	}
	state.Recommendations = wrapRecommendations(top, "", 0)

	if result.Err != "" {
		state.logError("search_songs", result.Err)
	}
	state.bumpStep()
	return ActionExplain
}
