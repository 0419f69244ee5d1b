package music

import "context"

// TrackName identifies a track by display fields, before any catalog lookup.
type TrackName struct {
	Title  string
	Artist string
}

// SeedIDs are catalog-native recommendation seeds.
type SeedIDs struct {
	TrackIDs  []string
	ArtistIDs []string
	Genres    []string
}

// SeedNames are display-level recommendation seeds that the catalog must
// resolve to native IDs first.
type SeedNames struct {
	TrackNames  []TrackName
	ArtistNames []string
	Genres      []string
}

// Catalog is the music-catalog port the workflow nodes depend on. All
// methods honor context cancellation and return empty results rather than
// partial garbage on failure.
//
// Implementations may lack user authorization; in that case the top-items
// methods return empty slices with no error and CreatePlaylist returns an
// error.
type Catalog interface {
	// SearchTracks runs a text search, optionally narrowed to a genre.
	SearchTracks(ctx context.Context, query, genre string, limit int) ([]Song, error)

	// GetRecommendations returns tracks similar to the given seeds.
	GetRecommendations(ctx context.Context, seeds SeedIDs, limit int) ([]Song, error)

	// GetRecommendationsByNames resolves name seeds to IDs and recommends
	// from whichever resolved; seeds that cannot be resolved are dropped.
	GetRecommendationsByNames(ctx context.Context, seeds SeedNames, limit int) ([]Song, error)

	// GetUserTopTracks returns the authorized user's most played tracks
	// over the given time range ("short_term", "medium_term", "long_term").
	GetUserTopTracks(ctx context.Context, limit int, timeRange string) ([]Song, error)

	// GetUserTopArtists returns the authorized user's most played artists.
	GetUserTopArtists(ctx context.Context, limit int, timeRange string) ([]Artist, error)

	// CreatePlaylist persists a playlist with the given tracks on the
	// authorized user's account.
	CreatePlaylist(ctx context.Context, name string, songs []Song, description string, public bool) (*PlaylistInfo, error)
}
