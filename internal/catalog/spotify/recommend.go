package spotify

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"

	"github.com/melodia/melodia/internal/music"
)

// maxSeeds is the Spotify recommendation API's combined seed cap.
const maxSeeds = 5

// GetRecommendations implements music.Catalog. Seeds beyond the API cap are
// dropped, tracks first, then artists, then genres.
func (c *Client) GetRecommendations(ctx context.Context, seeds music.SeedIDs, limit int) ([]music.Song, error) {
	if limit <= 0 {
		limit = 20
	}

	tracks, artists, genres := capSeeds(seeds.TrackIDs, seeds.ArtistIDs, seeds.Genres)
	if len(tracks)+len(artists)+len(genres) == 0 {
		return nil, fmt.Errorf("spotify adapter: no recommendation seeds")
	}

	params := url.Values{}
	if len(tracks) > 0 {
		params.Set("seed_tracks", strings.Join(tracks, ","))
	}
	if len(artists) > 0 {
		params.Set("seed_artists", strings.Join(artists, ","))
	}
	if len(genres) > 0 {
		params.Set("seed_genres", strings.Join(genres, ","))
	}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("market", c.market)

	var body wireRecommendations
	if err := c.getJSON(ctx, c.appClient, c.baseURL+"/recommendations?"+params.Encode(), &body); err != nil {
		return nil, fmt.Errorf("recommendations: %w", err)
	}
	return mapTracks(body.Tracks), nil
}

// GetRecommendationsByNames implements music.Catalog: it resolves name seeds
// to IDs with individual searches, drops the ones that cannot be resolved
// and recommends from whatever is left.
func (c *Client) GetRecommendationsByNames(ctx context.Context, seeds music.SeedNames, limit int) ([]music.Song, error) {
	var trackIDs []string
	for _, name := range seeds.TrackNames {
		if len(trackIDs) == maxSeeds {
			break
		}
		id, err := c.searchTrackID(ctx, name)
		if err != nil {
			log.Printf("[Spotify] resolve track %q failed: %v", name.Title, err)
			continue
		}
		if id != "" {
			trackIDs = append(trackIDs, id)
		}
	}

	var artistIDs []string
	for _, name := range seeds.ArtistNames {
		if len(artistIDs) == maxSeeds {
			break
		}
		id, err := c.searchArtistID(ctx, name)
		if err != nil {
			log.Printf("[Spotify] resolve artist %q failed: %v", name, err)
			continue
		}
		if id != "" {
			artistIDs = append(artistIDs, id)
		}
	}

	if len(trackIDs)+len(artistIDs)+len(seeds.Genres) == 0 {
		return nil, nil
	}
	return c.GetRecommendations(ctx, music.SeedIDs{
		TrackIDs:  trackIDs,
		ArtistIDs: artistIDs,
		Genres:    seeds.Genres,
	}, limit)
}

// capSeeds enforces the combined seed cap, preferring tracks over artists
// over genres.
func capSeeds(tracks, artists, genres []string) ([]string, []string, []string) {
	budget := maxSeeds
	if len(tracks) > budget {
		tracks = tracks[:budget]
	}
	budget -= len(tracks)
	if len(artists) > budget {
		artists = artists[:budget]
	}
	budget -= len(artists)
	if len(genres) > budget {
		genres = genres[:budget]
	}
	return tracks, artists, genres
}
