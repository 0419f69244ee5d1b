package spotify

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/melodia/melodia/internal/music"
)

const maxSearchLimit = 50

// SearchTracks implements music.Catalog. An empty query with a genre turns
// into a pure genre search.
func (c *Client) SearchTracks(ctx context.Context, query, genre string, limit int) ([]music.Song, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	q := strings.TrimSpace(query)
	if genre != "" {
		q = strings.TrimSpace(q + fmt.Sprintf(" genre:%q", genre))
	}
	if q == "" {
		return nil, fmt.Errorf("spotify adapter: empty search query")
	}

	params := url.Values{}
	params.Set("q", q)
	params.Set("type", "track")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("market", c.market)

	var body wireSearchResponse
	if err := c.getJSON(ctx, c.appClient, c.baseURL+"/search?"+params.Encode(), &body); err != nil {
		return nil, fmt.Errorf("search tracks %q: %w", q, err)
	}
	return mapTracks(body.Tracks.Items), nil
}

// searchTrackID resolves a title/artist pair to a track ID, empty when the
// search finds nothing.
func (c *Client) searchTrackID(ctx context.Context, name music.TrackName) (string, error) {
	q := "track:" + name.Title
	if name.Artist != "" {
		q += " artist:" + name.Artist
	}

	params := url.Values{}
	params.Set("q", q)
	params.Set("type", "track")
	params.Set("limit", "1")
	params.Set("market", c.market)

	var body wireSearchResponse
	if err := c.getJSON(ctx, c.appClient, c.baseURL+"/search?"+params.Encode(), &body); err != nil {
		return "", err
	}
	if len(body.Tracks.Items) == 0 {
		return "", nil
	}
	return body.Tracks.Items[0].ID, nil
}

// searchArtistID resolves an artist name to an artist ID.
func (c *Client) searchArtistID(ctx context.Context, name string) (string, error) {
	params := url.Values{}
	params.Set("q", name)
	params.Set("type", "artist")
	params.Set("limit", "1")

	var body wireSearchResponse
	if err := c.getJSON(ctx, c.appClient, c.baseURL+"/search?"+params.Encode(), &body); err != nil {
		return "", err
	}
	if len(body.Artists.Items) == 0 {
		return "", nil
	}
	return body.Artists.Items[0].ID, nil
}
