package spotify

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/melodia/melodia/internal/music"
)

// addTracksChunkSize is the playlist-add endpoint's per-request URI cap.
const addTracksChunkSize = 100

// GetUserTopTracks implements music.Catalog. Without user authorization it
// returns an empty list so preference analysis degrades instead of failing.
func (c *Client) GetUserTopTracks(ctx context.Context, limit int, timeRange string) ([]music.Song, error) {
	if c.userClient == nil {
		log.Printf("[Spotify] top tracks skipped: no user authorization")
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	if timeRange == "" {
		timeRange = "medium_term"
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("time_range", timeRange)

	var body wireTopTracks
	if err := c.getJSON(ctx, c.userClient, c.baseURL+"/me/top/tracks?"+params.Encode(), &body); err != nil {
		return nil, fmt.Errorf("top tracks: %w", err)
	}
	return mapTracks(body.Items), nil
}

// GetUserTopArtists implements music.Catalog, with the same degradation as
// GetUserTopTracks.
func (c *Client) GetUserTopArtists(ctx context.Context, limit int, timeRange string) ([]music.Artist, error) {
	if c.userClient == nil {
		log.Printf("[Spotify] top artists skipped: no user authorization")
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	if timeRange == "" {
		timeRange = "medium_term"
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("time_range", timeRange)

	var body wireTopArtists
	if err := c.getJSON(ctx, c.userClient, c.baseURL+"/me/top/artists?"+params.Encode(), &body); err != nil {
		return nil, fmt.Errorf("top artists: %w", err)
	}

	artists := make([]music.Artist, 0, len(body.Items))
	for _, wa := range body.Items {
		artists = append(artists, mapArtist(wa))
	}
	return artists, nil
}

// CreatePlaylist implements music.Catalog: it creates the playlist on the
// authorized user's account and adds every song that carries a catalog ID.
func (c *Client) CreatePlaylist(ctx context.Context, name string, songs []music.Song, description string, public bool) (*music.PlaylistInfo, error) {
	if c.userClient == nil {
		return nil, fmt.Errorf("spotify adapter: playlist creation requires user authorization")
	}

	var me wireUser
	if err := c.getJSON(ctx, c.userClient, c.baseURL+"/me", &me); err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}

	var created wirePlaylist
	err := c.postJSON(ctx, c.userClient, c.baseURL+"/users/"+url.PathEscape(me.ID)+"/playlists",
		createPlaylistRequest{Name: name, Description: description, Public: public}, &created)
	if err != nil {
		return nil, fmt.Errorf("create playlist: %w", err)
	}

	var uris []string
	for _, song := range songs {
		if song.CatalogID != "" {
			uris = append(uris, "spotify:track:"+song.CatalogID)
		}
	}

	for start := 0; start < len(uris); start += addTracksChunkSize {
		end := start + addTracksChunkSize
		if end > len(uris) {
			end = len(uris)
		}
		err := c.postJSON(ctx, c.userClient, c.baseURL+"/playlists/"+url.PathEscape(created.ID)+"/tracks",
			addTracksRequest{URIs: uris[start:end]}, nil)
		if err != nil {
			return nil, fmt.Errorf("add tracks: %w", err)
		}
	}

	return &music.PlaylistInfo{
		ID:          created.ID,
		Name:        created.Name,
		URL:         created.ExternalURLs.Spotify,
		Description: description,
		TrackCount:  len(uris),
	}, nil
}
