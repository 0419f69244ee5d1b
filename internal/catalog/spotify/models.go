package spotify

// Raw wire types for the subset of the Spotify Web API the adapter uses.

type wireImage struct {
	URL string `json:"url"`
}

type wireArtistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type wireAlbum struct {
	Name        string      `json:"name"`
	ReleaseDate string      `json:"release_date"`
	Images      []wireImage `json:"images"`
}

type wireTrack struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Artists      []wireArtistRef `json:"artists"`
	Album        wireAlbum       `json:"album"`
	DurationMs   int             `json:"duration_ms"`
	Popularity   int             `json:"popularity"`
	PreviewURL   string          `json:"preview_url"`
	ExternalURLs wireExternal    `json:"external_urls"`
}

type wireExternal struct {
	Spotify string `json:"spotify"`
}

type wireArtist struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Genres     []string `json:"genres"`
	Popularity int      `json:"popularity"`
}

type wireSearchResponse struct {
	Tracks  wireTrackPage  `json:"tracks"`
	Artists wireArtistPage `json:"artists"`
}

type wireTrackPage struct {
	Items []wireTrack `json:"items"`
}

type wireArtistPage struct {
	Items []wireArtist `json:"items"`
}

type wireRecommendations struct {
	Tracks []wireTrack `json:"tracks"`
}

type wireTopTracks struct {
	Items []wireTrack `json:"items"`
}

type wireTopArtists struct {
	Items []wireArtist `json:"items"`
}

type wireUser struct {
	ID string `json:"id"`
}

type wirePlaylist struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	ExternalURLs wireExternal `json:"external_urls"`
}

type createPlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
}

type addTracksRequest struct {
	URIs []string `json:"uris"`
}
