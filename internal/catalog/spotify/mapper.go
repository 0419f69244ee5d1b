package spotify

import (
	"strconv"
	"strings"

	"github.com/melodia/melodia/internal/music"
)

// mapTrack converts a raw Spotify track to the domain Song. Spotify carries
// genres on artists, not tracks, so Genre stays empty here; callers that
// need one can backfill it from the seed context.
func mapTrack(wt wireTrack) music.Song {
	var artistNames []string
	for _, a := range wt.Artists {
		artistNames = append(artistNames, a.Name)
	}

	return music.Song{
		Title:           wt.Name,
		Artist:          strings.Join(artistNames, ", "),
		Album:           wt.Album.Name,
		Year:            releaseYear(wt.Album.ReleaseDate),
		DurationSeconds: wt.DurationMs / 1000,
		Popularity:      wt.Popularity,
		PreviewURL:      wt.PreviewURL,
		ExternalURL:     wt.ExternalURLs.Spotify,
		CatalogID:       wt.ID,
	}
}

func mapTracks(wts []wireTrack) []music.Song {
	songs := make([]music.Song, 0, len(wts))
	for _, wt := range wts {
		songs = append(songs, mapTrack(wt))
	}
	return songs
}

func mapArtist(wa wireArtist) music.Artist {
	return music.Artist{
		ID:         wa.ID,
		Name:       wa.Name,
		Genres:     wa.Genres,
		Popularity: wa.Popularity,
	}
}

// releaseYear parses the year out of a Spotify release date, which may be
// "2006", "2006-01" or "2006-01-02".
func releaseYear(releaseDate string) int {
	if len(releaseDate) < 4 {
		return 0
	}
	year, err := strconv.Atoi(releaseDate[:4])
	if err != nil {
		return 0
	}
	return year
}
