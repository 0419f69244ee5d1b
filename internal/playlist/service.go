package playlist

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/melodia/melodia/internal/music"
	"github.com/melodia/melodia/internal/util"
)

// DefaultTargetSize is the playlist length used when the caller does not
// specify one.
const DefaultTargetSize = 30

// keyword-to-genre tables for query analysis. These carry a few aliases
// beyond the workflow's recommendation tables (跑步, 写作, 通勤) because free
// text playlist requests use a wider vocabulary.
type seedMapping struct {
	keyword string
	genres  []string
}

var moodSeeds = []seedMapping{
	{"开心", []string{"pop", "dance", "electronic"}},
	{"快乐", []string{"pop", "dance", "electronic"}},
	{"高兴", []string{"pop", "dance", "electronic"}},
	{"兴奋", []string{"rock", "electronic", "dance"}},
	{"激动", []string{"rock", "electronic", "dance"}},
	{"悲伤", []string{"acoustic", "sad", "indie", "mellow"}},
	{"伤心", []string{"acoustic", "sad", "indie", "mellow"}},
	{"难过", []string{"acoustic", "sad", "indie", "piano"}},
	{"丧", []string{"acoustic", "sad", "indie"}},
	{"疗愈", []string{"acoustic", "mellow", "indie"}},
	{"放松", []string{"chill", "acoustic", "jazz", "ambient"}},
	{"舒缓", []string{"chill", "acoustic", "jazz", "ambient"}},
	{"平静", []string{"ambient", "acoustic", "chill"}},
	{"安静", []string{"ambient", "acoustic", "chill"}},
	{"怀旧", []string{"classic", "pop", "rock", "indie"}},
	{"浪漫", []string{"acoustic", "pop", "r-n-b", "soul"}},
	{"甜蜜", []string{"pop", "r-n-b", "soul"}},
	{"表白", []string{"r-n-b", "soul", "pop"}},
	{"学习", []string{"lo-fi", "chill", "ambient", "acoustic"}},
	{"专注", []string{"lo-fi", "ambient", "acoustic"}},
	{"运动", []string{"electronic", "rock", "dance"}},
}

var activitySeeds = []seedMapping{
	{"运动", []string{"electronic", "rock", "dance"}},
	{"健身", []string{"electronic", "rock", "dance"}},
	{"跑步", []string{"electronic", "rock", "dance"}},
	{"学习", []string{"acoustic", "jazz", "chill"}},
	{"工作", []string{"acoustic", "jazz", "chill"}},
	{"写作", []string{"lo-fi", "ambient", "acoustic"}},
	{"开车", []string{"pop", "rock", "country"}},
	{"通勤", []string{"pop", "indie", "electronic"}},
	{"睡觉", []string{"ambient", "acoustic", "chill"}},
	{"休息", []string{"acoustic", "chill", "jazz"}},
	{"派对", []string{"dance", "pop", "electronic"}},
	{"聚会", []string{"pop", "dance", "electronic"}},
}

// QueryContext is what the service understood from the free-text request.
type QueryContext struct {
	Moods      []string `json:"moods"`
	Activities []string `json:"activities"`
	HasQuery   bool     `json:"has_query"`
}

// SeedSummary reports which seeds fed the candidate gathering, truncated
// for display.
type SeedSummary struct {
	Tracks  []music.TrackName `json:"tracks"`
	Artists []string          `json:"artists"`
	Genres  []string          `json:"genres"`
}

// Params configures one smart playlist generation.
type Params struct {
	Query         string
	Preferences   music.UserPreferences
	FavoriteSongs []music.TrackName
	TargetSize    int  // <= 0 means the service's default size
	Persist       bool // create the playlist on the catalog account
	Public        bool
}

// SmartPlaylist is the generation outcome. Playlist is nil when persistence
// was skipped or failed; Songs may be empty when no candidate source
// produced anything.
type SmartPlaylist struct {
	Songs       []music.Song        `json:"songs"`
	Playlist    *music.PlaylistInfo `json:"playlist,omitempty"`
	Context     QueryContext        `json:"context"`
	SeedSummary SeedSummary         `json:"seed_summary"`
}

// Service generates balanced playlists from free-text requests. Each
// candidate source is optional: a failing source logs a warning and the
// generation continues with what the others produced.
type Service struct {
	catalog           music.Catalog
	defaultTargetSize int
}

// Option configures a Service.
type Option func(*Service)

// WithDefaultTargetSize overrides the playlist length used when a request
// leaves TargetSize unset. Non-positive values are ignored.
func WithDefaultTargetSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.defaultTargetSize = n
		}
	}
}

func NewService(catalog music.Catalog, opts ...Option) *Service {
	s := &Service{catalog: catalog, defaultTargetSize: DefaultTargetSize}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate runs the full pipeline: query analysis, seed preparation,
// candidate gathering, balancing and optional persistence.
func (s *Service) Generate(ctx context.Context, params Params) (*SmartPlaylist, error) {
	targetSize := params.TargetSize
	if targetSize <= 0 {
		targetSize = s.defaultTargetSize
	}

	queryCtx := analyzeQuery(params.Query)
	log.Printf("[Playlist] generate: query=%q target=%d moods=%v activities=%v",
		params.Query, targetSize, queryCtx.Moods, queryCtx.Activities)

	trackSeeds, artistSeeds := s.prepareSeedNames(ctx, params)
	genreSeeds := deriveSeedGenres(queryCtx, params.Preferences)

	summary := SeedSummary{
		Tracks:  capTrackNames(trackSeeds, 5),
		Artists: capStrings(artistSeeds, 5),
		Genres:  capStrings(genreSeeds, 5),
	}

	candidateLimit := targetSize * 2
	if candidateLimit < 20 {
		candidateLimit = 20
	}

	var candidates []music.Song

	// Step 1: name-based recommendations.
	if len(trackSeeds) > 0 || len(artistSeeds) > 0 || len(genreSeeds) > 0 {
		songs, err := s.catalog.GetRecommendationsByNames(ctx, music.SeedNames{
			TrackNames:  trackSeeds,
			ArtistNames: artistSeeds,
			Genres:      genreSeeds,
		}, candidateLimit)
		if err != nil {
			log.Printf("[Playlist] name-based recommendations failed: %v", err)
		} else {
			candidates = append(candidates, songs...)
		}
	}

	// Step 2: ID-based recommendations seeded by a query search.
	if len(candidates) < targetSize {
		trackIDs := s.searchTrackIDs(ctx, params.Query)
		if len(trackIDs) > 0 || len(genreSeeds) > 0 {
			songs, err := s.catalog.GetRecommendations(ctx, music.SeedIDs{
				TrackIDs: trackIDs,
				Genres:   genreSeeds,
			}, candidateLimit)
			if err != nil {
				log.Printf("[Playlist] ID-based recommendations failed: %v", err)
			} else {
				candidates = append(candidates, songs...)
			}
		}
	}

	// Step 3: last resort, the user's own top tracks.
	if len(candidates) < targetSize {
		songs, err := s.catalog.GetUserTopTracks(ctx, targetSize, "medium_term")
		if err != nil {
			log.Printf("[Playlist] top-tracks fallback failed: %v", err)
		} else {
			candidates = append(candidates, songs...)
		}
	}

	balanced := Balance(candidates, targetSize, BalanceByGenre)
	result := &SmartPlaylist{Songs: balanced, Context: queryCtx, SeedSummary: summary}

	if len(balanced) == 0 {
		log.Printf("[Playlist] no candidates for query %q", params.Query)
		return result, nil
	}

	if params.Persist {
		name := buildPlaylistName(params.Query, queryCtx, params.Preferences)
		description := buildPlaylistDescription(params.Query, queryCtx, len(balanced))
		playlist, err := s.catalog.CreatePlaylist(ctx, name, balanced, description, params.Public)
		if err != nil {
			log.Printf("[Playlist] create %q failed: %v", name, err)
		} else {
			result.Playlist = playlist
		}
	}

	log.Printf("[Playlist] generated %d songs (persisted=%v)", len(balanced), result.Playlist != nil)
	return result, nil
}

// analyzeQuery detects mood and activity keywords in the request text.
func analyzeQuery(query string) QueryContext {
	ctx := QueryContext{HasQuery: strings.TrimSpace(query) != ""}
	for _, m := range moodSeeds {
		if strings.Contains(query, m.keyword) {
			ctx.Moods = append(ctx.Moods, m.keyword)
		}
	}
	for _, a := range activitySeeds {
		if strings.Contains(query, a.keyword) {
			ctx.Activities = append(ctx.Activities, a.keyword)
		}
	}
	return ctx
}

// deriveSeedGenres merges genres from detected moods, detected activities
// and the preference profile, deduplicated in that order.
func deriveSeedGenres(queryCtx QueryContext, prefs music.UserPreferences) []string {
	var genres []string
	for _, mood := range queryCtx.Moods {
		for _, m := range moodSeeds {
			if m.keyword == mood {
				genres = append(genres, m.genres...)
			}
		}
	}
	for _, activity := range queryCtx.Activities {
		for _, a := range activitySeeds {
			if a.keyword == activity {
				genres = append(genres, a.genres...)
			}
		}
	}
	for _, genre := range prefs.FavoriteGenres {
		genres = append(genres, strings.ToLower(genre))
	}

	var unique []string
	seen := make(map[string]bool)
	for _, genre := range genres {
		if seen[genre] {
			continue
		}
		seen[genre] = true
		unique = append(unique, genre)
	}
	return unique
}

// prepareSeedNames collects track and artist seeds from the explicit
// preferences, then supplements track seeds with a query search to help the
// cold-start case. Search failures are tolerated.
func (s *Service) prepareSeedNames(ctx context.Context, params Params) ([]music.TrackName, []string) {
	var trackSeeds []music.TrackName
	artistSeeds := capStrings(params.Preferences.FavoriteArtists, 5)

	for _, fav := range capTrackNames(params.FavoriteSongs, 5) {
		if fav.Title != "" {
			trackSeeds = append(trackSeeds, fav)
		}
	}

	if params.Query != "" {
		songs, err := s.catalog.SearchTracks(ctx, params.Query, "", 3)
		if err != nil {
			log.Printf("[Playlist] seed search failed: %v", err)
		} else {
			for _, song := range songs {
				trackSeeds = append(trackSeeds, music.TrackName{Title: song.Title, Artist: song.Artist})
			}
		}
	}

	var uniqueTracks []music.TrackName
	seenTracks := make(map[string]bool)
	for _, t := range trackSeeds {
		key := util.NormalizeKey(t.Title) + "\x00" + util.NormalizeKey(t.Artist)
		if seenTracks[key] {
			continue
		}
		seenTracks[key] = true
		uniqueTracks = append(uniqueTracks, t)
	}

	var uniqueArtists []string
	seenArtists := make(map[string]bool)
	for _, a := range artistSeeds {
		key := util.NormalizeKey(a)
		if key == "" || seenArtists[key] {
			continue
		}
		seenArtists[key] = true
		uniqueArtists = append(uniqueArtists, a)
	}

	return uniqueTracks, uniqueArtists
}

// searchTrackIDs resolves the query to up to five catalog track IDs.
func (s *Service) searchTrackIDs(ctx context.Context, query string) []string {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	songs, err := s.catalog.SearchTracks(ctx, query, "", 5)
	if err != nil {
		log.Printf("[Playlist] track ID search failed: %v", err)
		return nil
	}
	var ids []string
	for _, song := range songs {
		if strings.TrimSpace(song.CatalogID) != "" {
			ids = append(ids, song.CatalogID)
		}
		if len(ids) == 5 {
			break
		}
	}
	return ids
}

func buildPlaylistName(query string, queryCtx QueryContext, prefs music.UserPreferences) string {
	switch {
	case len(queryCtx.Moods) > 0:
		return queryCtx.Moods[0] + "心情专属歌单"
	case len(queryCtx.Activities) > 0:
		return "适合" + queryCtx.Activities[0] + "的节奏"
	case len(prefs.FavoriteArtists) > 0:
		return prefs.FavoriteArtists[0] + "灵感精选"
	case len(prefs.FavoriteGenres) > 0:
		return prefs.FavoriteGenres[0] + "氛围歌单"
	case strings.TrimSpace(query) != "":
		return "AI 智能歌单：" + util.TruncateRunes(query, 24)
	default:
		return "AI 智能歌单"
	}
}

func buildPlaylistDescription(query string, queryCtx QueryContext, songCount int) string {
	var parts []string
	if trimmed := strings.TrimSpace(query); trimmed != "" {
		parts = append(parts, "用户需求："+trimmed)
	}
	if len(queryCtx.Moods) > 0 {
		parts = append(parts, "感知心情："+strings.Join(queryCtx.Moods, ", "))
	}
	if len(queryCtx.Activities) > 0 {
		parts = append(parts, "适配场景："+strings.Join(queryCtx.Activities, ", "))
	}
	parts = append(parts, fmt.Sprintf("共收录 %d 首精选歌曲", songCount))
	parts = append(parts, "由 AI 在 "+time.Now().Format("2006-01-02 15:04")+" 自动生成")
	return strings.Join(parts, " | ")
}

func capStrings(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func capTrackNames(items []music.TrackName, n int) []music.TrackName {
	if len(items) > n {
		return items[:n]
	}
	return items
}
