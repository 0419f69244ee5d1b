package music

import "strings"

// genreMapping is one entry of an ordered keyword-to-genres table. Ordered
// slices keep lookup results deterministic across runs.
type genreMapping struct {
	keyword string
	genres  []string
}

var moodGenres = []genreMapping{
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

var activityGenres = []genreMapping{
	{"运动", []string{"electronic", "rock", "dance"}},
	{"健身", []string{"electronic", "rock", "dance"}},
	{"学习", []string{"acoustic", "jazz", "chill"}},
	{"工作", []string{"acoustic", "jazz", "chill"}},
	{"开车", []string{"pop", "rock", "country"}},
	{"睡觉", []string{"ambient", "acoustic", "chill"}},
	{"休息", []string{"acoustic", "chill", "jazz"}},
	{"派对", []string{"dance", "pop", "electronic"}},
	{"聚会", []string{"pop", "dance", "electronic"}},
}

// playlistActivityGenres is the narrower table used when a playlist request
// names an activity; its genres replace the profile-derived ones outright.
var playlistActivityGenres = []genreMapping{
	{"运动", []string{"electronic", "rock"}},
	{"健身", []string{"electronic", "rock"}},
	{"学习", []string{"acoustic", "jazz"}},
	{"工作", []string{"acoustic", "jazz"}},
}

// GenresForMood collects seed genres for a mood description. Every keyword
// that overlaps the mood in either direction contributes its genres, capped
// at five seeds; an unrecognized mood defaults to pop.
func GenresForMood(mood string) []string {
	return collectGenres(moodGenres, mood, 5)
}

// GenresForActivity collects seed genres for an activity description, with
// the same matching and fallback rules as GenresForMood.
func GenresForActivity(activity string) []string {
	return collectGenres(activityGenres, strings.ToLower(activity), 5)
}

// PlaylistGenresForActivity returns the override genres for playlist
// creation, or false when the activity matches no override keyword.
func PlaylistGenresForActivity(activity string) ([]string, bool) {
	for _, m := range playlistActivityGenres {
		if strings.Contains(activity, m.keyword) {
			genres := m.genres
			if len(genres) > 3 {
				genres = genres[:3]
			}
			return genres, true
		}
	}
	return nil, false
}

func collectGenres(table []genreMapping, desc string, max int) []string {
	var genres []string
	if desc == "" {
		return []string{"pop"}
	}
	for _, m := range table {
		if strings.Contains(desc, m.keyword) || strings.Contains(m.keyword, desc) {
			genres = append(genres, m.genres...)
		}
	}
	if len(genres) == 0 {
		genres = []string{"pop"}
	}
	if len(genres) > max {
		genres = genres[:max]
	}
	return genres
}
