package music

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/melodia/melodia/internal/llm"
	"github.com/melodia/melodia/internal/prompt"
)

// scriptedProvider replies with canned responses in call order. A nil entry
// in errs means the call succeeds.
type scriptedProvider struct {
	replies []string
	errs    []error
	calls   int
	prompts []string
}

func (p *scriptedProvider) CallLLM(ctx context.Context, messages []llm.Message) (llm.Message, error) {
	i := p.calls
	p.calls++
	if len(messages) > 0 {
		p.prompts = append(p.prompts, messages[len(messages)-1].Content)
	}
	if i < len(p.errs) && p.errs[i] != nil {
		return llm.Message{}, p.errs[i]
	}
	reply := ""
	if i < len(p.replies) {
		reply = p.replies[i]
	}
	return llm.Message{Role: llm.RoleAssistant, Content: reply}, nil
}

func (p *scriptedProvider) CallLLMStream(ctx context.Context, messages []llm.Message, onChunk llm.StreamCallback) (llm.Message, error) {
	msg, err := p.CallLLM(ctx, messages)
	if err == nil && onChunk != nil {
		onChunk(msg.Content)
	}
	return msg, err
}

// stubCatalog returns fixed data and records which methods were called.
type stubCatalog struct {
	searchSongs []Song
	recSongs    []Song
	topTracks   []Song
	topArtists  []Artist
	playlist    *PlaylistInfo
	err         error
	calls       []string
}

func (c *stubCatalog) SearchTracks(ctx context.Context, query, genre string, limit int) ([]Song, error) {
	c.calls = append(c.calls, fmt.Sprintf("search(%s,%s,%d)", query, genre, limit))
	return capSongs(c.searchSongs, limit), c.err
}

func (c *stubCatalog) GetRecommendations(ctx context.Context, seeds SeedIDs, limit int) ([]Song, error) {
	c.calls = append(c.calls, fmt.Sprintf("recommend(genres=%v,tracks=%d,limit=%d)", seeds.Genres, len(seeds.TrackIDs), limit))
	return capSongs(c.recSongs, limit), c.err
}

func (c *stubCatalog) GetRecommendationsByNames(ctx context.Context, seeds SeedNames, limit int) ([]Song, error) {
	c.calls = append(c.calls, fmt.Sprintf("recommendByNames(%d,%d)", len(seeds.TrackNames), limit))
	return capSongs(c.recSongs, limit), c.err
}

func (c *stubCatalog) GetUserTopTracks(ctx context.Context, limit int, timeRange string) ([]Song, error) {
	c.calls = append(c.calls, fmt.Sprintf("topTracks(%d,%s)", limit, timeRange))
	return capSongs(c.topTracks, limit), c.err
}

func (c *stubCatalog) GetUserTopArtists(ctx context.Context, limit int, timeRange string) ([]Artist, error) {
	c.calls = append(c.calls, fmt.Sprintf("topArtists(%d,%s)", limit, timeRange))
	if c.err != nil {
		return nil, c.err
	}
	artists := c.topArtists
	if len(artists) > limit {
		artists = artists[:limit]
	}
	return artists, nil
}

func (c *stubCatalog) CreatePlaylist(ctx context.Context, name string, songs []Song, description string, public bool) (*PlaylistInfo, error) {
	c.calls = append(c.calls, fmt.Sprintf("createPlaylist(%s,%d,public=%v)", name, len(songs), public))
	if c.err != nil {
		return nil, c.err
	}
	return c.playlist, nil
}

func capSongs(songs []Song, limit int) []Song {
	if len(songs) > limit {
		return songs[:limit]
	}
	return songs
}

func songSet(n int) []Song {
	songs := make([]Song, n)
	for i := range songs {
		songs[i] = Song{
			Title:      fmt.Sprintf("歌曲%d", i+1),
			Artist:     fmt.Sprintf("歌手%d", i+1),
			Genre:      "pop",
			Year:       2000 + i,
			Popularity: 50 + i,
			CatalogID:  fmt.Sprintf("id-%d", i+1),
		}
	}
	return songs
}

func intentJSON(intentType string, params string) string {
	return fmt.Sprintf("```json\n{\"intent_type\": %q, \"parameters\": %s, \"context\": \"\"}\n```", intentType, params)
}

func newTestAgent(provider llm.Provider, catalog Catalog) *Agent {
	return NewAgent(provider, catalog, prompt.NewLoader(""))
}

func TestAgentSearchFlow(t *testing.T) {
	provider := &scriptedProvider{replies: []string{
		intentJSON("search", `{"query": "周杰伦 晴天", "genre": ""}`),
		"这些歌曲都很适合你。",
	}}
	catalog := &stubCatalog{searchSongs: songSet(8)}

	result := newTestAgent(provider, catalog).Run(context.Background(), Request{Input: "帮我找周杰伦的晴天"})

	if !result.Success {
		t.Fatalf("run failed: %+v", result.Errors)
	}
	if result.IntentType != "search" {
		t.Errorf("intent = %q, want search", result.IntentType)
	}
	if len(result.SearchResults) != 8 {
		t.Errorf("search results = %d, want 8", len(result.SearchResults))
	}
	if len(result.Recommendations) != 5 {
		t.Errorf("recommendations = %d, want first 5 hits", len(result.Recommendations))
	}
	if !strings.Contains(result.Response, "这些歌曲都很适合你。") {
		t.Errorf("response missing explanation: %q", result.Response)
	}
	if !strings.Contains(result.Response, "《歌曲1》") {
		t.Errorf("response missing song list: %q", result.Response)
	}
	if len(catalog.calls) != 1 || !strings.HasPrefix(catalog.calls[0], "search(周杰伦 晴天") {
		t.Errorf("catalog calls = %v", catalog.calls)
	}
}

func TestAgentSearchWithoutQuerySkipsCatalog(t *testing.T) {
	provider := &scriptedProvider{replies: []string{
		intentJSON("search", `{}`),
	}}
	catalog := &stubCatalog{searchSongs: songSet(8)}

	result := newTestAgent(provider, catalog).Run(context.Background(), Request{Input: "帮我找歌"})

	if !result.Success {
		t.Fatalf("run failed: %+v", result.Errors)
	}
	if len(result.Errors) != 0 {
		t.Errorf("empty query is not an error: %+v", result.Errors)
	}
	if len(result.SearchResults) != 0 || len(result.Recommendations) != 0 {
		t.Errorf("expected empty results, got %d search / %d recs",
			len(result.SearchResults), len(result.Recommendations))
	}
	// No catalog call and no explanation LLM call, only the fixed message.
	if len(catalog.calls) != 0 {
		t.Errorf("catalog calls = %v, want none", catalog.calls)
	}
	if provider.calls != 1 {
		t.Errorf("provider calls = %d, want classifier only", provider.calls)
	}
	if result.Response != noResultsResponse {
		t.Errorf("response = %q", result.Response)
	}
}

func TestAgentMoodRecommendationFlow(t *testing.T) {
	provider := &scriptedProvider{replies: []string{
		intentJSON("recommend_by_mood", `{"mood": "放松"}`),
		"根据你想要放松的心情，为你挑选了这些歌曲。",
	}}
	catalog := &stubCatalog{recSongs: songSet(5)}

	result := newTestAgent(provider, catalog).Run(context.Background(), Request{Input: "心情有点累，想听点放松的"})

	if !result.Success {
		t.Fatalf("run failed: %+v", result.Errors)
	}
	if len(result.Recommendations) != 5 {
		t.Fatalf("recommendations = %d, want 5", len(result.Recommendations))
	}
	for _, rec := range result.Recommendations {
		if !strings.Contains(rec.Reason, "放松") {
			t.Errorf("reason %q missing mood", rec.Reason)
		}
		if rec.SimilarityScore != 0.9 {
			t.Errorf("score = %v, want 0.9", rec.SimilarityScore)
		}
	}
	// Mood recommendations go through the seed-genre path.
	if len(catalog.calls) != 1 || !strings.Contains(catalog.calls[0], "chill") {
		t.Errorf("catalog calls = %v, want one genre-seeded recommend", catalog.calls)
	}
}

func TestAgentPlaylistFlow(t *testing.T) {
	provider := &scriptedProvider{replies: []string{
		intentJSON("create_playlist_by_activity", `{"activity": "运动"}`),
		"为你的运动时光准备了充满能量的歌单。",
	}}
	catalog := &stubCatalog{
		topTracks:  songSet(20),
		topArtists: []Artist{{Name: "歌手A", Genres: []string{"pop", "rock"}}, {Name: "歌手B", Genres: []string{"pop"}}},
		recSongs:   songSet(30),
		playlist:   &PlaylistInfo{ID: "pl1", Name: "适合运动的歌单", URL: "https://open.spotify.com/playlist/pl1", TrackCount: 30},
	}

	result := newTestAgent(provider, catalog).Run(context.Background(), Request{Input: "给我创建一个运动歌单"})

	if !result.Success {
		t.Fatalf("run failed: %+v", result.Errors)
	}
	if result.Playlist == nil || result.Playlist.ID != "pl1" {
		t.Fatalf("playlist = %+v", result.Playlist)
	}
	if !strings.Contains(result.Response, "已为你创建 Spotify 播放列表") {
		t.Errorf("response missing playlist footer: %q", result.Response)
	}

	// Full path: preference analysis, candidate pool, playlist persistence.
	wantOrder := []string{"topTracks", "topArtists", "recommend", "createPlaylist"}
	if len(catalog.calls) != len(wantOrder) {
		t.Fatalf("catalog calls = %v", catalog.calls)
	}
	for i, prefix := range wantOrder {
		if !strings.HasPrefix(catalog.calls[i], prefix) {
			t.Errorf("call %d = %q, want prefix %q", i, catalog.calls[i], prefix)
		}
	}
	// The activity override replaces profile genres for 运动.
	if !strings.Contains(catalog.calls[2], "[electronic rock]") {
		t.Errorf("candidate pool call = %q, want electronic/rock seeds", catalog.calls[2])
	}
	if !strings.Contains(catalog.calls[3], "适合运动的歌单") {
		t.Errorf("playlist call = %q, want activity-derived name", catalog.calls[3])
	}
}

func TestAgentClassifierFailsOpenToChat(t *testing.T) {
	boom := errors.New("llm unavailable")
	provider := &scriptedProvider{
		// Intent classification fails on the first attempt and its retry,
		// then the chat node answers.
		errs:    []error{boom, boom, nil},
		replies: []string{"", "", "我们聊聊音乐吧！"},
	}
	catalog := &stubCatalog{}

	result := newTestAgent(provider, catalog).Run(context.Background(), Request{Input: "随便说点什么"})

	if !result.Success {
		t.Fatalf("run failed: %+v", result.Errors)
	}
	if result.IntentType != "general_chat" {
		t.Errorf("intent = %q, want general_chat fallback", result.IntentType)
	}
	if result.Response != "我们聊聊音乐吧！" {
		t.Errorf("response = %q", result.Response)
	}
	if len(result.Errors) != 1 || result.Errors[0].Node != "analyze_intent" {
		t.Errorf("error log = %+v, want one analyze_intent entry", result.Errors)
	}
	if len(catalog.calls) != 0 {
		t.Errorf("catalog should not be touched: %v", catalog.calls)
	}
}

func TestAgentMalformedIntentJSONFallsOpen(t *testing.T) {
	provider := &scriptedProvider{replies: []string{
		"好的，我来帮你分析一下。", // not JSON, twice (retry), then chat
		"好的，我来帮你分析一下。",
		"你喜欢什么风格的音乐？",
	}}

	result := newTestAgent(provider, &stubCatalog{}).Run(context.Background(), Request{Input: "推荐点歌"})

	if !result.Success {
		t.Fatalf("run failed: %+v", result.Errors)
	}
	if result.IntentType != "general_chat" {
		t.Errorf("intent = %q, want general_chat", result.IntentType)
	}
	if result.Response != "你喜欢什么风格的音乐？" {
		t.Errorf("response = %q", result.Response)
	}
}

func TestAgentDegradedCatalogStillResponds(t *testing.T) {
	provider := &scriptedProvider{replies: []string{
		intentJSON("recommend_by_mood", `{"mood": "开心"}`),
	}}
	catalog := &stubCatalog{err: errors.New("catalog down")}

	result := newTestAgent(provider, catalog).Run(context.Background(), Request{Input: "来点开心的歌"})

	if !result.Success {
		t.Fatal("degraded run must still succeed")
	}
	if result.Response != noResultsResponse {
		t.Errorf("response = %q, want no-results apology", result.Response)
	}
	if len(result.Errors) != 1 || result.Errors[0].Node != "generate_recommendations" {
		t.Errorf("error log = %+v", result.Errors)
	}
	// The explanation short-circuit must not consume an LLM call.
	if provider.calls != 1 {
		t.Errorf("LLM calls = %d, want 1 (classification only)", provider.calls)
	}
}

func TestAgentPlaylistWithoutCandidatesSkipsCatalogWrite(t *testing.T) {
	provider := &scriptedProvider{replies: []string{
		intentJSON("create_playlist", `{}`),
	}}
	catalog := &stubCatalog{
		topTracks:  songSet(3),
		topArtists: []Artist{{Name: "歌手A", Genres: []string{"pop"}}},
		recSongs:   nil, // candidate pool comes back empty
	}

	result := newTestAgent(provider, catalog).Run(context.Background(), Request{Input: "建个歌单"})

	if !result.Success {
		t.Fatalf("run failed: %+v", result.Errors)
	}
	if result.Playlist != nil {
		t.Errorf("playlist = %+v, want nil", result.Playlist)
	}
	for _, call := range catalog.calls {
		if strings.HasPrefix(call, "createPlaylist") {
			t.Errorf("createPlaylist must not run without candidates: %v", catalog.calls)
		}
	}
	var found bool
	for _, e := range result.Errors {
		if e.Node == "create_playlist" && e.Error == "没有推荐结果" {
			found = true
		}
	}
	if !found {
		t.Errorf("error log = %+v, want create_playlist entry", result.Errors)
	}
}

func TestAgentStepCountPerPath(t *testing.T) {
	tests := []struct {
		name      string
		intent    string
		params    string
		wantSteps int
	}{
		{"chat", "general_chat", `{}`, 2},
		{"search", "search", `{"query": "晴天"}`, 3},
		{"recommend", "recommend_by_genre", `{"genre": "rock"}`, 3},
		{"playlist", "create_playlist_by_mood", `{"mood": "开心"}`, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &scriptedProvider{replies: []string{
				intentJSON(tt.intent, tt.params),
				"好的。",
				"好的。",
			}}
			catalog := &stubCatalog{
				searchSongs: songSet(6),
				recSongs:    songSet(6),
				topTracks:   songSet(6),
				topArtists:  []Artist{{Name: "歌手A", Genres: []string{"pop"}}},
				playlist:    &PlaylistInfo{ID: "pl1", Name: "歌单", URL: "u", TrackCount: 6},
			}

			state := &MusicState{Input: "测试", IntentParams: map[string]any{}}
			flow := BuildMusicFlow(provider, catalog, prompt.NewLoader(""))
			if err := flow.Execute(context.Background(), state); err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if state.StepCount != tt.wantSteps {
				t.Errorf("step count = %d, want %d", state.StepCount, tt.wantSteps)
			}
		})
	}
}

func TestAgentStreamsNarrative(t *testing.T) {
	provider := &scriptedProvider{replies: []string{
		intentJSON("general_chat", `{}`),
		"今天想听什么？",
	}}

	var chunks []string
	result := newTestAgent(provider, &stubCatalog{}).Run(context.Background(), Request{
		Input:         "你好",
		OnStreamChunk: func(chunk string) { chunks = append(chunks, chunk) },
	})

	if !result.Success {
		t.Fatalf("run failed: %+v", result.Errors)
	}
	if strings.Join(chunks, "") != "今天想听什么？" {
		t.Errorf("streamed chunks = %v", chunks)
	}
}

func TestAgentCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	provider := &scriptedProvider{}
	result := newTestAgent(provider, &stubCatalog{}).Run(ctx, Request{Input: "你好"})

	if result.Success {
		t.Fatal("cancelled run must fail")
	}
	if result.Response != structuralFaultResponse {
		t.Errorf("response = %q", result.Response)
	}
}

func TestTopByFrequency(t *testing.T) {
	items := []string{"pop", "rock", "pop", "jazz", "rock", "pop", "indie"}
	got := topByFrequency(items, 3)
	want := []string{"pop", "rock", "jazz"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("topByFrequency = %v, want %v", got, want)
		}
	}

	// Equal counts keep first-appearance order.
	tie := topByFrequency([]string{"b", "a", "b", "a"}, 2)
	if tie[0] != "b" || tie[1] != "a" {
		t.Errorf("tie break = %v, want [b a]", tie)
	}
}

func TestPlaylistTitle(t *testing.T) {
	name, _ := playlistTitle(map[string]any{"activity": "运动"})
	if name != "适合运动的歌单" {
		t.Errorf("activity name = %q", name)
	}
	name, _ = playlistTitle(map[string]any{"mood": "开心"})
	if name != "开心心情歌单" {
		t.Errorf("mood name = %q", name)
	}
	name, _ = playlistTitle(map[string]any{})
	if name != "AI 推荐歌单" {
		t.Errorf("default name = %q", name)
	}
}

func TestDedupeByArtist(t *testing.T) {
	songs := []Song{
		{Title: "a", Artist: "X"},
		{Title: "b", Artist: "x"}, // same artist, different case
		{Title: "c", Artist: "Y"},
		{Title: "d", Artist: ""},
		{Title: "e", Artist: ""},
	}
	got := dedupeByArtist(songs, 10)
	if len(got) != 4 {
		t.Fatalf("got %d songs, want 4 (case-insensitive artist dedup, empty artists kept)", len(got))
	}
	if got[0].Title != "a" || got[1].Title != "c" {
		t.Errorf("unexpected order: %v", got)
	}
}

func TestNewRunStateSeedsPreferences(t *testing.T) {
	prefs := UserPreferences{
		FavoriteGenres:  []string{"jazz", "indie"},
		FavoriteArtists: []string{"周杰伦"},
	}
	state := newRunState(Request{Input: "来点音乐", UserPreferences: prefs})

	if len(state.UserPreferences.FavoriteGenres) != 2 || state.UserPreferences.FavoriteGenres[0] != "jazz" {
		t.Errorf("seeded genres = %v", state.UserPreferences.FavoriteGenres)
	}
	if len(state.UserPreferences.FavoriteArtists) != 1 {
		t.Errorf("seeded artists = %v", state.UserPreferences.FavoriteArtists)
	}
	if state.IntentParams == nil {
		t.Error("intent params must start as an empty map")
	}

	empty := newRunState(Request{Input: "hi"})
	if !empty.UserPreferences.IsEmpty() {
		t.Errorf("omitted preferences should stay empty, got %+v", empty.UserPreferences)
	}
}
