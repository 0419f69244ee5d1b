package music

import (
	"context"
	"fmt"
	"log"

	"github.com/melodia/melodia/internal/core"
)

// CreatePlaylistNode persists the accumulated recommendations as a playlist
// on the user's catalog account. With no recommendations there is nothing to
// persist; the node records the condition without touching the catalog.
type CreatePlaylistNode struct {
	catalog Catalog
}

func NewCreatePlaylistNode(catalog Catalog) *CreatePlaylistNode {
	return &CreatePlaylistNode{catalog: catalog}
}

type PlaylistPrep struct {
	Recs   []Recommendation
	Params map[string]any
}

type PlaylistResult struct {
	Playlist *PlaylistInfo
	Err      string
}

func (n *CreatePlaylistNode) Prep(state *MusicState) PlaylistPrep {
	return PlaylistPrep{Recs: state.Recommendations, Params: state.IntentParams}
}

func (n *CreatePlaylistNode) Exec(ctx context.Context, prep PlaylistPrep) (PlaylistResult, error) {
	if len(prep.Recs) == 0 {
		return PlaylistResult{Err: "没有推荐结果"}, nil
	}

	songs := make([]Song, 0, len(prep.Recs))
	for _, rec := range prep.Recs {
		songs = append(songs, rec.Song)
	}

	name, description := playlistTitle(prep.Params)

	playlist, err := n.catalog.CreatePlaylist(ctx, name, songs, description, false)
	if err != nil {
		return PlaylistResult{}, fmt.Errorf("create playlist %q: %w", name, err)
	}
	if playlist == nil {
		return PlaylistResult{Err: "创建播放列表失败"}, nil
	}

	log.Printf("[Music] playlist created: %s (%d tracks)", playlist.URL, playlist.TrackCount)
	return PlaylistResult{Playlist: playlist}, nil
}

func (n *CreatePlaylistNode) ExecFallback(err error) PlaylistResult {
	return PlaylistResult{Err: err.Error()}
}

func (n *CreatePlaylistNode) Post(state *MusicState, prep PlaylistPrep, result PlaylistResult) core.Action {
	state.Playlist = result.Playlist
	if result.Err != "" {
		state.logError("create_playlist", result.Err)
	}
	state.bumpStep()
	return ActionExplain
}

// playlistTitle derives the playlist name and description from the request
// parameters, activity before mood.
func playlistTitle(params map[string]any) (name, description string) {
	if activity := paramString(params, "activity", ""); activity != "" {
		return "适合" + activity + "的歌单", "AI 为你推荐的适合" + activity + "时听的音乐"
	}
	if mood := paramString(params, "mood", ""); mood != "" {
		return mood + "心情歌单", "AI 为你推荐的适合" + mood + "心情的音乐"
	}
	return "AI 推荐歌单", "AI 为你推荐的个性化音乐歌单"
}
