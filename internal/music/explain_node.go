package music

import (
	"context"
	"fmt"
	"strings"

	"github.com/melodia/melodia/internal/core"
	"github.com/melodia/melodia/internal/llm"
	"github.com/melodia/melodia/internal/prompt"
)

const (
	noResultsExplanation = "抱歉，没有找到合适的音乐推荐。"
	noResultsResponse    = "抱歉，没有找到符合你要求的音乐。你可以换个方式描述你的需求，或者告诉我你喜欢的歌手和风格？"
	fallbackExplanation  = "为你找到了以下歌曲："
)

// GenerateExplanationNode turns the recommendation list into the final
// user-facing narrative. With nothing to explain it short-circuits to an
// apology without calling the LLM; an LLM failure degrades to a plain
// numbered list.
type GenerateExplanationNode struct {
	provider llm.Provider
	prompts  *prompt.Loader
}

func NewGenerateExplanationNode(provider llm.Provider, prompts *prompt.Loader) *GenerateExplanationNode {
	return &GenerateExplanationNode{provider: provider, prompts: prompts}
}

type ExplainPrep struct {
	Query    string
	Recs     []Recommendation
	Playlist *PlaylistInfo
	OnChunk  llm.StreamCallback
}

type ExplainResult struct {
	Explanation string
	Err         string
}

func (n *GenerateExplanationNode) Prep(state *MusicState) ExplainPrep {
	return ExplainPrep{
		Query:    state.Input,
		Recs:     state.Recommendations,
		Playlist: state.Playlist,
		OnChunk:  state.OnStreamChunk,
	}
}

func (n *GenerateExplanationNode) Exec(ctx context.Context, prep ExplainPrep) (ExplainResult, error) {
	if len(prep.Recs) == 0 {
		return ExplainResult{Explanation: noResultsExplanation}, nil
	}

	text := n.prompts.Render("explainer.md", map[string]string{
		"user_query":        prep.Query,
		"recommended_songs": renderSongList(prep.Recs, true),
	})
	messages := []llm.Message{{Role: llm.RoleUser, Content: text}}

	var resp llm.Message
	var err error
	if prep.OnChunk != nil {
		resp, err = n.provider.CallLLMStream(ctx, messages, prep.OnChunk)
	} else {
		resp, err = n.provider.CallLLM(ctx, messages)
	}
	if err != nil {
		return ExplainResult{}, fmt.Errorf("explanation generation: %w", err)
	}
	return ExplainResult{Explanation: resp.Content}, nil
}

func (n *GenerateExplanationNode) ExecFallback(err error) ExplainResult {
	return ExplainResult{Err: err.Error()}
}

func (n *GenerateExplanationNode) Post(state *MusicState, prep ExplainPrep, result ExplainResult) core.Action {
	switch {
	case len(prep.Recs) == 0:
		state.Explanation = noResultsExplanation
		state.FinalResponse = noResultsResponse

	case result.Err != "":
		state.Explanation = fallbackExplanation
		state.FinalResponse = fallbackExplanation + "\n\n" + renderSongList(prep.Recs, false)
		state.logError("generate_explanation", result.Err)

	default:
		state.Explanation = result.Explanation
		state.FinalResponse = fmt.Sprintf("%s\n\n推荐歌曲：\n%s%s",
			result.Explanation, renderSongList(prep.Recs, true), playlistFooter(prep.Playlist))
	}
	state.bumpStep()
	return core.ActionEnd
}

// renderSongList formats recommendations as a numbered list. withDetail adds
// the genre and the per-song reason lines used in the full narrative; the
// degraded form carries titles and artists only.
func renderSongList(recs []Recommendation, withDetail bool) string {
	var b strings.Builder
	for i, rec := range recs {
		title := rec.Song.Title
		if title == "" {
			title = "未知"
		}
		artist := rec.Song.Artist
		if artist == "" {
			artist = "未知"
		}
		if withDetail {
			genre := rec.Song.Genre
			if genre == "" {
				genre = "未知"
			}
			fmt.Fprintf(&b, "%d. 《%s》 - %s (%s)\n", i+1, title, artist, genre)
			if rec.Reason != "" {
				fmt.Fprintf(&b, "   推荐理由: %s\n", rec.Reason)
			}
		} else {
			fmt.Fprintf(&b, "%d. 《%s》 - %s\n", i+1, title, artist)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func playlistFooter(playlist *PlaylistInfo) string {
	if playlist == nil {
		return ""
	}
	return fmt.Sprintf("\n\n🎵 已为你创建 Spotify 播放列表：\n%s\n播放列表名称：%s", playlist.URL, playlist.Name)
}
