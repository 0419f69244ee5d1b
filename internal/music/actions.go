package music

import "github.com/melodia/melodia/internal/core"

// Routing actions of the music workflow graph. Every non-terminal node
// yields one of these; the flow wiring in BuildMusicFlow maps each to its
// successor node.
const (
	ActionSearch         core.Action = "search"
	ActionRecommend      core.Action = "recommend"
	ActionPreferences    core.Action = "preferences"
	ActionEnhanced       core.Action = "enhanced"
	ActionCreatePlaylist core.Action = "create_playlist"
	ActionExplain        core.Action = "explain"
	ActionChat           core.Action = "chat"
)
