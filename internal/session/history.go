package session

import "github.com/melodia/melodia/internal/music"

// ToChatTurns converts session turns into the workflow's chat history
// format. It trims the oldest turns until the total character count is
// within budget; budget == 0 means no limit. At least the most recent turn
// is always included, even when it alone exceeds the budget.
func ToChatTurns(turns []Turn, budget int) []music.ChatTurn {
	if len(turns) == 0 {
		return nil
	}

	start := 0

	if budget > 0 {
		// Walk newest-to-oldest, accumulating char count.
		total := 0
		for i := len(turns) - 1; i >= 0; i-- {
			cost := len([]rune(turns[i].UserMsg)) + len([]rune(turns[i].Assistant))
			if total+cost > budget {
				start = i + 1
				break
			}
			total += cost
		}
		if start >= len(turns) {
			start = len(turns) - 1
		}
	}

	var history []music.ChatTurn
	for _, t := range turns[start:] {
		history = append(history,
			music.ChatTurn{Role: "user", Content: t.UserMsg},
			music.ChatTurn{Role: "assistant", Content: t.Assistant},
		)
	}
	return history
}
