package memory

import (
	"github.com/aide-lab/mnemo/pkg/domain/model"
	"github.com/aide-lab/mnemo/pkg/domain/types"
)

// AssembleTurns groups a time-ordered message sequence into user/assistant
// turn pairs. Interleavings that do not strictly alternate are tolerated: a
// user entry arriving while another user entry is pending flushes the pending
// one as a user-only turn, and an assistant entry with no pending user entry
// becomes an assistant-only turn.
func AssembleTurns(msgs []*model.Message) []model.Turn {
	turns := make([]model.Turn, 0, (len(msgs)+1)/2)

	var pending *model.Turn
	for _, msg := range msgs {
		switch msg.Role {
		case types.RoleUser:
			if pending != nil {
				turns = append(turns, *pending)
			}
			pending = &model.Turn{UserText: msg.Text}

		case types.RoleAssistant:
			if pending != nil {
				pending.AssistantText = msg.Text
				pending.AssistantID = msg.ID
				pending.ModelVariant = msg.ModelVariant
				turns = append(turns, *pending)
				pending = nil
			} else {
				turns = append(turns, model.Turn{
					AssistantText: msg.Text,
					AssistantID:   msg.ID,
					ModelVariant:  msg.ModelVariant,
				})
			}
		}
	}

	if pending != nil {
		turns = append(turns, *pending)
	}

	return turns
}

// turnTokens estimates the token cost of one turn
func turnTokens(t model.Turn) int {
	return EstimateTokens(t.UserText) + EstimateTokens(t.AssistantText)
}

// totalTurnTokens sums per-turn estimates across all turns
func totalTurnTokens(turns []model.Turn) int {
	total := 0
	for _, t := range turns {
		total += turnTokens(t)
	}
	return total
}
