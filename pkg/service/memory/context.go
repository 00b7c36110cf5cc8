package memory

import (
	"context"
	"strings"

	"github.com/aide-lab/mnemo/pkg/domain/model"
	"github.com/aide-lab/mnemo/pkg/domain/types"
	"github.com/aide-lab/mnemo/pkg/utils/logging"
)

// Section labels used when composing the context block. Fixed English text
// keeps the block stable for the main model regardless of conversation
// language.
const (
	backgroundLabel  = "Conversation background:"
	recentTurnsLabel = "Recent turns:"
)

// BuildOptions overrides the process-wide knobs for a single BuildContext
// call. Zero values fall back to the service configuration.
type BuildOptions struct {
	// ExcludeIDs filters out messages the caller has just written so they
	// are not double-counted before becoming durably visible.
	ExcludeIDs []types.MessageID

	TailTurns          int
	SummaryCapTokens   int
	PromptBudgetTokens int
}

func (s *Service) effectiveKnobs(opts BuildOptions) (tailTurns, summaryCap, promptBudget int) {
	tailTurns = s.cfg.TailTurns
	if opts.TailTurns > 0 {
		tailTurns = opts.TailTurns
	}
	summaryCap = s.cfg.SummaryCapTokens
	if opts.SummaryCapTokens > 0 {
		summaryCap = opts.SummaryCapTokens
	}
	promptBudget = s.cfg.PromptBudgetTokens
	if opts.PromptBudgetTokens > 0 {
		promptBudget = opts.PromptBudgetTokens
	}
	return tailTurns, summaryCap, promptBudget
}

// BuildContext assembles the memory block for the next main model call. It
// loads the brief and the uncompacted turns, keeps the last tailTurns turns
// verbatim, and degrades toward the prompt budget by dropping the oldest
// tail turns first and shrinking the summary last.
//
// The only side effect is the brief read. A brief that fails to load
// degrades to empty memory rather than failing the request.
func (s *Service) BuildContext(ctx context.Context, convID types.ConversationID, opts BuildOptions) (*model.MemoryContext, error) {
	tailTurns, summaryCap, promptBudget := s.effectiveKnobs(opts)

	brief := s.loadBrief(ctx, convID)
	turns, err := s.loadTurns(ctx, convID, brief, opts.ExcludeIDs)
	if err != nil {
		return nil, err
	}

	rawTokens := totalTurnTokens(turns)

	summary, truncated := TruncateTokens(brief.Summary, summaryCap)

	tail := turns
	if len(tail) > tailTurns {
		tail = tail[len(tail)-tailTurns:]
	}

	dropped := 0
	prompt := composeBlock(summary, tail)
	for EstimateTokens(prompt) > promptBudget && len(tail) > 1 {
		tail = tail[1:]
		dropped++
		prompt = composeBlock(summary, tail)
	}

	// Last resort: shrink the summary into whatever headroom the remaining
	// tail leaves. No further reduction after this.
	if EstimateTokens(prompt) > promptBudget && summary != "" {
		tailTokens := EstimateTokens(composeBlock("", tail))
		headroom := promptBudget - tailTokens
		if headroom < 0 {
			headroom = 0
		}
		floor := summaryCap
		if headroom < floor {
			floor = headroom
		}
		var cut bool
		summary, cut = TruncateTokens(summary, floor)
		truncated = truncated || cut
		prompt = composeBlock(summary, tail)
	}

	mc := &model.MemoryContext{
		Prompt:           prompt,
		Summary:          summary,
		SummaryTruncated: truncated,
		Turns:            tail,
		DroppedTurns:     dropped,
		PromptTokens:     EstimateTokens(prompt),
		RawTokens:        rawTokens,
	}

	if dropped > 0 || truncated {
		logging.From(ctx).Debug("memory context degraded to fit prompt budget",
			"conversation_id", convID,
			"dropped_turns", dropped,
			"summary_truncated", truncated,
			"prompt_tokens", mc.PromptTokens,
			"prompt_budget", promptBudget,
		)
	}

	return mc, nil
}

// composeBlock renders the background and recent-turns sections as one text
// block. An empty summary omits the background section entirely.
func composeBlock(summary string, tail []model.Turn) string {
	if summary == "" && len(tail) == 0 {
		return ""
	}

	var sb strings.Builder
	if summary != "" {
		sb.WriteString(backgroundLabel)
		sb.WriteString("\n")
		sb.WriteString(summary)
		sb.WriteString("\n\n")
	}

	sb.WriteString(recentTurnsLabel)
	for _, t := range tail {
		sb.WriteString("\n")
		sb.WriteString(formatTurn(t))
	}

	return sb.String()
}

// formatTurn renders one turn as "User: ..." / "Assistant: ..." lines. The
// assistant line carries the model variant tag when one was recorded.
func formatTurn(t model.Turn) string {
	var sb strings.Builder
	if t.HasUser() {
		sb.WriteString("User: ")
		sb.WriteString(t.UserText)
	}
	if t.HasAssistant() {
		if t.HasUser() {
			sb.WriteString("\n")
		}
		if t.ModelVariant != "" {
			sb.WriteString("Assistant (")
			sb.WriteString(t.ModelVariant)
			sb.WriteString("): ")
		} else {
			sb.WriteString("Assistant: ")
		}
		sb.WriteString(t.AssistantText)
	}
	return sb.String()
}
