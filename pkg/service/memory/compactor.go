package memory

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/aide-lab/mnemo/pkg/domain/model"
	"github.com/aide-lab/mnemo/pkg/domain/types"
	"github.com/aide-lab/mnemo/pkg/utils/logging"
)

//go:embed prompt/summarize.md
var summarizePromptTmpl string

var summarizePrompt = template.Must(template.New("summarize").Parse(summarizePromptTmpl))

// noSummarySentinel marks an absent prior summary in the summarizer prompt
const noSummarySentinel = "(none)"

// CompactionResult reports the outcome of one compaction attempt
type CompactionResult struct {
	// Compacted is true only when older turns were folded and the new brief
	// was durably saved.
	Compacted bool

	// Reason describes why the attempt did or did not compact.
	Reason types.CompactionReason

	// Brief is the newly saved memory state when Compacted is true, nil
	// otherwise.
	Brief *model.Brief
}

// MaybeCompact folds turns older than the tail window into the rolling
// summary when the uncompacted backlog exceeds the threshold. It runs after
// a turn's assistant reply has been saved, never on the request's hot path.
//
// Every failure is a no-op with a reason code; nothing is partially applied.
// The one exception is a failed brief save, which propagates so the caller
// can log it loudly: the summarization work is lost and will be redone.
//
// turns may be nil, in which case they are derived from the brief's cursor.
func (s *Service) MaybeCompact(ctx context.Context, convID types.ConversationID, ownerID types.UserID, brief *model.Brief, turns []model.Turn) (*CompactionResult, error) {
	if !s.inflight.TryAcquire(convID) {
		return &CompactionResult{Reason: types.ReasonInFlight}, nil
	}
	defer s.inflight.Release(convID)

	if brief == nil {
		brief = s.loadBrief(ctx, convID)
	}
	if turns == nil {
		loaded, err := s.loadTurns(ctx, convID, brief, nil)
		if err != nil {
			logging.From(ctx).Warn("failed to load turns for compaction",
				"conversation_id", convID,
				"error", err,
			)
			return &CompactionResult{Reason: types.ReasonLLMError}, nil
		}
		turns = loaded
	}

	chunkTokens := totalTurnTokens(turns)
	totalTokens := chunkTokens + EstimateTokens(brief.Summary)
	if totalTokens <= s.cfg.CompactThresholdTokens || len(turns) <= s.cfg.TailTurns {
		return &CompactionResult{Reason: types.ReasonBelowThreshold}, nil
	}

	older := turns[:len(turns)-s.cfg.TailTurns]
	if len(older) == 0 {
		return &CompactionResult{Reason: types.ReasonNoOlderTurns}, nil
	}

	summary, err := s.summarize(ctx, brief.Summary, older)
	if err != nil {
		logging.From(ctx).Warn("summarization call failed, skipping compaction",
			"conversation_id", convID,
			"error", err,
		)
		return &CompactionResult{Reason: types.ReasonLLMError}, nil
	}
	if strings.TrimSpace(summary) == "" {
		return &CompactionResult{Reason: types.ReasonEmptySummary}, nil
	}

	summary, _ = TruncateTokens(summary, s.cfg.SummaryCapTokens)

	// The cursor advances to the assistant entry of the last retired turn.
	// A turn without one keeps the prior cursor, which may re-summarize the
	// same turns on the next pass; that is preferred over moving the cursor
	// past entries the summary does not cover.
	cursor := older[len(older)-1].AssistantID
	if cursor == "" {
		cursor = brief.Cursor
	}
	if cursor == "" {
		return &CompactionResult{Reason: types.ReasonMissingCursor}, nil
	}

	updated := &model.Brief{
		Summary:   summary,
		Cursor:    cursor,
		UpdatedAt: time.Now(),
	}
	if err := s.repo.Brief().Put(ctx, convID, ownerID, updated, EstimateTokens(summary)); err != nil {
		return nil, goerr.Wrap(err, "failed to save compacted brief",
			goerr.V("conversation_id", convID),
		)
	}

	logging.From(ctx).Info("compacted conversation memory",
		"conversation_id", convID,
		"retired_turns", len(older),
		"summary_tokens", EstimateTokens(summary),
		"cursor", cursor,
	)

	return &CompactionResult{
		Compacted: true,
		Reason:    types.ReasonCompacted,
		Brief:     updated,
	}, nil
}

// summarize makes the single-shot summarizer call for the retired turns
func (s *Service) summarize(ctx context.Context, prior string, older []model.Turn) (string, error) {
	if s.llm == nil {
		return "", goerr.New("no LLM client configured for summarization")
	}

	if prior == "" {
		prior = noSummarySentinel
	}

	var buf bytes.Buffer
	if err := summarizePrompt.Execute(&buf, map[string]string{
		"Summary": prior,
		"Turns":   formatOlderTurns(older),
	}); err != nil {
		return "", goerr.Wrap(err, "failed to render summarize prompt")
	}

	session, err := s.llm.NewSession(ctx)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create summarizer session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(buf.String()))
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate summary")
	}
	if len(resp.Texts) == 0 {
		return "", nil
	}

	return strings.TrimSpace(strings.Join(resp.Texts, "\n")), nil
}

// formatOlderTurns renders the retired turns as numbered blocks for the
// summarizer prompt
func formatOlderTurns(older []model.Turn) string {
	var sb strings.Builder
	for i, t := range older {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "Turn %d:\n", i+1)
		sb.WriteString(formatTurn(t))
	}
	return sb.String()
}
