package memory

import (
	"context"
	"time"

	"github.com/m-mizutani/gollem"

	"github.com/aide-lab/mnemo/pkg/domain/interfaces"
	"github.com/aide-lab/mnemo/pkg/domain/model"
	"github.com/aide-lab/mnemo/pkg/domain/types"
	"github.com/aide-lab/mnemo/pkg/utils/logging"
)

// Default knob values. All are overridable process-wide via Config and
// per call via BuildOptions.
const (
	DefaultTailTurns              = 3
	DefaultSummaryCapTokens       = 500
	DefaultPromptBudgetTokens     = 3000
	DefaultCompactThresholdTokens = 6000
)

// Config holds the process-wide memory engine knobs
type Config struct {
	// TailTurns is the number of most recent turns always kept verbatim in
	// the prompt.
	TailTurns int

	// SummaryCapTokens is the normal upper bound on the rolling summary.
	SummaryCapTokens int

	// PromptBudgetTokens is the upper bound on the composed context block.
	PromptBudgetTokens int

	// CompactThresholdTokens is the uncompacted backlog size that triggers
	// folding older turns into the summary.
	CompactThresholdTokens int
}

// FillDefaults replaces non-positive knobs with the default values
func (c *Config) FillDefaults() {
	if c.TailTurns <= 0 {
		c.TailTurns = DefaultTailTurns
	}
	if c.SummaryCapTokens <= 0 {
		c.SummaryCapTokens = DefaultSummaryCapTokens
	}
	if c.PromptBudgetTokens <= 0 {
		c.PromptBudgetTokens = DefaultPromptBudgetTokens
	}
	if c.CompactThresholdTokens <= 0 {
		c.CompactThresholdTokens = DefaultCompactThresholdTokens
	}
}

// Service is the conversation memory engine. It builds the per-request
// memory context and folds older turns into a rolling summary.
type Service struct {
	repo     interfaces.Repository
	llm      gollem.LLMClient
	cfg      Config
	inflight *inFlightRegistry
}

// New creates a memory engine backed by the given repository. llmClient is
// used only for summarization; it may be nil when compaction is never
// invoked (e.g. read-only tooling).
func New(repo interfaces.Repository, llmClient gollem.LLMClient, cfg Config) *Service {
	cfg.FillDefaults()
	return &Service{
		repo:     repo,
		llm:      llmClient,
		cfg:      cfg,
		inflight: newInFlightRegistry(),
	}
}

// Config returns the effective process-wide knobs
func (s *Service) Config() Config {
	return s.cfg
}

// loadBrief retrieves the rolling memory state for a conversation. Any
// failure degrades to the empty brief: losing memory state must never block
// a conversation.
func (s *Service) loadBrief(ctx context.Context, convID types.ConversationID) *model.Brief {
	brief, err := s.repo.Brief().Get(ctx, convID)
	if err != nil {
		logging.From(ctx).Warn("failed to load brief, using empty memory state",
			"conversation_id", convID,
			"error", err,
		)
		return model.EmptyBrief()
	}
	if brief == nil {
		return model.EmptyBrief()
	}
	return brief
}

// loadTurns assembles the turns strictly newer than the brief's cursor.
// excludeIDs filters out entries the caller has written but does not want
// counted yet. A cursor that cannot be resolved falls back to the full
// history; raw messages are always the source of truth.
func (s *Service) loadTurns(ctx context.Context, convID types.ConversationID, brief *model.Brief, excludeIDs []types.MessageID) ([]model.Turn, error) {
	var after time.Time
	if brief.Cursor != "" {
		anchor, err := s.repo.Message().Get(ctx, convID, brief.Cursor)
		if err != nil {
			logging.From(ctx).Warn("failed to resolve brief cursor, reading full history",
				"conversation_id", convID,
				"cursor", brief.Cursor,
				"error", err,
			)
		} else {
			after = anchor.CreatedAt
		}
	}

	msgs, err := s.repo.Message().ListAfter(ctx, convID, after)
	if err != nil {
		return nil, err
	}

	if len(excludeIDs) > 0 {
		excluded := make(map[types.MessageID]struct{}, len(excludeIDs))
		for _, id := range excludeIDs {
			excluded[id] = struct{}{}
		}
		kept := msgs[:0]
		for _, msg := range msgs {
			if _, ok := excluded[msg.ID]; !ok {
				kept = append(kept, msg)
			}
		}
		msgs = kept
	}

	return AssembleTurns(msgs), nil
}
