package interfaces

import (
	"context"

	"github.com/aide-lab/mnemo/pkg/domain/model"
	"github.com/aide-lab/mnemo/pkg/domain/types"
)

// BriefRepository defines the interface for rolling memory state persistence.
// One brief exists per conversation; only the compactor writes it.
type BriefRepository interface {
	// Get retrieves the brief for a conversation. Returns (nil, nil) when no
	// brief has been saved yet.
	Get(ctx context.Context, conversationID types.ConversationID) (*model.Brief, error)

	// Put upserts the brief. summaryTokens is the estimated token count of
	// the summary, persisted alongside the record for observability.
	Put(ctx context.Context, conversationID types.ConversationID, ownerID types.UserID, brief *model.Brief, summaryTokens int) error

	// Reset restores the brief to its empty state. Used when a conversation
	// identity is deliberately recycled.
	Reset(ctx context.Context, conversationID types.ConversationID) error
}
