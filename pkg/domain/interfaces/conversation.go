package interfaces

import (
	"context"
	"time"

	"github.com/aide-lab/mnemo/pkg/domain/model"
	"github.com/aide-lab/mnemo/pkg/domain/types"
)

// ConversationRepository defines the interface for conversation persistence
type ConversationRepository interface {
	// Create persists a new conversation. ID and timestamps are assigned if
	// missing.
	Create(ctx context.Context, conv *model.Conversation) (*model.Conversation, error)

	// Get retrieves a conversation by ID. Returns a wrapped ErrNotFound when
	// it does not exist.
	Get(ctx context.Context, id types.ConversationID) (*model.Conversation, error)

	// ListByOwner retrieves conversations for an owner, newest activity first
	ListByOwner(ctx context.Context, ownerID types.UserID, limit int) ([]*model.Conversation, error)

	// ListActiveSince retrieves conversations with activity at or after the
	// given time, newest first. Used by the compaction sweep.
	ListActiveSince(ctx context.Context, since time.Time, limit int) ([]*model.Conversation, error)

	// Touch updates the conversation's activity timestamp
	Touch(ctx context.Context, id types.ConversationID, at time.Time) error
}
