package interfaces

import (
	"context"
	"time"

	"github.com/aide-lab/mnemo/pkg/domain/model"
	"github.com/aide-lab/mnemo/pkg/domain/types"
)

// MessageRepository defines the interface for conversation message persistence
type MessageRepository interface {
	// Put saves a message under a conversation (upsert by message ID)
	Put(ctx context.Context, conversationID types.ConversationID, msg *model.Message) error

	// Get retrieves a single message by ID. Returns a wrapped ErrNotFound
	// when it does not exist.
	Get(ctx context.Context, conversationID types.ConversationID, msgID types.MessageID) (*model.Message, error)

	// ListAfter retrieves all messages created strictly after the given time,
	// ascending by creation time. A zero time means "from the beginning".
	ListAfter(ctx context.Context, conversationID types.ConversationID, after time.Time) ([]*model.Message, error)

	// List retrieves messages with pagination, newest first
	List(ctx context.Context, conversationID types.ConversationID, limit int, cursor string) ([]*model.Message, string, error)
}
