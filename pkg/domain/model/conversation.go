package model

import (
	"time"

	"github.com/aide-lab/mnemo/pkg/domain/types"
)

// Conversation represents one chat session owned by a single user. History
// grows without bound; the rolling brief keeps the model-visible context
// bounded.
type Conversation struct {
	ID        types.ConversationID
	OwnerID   types.UserID
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
