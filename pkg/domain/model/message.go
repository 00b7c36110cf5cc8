package model

import (
	"time"

	"github.com/aide-lab/mnemo/pkg/domain/types"
)

// Message is a single user or assistant entry in a conversation.
// ModelVariant records which model/mode produced an assistant reply; it is
// empty for user messages.
type Message struct {
	ID             types.MessageID
	ConversationID types.ConversationID
	Role           types.Role
	Text           string
	ModelVariant   string
	CreatedAt      time.Time
}
