package types

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// ConversationID identifies a single conversation
type ConversationID string

// NewConversationID generates a new UUID v4 ConversationID
func NewConversationID() ConversationID {
	return ConversationID(uuid.New().String())
}

func (id ConversationID) String() string {
	return string(id)
}

// Validate checks if the ConversationID is a valid UUID
func (id ConversationID) Validate() error {
	if id == "" {
		return goerr.New("conversation ID is empty")
	}
	if _, err := uuid.Parse(string(id)); err != nil {
		return goerr.Wrap(err, "invalid conversation ID", goerr.V("id", id))
	}
	return nil
}

// MessageID identifies a single message entry. IDs are UUID v7 so that
// lexicographic order matches creation order within a process.
type MessageID string

// NewMessageID generates a new UUID v7 MessageID
func NewMessageID() MessageID {
	return MessageID(uuid.Must(uuid.NewV7()).String())
}

func (id MessageID) String() string {
	return string(id)
}

// UserID identifies the owner of a conversation. The value is opaque to this
// service; it is assigned by the upstream identity layer.
type UserID string

func (id UserID) String() string {
	return string(id)
}

// Validate checks if the UserID is non-empty
func (id UserID) Validate() error {
	if id == "" {
		return goerr.New("user ID is empty")
	}
	return nil
}
