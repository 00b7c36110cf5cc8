package usecase

import "errors"

// Sentinel errors for use case layer
var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrAccessDenied         = errors.New("access denied to conversation")
	ErrEmptyMessage         = errors.New("message text is empty")
)

// Context keys for error values
const (
	ConversationIDKey = "conversation_id"
	UserIDKey         = "user_id"
)
