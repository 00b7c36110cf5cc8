package memory

import (
	"errors"

	"github.com/aide-lab/mnemo/pkg/domain/interfaces"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("record not found")

// Memory is an in-memory Repository implementation for development and tests
type Memory struct {
	conversation *conversationRepository
	message      *messageRepository
	brief        *briefRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		conversation: newConversationRepository(),
		message:      newMessageRepository(),
		brief:        newBriefRepository(),
	}
}

func (m *Memory) Conversation() interfaces.ConversationRepository {
	return m.conversation
}

func (m *Memory) Message() interfaces.MessageRepository {
	return m.message
}

func (m *Memory) Brief() interfaces.BriefRepository {
	return m.brief
}

func (m *Memory) Close() error {
	return nil
}
