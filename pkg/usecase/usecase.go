package usecase

import (
	"github.com/m-mizutani/gollem"

	"github.com/aide-lab/mnemo/pkg/domain/interfaces"
	memsvc "github.com/aide-lab/mnemo/pkg/service/memory"
)

type UseCases struct {
	repo    interfaces.Repository
	persona string

	Chat         *ChatUseCase
	Conversation *ConversationUseCase
}

type Option func(*UseCases)

// WithPersona overrides the assistant persona text used in the system prompt
func WithPersona(persona string) Option {
	return func(uc *UseCases) {
		uc.persona = persona
	}
}

func New(repo interfaces.Repository, mem *memsvc.Service, llmClient gollem.LLMClient, modelVariant string, opts ...Option) *UseCases {
	uc := &UseCases{
		repo: repo,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Conversation = NewConversationUseCase(repo)
	uc.Chat = NewChatUseCase(repo, mem, llmClient, modelVariant, uc.persona)

	return uc
}
