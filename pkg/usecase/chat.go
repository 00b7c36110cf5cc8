package usecase

import (
	"bytes"
	"context"
	_ "embed"
	"strings"
	"text/template"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/aide-lab/mnemo/pkg/domain/interfaces"
	"github.com/aide-lab/mnemo/pkg/domain/model"
	"github.com/aide-lab/mnemo/pkg/domain/types"
	memsvc "github.com/aide-lab/mnemo/pkg/service/memory"
	"github.com/aide-lab/mnemo/pkg/utils/async"
	"github.com/aide-lab/mnemo/pkg/utils/logging"
)

//go:embed prompt/chat_system.md
var chatSystemPromptTmpl string

var chatSystemPrompt = template.Must(template.New("chat_system").Parse(chatSystemPromptTmpl))

const defaultPersona = "You are a helpful, plain-spoken assistant."

// ChatUseCase handles one conversation turn: persist the user message, call
// the main model with the assembled memory context, persist the reply, and
// trigger compaction off the hot path.
type ChatUseCase struct {
	repo         interfaces.Repository
	memory       *memsvc.Service
	llmClient    gollem.LLMClient
	modelVariant string
	persona      string
}

func NewChatUseCase(repo interfaces.Repository, mem *memsvc.Service, llmClient gollem.LLMClient, modelVariant, persona string) *ChatUseCase {
	if persona == "" {
		persona = defaultPersona
	}
	return &ChatUseCase{
		repo:         repo,
		memory:       mem,
		llmClient:    llmClient,
		modelVariant: modelVariant,
		persona:      persona,
	}
}

// Post runs one turn and returns the persisted assistant reply
func (uc *ChatUseCase) Post(ctx context.Context, ownerID types.UserID, convID types.ConversationID, text string) (*model.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, goerr.Wrap(ErrEmptyMessage, "empty message", goerr.V(ConversationIDKey, convID))
	}

	conv, err := uc.repo.Conversation().Get(ctx, convID)
	if err != nil {
		return nil, goerr.Wrap(ErrConversationNotFound, "conversation not found", goerr.V(ConversationIDKey, convID))
	}
	if conv.OwnerID != ownerID {
		return nil, goerr.Wrap(ErrAccessDenied, "conversation belongs to another user",
			goerr.V(ConversationIDKey, convID),
			goerr.V(UserIDKey, ownerID),
		)
	}

	now := time.Now()
	userMsg := &model.Message{
		ID:             types.NewMessageID(),
		ConversationID: convID,
		Role:           types.RoleUser,
		Text:           text,
		CreatedAt:      now,
	}
	if err := uc.repo.Message().Put(ctx, convID, userMsg); err != nil {
		return nil, goerr.Wrap(err, "failed to save user message", goerr.V(ConversationIDKey, convID))
	}

	// The just-written message is excluded so it is not double-counted; it
	// goes to the model as the turn input, not as history.
	mc, err := uc.memory.BuildContext(ctx, convID, memsvc.BuildOptions{
		ExcludeIDs: []types.MessageID{userMsg.ID},
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build memory context", goerr.V(ConversationIDKey, convID))
	}

	systemPrompt, err := uc.buildSystemPrompt(mc)
	if err != nil {
		return nil, err
	}

	agent := gollem.New(uc.llmClient,
		gollem.WithSystemPrompt(systemPrompt),
	)
	resp, err := agent.Execute(ctx, gollem.Text(text))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate reply", goerr.V(ConversationIDKey, convID))
	}

	reply := &model.Message{
		ID:             types.NewMessageID(),
		ConversationID: convID,
		Role:           types.RoleAssistant,
		Text:           strings.Join(resp.Texts, "\n"),
		ModelVariant:   uc.modelVariant,
		CreatedAt:      time.Now(),
	}
	if err := uc.repo.Message().Put(ctx, convID, reply); err != nil {
		return nil, goerr.Wrap(err, "failed to save assistant reply", goerr.V(ConversationIDKey, convID))
	}

	if err := uc.repo.Conversation().Touch(ctx, convID, reply.CreatedAt); err != nil {
		logging.From(ctx).Warn("failed to touch conversation", "conversation_id", convID, "error", err)
	}

	// Compaction runs after the reply is durable and never blocks or fails
	// the user-facing turn.
	async.Dispatch(ctx, func(ctx context.Context) error {
		res, err := uc.memory.MaybeCompact(ctx, convID, ownerID, nil, nil)
		if err != nil {
			return goerr.Wrap(err, "compaction failed", goerr.V(ConversationIDKey, convID))
		}
		logging.From(ctx).Debug("compaction evaluated",
			"conversation_id", convID,
			"compacted", res.Compacted,
			"reason", res.Reason,
		)
		return nil
	})

	return reply, nil
}

func (uc *ChatUseCase) buildSystemPrompt(mc *model.MemoryContext) (string, error) {
	var buf bytes.Buffer
	if err := chatSystemPrompt.Execute(&buf, map[string]string{
		"Persona": uc.persona,
		"Memory":  mc.Prompt,
	}); err != nil {
		return "", goerr.Wrap(err, "failed to render system prompt")
	}
	return buf.String(), nil
}
