package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"

	"github.com/aide-lab/mnemo/pkg/domain/model"
	"github.com/aide-lab/mnemo/pkg/domain/types"
	memrepo "github.com/aide-lab/mnemo/pkg/repository/memory"
	memsvc "github.com/aide-lab/mnemo/pkg/service/memory"
	"github.com/aide-lab/mnemo/pkg/usecase"
)

// mockLLMSession is a mock gollem Session for testing
type mockLLMSession struct {
	generateContentFn func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error)
}

func (s *mockLLMSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	if s.generateContentFn != nil {
		return s.generateContentFn(ctx, input...)
	}
	return &gollem.Response{Texts: []string{"Here is the answer."}}, nil
}

func (s *mockLLMSession) GenerateStream(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *mockLLMSession) History() (*gollem.History, error) {
	return nil, nil
}

func (s *mockLLMSession) AppendHistory(*gollem.History) error {
	return nil
}

func (s *mockLLMSession) CountToken(ctx context.Context, input ...gollem.Input) (int, error) {
	return 0, nil
}

// mockLLMClient is a mock gollem LLMClient for testing
type mockLLMClient struct {
	newSessionFn func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error)
}

func (c *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	if c.newSessionFn != nil {
		return c.newSessionFn(ctx, options...)
	}
	return &mockLLMSession{}, nil
}

func (c *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	return nil, nil
}

func newChatFixture(t *testing.T, llm gollem.LLMClient, cfg memsvc.Config) (*usecase.UseCases, *memrepo.Memory, types.UserID, types.ConversationID) {
	t.Helper()
	ctx := context.Background()

	repo := memrepo.New()
	owner := types.UserID("user-001")
	conv, err := repo.Conversation().Create(ctx, &model.Conversation{OwnerID: owner})
	gt.NoError(t, err).Required()

	mem := memsvc.New(repo, llm, cfg)
	uc := usecase.New(repo, mem, llm, "standard")
	return uc, repo, owner, conv.ID
}

func TestChatPost(t *testing.T) {
	ctx := context.Background()

	t.Run("persists both sides of the turn", func(t *testing.T) {
		uc, repo, owner, convID := newChatFixture(t, &mockLLMClient{}, memsvc.Config{})

		reply, err := uc.Chat.Post(ctx, owner, convID, "hello there")
		gt.NoError(t, err).Required()
		gt.Value(t, reply.Role).Equal(types.RoleAssistant)
		gt.Value(t, reply.Text).Equal("Here is the answer.")
		gt.Value(t, reply.ModelVariant).Equal("standard")

		msgs, err := repo.Message().ListAfter(ctx, convID, time.Time{})
		gt.NoError(t, err).Required()
		gt.Array(t, msgs).Length(2)
		gt.Value(t, msgs[0].Role).Equal(types.RoleUser)
		gt.Value(t, msgs[0].Text).Equal("hello there")
		gt.Value(t, msgs[1].ID).Equal(reply.ID)
	})

	t.Run("prior turns still produce a reply", func(t *testing.T) {
		uc, repo, owner, convID := newChatFixture(t, &mockLLMClient{}, memsvc.Config{})

		seedMessage(t, repo, convID, types.RoleUser, "my name is Ada", 0)
		seedMessage(t, repo, convID, types.RoleAssistant, "Nice to meet you, Ada.", 1)

		reply, err := uc.Chat.Post(ctx, owner, convID, "what is my name?")
		gt.NoError(t, err).Required()
		gt.Value(t, reply.Text).Equal("Here is the answer.")

		msgs, err := repo.Message().ListAfter(ctx, convID, time.Time{})
		gt.NoError(t, err).Required()
		gt.Array(t, msgs).Length(4)
	})

	t.Run("unknown conversation is rejected", func(t *testing.T) {
		uc, _, owner, _ := newChatFixture(t, &mockLLMClient{}, memsvc.Config{})

		_, err := uc.Chat.Post(ctx, owner, types.NewConversationID(), "hello")
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, usecase.ErrConversationNotFound)).True()
	})

	t.Run("another user's conversation is rejected", func(t *testing.T) {
		uc, _, _, convID := newChatFixture(t, &mockLLMClient{}, memsvc.Config{})

		_, err := uc.Chat.Post(ctx, types.UserID("intruder"), convID, "hello")
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, usecase.ErrAccessDenied)).True()
	})

	t.Run("blank message is rejected", func(t *testing.T) {
		uc, _, owner, convID := newChatFixture(t, &mockLLMClient{}, memsvc.Config{})

		_, err := uc.Chat.Post(ctx, owner, convID, "   ")
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, usecase.ErrEmptyMessage)).True()
	})

	t.Run("model failure leaves no assistant message", func(t *testing.T) {
		llm := &mockLLMClient{
			newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
				return &mockLLMSession{
					generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
						return nil, errors.New("model unavailable")
					},
				}, nil
			},
		}
		uc, repo, owner, convID := newChatFixture(t, llm, memsvc.Config{})

		_, err := uc.Chat.Post(ctx, owner, convID, "hello")
		gt.Error(t, err)

		msgs, err := repo.Message().ListAfter(ctx, convID, time.Time{})
		gt.NoError(t, err).Required()
		gt.Array(t, msgs).Length(1)
		gt.Value(t, msgs[0].Role).Equal(types.RoleUser)
	})

	t.Run("a large backlog compacts after the turn", func(t *testing.T) {
		uc, repo, owner, convID := newChatFixture(t, &mockLLMClient{}, memsvc.Config{
			TailTurns:              1,
			CompactThresholdTokens: 10,
		})

		long := strings.Repeat("plenty of words here ", 20)
		seedMessage(t, repo, convID, types.RoleUser, long, 0)
		seedMessage(t, repo, convID, types.RoleAssistant, long, 1)
		seedMessage(t, repo, convID, types.RoleUser, long, 2)
		seedMessage(t, repo, convID, types.RoleAssistant, long, 3)

		_, err := uc.Chat.Post(ctx, owner, convID, "and one more question")
		gt.NoError(t, err).Required()

		// Compaction is fire-and-forget; wait for the brief to land.
		deadline := time.Now().Add(2 * time.Second)
		var brief *model.Brief
		for time.Now().Before(deadline) {
			brief, err = repo.Brief().Get(ctx, convID)
			gt.NoError(t, err).Required()
			if brief != nil {
				break
			}
			time.Sleep(10 * time.Millisecond)
		}
		gt.Value(t, brief).NotNil()
		gt.Value(t, brief.Summary).NotEqual("")
		gt.Value(t, brief.Cursor).NotEqual(types.MessageID(""))
	})
}

func TestChatSystemPrompt(t *testing.T) {
	t.Run("memory block is spliced into the prompt", func(t *testing.T) {
		uc := usecase.NewChatUseCase(nil, nil, nil, "standard", "You are a terse assistant.")
		prompt, err := usecase.BuildChatSystemPrompt(uc, &model.MemoryContext{
			Prompt: "Conversation background:\nAda likes trains.",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, strings.Contains(prompt, "You are a terse assistant.")).Equal(true)
		gt.Value(t, strings.Contains(prompt, "Ada likes trains.")).Equal(true)
		gt.Value(t, strings.Contains(prompt, "What you remember")).Equal(true)
	})

	t.Run("empty memory omits the memory section", func(t *testing.T) {
		uc := usecase.NewChatUseCase(nil, nil, nil, "standard", "")
		prompt, err := usecase.BuildChatSystemPrompt(uc, &model.MemoryContext{})
		gt.NoError(t, err).Required()
		gt.Value(t, strings.Contains(prompt, usecase.DefaultPersona)).Equal(true)
		gt.Value(t, strings.Contains(prompt, "What you remember")).Equal(false)
	})
}

func seedMessage(t *testing.T, repo *memrepo.Memory, convID types.ConversationID, role types.Role, text string, seq int) types.MessageID {
	t.Helper()
	msg := &model.Message{
		ID:             types.NewMessageID(),
		ConversationID: convID,
		Role:           role,
		Text:           text,
		CreatedAt:      time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(seq) * time.Minute),
	}
	gt.NoError(t, repo.Message().Put(context.Background(), convID, msg)).Required()
	return msg.ID
}
