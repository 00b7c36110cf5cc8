package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"

	"github.com/aide-lab/mnemo/pkg/domain/interfaces"
	"github.com/aide-lab/mnemo/pkg/domain/model"
	"github.com/aide-lab/mnemo/pkg/domain/types"
	memrepo "github.com/aide-lab/mnemo/pkg/repository/memory"
	"github.com/aide-lab/mnemo/pkg/service/memory"
)

// mockLLMSession is a mock gollem Session for testing
type mockLLMSession struct {
	generateContentFn func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error)
}

func (s *mockLLMSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	if s.generateContentFn != nil {
		return s.generateContentFn(ctx, input...)
	}
	return &gollem.Response{
		Texts: []string{"The user asked for help and the assistant helped."},
	}, nil
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

// failingBriefRepo wraps a repository so brief operations fail, for
// exercising the fail-soft load and the propagating save paths.
type failingBriefRepo struct {
	interfaces.Repository
	getErr error
	putErr error
}

func (r *failingBriefRepo) Brief() interfaces.BriefRepository {
	return &failingBriefs{inner: r.Repository.Brief(), getErr: r.getErr, putErr: r.putErr}
}

type failingBriefs struct {
	inner  interfaces.BriefRepository
	getErr error
	putErr error
}

func (b *failingBriefs) Get(ctx context.Context, convID types.ConversationID) (*model.Brief, error) {
	if b.getErr != nil {
		return nil, b.getErr
	}
	return b.inner.Get(ctx, convID)
}

func (b *failingBriefs) Put(ctx context.Context, convID types.ConversationID, ownerID types.UserID, brief *model.Brief, summaryTokens int) error {
	if b.putErr != nil {
		return b.putErr
	}
	return b.inner.Put(ctx, convID, ownerID, brief, summaryTokens)
}

func (b *failingBriefs) Reset(ctx context.Context, convID types.ConversationID) error {
	return b.inner.Reset(ctx, convID)
}

var testBase = time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

// seedConversation creates a conversation owned by the test user
func seedConversation(t *testing.T, repo interfaces.Repository) (types.ConversationID, types.UserID) {
	t.Helper()
	ctx := context.Background()
	owner := types.UserID("user-001")
	conv, err := repo.Conversation().Create(ctx, &model.Conversation{OwnerID: owner})
	gt.NoError(t, err).Required()
	return conv.ID, owner
}

// seedTurn writes one user/assistant message pair at a stable offset and
// returns the assistant message ID
func seedTurn(t *testing.T, repo interfaces.Repository, convID types.ConversationID, seq int, userText, assistantText string) types.MessageID {
	t.Helper()
	ctx := context.Background()

	u := &model.Message{
		ID:             types.NewMessageID(),
		ConversationID: convID,
		Role:           types.RoleUser,
		Text:           userText,
		CreatedAt:      testBase.Add(time.Duration(seq) * time.Minute),
	}
	gt.NoError(t, repo.Message().Put(ctx, convID, u)).Required()

	a := &model.Message{
		ID:             types.NewMessageID(),
		ConversationID: convID,
		Role:           types.RoleAssistant,
		Text:           assistantText,
		ModelVariant:   "fast",
		CreatedAt:      testBase.Add(time.Duration(seq)*time.Minute + 30*time.Second),
	}
	gt.NoError(t, repo.Message().Put(ctx, convID, a)).Required()

	return a.ID
}

func TestServiceConfigDefaults(t *testing.T) {
	svc := memory.New(memrepo.New(), &mockLLMClient{}, memory.Config{})
	cfg := svc.Config()
	gt.Value(t, cfg.TailTurns).Equal(memory.DefaultTailTurns)
	gt.Value(t, cfg.SummaryCapTokens).Equal(memory.DefaultSummaryCapTokens)
	gt.Value(t, cfg.PromptBudgetTokens).Equal(memory.DefaultPromptBudgetTokens)
	gt.Value(t, cfg.CompactThresholdTokens).Equal(memory.DefaultCompactThresholdTokens)
}

func TestServiceConfigOverrides(t *testing.T) {
	svc := memory.New(memrepo.New(), &mockLLMClient{}, memory.Config{
		TailTurns:              5,
		CompactThresholdTokens: 100,
	})
	cfg := svc.Config()
	gt.Value(t, cfg.TailTurns).Equal(5)
	gt.Value(t, cfg.CompactThresholdTokens).Equal(100)
	gt.Value(t, cfg.SummaryCapTokens).Equal(memory.DefaultSummaryCapTokens)
}
