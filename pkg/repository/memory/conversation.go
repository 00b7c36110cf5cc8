package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/aide-lab/mnemo/pkg/domain/model"
	"github.com/aide-lab/mnemo/pkg/domain/types"
)

type conversationRepository struct {
	mu    sync.RWMutex
	convs map[types.ConversationID]*model.Conversation
}

func newConversationRepository() *conversationRepository {
	return &conversationRepository{
		convs: make(map[types.ConversationID]*model.Conversation),
	}
}

func copyConversation(c *model.Conversation) *model.Conversation {
	copied := *c
	return &copied
}

func (r *conversationRepository) Create(ctx context.Context, conv *model.Conversation) (*model.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyConversation(conv)
	if created.ID == "" {
		created.ID = types.NewConversationID()
	}
	now := time.Now().UTC()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	if created.UpdatedAt.IsZero() {
		created.UpdatedAt = created.CreatedAt
	}

	r.convs[created.ID] = created
	return copyConversation(created), nil
}

func (r *conversationRepository) Get(ctx context.Context, id types.ConversationID) (*model.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conv, exists := r.convs[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "conversation not found", goerr.V("conversationID", id))
	}
	return copyConversation(conv), nil
}

func (r *conversationRepository) ListByOwner(ctx context.Context, ownerID types.UserID, limit int) ([]*model.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Conversation, 0)
	for _, c := range r.convs {
		if c.OwnerID == ownerID {
			result = append(result, copyConversation(c))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *conversationRepository) ListActiveSince(ctx context.Context, since time.Time, limit int) ([]*model.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Conversation, 0)
	for _, c := range r.convs {
		if !c.UpdatedAt.Before(since) {
			result = append(result, copyConversation(c))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *conversationRepository) Touch(ctx context.Context, id types.ConversationID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, exists := r.convs[id]
	if !exists {
		return goerr.Wrap(ErrNotFound, "conversation not found", goerr.V("conversationID", id))
	}
	conv.UpdatedAt = at.UTC()
	return nil
}
