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

type messageRepository struct {
	mu       sync.RWMutex
	messages map[types.ConversationID]map[types.MessageID]*model.Message
}

func newMessageRepository() *messageRepository {
	return &messageRepository{
		messages: make(map[types.ConversationID]map[types.MessageID]*model.Message),
	}
}

func copyMessage(m *model.Message) *model.Message {
	copied := *m
	return &copied
}

func (r *messageRepository) Put(ctx context.Context, conversationID types.ConversationID, msg *model.Message) error {
	if msg == nil {
		return goerr.New("message is nil")
	}
	if msg.ID == "" {
		return goerr.New("message ID is empty", goerr.V("conversationID", conversationID))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	bucket, exists := r.messages[conversationID]
	if !exists {
		bucket = make(map[types.MessageID]*model.Message)
		r.messages[conversationID] = bucket
	}

	saved := copyMessage(msg)
	saved.ConversationID = conversationID
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = time.Now().UTC()
	}
	bucket[saved.ID] = saved
	return nil
}

func (r *messageRepository) Get(ctx context.Context, conversationID types.ConversationID, msgID types.MessageID) (*model.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bucket, exists := r.messages[conversationID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "message not found", goerr.V("messageID", msgID))
	}
	msg, exists := bucket[msgID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "message not found", goerr.V("messageID", msgID))
	}
	return copyMessage(msg), nil
}

func (r *messageRepository) ListAfter(ctx context.Context, conversationID types.ConversationID, after time.Time) ([]*model.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bucket := r.messages[conversationID]
	result := make([]*model.Message, 0, len(bucket))
	for _, m := range bucket {
		if m.CreatedAt.After(after) {
			result = append(result, copyMessage(m))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

func (r *messageRepository) List(ctx context.Context, conversationID types.ConversationID, limit int, cursor string) ([]*model.Message, string, error) {
	if limit <= 0 {
		limit = 100
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	bucket := r.messages[conversationID]
	all := make([]*model.Message, 0, len(bucket))
	for _, m := range bucket {
		all = append(all, copyMessage(m))
	}

	// Newest first
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	start := 0
	if cursor != "" {
		for i, m := range all {
			if string(m.ID) == cursor {
				start = i + 1
				break
			}
		}
	}

	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	page := all[start:end]

	var nextCursor string
	if end < len(all) && len(page) > 0 {
		nextCursor = string(page[len(page)-1].ID)
	}

	return page, nextCursor, nil
}
