package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/aide-lab/mnemo/pkg/domain/model"
	"github.com/aide-lab/mnemo/pkg/domain/types"
)

type briefRecord struct {
	brief         model.Brief
	ownerID       types.UserID
	summaryTokens int
}

type briefRepository struct {
	mu     sync.RWMutex
	briefs map[types.ConversationID]*briefRecord
}

func newBriefRepository() *briefRepository {
	return &briefRepository{
		briefs: make(map[types.ConversationID]*briefRecord),
	}
}

func (r *briefRepository) Get(ctx context.Context, conversationID types.ConversationID) (*model.Brief, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, exists := r.briefs[conversationID]
	if !exists {
		return nil, nil
	}
	copied := rec.brief
	return &copied, nil
}

func (r *briefRepository) Put(ctx context.Context, conversationID types.ConversationID, ownerID types.UserID, brief *model.Brief, summaryTokens int) error {
	if brief == nil {
		return goerr.New("brief is nil", goerr.V("conversationID", conversationID))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	saved := *brief
	if saved.UpdatedAt.IsZero() {
		saved.UpdatedAt = time.Now().UTC()
	}
	r.briefs[conversationID] = &briefRecord{
		brief:         saved,
		ownerID:       ownerID,
		summaryTokens: summaryTokens,
	}
	return nil
}

func (r *briefRepository) Reset(ctx context.Context, conversationID types.ConversationID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.briefs, conversationID)
	return nil
}
