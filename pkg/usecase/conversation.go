package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/aide-lab/mnemo/pkg/domain/interfaces"
	"github.com/aide-lab/mnemo/pkg/domain/model"
	"github.com/aide-lab/mnemo/pkg/domain/types"
)

// ConversationUseCase handles conversation lifecycle operations
type ConversationUseCase struct {
	repo interfaces.Repository
}

func NewConversationUseCase(repo interfaces.Repository) *ConversationUseCase {
	return &ConversationUseCase{repo: repo}
}

// Create starts a new conversation for the user
func (uc *ConversationUseCase) Create(ctx context.Context, ownerID types.UserID, title string) (*model.Conversation, error) {
	if err := ownerID.Validate(); err != nil {
		return nil, err
	}

	conv, err := uc.repo.Conversation().Create(ctx, &model.Conversation{
		OwnerID: ownerID,
		Title:   title,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create conversation", goerr.V(UserIDKey, ownerID))
	}

	return conv, nil
}

// Get retrieves a conversation, enforcing ownership
func (uc *ConversationUseCase) Get(ctx context.Context, ownerID types.UserID, id types.ConversationID) (*model.Conversation, error) {
	conv, err := uc.repo.Conversation().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(ErrConversationNotFound, "conversation not found", goerr.V(ConversationIDKey, id))
	}
	if conv.OwnerID != ownerID {
		return nil, goerr.Wrap(ErrAccessDenied, "conversation belongs to another user",
			goerr.V(ConversationIDKey, id),
			goerr.V(UserIDKey, ownerID),
		)
	}
	return conv, nil
}

// List retrieves the user's conversations, newest activity first
func (uc *ConversationUseCase) List(ctx context.Context, ownerID types.UserID, limit int) ([]*model.Conversation, error) {
	convs, err := uc.repo.Conversation().ListByOwner(ctx, ownerID, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list conversations", goerr.V(UserIDKey, ownerID))
	}
	return convs, nil
}

// Messages retrieves a page of the conversation's messages, newest first
func (uc *ConversationUseCase) Messages(ctx context.Context, ownerID types.UserID, id types.ConversationID, limit int, cursor string) ([]*model.Message, string, error) {
	if _, err := uc.Get(ctx, ownerID, id); err != nil {
		return nil, "", err
	}

	msgs, next, err := uc.repo.Message().List(ctx, id, limit, cursor)
	if err != nil {
		return nil, "", goerr.Wrap(err, "failed to list messages", goerr.V(ConversationIDKey, id))
	}
	return msgs, next, nil
}

// Reset recycles the conversation identity: the rolling memory state is
// cleared while the raw message history is kept. The next compaction rebuilds
// the summary from the full history.
func (uc *ConversationUseCase) Reset(ctx context.Context, ownerID types.UserID, id types.ConversationID) error {
	if _, err := uc.Get(ctx, ownerID, id); err != nil {
		return err
	}

	if err := uc.repo.Brief().Reset(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to reset conversation memory", goerr.V(ConversationIDKey, id))
	}

	if err := uc.repo.Conversation().Touch(ctx, id, time.Now()); err != nil {
		return goerr.Wrap(err, "failed to touch conversation", goerr.V(ConversationIDKey, id))
	}

	return nil
}
