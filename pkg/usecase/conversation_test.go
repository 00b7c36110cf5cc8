package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/aide-lab/mnemo/pkg/domain/model"
	"github.com/aide-lab/mnemo/pkg/domain/types"
	memrepo "github.com/aide-lab/mnemo/pkg/repository/memory"
	memsvc "github.com/aide-lab/mnemo/pkg/service/memory"
	"github.com/aide-lab/mnemo/pkg/usecase"
)

func newConversationFixture(t *testing.T) (*usecase.UseCases, *memrepo.Memory) {
	t.Helper()
	repo := memrepo.New()
	mem := memsvc.New(repo, &mockLLMClient{}, memsvc.Config{})
	return usecase.New(repo, mem, &mockLLMClient{}, "standard"), repo
}

func TestConversationLifecycle(t *testing.T) {
	ctx := context.Background()
	owner := types.UserID("user-001")

	t.Run("create assigns identity and timestamps", func(t *testing.T) {
		uc, _ := newConversationFixture(t)

		conv, err := uc.Conversation.Create(ctx, owner, "Trip planning")
		gt.NoError(t, err).Required()
		gt.Value(t, conv.ID).NotEqual(types.ConversationID(""))
		gt.Value(t, conv.OwnerID).Equal(owner)
		gt.Value(t, conv.Title).Equal("Trip planning")
		gt.Bool(t, conv.CreatedAt.IsZero()).False()
	})

	t.Run("create requires an owner", func(t *testing.T) {
		uc, _ := newConversationFixture(t)

		_, err := uc.Conversation.Create(ctx, "", "untitled")
		gt.Error(t, err)
	})

	t.Run("get enforces ownership", func(t *testing.T) {
		uc, _ := newConversationFixture(t)
		conv, err := uc.Conversation.Create(ctx, owner, "")
		gt.NoError(t, err).Required()

		got, err := uc.Conversation.Get(ctx, owner, conv.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.ID).Equal(conv.ID)

		_, err = uc.Conversation.Get(ctx, types.UserID("intruder"), conv.ID)
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, usecase.ErrAccessDenied)).True()

		_, err = uc.Conversation.Get(ctx, owner, types.NewConversationID())
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, usecase.ErrConversationNotFound)).True()
	})

	t.Run("list returns only the owner's conversations", func(t *testing.T) {
		uc, _ := newConversationFixture(t)
		_, err := uc.Conversation.Create(ctx, owner, "first")
		gt.NoError(t, err).Required()
		_, err = uc.Conversation.Create(ctx, owner, "second")
		gt.NoError(t, err).Required()
		_, err = uc.Conversation.Create(ctx, types.UserID("user-002"), "other")
		gt.NoError(t, err).Required()

		convs, err := uc.Conversation.List(ctx, owner, 10)
		gt.NoError(t, err).Required()
		gt.Array(t, convs).Length(2)
	})

	t.Run("messages page is owner checked", func(t *testing.T) {
		uc, repo := newConversationFixture(t)
		conv, err := uc.Conversation.Create(ctx, owner, "")
		gt.NoError(t, err).Required()
		seedMessage(t, repo, conv.ID, types.RoleUser, "hello", 0)
		seedMessage(t, repo, conv.ID, types.RoleAssistant, "hi", 1)

		msgs, _, err := uc.Conversation.Messages(ctx, owner, conv.ID, 10, "")
		gt.NoError(t, err).Required()
		gt.Array(t, msgs).Length(2)

		_, _, err = uc.Conversation.Messages(ctx, types.UserID("intruder"), conv.ID, 10, "")
		gt.Error(t, err)
	})

	t.Run("reset clears memory state but keeps messages", func(t *testing.T) {
		uc, repo := newConversationFixture(t)
		conv, err := uc.Conversation.Create(ctx, owner, "")
		gt.NoError(t, err).Required()
		seedMessage(t, repo, conv.ID, types.RoleUser, "remember me", 0)

		gt.NoError(t, repo.Brief().Put(ctx, conv.ID, owner, &model.Brief{
			Summary:   "Some accumulated memory.",
			Cursor:    types.NewMessageID(),
			UpdatedAt: time.Now(),
		}, 6)).Required()

		gt.NoError(t, uc.Conversation.Reset(ctx, owner, conv.ID)).Required()

		brief, err := repo.Brief().Get(ctx, conv.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, brief.Empty()).True()

		msgs, err := repo.Message().ListAfter(ctx, conv.ID, time.Time{})
		gt.NoError(t, err).Required()
		gt.Array(t, msgs).Length(1)
	})
}
