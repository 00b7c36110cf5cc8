package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/aide-lab/mnemo/pkg/domain/interfaces"
	"github.com/aide-lab/mnemo/pkg/domain/model"
	"github.com/aide-lab/mnemo/pkg/domain/types"
)

func runBriefRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Get returns nil for conversation without brief", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		brief, err := repo.Brief().Get(ctx, types.NewConversationID())
		gt.NoError(t, err).Required()
		gt.Value(t, brief).Nil()
	})

	t.Run("Put then Get round trip", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		convID := types.NewConversationID()
		cursor := types.NewMessageID()

		brief := &model.Brief{
			Summary:   "user wants help migrating a Rails app to Go",
			Cursor:    cursor,
			UpdatedAt: time.Now().UTC().Truncate(time.Millisecond),
		}
		gt.NoError(t, repo.Brief().Put(ctx, convID, "owner-1", brief, 12)).Required()

		got, err := repo.Brief().Get(ctx, convID)
		gt.NoError(t, err).Required()
		gt.Value(t, got).NotNil()
		gt.Value(t, got.Summary).Equal(brief.Summary)
		gt.Value(t, got.Cursor).Equal(cursor)
	})

	t.Run("Put is an upsert keyed by conversation", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		convID := types.NewConversationID()

		gt.NoError(t, repo.Brief().Put(ctx, convID, "owner-1", &model.Brief{Summary: "v1"}, 1)).Required()
		gt.NoError(t, repo.Brief().Put(ctx, convID, "owner-1", &model.Brief{Summary: "v2", Cursor: types.NewMessageID()}, 1)).Required()

		got, err := repo.Brief().Get(ctx, convID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Summary).Equal("v2")
		gt.Value(t, string(got.Cursor)).NotEqual("")
	})

	t.Run("Put nil brief fails", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		err := repo.Brief().Put(ctx, types.NewConversationID(), "owner-1", nil, 0)
		gt.Value(t, err).NotNil()
	})

	t.Run("Reset removes the brief", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		convID := types.NewConversationID()

		gt.NoError(t, repo.Brief().Put(ctx, convID, "owner-1", &model.Brief{Summary: "about to vanish"}, 4)).Required()
		gt.NoError(t, repo.Brief().Reset(ctx, convID)).Required()

		got, err := repo.Brief().Get(ctx, convID)
		gt.NoError(t, err).Required()
		gt.Value(t, got).Nil()
	})

	t.Run("Reset is idempotent", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.Brief().Reset(ctx, types.NewConversationID()))
	})
}

func TestMemoryBriefRepository(t *testing.T) {
	runBriefRepositoryTest(t, newMemoryRepository)
}

func TestFirestoreBriefRepository(t *testing.T) {
	runBriefRepositoryTest(t, newFirestoreRepository)
}
