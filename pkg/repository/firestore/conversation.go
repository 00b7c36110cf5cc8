package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/aide-lab/mnemo/pkg/domain/interfaces"
	"github.com/aide-lab/mnemo/pkg/domain/model"
	"github.com/aide-lab/mnemo/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const conversationsCollection = "conversations"

type conversationDoc struct {
	ID        string    `firestore:"ID"`
	OwnerID   string    `firestore:"OwnerID"`
	Title     string    `firestore:"Title"`
	CreatedAt time.Time `firestore:"CreatedAt"`
	UpdatedAt time.Time `firestore:"UpdatedAt"`
}

func toConversationDoc(c *model.Conversation) *conversationDoc {
	return &conversationDoc{
		ID:        string(c.ID),
		OwnerID:   string(c.OwnerID),
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func fromConversationDoc(d *conversationDoc) *model.Conversation {
	return &model.Conversation{
		ID:        types.ConversationID(d.ID),
		OwnerID:   types.UserID(d.OwnerID),
		Title:     d.Title,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type conversationRepository struct {
	client *firestore.Client
}

var _ interfaces.ConversationRepository = &conversationRepository{}

func newConversationRepository(client *firestore.Client) *conversationRepository {
	return &conversationRepository{client: client}
}

func (r *conversationRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(conversationsCollection)
}

func (r *conversationRepository) Create(ctx context.Context, conv *model.Conversation) (*model.Conversation, error) {
	created := *conv
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

	ref := r.collection().Doc(string(created.ID))
	if _, err := ref.Set(ctx, toConversationDoc(&created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create conversation", goerr.V("conversationID", created.ID))
	}

	return &created, nil
}

func (r *conversationRepository) Get(ctx context.Context, id types.ConversationID) (*model.Conversation, error) {
	doc, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "conversation not found", goerr.V("conversationID", id))
		}
		return nil, goerr.Wrap(err, "failed to get conversation", goerr.V("conversationID", id))
	}

	var d conversationDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal conversation", goerr.V("conversationID", id))
	}
	return fromConversationDoc(&d), nil
}

func (r *conversationRepository) ListByOwner(ctx context.Context, ownerID types.UserID, limit int) ([]*model.Conversation, error) {
	query := r.collection().
		Where("OwnerID", "==", string(ownerID)).
		OrderBy("UpdatedAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}
	return r.list(ctx, query)
}

func (r *conversationRepository) ListActiveSince(ctx context.Context, since time.Time, limit int) ([]*model.Conversation, error) {
	query := r.collection().
		Where("UpdatedAt", ">=", since).
		OrderBy("UpdatedAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}
	return r.list(ctx, query)
}

func (r *conversationRepository) list(ctx context.Context, query firestore.Query) ([]*model.Conversation, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	result := make([]*model.Conversation, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate conversations")
		}

		var d conversationDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal conversation", goerr.V("doc_id", doc.Ref.ID))
		}
		result = append(result, fromConversationDoc(&d))
	}
	return result, nil
}

func (r *conversationRepository) Touch(ctx context.Context, id types.ConversationID, at time.Time) error {
	ref := r.collection().Doc(string(id))
	_, err := ref.Update(ctx, []firestore.Update{
		{Path: "UpdatedAt", Value: at.UTC()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "conversation not found", goerr.V("conversationID", id))
		}
		return goerr.Wrap(err, "failed to touch conversation", goerr.V("conversationID", id))
	}
	return nil
}
