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

const messagesCollection = "messages"

type messageDoc struct {
	ID           string    `firestore:"ID"`
	Role         string    `firestore:"Role"`
	Text         string    `firestore:"Text"`
	ModelVariant string    `firestore:"ModelVariant,omitempty"`
	CreatedAt    time.Time `firestore:"CreatedAt"`
}

func toMessageDoc(m *model.Message) *messageDoc {
	return &messageDoc{
		ID:           string(m.ID),
		Role:         string(m.Role),
		Text:         m.Text,
		ModelVariant: m.ModelVariant,
		CreatedAt:    m.CreatedAt,
	}
}

func fromMessageDoc(conversationID types.ConversationID, d *messageDoc) *model.Message {
	return &model.Message{
		ID:             types.MessageID(d.ID),
		ConversationID: conversationID,
		Role:           types.Role(d.Role),
		Text:           d.Text,
		ModelVariant:   d.ModelVariant,
		CreatedAt:      d.CreatedAt,
	}
}

type messageRepository struct {
	client *firestore.Client
}

var _ interfaces.MessageRepository = &messageRepository{}

func newMessageRepository(client *firestore.Client) *messageRepository {
	return &messageRepository{client: client}
}

func (r *messageRepository) collection(conversationID types.ConversationID) *firestore.CollectionRef {
	return r.client.
		Collection(conversationsCollection).Doc(string(conversationID)).
		Collection(messagesCollection)
}

func (r *messageRepository) Put(ctx context.Context, conversationID types.ConversationID, msg *model.Message) error {
	if msg == nil {
		return goerr.New("message is nil")
	}
	if msg.ID == "" {
		return goerr.New("message ID is empty", goerr.V("conversationID", conversationID))
	}

	saved := *msg
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = time.Now().UTC()
	}

	ref := r.collection(conversationID).Doc(string(saved.ID))
	if _, err := ref.Set(ctx, toMessageDoc(&saved)); err != nil {
		return goerr.Wrap(err, "failed to save message",
			goerr.V("conversationID", conversationID),
			goerr.V("messageID", saved.ID))
	}
	return nil
}

func (r *messageRepository) Get(ctx context.Context, conversationID types.ConversationID, msgID types.MessageID) (*model.Message, error) {
	doc, err := r.collection(conversationID).Doc(string(msgID)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "message not found", goerr.V("messageID", msgID))
		}
		return nil, goerr.Wrap(err, "failed to get message", goerr.V("messageID", msgID))
	}

	var d messageDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal message", goerr.V("messageID", msgID))
	}
	return fromMessageDoc(conversationID, &d), nil
}

func (r *messageRepository) ListAfter(ctx context.Context, conversationID types.ConversationID, after time.Time) ([]*model.Message, error) {
	query := r.collection(conversationID).
		OrderBy("CreatedAt", firestore.Asc)
	if !after.IsZero() {
		query = query.Where("CreatedAt", ">", after)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	result := make([]*model.Message, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate messages",
				goerr.V("conversationID", conversationID))
		}

		var d messageDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal message", goerr.V("doc_id", doc.Ref.ID))
		}
		result = append(result, fromMessageDoc(conversationID, &d))
	}
	return result, nil
}

func (r *messageRepository) List(ctx context.Context, conversationID types.ConversationID, limit int, cursor string) ([]*model.Message, string, error) {
	if limit <= 0 {
		limit = 100
	}

	query := r.collection(conversationID).
		OrderBy("CreatedAt", firestore.Desc).
		Limit(limit + 1)

	if cursor != "" {
		cursorDoc, err := r.collection(conversationID).Doc(cursor).Get(ctx)
		if err != nil {
			return nil, "", goerr.Wrap(err, "failed to get cursor document", goerr.V("cursor", cursor))
		}
		query = query.StartAfter(cursorDoc)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var messages []*model.Message
	var hasMore bool

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, "", goerr.Wrap(err, "failed to iterate messages")
		}

		if len(messages) >= limit {
			hasMore = true
			break
		}

		var d messageDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, "", goerr.Wrap(err, "failed to unmarshal message", goerr.V("doc_id", doc.Ref.ID))
		}
		messages = append(messages, fromMessageDoc(conversationID, &d))
	}

	var nextCursor string
	if hasMore && len(messages) > 0 {
		nextCursor = string(messages[len(messages)-1].ID)
	}

	return messages, nextCursor, nil
}
