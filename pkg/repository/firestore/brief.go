package firestore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/aide-lab/mnemo/pkg/domain/interfaces"
	"github.com/aide-lab/mnemo/pkg/domain/model"
	"github.com/aide-lab/mnemo/pkg/domain/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const briefsCollection = "briefs"

// briefDoc is the current persisted shape of a conversation brief
type briefDoc struct {
	Summary       string    `firestore:"Summary"`
	Cursor        string    `firestore:"Cursor"`
	OwnerID       string    `firestore:"OwnerID"`
	SummaryTokens int       `firestore:"SummaryTokens"`
	UpdatedAt     time.Time `firestore:"UpdatedAt"`
}

type briefRepository struct {
	client *firestore.Client
}

var _ interfaces.BriefRepository = &briefRepository{}

func newBriefRepository(client *firestore.Client) *briefRepository {
	return &briefRepository{client: client}
}

func (r *briefRepository) doc(conversationID types.ConversationID) *firestore.DocumentRef {
	return r.client.Collection(briefsCollection).Doc(string(conversationID))
}

func (r *briefRepository) Get(ctx context.Context, conversationID types.ConversationID) (*model.Brief, error) {
	doc, err := r.doc(conversationID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get brief", goerr.V("conversationID", conversationID))
	}

	return decodeBriefData(doc.Data()), nil
}

func (r *briefRepository) Put(ctx context.Context, conversationID types.ConversationID, ownerID types.UserID, brief *model.Brief, summaryTokens int) error {
	if brief == nil {
		return goerr.New("brief is nil", goerr.V("conversationID", conversationID))
	}

	saved := briefDoc{
		Summary:       brief.Summary,
		Cursor:        string(brief.Cursor),
		OwnerID:       string(ownerID),
		SummaryTokens: summaryTokens,
		UpdatedAt:     brief.UpdatedAt,
	}
	if saved.UpdatedAt.IsZero() {
		saved.UpdatedAt = time.Now().UTC()
	}

	if _, err := r.doc(conversationID).Set(ctx, &saved); err != nil {
		return goerr.Wrap(err, "failed to save brief",
			goerr.V("conversationID", conversationID),
			goerr.V("summaryTokens", summaryTokens))
	}
	return nil
}

func (r *briefRepository) Reset(ctx context.Context, conversationID types.ConversationID) error {
	if _, err := r.doc(conversationID).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to reset brief", goerr.V("conversationID", conversationID))
	}
	return nil
}

// decodeBriefData normalizes a stored brief document into the current shape.
// Shapes are tried in order: current, then each known legacy layout, then the
// empty default. Legacy layouts predate the cursor, so their fold always
// starts with an empty cursor and raw history remains authoritative.
func decodeBriefData(data map[string]any) *model.Brief {
	if data == nil {
		return model.EmptyBrief()
	}

	if b, ok := decodeCurrentBrief(data); ok {
		return b
	}
	if b, ok := decodeDigestBrief(data); ok {
		return b
	}
	if b, ok := decodeSnippetBrief(data); ok {
		return b
	}
	return model.EmptyBrief()
}

func decodeCurrentBrief(data map[string]any) (*model.Brief, bool) {
	summary, hasSummary := data["Summary"].(string)
	cursor, hasCursor := data["Cursor"].(string)
	if !hasSummary && !hasCursor {
		return nil, false
	}

	b := &model.Brief{
		Summary: summary,
		Cursor:  types.MessageID(cursor),
	}
	if at, ok := data["UpdatedAt"].(time.Time); ok {
		b.UpdatedAt = at
	}
	return b, true
}

// decodeDigestBrief handles the first persisted layout: a single free-text
// field under the key "digest".
func decodeDigestBrief(data map[string]any) (*model.Brief, bool) {
	digest, ok := data["digest"].(string)
	if !ok {
		return nil, false
	}
	return &model.Brief{Summary: digest}, true
}

// decodeSnippetBrief handles the original layout: a list of short memory
// snippets plus a flat profile field set. Both are folded into one free-text
// summary without losing content.
func decodeSnippetBrief(data map[string]any) (*model.Brief, bool) {
	snippets, hasSnippets := data["snippets"].([]any)
	profile, hasProfile := data["profile"].(map[string]any)
	if !hasSnippets && !hasProfile {
		return nil, false
	}

	var sections []string

	if len(profile) > 0 {
		keys := make([]string, 0, len(profile))
		for k := range profile {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		lines := make([]string, 0, len(keys)+1)
		lines = append(lines, "Known profile:")
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("%s: %v", k, profile[k]))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	if len(snippets) > 0 {
		lines := make([]string, 0, len(snippets)+1)
		lines = append(lines, "Notes:")
		for _, s := range snippets {
			lines = append(lines, fmt.Sprintf("- %v", s))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	return &model.Brief{Summary: strings.Join(sections, "\n\n")}, true
}
