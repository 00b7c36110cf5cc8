package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/aide-lab/mnemo/pkg/domain/types"
)

func TestNewConversationID(t *testing.T) {
	id1 := types.NewConversationID()
	id2 := types.NewConversationID()

	gt.Value(t, string(id1)).NotEqual("")
	gt.Value(t, id1).NotEqual(id2)
	gt.NoError(t, id1.Validate())
}

func TestConversationIDValidate(t *testing.T) {
	gt.Error(t, types.ConversationID("").Validate())
	gt.Error(t, types.ConversationID("not-a-uuid").Validate())
}

func TestNewMessageIDOrdering(t *testing.T) {
	// UUID v7 IDs generated in sequence sort in creation order
	prev := types.NewMessageID()
	for i := 0; i < 10; i++ {
		next := types.NewMessageID()
		gt.Bool(t, string(prev) <= string(next)).True()
		prev = next
	}
}

func TestRoleValidate(t *testing.T) {
	gt.NoError(t, types.RoleUser.Validate())
	gt.NoError(t, types.RoleAssistant.Validate())
	gt.Error(t, types.Role("system").Validate())
	gt.Error(t, types.Role("").Validate())
}
