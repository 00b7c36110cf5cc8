package model

import "github.com/aide-lab/mnemo/pkg/domain/types"

// Turn is one user message paired with the following assistant reply. Either
// side may be absent when entries do not strictly alternate. Turns are
// derived from the flat message sequence on each read and never stored.
type Turn struct {
	UserText      string
	AssistantText string

	// AssistantID is the stable ID of the assistant entry; it is the value
	// the brief cursor advances to when this turn is folded into the summary.
	AssistantID types.MessageID

	// ModelVariant tags which model/mode produced the assistant reply.
	ModelVariant string
}

// HasUser reports whether the turn carries a user message
func (t Turn) HasUser() bool {
	return t.UserText != ""
}

// HasAssistant reports whether the turn carries an assistant reply
func (t Turn) HasAssistant() bool {
	return t.AssistantText != ""
}
