package model

import (
	"time"

	"github.com/aide-lab/mnemo/pkg/domain/types"
)

// Brief is the durable rolling memory state for one conversation: a free-text
// summary of everything already folded, and a cursor marking how far the fold
// has advanced.
//
// Invariant: every message at or before Cursor (in conversation order) is
// represented, lossily, inside Summary; everything after Cursor exists only
// as raw messages. An empty Cursor means nothing has been folded yet.
type Brief struct {
	Summary   string
	Cursor    types.MessageID
	UpdatedAt time.Time
}

// Empty reports whether the brief holds no memory state
func (b *Brief) Empty() bool {
	return b == nil || (b.Summary == "" && b.Cursor == "")
}

// EmptyBrief returns the default brief used when no state exists or loading
// failed. Losing memory state must never block a conversation.
func EmptyBrief() *Brief {
	return &Brief{}
}
