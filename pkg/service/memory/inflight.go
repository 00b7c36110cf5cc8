package memory

import (
	"sync"

	"github.com/aide-lab/mnemo/pkg/domain/types"
)

// inFlightRegistry is a process-local mutual exclusion set keyed by
// conversation ID. A second compaction arriving while one is running is
// dropped, not queued; the next turn re-evaluates the backlog anyway.
type inFlightRegistry struct {
	mu  sync.Mutex
	ids map[types.ConversationID]struct{}
}

func newInFlightRegistry() *inFlightRegistry {
	return &inFlightRegistry{
		ids: map[types.ConversationID]struct{}{},
	}
}

// TryAcquire marks the conversation as compacting. It returns false when a
// compaction is already in flight for the same ID.
func (r *inFlightRegistry) TryAcquire(id types.ConversationID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ids[id]; ok {
		return false
	}
	r.ids[id] = struct{}{}
	return true
}

// Release clears the mark. Safe to call for an ID that is not held.
func (r *inFlightRegistry) Release(id types.ConversationID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.ids, id)
}
