package types

// CompactionReason describes the outcome of a compaction attempt. Every
// attempt yields exactly one reason; only ReasonCompacted implies that the
// brief was mutated.
type CompactionReason string

const (
	// ReasonCompacted means older turns were folded into the summary and the
	// brief was saved.
	ReasonCompacted CompactionReason = "compacted"

	// ReasonBelowThreshold means the uncompacted backlog has not crossed the
	// compaction threshold, or too few turns exist to retire any.
	ReasonBelowThreshold CompactionReason = "below_threshold"

	// ReasonInFlight means another compaction for the same conversation is
	// already running; this attempt was dropped, not queued.
	ReasonInFlight CompactionReason = "in_flight"

	// ReasonNoOlderTurns means all uncompacted turns fall inside the verbatim
	// tail window, so nothing may be retired.
	ReasonNoOlderTurns CompactionReason = "no_older_turns"

	// ReasonLLMError means the summarization call failed; state is untouched
	// and the next turn retries against the same backlog.
	ReasonLLMError CompactionReason = "llm_error"

	// ReasonEmptySummary means the summarizer returned no usable text.
	ReasonEmptySummary CompactionReason = "empty_summary"

	// ReasonMissingCursor means no valid cursor could be established for the
	// retired turns; the compaction aborted without saving.
	ReasonMissingCursor CompactionReason = "missing_cursor"
)

func (r CompactionReason) String() string {
	return string(r)
}
