package model

// MemoryContext is the per-request context block spliced into the next main
// model call, plus bookkeeping about how it was assembled. It is rebuilt on
// every request and never persisted.
type MemoryContext struct {
	// Prompt is the composed text block: background summary section (if any)
	// followed by the recent-turns section.
	Prompt string

	// Summary is the (possibly truncated) summary text that was composed.
	Summary string

	// SummaryTruncated is set when the summary had to be cut below its
	// normal cap to fit the prompt budget.
	SummaryTruncated bool

	// Turns are the tail turns retained in the prompt, oldest first.
	Turns []Turn

	// DroppedTurns counts tail turns discarded by the degradation loop.
	DroppedTurns int

	// PromptTokens is the estimated token count of Prompt.
	PromptTokens int

	// RawTokens is the estimated token total of all uncompacted turns (before
	// any tail windowing). The compaction trigger compares it against the
	// threshold.
	RawTokens int
}
