package config

import (
	"log/slog"

	"github.com/urfave/cli/v3"

	memsvc "github.com/aide-lab/mnemo/pkg/service/memory"
)

// Memory holds CLI flags for the conversation memory engine knobs
type Memory struct {
	tailTurns        int
	summaryCap       int
	promptBudget     int
	compactThreshold int
}

// Flags returns CLI flags for memory engine configuration
func (m *Memory) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "memory-tail-turns",
			Usage:       "Number of recent turns always kept verbatim in the prompt",
			Value:       memsvc.DefaultTailTurns,
			Sources:     cli.EnvVars("MNEMO_MEMORY_TAIL_TURNS"),
			Destination: &m.tailTurns,
		},
		&cli.IntFlag{
			Name:        "memory-summary-cap",
			Usage:       "Token cap for the rolling conversation summary",
			Value:       memsvc.DefaultSummaryCapTokens,
			Sources:     cli.EnvVars("MNEMO_MEMORY_SUMMARY_CAP"),
			Destination: &m.summaryCap,
		},
		&cli.IntFlag{
			Name:        "memory-prompt-budget",
			Usage:       "Token budget for the composed memory context block",
			Value:       memsvc.DefaultPromptBudgetTokens,
			Sources:     cli.EnvVars("MNEMO_MEMORY_PROMPT_BUDGET"),
			Destination: &m.promptBudget,
		},
		&cli.IntFlag{
			Name:        "memory-compact-threshold",
			Usage:       "Uncompacted backlog size in tokens that triggers compaction",
			Value:       memsvc.DefaultCompactThresholdTokens,
			Sources:     cli.EnvVars("MNEMO_MEMORY_COMPACT_THRESHOLD"),
			Destination: &m.compactThreshold,
		},
	}
}

// LogAttrs returns log attributes for the memory engine configuration
func (m *Memory) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.Int("tail_turns", m.tailTurns),
		slog.Int("summary_cap", m.summaryCap),
		slog.Int("prompt_budget", m.promptBudget),
		slog.Int("compact_threshold", m.compactThreshold),
	}
}

// Configure returns the engine configuration assembled from the flags
func (m *Memory) Configure() memsvc.Config {
	return memsvc.Config{
		TailTurns:              m.tailTurns,
		SummaryCapTokens:       m.summaryCap,
		PromptBudgetTokens:     m.promptBudget,
		CompactThresholdTokens: m.compactThreshold,
	}
}
