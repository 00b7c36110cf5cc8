package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/urfave/cli/v3"
)

// Gemini holds configuration for the Gemini LLM clients
type Gemini struct {
	projectID    string
	location     string
	model        string
	summaryModel string
}

// Flags returns CLI flags for Gemini configuration
func (g *Gemini) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini API",
			Sources:     cli.EnvVars("MNEMO_GEMINI_PROJECT"),
			Destination: &g.projectID,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini API",
			Value:       "us-central1",
			Sources:     cli.EnvVars("MNEMO_GEMINI_LOCATION"),
			Destination: &g.location,
		},
		&cli.StringFlag{
			Name:        "gemini-model",
			Usage:       "Main model, also recorded as the variant tag on assistant replies",
			Value:       "gemini-2.0-flash",
			Sources:     cli.EnvVars("MNEMO_GEMINI_MODEL"),
			Destination: &g.model,
		},
		&cli.StringFlag{
			Name:        "memory-summary-model",
			Usage:       "Model used for background summarization of older turns",
			Value:       "gemini-2.0-flash-lite",
			Sources:     cli.EnvVars("MNEMO_MEMORY_SUMMARY_MODEL"),
			Destination: &g.summaryModel,
		},
	}
}

// LogAttrs returns log attributes for the Gemini configuration
func (g *Gemini) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("project_id", g.projectID),
		slog.String("location", g.location),
		slog.String("model", g.model),
		slog.String("summary_model", g.summaryModel),
	}
}

// Model returns the configured model variant tag
func (g *Gemini) Model() string {
	return g.model
}

// Configure creates the Gemini LLM client for main model calls
func (g *Gemini) Configure(ctx context.Context) (gollem.LLMClient, error) {
	return g.newClient(ctx, g.model)
}

// ConfigureSummarizer creates the Gemini LLM client used by the compactor
func (g *Gemini) ConfigureSummarizer(ctx context.Context) (gollem.LLMClient, error) {
	return g.newClient(ctx, g.summaryModel)
}

func (g *Gemini) newClient(ctx context.Context, model string) (gollem.LLMClient, error) {
	if g.projectID == "" {
		return nil, goerr.New("gemini-project is required")
	}

	client, err := gemini.New(ctx, g.projectID, g.location, gemini.WithModel(model))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Gemini client", goerr.V("model", model))
	}

	return client, nil
}
