package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/aide-lab/mnemo/pkg/cli/config"
	httpctrl "github.com/aide-lab/mnemo/pkg/controller/http"
	memsvc "github.com/aide-lab/mnemo/pkg/service/memory"
	"github.com/aide-lab/mnemo/pkg/service/worker"
	"github.com/aide-lab/mnemo/pkg/usecase"
	"github.com/aide-lab/mnemo/pkg/utils/logging"
	"github.com/aide-lab/mnemo/pkg/utils/safe"
)

func cmdServe() *cli.Command {
	var addr string
	var sweepInterval time.Duration
	var sweepLookback time.Duration
	var appCfg config.AppConfig
	var repoCfg config.Repository
	var geminiCfg config.Gemini
	var memCfg config.Memory

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("MNEMO_ADDR"),
			Destination: &addr,
		},
		&cli.DurationFlag{
			Name:        "sweep-interval",
			Usage:       "Interval of the background compaction sweep (0 disables it)",
			Value:       5 * time.Minute,
			Sources:     cli.EnvVars("MNEMO_SWEEP_INTERVAL"),
			Destination: &sweepInterval,
		},
		&cli.DurationFlag{
			Name:        "sweep-lookback",
			Usage:       "Activity window the compaction sweep considers",
			Value:       24 * time.Hour,
			Sources:     cli.EnvVars("MNEMO_SWEEP_LOOKBACK"),
			Destination: &sweepLookback,
		},
	}

	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, memCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := appCfg.Configure(); err != nil {
				return goerr.Wrap(err, "failed to load configuration")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize LLM client")
			}

			summaryClient, err := geminiCfg.ConfigureSummarizer(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize summarizer client")
			}

			mem := memsvc.New(repo, summaryClient, memCfg.Configure())

			var ucOpts []usecase.Option
			if appCfg.Persona.Instructions != "" {
				ucOpts = append(ucOpts, usecase.WithPersona(appCfg.Persona.Instructions))
			}
			uc := usecase.New(repo, mem, llmClient, geminiCfg.Model(), ucOpts...)

			if sweepInterval > 0 {
				sweeper := worker.NewCompactionSweepWorker(repo, mem, sweepInterval, sweepLookback)
				if err := sweeper.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start compaction sweep worker")
				}
				defer sweeper.Stop()
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)
			case <-ctx.Done():
				logging.Default().Info("Context cancelled")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shut down HTTP server")
			}

			return nil
		},
	}
}
