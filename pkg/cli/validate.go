package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/aide-lab/mnemo/pkg/cli/config"
	"github.com/aide-lab/mnemo/pkg/utils/logging"
)

func cmdValidate() *cli.Command {
	var appCfg config.AppConfig

	var flags []cli.Flag
	flags = append(flags, appCfg.Flags()...)

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the configuration file",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			if appCfg.Path() == "" {
				return goerr.New("no configuration file specified, use --config")
			}

			if err := appCfg.Configure(); err != nil {
				return goerr.Wrap(err, "configuration validation failed")
			}

			logger.Info("Configuration validation passed",
				"path", appCfg.Path(),
				"persona", appCfg.Persona.Name,
			)
			return nil
		},
	}
}
