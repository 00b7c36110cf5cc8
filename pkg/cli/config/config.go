package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// AppConfig represents the application configuration file
type AppConfig struct {
	path string

	Persona Persona `toml:"persona"`
}

// Persona is the assistant persona definition injected into the system prompt
type Persona struct {
	Name         string `toml:"name"`
	Instructions string `toml:"instructions"`
}

// Validate checks if the Persona is valid
func (p *Persona) Validate() error {
	if p.Instructions == "" {
		return goerr.Wrap(ErrMissingInstructions, "persona instructions are required")
	}
	return nil
}

// Flags returns CLI flags for application configuration
func (a *AppConfig) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Path to the persona configuration TOML file",
			Sources:     cli.EnvVars("MNEMO_CONFIG"),
			Destination: &a.path,
		},
	}
}

// Path returns the configured file path
func (a *AppConfig) Path() string {
	return a.path
}

// Configure loads and validates the configuration file. A missing --config
// flag yields the zero configuration; the built-in persona applies.
func (a *AppConfig) Configure() error {
	if a.path == "" {
		return nil
	}

	loaded, err := LoadAppConfiguration(a.path)
	if err != nil {
		return err
	}
	a.Persona = loaded.Persona

	return nil
}

// LoadAppConfiguration loads the application configuration from a TOML file
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(ErrConfigNotFound, "failed to read config file", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config", goerr.V(ConfigPathKey, path))
	}

	if err := config.Persona.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &config, nil
}
