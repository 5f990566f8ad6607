// Package cli implements the eventgraph command line.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"
)

// EnvConfig holds defaults read from EVENTGRAPH_* variables. Flags
// override them.
type EnvConfig struct {
	Step         time.Duration `env:"EVENTGRAPH_STEP" envDefault:"16ms"`
	MaxSteps     int           `env:"EVENTGRAPH_MAX_STEPS" envDefault:"100000"`
	TimeScale    float64       `env:"EVENTGRAPH_TIME_SCALE" envDefault:"1"`
	DB           string        `env:"EVENTGRAPH_DB"`
	OTLPEndpoint string        `env:"EVENTGRAPH_OTLP_ENDPOINT"`
	LogLevel     string        `env:"EVENTGRAPH_LOG_LEVEL" envDefault:"info"`
}

// LoadEnv reads EnvConfig from the environment.
func LoadEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return EnvConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Env      EnvConfig
	LogLevel string
}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	envCfg, envErr := LoadEnv()
	opts.Env = envCfg

	cmd := &cobra.Command{
		Use:   "eventgraph",
		Short: "Run and inspect event graph definitions",
		Long: `eventgraph bakes graph definitions (YAML, JSON or HCL) and runs them on a
simulated frame clock, the way a game would drive a cutscene.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if envErr != nil {
				return WrapExitError(ExitCommandError, "invalid environment", envErr)
			}
			var level slog.Level
			if err := level.UnmarshalText([]byte(opts.LogLevel)); err != nil {
				return WrapExitError(ExitCommandError, "invalid log level", err)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", envCfg.LogLevel, "log level (debug|info|warn|error)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// newLogger returns a text logger at the configured level.
func (o *RootOptions) newLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	_ = level.UnmarshalText([]byte(o.LogLevel))
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
