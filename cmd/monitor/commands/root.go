package commands

import (
	"fmt"

	"shortlist-monitor/internal/config"
	"shortlist-monitor/internal/logging"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const cliExecutable = "monitor"

// rootOptions is shared by every subcommand. cfg is filled in before any
// subcommand runs.
type rootOptions struct {
	configFile string
	envFiles   []string
	cfg        config.Config
}

// NewCommand builds the monitor CLI.
func NewCommand() *cobra.Command {

	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   cliExecutable,
		Short: "Follow shortlisting jobs until their results are ready",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(opts.envFiles...); err != nil {
				return err
			}

			cfg, err := config.Load(opts.configFile, cmd.Flags())
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			opts.cfg = cfg

			level := logging.Configure(cfg.Log.Level, cfg.Log.Format)
			log.Debug().
				Str("level", level.String()).
				Str("source", cfg.Source.Kind).
				Dur("interval", cfg.Poll.Interval).
				Msg("Configuration loaded")

			return nil
		},
	}

	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "Configuration file path (YAML)")
	cmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", nil, "Load environment variables from these files (default .env)")
	bindConfigFlags(cmd.PersistentFlags())

	cmd.AddCommand(newWatchCommand(opts))
	cmd.AddCommand(newStatusCommand(opts))
	cmd.AddCommand(newJobsCommand(opts))
	cmd.AddCommand(newServeCommand(opts))

	return cmd
}

// bindConfigFlags registers the flags listed in config.FlagKeys, except those
// that belong to a single subcommand.
func bindConfigFlags(flags *pflag.FlagSet) {

	def := config.DefaultConfig()

	flags.String("log-level", def.Log.Level, "Log level (trace, debug, info, warn, error)")
	flags.String("log-format", def.Log.Format, "Log format (console, json)")
	flags.Duration("interval", def.Poll.Interval, "Time between status polls")
	flags.Duration("request-timeout", def.Poll.RequestTimeout, "Timeout of a single status or results request")
	flags.Bool("fetch-on-activate", def.Poll.FetchOnActivate, "Poll once immediately instead of waiting for the first tick")
	flags.String("source", def.Source.Kind, "Where job reports are read from (http, postgres, s3)")
	flags.String("api-url", def.API.BaseURL, "Base URL of the shortlisting API")
	flags.String("valkey-url", def.Valkey.URL, "Publish job events to this Valkey server")
}
