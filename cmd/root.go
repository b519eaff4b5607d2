// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"reelfetch/internal/config"
	"reelfetch/internal/httputil"
	"reelfetch/internal/logging"
	"reelfetch/internal/pipeline"
	"reelfetch/internal/resolve"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagConfig    string
	flagDebug     bool
	flagLogFormat string
)

// cfg holds the loaded configuration (merged: defaults < config file < flags).
var cfg *config.Config

// logger is configured from cfg before any command runs.
var logger *logrus.Logger

var rootCmd = &cobra.Command{
	Use:   "reelfetch",
	Short: "Resolve movies and episodes to playable HLS streams",
	Long: `reelfetch scrapes third-party embed providers, in priority order, for
directly playable .m3u8 playlists. Use "resolve" for a one-off lookup or
"serve" to expose the same lookup over HTTP.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "reelfetch %s\n", Version)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default: $XDG_CONFIG_HOME/reelfetch/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "Log format: text | json")

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(providersCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < config file < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	if flagConfig != "" {
		cfg, err = config.LoadFile(flagConfig)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags override config file values
	if flagDebug {
		cfg.Debug = true
	}
	if flagLogFormat != "" {
		cfg.LogFormat = flagLogFormat
	}

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err = logging.Setup(cfg.LogLevel, cfg.LogFormat, cfg.Debug, os.Stderr)
	if err != nil {
		return err
	}
	return nil
}

// newPipeline wires the transport, resolver and registry from cfg.
func newPipeline() (*pipeline.Pipeline, error) {
	registry, err := cfg.Registry()
	if err != nil {
		return nil, err
	}
	client, err := httputil.NewClient(cfg.ClientOptions())
	if err != nil {
		return nil, fmt.Errorf("building http client: %w", err)
	}

	log := logrus.NewEntry(logger)
	fetcher := httputil.NewFetcher(client)
	resolver := resolve.New(fetcher, cfg.SourceTimeout.Duration, log)
	return pipeline.New(registry, fetcher, resolver, cfg.PipelineOptions(), log), nil
}
