// Command tpcf reports on a Tanzu Platform for Cloud Foundry
// foundation: per-organization usage totals, stale applications, and
// UAA group memberships.
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/logankimmel/tpcf-automation/internal/config"
	"github.com/logankimmel/tpcf-automation/pkg/client"
	"github.com/logankimmel/tpcf-automation/pkg/join"
	"github.com/logankimmel/tpcf-automation/pkg/logging"
)

var (
	cfgFile      string
	logLevelFlag string
	prettyLogs   bool
)

var rootCmd = &cobra.Command{
	Use:           "tpcf",
	Short:         "Reporting tools for a Tanzu Platform for CF foundation",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "tpcf.yaml", "path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "override the configured log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&prettyLogs, "pretty", false, "human-readable log output")

	rootCmd.AddCommand(usageSummaryCmd)
	rootCmd.AddCommand(staleAppsCmd)
	rootCmd.AddCommand(groupAuditCmd)
}

// Execute runs the root command. Errors print to stderr and exit 1.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the configuration and configures the global logger with
// a run correlation id. Every subcommand calls it first.
func setup() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, zerolog.Nop(), err
	}

	level := cfg.LogLevel
	if logLevelFlag != "" {
		level = logLevelFlag
	}

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(level),
		Pretty: prettyLogs,
	})
	logger = logger.With().Str("run_id", uuid.NewString()).Logger()

	return cfg, logger, nil
}

// newPlatformClient builds the Cloud Controller client from the
// configuration. Redis wiring is optional.
func newPlatformClient(cfg *config.Config) (*client.Client, error) {
	clientCfg := client.DefaultConfig(cfg.APIURL, &client.CLITokenSource{Path: cfg.CFPath})
	if cfg.RedisAddr != "" {
		clientCfg.Redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}
	return client.New(clientCfg)
}

func joinOptions(cfg *config.Config) []join.Option {
	if cfg.StrictJoins {
		return []join.Option{join.Strict()}
	}
	return nil
}
