package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/reachout/internal/config"
	logpkg "github.com/kailas-cloud/reachout/internal/logger"
	"github.com/kailas-cloud/reachout/internal/version"
)

var (
	envName    string
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "reachout",
	Short: "reachout finds the best way to reach a person in your network",
	Long: `reachout ranks connection strategies (mutual contacts, engagement,
company bridges, intermediaries, cold outreach) between a requester and
a target over a social graph.

Examples:
  reachout serve                          # Start the HTTP API
  reachout serve --config ./prod.yaml     # Use an explicit config file
  reachout seed --fixture network.yaml    # Load a fixture into Neo4j`,
	Version:      version.String(),
	SilenceUsage: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		// A missing .env is fine.
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envName, "env", "",
		"environment name used to locate config/<env>.yaml (default: $ENV or local)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"explicit config file path, overrides --env lookup")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
}

// loadConfig resolves the environment and reads its configuration.
func loadConfig() (string, config.Config, error) {
	env := envName
	if env == "" {
		env = config.GetEnv()
	}

	var (
		cfg config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return "", config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return env, cfg, nil
}

// bootstrap loads configuration and builds the process logger.
func bootstrap() (string, config.Config, *zap.Logger, error) {
	env, cfg, err := loadConfig()
	if err != nil {
		return "", config.Config{}, nil, err
	}
	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return "", config.Config{}, nil, fmt.Errorf("create logger: %w", err)
	}
	return env, cfg, logger, nil
}
