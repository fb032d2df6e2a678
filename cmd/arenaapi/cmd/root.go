package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/promptartclash/arena/cmd/arenaapi/cmd/users"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/config"
)

var (
	cfg        *config.Config
	logger     *zap.Logger
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "arenaapi",
	Short: "Prompt Art Clash arena server",
	Long: `arenaapi serves the Prompt Art Clash arena: role-gated pages for hosts and
participants, the JSON API behind them and the live leaderboard stream.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configFile != "" {
			viper.SetConfigFile(configFile)
			if err := viper.ReadInConfig(); err != nil {
				return fmt.Errorf("read config file %s: %w", configFile, err)
			}
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		logger, err = newLogger(cfg.Debug)
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Path to a config file (yaml, toml or json)")
	flags.String("db-url", "", "Database connection URL (env: ARENA_DATABASE_URL)")
	flags.String("server-addr", "", "Server bind address (env: ARENA_SERVER_ADDR)")
	flags.String("server-url", "", "Public base URL of the server (env: ARENA_SERVER_URL)")
	flags.String("generator-url", "", "Image generation backend URL (env: ARENA_GENERATOR_URL)")
	flags.Bool("debug", false, "Enable debug logging (env: ARENA_DEBUG)")

	for key, flag := range map[string]string{
		"database_url":  "db-url",
		"server_addr":   "server-addr",
		"server_url":    "server-url",
		"generator_url": "generator-url",
		"debug":         "debug",
	} {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(users.UsersCmd)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
