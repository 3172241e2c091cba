package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Matheus-Salgado02/cinelist/config"
	"github.com/Matheus-Salgado02/cinelist/logging"
)

const Version = "1.0.0"

var (
	configPath string
	logLevel   string

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "cinelist",
		Short: "movie watchlist and review backend",
		Long: fmt.Sprintf(`cinelist (v%s)

Accounts, watchlists and reviews on MongoDB, plus a proxy to the TMDB catalog.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of cinelist",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cinelist v%s\n", Version)
		},
	}
)

func init() {
	RootCmd.AddCommand(serveCmd)
	RootCmd.AddCommand(maintenanceCmd)
	RootCmd.AddCommand(versionCmd)

	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (overrides "+config.ConfigPathEnvVar+")")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides LOG_LEVEL")
}

// loadConfig resolves configuration and initializes the global logger.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		if err := os.Setenv(config.ConfigPathEnvVar, configPath); err != nil {
			return nil, err
		}
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	for _, w := range cfg.Warnings() {
		logging.Warn().Msg(w)
	}
	return cfg, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
