package main

import (
	"fmt"
	"os"

	"deepwork/internal/config"
	apperrors "deepwork/internal/errors"
	"deepwork/internal/repository/sqlite"
	"deepwork/internal/services"

	"github.com/spf13/cobra"
)

var (
	version    = "dev"
	configPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "deepwork",
	Short: "deepwork - personal deep work session tracker",
	Long: `deepwork tracks focused work sessions: start one, stop it, and build
up a calendar heatmap of your history. Sessions are stored in a local
SQLite database and served over an HTTP/JSON API.`,
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default to server command when no subcommand is provided
		return runServer(cmd, args)
	},
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// Errors are reported with their user-facing message; internals stay in logs.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", apperrors.GetUserMessage(err))
		os.Exit(1)
	}
}

// openServices loads configuration and wires the repository and services
// used by the local commands and the server.
func openServices() (*config.Config, sqlite.Repository, services.SessionService, services.HistoryService, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := cfg.EnsureDatabaseDir(); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	repo, err := sqlite.New(cfg.DatabasePath())
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	sessionService := services.NewSessionService(repo)
	historyService := services.NewHistoryService(sessionService)

	return cfg, repo, sessionService, historyService, nil
}
