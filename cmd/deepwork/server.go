package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"deepwork/internal/logging"
	"deepwork/internal/metrics"
	"deepwork/internal/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the deepwork HTTP server",
	Long:  `Start the HTTP/JSON API server for session tracking, the heatmap, and the activity log.`,
	RunE:  runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, repo, sessionService, historyService, err := openServices()
	if err != nil {
		return err
	}
	defer func() {
		_ = repo.Close()
	}()

	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	logger.Info().
		Str("version", version).
		Str("database", cfg.DatabasePath()).
		Msg("Starting deepwork")

	metrics.Register()

	srv := server.NewServer(server.Config{
		ListenAddr: cfg.ListenAddr(),
	}, sessionService, historyService, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
