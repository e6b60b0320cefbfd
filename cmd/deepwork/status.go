package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a session is running",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	_, repo, sessionService, _, err := openServices()
	if err != nil {
		return err
	}
	defer func() {
		_ = repo.Close()
	}()

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	session, err := sessionService.Current(ctx)
	if err != nil {
		return err
	}

	if session == nil {
		fmt.Println("No session running")
		return nil
	}

	elapsed := time.Since(session.StartTime).Truncate(time.Second)
	fmt.Printf("Running for %s (started %s)\n", formatElapsed(elapsed), session.StartTime.Local().Format("2006-01-02 15:04:05"))
	if session.Note != "" {
		fmt.Printf("Note: %s\n", session.Note)
	}
	return nil
}
