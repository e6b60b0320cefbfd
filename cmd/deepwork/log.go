package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the recent session log",
	RunE:  runLog,
}

func init() {
	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, args []string) error {
	_, repo, _, historyService, err := openServices()
	if err != nil {
		return err
	}
	defer func() {
		_ = repo.Close()
	}()

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	entries, err := historyService.RecentLog(ctx)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("No sessions recorded yet")
		return nil
	}

	for _, entry := range entries {
		line := fmt.Sprintf("Completed %s of deep work, %s", entry.DurationText, entry.TimeAgo)
		if entry.Note != "" {
			line += fmt.Sprintf(" (%s)", entry.Note)
		}
		fmt.Println(line)
	}
	return nil
}
