package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// How often the store is re-checked while watching. The displayed timer
// itself is recomputed every second from the recorded start time and is
// never the source of truth for the persisted duration.
const watchRefreshInterval = 15 * time.Second

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live elapsed-time display for the running session",
	Long: `Show a once-per-second elapsed timer for the running session. The
display stops cleanly when the session is stopped elsewhere or on Ctrl-C.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	_, repo, sessionService, _, err := openServices()
	if err != nil {
		return err
	}
	defer func() {
		_ = repo.Close()
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session, err := sessionService.Current(ctx)
	if err != nil {
		return err
	}
	if session == nil {
		fmt.Println("No session running")
		return nil
	}

	if session.Note != "" {
		fmt.Printf("Watching session %d: %s\n", session.ID, session.Note)
	} else {
		fmt.Printf("Watching session %d\n", session.ID)
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	refresh := time.NewTicker(watchRefreshInterval)
	defer refresh.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Println()
			return nil
		case <-refresh.C:
			current, err := sessionService.Current(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			if current == nil || current.ID != session.ID {
				fmt.Println("\nSession stopped")
				return nil
			}
		case <-ticker.C:
			elapsed := time.Since(session.StartTime).Truncate(time.Second)
			fmt.Printf("\r%s", formatElapsed(elapsed))
		}
	}
}

// formatElapsed renders a duration as HH:MM:SS.
func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
