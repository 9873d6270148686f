package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/neilberkman/locscope/internal/core/db"
	"github.com/neilberkman/locscope/internal/core/watcher"
)

var watchLabel string

var watchCmd = &cobra.Command{
	Use:   "watch [loc.csv|dir]",
	Short: "Re-import loc.csv whenever it changes",
	Long: `Watch a loc.csv (or every .csv in a directory) and import it as a new
dataset each time it is written. Unchanged content is skipped.

Without arguments the configured data_path is watched. Stop with Ctrl+C.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchLabel, "label", "", "Dataset label (default: file name)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	path := cfg.DataPath
	if len(args) == 1 {
		path = args[0]
	}

	database, err := db.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		_ = database.Close()
	}()

	w, err := watcher.New(database, path, watcher.Options{Label: watchLabel}, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Watching %s (Ctrl+C to stop)\n", path)
	if err := w.Run(ctx); err != nil {
		return err
	}

	s := w.Stats()
	fmt.Printf("\nImported %s, skipped %s, %d errors in %s\n",
		humanize.Comma(int64(s.Imported)), humanize.Comma(int64(s.Skipped)), s.Errors,
		time.Since(s.StartTime).Round(time.Second))
	return nil
}
