package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"conftrack/internal/csvio"
)

// importCmd loads manual entries from a CSV file
var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Sync manual conference entries from a CSV file",
	Long: `Reads a CSV of manual conference entries and reconciles the database
with it: rows are added or updated as manual records, and manual
records missing from the CSV are removed. Extracted records are never
touched by an import.

Columns (order-insensitive, extra columns ignored):
  conference_name, year, paper_deadline, url, submission_type,
  conference_date, abstract_deadline, location`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		added, removed, err := importCSV(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Imported %s: %d added/updated, %d removed\n", args[0], added, removed)
		return nil
	},
}

// exportCmd writes the database as CSV
var exportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Export the database to a CSV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := newStore().Load()
		if err != nil {
			return err
		}
		if err := csvio.WriteFile(args[0], db); err != nil {
			return err
		}
		fmt.Printf("Exported %d conference(s) to %s\n", len(db), args[0])
		return nil
	},
}

// watchCmd re-imports a CSV whenever it changes
var watchCmd = &cobra.Command{
	Use:   "watch FILE",
	Short: "Watch a CSV file and sync the database on every change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchCSV(cmd, args[0])
	},
}

func importCSV(path string) (added, removed int, err error) {
	rows, err := csvio.ReadFile(path)
	if err != nil {
		return 0, 0, err
	}
	return newStore().SyncFromCSV(csvio.Records(rows, time.Now()))
}

func watchCSV(cmd *cobra.Command, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors replace files on save, which drops
	// a watch set on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	if _, _, err := importCSV(path); err != nil {
		logger.Warn("initial import failed", zap.Error(err))
	}
	fmt.Printf("Watching %s (Ctrl-C to stop)\n", path)

	var debounce *time.Timer
	events := make(chan struct{}, 1)
	ctx := cmd.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-watcher.Errors:
			logger.Warn("watch error", zap.Error(err))
		case ev := <-watcher.Events:
			if filepath.Clean(ev.Name) != filepath.Clean(path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Coalesce the burst of events a single save produces.
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(500*time.Millisecond, func() {
				select {
				case events <- struct{}{}:
				default:
				}
			})
		case <-events:
			added, removed, err := importCSV(path)
			if err != nil {
				logger.Warn("import failed", zap.Error(err))
				continue
			}
			logger.Info("csv synced",
				zap.Int("added", added),
				zap.Int("removed", removed))
			fmt.Printf("Synced %s: %d added/updated, %d removed\n", path, added, removed)
		}
	}
}
