package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"conftrack/internal/discover"
	"conftrack/internal/notify"
	"conftrack/internal/record"
	"conftrack/internal/store"
	"conftrack/internal/track"
)

var (
	trackForce  bool
	trackNotify bool
)

// trackCmd refreshes deadlines for tracked conferences
var trackCmd = &cobra.Command{
	Use:   "track [KEY...]",
	Short: "Refresh deadlines for tracked conferences",
	Long: `Runs the full pipeline for each conference: discover the official
website, fetch its text, extract deadline facts, validate them, and
merge into the database. Changes land in the change log.

Keys look like ISCA_2026. Without arguments every conference already
in the database is refreshed. Manual entries are kept unless --force
is given.`,
	RunE: runTrack,
}

func init() {
	trackCmd.Flags().BoolVar(&trackForce, "force", false, "Let extracted data replace manual entries")
	trackCmd.Flags().BoolVar(&trackNotify, "notify", false, "Email a digest of changes after the run")
}

func runTrack(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	st := newStore()
	targets, err := resolveTargets(st, args)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		fmt.Println("Nothing to track. Add conferences first (conftrack add).")
		return nil
	}

	extractor, err := newExtractor(ctx)
	if err != nil {
		return err
	}

	tracker := track.New(
		discover.New(cfg.GetFetchTimeout(), logger),
		newFetcher(),
		extractor,
		st,
		track.NewChangeLog(cfg.Store.ChangeLogPath),
		logger,
	)
	tracker.Force = trackForce

	summary, err := tracker.Run(ctx, targets)
	if err != nil {
		return err
	}
	printSummary(summary)

	if trackNotify && len(summary.Changes) > 0 {
		if err := sendDigest(ctx, st, summary); err != nil {
			return err
		}
	}
	return nil
}

// resolveTargets turns explicit keys into targets, or enumerates the
// whole database when none are given.
func resolveTargets(st *store.Store, keys []string) ([]track.Target, error) {
	if len(keys) == 0 {
		db, err := st.Load()
		if err != nil {
			return nil, err
		}
		all := make([]string, 0, len(db))
		for key := range db {
			all = append(all, key)
		}
		sort.Strings(all)
		keys = all
	}

	targets := make([]track.Target, 0, len(keys))
	for _, key := range keys {
		acronym, year, err := record.SplitKey(key)
		if err != nil {
			return nil, fmt.Errorf("invalid conference key %q (want ACRONYM_YEAR): %w", key, err)
		}
		targets = append(targets, track.Target{Conference: acronym, Year: year})
	}
	return targets, nil
}

func printSummary(summary *track.Summary) {
	fmt.Printf("Tracked %d conference(s): %d new, %d changed, %d skipped, %d failed\n",
		summary.Succeeded+summary.Skipped+summary.Failed(),
		summary.New, summary.Changed, summary.Skipped, summary.Failed())
	for _, f := range summary.Failures {
		fmt.Printf("  failed %s: %s\n", f.Target, f.Reason)
	}
}

// sendDigest emails the run's changes using the configured SMTP
// settings.
func sendDigest(ctx context.Context, st *store.Store, summary *track.Summary) error {
	db, err := st.Load()
	if err != nil {
		return err
	}

	changes := make([]notify.Change, 0, len(summary.Changes))
	for _, c := range summary.Changes {
		change := notify.Change{Conference: c.Target.Key(), Set: c.Set}
		if rec, ok := db[c.Target.Key()]; ok {
			change.Deadline = rec.PaperDeadline
		}
		changes = append(changes, change)
	}

	notifier := notify.New(cfg.Email.SMTPServer, cfg.Email.SMTPPort,
		cfg.Email.From, cfg.Email.Password, cfg.Email.To, logger)
	return notifier.NotifyChanges(ctx, changes, time.Now())
}
