// Package track runs the extract-validate-merge loop over a list of
// conference editions and records what changed between runs.
package track

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"conftrack/internal/extract"
	"conftrack/internal/record"
	"conftrack/internal/store"
)

// Target names one conference edition to track.
type Target struct {
	Conference string
	Year       int
}

func (t Target) String() string {
	return fmt.Sprintf("%s %d", t.Conference, t.Year)
}

// Key returns the store key for this target.
func (t Target) Key() string {
	return record.Key(t.Conference, t.Year)
}

// Discoverer finds the official website for a conference edition.
type Discoverer interface {
	Discover(ctx context.Context, conference string, year int) (string, error)
}

// Fetcher retrieves the cleaned text of a conference site.
type Fetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// Failure describes one target the run could not complete.
type Failure struct {
	Target Target
	Reason string
}

// Change pairs a target with what merging it altered.
type Change struct {
	Target Target
	Set    ChangeSet
}

// Summary tallies a tracking run.
type Summary struct {
	RunID     string
	Succeeded int
	New       int
	Changed   int
	Skipped   int
	Failures  []Failure
	Changes   []Change
}

// Failed returns the failure count.
func (s *Summary) Failed() int {
	return len(s.Failures)
}

// Tracker drives the pipeline: discover URL, fetch text, extract a
// record, diff it against the store, merge, log changes.
type Tracker struct {
	discoverer Discoverer
	fetcher    Fetcher
	extractor  extract.Extractor
	store      *store.Store
	changes    *ChangeLog
	logger     *zap.Logger
	now        func() time.Time

	// Force lets an automatic run replace manual entries. Off by
	// default: a human-entered record outranks a scraper.
	Force bool
}

// New wires a tracker from its collaborators.
func New(d Discoverer, f Fetcher, e extract.Extractor, s *store.Store, changes *ChangeLog, logger *zap.Logger) *Tracker {
	return &Tracker{
		discoverer: d,
		fetcher:    f,
		extractor:  e,
		store:      s,
		changes:    changes,
		logger:     logger,
		now:        time.Now,
	}
}

// Run processes every target sequentially. Individual failures are
// logged and tallied, never fatal; the loop only stops when ctx is
// cancelled.
func (t *Tracker) Run(ctx context.Context, targets []Target) (*Summary, error) {
	summary := &Summary{RunID: uuid.NewString()}
	logger := t.logger.With(zap.String("run_id", summary.RunID))

	logger.Info("starting tracking run",
		zap.Int("targets", len(targets)),
		zap.String("extractor", t.extractor.Name()))

	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		changes, err := t.Track(ctx, target)
		if err != nil {
			logger.Warn("skipping conference",
				zap.String("conference", target.String()),
				zap.String("reason", err.Error()))
			summary.Failures = append(summary.Failures, Failure{Target: target, Reason: err.Error()})
			continue
		}
		if changes == nil {
			summary.Skipped++
			continue
		}

		summary.Succeeded++
		if changes.IsNew {
			summary.New++
		}
		if changes.DeadlineChanged || changes.URLChanged {
			summary.Changed++
		}
		if changes.IsNew || changes.DeadlineChanged || changes.URLChanged {
			summary.Changes = append(summary.Changes, Change{Target: target, Set: *changes})
		}
	}

	logger.Info("tracking run finished",
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed()),
		zap.Int("new", summary.New),
		zap.Int("changed", summary.Changed),
		zap.Int("skipped", summary.Skipped))
	return summary, nil
}

// Track processes one conference edition end to end and merges the
// result. It returns nil changes when the target was deliberately
// left alone (manual override).
func (t *Tracker) Track(ctx context.Context, target Target) (*ChangeSet, error) {
	url, err := t.discoverer.Discover(ctx, target.Conference, target.Year)
	if err != nil {
		return nil, fmt.Errorf("discovery: %w", err)
	}

	text, err := t.fetcher.FetchText(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	rec, err := t.extractor.Extract(ctx, extract.Page{
		Conference: target.Conference,
		Year:       target.Year,
		URL:        url,
		Text:       text,
	})
	if err != nil {
		return nil, err
	}
	if !rec.HasDeadline() {
		return nil, fmt.Errorf("%w: no submission deadline found on %s", extract.ErrExtractionFailed, url)
	}

	return t.Merge(target, *rec)
}

// Merge diffs rec against the stored record under the target's key,
// writes it, and appends any changes to the change log. A stored
// manual record blocks the merge unless Force is set; that case
// returns (nil, nil).
func (t *Tracker) Merge(target Target, rec record.Record) (*ChangeSet, error) {
	key := target.Key()
	var changes ChangeSet

	skipped := false
	err := t.store.Update(func(db map[string]record.Record) error {
		old, exists := db[key]
		if exists && old.IsManual() && !t.Force {
			t.logger.Info("keeping manual entry",
				zap.String("key", key))
			skipped = true
			return nil
		}

		if exists {
			changes = Diff(&old, rec)
		} else {
			changes = Diff(nil, rec)
		}
		db[key] = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	if skipped {
		return nil, nil
	}

	if t.changes != nil && (changes.IsNew || changes.DeadlineChanged || changes.URLChanged) {
		if err := t.changes.Append(target.String(), changes, t.now()); err != nil {
			t.logger.Warn("failed to append change log", zap.Error(err))
		}
	}
	return &changes, nil
}
