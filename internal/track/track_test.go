package track

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"conftrack/internal/extract"
	"conftrack/internal/record"
	"conftrack/internal/store"
)

type fakeDiscoverer struct {
	urls map[string]string
}

func (d *fakeDiscoverer) Discover(ctx context.Context, conference string, year int) (string, error) {
	url, ok := d.urls[fmt.Sprintf("%s %d", conference, year)]
	if !ok {
		return "", errors.New("no website found")
	}
	return url, nil
}

type fakeFetcher struct {
	pages map[string]string
}

func (f *fakeFetcher) FetchText(ctx context.Context, url string) (string, error) {
	text, ok := f.pages[url]
	if !ok {
		return "", errors.New("connection refused")
	}
	return text, nil
}

// fakeExtractor returns a canned record per conference title.
type fakeExtractor struct {
	records map[string]record.Record
}

func (e *fakeExtractor) Name() string { return "fake" }

func (e *fakeExtractor) Extract(ctx context.Context, page extract.Page) (*record.Record, error) {
	rec, ok := e.records[page.Title()]
	if !ok {
		return nil, extract.ErrExtractionFailed
	}
	rec.URL = page.URL
	return &rec, nil
}

func newTestTracker(t *testing.T) (*Tracker, *store.Store, string) {
	t.Helper()
	dir := t.TempDir()
	s := store.New(filepath.Join(dir, "conferences.json"), zap.NewNop())
	logPath := filepath.Join(dir, "changes.log")

	tr := New(
		&fakeDiscoverer{urls: map[string]string{
			"ISCA 2026": "https://iscaconf.org/isca2026",
			"DAC 2026":  "https://dac.com",
		}},
		&fakeFetcher{pages: map[string]string{
			"https://iscaconf.org/isca2026": "Paper deadline: March 15, 2026",
			"https://dac.com":               "Paper deadline: November 17, 2025",
		}},
		&fakeExtractor{records: map[string]record.Record{
			"ISCA 2026": {
				Name:            "ISCA 2026",
				PaperDeadline:   record.NewDeadline("March 15, 2026"),
				ExtractedWithAI: true,
				AIModel:         "fake",
			},
			"DAC 2026": {
				Name:            "DAC 2026",
				PaperDeadline:   record.NewDeadline("November 17, 2025"),
				ExtractedWithAI: true,
				AIModel:         "fake",
			},
		}},
		s,
		NewChangeLog(logPath),
		zap.NewNop(),
	)
	tr.now = func() time.Time { return time.Date(2025, time.December, 1, 9, 30, 0, 0, time.UTC) }
	return tr, s, logPath
}

func TestDiff(t *testing.T) {
	oldRec := record.Record{
		URL:           "https://iscaconf.org/isca2026",
		PaperDeadline: record.NewDeadline("March 15, 2026"),
	}

	t.Run("new record", func(t *testing.T) {
		c := Diff(nil, oldRec)
		assert.True(t, c.IsNew)
		assert.False(t, c.DeadlineChanged)
	})

	t.Run("no change", func(t *testing.T) {
		c := Diff(&oldRec, oldRec)
		assert.False(t, c.IsNew)
		assert.False(t, c.DeadlineChanged)
		assert.False(t, c.URLChanged)
	})

	t.Run("deadline moved", func(t *testing.T) {
		updated := oldRec
		updated.PaperDeadline = record.NewDeadline("March 22, 2026")
		c := Diff(&oldRec, updated)
		assert.True(t, c.DeadlineChanged)
		assert.Equal(t, "March 15, 2026", c.OldDeadline.Date)
		assert.Equal(t, "March 22, 2026", c.NewDeadline.Date)
	})

	t.Run("url moved", func(t *testing.T) {
		updated := oldRec
		updated.URL = "https://isca2026.org"
		c := Diff(&oldRec, updated)
		assert.True(t, c.URLChanged)
		assert.Equal(t, "https://isca2026.org", c.NewURL)
	})

	t.Run("track added is a deadline change", func(t *testing.T) {
		tracked := oldRec
		tracked.PaperDeadline = record.NewTrackedDeadline(map[string]string{
			"main": "March 15, 2026",
		})
		c := Diff(&oldRec, tracked)
		assert.True(t, c.DeadlineChanged)
	})
}

func TestRunHappyPath(t *testing.T) {
	tr, s, logPath := newTestTracker(t)

	summary, err := tr.Run(context.Background(), []Target{
		{Conference: "ISCA", Year: 2026},
		{Conference: "DAC", Year: 2026},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 2, summary.New)
	assert.Equal(t, 0, summary.Failed())
	assert.NotEmpty(t, summary.RunID)
	require.Len(t, summary.Changes, 2)
	assert.True(t, summary.Changes[0].Set.IsNew)

	db, err := s.Load()
	require.NoError(t, err)
	assert.Contains(t, db, "ISCA_2026")
	assert.Contains(t, db, "DAC_2026")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "NEW: ISCA 2026 discovered")
	assert.Contains(t, string(data), "[2025-12-01 09:30:00]")
}

func TestRunSkipsFailuresAndContinues(t *testing.T) {
	tr, s, _ := newTestTracker(t)

	summary, err := tr.Run(context.Background(), []Target{
		{Conference: "NOSUCH", Year: 2026}, // discovery fails
		{Conference: "ISCA", Year: 2026},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Succeeded)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, "NOSUCH", summary.Failures[0].Target.Conference)
	assert.Contains(t, summary.Failures[0].Reason, "discovery")

	db, err := s.Load()
	require.NoError(t, err)
	assert.Contains(t, db, "ISCA_2026")
}

func TestRunLogsDeadlineChange(t *testing.T) {
	tr, s, logPath := newTestTracker(t)
	require.NoError(t, s.Upsert("ISCA_2026", record.Record{
		Name:            "ISCA 2026",
		URL:             "https://iscaconf.org/isca2026",
		PaperDeadline:   record.NewDeadline("March 1, 2026"),
		ExtractedWithAI: true,
		AIModel:         "fake",
	}))

	summary, err := tr.Run(context.Background(), []Target{{Conference: "ISCA", Year: 2026}})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Changed)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "DEADLINE CHANGE: ISCA 2026: March 1, 2026 -> March 15, 2026")
}

func TestRunKeepsManualEntries(t *testing.T) {
	tr, s, _ := newTestTracker(t)
	manual := record.Record{
		Name:          "ISCA 2026",
		PaperDeadline: record.NewDeadline("March 1, 2026"),
		AIModel:       record.ManualModel,
	}
	require.NoError(t, s.Upsert("ISCA_2026", manual))

	summary, err := tr.Run(context.Background(), []Target{{Conference: "ISCA", Year: 2026}})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Succeeded)

	rec, ok, err := s.Get("ISCA_2026")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "March 1, 2026", rec.PaperDeadline.Date)
}

func TestRunForceReplacesManualEntries(t *testing.T) {
	tr, s, _ := newTestTracker(t)
	tr.Force = true
	require.NoError(t, s.Upsert("ISCA_2026", record.Record{
		Name:          "ISCA 2026",
		PaperDeadline: record.NewDeadline("March 1, 2026"),
		AIModel:       record.ManualModel,
	}))

	_, err := tr.Run(context.Background(), []Target{{Conference: "ISCA", Year: 2026}})
	require.NoError(t, err)

	rec, _, err := s.Get("ISCA_2026")
	require.NoError(t, err)
	assert.Equal(t, "March 15, 2026", rec.PaperDeadline.Date)
}

func TestTrackRejectsRecordWithoutDeadline(t *testing.T) {
	tr, _, _ := newTestTracker(t)
	tr.extractor = &fakeExtractor{records: map[string]record.Record{
		"ISCA 2026": {
			Name:            "ISCA 2026",
			PaperDeadline:   record.NewDeadline(record.TBD),
			ExtractedWithAI: true,
		},
	}}

	_, err := tr.Track(context.Background(), Target{Conference: "ISCA", Year: 2026})
	require.Error(t, err)
	assert.ErrorIs(t, err, extract.ErrExtractionFailed)
}

func TestRunStopsOnCancel(t *testing.T) {
	tr, _, _ := newTestTracker(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := tr.Run(ctx, []Target{{Conference: "ISCA", Year: 2026}})
	require.Error(t, err)
	assert.Equal(t, 0, summary.Succeeded)
}
