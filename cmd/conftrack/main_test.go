package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"conftrack/internal/discover"
	"conftrack/internal/extract"
	"conftrack/internal/record"
	"conftrack/internal/store"
)

func TestResolveTargets(t *testing.T) {
	st := store.New(filepath.Join(t.TempDir(), "db.json"), zap.NewNop())
	require.NoError(t, st.Upsert("ISCA_2026", record.Record{Name: "ISCA 2026"}))
	require.NoError(t, st.Upsert("DAC_2026", record.Record{Name: "DAC 2026"}))

	t.Run("defaults to whole database", func(t *testing.T) {
		targets, err := resolveTargets(st, nil)
		require.NoError(t, err)
		require.Len(t, targets, 2)
		assert.Equal(t, "DAC", targets[0].Conference)
		assert.Equal(t, 2026, targets[0].Year)
		assert.Equal(t, "ISCA", targets[1].Conference)
	})

	t.Run("explicit keys", func(t *testing.T) {
		targets, err := resolveTargets(st, []string{"HPCA_2027"})
		require.NoError(t, err)
		require.Len(t, targets, 1)
		assert.Equal(t, "HPCA", targets[0].Conference)
		assert.Equal(t, 2027, targets[0].Year)
	})

	t.Run("malformed key", func(t *testing.T) {
		_, err := resolveTargets(st, []string{"badkey"})
		assert.Error(t, err)
	})
}

type stubDiscoverer struct{ urls map[string]string }

func (d stubDiscoverer) Discover(_ context.Context, conference string, _ int) (string, error) {
	url, ok := d.urls[conference]
	if !ok {
		return "", errors.New("no website found")
	}
	return url, nil
}

type stubFetcher struct{ text string }

func (f stubFetcher) FetchText(context.Context, string) (string, error) {
	return f.text, nil
}

type stubExtractor struct{ rec record.Record }

func (e stubExtractor) Extract(context.Context, extract.Page) (*record.Record, error) {
	rec := e.rec
	return &rec, nil
}

func (e stubExtractor) Name() string { return "stub" }

func TestExtractSuggestionsKeepsTBD(t *testing.T) {
	logger = zap.NewNop()
	st := store.New(filepath.Join(t.TempDir(), "db.json"), zap.NewNop())

	venues := []discover.Venue{
		{Acronym: "MICRO", Name: "International Symposium on Microarchitecture"},
		{Acronym: "HPCA", Name: "High-Performance Computer Architecture"},
	}
	d := stubDiscoverer{urls: map[string]string{"MICRO": "https://microarch.org/micro59/"}}
	e := stubExtractor{rec: record.Record{
		Name:            "MICRO 2026",
		URL:             "https://microarch.org/micro59/",
		PaperDeadline:   record.NewDeadline(record.TBD),
		ExtractedWithAI: true,
		AIModel:         "llama3.2",
	}}

	extracted, placeholders, err := extractSuggestions(context.Background(), d,
		stubFetcher{text: "call for papers coming soon"}, e, st, venues, 2026, time.Now)
	require.NoError(t, err)
	assert.Equal(t, 1, extracted)
	assert.Equal(t, 1, placeholders)

	db, err := st.Load()
	require.NoError(t, err)

	// An extraction that found the page but no deadline yet is kept,
	// TBD and all, rather than discarded like a tracking run would.
	micro, ok := db["MICRO_2026"]
	require.True(t, ok)
	assert.Equal(t, record.TBD, micro.PaperDeadline.Date)
	assert.Equal(t, "llama3.2", micro.AIModel)
	assert.NotEmpty(t, micro.LastChecked)

	// A venue with no discoverable site degrades to a manual placeholder.
	hpca, ok := db["HPCA_2026"]
	require.True(t, ok)
	assert.Equal(t, record.TBD, hpca.PaperDeadline.Date)
	assert.True(t, hpca.IsManual())
	assert.Empty(t, hpca.URL)
}

func TestFixedDiscoverer(t *testing.T) {
	d := fixedDiscoverer{url: "https://iscaconf.org/isca2026/"}
	url, err := d.Discover(context.Background(), "ISCA", 2026)
	require.NoError(t, err)
	assert.Equal(t, "https://iscaconf.org/isca2026/", url)
}
