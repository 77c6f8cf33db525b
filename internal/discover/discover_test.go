package discover

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"conftrack/internal/record"
)

func TestKnownVenues(t *testing.T) {
	s := New(time.Second, zap.NewNop())

	tests := []struct {
		conference string
		year       int
		want       string
	}{
		{"ISCA", 2026, "https://iscaconf.org/isca2026"},
		{"isca", 2026, "https://iscaconf.org/isca2026"},
		{"MICRO", 2026, "https://microarch.org/micro59"},
		{"OSDI", 2026, "https://www.usenix.org/conference/osdi26"},
		{"DAC", 2030, "https://www.dac.com"},
		{"CGO", 2026, "https://2026.cgo.org"},
	}
	for _, tt := range tests {
		got, err := s.Discover(context.Background(), tt.conference, tt.year)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.conference)
	}
}

func searchResponse(targets ...string) string {
	body := "<html><body>"
	for _, target := range targets {
		body += `<a class="result__a" href="//duckduckgo.com/l/?uddg=` +
			url.QueryEscape(target) + `&amp;rut=abc123">result</a>`
	}
	return body + "</body></html>"
}

func newSearchTest(t *testing.T, body string) *Searcher {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	s := New(time.Second, zap.NewNop())
	s.searchURL = srv.URL
	return s
}

func TestSearchReturnsFirstAcceptableResult(t *testing.T) {
	s := newSearchTest(t, searchResponse(
		"https://en.wikipedia.org/wiki/Some_conference",
		"https://someconf2026.org/cfp.pdf",
		"https://someconf2026.org",
	))

	got, err := s.Discover(context.Background(), "SOMECONF", 2026)
	require.NoError(t, err)
	assert.Equal(t, "https://someconf2026.org", got)
}

func TestSearchSkipsSocialMedia(t *testing.T) {
	s := newSearchTest(t, searchResponse(
		"https://twitter.com/someconf",
		"https://www.youtube.com/someconf",
	))

	_, err := s.Discover(context.Background(), "SOMECONF", 2026)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearchNoResults(t *testing.T) {
	s := newSearchTest(t, "<html><body>no results</body></html>")

	_, err := s.Discover(context.Background(), "OBSCURE", 2026)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogueUntracked(t *testing.T) {
	db := map[string]record.Record{
		"ISCA_2026": {Name: "ISCA 2026"},
		"DAC_2026":  {Name: "DAC 2026"},
		"ISCA_2025": {Name: "ISCA 2025"},
	}

	venues := Untracked(db, 2026)
	acronyms := make([]string, 0, len(venues))
	for _, v := range venues {
		acronyms = append(acronyms, v.Acronym)
	}
	assert.NotContains(t, acronyms, "ISCA")
	assert.NotContains(t, acronyms, "DAC")
	assert.Contains(t, acronyms, "MICRO")

	// A different year is a different edition.
	venues = Untracked(db, 2025)
	acronyms = acronyms[:0]
	for _, v := range venues {
		acronyms = append(acronyms, v.Acronym)
	}
	assert.NotContains(t, acronyms, "ISCA")
	assert.Contains(t, acronyms, "DAC")
}

func TestCatalogueCategories(t *testing.T) {
	cats := Categories()
	assert.Contains(t, cats, "Architecture")
	assert.Contains(t, cats, "Design Automation")
	assert.True(t, sort.StringsAreSorted(cats))

	grouped := ByCategory()
	assert.NotEmpty(t, grouped["FPGA"])
}

func TestParseResultURLs(t *testing.T) {
	body := searchResponse("https://a.example.org/page?x=1", "https://b.example.org")
	urls := parseResultURLs(body)
	require.Len(t, urls, 2)
	assert.Equal(t, "https://a.example.org/page?x=1", urls[0])
	assert.Equal(t, "https://b.example.org", urls[1])
}
