// Package discover resolves a conference acronym and year to the
// edition's official website. Well-known venues resolve through a
// curated URL table; everything else falls back to a DuckDuckGo HTML
// search with domain filtering.
package discover

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ErrNotFound means no plausible website came back for the venue.
var ErrNotFound = errors.New("no conference website found")

// knownURL builds the official site URL for venues whose hosting
// pattern is stable year over year.
var knownURLs = map[string]func(year int) string{
	// Architecture
	"ISCA":   func(y int) string { return fmt.Sprintf("https://iscaconf.org/isca%d", y) },
	"MICRO":  func(y int) string { return fmt.Sprintf("https://microarch.org/micro%d", y-1967) },
	"HPCA":   func(y int) string { return fmt.Sprintf("https://hpca-conf.org/%d", y) },
	"ASPLOS": func(y int) string { return fmt.Sprintf("https://asplos-conference.org/asplos%d", y) },
	"ICCD":   fixed("https://www.iccd-conf.com"),
	"ICS":    fixed("https://ics-conference.org"),
	"PACT":   fixed("https://pactconf.org"),
	"CGO":    func(y int) string { return fmt.Sprintf("https://%d.cgo.org", y) },

	// VLSI / circuits
	"ISSCC":   fixed("https://isscc.org"),
	"VLSI":    fixed("https://vlsisymposium.org"),
	"CICC":    fixed("https://ieee-cicc.org"),
	"ESSCIRC": func(y int) string { return fmt.Sprintf("https://www.esscirc-essderc%d.org", y) },
	"GLSVLSI": fixed("https://www.glsvlsi.org"),
	"ISCAS":   func(y int) string { return fmt.Sprintf("https://iscas%d.org", y) },

	// Design automation
	"DAC":    fixed("https://www.dac.com"),
	"ICCAD":  fixed("https://iccad.com"),
	"DATE":   fixed("https://www.date-conference.com"),
	"ASPDAC": func(y int) string { return fmt.Sprintf("https://www.aspdac.com/aspdac%d", y) },
	"ISPD":   fixed("https://ispd.cc"),

	// FPGA
	"FPGA": fixed("https://www.isfpga.org"),
	"FCCM": fixed("https://www.fccm.org"),

	// Systems
	"SOSP":    func(y int) string { return fmt.Sprintf("https://sigops.org/s/conferences/sosp/%d", y) },
	"OSDI":    func(y int) string { return fmt.Sprintf("https://www.usenix.org/conference/osdi%d", y%100) },
	"EUROSYS": func(y int) string { return fmt.Sprintf("https://%d.eurosys.org", y) },

	// Test
	"ITC": fixed("https://www.itctestweek.org"),
	"VTS": fixed("https://tttc-vts.org"),

	// Security
	"HOST": fixed("https://www.hostsymposium.org"),
	"CHES": func(y int) string { return fmt.Sprintf("https://ches.iacr.org/%d", y) },

	// Other
	"ISQED":  fixed("https://www.isqed.org"),
	"ISLPED": fixed("https://islped.org"),
}

func fixed(url string) func(int) string {
	return func(int) string { return url }
}

// skipDomains never host an official conference site worth scraping.
var skipDomains = []string{
	".pdf",
	"wikipedia.org",
	"wikicfp.com",
	"conferencealerts.com",
	"conferenceindex.org",
	"guide2research.com",
	"twitter.com",
	"facebook.com",
	"linkedin.com",
	"youtube.com",
}

// Searcher finds official conference websites.
type Searcher struct {
	http   *resty.Client
	logger *zap.Logger

	searchURL string
}

// New builds a searcher with the given per-request timeout.
func New(timeout time.Duration, logger *zap.Logger) *Searcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Searcher{
		http: resty.New().
			SetTimeout(timeout).
			SetHeader("User-Agent", "Mozilla/5.0"),
		logger:    logger,
		searchURL: "https://html.duckduckgo.com/html/",
	}
}

// Discover resolves a venue to its website URL. Known venues skip the
// web search entirely.
func (s *Searcher) Discover(ctx context.Context, conference string, year int) (string, error) {
	if build, ok := knownURLs[strings.ToUpper(conference)]; ok {
		url := build(year)
		s.logger.Debug("using known site",
			zap.String("conference", conference),
			zap.String("url", url))
		return url, nil
	}
	return s.search(ctx, conference, year)
}

// search runs a DuckDuckGo HTML search and returns the first result
// that survives the domain filter.
func (s *Searcher) search(ctx context.Context, conference string, year int) (string, error) {
	query := fmt.Sprintf("%s %d conference official website", conference, year)
	resp, err := s.http.R().
		SetContext(ctx).
		SetQueryParam("q", query).
		Get(s.searchURL)
	if err != nil {
		return "", fmt.Errorf("search for %s %d: %w", conference, year, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("search for %s %d: status %d", conference, year, resp.StatusCode())
	}

	for _, candidate := range parseResultURLs(string(resp.Body())) {
		if acceptable(candidate) {
			s.logger.Debug("search hit",
				zap.String("conference", conference),
				zap.String("url", candidate))
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %s %d", ErrNotFound, conference, year)
}

// parseResultURLs pulls result links out of the DuckDuckGo HTML
// response. Result hrefs carry the target in a uddg= parameter.
func parseResultURLs(body string) []string {
	var urls []string
	rest := body
	for {
		idx := strings.Index(rest, "uddg=")
		if idx < 0 {
			break
		}
		rest = rest[idx+len("uddg="):]
		end := strings.IndexAny(rest, `"&`)
		if end < 0 {
			end = len(rest)
		}
		if decoded, err := url.QueryUnescape(rest[:end]); err == nil && strings.HasPrefix(decoded, "http") {
			urls = append(urls, decoded)
		}
	}
	return urls
}

func acceptable(candidate string) bool {
	lower := strings.ToLower(candidate)
	for _, bad := range skipDomains {
		if strings.Contains(lower, bad) {
			return false
		}
	}
	return true
}
