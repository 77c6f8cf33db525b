// Package fetch retrieves conference websites and reduces them to
// plain text suitable for deadline extraction. Deadlines hide on
// subpages as often as on the landing page, so fetching fans out over
// the usual CFP paths and concatenates whatever answers.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrSourceUnavailable wraps transport failures and non-2xx answers.
var ErrSourceUnavailable = errors.New("source unavailable")

// maxTextLen caps extracted page text. Local models have small
// context windows and deadlines sit near the top of pages anyway.
const maxTextLen = 6000

// subpagePaths are appended to the conference base URL when hunting
// for deadline pages.
var subpagePaths = []string{
	"/cfp/",
	"/cfp",
	"/call-for-papers/",
	"/call-for-papers",
	"/important-dates/",
	"/important-dates",
	"/submissions/",
	"/submissions",
}

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Client fetches conference pages over plain HTTP.
type Client struct {
	http   *resty.Client
	logger *zap.Logger

	// SubpageLimit bounds concurrent subpage fetches.
	SubpageLimit int
}

// New builds a fetch client with the given per-request timeout.
func New(timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second)

	return &Client{
		http:         client,
		logger:       logger,
		SubpageLimit: 4,
	}
}

// FetchText fetches a single URL and returns its cleaned text.
func (c *Client) FetchText(ctx context.Context, url string) (string, error) {
	html, err := c.fetchHTML(ctx, url)
	if err != nil {
		return "", err
	}
	return ExtractText(html, maxTextLen), nil
}

// FetchAllText fetches the base URL plus the common CFP subpages and
// concatenates whatever responded, each section labeled with its
// source URL. Subpage failures are silently skipped; only a dead main
// page is an error.
func (c *Client) FetchAllText(ctx context.Context, baseURL string) (string, error) {
	main, err := c.fetchHTML(ctx, baseURL)
	if err != nil {
		return "", err
	}

	type section struct {
		url  string
		text string
	}
	sections := make([]section, 0, len(subpagePaths))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.SubpageLimit)
	base := strings.TrimRight(baseURL, "/")
	for _, path := range subpagePaths {
		url := base + path
		g.Go(func() error {
			html, err := c.fetchHTML(gctx, url)
			if err != nil {
				c.logger.Debug("subpage skipped",
					zap.String("url", url),
					zap.Error(err))
				return nil
			}
			mu.Lock()
			sections = append(sections, section{url: url, text: ExtractText(html, maxTextLen)})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	sort.Slice(sections, func(i, j int) bool { return sections[i].url < sections[j].url })

	var b strings.Builder
	fmt.Fprintf(&b, "=== Content from %s ===\n%s\n", baseURL, ExtractText(main, maxTextLen))
	for _, s := range sections {
		if s.text == "" {
			continue
		}
		fmt.Fprintf(&b, "\n=== Content from %s ===\n%s\n", s.url, s.text)
	}
	return b.String(), nil
}

// fetchHTML performs one GET and returns the body.
func (c *Client) fetchHTML(ctx context.Context, url string) (string, error) {
	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, url, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: %s returned status %d", ErrSourceUnavailable, url, resp.StatusCode())
	}
	return string(resp.Body()), nil
}
