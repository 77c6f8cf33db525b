package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// RenderedClient fetches pages through a headless browser, for
// conference sites that only materialize their dates via JavaScript.
// Each call launches, renders, and tears down; tracking runs hit a
// handful of such sites at most, so keeping a browser warm is not
// worth the lifecycle management.
type RenderedClient struct {
	timeout time.Duration
	logger  *zap.Logger
}

// NewRendered builds a browser-backed fetcher with the given
// navigation timeout.
func NewRendered(timeout time.Duration, logger *zap.Logger) *RenderedClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RenderedClient{
		timeout: timeout,
		logger:  logger,
	}
}

// FetchText renders url in a headless browser and returns the
// cleaned text of the resulting DOM.
func (c *RenderedClient) FetchText(ctx context.Context, url string) (string, error) {
	controlURL, err := launcher.New().Headless(true).Launch()
	if err != nil {
		return "", fmt.Errorf("%w: failed to launch browser: %v", ErrSourceUnavailable, err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return "", fmt.Errorf("%w: connect to browser: %v", ErrSourceUnavailable, err)
	}
	defer func() {
		if err := browser.Close(); err != nil {
			c.logger.Debug("browser close failed", zap.Error(err))
		}
	}()

	page, err := browser.Page(proto.TargetCreateTarget{URL: ""})
	if err != nil {
		return "", fmt.Errorf("%w: create page: %v", ErrSourceUnavailable, err)
	}

	if err := page.Timeout(c.timeout).Navigate(url); err != nil {
		return "", fmt.Errorf("%w: navigate %s: %v", ErrSourceUnavailable, url, err)
	}
	if err := page.Timeout(c.timeout).WaitLoad(); err != nil {
		return "", fmt.Errorf("%w: load %s: %v", ErrSourceUnavailable, url, err)
	}

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("%w: read DOM of %s: %v", ErrSourceUnavailable, url, err)
	}

	c.logger.Debug("rendered page",
		zap.String("url", url),
		zap.Int("html_bytes", len(html)))
	return ExtractText(html, maxTextLen), nil
}
