package extract

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"conftrack/internal/record"
)

// Client is a minimal text-completion interface over an LLM backend.
type Client interface {
	// Complete sends a prompt and returns the raw model output.
	Complete(ctx context.Context, prompt string) (string, error)

	// Model identifies the backing model, recorded as provenance on
	// every extracted record.
	Model() string
}

// LLMExtractor extracts deadline records by prompting an LLM over the
// page text and parsing its JSON reply.
type LLMExtractor struct {
	client Client
	logger *zap.Logger
	now    func() time.Time
}

// NewLLMExtractor wires an extractor around a completion client.
func NewLLMExtractor(client Client, logger *zap.Logger) *LLMExtractor {
	return &LLMExtractor{
		client: client,
		logger: logger,
		now:    time.Now,
	}
}

// Name implements Extractor.
func (e *LLMExtractor) Name() string {
	return fmt.Sprintf("llm:%s", e.client.Model())
}

// Extract implements Extractor.
func (e *LLMExtractor) Extract(ctx context.Context, page Page) (*record.Record, error) {
	if page.Text == "" {
		return nil, fmt.Errorf("%w: no page text for %s", ErrExtractionFailed, page.Title())
	}

	prompt := BuildPrompt(page)
	raw, err := e.client.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrExtractionFailed, e.client.Model(), err)
	}

	resp, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	rec := resp.toRecord(page, e.client.Model(), e.now())
	if err := finalize(page, &rec, e.now(), e.logger); err != nil {
		return nil, err
	}

	e.logger.Debug("extracted record",
		zap.String("conference", page.Title()),
		zap.String("deadline", rec.PaperDeadline.String()),
		zap.String("model", e.client.Model()))
	return &rec, nil
}
