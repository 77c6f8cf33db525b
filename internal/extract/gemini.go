package extract

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiClient backs extraction with Google's Gemini API. Useful when
// no local Ollama server is around, at the cost of an API key.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini-backed completion client.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiClient{
		client: client,
		model:  model,
	}, nil
}

// Model implements Client.
func (c *GeminiClient) Model() string {
	return c.model
}

// Complete implements Client.
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	result, err := c.client.Models.GenerateContent(ctx,
		c.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			Temperature: genai.Ptr[float32](0.1),
		},
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("no text in gemini response")
	}
	return text, nil
}
