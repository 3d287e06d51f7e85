// Package llm provides the Gemini client used to generate predictions.
package llm

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"

	"github.com/yourusername/stockcast/internal/metrics"
)

const (
	DefaultModel           = "gemini-2.0-flash"
	DefaultMaxOutputTokens = 2048
)

// Client wraps the Gemini API for prediction generation
type Client struct {
	client          *genai.Client
	model           string
	maxOutputTokens int32
	logger          *logrus.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithMaxOutputTokens sets the response token budget
func WithMaxOutputTokens(tokens int) ClientOption {
	return func(c *Client) {
		if tokens > 0 {
			c.maxOutputTokens = int32(tokens)
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *logrus.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	silent := logrus.New()
	silent.SetOutput(io.Discard)

	c := &Client{
		client:          genaiClient,
		model:           DefaultModel,
		maxOutputTokens: DefaultMaxOutputTokens,
		logger:          silent,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.model
}

// GeneratePrediction sends a prompt and returns the raw response text
func (c *Client) GeneratePrediction(ctx context.Context, prompt string) (string, error) {
	c.logger.WithField("model", c.model).Debug("Generating prediction")

	start := time.Now()

	contents := genai.Text(prompt)
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: c.maxOutputTokens,
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	duration := time.Since(start).Seconds()
	if err != nil {
		metrics.RecordLLMRequest("failure", duration)
		return "", fmt.Errorf("failed to generate prediction: %w", err)
	}

	text, err := extractTextFromResponse(result)
	if err != nil {
		metrics.RecordLLMRequest("failure", duration)
		return "", err
	}

	metrics.RecordLLMRequest("success", duration)
	return text, nil
}

// extractTextFromResponse extracts text from a generate content response
func extractTextFromResponse(result *genai.GenerateContentResponse) (string, error) {
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	text := ""
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}

	if text == "" {
		return "", fmt.Errorf("no text content in response")
	}

	return text, nil
}
