package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/dskvich/networker-bot/pkg/domain"
	"github.com/dskvich/networker-bot/pkg/extraction"
)

const temperature = 0.1

type client struct {
	genai *genai.Client
	model string
}

func NewClient(ctx context.Context, apiKey, model string) (*client, error) {
	return NewClientWithURL(ctx, apiKey, model, "")
}

// NewClientWithURL points the client at a custom Gemini API base URL. An
// empty baseURL keeps the SDK default.
func NewClientWithURL(ctx context.Context, apiKey, model, baseURL string) (*client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is empty")
	}
	if model == "" {
		return nil, fmt.Errorf("gemini model is empty")
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	return &client{genai: gc, model: model}, nil
}

// Extract asks the model for the introduction record. A nil record with a
// nil error means the model returned nothing usable.
func (c *client) Extract(ctx context.Context, transcript string) (domain.ExtractedRecord, error) {
	resp, err := c.genai.Models.GenerateContent(ctx, c.model, genai.Text(extraction.Prompt(transcript)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](temperature),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: generating content: %w", domain.ErrExtractionFailure, err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		slog.WarnContext(ctx, "Gemini returned an empty response", "model", c.model)
		return nil, nil
	}

	record, err := extraction.Parse(text)
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "Gemini extraction done", "model", c.model, "fields", len(record))
	return record, nil
}
