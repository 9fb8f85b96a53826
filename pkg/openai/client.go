package openai

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/dskvich/networker-bot/pkg/domain"
	"github.com/dskvich/networker-bot/pkg/extraction"
)

const (
	voiceFileName = "voice.ogg"
	language      = "es"
	temperature   = 0.1

	systemPrompt = "Eres un asistente que extrae datos de presentaciones y responde únicamente con JSON válido."
)

type client struct {
	api   *openai.Client
	model string
}

func NewClient(token, model string) (*client, error) {
	return NewClientWithURL(token, model, "")
}

// NewClientWithURL overrides the API base URL (e.g. "http://host/v1"). An
// empty baseURL keeps the SDK default.
func NewClientWithURL(token, model, baseURL string) (*client, error) {
	if token == "" {
		return nil, fmt.Errorf("token is empty")
	}

	cfg := openai.DefaultConfig(token)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &client{
		api:   openai.NewClientWithConfig(cfg),
		model: model,
	}, nil
}

// Transcribe sends the voice note to Whisper. Silence yields an empty
// string and a nil error.
func (c *client) Transcribe(ctx context.Context, audio []byte) (string, error) {
	resp, err := c.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: voiceFileName,
		Reader:   bytes.NewReader(audio),
		Language: language,
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", fmt.Errorf("%w: creating transcription: %w", domain.ErrTranscriptionFailure, err)
	}

	text := strings.TrimSpace(resp.Text)
	slog.DebugContext(ctx, "Whisper transcription done", "bytes", len(audio), "chars", len(text))
	return text, nil
}

// Extract asks the chat model for the introduction record in JSON mode.
func (c *client) Extract(ctx context.Context, transcript string) (domain.ExtractedRecord, error) {
	if c.model == "" {
		return nil, fmt.Errorf("%w: chat model is not configured", domain.ErrExtractionFailure)
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: extraction.Prompt(transcript)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: creating chat completion: %w", domain.ErrExtractionFailure, err)
	}

	if len(resp.Choices) == 0 {
		slog.WarnContext(ctx, "Chat completion returned no choices", "model", c.model)
		return nil, nil
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		slog.WarnContext(ctx, "Chat completion returned empty content", "model", c.model)
		return nil, nil
	}

	record, err := extraction.Parse(content)
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "Chat extraction done", "model", c.model, "fields", len(record))
	return record, nil
}
