package deepgram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dskvich/networker-bot/pkg/domain"
	"github.com/dskvich/networker-bot/pkg/logger"
)

const (
	defaultBaseURL = "https://api.deepgram.com"

	model       = "nova-2"
	language    = "es"
	smartFormat = true
	punctuate   = true
	diarize     = false

	voiceContentType = "audio/ogg"
)

type client struct {
	apiKey  string
	baseURL string
	hc      *http.Client
}

func NewClient(apiKey string) (*client, error) {
	return NewClientWithURL(apiKey, defaultBaseURL)
}

func NewClientWithURL(apiKey, baseURL string) (*client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("deepgram api key is empty")
	}
	return &client{
		apiKey:  apiKey,
		baseURL: baseURL,
		hc:      &http.Client{},
	}, nil
}

type listenResponse struct {
	Results *struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string  `json:"transcript"`
				Confidence float64 `json:"confidence"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// Transcribe sends a voice note to the pre-recorded listen endpoint. An empty
// string with a nil error means the provider found no speech.
func (c *client) Transcribe(ctx context.Context, audio []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.listenURL(), bytes.NewReader(audio))
	if err != nil {
		return "", fmt.Errorf("%w: creating request: %w", domain.ErrTranscriptionFailure, err)
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("Content-Type", voiceContentType)

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: executing request: %w", domain.ErrTranscriptionFailure, err)
	}
	defer func(Body io.ReadCloser) {
		if closeErr := Body.Close(); closeErr != nil {
			slog.ErrorContext(ctx, "closing body", logger.Err(closeErr))
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: unexpected status code: %d, response: %s", domain.ErrTranscriptionFailure, resp.StatusCode, string(body))
	}

	var listen listenResponse
	if err := json.NewDecoder(resp.Body).Decode(&listen); err != nil {
		return "", fmt.Errorf("%w: decoding response: %w", domain.ErrTranscriptionFailure, err)
	}

	transcript, ok := listen.firstTranscript()
	if !ok {
		slog.WarnContext(ctx, "Deepgram returned no transcript", "bytes", len(audio))
		return "", nil
	}

	slog.DebugContext(ctx, "Deepgram transcription done", "bytes", len(audio), "chars", len(transcript))
	return transcript, nil
}

func (c *client) listenURL() string {
	q := url.Values{}
	q.Set("model", model)
	q.Set("language", language)
	q.Set("smart_format", strconv.FormatBool(smartFormat))
	q.Set("punctuate", strconv.FormatBool(punctuate))
	q.Set("diarize", strconv.FormatBool(diarize))

	return c.baseURL + "/v1/listen?" + q.Encode()
}

func (r *listenResponse) firstTranscript() (string, bool) {
	if r.Results == nil || len(r.Results.Channels) == 0 {
		return "", false
	}
	alternatives := r.Results.Channels[0].Alternatives
	if len(alternatives) == 0 {
		return "", false
	}
	return alternatives[0].Transcript, true
}
