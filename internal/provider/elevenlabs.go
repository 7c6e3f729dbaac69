package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/notesmith/notesmith/internal/logger"
	noteerrors "github.com/notesmith/notesmith/pkg/errors"
)

const (
	defaultElevenLabsBaseURL = "https://api.elevenlabs.io"
	defaultElevenLabsTimeout = 60 * time.Second
)

// ElevenLabsOptions configure the ElevenLabs speech client.
type ElevenLabsOptions struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration

	// MaxRetries caps retry attempts after the first try. Negative
	// disables retries; zero means the default.
	MaxRetries int
}

// ElevenLabs synthesizes speech through the ElevenLabs HTTP API. The
// request voice is an ElevenLabs voice ID.
type ElevenLabs struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxRetries int
	retryWait  time.Duration
	log        *logger.Logger
}

// NewElevenLabs builds a client. The API key is required.
func NewElevenLabs(opts ElevenLabsOptions, log *logger.Logger) (*ElevenLabs, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("elevenlabs api key required")
	}

	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultElevenLabsBaseURL
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultElevenLabsTimeout
	}

	maxRetries := opts.MaxRetries
	if maxRetries == 0 {
		maxRetries = defaultMaxRetries
	}
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &ElevenLabs{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
		retryWait:  time.Second,
		log:        log,
	}, nil
}

type elevenLabsSpeechRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id,omitempty"`
}

// GenerateSpeech posts the text to the voice's text-to-speech endpoint
// and returns the audio bytes.
func (c *ElevenLabs) GenerateSpeech(ctx context.Context, req SpeechRequest) ([]byte, error) {
	if strings.TrimSpace(req.Input) == "" {
		return nil, errors.New("speech input required")
	}
	voice := strings.TrimSpace(req.Voice)
	if voice == "" {
		return nil, errors.New("elevenlabs voice id required")
	}

	path := "/v1/text-to-speech/" + url.PathEscape(voice)
	body := elevenLabsSpeechRequest{Text: req.Input, ModelID: req.Model}

	backoff := c.retryWait
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, raw, err := c.doOnce(ctx, path, body)
		if err == nil {
			if len(raw) == 0 {
				return nil, errors.New("elevenlabs returned empty audio")
			}
			return raw, nil
		}
		if !isRetryableError(err) || attempt == c.maxRetries {
			return nil, err
		}

		wait := jitter(retryAfterDuration(resp, backoff, 10*time.Second))
		c.log.WithFields(map[string]any{
			"attempt": attempt + 1,
			"wait":    wait.String(),
			"error":   err.Error(),
		}).Warn("elevenlabs request retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		backoff *= 2
	}
}

func (c *ElevenLabs) doOnce(ctx context.Context, path string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, noteerrors.NewProviderError("elevenlabs", resp.StatusCode, errorDetail(raw), nil)
	}
	return resp, raw, nil
}

// errorDetail pulls the human message out of an ElevenLabs error body,
// falling back to the raw payload.
func errorDetail(raw []byte) string {
	var parsed struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Detail != nil {
		switch detail := parsed.Detail.(type) {
		case string:
			return detail
		case map[string]any:
			if msg, ok := detail["message"].(string); ok && msg != "" {
				return msg
			}
		}
		encoded, err := json.Marshal(parsed.Detail)
		if err == nil {
			return string(encoded)
		}
	}
	return strings.TrimSpace(string(raw))
}
