package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/notesmith/notesmith/internal/logger"
	noteerrors "github.com/notesmith/notesmith/pkg/errors"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com"
	defaultOpenAITimeout = 120 * time.Second
	defaultMaxRetries    = 4
)

// OpenAIOptions configure the OpenAI-compatible client. BaseURL may
// point at any server speaking the same API.
type OpenAIOptions struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration

	// MaxRetries caps retry attempts after the first try. Negative
	// disables retries; zero means the default.
	MaxRetries int
}

// OpenAI talks to an OpenAI-compatible HTTP API. It serves all three
// generation kinds: chat completions, speech and images.
type OpenAI struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxRetries int
	retryWait  time.Duration
	log        *logger.Logger
}

// NewOpenAI builds a client. The API key is required.
func NewOpenAI(opts OpenAIOptions, log *logger.Logger) (*OpenAI, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("openai api key required")
	}

	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultOpenAITimeout
	}

	maxRetries := opts.MaxRetries
	if maxRetries == 0 {
		maxRetries = defaultMaxRetries
	}
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &OpenAI{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
		retryWait:  time.Second,
		log:        log,
	}, nil
}

type apiErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

func (c *OpenAI) doOnce(ctx context.Context, kind, method, path string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

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
		var apiErr apiErrorBody
		message := strings.TrimSpace(string(raw))
		if jsonErr := json.Unmarshal(raw, &apiErr); jsonErr == nil && apiErr.Error.Message != "" {
			message = apiErr.Error.Message
		}
		// An exhausted quota is a terminal decline, not a transient
		// failure, so it bypasses the retry classification entirely.
		if apiErr.Error.Code == "insufficient_quota" || apiErr.Error.Type == "insufficient_quota" {
			return resp, raw, noteerrors.NewCapacityError(kind)
		}
		return resp, raw, noteerrors.NewProviderError("openai", resp.StatusCode, message, nil)
	}
	return resp, raw, nil
}

// do runs one call with exponential backoff on retryable failures,
// honoring Retry-After when the server sends it.
func (c *OpenAI) do(ctx context.Context, kind, method, path string, body any) ([]byte, error) {
	backoff := c.retryWait

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, raw, err := c.doOnce(ctx, kind, method, path, body)
		if err == nil {
			return raw, nil
		}
		if !isRetryableError(err) || attempt == c.maxRetries {
			return nil, err
		}

		wait := jitter(retryAfterDuration(resp, backoff, 10*time.Second))
		c.log.WithFields(map[string]any{
			"path":    path,
			"attempt": attempt + 1,
			"wait":    wait.String(),
			"error":   err.Error(),
		}).Warn("openai request retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		backoff *= 2
	}
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// GenerateText calls the chat completions endpoint and returns the first
// choice's content.
func (c *OpenAI) GenerateText(ctx context.Context, req ChatRequest) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", errors.New("chat prompt required")
	}

	body := chatCompletionRequest{
		Model:       req.Model,
		Messages:    []chatMessage{{Role: "user", Content: req.Prompt}},
		Temperature: req.Temperature,
	}

	raw, err := c.do(ctx, "chat", http.MethodPost, "/v1/chat/completions", body)
	if err != nil {
		return "", err
	}

	var resp chatCompletionResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("openai decode error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

type speechRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
	Voice string `json:"voice"`
}

// GenerateSpeech calls the audio speech endpoint. The response body is
// the audio itself.
func (c *OpenAI) GenerateSpeech(ctx context.Context, req SpeechRequest) ([]byte, error) {
	if strings.TrimSpace(req.Input) == "" {
		return nil, errors.New("speech input required")
	}

	body := speechRequest{Model: req.Model, Input: req.Input, Voice: req.Voice}
	raw, err := c.do(ctx, "tts", http.MethodPost, "/v1/audio/speech", body)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("openai returned empty audio")
	}
	return raw, nil
}

type imageGenerationRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
}

type imageGenerationResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

// GenerateImage calls the images endpoint and decodes the base64 payload.
func (c *OpenAI) GenerateImage(ctx context.Context, req ImageRequest) ([]byte, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, errors.New("image prompt required")
	}

	body := imageGenerationRequest{Model: req.Model, Prompt: req.Prompt, N: 1}
	raw, err := c.do(ctx, "image", http.MethodPost, "/v1/images/generations", body)
	if err != nil {
		return nil, err
	}

	var resp imageGenerationResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("openai decode error: %w", err)
	}
	if len(resp.Data) == 0 || strings.TrimSpace(resp.Data[0].B64JSON) == "" {
		return nil, errors.New("openai image response missing b64_json")
	}

	decoded, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decode image base64: %w", err)
	}
	return decoded, nil
}
