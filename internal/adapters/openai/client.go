// Package openai provides a TextGenerator backed by the OpenAI chat
// completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/ewilliams-labs/moodqueue/internal/core/domain"
	"github.com/ewilliams-labs/moodqueue/internal/core/ports"
)

const (
	DefaultBaseURL     = "https://api.openai.com"
	DefaultModel       = "gpt-3.5-turbo"
	DefaultTemperature = 0.7

	defaultTimeout = 30 * time.Second
)

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
	MaxAttempts int
	Backoff     time.Duration
}

type Client struct {
	httpClient  *http.Client
	baseURL     string
	model       string
	temperature float64
	maxRetries  int
	baseBackoff time.Duration
	log         *zap.Logger
}

var _ ports.TextGenerator = (*Client)(nil)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// NewClient builds a client whose requests carry the API key as a bearer
// token.
func NewClient(opts Options, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := opts.Model
	if model == "" {
		model = DefaultModel
	}
	temperature := opts.Temperature
	if temperature <= 0 {
		temperature = DefaultTemperature
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.APIKey, TokenType: "Bearer"})
	httpClient := oauth2.NewClient(context.Background(), src)
	httpClient.Timeout = timeout

	return &Client{
		httpClient:  httpClient,
		baseURL:     baseURL,
		model:       model,
		temperature: temperature,
		maxRetries:  opts.MaxAttempts,
		baseBackoff: opts.Backoff,
		log:         log.With(zap.String("adapter", "openai")),
	}
}

// Complete returns the content of the first choice.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	payload := chatRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("openai adapter: marshal request: %w", err)
	}

	newRequest := func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}

	start := time.Now()
	resp, err := c.doRequestWithRetry(ctx, newRequest)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai adapter: chat completion: %w", &domain.TransportError{
			Service:    "openai",
			StatusCode: resp.StatusCode,
			Err:        apiError(resp.Body),
		})
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("openai adapter: decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("openai adapter: response had no choices")
	}

	c.log.Debug("chat completed",
		zap.String("model", c.model),
		zap.Duration("elapsed", time.Since(start)),
	)
	return parsed.Choices[0].Message.Content, nil
}

func apiError(body io.Reader) error {
	var parsed apiErrorResponse
	if err := json.NewDecoder(io.LimitReader(body, 64<<10)).Decode(&parsed); err != nil || parsed.Error.Message == "" {
		return nil
	}
	return errors.New(parsed.Error.Message)
}
