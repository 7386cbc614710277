// Package ollama provides a TextGenerator backed by a local Ollama instance.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/moodqueue/internal/core/domain"
	"github.com/ewilliams-labs/moodqueue/internal/core/ports"
)

const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.1:8b"
)

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

type Client struct {
	baseURL     string
	model       string
	temperature float64
	httpClient  *http.Client
	log         *zap.Logger
}

var _ ports.TextGenerator = (*Client)(nil)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  *chatOptions  `json:"options,omitempty"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Error   string      `json:"error,omitempty"`
}

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
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:     baseURL,
		model:       model,
		temperature: opts.Temperature,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log.With(zap.String("adapter", "ollama")),
	}
}

// Complete sends one system and one user message and returns the assistant
// reply verbatim. Connection failures and non-2xx statuses are reported as
// transport errors.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	payload := chatRequest{
		Model:  c.model,
		Stream: false,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}
	if c.temperature > 0 {
		payload.Options = &chatOptions{Temperature: c.temperature}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("ollama: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ollama: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama: request failed: %w", &domain.TransportError{Service: "ollama", Err: err})
	}
	defer resp.Body.Close()

	var parsed chatResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&parsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		terr := &domain.TransportError{Service: "ollama", StatusCode: resp.StatusCode}
		if decodeErr == nil && parsed.Error != "" {
			terr.Err = errors.New(parsed.Error)
		}
		return "", fmt.Errorf("ollama: unexpected status: %w", terr)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("ollama: decode response: %w", decodeErr)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("ollama: %s", parsed.Error)
	}

	c.log.Debug("chat completed",
		zap.String("model", c.model),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("chars", len(parsed.Message.Content)),
	)
	return parsed.Message.Content, nil
}
