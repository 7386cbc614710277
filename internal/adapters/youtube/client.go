// Package youtube is the YouTube Data API v3 adapter. It resolves free-text
// queries to videos, finds and enumerates playlists, and looks up video
// statistics.
package youtube

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ewilliams-labs/moodqueue/internal/core/ports"
)

const (
	DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

	defaultTimeout = 10 * time.Second
	defaultRPS     = 10
	defaultBurst   = 10
)

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL     string
	APIKey      string
	HTTPClient  *http.Client
	Timeout     time.Duration
	RPS         float64
	Burst       int
	MaxAttempts int
	Backoff     time.Duration
}

// Client is an HTTP client for the YouTube Data API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	limiter     *rate.Limiter
	maxRetries  int
	baseBackoff time.Duration
	log         *zap.Logger
}

// compile-time interface assertions
var (
	_ ports.MediaResolver      = (*Client)(nil)
	_ ports.CollectionSearcher = (*Client)(nil)
	_ ports.StatsProvider      = (*Client)(nil)
)

// NewClient constructs a new YouTube client.
func NewClient(opts Options, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	rps := opts.RPS
	if rps <= 0 {
		rps = defaultRPS
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = defaultBurst
	}
	return &Client{
		httpClient:  httpClient,
		baseURL:     baseURL,
		apiKey:      opts.APIKey,
		limiter:     rate.NewLimiter(rate.Limit(rps), burst),
		maxRetries:  opts.MaxAttempts,
		baseBackoff: opts.Backoff,
		log:         log.With(zap.String("adapter", "youtube")),
	}
}

func (c *Client) endpoint(path string, params url.Values) string {
	params.Set(apiKeyParam, c.apiKey)
	return c.baseURL + path + "?" + params.Encode()
}
