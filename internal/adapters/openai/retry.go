package openai

import (
	"context"
	"net/http"

	"github.com/ewilliams-labs/moodqueue/internal/adapters/httpretry"
)

// doRequestWithRetry builds a fresh request per attempt so the body can be
// replayed.
func (c *Client) doRequestWithRetry(ctx context.Context, newRequest func() (*http.Request, error)) (*http.Response, error) {
	policy := httpretry.Policy{
		Service:     "openai",
		MaxAttempts: c.maxRetries,
		Backoff:     c.baseBackoff,
		Log:         c.log,
	}
	return policy.Do(ctx, c.httpClient, newRequest)
}
