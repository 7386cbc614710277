package youtube

import (
	"net/http"

	"github.com/ewilliams-labs/moodqueue/internal/adapters/httpretry"
)

// apiKeyParam carries the API key; its value is masked in errors and logs.
const apiKeyParam = "key"

func (c *Client) retryPolicy() httpretry.Policy {
	return httpretry.Policy{
		Service:      "youtube",
		MaxAttempts:  c.maxRetries,
		Backoff:      c.baseBackoff,
		Wait:         c.limiter.Wait,
		RedactParams: []string{apiKeyParam},
		Log:          c.log,
	}
}

// doRequestWithRetry sends a GET request through the rate limiter, retrying
// 429, 5xx and network failures. Exhausted retries yield a TransportError.
func (c *Client) doRequestWithRetry(req *http.Request) (*http.Response, error) {
	return c.retryPolicy().Do(req.Context(), c.httpClient, func() (*http.Request, error) {
		return req, nil
	})
}
