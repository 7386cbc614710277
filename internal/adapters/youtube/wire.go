package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/moodqueue/internal/core/domain"
)

// getJSON performs a GET against path and decodes a 200 body into out.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	c.log.Debug("request", zap.String("path", path), zap.String("q", params.Get("q")))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path, params), nil)
	if err != nil {
		return fmt.Errorf("youtube adapter: failed to create request: %w", err)
	}

	resp, err := c.doRequestWithRetry(req)
	if err != nil {
		var terr *domain.TransportError
		if errors.As(err, &terr) {
			return err
		}
		return fmt.Errorf("youtube adapter: %s request failed: %w", path, &domain.TransportError{Service: "youtube", Err: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("youtube adapter: %s: %w", path, &domain.TransportError{
			Service:    "youtube",
			StatusCode: resp.StatusCode,
			Err:        apiError(resp.Body),
		})
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("youtube adapter: %s decode error: %w", path, err)
	}
	return nil
}

func apiError(body io.Reader) error {
	var parsed apiErrorResponse
	if err := json.NewDecoder(io.LimitReader(body, 64<<10)).Decode(&parsed); err != nil || parsed.Error.Message == "" {
		return nil
	}
	return errors.New(parsed.Error.Message)
}
