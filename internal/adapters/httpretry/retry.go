// Package httpretry is the transport retry policy shared by the upstream
// adapters: 429, 5xx and network failures are retried with exponential
// backoff that honours Retry-After; anything else is returned as is.
package httpretry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/moodqueue/internal/core/domain"
)

const (
	DefaultMaxAttempts = 2
	DefaultBackoff     = 300 * time.Millisecond

	redacted = "REDACTED"
)

// Policy describes how one upstream service is retried.
type Policy struct {
	// Service names the upstream in TransportErrors and logs.
	Service     string
	MaxAttempts int
	Backoff     time.Duration
	// Wait, when set, runs before every attempt (rate limiting).
	Wait func(ctx context.Context) error
	// RedactParams lists query parameters whose values never appear in
	// returned errors or logs.
	RedactParams []string
	Log          *zap.Logger
}

// Do sends the request built by newRequest until it succeeds, fails with a
// non-retryable status, or attempts run out. newRequest is called once per
// attempt so request bodies can be replayed. Exhausted retries yield a
// *domain.TransportError.
func (p Policy) Do(ctx context.Context, client *http.Client, newRequest func() (*http.Request, error)) (*http.Response, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	backoff := p.Backoff
	if backoff <= 0 {
		backoff = DefaultBackoff
	}
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if p.Wait != nil {
			if err := p.Wait(ctx); err != nil {
				return nil, &domain.TransportError{Service: p.Service, Err: fmt.Errorf("rate limiter: %w", err)}
			}
		}

		req, err := newRequest()
		if err != nil {
			return nil, fmt.Errorf("%s adapter: build request: %w", p.Service, p.Redact(err))
		}

		resp, err := client.Do(req)
		err = p.Redact(err)
		retryAfter, retry := ShouldRetry(resp, err)
		if !retry {
			return resp, err
		}

		attemptNum := attempt + 1
		if err != nil {
			log.Warn("retrying request after error",
				zap.Int("attempt", attemptNum), zap.Int("max", maxAttempts), zap.Error(err))
		} else {
			log.Warn("retrying request after status",
				zap.Int("attempt", attemptNum), zap.Int("max", maxAttempts), zap.Int("status", resp.StatusCode))
			_ = resp.Body.Close()
		}

		if attempt == maxAttempts-1 {
			terr := &domain.TransportError{Service: p.Service, Err: err}
			if err == nil {
				terr.StatusCode = resp.StatusCode
			}
			return nil, fmt.Errorf("%s adapter: request failed after %d attempts: %w", p.Service, maxAttempts, terr)
		}

		delay := backoff * time.Duration(1<<attempt)
		if retryAfter > 0 {
			delay = retryAfter
		}
		if err := Sleep(ctx, delay); err != nil {
			return nil, &domain.TransportError{Service: p.Service, Err: err}
		}
	}

	return nil, &domain.TransportError{Service: p.Service, Err: errors.New("no attempts made")}
}

// Redact rewrites a *url.Error so the policy's secret query parameters are
// masked. Other errors are returned unchanged.
func (p Policy) Redact(err error) error {
	if err == nil || len(p.RedactParams) == 0 {
		return err
	}
	var uerr *url.Error
	if !errors.As(err, &uerr) {
		return err
	}
	return &url.Error{Op: uerr.Op, URL: RedactURL(uerr.URL, p.RedactParams...), Err: uerr.Err}
}

// RedactURL masks the values of params in raw. Unparseable input is
// replaced entirely.
func RedactURL(raw string, params ...string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return redacted
	}
	q := u.Query()
	changed := false
	for _, name := range params {
		if q.Has(name) {
			q.Set(name, redacted)
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// ShouldRetry reports whether a response or error is retryable and the
// server-requested delay, if any.
func ShouldRetry(resp *http.Response, err error) (time.Duration, bool) {
	if err != nil {
		return 0, true
	}
	if resp == nil {
		return 0, false
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return ParseRetryAfter(resp), true
	}
	return 0, false
}

// ParseRetryAfter reads Retry-After as delta seconds or an HTTP date.
func ParseRetryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}

	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	if when, err := http.ParseTime(retryAfter); err == nil {
		if until := time.Until(when); until > 0 {
			return until
		}
	}

	return 0
}

// Sleep waits for delay or until ctx is done.
func Sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("request canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
