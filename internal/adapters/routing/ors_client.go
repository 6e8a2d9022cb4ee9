package routing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	maxAttempts    = 4
	initialBackoff = 200 * time.Millisecond
)

// statusError carries a non-2xx directions response for retry
// classification and error reporting.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("directions api returned %d: %s", e.code, e.body)
}

// retryable reports whether an attempt hit a transient condition: a
// rate limit, a 5xx, or a network-level failure.
func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= http.StatusInternalServerError
	}
	var ne net.Error
	return errors.As(err, &ne)
}

// postJSON sends the payload to the given directions endpoint, retrying
// transient failures with doubling backoff until the attempt budget
// runs out or the context is cancelled. The caller owns the response
// body on success.
func (o *ORSRouteProvider) postJSON(ctx context.Context, url string, payload []byte) (*http.Response, error) {
	backoff := initialBackoff

	for attempt := 1; ; attempt++ {
		resp, err := o.attempt(ctx, url, payload)
		if err == nil {
			return resp, nil
		}
		if attempt == maxAttempts || !retryable(err) {
			return nil, err
		}

		o.logger.Warn("directions call failed, retrying",
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

func (o *ORSRouteProvider) attempt(ctx context.Context, url string, payload []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build directions request: %w", err)
	}
	req.Header.Set("Authorization", o.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := o.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(b))}
	}
	return resp, nil
}
