package webclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultMaxBody caps how much of a response body is read into memory.
const DefaultMaxBody = 4 << 20

// NewDefault returns an HTTP client with sane timeouts.
func NewDefault(timeout time.Duration) *http.Client {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// StatusError is returned by Do for non-2xx responses.
type StatusError struct {
	Status int
	Body   []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d", e.Status)
}

// Do performs a single request attempt and returns the status and body.
// Non-2xx responses yield a *StatusError alongside the body that was read.
func Do(ctx context.Context, hc *http.Client, req *http.Request, maxBody int64) (int, []byte, error) {
	if hc == nil {
		hc = NewDefault(0)
	}
	if maxBody <= 0 {
		maxBody = DefaultMaxBody
	}
	resp, err := hc.Do(req.WithContext(ctx))
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, body, &StatusError{Status: resp.StatusCode, Body: body}
	}
	return resp.StatusCode, body, nil
}
