package search

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/stake-plus/claimcheck/src/logging"
	"go.uber.org/zap"
)

// Client runs a single bounded search against one provider.
type Client struct {
	provider Provider
	logger   *zap.Logger
}

// NewClient wraps provider. A nil logger is replaced with a no-op logger.
func NewClient(provider Provider, logger *zap.Logger) *Client {
	return &Client{provider: provider, logger: logging.OrNop(logger)}
}

// Provider returns the wrapped provider.
func (c *Client) Provider() Provider { return c.provider }

// Search issues exactly one provider request for claim and returns at most
// maxResults results in provider order. An empty slice is a valid outcome.
func (c *Client) Search(ctx context.Context, claim string, maxResults int, timeout time.Duration) ([]Result, error) {
	name := c.provider.Name()
	query := strings.TrimSpace(claim)
	switch {
	case query == "":
		return nil, &Error{Provider: name, Reason: "empty claim", Err: ErrInvalidRequest}
	case maxResults < 1:
		return nil, &Error{Provider: name, Reason: "max results must be at least 1", Err: ErrInvalidRequest}
	case timeout <= 0:
		return nil, &Error{Provider: name, Reason: "timeout must be positive", Err: ErrInvalidRequest}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	results, err := c.provider.Search(ctx, query, maxResults)
	if err != nil {
		var searchErr *Error
		if !errors.As(err, &searchErr) {
			searchErr = &Error{Provider: name, Reason: reasonFor(err), Err: err}
		}
		c.logger.Warn("search failed",
			zap.String("provider", name),
			zap.String("reason", searchErr.Reason),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, searchErr
	}

	results = normalize(results)
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	c.logger.Debug("search completed",
		zap.String("provider", name),
		zap.Int("results", len(results)),
		zap.Duration("elapsed", time.Since(start)))
	return results, nil
}

func reasonFor(err error) string {
	switch {
	case logging.IsTimeout(err):
		return "timeout"
	case logging.IsRateLimit(err):
		return "rate limited"
	case logging.IsAuth(err):
		return "unauthorized"
	default:
		return "provider error"
	}
}
