package claims

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stake-plus/claimcheck/src/ai/core"
	"github.com/stake-plus/claimcheck/src/config"
	"github.com/stake-plus/claimcheck/src/logging"
	"github.com/stake-plus/claimcheck/src/search"
	"go.uber.org/zap"
)

// ErrEmptyClaim is wrapped by AnalysisError when there is nothing to analyze.
var ErrEmptyClaim = errors.New("claim is empty")

// AnalysisError reports a failed model call. Parse problems never produce one.
type AnalysisError struct {
	Reason string
	Err    error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis: %s: %v", e.Reason, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// Options are the model settings applied to every analysis.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// OptionsFromConfig copies the model settings out of the loaded configuration.
func OptionsFromConfig(cfg config.AI) Options {
	return Options{
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Timeout:     cfg.Timeout,
	}
}

type Analyzer struct {
	client core.Client
	opts   Options
	logger *zap.Logger
}

func NewAnalyzer(client core.Client, opts Options, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		client: client,
		opts:   opts,
		logger: logging.OrNop(logger),
	}
}

// Analyze asks the model to judge claim against results. Only a failed model
// call returns an error; an unusable reply yields a degraded neutral verdict.
func (a *Analyzer) Analyze(ctx context.Context, claim string, results []search.Result) (Verdict, error) {
	if strings.TrimSpace(claim) == "" {
		return Verdict{}, &AnalysisError{Reason: "invalid request", Err: ErrEmptyClaim}
	}

	fingerprint := Fingerprint(claim, results)
	messages := []core.Message{
		{Role: core.RoleSystem, Content: systemPrompt},
		{Role: core.RoleUser, Content: buildUserPrompt(claim, results)},
	}

	if a.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := a.client.Complete(ctx, messages, core.Options{
		Model:               a.opts.Model,
		Temperature:         core.Float(a.opts.Temperature),
		MaxCompletionTokens: a.opts.MaxTokens,
		JSON:                true,
	})
	if err != nil {
		reason := classify(err)
		a.logger.Warn("model call failed",
			zap.String("fingerprint", fingerprint),
			zap.String("reason", reason),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return Verdict{}, &AnalysisError{Reason: reason, Err: err}
	}

	verdict := parseVerdict(text)
	verdict.Sources = append([]search.Result{}, results...)
	verdict.Fingerprint = fingerprint

	if verdict.Degraded {
		a.logger.Warn("model reply had no usable structure",
			zap.String("fingerprint", fingerprint),
			zap.Int("reply_bytes", len(text)))
	}
	a.logger.Info("claim analyzed",
		zap.String("fingerprint", fingerprint),
		zap.Int("score", verdict.Score),
		zap.String("label", string(verdict.Label)),
		zap.String("confidence", string(verdict.Confidence)),
		zap.Int("sources", len(verdict.Sources)),
		zap.Duration("elapsed", time.Since(start)))
	return verdict, nil
}

func classify(err error) string {
	var apiErr *core.APIError
	switch {
	case logging.IsTimeout(err):
		return "timeout"
	case logging.IsRateLimit(err):
		return "rate limited"
	case logging.IsAuth(err):
		return "authentication failed"
	case errors.As(err, &apiErr):
		return "upstream error"
	default:
		return "request failed"
	}
}
