package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stake-plus/claimcheck/src/api/webserver"
	"github.com/stake-plus/claimcheck/src/config"
)

var (
	serveAddr         string
	serveAllowOrigins []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web form and JSON API",
	Long: `Serve the claim form at / and the JSON API under /v1/check.

Submissions are rate limited per client when RATE_LIMIT_PER_MINUTE is above
zero. Counters live in Redis when REDIS_URL is set and in memory otherwise.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default :$PORT)")
	serveCmd.Flags().StringSliceVar(&serveAllowOrigins, "allow-origin", nil, "CORS origin allowed to call the API (repeatable, default *)")
}

func runServe(cmd *cobra.Command, args []string) error {
	runner, cfg, err := buildRunner()
	if err != nil {
		return err
	}

	limiter, closeLimiter, err := newLimiter(cfg.Server)
	if err != nil {
		return err
	}
	defer closeLimiter()

	addr := serveAddr
	if addr == "" {
		addr = ":" + cfg.Server.Port
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := webserver.New(webserver.Options{
		Checker:        runner,
		Limiter:        limiter,
		AllowOrigins:   serveAllowOrigins,
		TrustedProxies: cfg.Server.TrustedProxies,
		Logger:         logger,
	})
	return webserver.Serve(ctx, addr, engine, logger)
}

// newLimiter picks the submission limiter. A nil Limiter disables limiting.
func newLimiter(cfg config.Server) (webserver.Limiter, func(), error) {
	noop := func() {}
	if cfg.RateLimitPerMinute <= 0 {
		logger.Info("rate limiting disabled")
		return nil, noop, nil
	}
	if cfg.RedisURL == "" {
		logger.Info("rate limiting in memory", zap.Int("per_minute", cfg.RateLimitPerMinute))
		return webserver.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute), noop, nil
	}

	rdb, err := webserver.NewRedisClient(cfg.RedisURL)
	if err != nil {
		return nil, noop, err
	}
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		// The middleware fails open, but an unreachable Redis at start-up is
		// almost always a misconfiguration worth surfacing.
		logger.Warn("redis unreachable; requests will not be limited until it recovers", zap.Error(err))
	}
	logger.Info("rate limiting in redis", zap.Int("per_minute", cfg.RateLimitPerMinute))
	return webserver.NewRedisLimiter(rdb, cfg.RateLimitPerMinute, time.Minute), func() { _ = rdb.Close() }, nil
}
