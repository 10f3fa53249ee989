package webserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stake-plus/claimcheck/src/logging"
	"github.com/stake-plus/claimcheck/src/pipeline"
	"go.uber.org/zap"
)

// Checker runs one submission; *pipeline.Runner satisfies it.
type Checker interface {
	Run(ctx context.Context, claim string, observe pipeline.Observer) pipeline.Outcome
}

// Options wires the server's collaborators.
type Options struct {
	Checker Checker
	// Limiter is optional; nil disables rate limiting.
	Limiter      Limiter
	AllowOrigins []string
	// TrustedProxies may set X-Forwarded-For. Nil trusts no one, so the client
	// address used for rate limiting and latest results is the TCP peer.
	TrustedProxies []string
	Logger         *zap.Logger
}

func New(opts Options) *gin.Engine {
	logger := logging.OrNop(opts.Logger)
	g := gin.New()
	if err := g.SetTrustedProxies(opts.TrustedProxies); err != nil {
		logger.Warn("ignoring trusted proxies", zap.Strings("proxies", opts.TrustedProxies), zap.Error(err))
		_ = g.SetTrustedProxies(nil)
	}
	g.Use(requestLogger(logger), gin.Recovery())
	attachRoutes(g, opts, logger)
	return g
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.String("client", c.ClientIP()),
			zap.Duration("elapsed", time.Since(start)))
	}
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	logger = logging.OrNop(logger)
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()
	logger.Info("claimcheck listening", zap.String("addr", addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func runIDString(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}
