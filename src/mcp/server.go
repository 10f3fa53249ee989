package mcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stake-plus/claimcheck/src/logging"
	"go.uber.org/zap"
)

// Config controls the MCP server runtime.
type Config struct {
	// ListenAddr serves streamable HTTP when set; otherwise stdio is used.
	ListenAddr string
	AuthToken  string
	Version    string
	Logger     *zap.Logger
}

// Server exposes the claim checker as an MCP tool.
type Server struct {
	mcp        *mcp.Server
	cfg        Config
	logger     *zap.Logger
	httpServer *http.Server
}

// NewServer registers check_claim against checker.
func NewServer(cfg Config, checker Checker) (*Server, error) {
	if checker == nil {
		return nil, fmt.Errorf("mcp: checker is required")
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	srv := mcp.NewServer(&mcp.Implementation{Name: "claimcheck", Version: cfg.Version}, nil)
	mcp.AddTool(srv, MetadataCheckClaim, tools{checker: checker}.CheckClaim)

	return &Server{
		mcp:    srv,
		cfg:    cfg,
		logger: logging.OrNop(cfg.Logger),
	}, nil
}

// Start serves until the context is cancelled or the client disconnects.
func (s *Server) Start(ctx context.Context) error {
	if strings.TrimSpace(s.cfg.ListenAddr) == "" {
		s.logger.Info("mcp serving on stdio")
		return s.mcp.Run(ctx, &mcp.StdioTransport{})
	}
	return s.startHTTP(ctx)
}

func (s *Server) startHTTP(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("mcp: listen %s: %w", s.cfg.ListenAddr, err)
	}

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("mcp listening", zap.String("addr", listener.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpServer.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Handler routes /mcp to the streamable HTTP transport and /healthz to a
// liveness probe, both behind the optional bearer token.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.wrapAuth(handleHealth))
	streamable := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return s.mcp }, nil)
	mux.HandleFunc("/mcp", s.wrapAuth(streamable.ServeHTTP))
	return mux
}

func (s *Server) wrapAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token := strings.TrimSpace(s.cfg.AuthToken); token != "" {
			auth := strings.TrimSpace(r.Header.Get("Authorization"))
			if !strings.HasPrefix(auth, "Bearer ") || strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")) != token {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next.ServeHTTP(w, r)
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}` + "\n"))
}
