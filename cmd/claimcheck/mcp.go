package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stake-plus/claimcheck/src/mcp"
)

var mcpAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose check_claim as an MCP tool",
	Long: `Serve the check_claim tool over MCP. Without a listen address the server
speaks stdio, which is what desktop MCP clients expect. With --addr or
MCP_LISTEN_ADDR it serves streamable HTTP at /mcp, guarded by
MCP_AUTH_TOKEN when that is set.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpAddr, "addr", "", "Serve streamable HTTP on this address instead of stdio")
}

func runMCP(cmd *cobra.Command, args []string) error {
	runner, cfg, err := buildRunner()
	if err != nil {
		return err
	}

	listen := cfg.MCP.ListenAddr
	if mcpAddr != "" {
		listen = mcpAddr
	}

	srv, err := mcp.NewServer(mcp.Config{
		ListenAddr: listen,
		AuthToken:  cfg.MCP.AuthToken,
		Version:    version,
		Logger:     logger,
	}, runner)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Start(ctx)
}
