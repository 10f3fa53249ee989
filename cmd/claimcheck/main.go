package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stake-plus/claimcheck/src/ai/core"
	_ "github.com/stake-plus/claimcheck/src/ai/providers"
	"github.com/stake-plus/claimcheck/src/claims"
	"github.com/stake-plus/claimcheck/src/config"
	"github.com/stake-plus/claimcheck/src/logging"
	"github.com/stake-plus/claimcheck/src/pipeline"
	"github.com/stake-plus/claimcheck/src/search"
)

var version = "dev"

var (
	verbose bool
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "claimcheck",
	Short: "Check a news headline or claim against live web sources",
	Long: `claimcheck searches the web for a claim, asks a language model to weigh
the claim against what it found and reports a credibility score, a verdict
and the sources it used.

The same check is served over HTTP, as a Discord slash command and as an
MCP tool.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New(verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(discordCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(smokeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newModelClient builds the configured provider client.
func newModelClient(cfg config.AI) (core.Client, error) {
	client, err := core.NewClient(core.FactoryConfig{
		Provider:            cfg.Provider,
		Model:               cfg.Model,
		Temperature:         cfg.Temperature,
		MaxCompletionTokens: cfg.MaxTokens,
		Timeout:             cfg.Timeout,
		OpenAIKey:           cfg.OpenAIKey,
		OpenAIBaseURL:       cfg.OpenAIBaseURL,
		GeminiKey:           cfg.GeminiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("model client: %w", err)
	}
	return client, nil
}

// buildRunner loads the environment and assembles search, analysis and the
// pipeline that sequences them.
func buildRunner() (*pipeline.Runner, config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, config.Config{}, err
	}

	client, err := newModelClient(cfg.AI)
	if err != nil {
		return nil, config.Config{}, err
	}

	analyzer := claims.NewAnalyzer(client, claims.OptionsFromConfig(cfg.AI), logger)
	searchClient := search.NewClient(search.FromConfig(cfg.Search), logger)

	logger.Debug("pipeline configured",
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("model", cfg.AI.Model),
		zap.String("search_provider", searchClient.Provider().Name()),
		zap.Int("max_results", cfg.Search.MaxResults))

	return pipeline.NewRunner(searchClient, analyzer, pipeline.SettingsFromConfig(cfg.Search), logger), cfg, nil
}
