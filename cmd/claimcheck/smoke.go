package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stake-plus/claimcheck/src/ai/core"
	"github.com/stake-plus/claimcheck/src/config"
	"github.com/stake-plus/claimcheck/src/search"
)

const (
	defaultSmokePrompt = `Reply with the JSON object {"ok": true} and nothing else.`
	defaultSmokeQuery  = "Eiffel Tower height"
)

var (
	smokeProviders string
	smokeTimeout   time.Duration
	smokeMaxWidth  int
	smokeSearch    bool
)

var smokeCmd = &cobra.Command{
	Use:   "smoke",
	Short: "Send a trivial request to each model provider",
	Long: `Send a short fixed prompt to each listed model provider and report the
reply and latency. Credentials and model settings come from the environment.
With --search the configured search provider is queried as well.`,
	Args: cobra.NoArgs,
	RunE: runSmoke,
}

func init() {
	smokeCmd.Flags().StringVar(&smokeProviders, "providers", "", "Comma-separated provider list or 'all' (default: AI_PROVIDER)")
	smokeCmd.Flags().DurationVar(&smokeTimeout, "timeout", 45*time.Second, "Per-provider timeout")
	smokeCmd.Flags().IntVar(&smokeMaxWidth, "max-width", 400, "Maximum columns of output to print per response (0=unlimited)")
	smokeCmd.Flags().BoolVar(&smokeSearch, "search", false, "Also run a query through the search provider")
}

func runSmoke(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger.Debug("registered providers", zap.Strings("names", core.Registered()))
	providers := resolveProviders(smokeProviders, cfg.AI.Provider)
	if len(providers) == 0 {
		return fmt.Errorf("no providers specified")
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, provider := range providers {
		if err := smokeProvider(cmd.Context(), out, provider, cfg.AI); err != nil {
			fmt.Fprintf(out, "[%s] ERROR: %v\n", provider, err)
			failed++
		}
	}
	if smokeSearch {
		if err := smokeSearchProvider(cmd.Context(), out, cfg.Search); err != nil {
			fmt.Fprintf(out, "[search] ERROR: %v\n", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d smoke check(s) failed", failed)
	}
	return nil
}

func smokeProvider(ctx context.Context, out io.Writer, provider string, ai config.AI) error {
	if provider != ai.Provider {
		// The configured model belongs to another provider.
		ai.Model = ""
	}
	ai.Provider = provider
	client, err := newModelClient(ai)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, smokeTimeout)
	defer cancel()

	start := time.Now()
	reply, err := client.Complete(ctx, []core.Message{
		{Role: core.RoleUser, Content: defaultSmokePrompt},
	}, core.Options{Model: ai.Model, JSON: true})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "=== %s ===\nok (%.1fs)\n%s\n", provider, time.Since(start).Seconds(), truncate(reply, smokeMaxWidth))
	return nil
}

func smokeSearchProvider(ctx context.Context, out io.Writer, cfg config.Search) error {
	client := search.NewClient(search.FromConfig(cfg), logger)
	start := time.Now()
	results, err := client.Search(ctx, defaultSmokeQuery, cfg.MaxResults, cfg.Timeout)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "=== search: %s ===\n%d result(s) (%.1fs)\n", client.Provider().Name(), len(results), time.Since(start).Seconds())
	for i, r := range results {
		fmt.Fprintf(out, "%d. %s\n   %s\n", i+1, r.Title, r.URL)
	}
	return nil
}

func resolveProviders(raw, fallback string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = fallback
	}
	if strings.EqualFold(raw, "all") {
		return core.KnownProviders()
	}
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == ';'
	})
	var out []string
	seen := map[string]struct{}{}
	for _, p := range parts {
		key := strings.ToLower(strings.TrimSpace(p))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

// truncate cuts text to limit display columns without splitting a rune.
func truncate(text string, limit int) string {
	if limit <= 0 || runewidth.StringWidth(text) <= limit {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(runewidth.Truncate(text, limit, "")) + "...(truncated)"
}
