package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/stake-plus/claimcheck/src/ai/core"
	"github.com/stake-plus/claimcheck/src/webclient"
	"google.golang.org/genai"
)

func init() {
	core.RegisterProvider("gemini", newClient, "google")
}

type client struct {
	models   *genai.Models
	defaults core.Options
}

func newClient(cfg core.FactoryConfig) (core.Client, error) {
	if cfg.GeminiKey == "" {
		return nil, fmt.Errorf("gemini: API key not configured")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	gc, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:     cfg.GeminiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: webclient.NewDefault(timeout),
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	maxTokens := cfg.MaxCompletionTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}
	return &client{
		models: gc.Models,
		defaults: core.Options{
			Model:               core.ResolveModelName("gemini", cfg.Model),
			Temperature:         core.Float(cfg.Temperature),
			MaxCompletionTokens: maxTokens,
		},
	}, nil
}

func (c *client) Complete(ctx context.Context, messages []core.Message, opts core.Options) (string, error) {
	merged := c.merge(opts)
	system, contents := splitMessages(messages)

	gen := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(*merged.Temperature)),
		MaxOutputTokens: int32(merged.MaxCompletionTokens),
	}
	if system != "" {
		gen.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if merged.JSON {
		gen.ResponseMIMEType = "application/json"
	}

	resp, err := c.models.GenerateContent(ctx, merged.Model, contents, gen)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	return text, nil
}

// splitMessages folds system turns into one instruction and maps the rest to
// genai contents; assistant turns use the model role.
func splitMessages(messages []core.Message) (string, []*genai.Content) {
	var system []string
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case core.RoleSystem:
			system = append(system, m.Content)
		case core.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	return strings.Join(system, "\n\n"), contents
}

func (c *client) merge(opts core.Options) core.Options {
	out := c.defaults
	if opts.Model != "" {
		out.Model = opts.Model
	}
	if opts.Temperature != nil {
		out.Temperature = opts.Temperature
	}
	if opts.MaxCompletionTokens != 0 {
		out.MaxCompletionTokens = opts.MaxCompletionTokens
	}
	out.JSON = opts.JSON
	return out
}
