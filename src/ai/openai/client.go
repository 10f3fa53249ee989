package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/stake-plus/claimcheck/src/ai/core"
	"github.com/stake-plus/claimcheck/src/webclient"
)

const defaultBaseURL = "https://api.openai.com/v1"

func init() {
	core.RegisterProvider("openai", newClient, "chatgpt")
}

type client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	defaults   core.Options
}

func newClient(cfg core.FactoryConfig) (core.Client, error) {
	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("openai: API key not configured")
	}

	return &client{
		apiKey:     cfg.OpenAIKey,
		baseURL:    strings.TrimRight(valueOrDefault(cfg.OpenAIBaseURL, defaultBaseURL), "/"),
		httpClient: webclient.NewDefault(orDuration(cfg.Timeout, 60*time.Second)),
		defaults: core.Options{
			Model:               core.ResolveModelName("openai", cfg.Model),
			Temperature:         core.Float(cfg.Temperature),
			MaxCompletionTokens: orInt(cfg.MaxCompletionTokens, 1000),
		},
	}, nil
}

type chatRequest struct {
	Model               string          `json:"model"`
	Messages            []chatMessage   `json:"messages"`
	Temperature         float64         `json:"temperature"`
	MaxCompletionTokens int             `json:"max_completion_tokens,omitempty"`
	ResponseFormat      *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}

func (c *client) Complete(ctx context.Context, messages []core.Message, opts core.Options) (string, error) {
	merged := c.merge(opts)

	payload := chatRequest{
		Model:               merged.Model,
		Temperature:         *merged.Temperature,
		MaxCompletionTokens: merged.MaxCompletionTokens,
	}
	for _, m := range messages {
		payload.Messages = append(payload.Messages, chatMessage{Role: m.Role, Content: m.Content})
	}
	if merged.JSON {
		payload.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("openai: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("openai: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	status, body, err := webclient.Do(ctx, c.httpClient, req, 0)
	if err != nil {
		var statusErr *webclient.StatusError
		if errors.As(err, &statusErr) {
			return "", decodeAPIError(status, body)
		}
		return "", fmt.Errorf("openai: request failed: %w", err)
	}

	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("openai: decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices in response")
	}
	return result.Choices[0].Message.Content, nil
}

func decodeAPIError(status int, body []byte) error {
	apiErr := &core.APIError{Provider: "openai", Status: status}
	var decoded errorResponse
	if err := json.Unmarshal(body, &decoded); err == nil && decoded.Error.Message != "" {
		apiErr.Message = decoded.Error.Message
		apiErr.Type = decoded.Error.Type
		if decoded.Error.Code != nil {
			apiErr.Code = fmt.Sprint(decoded.Error.Code)
		}
		return apiErr
	}
	apiErr.Message = truncatePayload(body, 256)
	return apiErr
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

func valueOrDefault(val, def string) string {
	if val != "" {
		return val
	}
	return def
}

func orInt(v, d int) int {
	if v != 0 {
		return v
	}
	return d
}

func orDuration(v, d time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return d
}

func truncatePayload(b []byte, limit int) string {
	if len(b) <= limit {
		return string(b)
	}
	return string(b[:limit]) + "... (truncated)"
}
