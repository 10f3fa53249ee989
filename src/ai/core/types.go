package core

import (
	"context"
	"fmt"
)

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single chat turn.
type Message struct {
	Role    string
	Content string
}

// Options controls model behavior; zero values fall back to the client defaults.
// Temperature is a pointer so an explicit 0 survives the merge.
type Options struct {
	Model               string
	Temperature         *float64
	MaxCompletionTokens int
	// JSON asks the provider for a JSON object response when it supports it.
	JSON bool
}

// Float returns a pointer to v, for Options.Temperature.
func Float(v float64) *float64 { return &v }

// Client is a provider-agnostic interface for LLM operations we need.
type Client interface {
	// Complete sends the conversation and returns the assistant text.
	Complete(ctx context.Context, messages []Message, opts Options) (string, error)
}

// APIError is an upstream rejection decoded from a provider error body.
type APIError struct {
	Provider string
	Status   int
	Type     string
	Code     string
	Message  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: status %d: %s (type: %s, code: %s)", e.Provider, e.Status, e.Message, e.Type, e.Code)
}
