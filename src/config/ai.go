package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/stake-plus/claimcheck/src/ai/core"
)

// AI holds the language-model settings.
type AI struct {
	Provider      string
	OpenAIKey     string
	OpenAIBaseURL string
	GeminiKey     string
	Model         string
	Temperature   float64
	MaxTokens     int
	Timeout       time.Duration
}

// APIKey returns the credential for the configured provider.
func (a AI) APIKey() string {
	if a.Provider == "gemini" {
		return a.GeminiKey
	}
	return a.OpenAIKey
}

func loadAI(env reader) (AI, error) {
	provider := strings.ToLower(env.str("AI_PROVIDER", "openai"))
	switch provider {
	case "openai", "gemini":
	default:
		return AI{}, &Error{Key: "AI_PROVIDER", Err: fmt.Errorf("%w: unknown provider %q", ErrInvalidValue, provider)}
	}

	out := AI{
		Provider:      provider,
		OpenAIKey:     env.str("OPENAI_API_KEY", ""),
		OpenAIBaseURL: strings.TrimRight(env.str("OPENAI_BASE_URL", "https://api.openai.com/v1"), "/"),
		GeminiKey:     env.str("GEMINI_API_KEY", ""),
	}

	switch {
	case provider == "openai" && out.OpenAIKey == "":
		return AI{}, &Error{Key: "OPENAI_API_KEY", Err: ErrMissingCredential}
	case provider == "gemini" && out.GeminiKey == "":
		return AI{}, &Error{Key: "GEMINI_API_KEY", Err: ErrMissingCredential}
	}

	out.Model = core.ResolveModelName(provider, env.str("MODEL_NAME", ""))

	var err error
	if out.MaxTokens, err = env.integer("MAX_TOKENS", 1000, 1); err != nil {
		return AI{}, err
	}
	if out.Temperature, err = env.number("TEMPERATURE", 0.8, 0, 2); err != nil {
		return AI{}, err
	}
	if out.Timeout, err = env.seconds("LLM_TIMEOUT", 60*time.Second); err != nil {
		return AI{}, err
	}
	return out, nil
}
