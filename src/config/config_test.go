package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(envOf(map[string]string{"OPENAI_API_KEY": "sk-test"}))
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.Model)
	assert.Equal(t, 1000, cfg.AI.MaxTokens)
	assert.InDelta(t, 0.8, cfg.AI.Temperature, 1e-9)
	assert.Equal(t, 60*time.Second, cfg.AI.Timeout)
	assert.Equal(t, "https://api.openai.com/v1", cfg.AI.OpenAIBaseURL)
	assert.Equal(t, "sk-test", cfg.AI.APIKey())

	assert.Equal(t, SearchDuckDuckGo, cfg.Search.Provider)
	assert.Equal(t, 5, cfg.Search.MaxResults)
	assert.Equal(t, 10*time.Second, cfg.Search.Timeout)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10, cfg.Server.RateLimitPerMinute)
}

func TestLoadMissingOpenAIKey(t *testing.T) {
	_, err := LoadFrom(envOf(map[string]string{"GOOGLE_API_KEY": "g", "GOOGLE_CSE_ID": "cx"}))
	require.Error(t, err)

	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "OPENAI_API_KEY", cfgErr.Key)
	assert.True(t, errors.Is(err, ErrMissingCredential))
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadFrom(envOf(map[string]string{
		"OPENAI_API_KEY":     "sk",
		"OPENAI_BASE_URL":    "https://openrouter.ai/api/v1/",
		"MODEL_NAME":         "gpt-5-nano",
		"MAX_TOKENS":         "512",
		"TEMPERATURE":        "0",
		"MAX_SEARCH_RESULTS": "3",
		"SEARCH_TIMEOUT":     "2.5",
		"LLM_TIMEOUT":        "1500ms",
		"GOOGLE_API_KEY":     "g",
		"GOOGLE_CSE_ID":      "cx",
		"PORT":               "9000",
	}))
	require.NoError(t, err)

	assert.Equal(t, "gpt-5-nano", cfg.AI.Model)
	assert.Equal(t, 512, cfg.AI.MaxTokens)
	assert.Zero(t, cfg.AI.Temperature)
	assert.Equal(t, 1500*time.Millisecond, cfg.AI.Timeout)
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.AI.OpenAIBaseURL)
	assert.Equal(t, SearchGoogle, cfg.Search.Provider)
	assert.Equal(t, 3, cfg.Search.MaxResults)
	assert.Equal(t, 2500*time.Millisecond, cfg.Search.Timeout)
	assert.Equal(t, "9000", cfg.Server.Port)
}

func TestLoadGeminiProvider(t *testing.T) {
	_, err := LoadFrom(envOf(map[string]string{"AI_PROVIDER": "gemini"}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingCredential))

	cfg, err := LoadFrom(envOf(map[string]string{"AI_PROVIDER": "Gemini", "GEMINI_API_KEY": "k"}))
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.AI.Model)
	assert.Equal(t, "k", cfg.AI.APIKey())
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"non numeric results", "MAX_SEARCH_RESULTS", "five"},
		{"zero results", "MAX_SEARCH_RESULTS", "0"},
		{"zero timeout", "SEARCH_TIMEOUT", "0"},
		{"negative timeout", "SEARCH_TIMEOUT", "-3"},
		{"garbage timeout", "SEARCH_TIMEOUT", "soon"},
		{"temperature too high", "TEMPERATURE", "3"},
		{"zero tokens", "MAX_TOKENS", "0"},
		{"unknown provider", "AI_PROVIDER", "llama"},
		{"unknown search provider", "SEARCH_PROVIDER", "bing"},
		{"google without keys", "SEARCH_PROVIDER", "google"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(envOf(map[string]string{"OPENAI_API_KEY": "sk", tt.key: tt.val}))
			require.Error(t, err)
			var cfgErr *Error
			assert.True(t, errors.As(err, &cfgErr))
		})
	}
}

func TestLoadSearchNone(t *testing.T) {
	cfg, err := LoadFrom(envOf(map[string]string{"OPENAI_API_KEY": "sk", "SEARCH_PROVIDER": "none"}))
	require.NoError(t, err)
	assert.Equal(t, SearchNone, cfg.Search.Provider)
}

func TestLoadPresentationSettings(t *testing.T) {
	cfg, err := LoadFrom(envOf(map[string]string{
		"OPENAI_API_KEY":  "sk-test",
		"DISCORD_TOKEN":   "bot-token",
		"GUILD_ID":        "1234",
		"REDIS_URL":       "redis://localhost:6379/0",
		"MCP_LISTEN_ADDR": ":9090",
		"MCP_AUTH_TOKEN":  "secret",
	}))
	require.NoError(t, err)

	assert.Equal(t, Discord{Token: "bot-token", GuildID: "1234"}, cfg.Discord)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Server.RedisURL)
	assert.Equal(t, MCP{ListenAddr: ":9090", AuthToken: "secret"}, cfg.MCP)
}

func TestLoadTrustedProxies(t *testing.T) {
	cfg, err := LoadFrom(envOf(map[string]string{
		"OPENAI_API_KEY":  "sk-test",
		"TRUSTED_PROXIES": "10.0.0.0/8, 192.0.2.1,",
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/8", "192.0.2.1"}, cfg.Server.TrustedProxies)

	_, err = LoadFrom(envOf(map[string]string{
		"OPENAI_API_KEY":  "sk-test",
		"TRUSTED_PROXIES": "proxy.internal",
	}))
	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "TRUSTED_PROXIES", cfgErr.Key)
	assert.True(t, errors.Is(err, ErrInvalidValue))
}
