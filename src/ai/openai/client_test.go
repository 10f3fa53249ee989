package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stake-plus/claimcheck/src/ai/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteSendsChatRequest(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"verdict\":\"Likely True\"}"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c, err := core.NewClient(core.FactoryConfig{
		Provider:            "openai",
		OpenAIKey:           "sk-test",
		OpenAIBaseURL:       srv.URL + "/",
		Temperature:         0.8,
		MaxCompletionTokens: 1000,
	})
	require.NoError(t, err)

	out, err := c.Complete(context.Background(), []core.Message{
		{Role: core.RoleSystem, Content: "sys"},
		{Role: core.RoleUser, Content: "claim"},
	}, core.Options{Temperature: core.Float(0), JSON: true})
	require.NoError(t, err)
	assert.Equal(t, `{"verdict":"Likely True"}`, out)

	assert.Equal(t, "gpt-4o-mini", got["model"])
	assert.Equal(t, float64(0), got["temperature"])
	assert.Equal(t, float64(1000), got["max_completion_tokens"])
	assert.Equal(t, map[string]any{"type": "json_object"}, got["response_format"])
	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, msgs, 2)
}

func TestCompleteDecodesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key","type":"invalid_request_error","code":"invalid_api_key"}}`))
	}))
	defer srv.Close()

	c, err := core.NewClient(core.FactoryConfig{Provider: "openai", OpenAIKey: "sk-bad", OpenAIBaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), []core.Message{{Role: core.RoleUser, Content: "x"}}, core.Options{})
	require.Error(t, err)
	var apiErr *core.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "invalid_api_key", apiErr.Code)
	assert.NotContains(t, err.Error(), "sk-bad")
}

func TestCompleteNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c, err := core.NewClient(core.FactoryConfig{Provider: "openai", OpenAIKey: "sk", OpenAIBaseURL: srv.URL})
	require.NoError(t, err)
	_, err = c.Complete(context.Background(), []core.Message{{Role: core.RoleUser, Content: "x"}}, core.Options{})
	require.Error(t, err)
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := core.NewClient(core.FactoryConfig{Provider: "openai"})
	require.Error(t, err)
}
