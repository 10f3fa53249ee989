package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoClient struct{ cfg FactoryConfig }

func (e echoClient) Complete(_ context.Context, msgs []Message, _ Options) (string, error) {
	return msgs[len(msgs)-1].Content, nil
}

func TestRegisterAndNewClient(t *testing.T) {
	RegisterProvider("echo-test", func(cfg FactoryConfig) (Client, error) {
		return echoClient{cfg: cfg}, nil
	}, "Echo-Alias")

	c, err := NewClient(FactoryConfig{Provider: "ECHO-TEST", Model: "m"})
	require.NoError(t, err)
	out, err := c.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "hi", out)

	_, err = NewClient(FactoryConfig{Provider: "echo-alias"})
	require.NoError(t, err)
	assert.Contains(t, Registered(), "echo-alias")
}

func TestNewClientUnknownProvider(t *testing.T) {
	_, err := NewClient(FactoryConfig{Provider: "nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"nope"`)
}

func TestResolveModelName(t *testing.T) {
	assert.Equal(t, "gpt-4o-mini", ResolveModelName("openai", ""))
	assert.Equal(t, "gemini-2.5-flash", ResolveModelName(" Gemini ", " "))
	assert.Equal(t, "custom", ResolveModelName("openai", "custom"))
	assert.Equal(t, "unknown", ResolveModelName("other", ""))
}

func TestAPIErrorMessage(t *testing.T) {
	err := &APIError{Provider: "openai", Status: 401, Type: "invalid_request_error", Code: "invalid_api_key", Message: "bad key"}
	assert.Contains(t, err.Error(), "status 401")
	assert.Contains(t, err.Error(), "invalid_api_key")
}

func TestKnownProviders(t *testing.T) {
	assert.Equal(t, []string{"gemini", "openai"}, KnownProviders())
}
