package vision

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homefix/internal/config"
	"homefix/internal/gemini"
	"homefix/internal/mistral"
)

func TestNew_Mistral(t *testing.T) {
	cfg := config.Default()
	cfg.MistralAPIKey = "k"
	cfg.Model.Name = "pixtral-large-latest"

	vm, err := New(context.Background(), cfg)
	require.NoError(t, err)
	client, ok := vm.(*mistral.Client)
	require.True(t, ok)
	assert.Equal(t, "pixtral-large-latest", client.DefaultChatModel)
	assert.Equal(t, mistral.DefaultBaseURL, client.BaseURL)
	assert.Equal(t, cfg.Model.Timeout, client.HTTPClient.Timeout)
	assert.Equal(t, "mistral:pixtral-large-latest", Name(cfg))
}

func TestNew_Gemini(t *testing.T) {
	cfg := config.Default()
	cfg.Model.Provider = config.ProviderGemini
	cfg.GeminiAPIKey = "k"

	vm, err := New(context.Background(), cfg)
	require.NoError(t, err)
	_, ok := vm.(*gemini.Client)
	assert.True(t, ok)
	assert.Equal(t, "gemini:"+gemini.DefaultModel, Name(cfg))
}

func TestNew_UnknownProvider(t *testing.T) {
	cfg := config.Default()
	cfg.Model.Provider = "openai"
	_, err := New(context.Background(), cfg)
	assert.True(t, errors.Is(err, config.ErrInvalid))
}
