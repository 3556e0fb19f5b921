package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"homefix/internal/model"
)

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(context.Background(), Options{})
	var pe *model.ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "GEMINI_AUTH", pe.Code)
}

func TestComplete_InlineImages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/"+DefaultModel+":generateContent"), r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		contents, _ := body["contents"].([]any)
		require.Len(t, contents, 1)
		first, _ := contents[0].(map[string]any)
		parts, _ := first["parts"].([]any)
		assert.Len(t, parts, 3)
		_, hasSystem := body["systemInstruction"]
		assert.True(t, hasSystem)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Clogged drain\n"},{"text":"Low risk"}]}}]}`))
	}))
	defer srv.Close()

	c, err := NewClient(context.Background(), Options{APIKey: "key", BaseURL: srv.URL})
	require.NoError(t, err)

	got, err := c.Complete(context.Background(), model.CompletionRequest{
		System: "diagnose",
		Text:   "what is this",
		Images: []model.Photo{
			{Bytes: []byte("a"), MIMEType: model.MIMEJPEG},
			{Bytes: []byte("b"), MIMEType: model.MIMEPNG},
		},
		Temperature: 0.3,
		MaxTokens:   1000,
	})
	require.NoError(t, err)
	assert.Equal(t, "Clogged drain\nLow risk", got)
}

func TestComplete_RateLimitIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer srv.Close()

	c, err := NewClient(context.Background(), Options{APIKey: "key", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), model.CompletionRequest{Text: "hi"})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrUpstreamCall)
	var pe *model.ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "GEMINI_RATE_LIMIT", pe.Code)
	assert.True(t, pe.Retryable)
}

func TestMapError_TransportFailure(t *testing.T) {
	err := mapError(errors.New("dial tcp: refused"))
	var pe *model.ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "GEMINI_FAILED", pe.Code)
	assert.True(t, pe.Retryable)
}

func TestMapError_AuthFailure(t *testing.T) {
	err := mapError(genai.APIError{Code: http.StatusForbidden, Message: "bad key"})
	var pe *model.ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "GEMINI_AUTH", pe.Code)
	assert.False(t, pe.Retryable)
	assert.Equal(t, "bad key", pe.Message)
}
