package mistral

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"homefix/internal/model"
	"homefix/internal/photo"
	"homefix/internal/sanitize"
)

const (
	DefaultBaseURL   = "https://api.mistral.ai"
	DefaultChatModel = "mistral-small-latest"

	defaultTimeout = 60 * time.Second

	maxResponseBytes   = 8 << 20
	maxErrorMessageLen = 200
)

// Client calls the Mistral chat completions API with inline images. It
// implements model.VisionModel.
type Client struct {
	BaseURL          string
	APIKey           string
	DefaultChatModel string
	HTTPClient       *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:          baseURL,
		APIKey:           strings.TrimSpace(apiKey),
		DefaultChatModel: DefaultChatModel,
		HTTPClient:       &http.Client{Timeout: defaultTimeout},
	}
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type contentPart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    *float64        `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends one chat completion request. It never retries.
func (c *Client) Complete(ctx context.Context, req model.CompletionRequest) (string, error) {
	apiKey := strings.TrimSpace(c.APIKey)
	if apiKey == "" {
		return "", &model.ProviderError{Code: "MISTRAL_AUTH", Message: "missing Mistral API key", Retryable: false}
	}

	modelName := strings.TrimSpace(c.DefaultChatModel)
	if modelName == "" {
		modelName = DefaultChatModel
	}

	payload := chatRequest{
		Model:     modelName,
		Messages:  buildMessages(req),
		MaxTokens: req.MaxTokens,
	}
	if req.Temperature > 0 {
		temp := req.Temperature
		payload.Temperature = &temp
	}
	if req.JSON {
		payload.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", &model.ProviderError{Code: "MISTRAL_FAILED", Message: "failed to encode chat request", Retryable: false, Cause: err}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", &model.ProviderError{Code: "MISTRAL_FAILED", Message: "failed to build chat request", Retryable: false, Cause: err}
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return "", &model.ProviderError{Code: "MISTRAL_FAILED", Message: "chat request failed", Retryable: true, Cause: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &model.ProviderError{Code: "MISTRAL_FAILED", Message: "failed to read chat response", Retryable: true, StatusCode: resp.StatusCode, Cause: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", mapProviderError(resp.StatusCode, errorMessage(resp.StatusCode, respBody))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", &model.ProviderError{Code: "MISTRAL_FAILED", Message: "failed to decode chat response", Retryable: false, StatusCode: resp.StatusCode, Cause: err}
	}
	if len(parsed.Choices) == 0 {
		return "", &model.ProviderError{Code: "MISTRAL_FAILED", Message: "chat response had no choices", Retryable: false, StatusCode: resp.StatusCode}
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

func buildMessages(req model.CompletionRequest) []chatMessage {
	messages := make([]chatMessage, 0, 2)
	if system := strings.TrimSpace(req.System); system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}

	if len(req.Images) == 0 {
		return append(messages, chatMessage{Role: "user", Content: req.Text})
	}

	parts := make([]contentPart, 0, len(req.Images)+1)
	parts = append(parts, contentPart{Type: "text", Text: req.Text})
	for _, img := range req.Images {
		parts = append(parts, contentPart{Type: "image_url", ImageURL: photo.DataURI(img)})
	}
	return append(messages, chatMessage{Role: "user", Content: parts})
}

// errorMessage pulls the message or detail field out of an error body. Raw
// bodies are never passed through.
func errorMessage(statusCode int, body []byte) string {
	var parsed struct {
		Message interface{} `json:"message"`
		Detail  interface{} `json:"detail"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		for _, v := range []interface{}{parsed.Message, parsed.Detail} {
			if msg, ok := v.(string); ok && strings.TrimSpace(msg) != "" {
				return sanitize.Truncate(strings.TrimSpace(msg), maxErrorMessageLen)
			}
		}
	}
	return fmt.Sprintf("mistral chat returned status %d", statusCode)
}

func mapProviderError(statusCode int, message string) error {
	pe := &model.ProviderError{
		Code:       "MISTRAL_FAILED",
		Message:    message,
		Retryable:  false,
		StatusCode: statusCode,
	}

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		pe.Code = "MISTRAL_AUTH"
	case statusCode == http.StatusTooManyRequests:
		pe.Code = "MISTRAL_RATE_LIMIT"
		pe.Retryable = true
	case statusCode >= http.StatusInternalServerError:
		pe.Retryable = true
	case statusCode >= http.StatusBadRequest:
		pe.Retryable = false
	default:
		pe.Retryable = true
	}

	return pe
}
