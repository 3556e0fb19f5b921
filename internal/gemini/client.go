package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"homefix/internal/model"
)

const (
	DefaultModel = "gemini-2.5-flash"

	defaultTimeout = 60 * time.Second
)

type Options struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// Client is a model.VisionModel backed by the Gemini API.
type Client struct {
	cli   *genai.Client
	model string
}

func NewClient(ctx context.Context, opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, &model.ProviderError{Code: "GEMINI_AUTH", Message: "missing Gemini API key"}
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: strings.TrimRight(base, "/") + "/"}
	}

	cli, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	modelName := strings.TrimSpace(opts.Model)
	if modelName == "" {
		modelName = DefaultModel
	}
	return &Client{cli: cli, model: modelName}, nil
}

func (c *Client) Name() string { return "gemini:" + c.model }

func (c *Client) Complete(ctx context.Context, req model.CompletionRequest) (string, error) {
	parts := make([]*genai.Part, 0, len(req.Images)+1)
	parts = append(parts, &genai.Part{Text: req.Text})
	for _, img := range req.Images {
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: img.MIMEType, Data: img.Bytes}})
	}

	gc := &genai.GenerateContentConfig{}
	if system := strings.TrimSpace(req.System); system != "" {
		gc.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}
	if req.Temperature > 0 {
		gc.Temperature = genai.Ptr(float32(req.Temperature))
	}
	if req.MaxTokens > 0 {
		gc.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.JSON {
		gc.ResponseMIMEType = "application/json"
	}

	resp, err := c.cli.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{{Role: "user", Parts: parts}},
		gc,
	)
	if err != nil {
		return "", mapError(err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &model.ProviderError{Code: "GEMINI_FAILED", Message: "response had no candidates"}
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil {
			b.WriteString(p.Text)
		}
	}
	return strings.TrimSpace(b.String()), nil
}

func mapError(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		var apiErrPtr *genai.APIError
		if !errors.As(err, &apiErrPtr) || apiErrPtr == nil {
			return &model.ProviderError{Code: "GEMINI_FAILED", Message: "generate content failed", Retryable: true, Cause: err}
		}
		apiErr = *apiErrPtr
	}

	message := strings.TrimSpace(apiErr.Message)
	if message == "" {
		message = fmt.Sprintf("gemini returned status %d", apiErr.Code)
	}
	pe := &model.ProviderError{Code: "GEMINI_FAILED", Message: message, StatusCode: apiErr.Code, Cause: err}
	switch {
	case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
		pe.Code = "GEMINI_AUTH"
	case apiErr.Code == http.StatusTooManyRequests:
		pe.Code = "GEMINI_RATE_LIMIT"
		pe.Retryable = true
	case apiErr.Code >= http.StatusInternalServerError:
		pe.Retryable = true
	}
	return pe
}
