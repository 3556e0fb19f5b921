package vision

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"homefix/internal/config"
	"homefix/internal/gemini"
	"homefix/internal/mistral"
	"homefix/internal/model"
)

// New builds the VisionModel selected by cfg.Model.Provider.
func New(ctx context.Context, cfg config.Config) (model.VisionModel, error) {
	httpClient := &http.Client{Timeout: cfg.Model.Timeout}
	name := strings.TrimSpace(cfg.Model.Name)

	switch cfg.Model.Provider {
	case config.ProviderMistral, "":
		client := mistral.NewClient(cfg.Model.BaseURL, cfg.MistralAPIKey)
		client.HTTPClient = httpClient
		if name != "" {
			client.DefaultChatModel = name
		}
		return client, nil
	case config.ProviderGemini:
		client, err := gemini.NewClient(ctx, gemini.Options{
			APIKey:     cfg.GeminiAPIKey,
			Model:      name,
			BaseURL:    cfg.Model.BaseURL,
			HTTPClient: httpClient,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("%w: unknown model provider %q", config.ErrInvalid, cfg.Model.Provider)
	}
}

// Name describes the provider and model for logs and the CLI.
func Name(cfg config.Config) string {
	name := strings.TrimSpace(cfg.Model.Name)
	switch cfg.Model.Provider {
	case config.ProviderGemini:
		if name == "" {
			name = gemini.DefaultModel
		}
		return config.ProviderGemini + ":" + name
	default:
		if name == "" {
			name = mistral.DefaultChatModel
		}
		return config.ProviderMistral + ":" + name
	}
}
