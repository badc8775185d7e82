package enrich

import (
	"context"
	"fmt"
	"strings"

	"jobscout-engine/internal/config"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	defaultOpenAIModel = "gpt-4o-mini"
	defaultGeminiModel = "gemini-2.5-flash"
)

// KeyFunc returns the API key of a provider.
type KeyFunc func(provider string) (string, error)

// FromConfig builds the configured stage. It returns nil when enrichment is
// disabled.
func FromConfig(ctx context.Context, cfg config.Config, key KeyFunc) (Stage, error) {
	if !cfg.Enrich.Enabled {
		return nil, nil
	}
	provider := strings.ToLower(strings.TrimSpace(cfg.Enrich.Provider))
	if provider == "" || provider == "heuristic" {
		return Heuristic{}, nil
	}

	apiKey, err := key(provider)
	if err != nil {
		return nil, fmt.Errorf("%s api key: %w", provider, err)
	}
	model, err := NewModel(ctx, provider, cfg.Enrich.Model, cfg.Enrich.BaseURL, apiKey)
	if err != nil {
		return nil, err
	}
	return NewLLM(provider, model, cfg.Enrich.Workers), nil
}

// NewModel opens a langchaingo chat model for provider.
func NewModel(ctx context.Context, provider, model, baseURL, apiKey string) (llms.Model, error) {
	switch provider {
	case "openai":
		if model == "" {
			model = defaultOpenAIModel
		}
		opts := []openai.Option{openai.WithToken(apiKey), openai.WithModel(model)}
		if baseURL != "" {
			opts = append(opts, openai.WithBaseURL(baseURL))
		}
		m, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("openai client: %w", err)
		}
		return m, nil
	case "googleai":
		if model == "" {
			model = defaultGeminiModel
		}
		m, err := googleai.New(ctx, googleai.WithAPIKey(apiKey), googleai.WithDefaultModel(model))
		if err != nil {
			return nil, fmt.Errorf("gemini client: %w", err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown enrichment provider %q", provider)
	}
}
