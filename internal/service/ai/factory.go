package ai

import (
	"context"
	"fmt"

	"github.com/dkarpushin/tubechat/internal/config"
)

// Provider names accepted in configuration.
const (
	ProviderOpenAI = "openai"
	ProviderArk    = "ark"
)

// NewProviderFromConfig constructs the configured completion provider.
func NewProviderFromConfig(ctx context.Context, cfg config.AIConfig) (Provider, error) {
	switch cfg.Provider {
	case ProviderArk:
		chatModel, err := cfg.NewArkChatModel(ctx)
		if err != nil {
			return nil, fmt.Errorf("create ark chat model: %w", err)
		}
		return NewArk(chatModel), nil
	case ProviderOpenAI, "":
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown completion provider: %s", cfg.Provider)
	}
}

// DefaultOptions converts configured sampling defaults into call
// options.
func DefaultOptions(cfg config.AIConfig) Options {
	opts := Options{Model: cfg.Model, MaxTokens: cfg.MaxTokens}
	if cfg.Temperature != nil {
		val := float32(*cfg.Temperature)
		opts.Temperature = &val
	}
	return opts
}
