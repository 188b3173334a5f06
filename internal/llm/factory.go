package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/taiwoajasa245/confession-api/pkg/config"
)

// NewCompleter builds the configured provider for the primary model and each
// fallback model, wrapped in a FailoverCompleter.
func NewCompleter(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*FailoverCompleter, error) {
	models := append([]string{cfg.LLMModel}, cfg.LLMFallbackModels...)

	clients := make([]ModelCompleter, 0, len(models))
	for _, model := range models {
		switch cfg.LLMProvider {
		case "openai":
			clients = append(clients, NewOpenAIClient(OpenAIConfig{
				APIKey:  cfg.LLMAPIKey,
				BaseURL: cfg.LLMBaseURL,
				Model:   model,
				Timeout: cfg.LLMTimeout,
			}, logger))
		case "gemini":
			baseURL := cfg.LLMBaseURL
			if baseURL == "https://api.openai.com/v1" {
				baseURL = ""
			}
			c, err := NewGeminiClient(ctx, GeminiConfig{
				APIKey:  cfg.LLMAPIKey,
				BaseURL: baseURL,
				Model:   model,
				Timeout: cfg.LLMTimeout,
			}, logger)
			if err != nil {
				return nil, err
			}
			clients = append(clients, c)
		default:
			return nil, fmt.Errorf("unsupported llm provider: %s (supported: openai, gemini)", cfg.LLMProvider)
		}
	}

	return NewFailoverCompleter(clients, cfg.LLMFailover, logger), nil
}
