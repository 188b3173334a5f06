package llm

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiConfig configures the Google Gemini provider.
type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	Rand    *rand.Rand
}

type generateFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// GeminiClient implements Completer with google.golang.org/genai.
type GeminiClient struct {
	model       string
	timeout     time.Duration
	generate    generateFunc
	temperature *temperature
	sleep       sleepFunc
	logger      *zap.Logger
}

func NewGeminiClient(ctx context.Context, cfg GeminiConfig, logger *zap.Logger) (*GeminiClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	c := &GeminiClient{
		model:       cfg.Model,
		timeout:     cfg.Timeout,
		temperature: newTemperature(cfg.Rand),
		sleep:       sleepContext,
		logger:      logger.With(zap.String("provider", "gemini"), zap.String("model", cfg.Model)),
	}

	// Without a key the client stays unconfigured and Complete reports it.
	if cfg.APIKey == "" {
		return c, nil
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	c.generate = client.Models.GenerateContent
	return c, nil
}

func (c *GeminiClient) Model() string {
	return c.model
}

func (c *GeminiClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	if c.generate == nil {
		return "", ErrNotConfigured
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(c.temperature.next())),
		TopP:             genai.Ptr(float32(defaultTopP)),
		FrequencyPenalty: genai.Ptr(float32(defaultFrequencyPenalty)),
		PresencePenalty:  genai.Ptr(float32(defaultPresencePenalty)),
		MaxOutputTokens:  defaultMaxTokens,
	}
	if strings.TrimSpace(system) != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			wait := backoff(attempt)
			c.logger.Warn("rate limited, backing off", zap.Int("attempt", attempt), zap.Duration("wait", wait))
			if err := c.sleep(ctx, wait); err != nil {
				return "", err
			}
		}

		resp, err := c.generate(ctx, c.model, genai.Text(prompt), config)
		if err != nil {
			var apiErr genai.APIError
			if !errors.As(err, &apiErr) {
				return "", fmt.Errorf("GenAI generate failed: %w", err)
			}
			if apiErr.Code == http.StatusTooManyRequests {
				if attempt >= MaxRateLimitRetries {
					return "", &RateLimitError{Attempts: attempt + 1}
				}
				continue
			}
			return "", &BackendError{StatusCode: apiErr.Code, Body: apiErr.Message}
		}

		if resp == nil {
			return "", malformed("empty GenAI response")
		}
		text := resp.Text()
		if strings.TrimSpace(text) == "" {
			return "", malformed("GenAI response has no text")
		}
		return text, nil
	}
}
