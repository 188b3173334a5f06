package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// OpenAIConfig configures an OpenAI-compatible chat completions client.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	// Rand seeds the temperature draw; nil uses a time-seeded source.
	Rand *rand.Rand
}

// OpenAIClient implements Completer against any /chat/completions endpoint.
type OpenAIClient struct {
	apiKey      string
	baseURL     string
	model       string
	httpClient  *http.Client
	temperature *temperature
	sleep       sleepFunc
	logger      *zap.Logger
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model            string        `json:"model"`
	Messages         []chatMessage `json:"messages"`
	MaxTokens        int           `json:"max_tokens"`
	Temperature      float64       `json:"temperature"`
	TopP             float64       `json:"top_p"`
	FrequencyPenalty float64       `json:"frequency_penalty"`
	PresencePenalty  float64       `json:"presence_penalty"`
}

type chatResponse struct {
	Choices []struct {
		Message *struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func NewOpenAIClient(cfg OpenAIConfig, logger *zap.Logger) *OpenAIClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenAIClient{
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		model:       cfg.Model,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		temperature: newTemperature(cfg.Rand),
		sleep:       sleepContext,
		logger:      logger.With(zap.String("provider", "openai"), zap.String("model", cfg.Model)),
	}
}

// Model is the model identifier sent with every request.
func (c *OpenAIClient) Model() string {
	return c.model
}

// Complete sends the prompt pair. 429 replies are retried up to
// MaxRateLimitRetries times, honouring Retry-After when the server sends it.
func (c *OpenAIClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		MaxTokens:        defaultMaxTokens,
		Temperature:      c.temperature.next(),
		TopP:             defaultTopP,
		FrequencyPenalty: defaultFrequencyPenalty,
		PresencePenalty:  defaultPresencePenalty,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	var retryAfter time.Duration
	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			wait := retryAfter
			if wait <= 0 {
				wait = backoff(attempt)
			}
			c.logger.Warn("rate limited, backing off",
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait))
			if err := c.sleep(ctx, wait); err != nil {
				return "", err
			}
		}

		status, body, header, err := c.post(ctx, payload)
		if err != nil {
			return "", err
		}

		if status == http.StatusTooManyRequests {
			retryAfter = parseRetryAfter(header.Get("Retry-After"))
			if attempt >= MaxRateLimitRetries {
				return "", &RateLimitError{Attempts: attempt + 1, RetryAfter: retryAfter}
			}
			continue
		}

		if status < 200 || status > 299 {
			return "", &BackendError{StatusCode: status, Body: strings.TrimSpace(string(body))}
		}

		var resp chatResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", malformed("decode completion payload: %v", err)
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Message == nil || resp.Choices[0].Message.Content == nil {
			return "", malformed("no choices[0].message.content in reply")
		}

		c.logger.Debug("completion received", zap.Int("attempts", attempt+1), zap.Float64("temperature", reqBody.Temperature))
		return *resp.Choices[0].Message.Content, nil
	}
}

func (c *OpenAIClient) post(ctx context.Context, payload []byte) (int, []byte, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return 0, nil, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, resp.Header, nil
}

// parseRetryAfter accepts delay-seconds or an HTTP date; anything else is 0.
func parseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
