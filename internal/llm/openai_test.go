package llm

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestClient(t *testing.T, url string) (*OpenAIClient, *[]time.Duration) {
	t.Helper()
	c := NewOpenAIClient(OpenAIConfig{
		APIKey:  "test-key",
		BaseURL: url,
		Model:   "test-model",
		Rand:    rand.New(rand.NewPCG(1, 2)),
	}, zaptest.NewLogger(t))

	var waits []time.Duration
	c.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	return c, &waits
}

func TestOpenAIClient_Complete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test-model", body.Model)
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "system", body.Messages[0].Role)
		assert.Equal(t, "be brief", body.Messages[0].Content)
		assert.Equal(t, "user", body.Messages[1].Role)
		assert.Equal(t, "hello", body.Messages[1].Content)
		assert.GreaterOrEqual(t, body.Temperature, 0.8)
		assert.Less(t, body.Temperature, 1.0)
		assert.Equal(t, defaultMaxTokens, body.MaxTokens)
		assert.Equal(t, defaultTopP, body.TopP)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"Hello, world!"}}]}`))
	}))
	defer server.Close()

	c, _ := newTestClient(t, server.URL)
	out, err := c.Complete(context.Background(), "be brief", "hello")
	require.NoError(t, err)
	assert.Equal(t, "Hello, world!", out)
}

func TestOpenAIClient_Complete_NoKey(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	c, _ := newTestClient(t, server.URL)
	c.apiKey = ""

	_, err := c.Complete(context.Background(), "", "hello")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Zero(t, calls.Load())
}

func TestOpenAIClient_Complete_RetryAfterHonoured(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.Header().Set("Retry-After", "7")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer server.Close()

	c, waits := newTestClient(t, server.URL)
	out, err := c.Complete(context.Background(), "", "hello")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []time.Duration{7 * time.Second, 7 * time.Second}, *waits)
}

func TestOpenAIClient_Complete_RateLimitExhausted(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c, waits := newTestClient(t, server.URL)
	_, err := c.Complete(context.Background(), "", "hello")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRateLimited)
	var rlErr *RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, 4, rlErr.Attempts)
	assert.Equal(t, int32(1+MaxRateLimitRetries), calls.Load())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, *waits)
}

func TestOpenAIClient_Complete_BackendError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("upstream exploded\n"))
	}))
	defer server.Close()

	c, _ := newTestClient(t, server.URL)
	_, err := c.Complete(context.Background(), "", "hello")

	var backendErr *BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, http.StatusInternalServerError, backendErr.StatusCode)
	assert.Equal(t, "upstream exploded", backendErr.Body)
	assert.True(t, backendErr.Retryable())
	assert.Equal(t, int32(1), calls.Load(), "non-429 errors are not retried")
}

func TestOpenAIClient_Complete_MalformedPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no choices", `{"choices":[]}`},
		{"no message", `{"choices":[{}]}`},
		{"no content", `{"choices":[{"message":{}}]}`},
		{"not json", `<html>oops</html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c, _ := newTestClient(t, server.URL)
			_, err := c.Complete(context.Background(), "", "hello")
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestOpenAIClient_Complete_ContextCancelledDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c, _ := newTestClient(t, server.URL)
	c.sleep = sleepContext

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Complete(ctx, "", "hello")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 3*time.Second, parseRetryAfter("3"))
	assert.Equal(t, time.Duration(0), parseRetryAfter(""))
	assert.Equal(t, time.Duration(0), parseRetryAfter("-1"))
	assert.Equal(t, time.Duration(0), parseRetryAfter("soon"))

	future := time.Now().Add(90 * time.Second).UTC().Format(http.TimeFormat)
	d := parseRetryAfter(future)
	assert.Greater(t, d, 60*time.Second)
	assert.LessOrEqual(t, d, 90*time.Second)
}
