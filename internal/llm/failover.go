package llm

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// ModelCompleter is a Completer bound to a single model identifier.
type ModelCompleter interface {
	Completer
	Model() string
}

// FailoverCompleter holds the primary model followed by its fallbacks.
// With failover disabled only the primary is ever called.
type FailoverCompleter struct {
	clients  []ModelCompleter
	failover bool
	logger   *zap.Logger
}

func NewFailoverCompleter(clients []ModelCompleter, failover bool, logger *zap.Logger) *FailoverCompleter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FailoverCompleter{clients: clients, failover: failover, logger: logger}
}

// Models lists the configured model identifiers, primary first.
func (f *FailoverCompleter) Models() []string {
	out := make([]string, 0, len(f.clients))
	for _, c := range f.clients {
		out = append(out, c.Model())
	}
	return out
}

func (f *FailoverCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	if len(f.clients) == 0 {
		return "", ErrNotConfigured
	}

	var lastErr error
	for i, c := range f.clients {
		if i > 0 && !f.failover {
			break
		}

		out, err := c.Complete(ctx, system, prompt)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !shouldFailOver(err) {
			return "", err
		}
		if f.failover && i+1 < len(f.clients) {
			f.logger.Warn("model failed, trying fallback",
				zap.String("model", c.Model()),
				zap.String("next", f.clients[i+1].Model()),
				zap.Error(err))
		}
	}
	return "", lastErr
}

func shouldFailOver(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var backendErr *BackendError
	return errors.As(err, &backendErr) && backendErr.Retryable()
}
