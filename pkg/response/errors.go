package response

import (
	"errors"
	"net/http"
	"slices"

	"github.com/taiwoajasa245/confession-api/internal/generation"
	"github.com/taiwoajasa245/confession-api/internal/llm"
)

// Rule maps any error matching Target (errors.Is) to Status.
type Rule struct {
	Target  error
	Status  int
	Message string
}

var generationRules = []Rule{
	{llm.ErrNotConfigured, http.StatusServiceUnavailable, "Content generation is not configured"},
	{llm.ErrRateLimited, http.StatusTooManyRequests, "Content generation is rate limited, try again shortly"},
	{llm.ErrMalformedResponse, http.StatusBadGateway, "Content generation returned an unusable reply"},
	{generation.ErrDuplicateContent, http.StatusConflict, "Could not generate content that has not been used before"},
	{generation.ErrInvalidRequest, http.StatusBadRequest, "Invalid request"},
}

// StatusFor classifies err. extra rules are checked before the generation
// taxonomy; anything unmatched is a 500.
func StatusFor(err error, extra ...Rule) (int, string) {
	for _, rule := range slices.Concat(extra, generationRules) {
		if errors.Is(err, rule.Target) {
			return rule.Status, rule.Message
		}
	}

	var backendErr *llm.BackendError
	if errors.As(err, &backendErr) {
		return http.StatusBadGateway, "Content generation backend failed"
	}
	return http.StatusInternalServerError, "Internal server error"
}

// FromError writes the error envelope for err. Details are only exposed for
// client errors and upstream failures, never for 500s.
func FromError(w http.ResponseWriter, err error, extra ...Rule) {
	status, message := StatusFor(err, extra...)
	if status == http.StatusInternalServerError {
		Error(w, status, message, nil)
		return
	}
	Error(w, status, message, err.Error())
}
