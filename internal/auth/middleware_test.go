package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taiwoajasa245/confession-api/pkg/util"
)

func TestAdminMiddleware(t *testing.T) {
	const secret = "s3cret"

	var gotSubject string
	protected := AdminMiddleware(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := GetClaimsFromContext(r)
		require.True(t, ok)
		gotSubject = claims.Subject
		w.WriteHeader(http.StatusNoContent)
	}))

	admin, err := util.GenerateJWT(secret, "ops", util.RoleAdmin, time.Hour)
	require.NoError(t, err)
	reader, err := util.GenerateJWT(secret, "reader", "reader", time.Hour)
	require.NoError(t, err)
	forged, err := util.GenerateJWT("wrong", "ops", util.RoleAdmin, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Token " + admin, http.StatusUnauthorized},
		{"bad signature", "Bearer " + forged, http.StatusUnauthorized},
		{"wrong role", "Bearer " + reader, http.StatusForbidden},
		{"admin", "Bearer " + admin, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/daily-content/regenerate", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
	assert.Equal(t, "ops", gotSubject)
}
