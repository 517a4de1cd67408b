package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pfm/internal/credential"
	"github.com/MrJamesThe3rd/pfm/internal/http/middleware"
)

func TestAuthenticate(t *testing.T) {
	tokens := credential.NewTokens("test-secret", time.Hour, 15*time.Minute)

	session, err := tokens.Issue(uuid.New(), "ana@example.com")
	require.NoError(t, err)

	reset, err := tokens.IssueReset("ana@example.com")
	require.NoError(t, err)

	type testCase struct {
		name       string
		header     string
		wantStatus int
		wantEmail  string
	}

	tests := []testCase{
		{name: "Valid", header: "Bearer " + session, wantStatus: http.StatusOK, wantEmail: "ana@example.com"},
		{name: "LowercaseScheme", header: "bearer " + session, wantStatus: http.StatusOK, wantEmail: "ana@example.com"},
		{name: "Missing", wantStatus: http.StatusUnauthorized},
		{name: "WrongScheme", header: "Basic " + session, wantStatus: http.StatusUnauthorized},
		{name: "Garbage", header: "Bearer not-a-jwt", wantStatus: http.StatusUnauthorized},
		{name: "ResetTokenRejected", header: "Bearer " + reset, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotEmail string

			h := middleware.Authenticate(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotEmail = middleware.Email(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantEmail, gotEmail)
		})
	}
}
