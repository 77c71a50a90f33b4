package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/sdk-quiz/internal/auth/jwt"
)

func protected(t *testing.T, m *jwt.Manager) http.Handler {
	mux := http.NewServeMux()
	h := RequireSession(m, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		require.True(t, ok)
		_, _ = w.Write([]byte(claims.Player))
	}))
	mux.Handle("GET /v1/sessions/{id}/question", h)
	return mux
}

func TestRequireSession(t *testing.T) {
	m := jwt.NewManager(jwt.TokenConfig{Secret: []byte("k")})
	id := uuid.New()
	token, err := m.Generate(id, "grace", "agents")
	require.NoError(t, err)
	h := protected(t, m)

	cases := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"valid", "/v1/sessions/" + id.String() + "/question", "Bearer " + token, http.StatusOK},
		{"query token", "/v1/sessions/" + id.String() + "/question?access_token=" + token, "", http.StatusOK},
		{"missing", "/v1/sessions/" + id.String() + "/question", "", http.StatusUnauthorized},
		{"malformed", "/v1/sessions/" + id.String() + "/question", "Token " + token, http.StatusUnauthorized},
		{"garbage", "/v1/sessions/" + id.String() + "/question", "Bearer nope", http.StatusUnauthorized},
		{"other session", "/v1/sessions/" + uuid.NewString() + "/question", "Bearer " + token, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, "grace", rec.Body.String())
			}
		})
	}
}
