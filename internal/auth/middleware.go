package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/sdk-quiz/internal/auth/jwt"
	httperrors "github.com/gokatarajesh/sdk-quiz/pkg/http/errors"
)

// TokenValidator checks a bearer token.
type TokenValidator interface {
	Validate(token string) (*jwt.Claims, error)
}

type claimsKey struct{}

// ClaimsFromContext returns the session claims injected by RequireSession.
func ClaimsFromContext(ctx context.Context) (*jwt.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*jwt.Claims)
	return claims, ok && claims != nil
}

// WithClaims stores claims in ctx.
func WithClaims(ctx context.Context, claims *jwt.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
// The access_token query parameter is accepted for WebSocket clients that cannot set headers.
func BearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		if t := r.URL.Query().Get("access_token"); t != "" {
			return t, true
		}
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// RequireSession validates the session token and injects its claims into the request
// context. When the route has an {id} path value it must match the token's session.
func RequireSession(validator TokenValidator, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Session token required")
				return
			}

			claims, err := validator.Validate(token)
			if err != nil {
				logger.Warn().Err(err).Msg("token validation failed")
				httperrors.RespondUnauthorized(w, httperrors.ErrCodeInvalidToken, "Invalid or expired token")
				return
			}

			if id := r.PathValue("id"); id != "" && id != claims.SessionID.String() {
				httperrors.RespondForbidden(w, httperrors.ErrCodeForbidden, "Token does not belong to this session")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}
