package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/chatvault/chatvault/internal/auth"
	"github.com/chatvault/chatvault/internal/model"
)

// IdentityResolver maps validated token claims to a persisted user.
// *service.AuthService satisfies it.
type IdentityResolver interface {
	Resolve(ctx context.Context, claims *auth.Claims) (*model.User, error)
}

// IdentityCache short-circuits user resolution for recently seen tokens.
// *cache.Cache satisfies it; a nil cache disables caching.
type IdentityCache interface {
	GetIdentity(ctx context.Context, tokenDigest string) (*model.AuthContext, error)
	SetIdentity(ctx context.Context, tokenDigest string, authCtx *model.AuthContext, tokenRemaining time.Duration) error
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger   *slog.Logger
	Tokens   *auth.TokenService
	Resolver IdentityResolver
	Cache    IdentityCache
}

// Auth returns a middleware that authenticates requests carrying a bearer
// token. The token is validated, its subject resolved to a user, and the
// resulting identity injected into the request context. Every failure on
// that path - missing token, bad signature, malformed structure, expiry,
// unknown subject - produces the same generic 401 so a caller can't probe
// which check failed. The specific reason is only logged server-side.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				logAuthFailure(cfg.Logger, r, "missing_token")
				writeAuthError(w)
				return
			}

			claims, err := cfg.Tokens.Validate(token)
			if err != nil {
				logAuthFailure(cfg.Logger, r, err.Error())
				writeAuthError(w)
				return
			}

			digest := auth.TokenDigest(token)

			// Check cache first
			if cfg.Cache != nil {
				if authCtx, _ := cfg.Cache.GetIdentity(r.Context(), digest); authCtx != nil {
					next.ServeHTTP(w, r.WithContext(auth.ContextWithAuth(r.Context(), authCtx)))
					return
				}
			}

			user, err := cfg.Resolver.Resolve(r.Context(), claims)
			if err != nil {
				// unknown user collapses into the same 401 as any other
				// validation failure; only the log tells them apart
				logAuthFailure(cfg.Logger, r, "resolve: "+err.Error())
				writeAuthError(w)
				return
			}

			authCtx := &model.AuthContext{
				UserID:   user.ID,
				Username: user.Username,
			}

			if cfg.Cache != nil {
				remaining := time.Until(claims.ExpiresAt.Time)
				_ = cfg.Cache.SetIdentity(r.Context(), digest, authCtx, remaining)
			}

			next.ServeHTTP(w, r.WithContext(auth.ContextWithAuth(r.Context(), authCtx)))
		})
	}
}

// extractBearerToken pulls the token out of the Authorization header.
// Protected routes only accept the standard bearer scheme.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func logAuthFailure(logger *slog.Logger, r *http.Request, reason string) {
	logger.Warn("authentication failed",
		slog.String("reason", reason),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Could not validate credentials","code":"UNAUTHORIZED"}`))
}
