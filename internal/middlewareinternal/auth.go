package middlewareinternal

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Evgen-Mutagen/finances/internal/controller"
	"github.com/Evgen-Mutagen/finances/internal/core"
	"github.com/Evgen-Mutagen/finances/internal/util/logger"
	"go.uber.org/zap"
)

var errNoToken = errors.New("no bearer token")

func JWTAuthMiddleware(authService core.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := extractToken(r)
			if err != nil {
				logger.Log.Debug("Failed to extract token",
					zap.String("path", r.URL.Path),
					zap.Error(err))
				controller.WriteError(w, r, core.ErrInvalidToken)
				return
			}

			identity, err := authService.Authorize(tokenString)
			if err != nil {
				logger.Log.Warn("Invalid token",
					zap.String("path", r.URL.Path),
					zap.Error(err))
				controller.WriteError(w, r, err)
				return
			}

			ctx := core.WithIdentity(r.Context(), identity)
			logger.Log.Debug("User authenticated",
				zap.String("user_id", identity.UserID),
				zap.String("path", r.URL.Path))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken prefers the Authorization header and falls back to the
// cookie set by /login.
func extractToken(r *http.Request) (string, error) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", errNoToken
		}
		return parts[1], nil
	}

	cookie, err := r.Cookie(controller.TokenCookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}
	return "", errNoToken
}
