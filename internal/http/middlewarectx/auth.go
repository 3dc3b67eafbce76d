// Package middlewarectx содержит HTTP middleware сервиса: проверку access-токена,
// контроль роли и ограничение частоты запросов.
//
// Authenticate извлекает токен из заголовка Authorization, проверяет его и
// кладёт в контекст запроса models.Identity. Отсутствующий или искажённый
// заголовок даёт 401, невалидный или просроченный токен даёт 403.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/subscription-manager/internal/http/response"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/jwt"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// IdentityKey — ключ для данных пользователя в контексте.
const IdentityKey Key = "identity"

const bearerPrefix = "Bearer "

// TokenVerifier проверяет access-токен.
type TokenVerifier interface {
	VerifyAccess(token string) (*jwt.AccessClaims, error)
}

// Authenticate возвращает middleware, проверяющий access-токен.
func Authenticate(verifier TokenVerifier, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.Authenticate"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				log.Warn("missing or malformed authorization header")
				response.RenderError(w, r, models.ErrMissingToken)
				return
			}

			claims, err := verifier.VerifyAccess(token)
			if err != nil {
				log.Warn("token rejected", sl.Err(err))
				response.RenderError(w, r, models.ErrInvalidToken)
				return
			}

			ctx := WithIdentity(r.Context(), claims.Identity())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}

// WithIdentity кладёт данные пользователя в контекст.
func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, id)
}

// IdentityFromContext достаёт данные пользователя, положенные Authenticate.
func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(IdentityKey).(models.Identity)
	return id, ok
}
