package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/subscription-manager/internal/http/response"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

// RequireRole пропускает запрос, только если роль из токена совпадает с role.
// Роль не перечитывается из хранилища: действует снимок на момент выпуска токена.
// Без Authenticate перед ним отвечает 401.
func RequireRole(role string, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				log.Error("identity missing in context", slog.String("request_id", middleware.GetReqID(r.Context())))
				response.RenderError(w, r, models.ErrMissingToken)
				return
			}
			if id.Role != role {
				log.Warn("insufficient permissions",
					slog.Int64("user_id", id.UserID),
					slog.String("role", id.Role),
					slog.String("required", role),
				)
				response.RenderError(w, r, models.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
