// Package change реализует HTTP-обработчик смены плана активной подписки.
package change

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-manager/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-manager/internal/http/response"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

// Service описывает операцию жизненного цикла подписки.
type Service interface {
	Change(ctx context.Context, userID, planID int64) (*models.SubscriptionDetails, error)
}

// Handler переводит активную подписку пользователя на план из URL.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Смена плана подписки
// @Description Переводит активную подписку на другой план. Период начинается заново с момента смены.
// @Tags Subscriptions
// @Produce json
// @Security BearerAuth
// @Param planId path int true "ID плана"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Недопустимое состояние подписки"
// @Failure 401 {object} response.ErrorResponse "Токен не передан"
// @Failure 403 {object} response.ErrorResponse "Токен невалиден"
// @Failure 404 {object} response.ErrorResponse "План не найден"
// @Router /subscriptions/change/{planId} [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.change"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, ok := middlewarectx.IdentityFromContext(r.Context())
	if !ok {
		log.Error("identity missing in context")
		response.RenderError(w, r, models.ErrMissingToken)
		return
	}

	planID, err := strconv.ParseInt(chi.URLParam(r, "planId"), 10, 64)
	if err != nil {
		log.Warn("failed to decode planId from url", sl.Err(err))
		response.RenderError(w, r, models.NewValidationError("planId", "must be a positive integer"))
		return
	}

	details, err := h.service.Change(r.Context(), id.UserID, planID)
	if err != nil {
		status := response.RenderError(w, r, err)
		log.Warn("change failed", slog.Int("status", status), slog.Int64("plan_id", planID), sl.Err(err))
		return
	}

	log.Info("change done", slog.Int64("user_id", id.UserID), slog.Int64("subscription_id", details.ID))
	render.Status(r, http.StatusOK)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"subscription": details,
		"plan":         details.Plan(),
	}))
}
