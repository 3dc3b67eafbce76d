// Package read реализует HTTP-обработчик получения активного плана по ID.
package read

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-manager/internal/http/response"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

// Service описывает чтение плана.
type Service interface {
	GetActivePlan(ctx context.Context, id int64) (*models.Plan, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Тарифный план
// @Description Возвращает активный план по идентификатору.
// @Tags Plans
// @Produce json
// @Param id path int true "ID плана"
// @Success 200 {object} response.Response{data=models.Plan}
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "План не найден"
// @Router /plans/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		log.Warn("failed to decode id from url", slog.String("id", chi.URLParam(r, "id")))
		response.RenderError(w, r, models.NewValidationError("id", "must be a positive integer"))
		return
	}

	plan, err := h.service.GetActivePlan(r.Context(), id)
	if err != nil {
		status := response.RenderError(w, r, err)
		log.Warn("failed to read plan", slog.Int("status", status), sl.Err(err))
		return
	}

	render.JSON(w, r, response.OKWithData(plan))
}
