// Package subscriptions реализует административный список подписок с
// фильтром по статусу и постраничной выдачей.
package subscriptions

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-manager/internal/http/response"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
	"github.com/magabrotheeeer/subscription-manager/internal/services/admin"
)

// Service описывает административную выборку подписок.
type Service interface {
	ListSubscriptions(ctx context.Context, filter models.SubscriptionFilter) (*admin.SubscriptionsPage, error)
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
// @Summary Все подписки
// @Description Подписки всех пользователей, новые первыми. Total учитывает фильтр.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Номер страницы" default(1)
// @Param limit query int false "Размер страницы" default(10)
// @Param status query string false "Статус" Enums(active, cancelled, expired)
// @Success 200 {object} response.Response{data=admin.SubscriptionsPage}
// @Failure 400 {object} response.ErrorResponse "Некорректные параметры"
// @Failure 401 {object} response.ErrorResponse "Токен не передан"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Router /admin/subscriptions [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.subscriptions"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	q := r.URL.Query()
	page, err := intParam(q, "page")
	if err != nil {
		response.RenderError(w, r, err)
		return
	}
	limit, err := intParam(q, "limit")
	if err != nil {
		response.RenderError(w, r, err)
		return
	}

	filter := models.SubscriptionFilter{
		Status: q.Get("status"),
		Page:   page,
		Limit:  limit,
	}

	res, err := h.service.ListSubscriptions(r.Context(), filter)
	if err != nil {
		status := response.RenderError(w, r, err)
		log.Warn("failed to list subscriptions", slog.Int("status", status), sl.Err(err))
		return
	}

	log.Debug("subscriptions listed",
		slog.Int("count", len(res.Subscriptions)), slog.Int("total", res.Pagination.Total))
	render.JSON(w, r, response.OKWithData(res))
}

// intParam читает целочисленный параметр; отсутствие параметра даёт 0.
func intParam(q url.Values, name string) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, models.NewValidationError(name, "must be an integer")
	}
	return v, nil
}
