// Package refresh реализует обмен refresh-токена на новую пару токенов.
package refresh

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-manager/internal/http/response"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

// Request — тело запроса обновления.
type Request struct {
	RefreshToken string `json:"refreshToken"`
}

// Service выдаёт новую пару по refresh-токену.
type Service interface {
	Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error)
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
// @Summary Обновление токенов
// @Description Принимает refresh-токен и возвращает новую пару токенов.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Refresh-токен"
// @Success 200 {object} response.Response{data=models.TokenPair}
// @Failure 401 {object} response.ErrorResponse "Токен не передан"
// @Failure 403 {object} response.ErrorResponse "Токен невалиден или просрочен"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Router /auth/refresh [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.refresh"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	pair, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		status := response.RenderError(w, r, err)
		log.Warn("refresh failed", slog.Int("status", status), sl.Err(err))
		return
	}

	render.JSON(w, r, response.OKWithData(pair))
}
