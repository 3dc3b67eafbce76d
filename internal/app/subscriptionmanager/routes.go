// Package subscriptionmanager собирает HTTP-приложение сервиса подписок.
package subscriptionmanager

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/admin/subscriptions"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/admin/users"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/auth/refresh"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/health"
	plancreate "github.com/magabrotheeeer/subscription-manager/internal/http/handlers/plan/create"
	planlist "github.com/magabrotheeeer/subscription-manager/internal/http/handlers/plan/list"
	planread "github.com/magabrotheeeer/subscription-manager/internal/http/handlers/plan/read"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/subscription/cancel"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/subscription/change"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/subscription/mine"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/subscription/subscribe"
	"github.com/magabrotheeeer/subscription-manager/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/metrics"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
	adminservice "github.com/magabrotheeeer/subscription-manager/internal/services/admin"
	authservice "github.com/magabrotheeeer/subscription-manager/internal/services/auth"
	planservice "github.com/magabrotheeeer/subscription-manager/internal/services/plan"
	subservice "github.com/magabrotheeeer/subscription-manager/internal/services/subscription"

	// Регистрация swagger-спецификации.
	_ "github.com/magabrotheeeer/subscription-manager/docs"
)

// Services — зависимости, которые нужны маршрутам.
type Services struct {
	Auth         *authservice.Service
	Plans        *planservice.Service
	Subscription *subservice.Service
	Admin        *adminservice.Service
	Tokens       middlewarectx.TokenVerifier
	Health       health.Checker
}

// RouterConfig — параметры маршрутизатора, не относящиеся к сервисам.
type RouterConfig struct {
	RateLimitRPS   float64
	RateLimitBurst int
	Registry       *prometheus.Registry
}

// NewRouter регистрирует все маршруты приложения.
func NewRouter(logger *slog.Logger, svc Services, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	httpMetrics := metrics.NewHTTPMetrics(cfg.Registry)

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		httpMetrics.Middleware,
	)

	limiter := middlewarectx.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	authenticate := middlewarectx.Authenticate(svc.Tokens, logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(limiter.Middleware)
			r.Post("/register", register.New(logger, svc.Auth).ServeHTTP)
			r.Post("/login", login.New(logger, svc.Auth).ServeHTTP)
			r.Post("/refresh", refresh.New(logger, svc.Auth).ServeHTTP)
		})

		r.Get("/plans", planlist.New(logger, svc.Plans).ServeHTTP)
		r.Get("/plans/{id}", planread.New(logger, svc.Plans).ServeHTTP)

		r.Route("/subscriptions", func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/my-subscription", mine.New(logger, svc.Subscription).ServeHTTP)
			r.Post("/subscribe/{planId}", subscribe.New(logger, svc.Subscription).ServeHTTP)
			r.Post("/change/{planId}", change.New(logger, svc.Subscription).ServeHTTP)
			r.Post("/cancel", cancel.New(logger, svc.Subscription).ServeHTTP)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middlewarectx.RequireRole(models.RoleAdmin, logger))
			r.Get("/subscriptions", subscriptions.New(logger, svc.Admin).ServeHTTP)
			r.Get("/users", users.New(logger, svc.Admin).ServeHTTP)
			r.Post("/plans", plancreate.New(logger, svc.Plans).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger, svc.Health).ServeHTTP)
	r.Handle("/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))
	r.Get("/docs/*", httpSwagger.WrapHandler)

	return r
}
