package subscriptionmanager

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-manager/internal/lib/jwt"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
	adminservice "github.com/magabrotheeeer/subscription-manager/internal/services/admin"
	planservice "github.com/magabrotheeeer/subscription-manager/internal/services/plan"
)

type planRepo struct{}

func (planRepo) ListActivePlans(context.Context) ([]models.Plan, error) {
	return []models.Plan{{ID: 1, Name: "Free Trial", Duration: 7, Features: []string{"basic"}, IsActive: true}}, nil
}

func (planRepo) GetActivePlan(_ context.Context, id int64) (*models.Plan, error) {
	return nil, models.ErrPlanNotFound
}

func (planRepo) CreatePlan(_ context.Context, p models.Plan) (*models.Plan, error) {
	p.ID = 2
	return &p, nil
}

type adminRepo struct{}

func (adminRepo) ListSubscriptions(context.Context, models.SubscriptionFilter) ([]models.AdminSubscription, int, error) {
	return nil, 0, nil
}

func (adminRepo) ListUsers(context.Context) ([]models.User, error) {
	return []models.User{{ID: 1, Role: models.RoleAdmin}}, nil
}

type ready struct{}

func (ready) Ready(context.Context) error { return nil }

func newTestRouter(t *testing.T) (http.Handler, *jwt.MakerImpl) {
	t.Helper()
	tokens := jwt.NewJWTMaker("a", "r", time.Minute, time.Hour)
	h := NewRouter(sl.Discard(), Services{
		Plans:  planservice.NewService(planRepo{}, nil, time.Minute, sl.Discard()),
		Admin:  adminservice.NewService(adminRepo{}),
		Tokens: tokens,
		Health: ready{},
	}, RouterConfig{RateLimitRPS: 100, RateLimitBurst: 100, Registry: prometheus.NewRegistry()})
	return h, tokens
}

func TestRouter(t *testing.T) {
	h, tokens := newTestRouter(t)

	userPair, err := tokens.Issue(models.User{ID: 5, Email: "u@example.com", Role: models.RoleUser})
	require.NoError(t, err)
	adminPair, err := tokens.Issue(models.User{ID: 1, Email: "a@example.com", Role: models.RoleAdmin})
	require.NoError(t, err)

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		wantStatus int
	}{
		{name: "public plans", method: http.MethodGet, path: "/api/plans", wantStatus: http.StatusOK},
		{name: "missing plan", method: http.MethodGet, path: "/api/plans/9", wantStatus: http.StatusNotFound},
		{name: "subscriptions need a token", method: http.MethodGet, path: "/api/subscriptions/my-subscription", wantStatus: http.StatusUnauthorized},
		{name: "subscribe with garbage token", method: http.MethodPost, path: "/api/subscriptions/subscribe/1", token: "garbage", wantStatus: http.StatusForbidden},
		{name: "admin needs a token", method: http.MethodGet, path: "/api/admin/subscriptions", wantStatus: http.StatusUnauthorized},
		{name: "admin rejects user role", method: http.MethodGet, path: "/api/admin/subscriptions", token: userPair.AccessToken, wantStatus: http.StatusForbidden},
		{name: "admin lists subscriptions", method: http.MethodGet, path: "/api/admin/subscriptions?status=active", token: adminPair.AccessToken, wantStatus: http.StatusOK},
		{name: "admin lists users", method: http.MethodGet, path: "/api/admin/users", token: adminPair.AccessToken, wantStatus: http.StatusOK},
		{name: "health", method: http.MethodGet, path: "/health", wantStatus: http.StatusOK},
		{name: "metrics", method: http.MethodGet, path: "/metrics", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRouter_MetricsExposeRequests(t *testing.T) {
	h, _ := newTestRouter(t)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/plans", nil))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",route="/api/plans",status="200"} 1`)
}
