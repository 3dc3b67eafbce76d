package subscribe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-manager/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Subscribe(ctx context.Context, userID, planID int64) (*models.SubscriptionDetails, error) {
	args := m.Called(ctx, userID, planID)
	d, _ := args.Get(0).(*models.SubscriptionDetails)
	return d, args.Error(1)
}

func TestSubscribeHandler_ServeHTTP(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	created := &models.SubscriptionDetails{
		Subscription: models.Subscription{
			ID: 10, UserID: 1, PlanID: 2, Status: models.StatusActive,
			StartDate: start, EndDate: start.AddDate(0, 0, 30),
		},
		PlanName: "Basic", Price: 9.99, Duration: 30, Features: []string{"a"}, DaysRemaining: 30,
	}

	tests := []struct {
		name       string
		planID     string
		mockPlanID int64
		mockResp   *models.SubscriptionDetails
		mockErr    error
		wantStatus int
		wantError  string
	}{
		{name: "created", planID: "2", mockPlanID: 2, mockResp: created, wantStatus: http.StatusCreated},
		{name: "already subscribed", planID: "2", mockPlanID: 2, mockErr: fmt.Errorf("subscription.Subscribe: %w", models.ErrAlreadySubscribed), wantStatus: http.StatusBadRequest, wantError: "you already have an active subscription"},
		{name: "unknown plan", planID: "99", mockPlanID: 99, mockErr: fmt.Errorf("subscription.Subscribe: %w", models.ErrPlanNotFound), wantStatus: http.StatusNotFound, wantError: "plan not found"},
		{name: "non numeric plan", planID: "pro", wantStatus: http.StatusBadRequest, wantError: "field planId must be a positive integer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.mockPlanID != 0 {
				svc.On("Subscribe", mock.Anything, int64(1), tt.mockPlanID).Return(tt.mockResp, tt.mockErr).Once()
			}

			r := chi.NewRouter()
			r.Post("/subscriptions/subscribe/{planId}", New(sl.Discard(), svc).ServeHTTP)

			req := httptest.NewRequest(http.MethodPost, "/subscriptions/subscribe/"+tt.planID, nil)
			req = req.WithContext(middlewarectx.WithIdentity(req.Context(), models.Identity{UserID: 1, Role: models.RoleUser}))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			if tt.wantError != "" {
				assert.Equal(t, "Error", got["status"])
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				data := got["data"].(map[string]any)
				sub := data["subscription"].(map[string]any)
				plan := data["plan"].(map[string]any)
				assert.Equal(t, "active", sub["status"])
				assert.Equal(t, "2025-01-31T00:00:00Z", sub["end_date"])
				assert.Equal(t, "Basic", plan["name"])
				assert.EqualValues(t, 30, plan["duration"])
			}
			svc.AssertExpectations(t)
		})
	}
}
