package read

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) GetActivePlan(ctx context.Context, id int64) (*models.Plan, error) {
	args := m.Called(ctx, id)
	plan, _ := args.Get(0).(*models.Plan)
	return plan, args.Error(1)
}

func TestReadHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		mockID     int64
		mockPlan   *models.Plan
		mockErr    error
		wantStatus int
		wantError  string
	}{
		{name: "found", id: "3", mockID: 3, mockPlan: &models.Plan{ID: 3, Name: "Pro"}, wantStatus: http.StatusOK},
		{name: "not a number", id: "abc", wantStatus: http.StatusBadRequest, wantError: "field id must be a positive integer"},
		{name: "zero", id: "0", wantStatus: http.StatusBadRequest, wantError: "field id must be a positive integer"},
		{name: "inactive or missing", id: "9", mockID: 9, mockErr: fmt.Errorf("plan.GetActivePlan: %w", models.ErrPlanNotFound), wantStatus: http.StatusNotFound, wantError: "plan not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.mockID != 0 {
				svc.On("GetActivePlan", mock.Anything, tt.mockID).Return(tt.mockPlan, tt.mockErr).Once()
			}

			r := chi.NewRouter()
			r.Get("/plans/{id}", New(sl.Discard(), svc).ServeHTTP)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plans/"+tt.id, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				assert.Equal(t, "Pro", got["data"].(map[string]any)["name"])
			}
			svc.AssertExpectations(t)
		})
	}
}
