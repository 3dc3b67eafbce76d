package create

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) CreatePlan(ctx context.Context, req models.CreatePlanRequest) (*models.Plan, error) {
	args := m.Called(ctx, req)
	plan, _ := args.Get(0).(*models.Plan)
	return plan, args.Error(1)
}

func TestCreateHandler_ServeHTTP(t *testing.T) {
	valid := models.CreatePlanRequest{Name: "Team", Price: 29.99, Duration: 30, Features: []string{"seats"}}

	tests := []struct {
		name       string
		body       string
		callSvc    bool
		wantStatus int
		wantError  string
	}{
		{name: "created", body: `{"name":"Team","price":29.99,"duration":30,"features":["seats"]}`, callSvc: true, wantStatus: http.StatusCreated},
		{name: "missing features", body: `{"name":"Team","price":29.99,"duration":30}`, wantStatus: http.StatusBadRequest, wantError: "field Features is a required field"},
		{name: "zero duration", body: `{"name":"Team","price":1,"duration":0,"features":["x"]}`, wantStatus: http.StatusBadRequest, wantError: "field Duration is a required field"},
		{name: "negative price", body: `{"name":"Team","price":-1,"duration":30,"features":["x"]}`, wantStatus: http.StatusBadRequest, wantError: "field Price is out of range"},
		{name: "broken json", body: `{`, wantStatus: http.StatusBadRequest, wantError: "invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.callSvc {
				svc.On("CreatePlan", mock.Anything, valid).
					Return(&models.Plan{ID: 5, Name: valid.Name, Price: valid.Price, Duration: valid.Duration, Features: valid.Features, IsActive: true}, nil).
					Once()
			}

			req := httptest.NewRequest(http.MethodPost, "/api/admin/plans", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			New(sl.Discard(), svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				assert.EqualValues(t, 5, got["data"].(map[string]any)["id"])
			}
			svc.AssertExpectations(t)
		})
	}
}
