package list

import (
	"context"
	"encoding/json"
	"errors"
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

func (m *ServiceMock) ListActivePlans(ctx context.Context) ([]models.Plan, error) {
	args := m.Called(ctx)
	plans, _ := args.Get(0).([]models.Plan)
	return plans, args.Error(1)
}

func TestListHandler_ServeHTTP(t *testing.T) {
	t.Run("plans with feature arrays", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("ListActivePlans", mock.Anything).Return([]models.Plan{
			{ID: 1, Name: "Free Trial", Price: 0, Duration: 7, Features: []string{"basic"}, IsActive: true},
			{ID: 2, Name: "Pro", Price: 19.99, Duration: 30, Features: []string{"a", "b"}, IsActive: true},
		}, nil).Once()

		rec := httptest.NewRecorder()
		New(sl.Discard(), svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/plans", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var got struct {
			Status string        `json:"status"`
			Data   []models.Plan `json:"data"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		require.Len(t, got.Data, 2)
		assert.Equal(t, "Free Trial", got.Data[0].Name)
		assert.Equal(t, []string{"a", "b"}, got.Data[1].Features)
	})

	t.Run("empty catalog is an empty array", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("ListActivePlans", mock.Anything).Return(nil, nil).Once()

		rec := httptest.NewRecorder()
		New(sl.Discard(), svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/plans", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"OK","data":[]}`, rec.Body.String())
	})

	t.Run("storage error", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("ListActivePlans", mock.Anything).Return(nil, errors.New("db down")).Once()

		rec := httptest.NewRecorder()
		New(sl.Discard(), svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/plans", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
