package users

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]models.User)
	return list, args.Error(1)
}

func TestUsersHandler_ServeHTTP(t *testing.T) {
	t.Run("hash is never serialized", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("ListUsers", mock.Anything).Return([]models.User{
			{ID: 1, Name: "Root", Email: "root@example.com", Role: models.RoleAdmin, PasswordHash: "$2a$10$secret"},
		}, nil).Once()

		rec := httptest.NewRecorder()
		New(sl.Discard(), svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/users", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"email":"root@example.com"`)
		assert.NotContains(t, rec.Body.String(), "secret")
	})

	t.Run("storage error", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("ListUsers", mock.Anything).Return(nil, errors.New("db down")).Once()

		rec := httptest.NewRecorder()
		New(sl.Discard(), svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/users", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
