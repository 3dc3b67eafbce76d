package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"missing token", models.ErrMissingToken, http.StatusUnauthorized, "access token required"},
		{"invalid credentials", fmt.Errorf("auth.Login: %w", models.ErrInvalidCredentials), http.StatusUnauthorized, "invalid credentials"},
		{"invalid token", fmt.Errorf("jwt: %w: signature", models.ErrInvalidToken), http.StatusForbidden, "invalid or expired token"},
		{"forbidden", models.ErrForbidden, http.StatusForbidden, "insufficient permissions"},
		{"plan not found", fmt.Errorf("op: %w", models.ErrPlanNotFound), http.StatusNotFound, "plan not found"},
		{"user not found", models.ErrUserNotFound, http.StatusNotFound, "user not found"},
		{"already subscribed", fmt.Errorf("op: %w", models.ErrAlreadySubscribed), http.StatusBadRequest, "you already have an active subscription"},
		{"email taken", models.ErrEmailTaken, http.StatusBadRequest, "email already registered"},
		{"no active subscription", models.ErrNoActiveSubscription, http.StatusBadRequest, "no active subscription"},
		{"nothing to cancel", fmt.Errorf("op: %w", models.ErrNothingToCancel), http.StatusBadRequest, "no active subscription to cancel"},
		{"validation", models.NewValidationError("limit", "must be between 1 and 100"), http.StatusBadRequest, "field limit must be between 1 and 100"},
		{"internal", errors.New("connection reset by peer"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := FromError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}

func TestRenderError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	status := RenderError(rec, req, models.ErrNothingToCancel)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var got Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, StatusError, got.Status)
	assert.Equal(t, "no active subscription to cancel", got.Error)
	assert.Nil(t, got.Data)
}

func TestValidationError(t *testing.T) {
	type request struct {
		Email    string `validate:"required,email"`
		Password string `validate:"required,min=6"`
		Role     string `validate:"omitempty,oneof=user admin"`
	}

	err := validator.New().Struct(request{Email: "nope", Password: "123", Role: "root"})
	require.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))
	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t,
		"field Email must be a valid email, field Password must be at least 6, field Role must be one of [user admin]",
		resp.Error)
}
