// Package admin — административные выборки по подпискам и пользователям.
package admin

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

// Repository — источник данных для администратора.
type Repository interface {
	ListSubscriptions(ctx context.Context, filter models.SubscriptionFilter) ([]models.AdminSubscription, int, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

// SubscriptionsPage — страница административного списка подписок.
type SubscriptionsPage struct {
	Subscriptions []models.AdminSubscription `json:"subscriptions"`
	Pagination    models.Pagination          `json:"pagination"`
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListSubscriptions возвращает подписки всех пользователей, новые первыми.
// Нулевые Page и Limit заменяются значениями по умолчанию; Total считает
// только записи, подходящие под фильтр статуса.
func (s *Service) ListSubscriptions(ctx context.Context, filter models.SubscriptionFilter) (*SubscriptionsPage, error) {
	const op = "admin.ListSubscriptions"

	filter, err := normalize(filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	subs, total, err := s.repo.ListSubscriptions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if subs == nil {
		subs = []models.AdminSubscription{}
	}

	return &SubscriptionsPage{
		Subscriptions: subs,
		Pagination:    models.NewPagination(filter.Page, filter.Limit, total),
	}, nil
}

// ListUsers возвращает всех пользователей без хэшей паролей.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	const op = "admin.ListUsers"

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

func normalize(f models.SubscriptionFilter) (models.SubscriptionFilter, error) {
	if f.Page == 0 {
		f.Page = models.DefaultPage
	}
	if f.Limit == 0 {
		f.Limit = models.DefaultLimit
	}
	switch {
	case f.Limit < 1 || f.Limit > models.MaxLimit:
		return f, models.NewValidationError("limit", fmt.Sprintf("must be between 1 and %d", models.MaxLimit))
	case f.Page < 1:
		return f, models.NewValidationError("page", "must be a positive integer")
	case !f.ValidPage():
		return f, models.NewValidationError("page", "is out of range")
	case f.Status != "" && !models.ValidStatus(f.Status):
		return f, models.NewValidationError("status", "must be one of active, cancelled, expired")
	}
	return f, nil
}
