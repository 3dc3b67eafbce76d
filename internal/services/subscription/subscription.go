// Package subscription реализует жизненный цикл подписки пользователя:
// оформление, смену плана, отмену и чтение текущей подписки.
package subscription

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/subscription-manager/internal/lib/metrics"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
	"github.com/magabrotheeeer/subscription-manager/internal/storage/repository"
)

const publishTimeout = 5 * time.Second

// Store — хранилище подписок.
type Store interface {
	// WithinUserLock выполняет fn в транзакции с блокировкой строки пользователя.
	WithinUserLock(ctx context.Context, userID int64, fn func(ctx context.Context, tx repository.SubscriptionTx) error) error
	// GetActiveSubscriptionDetails возвращает активную подписку с планом или nil.
	GetActiveSubscriptionDetails(ctx context.Context, userID int64) (*models.SubscriptionDetails, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// Publisher отправляет события подписок в брокер.
type Publisher interface {
	Publish(ctx context.Context, event models.SubscriptionEvent) error
}

// Service — машина состояний подписки. Все изменяющие операции одного
// пользователя выполняются последовательно под блокировкой его строки,
// поэтому у пользователя не бывает двух активных подписок.
type Service struct {
	store     Store
	publisher Publisher
	metrics   metrics.SubscriptionMetrics
	log       *slog.Logger
	now       func() time.Time
}

// Option настраивает Service.
type Option func(*Service)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithPublisher включает публикацию событий после фиксации изменений.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithMetrics включает счётчики переходов.
func WithMetrics(m metrics.SubscriptionMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(store Store, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:   store,
		metrics: metrics.Noop{},
		log:     log,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe оформляет подписку на активный план planID.
// Ошибки: models.ErrPlanNotFound, models.ErrAlreadySubscribed.
func (s *Service) Subscribe(ctx context.Context, userID, planID int64) (*models.SubscriptionDetails, error) {
	const op = "subscription.Subscribe"

	if err := validatePlanID(planID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var (
		plan    *models.Plan
		created *models.Subscription
	)
	err := s.store.WithinUserLock(ctx, userID, func(ctx context.Context, tx repository.SubscriptionTx) error {
		var err error
		if plan, err = activePlan(ctx, tx, planID); err != nil {
			return err
		}
		active, err := tx.ActiveSubscription(ctx, userID)
		if err != nil {
			return err
		}
		if active != nil {
			return models.ErrAlreadySubscribed
		}

		now := s.now()
		created, err = tx.InsertSubscription(ctx, models.Subscription{
			UserID:    userID,
			PlanID:    plan.ID,
			StartDate: now,
			EndDate:   now.AddDate(0, 0, plan.Duration),
			Status:    models.StatusActive,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("subscription created",
		slog.Int64("user_id", userID), slog.Int64("subscription_id", created.ID), slog.Int64("plan_id", plan.ID))
	s.metrics.IncSubscribed(plan.Name)
	s.publish(ctx, models.EventSubscribed, *created, plan.Name)

	return s.details(*created, plan), nil
}

// Change переводит активную подписку на план planID. Период начинается
// заново с текущего момента, остаток по старому плану не учитывается.
// Ошибки: models.ErrPlanNotFound, models.ErrNoActiveSubscription.
func (s *Service) Change(ctx context.Context, userID, planID int64) (*models.SubscriptionDetails, error) {
	const op = "subscription.Change"

	if err := validatePlanID(planID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var (
		plan    *models.Plan
		updated *models.Subscription
	)
	err := s.store.WithinUserLock(ctx, userID, func(ctx context.Context, tx repository.SubscriptionTx) error {
		var err error
		if plan, err = activePlan(ctx, tx, planID); err != nil {
			return err
		}
		active, err := tx.ActiveSubscription(ctx, userID)
		if err != nil {
			return err
		}
		if active == nil {
			return models.ErrNoActiveSubscription
		}

		now := s.now()
		updated, err = tx.UpdateSubscriptionPlan(ctx, active.ID, plan.ID, now, now.AddDate(0, 0, plan.Duration))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("subscription plan changed",
		slog.Int64("user_id", userID), slog.Int64("subscription_id", updated.ID), slog.Int64("plan_id", plan.ID))
	s.metrics.IncChanged(plan.Name)
	s.publish(ctx, models.EventChanged, *updated, plan.Name)

	return s.details(*updated, plan), nil
}

// Cancel отменяет активную подписку, даты не меняются.
// Повторная отмена возвращает models.ErrNothingToCancel.
func (s *Service) Cancel(ctx context.Context, userID int64) (*models.Subscription, error) {
	const op = "subscription.Cancel"

	var (
		cancelled *models.Subscription
		planName  string
	)
	err := s.store.WithinUserLock(ctx, userID, func(ctx context.Context, tx repository.SubscriptionTx) error {
		active, err := tx.ActiveSubscription(ctx, userID)
		if err != nil {
			return err
		}
		if active == nil {
			return models.ErrNothingToCancel
		}

		if cancelled, err = tx.CancelSubscription(ctx, active.ID, s.now()); err != nil {
			return err
		}
		// план мог быть снят с продажи, имя всё равно нужно для письма и метрик
		plan, err := tx.Plan(ctx, cancelled.PlanID)
		if err != nil {
			return err
		}
		planName = plan.Name
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("subscription cancelled",
		slog.Int64("user_id", userID), slog.Int64("subscription_id", cancelled.ID))
	s.metrics.IncCancelled(planName)
	s.publish(ctx, models.EventCancelled, *cancelled, planName)

	return cancelled, nil
}

// GetMine возвращает активную подписку пользователя с данными плана.
// Отсутствие подписки не ошибка: возвращается nil.
func (s *Service) GetMine(ctx context.Context, userID int64) (*models.SubscriptionDetails, error) {
	const op = "subscription.GetMine"

	d, err := s.store.GetActiveSubscriptionDetails(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if d == nil {
		return nil, nil
	}
	d.DaysRemaining = models.DaysUntil(s.now(), d.EndDate)
	return d, nil
}

func validatePlanID(planID int64) error {
	if planID <= 0 {
		return models.NewValidationError("planId", "must be a positive integer")
	}
	return nil
}

// activePlan читает план внутри транзакции, минуя кэш каталога.
func activePlan(ctx context.Context, tx repository.SubscriptionTx, planID int64) (*models.Plan, error) {
	plan, err := tx.Plan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !plan.IsActive {
		return nil, models.ErrPlanNotFound
	}
	return plan, nil
}

func (s *Service) details(sub models.Subscription, plan *models.Plan) *models.SubscriptionDetails {
	return &models.SubscriptionDetails{
		Subscription:  sub,
		PlanName:      plan.Name,
		Price:         plan.Price,
		Features:      plan.Features,
		Duration:      plan.Duration,
		DaysRemaining: models.DaysUntil(s.now(), sub.EndDate),
	}
}

// publish отправляет событие после фиксации транзакции. Ошибки только
// логируются: состояние подписки уже сохранено.
func (s *Service) publish(ctx context.Context, eventType string, sub models.Subscription, planName string) {
	if s.publisher == nil {
		return
	}

	event := models.SubscriptionEvent{
		EventID:        uuid.NewString(),
		Type:           eventType,
		SubscriptionID: sub.ID,
		UserID:         sub.UserID,
		PlanID:         sub.PlanID,
		PlanName:       planName,
		EndDate:        sub.EndDate,
		OccurredAt:     s.now(),
	}
	if user, err := s.store.GetUserByID(ctx, sub.UserID); err == nil {
		event.Email = user.Email
		event.UserName = user.Name
	} else {
		s.log.Warn("event without recipient", slog.String("type", eventType), sl.Err(err))
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(pubCtx, event); err != nil {
		s.log.Error("failed to publish subscription event",
			slog.String("type", eventType), slog.Int64("subscription_id", sub.ID), sl.Err(err))
	}
}
