// Package sweeper переводит просроченные активные подписки в статус expired.
package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/subscription-manager/internal/lib/metrics"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

type Repository interface {
	ExpireSubscriptions(ctx context.Context, now time.Time) ([]models.AdminSubscription, error)
}

type Publisher interface {
	Publish(ctx context.Context, event models.SubscriptionEvent) error
}

type Service struct {
	repo      Repository
	publisher Publisher
	metrics   metrics.SubscriptionMetrics
	log       *slog.Logger
	now       func() time.Time
}

// NewService создаёт задачу истечения. publisher может быть nil.
func NewService(repo Repository, publisher Publisher, m metrics.SubscriptionMetrics, log *slog.Logger, now func() time.Time) *Service {
	if m == nil {
		m = metrics.Noop{}
	}
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		metrics:   m,
		log:       log,
		now:       now,
	}
}

// Sweep помечает истёкшими активные подписки с end_date раньше текущего
// момента и публикует по событию на каждую. Возвращает число изменённых записей.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	const op = "sweeper.Sweep"

	now := s.now()
	expired, err := s.repo.ExpireSubscriptions(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.metrics.AddExpired(len(expired))
	if len(expired) == 0 {
		s.log.Debug("no expired subscriptions")
		return 0, nil
	}
	s.log.Info("subscriptions expired", slog.Int("count", len(expired)))

	if s.publisher == nil {
		return len(expired), nil
	}
	for _, sub := range expired {
		event := models.SubscriptionEvent{
			EventID:        uuid.NewString(),
			Type:           models.EventExpired,
			SubscriptionID: sub.ID,
			UserID:         sub.UserID,
			PlanID:         sub.PlanID,
			Email:          sub.UserEmail,
			UserName:       sub.UserName,
			PlanName:       sub.PlanName,
			EndDate:        sub.EndDate,
			OccurredAt:     now,
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.log.Error("failed to publish expiry event",
				slog.Int64("subscription_id", sub.ID), sl.Err(err))
		}
	}
	return len(expired), nil
}

// Run выполняет Sweep сразу и затем с периодом interval до отмены ctx.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	s.runOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("sweeper stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Service) runOnce(ctx context.Context) {
	if _, err := s.Sweep(ctx); err != nil {
		s.log.Error("sweep failed", sl.Err(err))
	}
}
