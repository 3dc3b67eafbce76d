// Package plan реализует каталог тарифных планов. Список активных планов
// кэшируется в Redis.
package plan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

const keyActivePlans = "plans:active"

// Repository определяет методы хранилища тарифов.
type Repository interface {
	ListActivePlans(ctx context.Context) ([]models.Plan, error)
	GetActivePlan(ctx context.Context, id int64) (*models.Plan, error)
	CreatePlan(ctx context.Context, plan models.Plan) (*models.Plan, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Service — каталог тарифов. Ошибки кэша не прерывают запрос: они
// логируются, а данные читаются из хранилища.
type Service struct {
	repo  Repository
	cache Cache
	ttl   time.Duration
	log   *slog.Logger
}

// NewService создаёт каталог. cache может быть nil, тогда кэш не используется.
func NewService(repo Repository, cache Cache, ttl time.Duration, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		ttl:   ttl,
		log:   log,
	}
}

// ListActivePlans возвращает активные планы по возрастанию цены.
func (s *Service) ListActivePlans(ctx context.Context) ([]models.Plan, error) {
	const op = "plan.ListActivePlans"

	var cached []models.Plan
	if s.fromCache(ctx, keyActivePlans, &cached) {
		return cached, nil
	}

	plans, err := s.repo.ListActivePlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.toCache(ctx, keyActivePlans, plans)
	return plans, nil
}

// GetActivePlan возвращает активный план или models.ErrPlanNotFound.
// Читает хранилище напрямую: план, снятый с продажи, сразу перестаёт быть виден.
func (s *Service) GetActivePlan(ctx context.Context, id int64) (*models.Plan, error) {
	const op = "plan.GetActivePlan"

	p, err := s.repo.GetActivePlan(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// CreatePlan добавляет новый активный план и сбрасывает кэш списка.
func (s *Service) CreatePlan(ctx context.Context, req models.CreatePlanRequest) (*models.Plan, error) {
	const op = "plan.CreatePlan"

	p, err := s.repo.CreatePlan(ctx, models.Plan{
		Name:     req.Name,
		Price:    req.Price,
		Duration: req.Duration,
		Features: req.Features,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("plan created", slog.Int64("plan_id", p.ID), slog.String("name", p.Name))

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, keyActivePlans); err != nil {
			s.log.Warn("failed to invalidate plans cache", slog.String("op", op), sl.Err(err))
		}
	}
	return p, nil
}

func (s *Service) fromCache(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	found, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		s.log.Warn("cache read failed", slog.String("key", key), sl.Err(err))
		return false
	}
	return found
}

func (s *Service) toCache(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		s.log.Warn("cache write failed", slog.String("key", key), sl.Err(err))
	}
}
