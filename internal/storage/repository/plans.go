package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

const planColumns = `id, name, price, duration, features, is_active, created_at`

// ListActivePlans возвращает активные планы по возрастанию цены.
func (s *Storage) ListActivePlans(ctx context.Context) ([]models.Plan, error) {
	const op = "storage.ListActivePlans"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + planColumns + `
			  FROM plans
			  WHERE is_active = TRUE
			  ORDER BY price ASC, id ASC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.Plan, 0)
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetActivePlan возвращает активный план по ID.
func (s *Storage) GetActivePlan(ctx context.Context, id int64) (*models.Plan, error) {
	const op = "storage.GetActivePlan"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + planColumns + `
			  FROM plans
			  WHERE id = $1 AND is_active = TRUE`
	p, err := scanPlan(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrPlanNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// CreatePlan сохраняет новый активный план.
func (s *Storage) CreatePlan(ctx context.Context, plan models.Plan) (*models.Plan, error) {
	const op = "storage.CreatePlan"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	features, err := json.Marshal(plan.Features)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO plans (name, price, duration, features, is_active)
			  VALUES ($1, $2, $3, $4, TRUE)
			  RETURNING id, is_active, created_at`
	err = s.DB.QueryRowContext(ctx, query,
		plan.Name, plan.Price, plan.Duration, string(features)).Scan(&plan.ID, &plan.IsActive, &plan.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &plan, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlan(row scanner) (*models.Plan, error) {
	var (
		p   models.Plan
		raw []byte
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Duration, &raw, &p.IsActive, &p.CreatedAt); err != nil {
		return nil, err
	}
	features, err := DecodeFeatures(raw)
	if err != nil {
		return nil, err
	}
	p.Features = features
	return &p, nil
}

// DecodeFeatures приводит сохранённый список возможностей плана к []string.
// Поддерживается как JSON-массив, так и JSON-строка с закодированным массивом
// внутри, которая встречается в данных, записанных старыми клиентами.
func DecodeFeatures(raw []byte) ([]string, error) {
	const op = "storage.DecodeFeatures"
	if len(raw) == 0 {
		return []string{}, nil
	}

	var features []string
	if err := json.Unmarshal(raw, &features); err == nil {
		if features == nil {
			features = []string{}
		}
		return features, nil
	}

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return nil, fmt.Errorf("%s: unsupported features format: %w", op, err)
	}
	if err := json.Unmarshal([]byte(encoded), &features); err != nil {
		return nil, fmt.Errorf("%s: unsupported features format: %w", op, err)
	}
	if features == nil {
		features = []string{}
	}
	return features, nil
}
