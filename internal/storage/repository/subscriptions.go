package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

// SubscriptionTx — операции над подписками пользователя внутри транзакции,
// открытой WithinUserLock. Все вызовы видят и изменяют данные только одного
// пользователя, строка которого заблокирована до конца транзакции.
type SubscriptionTx interface {
	// ActiveSubscription возвращает активную подписку или nil, если её нет.
	ActiveSubscription(ctx context.Context, userID int64) (*models.Subscription, error)
	// InsertSubscription добавляет подписку и возвращает сохранённую запись.
	InsertSubscription(ctx context.Context, sub models.Subscription) (*models.Subscription, error)
	// UpdateSubscriptionPlan переписывает план и даты активной подписки.
	// Если подписка уже не активна, возвращает models.ErrNoActiveSubscription.
	UpdateSubscriptionPlan(ctx context.Context, id, planID int64, start, end time.Time) (*models.Subscription, error)
	// CancelSubscription переводит активную подписку в cancelled.
	// Если подписка уже не активна, возвращает models.ErrNothingToCancel.
	CancelSubscription(ctx context.Context, id int64, at time.Time) (*models.Subscription, error)
	// Plan читает план в обход кэша, независимо от is_active.
	Plan(ctx context.Context, id int64) (*models.Plan, error)
}

type subscriptionTx struct {
	tx *sql.Tx
}

// WithinUserLock выполняет fn в транзакции, предварительно заблокировав
// строку пользователя userID (SELECT ... FOR UPDATE). Конкурирующие операции
// над подписками одного пользователя выполняются строго последовательно,
// поэтому проверка "нет активной подписки" и последующая запись образуют
// единое целое. Ошибка fn откатывает транзакцию.
func (s *Storage) WithinUserLock(ctx context.Context, userID int64, fn func(ctx context.Context, tx SubscriptionTx) error) error {
	const op = "storage.WithinUserLock"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var locked int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, models.ErrUserNotFound)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := fn(ctx, &subscriptionTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

const subscriptionColumns = `id, user_id, plan_id, start_date, end_date, status, created_at, updated_at`

func scanSubscription(row scanner) (*models.Subscription, error) {
	var sub models.Subscription
	if err := row.Scan(&sub.ID, &sub.UserID, &sub.PlanID, &sub.StartDate, &sub.EndDate,
		&sub.Status, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (t *subscriptionTx) ActiveSubscription(ctx context.Context, userID int64) (*models.Subscription, error) {
	const op = "storage.ActiveSubscription"

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions
			  WHERE user_id = $1 AND status = 'active'`
	sub, err := scanSubscription(t.tx.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

func (t *subscriptionTx) InsertSubscription(ctx context.Context, sub models.Subscription) (*models.Subscription, error) {
	const op = "storage.InsertSubscription"

	query := `INSERT INTO subscriptions (user_id, plan_id, start_date, end_date, status, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $6)
			  RETURNING ` + subscriptionColumns
	created, err := scanSubscription(t.tx.QueryRowContext(ctx, query,
		sub.UserID, sub.PlanID, sub.StartDate, sub.EndDate, sub.Status, sub.StartDate))
	if err != nil {
		if uniqueViolation(err, constraintActivePerUser) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrAlreadySubscribed)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

func (t *subscriptionTx) UpdateSubscriptionPlan(ctx context.Context, id, planID int64, start, end time.Time) (*models.Subscription, error) {
	const op = "storage.UpdateSubscriptionPlan"

	query := `UPDATE subscriptions
			  SET plan_id = $1, start_date = $2, end_date = $3, updated_at = $2
			  WHERE id = $4 AND status = 'active'
			  RETURNING ` + subscriptionColumns
	updated, err := scanSubscription(t.tx.QueryRowContext(ctx, query, planID, start, end, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNoActiveSubscription)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// Статус проверяется в самом UPDATE: планировщик истечения не берёт
// блокировку пользователя и может перевести строку в expired раньше.
func (t *subscriptionTx) CancelSubscription(ctx context.Context, id int64, at time.Time) (*models.Subscription, error) {
	const op = "storage.CancelSubscription"

	query := `UPDATE subscriptions
			  SET status = 'cancelled', updated_at = $1
			  WHERE id = $2 AND status = 'active'
			  RETURNING ` + subscriptionColumns
	updated, err := scanSubscription(t.tx.QueryRowContext(ctx, query, at, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNothingToCancel)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

func (t *subscriptionTx) Plan(ctx context.Context, id int64) (*models.Plan, error) {
	const op = "storage.Plan"

	query := `SELECT ` + planColumns + `
			  FROM plans
			  WHERE id = $1`
	p, err := scanPlan(t.tx.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrPlanNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// GetActiveSubscriptionDetails возвращает активную подписку пользователя
// вместе с данными плана или nil, если активной подписки нет.
func (s *Storage) GetActiveSubscriptionDetails(ctx context.Context, userID int64) (*models.SubscriptionDetails, error) {
	const op = "storage.GetActiveSubscriptionDetails"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT s.id, s.user_id, s.plan_id, s.start_date, s.end_date, s.status, s.created_at, s.updated_at,
			      p.name, p.price, p.features, p.duration
			  FROM subscriptions s
			  JOIN plans p ON p.id = s.plan_id
			  WHERE s.user_id = $1 AND s.status = 'active'`
	var (
		d   models.SubscriptionDetails
		raw []byte
	)
	err := s.DB.QueryRowContext(ctx, query, userID).Scan(
		&d.ID, &d.UserID, &d.PlanID, &d.StartDate, &d.EndDate, &d.Status, &d.CreatedAt, &d.UpdatedAt,
		&d.PlanName, &d.Price, &raw, &d.Duration)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if d.Features, err = DecodeFeatures(raw); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &d, nil
}

// ListSubscriptions возвращает страницу подписок всех пользователей, новые
// первыми, и общее количество записей, удовлетворяющих фильтру.
func (s *Storage) ListSubscriptions(ctx context.Context, filter models.SubscriptionFilter) ([]models.AdminSubscription, int, error) {
	const op = "storage.ListSubscriptions"
	if err := checkCtx(ctx, op); err != nil {
		return nil, 0, err
	}

	var status *string
	if filter.Status != "" {
		status = &filter.Status
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM subscriptions s
				   WHERE ($1::text IS NULL OR s.status = $1)`
	if err := s.DB.QueryRowContext(ctx, countQuery, status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT s.id, s.user_id, s.plan_id, s.start_date, s.end_date, s.status, s.created_at, s.updated_at,
			      u.name, u.email, p.name, p.price
			  FROM subscriptions s
			  JOIN users u ON u.id = s.user_id
			  JOIN plans p ON p.id = s.plan_id
			  WHERE ($1::text IS NULL OR s.status = $1)
			  ORDER BY s.created_at DESC, s.id DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, status, filter.Limit, filter.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.AdminSubscription, 0, filter.Limit)
	for rows.Next() {
		var a models.AdminSubscription
		if err := rows.Scan(&a.ID, &a.UserID, &a.PlanID, &a.StartDate, &a.EndDate, &a.Status,
			&a.CreatedAt, &a.UpdatedAt, &a.UserName, &a.UserEmail, &a.PlanName, &a.Price); err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return result, total, nil
}

// ExpireSubscriptions переводит в статус expired все активные подписки с
// end_date < now и возвращает изменённые записи с данными пользователя и плана.
func (s *Storage) ExpireSubscriptions(ctx context.Context, now time.Time) ([]models.AdminSubscription, error) {
	const op = "storage.ExpireSubscriptions"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `WITH expired AS (
			      UPDATE subscriptions
			      SET status = 'expired', updated_at = $1
			      WHERE status = 'active' AND end_date < $1
			      RETURNING ` + subscriptionColumns + `
			  )
			  SELECT e.id, e.user_id, e.plan_id, e.start_date, e.end_date, e.status, e.created_at, e.updated_at,
			      u.name, u.email, p.name, p.price
			  FROM expired e
			  JOIN users u ON u.id = e.user_id
			  JOIN plans p ON p.id = e.plan_id
			  ORDER BY e.id`
	rows, err := s.DB.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.AdminSubscription
	for rows.Next() {
		var a models.AdminSubscription
		if err := rows.Scan(&a.ID, &a.UserID, &a.PlanID, &a.StartDate, &a.EndDate, &a.Status,
			&a.CreatedAt, &a.UpdatedAt, &a.UserName, &a.UserEmail, &a.PlanName, &a.Price); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
