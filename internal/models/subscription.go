package models

import (
	"math"
	"time"
)

const (
	// StatusActive — действующая подписка, у пользователя не более одной такой записи.
	StatusActive = "active"
	// StatusCancelled — подписка отменена пользователем.
	StatusCancelled = "cancelled"
	// StatusExpired — срок подписки истёк, выставляется фоновой задачей.
	StatusExpired = "expired"
)

// ValidStatus сообщает, является ли строка известным статусом подписки.
func ValidStatus(status string) bool {
	switch status {
	case StatusActive, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// Subscription связывает пользователя с планом на период [StartDate, EndDate].
type Subscription struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	PlanID    int64     `json:"plan_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SubscriptionDetails — активная подписка вместе с атрибутами плана.
type SubscriptionDetails struct {
	Subscription
	PlanName      string   `json:"plan_name"`
	Price         float64  `json:"price"`
	Features      []string `json:"features"`
	Duration      int      `json:"duration"`
	DaysRemaining int      `json:"days_remaining"`
}

// AdminSubscription — строка административного списка подписок.
type AdminSubscription struct {
	Subscription
	UserName  string  `json:"user_name"`
	UserEmail string  `json:"user_email"`
	PlanName  string  `json:"plan_name"`
	Price     float64 `json:"price"`
}

// DaysUntil возвращает число оставшихся дней до end относительно now,
// округляя вверх неполные сутки. Для прошедших дат возвращает 0.
func DaysUntil(now, end time.Time) int {
	left := end.Sub(now)
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left.Hours() / 24))
}

// Plan возвращает атрибуты плана, к которому относится подписка.
func (d SubscriptionDetails) Plan() Plan {
	return Plan{
		ID:       d.PlanID,
		Name:     d.PlanName,
		Price:    d.Price,
		Duration: d.Duration,
		Features: d.Features,
		IsActive: true,
	}
}
