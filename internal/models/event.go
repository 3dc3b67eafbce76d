package models

import "time"

const (
	// EventSubscribed — пользователь оформил подписку.
	EventSubscribed = "subscription.created"
	// EventChanged — пользователь сменил план.
	EventChanged = "subscription.changed"
	// EventCancelled — пользователь отменил подписку.
	EventCancelled = "subscription.cancelled"
	// EventExpired — срок подписки истёк.
	EventExpired = "subscription.expired"
)

// SubscriptionEvent — сообщение о переходе подписки, публикуемое в брокер.
type SubscriptionEvent struct {
	EventID        string    `json:"event_id"`
	Type           string    `json:"type"`
	SubscriptionID int64     `json:"subscription_id"`
	UserID         int64     `json:"user_id"`
	PlanID         int64     `json:"plan_id"`
	Email          string    `json:"email,omitempty"`
	UserName       string    `json:"user_name,omitempty"`
	PlanName       string    `json:"plan_name,omitempty"`
	EndDate        time.Time `json:"end_date"`
	OccurredAt     time.Time `json:"occurred_at"`
}
