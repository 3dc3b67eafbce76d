// Package metrics содержит метрики Prometheus для жизненного цикла подписок
// и HTTP-запросов.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SubscriptionMetrics интерфейс для метрик подписок
type SubscriptionMetrics interface {
	IncSubscribed(plan string)
	IncChanged(plan string)
	IncCancelled(plan string)
	AddExpired(n int)
}

type subscriptionMetrics struct {
	transitions *prometheus.CounterVec
	expired     prometheus.Counter
}

// NewSubscriptionMetrics регистрирует счётчики переходов подписок в registry.
func NewSubscriptionMetrics(registry prometheus.Registerer) SubscriptionMetrics {
	transitions := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscription_transitions_total",
			Help: "The total number of subscription lifecycle transitions",
		},
		[]string{"transition", "plan"},
	)

	expired := promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Name: "subscriptions_expired_total",
			Help: "The total number of subscriptions moved to expired by the sweeper",
		},
	)

	return &subscriptionMetrics{
		transitions: transitions,
		expired:     expired,
	}
}

func (m *subscriptionMetrics) IncSubscribed(plan string) {
	m.transitions.WithLabelValues("subscribe", plan).Inc()
}

func (m *subscriptionMetrics) IncChanged(plan string) {
	m.transitions.WithLabelValues("change", plan).Inc()
}

func (m *subscriptionMetrics) IncCancelled(plan string) {
	m.transitions.WithLabelValues("cancel", plan).Inc()
}

// AddExpired увеличивает счётчик истёкших подписок на n.
func (m *subscriptionMetrics) AddExpired(n int) {
	if n > 0 {
		m.expired.Add(float64(n))
	}
}

// Noop — метрики, которые ничего не делают. Используются в тестах и утилитах.
type Noop struct{}

func (Noop) IncSubscribed(string) {}
func (Noop) IncChanged(string)    {}
func (Noop) IncCancelled(string)  {}
func (Noop) AddExpired(int)       {}
