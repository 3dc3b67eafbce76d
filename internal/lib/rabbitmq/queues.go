package rabbitmq

import "github.com/magabrotheeeer/subscription-manager/internal/models"

// ExchangeSubscriptions — direct-обменник событий жизненного цикла подписок.
const ExchangeSubscriptions = "subscriptions"

// QueueNotifications — очередь, которую читает сервис уведомлений.
const QueueNotifications = "notifications.subscriptions"

type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает привязки очереди уведомлений ко всем
// типам событий подписки (routing key = тип события).
func GetNotificationQueues() []QueueConfig {
	types := []string{
		models.EventSubscribed,
		models.EventChanged,
		models.EventCancelled,
		models.EventExpired,
	}
	queues := make([]QueueConfig, 0, len(types))
	for _, rk := range types {
		queues = append(queues, QueueConfig{QueueName: QueueNotifications, RoutingKey: rk})
	}
	return queues
}
