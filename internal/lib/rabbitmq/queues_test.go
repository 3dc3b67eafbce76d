package rabbitmq

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

func TestGetNotificationQueues(t *testing.T) {
	queues := GetNotificationQueues()

	keys := make([]string, 0, len(queues))
	for _, q := range queues {
		assert.Equal(t, QueueNotifications, q.QueueName)
		keys = append(keys, q.RoutingKey)
	}
	assert.ElementsMatch(t, []string{
		models.EventSubscribed, models.EventChanged, models.EventCancelled, models.EventExpired,
	}, keys)
}
