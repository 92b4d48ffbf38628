package rabbitmq

// Exchange обменник уведомлений.
const Exchange = "notifications"

// Ключи маршрутизации уведомлений.
const (
	KeySubscriptionExpired = "subscription.expired"
	KeyTrialReminder       = "trial.reminder"
)

// QueueConfig очередь и ключ, которым она привязана к Exchange.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues очереди, которые объявляет планировщик.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notifications.subscription-expired", RoutingKey: KeySubscriptionExpired},
		{QueueName: "notifications.trial-reminder", RoutingKey: KeyTrialReminder},
	}
}
