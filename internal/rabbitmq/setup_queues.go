package rabbitmq

type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// EmailQueue очередь, которую разбирает notification-sender.
const EmailQueue = "notification.email"

// EmailRoutingKey ключ маршрутизации писем в обменнике уведомлений.
const EmailRoutingKey = "email"

func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: EmailQueue, RoutingKey: EmailRoutingKey},
	}
}
