package notifier

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Счётчики публикации уведомлений. Отправка писем — best-effort:
// проглоченные ошибки видны только здесь и в логах.
var (
	published = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moneylock_notifications_published_total",
		Help: "Notifications published to the broker, by kind.",
	}, []string{"kind"})

	publishFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moneylock_notifications_publish_failed_total",
		Help: "Notifications that failed to publish, by kind.",
	}, []string{"kind"})
)
