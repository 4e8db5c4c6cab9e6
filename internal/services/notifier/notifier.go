// Package notifier определяет контракт отправки уведомлений и его
// реализацию поверх RabbitMQ. Ядро только публикует сообщение в
// обменник; доставку писем выполняет отдельный сервис
// notification-sender, разбирающий очередь.
package notifier

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/monyorojoseph/money-lock/internal/lib/sl"
	"github.com/monyorojoseph/money-lock/internal/rabbitmq"
)

// Виды уведомлений жизненного цикла.
const (
	KindVerification     = "verification"
	KindAgreementCreated = "agreement_created"
	KindOnboarding       = "onboarding"
)

// Recipient адресат уведомления.
type Recipient struct {
	Address     string `json:"address"`
	DisplayName string `json:"displayName"`
}

// Content содержимое письма.
type Content struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Message полное уведомление, публикуемое в очередь.
type Message struct {
	Kind       string      `json:"kind"`
	Content    Content     `json:"content"`
	Recipients []Recipient `json:"recipients"`
}

// Notifier описывает возможность отправить уведомление.
// Реализация сама решает, синхронно ли доставлять.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// Queue публикует уведомления в обменник RabbitMQ.
type Queue struct {
	ch  *amqp.Channel
	log *slog.Logger
}

// NewQueue создает новый экземпляр Queue.
func NewQueue(ch *amqp.Channel, log *slog.Logger) *Queue {
	return &Queue{ch: ch, log: log}
}

// Send публикует уведомление с ключом маршрутизации писем.
// Доставки помечаются persistent, чтобы пережить перезапуск брокера.
func (q *Queue) Send(_ context.Context, msg Message) error {
	if err := rabbitmq.PublishMessage(q.ch, rabbitmq.Exchange, rabbitmq.EmailRoutingKey, msg); err != nil {
		publishFailed.WithLabelValues(msg.Kind).Inc()
		q.log.Error("failed to publish notification", slog.String("kind", msg.Kind), sl.Err(err))
		return err
	}
	published.WithLabelValues(msg.Kind).Inc()
	return nil
}
