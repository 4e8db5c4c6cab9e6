// Package sender реализует доставку писем из очереди уведомлений.
// Сервис разбирает сообщения, опубликованные ядром, и отправляет
// каждому адресату письмо через SMTP транспорт.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/monyorojoseph/money-lock/internal/lib/sl"
	"github.com/monyorojoseph/money-lock/internal/lib/smtp"
	"github.com/monyorojoseph/money-lock/internal/services/notifier"
)

type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(log *slog.Logger, transport smtp.TransportInterface) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// HandleEmailMessage обрабатывает одно сообщение очереди уведомлений:
// разбирает notifier.Message и отправляет письмо каждому адресату.
// Ошибка возвращается наружу, чтобы потребитель сделал nack и сообщение
// было доставлено повторно.
func (s *SenderService) HandleEmailMessage(body []byte) error {
	var msg notifier.Message
	if err := json.Unmarshal(body, &msg); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}
	if len(msg.Recipients) == 0 {
		s.log.Warn("notification without recipients dropped", slog.String("kind", msg.Kind))
		return nil
	}

	for _, rcpt := range msg.Recipients {
		if err := s.sendEmail(rcpt, msg.Content); err != nil {
			return err
		}
	}
	return nil
}

func (s *SenderService) sendEmail(rcpt notifier.Recipient, content notifier.Content) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + rcpt.Address,
		"Subject: " + content.Subject,
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=\"UTF-8\"",
		"",
		content.HTML,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", "from", s.transport.GetSMTPUser(), "error", sl.Err(err))
		return err
	}

	if err := client.Rcpt(rcpt.Address); err != nil {
		s.log.Error("failed to set RCPT TO", "recipient", rcpt.Address, "error", sl.Err(err))
		return err
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}

	_, err = wc.Write([]byte(msg))
	if err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", slog.String("to", rcpt.Address))
	return nil
}
