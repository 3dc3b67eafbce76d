// Package sender отправляет пользователям письма о событиях их подписок.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/smtp"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

const dateLayout = "02.01.2006"

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

// HandleEvent обрабатывает тело сообщения из очереди уведомлений.
// Нераспознанные события и события без адреса подтверждаются без отправки,
// ошибка возвращается только при сбое разбора или SMTP.
func (s *SenderService) HandleEvent(body []byte) error {
	const op = "sender.HandleEvent"

	var event models.SubscriptionEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("%s: error unmarshalling message: %w", op, err)
	}

	subject, text, ok := compose(event)
	if !ok {
		s.log.Warn("skip unknown event type", slog.String("type", event.Type))
		return nil
	}
	if event.Email == "" {
		s.log.Warn("skip event without recipient",
			slog.String("type", event.Type), slog.Int64("subscription_id", event.SubscriptionID))
		return nil
	}

	if err := s.sendEmail([]string{event.Email}, subject, text); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func compose(e models.SubscriptionEvent) (subject, body string, ok bool) {
	name := e.UserName
	if name == "" {
		name = "пользователь"
	}
	plan := e.PlanName
	if plan == "" {
		plan = fmt.Sprintf("#%d", e.PlanID)
	}
	end := e.EndDate.Format(dateLayout)

	switch e.Type {
	case models.EventSubscribed:
		return "Подписка оформлена",
			fmt.Sprintf("Здравствуйте, %s!\n\nВы подписались на план %s. Подписка действует до %s.", name, plan, end), true
	case models.EventChanged:
		return "План подписки изменён",
			fmt.Sprintf("Здравствуйте, %s!\n\nВаш план изменён на %s. Новый период действует до %s.", name, plan, end), true
	case models.EventCancelled:
		return "Подписка отменена",
			fmt.Sprintf("Здравствуйте, %s!\n\nВаша подписка на план %s отменена.", name, plan), true
	case models.EventExpired:
		return "Срок подписки истёк",
			fmt.Sprintf("Здравствуйте, %s!\n\nСрок вашей подписки на план %s истёк %s. Оформите новую, чтобы продолжить.", name, plan, end), true
	}
	return "", "", false
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", s.transport.GetSMTPUser()), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
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

	s.log.Info("email sent successfully", slog.Any("to", to))
	return nil
}
