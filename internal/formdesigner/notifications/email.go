// Отправка писем с результатами заполнения форм через SMTP.
//
// Основные возможности:
//   - Отправка письма нескольким получателям одним сообщением.
//   - Режим без отправки (EMAIL_DISABLED), в котором письма только пишутся в лог.
//   - Ошибки SMTP возвращаются вызывающему как TransportError, повторных попыток нет.
package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aisa-it/formdesigner/internal/formdesigner/config"
	"gopkg.in/gomail.v2"
)

// Message - письмо, подготовленное обработчиком отправок.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// Mailer - транспорт писем.
type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// TransportError - письмо не удалось передать SMTP-серверу. Частичная доставка не отслеживается.
type TransportError struct {
	Recipients []string
	Err        error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("send mail to %s: %v", strings.Join(e.Recipients, ", "), e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

type EmailService struct {
	d        *gomail.Dialer
	from     string
	disabled bool
}

func NewEmailService(cfg *config.Config) *EmailService {
	es := &EmailService{
		d:        gomail.NewDialer(cfg.EmailHost, cfg.EmailPort, cfg.EmailUser, cfg.EmailPassword),
		from:     cfg.EmailFrom,
		disabled: cfg.EmailDisabled,
	}
	if es.disabled {
		slog.Warn("Email sending disabled, messages will be logged only")
	}
	return es
}

func (es *EmailService) newMessage(m Message) *gomail.Message {
	from := m.From
	if from == "" {
		from = es.from
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", m.To...)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/plain", m.Body)
	return msg
}

// Send отправляет письмо синхронно.
func (es *EmailService) Send(ctx context.Context, m Message) error {
	if len(m.To) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := es.newMessage(m)
	if es.disabled {
		slog.Info("Email sending disabled, skip message",
			"from", msg.GetHeader("From"),
			"to", m.To,
			"subject", m.Subject,
			"body", m.Body)
		return nil
	}

	if err := es.d.DialAndSend(msg); err != nil {
		return &TransportError{Recipients: m.To, Err: err}
	}
	slog.Debug("Email sent", "to", m.To, "subject", m.Subject)
	return nil
}
