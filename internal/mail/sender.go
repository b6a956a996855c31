package mail

import (
	"context"
	"fmt"
	"mime"
	"net/smtp"
	"strings"

	"bjorkvang/internal/config"
	"bjorkvang/internal/models"

	"github.com/rs/zerolog"
)

// SMTPSender delivers messages over plain SMTP with optional auth. The
// transport choice is isolated behind domain.NotificationSender so the
// admission core never learns about it.
type SMTPSender struct {
	cfg    config.SMTPConfig
	logger *zerolog.Logger
}

func NewSMTPSender(cfg config.SMTPConfig, logger *zerolog.Logger) *SMTPSender {
	return &SMTPSender{cfg: cfg, logger: logger}
}

func (s *SMTPSender) Send(ctx context.Context, msg *models.Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("message has no recipients")
	}
	if s.cfg.Host == "" {
		return fmt.Errorf("smtp host is not configured")
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	recipients := make([]string, 0, len(msg.To)+len(msg.Cc)+len(msg.Bcc))
	recipients = append(recipients, msg.To...)
	recipients = append(recipients, msg.Cc...)
	recipients = append(recipients, msg.Bcc...)

	if err := smtp.SendMail(addr, auth, msg.From, recipients, encode(msg)); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}

	s.logger.Debug().Str("subject", msg.Subject).Int("recipients", len(recipients)).Msg("mail sent")
	return nil
}

const crlf = "\r\n"

// encode renders the message as an RFC 5322 body. HTML content ships as
// multipart/alternative with the plain text part first.
func encode(msg *models.Message) []byte {
	var sb strings.Builder

	sb.WriteString("From: " + msg.From + crlf)
	sb.WriteString("To: " + strings.Join(msg.To, ", ") + crlf)
	if len(msg.Cc) > 0 {
		sb.WriteString("Cc: " + strings.Join(msg.Cc, ", ") + crlf)
	}
	if msg.ReplyTo != "" {
		sb.WriteString("Reply-To: " + msg.ReplyTo + crlf)
	}
	sb.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", msg.Subject) + crlf)
	sb.WriteString("MIME-Version: 1.0" + crlf)

	if msg.HTML == "" {
		sb.WriteString(`Content-Type: text/plain; charset="utf-8"` + crlf + crlf)
		sb.WriteString(msg.Text)
		return []byte(sb.String())
	}

	const boundary = "bjorkvang-mail-boundary"
	sb.WriteString(`Content-Type: multipart/alternative; boundary="` + boundary + `"` + crlf + crlf)

	sb.WriteString("--" + boundary + crlf)
	sb.WriteString(`Content-Type: text/plain; charset="utf-8"` + crlf + crlf)
	sb.WriteString(msg.Text + crlf)

	sb.WriteString("--" + boundary + crlf)
	sb.WriteString(`Content-Type: text/html; charset="utf-8"` + crlf + crlf)
	sb.WriteString(msg.HTML + crlf)

	sb.WriteString("--" + boundary + "--" + crlf)
	return []byte(sb.String())
}

// NoopSender logs instead of delivering. Used in development and tests.
type NoopSender struct {
	logger *zerolog.Logger
}

func NewNoopSender(logger *zerolog.Logger) *NoopSender {
	return &NoopSender{logger: logger}
}

func (s *NoopSender) Send(ctx context.Context, msg *models.Message) error {
	s.logger.Info().
		Strs("to", msg.To).
		Str("subject", msg.Subject).
		Msg("mail delivery disabled, dropping message")
	return nil
}
