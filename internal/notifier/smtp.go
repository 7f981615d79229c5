package notifier

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/bayegaspard/datasite/internal/logger"
	"github.com/bayegaspard/datasite/internal/model"
)

var _ model.Notifier = (*SMTP)(nil)

// SMTP delivers notifications over plain SMTP with optional AUTH. Only the
// email channel is wired; other channels are acknowledged and dropped.
type SMTP struct {
	host     string
	port     string
	username string
	password string
	from     string
	logger   *logger.Logger
}

func NewSMTP(host, port, username, password, from string, l *logger.Logger) *SMTP {
	return &SMTP{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		logger:   l,
	}
}

// Enabled reports whether the notifier has a mail relay to talk to.
func (s *SMTP) Enabled() bool {
	return s.host != ""
}

// Send delivers the notification to every enabled channel. Delivery failures
// are returned to the caller, who is expected to log and move on rather than
// fail the operation that triggered the notification.
func (s *SMTP) Send(ctx context.Context, n model.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, channel := range n.Channels {
		switch channel {
		case model.ChannelEmail:
			if err := s.sendMail(n); err != nil {
				return fmt.Errorf("failed to send email to %s: %w", n.ToEmail, err)
			}
		default:
			s.logger.Debug("notification channel not configured, dropping", "channel", channel)
		}
	}
	return nil
}

func (s *SMTP) sendMail(n model.Notification) error {
	if !s.Enabled() {
		return fmt.Errorf("smtp host is not configured")
	}

	from, msg := buildMessage(n, s.from)

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	addr := s.host + ":" + s.port
	return smtp.SendMail(addr, auth, from, []string{n.ToEmail}, msg)
}

// buildMessage renders the MIME envelope. The sender falls back to
// defaultFrom when the notification carries no address of its own.
func buildMessage(n model.Notification, defaultFrom string) (from string, msg []byte) {
	from = n.FromEmail
	if from == "" {
		from = defaultFrom
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", n.ToEmail)
	fmt.Fprintf(&b, "Subject: %s\r\n", n.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	if n.Template == model.TemplateOnboard {
		b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	} else {
		b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	}
	b.WriteString("\r\n")
	b.WriteString(n.Body)
	return from, []byte(b.String())
}
