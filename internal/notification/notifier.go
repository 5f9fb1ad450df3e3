package notification

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/edupulse/presence-api/pkg/config"
)

// Notifier delivers operational alerts, currently flagged device link
// requests, to the support inbox.
type Notifier interface {
	Send(ctx context.Context, subject, body string) error
}

// SMTPNotifier sends plain-text mail through the campus relay.
type SMTPNotifier struct {
	host      string
	port      int
	from      string
	recipient string
	logger    *zap.Logger
}

// NewSMTPNotifier constructs the notifier from config.
func NewSMTPNotifier(cfg config.NotificationConfig, logger *zap.Logger) *SMTPNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMTPNotifier{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		from:      cfg.From,
		recipient: cfg.Recipient,
		logger:    logger,
	}
}

// Send delivers one message. When no relay is configured the message is
// logged instead so development environments keep working.
func (n *SMTPNotifier) Send(ctx context.Context, subject, body string) error {
	if n.host == "" {
		n.logger.Info("notification (no smtp relay configured)",
			zap.String("to", n.recipient),
			zap.String("subject", subject),
			zap.String("body", body))
		return nil
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", n.from)
	fmt.Fprintf(&msg, "To: %s\r\n", n.recipient)
	fmt.Fprintf(&msg, "Subject: %s\r\n\r\n", subject)
	msg.WriteString(body)
	msg.WriteString("\r\n")

	addr := fmt.Sprintf("%s:%d", n.host, n.port)
	if err := smtp.SendMail(addr, nil, n.from, []string{n.recipient}, []byte(msg.String())); err != nil {
		return fmt.Errorf("send notification mail: %w", err)
	}
	return nil
}
