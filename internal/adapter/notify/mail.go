package notify

import (
	"fmt"
	"time"

	"github.com/exportguard/exportguardd/internal/config"
	"github.com/exportguard/exportguardd/internal/core/port"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

const sendTimeout = 15 * time.Second

// MailAlerter delivers operator alerts over authenticated SMTP with
// mandatory TLS. Every send dials a fresh session; alerts are rare enough
// that keeping a connection warm buys nothing.
type MailAlerter struct {
	cfg    config.MailConfig
	logger *zap.Logger
}

func NewMailAlerter(cfg config.MailConfig, logger *zap.Logger) *MailAlerter {
	return &MailAlerter{cfg: cfg, logger: logger}
}

func (a *MailAlerter) SendAlert(subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(a.cfg.Sender); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(a.cfg.Recipient); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	client, err := mail.NewClient(a.cfg.Host,
		mail.WithPort(a.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(a.cfg.Username),
		mail.WithPassword(a.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTimeout(sendTimeout))
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("send alert mail: %w", err)
	}
	a.logger.Info("alert mail sent", zap.String("subject", subject), zap.String("to", a.cfg.Recipient))
	return nil
}

// ensure interface compliance
var _ port.AlertSender = (*MailAlerter)(nil)
