package email

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"

	"outreach_backend/platform/config"
	"outreach_backend/platform/logger"
)

// SMTPSender implements Sender over a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
	replyTo   string
	log       *logger.Logger
}

// NewSMTPSender creates a sender from the configured SMTP credentials.
func NewSMTPSender(cfg config.EmailConfig, log *logger.Logger) *SMTPSender {
	return &SMTPSender{
		host:      cfg.GetSMTPHost(),
		port:      cfg.GetSMTPPort(),
		username:  cfg.GetSMTPUsername(),
		password:  cfg.GetSMTPPassword(),
		fromName:  cfg.GetEmailFromName(),
		fromEmail: cfg.GetEmailFromAddress(),
		replyTo:   cfg.GetReplyToAddress(),
		log:       log,
	}
}

// Send delivers one plain-text message.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m := gomail.NewMsg()
	if err := m.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	if s.replyTo != "" {
		if err := m.ReplyTo(s.replyTo); err != nil {
			return fmt.Errorf("smtp reply-to: %w", err)
		}
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, msg.Body)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		s.log.EmailEvent("smtp_send_failed", msg.To, false, err.Error())
		return fmt.Errorf("smtp send: %w", err)
	}

	s.log.EmailEvent("smtp_send", msg.To, true, "")
	return nil
}

// Verify sends a probe message to the operator so a broken SMTP setup shows
// up before a campaign run does.
func (s *SMTPSender) Verify(ctx context.Context, probeRecipient string) error {
	return s.Send(ctx, Message{
		To:      probeRecipient,
		Subject: "Email Test - Outreach System",
		Body:    "This is a test email to verify your SMTP connection is working.",
	})
}
