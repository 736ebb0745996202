package email

import (
	"context"

	"outreach_backend/platform/logger"
)

// DisabledSender is used when email delivery is switched off. It logs what
// would have been sent and reports success, so campaign runs stay inspectable
// without touching SMTP.
type DisabledSender struct {
	log *logger.Logger
}

func NewDisabledSender(log *logger.Logger) *DisabledSender {
	return &DisabledSender{log: log}
}

func (s *DisabledSender) Send(_ context.Context, msg Message) error {
	s.log.EmailEvent("send_skipped_disabled", msg.To, true, "email delivery disabled")
	return nil
}

func (s *DisabledSender) Verify(_ context.Context, probeRecipient string) error {
	s.log.EmailEvent("verify_skipped_disabled", probeRecipient, true, "email delivery disabled")
	return nil
}
