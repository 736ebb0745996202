// Package email delivers outreach messages over SMTP.
package email

import "context"

// Message is a single plain-text outreach email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers outreach messages. Implementations must be safe for
// concurrent use.
type Sender interface {
	Send(ctx context.Context, msg Message) error
	// Verify checks the transport end to end by delivering a probe message
	// to the operator's own address.
	Verify(ctx context.Context, probeRecipient string) error
}
