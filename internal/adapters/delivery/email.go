package delivery

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/sipsyai/agentflow/internal/core/flow"
)

// EmailSink sends the formatted payload as an email body over SMTP.
type EmailSink struct {
	addr string
	from string
	auth smtp.Auth
	// send is swappable for tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailSink creates an SMTP-backed email sink.
func NewEmailSink(addr, from string, auth smtp.Auth) *EmailSink {
	return &EmailSink{addr: addr, from: from, auth: auth, send: smtp.SendMail}
}

// Deliver sends the payload to the node's configured recipient.
func (s *EmailSink) Deliver(ctx context.Context, cfg *flow.OutputConfig, payload []byte, contentType string) (any, error) {
	if cfg.EmailTo == "" {
		return nil, fmt.Errorf("email output requires a recipient")
	}
	subject := cfg.EmailSubject
	if subject == "" {
		subject = "Flow result"
	}
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.from)
	fmt.Fprintf(&msg, "To: %s\r\n", cfg.EmailTo)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "Content-Type: %s\r\n\r\n", contentType)
	msg.Write(payload)

	if err := s.send(s.addr, s.auth, s.from, []string{cfg.EmailTo}, []byte(msg.String())); err != nil {
		return nil, fmt.Errorf("sending email: %w", err)
	}
	return map[string]any{"to": cfg.EmailTo, "subject": subject}, nil
}
