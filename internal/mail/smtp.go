// Copyright (c) 2026 Murof. All rights reserved.

package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPConfig holds the connection parameters for the outbound mail relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// SMTPSender delivers messages through an authenticated SMTP relay
// (STARTTLS on the standard submission port).
type SMTPSender struct {
	config SMTPConfig
	auth   smtp.Auth
}

// NewSMTPSender creates an SMTP-backed [Sender].
func NewSMTPSender(config SMTPConfig) *SMTPSender {
	return &SMTPSender{
		config: config,
		auth:   smtp.PlainAuth("", config.Username, config.Password, config.Host),
	}
}

// Send delivers one plaintext message to a single recipient.
//
// The context deadline is not plumbed into the SMTP dialer; the relay
// connection has the transport's own timeouts. Callers treat any error as a
// NOTIFICATION_FAILED condition.
func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mail: send aborted: %w", err)
	}

	message := s.buildMessage(to, subject, body)
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	if err := smtp.SendMail(addr, s.auth, s.config.From, []string{to}, message); err != nil {
		return fmt.Errorf("mail: smtp delivery to %s failed: %w", maskRecipient(to), err)
	}

	return nil
}

// buildMessage assembles RFC 5322 headers plus the plaintext body.
func (s *SMTPSender) buildMessage(to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", s.config.FromName, s.config.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

// maskRecipient keeps full addresses out of error chains that end up in logs.
func maskRecipient(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 1 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}
