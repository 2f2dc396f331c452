// Copyright (c) 2026 Murof. All rights reserved.

/*
Package mail implements the notification collaborator for the authentication flows.

It delivers the three transactional messages the auth subsystem produces:
account verification links, duplicate-signup warnings, and password reset
links. Delivery is fire-and-forget from the Auth Service's perspective —
failures surface as a NOTIFICATION_FAILED condition in the logs and never
roll back the state change that triggered the mail.

Architecture:

  - Sender: The delivery contract, satisfied by SMTP in production and by a
    log-only sender in development and tests.
  - Templates: Plaintext bodies with the verification/reset link injected.
*/
package mail

import (
	"context"
	"log/slog"
)

// Sender delivers a single email message.
//
// Implementations must be safe for concurrent use; the Auth Service calls
// Send from independent request handlers.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogSender is a development implementation that records messages to the
// structured log instead of delivering them. It never fails.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a log-only [Sender].
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the message envelope. The body is logged at debug level only, so
// production-grade log collection never captures live verification links.
func (s *LogSender) Send(ctx context.Context, to, subject, body string) error {
	s.logger.InfoContext(ctx, "mail_logged_instead_of_sent",
		slog.String("to", to),
		slog.String("subject", subject),
	)
	s.logger.DebugContext(ctx, "mail_body", slog.String("body", body))
	return nil
}
