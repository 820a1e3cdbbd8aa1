// Copyright (c) 2026 Trailforge. All rights reserved.

/*
Package mailer provides outbound email delivery for the Trailforge API.

Three implementations are available, selected by configuration:

  - SMTPMailer: plain SMTP, used with Mailpit in development or a real
    relay in production.
  - MailerSendMailer: the MailerSend transactional API.
  - DevMailer: logs the message instead of sending it.

The service layer depends only on the [Mailer] interface so the transport
can be swapped without touching auth logic.
*/
package mailer

import (
	"context"
	"fmt"
	"log/slog"
)

// Mailer sends transactional email on behalf of the API.
type Mailer interface {
	// SendPasswordReset delivers the password-reset link to the user.
	// The URL embeds a single-use token valid for a short window.
	SendPasswordReset(ctx context.Context, toEmail, toName, resetURL string) error
}

// passwordResetSubject matches the short validity window of reset tokens.
const passwordResetSubject = "Your password reset token (valid for 10 min)"

// passwordResetText builds the plain-text body of the reset email.
func passwordResetText(resetURL string) string {
	return fmt.Sprintf("Forgot your password? Submit a PATCH request with your new password and passwordConfirm to: %s.\nIf you didn't forget your password, please ignore this email!", resetURL)
}

// passwordResetHTML builds the HTML body of the reset email.
func passwordResetHTML(toName, resetURL string) string {
	return fmt.Sprintf(`<h2>Password Reset</h2>
<p>Hi %s,</p>
<p>Forgot your password? Click the link below to choose a new one:</p>
<p><a href="%s">Reset Password</a></p>
<p>This link is valid for 10 minutes.</p>
<p>If you didn't forget your password, please ignore this email!</p>`, toName, resetURL)
}

// DevMailer logs outbound mail instead of delivering it. It is the default
// driver in development so the flow can be exercised without an SMTP server.
type DevMailer struct {
	logger *slog.Logger
}

// NewDevMailer creates a logging-only mailer.
func NewDevMailer(logger *slog.Logger) *DevMailer {
	return &DevMailer{logger: logger}
}

// SendPasswordReset implements [Mailer] by logging the reset URL.
func (m *DevMailer) SendPasswordReset(_ context.Context, toEmail, toName, resetURL string) error {
	m.logger.Info("dev mail: password reset",
		slog.String("to", toEmail),
		slog.String("name", toName),
		slog.String("subject", passwordResetSubject),
		slog.String("reset_url", resetURL),
	)
	return nil
}
