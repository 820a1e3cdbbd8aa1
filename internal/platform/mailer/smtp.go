// Copyright (c) 2026 Trailforge. All rights reserved.

package mailer

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPMailer delivers mail over plain SMTP. With no credentials configured
// it speaks unauthenticated SMTP, which is what Mailpit expects locally.
type SMTPMailer struct {
	host string
	port int
	from string
	user string
	pass string
}

// NewSMTPMailer creates an SMTP-backed mailer.
func NewSMTPMailer(host string, port int, from, user, pass string) *SMTPMailer {
	return &SMTPMailer{
		host: strings.TrimSpace(host),
		port: port,
		from: strings.TrimSpace(from),
		user: strings.TrimSpace(user),
		pass: strings.TrimSpace(pass),
	}
}

// SendPasswordReset implements [Mailer].
func (m *SMTPMailer) SendPasswordReset(_ context.Context, toEmail, toName, resetURL string) error {
	return m.send(toEmail, passwordResetSubject,
		passwordResetText(resetURL),
		passwordResetHTML(toName, resetURL),
	)
}

// send builds a multipart/alternative message and pushes it through SMTP.
func (m *SMTPMailer) send(toEmail, subject, text, html string) error {
	toEmail = strings.TrimSpace(toEmail)
	if toEmail == "" {
		return fmt.Errorf("mailer: empty recipient email")
	}

	const boundary = "mixed-boundary"

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", m.from)
	fmt.Fprintf(&buf, "To: %s\r\n", toEmail)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", boundary)

	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	fmt.Fprintf(&buf, "Content-Type: text/plain; charset=utf-8\r\n\r\n")
	fmt.Fprintf(&buf, "%s\r\n\r\n", text)

	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	fmt.Fprintf(&buf, "Content-Type: text/html; charset=utf-8\r\n\r\n")
	fmt.Fprintf(&buf, "%s\r\n\r\n", html)

	fmt.Fprintf(&buf, "--%s--\r\n", boundary)

	addr := fmt.Sprintf("%s:%d", m.host, m.port)

	// No credentials: development relay, no auth handshake.
	if m.user == "" {
		return smtp.SendMail(addr, nil, m.from, []string{toEmail}, buf.Bytes())
	}

	auth := smtp.PlainAuth("", m.user, m.pass, m.host)
	return smtp.SendMail(addr, auth, m.from, []string{toEmail}, buf.Bytes())
}
