// Copyright (c) 2026 Trailforge. All rights reserved.

package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/mailersend/mailersend-go"
)

// sendTimeout bounds a single MailerSend API call.
const sendTimeout = 10 * time.Second

// MailerSendMailer delivers mail through the MailerSend transactional API.
type MailerSendMailer struct {
	client *mailersend.Mailersend
	from   mailersend.From
}

// NewMailerSendMailer creates a MailerSend-backed mailer. It returns an
// error when the API key or sender address is missing, so a misconfigured
// production deploy fails at startup rather than on the first reset request.
func NewMailerSendMailer(apiKey, fromName, fromEmail string) (*MailerSendMailer, error) {
	if apiKey == "" || fromEmail == "" {
		return nil, fmt.Errorf("mailer: mailersend requires an API key and sender address")
	}

	return &MailerSendMailer{
		client: mailersend.NewMailersend(apiKey),
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
	}, nil
}

// SendPasswordReset implements [Mailer].
func (m *MailerSendMailer) SendPasswordReset(ctx context.Context, toEmail, toName, resetURL string) error {
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	message := m.client.Email.NewMessage()
	message.SetFrom(m.from)
	message.SetRecipients([]mailersend.Recipient{{Name: toName, Email: toEmail}})
	message.SetSubject(passwordResetSubject)
	message.SetText(passwordResetText(resetURL))
	message.SetHTML(passwordResetHTML(toName, resetURL))

	if _, err := m.client.Email.Send(sendCtx, message); err != nil {
		return fmt.Errorf("mailer: mailersend send failed: %w", err)
	}

	return nil
}
