// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"
)

// DefaultFromName is shown as the sender of every message
const DefaultFromName = "Violie - Voting Online"

var ErrNoRecipient = errors.New("message has no recipient")

// Message is a single outgoing email with HTML and plain text bodies
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer delivers messages. Send reports only success or failure.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer sends through an SMTP relay
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, user, password, from string) *SMTPMailer {
	if from == "" {
		from = user
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}

	gm := gomail.NewMessage()
	gm.SetAddressHeader("From", m.from, DefaultFromName)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		gm.AddAlternative("text/html", msg.HTML)
	}

	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(gm)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send mail to %s: %w", msg.To, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LogMailer writes messages to the log instead of sending them.
// Used in development when no SMTP host is configured.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	slog.Info("mail not sent, no SMTP host configured", "to", msg.To, "subject", msg.Subject)
	slog.Debug("mail body", "to", msg.To, "text", msg.Text)
	return nil
}
