package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"gopkg.in/gomail.v2"

	"habitat-pro/internal/domain"
	"habitat-pro/internal/logger"
)

type smtpTransport struct {
	host     string
	port     int
	username string
	password string
	from     string
	fromName string
	timeout  time.Duration
}

// NewSMTPTransport builds an EmailTransport backed by a plain SMTP server.
func NewSMTPTransport(host string, port int, username, password, from, fromName string, timeout time.Duration) EmailTransport {
	return &smtpTransport{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		fromName: fromName,
		timeout:  timeout,
	}
}

func (s *smtpTransport) Send(ctx context.Context, to, toName, subject, plainText, htmlContent string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.fromName)
	m.SetAddressHeader("To", to, toName)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainText)
	if htmlContent != "" {
		m.AddAlternative("text/html", htmlContent)
	}

	d := gomail.NewDialer(s.host, s.port, s.username, s.password)

	logger.ExternalServiceCall("smtp", "send", "to", to, "subject", subject)
	err := sendWithDeadline(ctx, s.timeout, func() error {
		return d.DialAndSend(m)
	})
	logger.ExternalServiceResult("smtp", "send", err, "to", to)
	if err != nil {
		return fmt.Errorf("failed to send email via smtp: %w", err)
	}
	return nil
}

type sendGridTransport struct {
	apiKey   string
	from     string
	fromName string
	timeout  time.Duration
}

// NewSendGridTransport builds an EmailTransport backed by the SendGrid API.
func NewSendGridTransport(apiKey, from, fromName string, timeout time.Duration) EmailTransport {
	return &sendGridTransport{
		apiKey:   apiKey,
		from:     from,
		fromName: fromName,
		timeout:  timeout,
	}
}

func (s *sendGridTransport) Send(ctx context.Context, to, toName, subject, plainText, htmlContent string) error {
	from := mail.NewEmail(s.fromName, s.from)
	recipient := mail.NewEmail(toName, to)
	message := mail.NewSingleEmail(from, subject, recipient, plainText, htmlContent)
	client := sendgrid.NewSendClient(s.apiKey)

	logger.ExternalServiceCall("sendgrid", "send", "to", to, "subject", subject)
	err := sendWithDeadline(ctx, s.timeout, func() error {
		response, err := client.Send(message)
		if err != nil {
			return err
		}
		if response.StatusCode >= 400 {
			return fmt.Errorf("%w: sendgrid status %d", domain.ErrTransportRefused, response.StatusCode)
		}
		return nil
	})
	logger.ExternalServiceResult("sendgrid", "send", err, "to", to)
	if err != nil {
		if errors.Is(err, domain.ErrTransportRefused) || errors.Is(err, domain.ErrTransportTimeout) {
			return err
		}
		return fmt.Errorf("failed to send email via sendgrid: %w", err)
	}
	return nil
}

// sendWithDeadline runs fn on a goroutine and abandons it once the timeout or
// the caller's context expires. Neither gomail nor the sendgrid client takes a
// context, so the slow call keeps running in the background until it returns.
func sendWithDeadline(ctx context.Context, timeout time.Duration, fn func() error) error {
	if timeout <= 0 {
		return fn()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- fn() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", domain.ErrTransportTimeout, ctx.Err())
	}
}
