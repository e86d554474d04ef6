package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"habitat-pro/internal/domain"
)

type whatsAppLinkTransport struct {
	countryCode string
}

// NewWhatsAppLinkTransport builds a MessageTransport that never pushes
// anything: it produces a wa.me link with the message prefilled, for an
// operator to open or for embedding in an email.
func NewWhatsAppLinkTransport(countryCode string) MessageTransport {
	return &whatsAppLinkTransport{countryCode: countryCode}
}

func (t *whatsAppLinkTransport) Send(_ context.Context, phone, text string) (string, error) {
	digits := normalizePhone(phone)
	if digits == "" {
		return "", fmt.Errorf("%w: empty phone number", domain.ErrValidation)
	}
	if !strings.HasPrefix(digits, t.countryCode) {
		digits = t.countryCode + digits
	}
	return fmt.Sprintf("https://wa.me/%s?text=%s", digits, url.QueryEscape(text)), nil
}

// normalizePhone keeps only the digits of a formatted phone number,
// e.g. "(11) 98765-4321" becomes "11987654321".
func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
