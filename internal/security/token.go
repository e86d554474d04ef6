package security

import (
	"crypto/subtle"
	"strings"
	"time"

	"github.com/google/uuid"

	"habitat-pro/internal/domain"
)

// Opaque tokens gate the public charge, receipt and renewal pages. They
// are random handles checked against the database row, never bearer
// credentials for privileged operations.

const DefaultValidityDays = 30

// Mint returns a fresh 128-bit opaque token and its expiry timestamp.
func Mint(validityDays int) (token string, expiresAt time.Time) {
	if validityDays <= 0 {
		validityDays = DefaultValidityDays
	}
	// uuid.New draws from crypto/rand; stripping dashes leaves 32 hex chars.
	token = strings.ReplaceAll(uuid.New().String(), "-", "")
	expiresAt = time.Now().AddDate(0, 0, validityDays)
	return token, expiresAt
}

// Validate checks a presented token against the stored one. The compare
// is constant-time; a wrong token is reported before an expired one so
// unknown tokens never learn about expiry.
func Validate(stored string, expiresAt time.Time, presented string) error {
	if stored == "" ||
		subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) != 1 {
		return domain.ErrBadToken
	}
	if time.Now().After(expiresAt) {
		return domain.ErrTokenExpired
	}
	return nil
}
