package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatBRL renders an amount in Brazilian currency notation:
// thousands separated by dots, cents by a comma, e.g. "R$ 1.234,56".
// Negative amounts carry a leading minus sign.
func FormatBRL(amount decimal.Decimal) string {
	neg := amount.IsNegative()
	fixed := amount.Abs().StringFixed(2)

	intPart := fixed[:len(fixed)-3]
	centPart := fixed[len(fixed)-2:]

	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)

	out := "R$ " + strings.Join(groups, ".") + "," + centPart
	if neg {
		out = "-" + out
	}
	return out
}

// FormatBRLSigned is FormatBRL with an explicit plus sign for positive
// amounts, used to render ledger balances.
func FormatBRLSigned(amount decimal.Decimal) string {
	if amount.IsPositive() {
		return "+" + FormatBRL(amount)
	}
	return FormatBRL(amount)
}
