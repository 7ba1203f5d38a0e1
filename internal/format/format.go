// Package format holds pure display formatting and input validation helpers
// shared by the page handlers and templates.
package format

import (
	"fmt"
	"regexp"
	"time"

	"github.com/felipeejunges/currency-converter-front/internal/models"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Currency renders a monetary value with its symbol and two decimals,
// e.g. Currency(100, "$") == "$100.00".
func Currency(value float64, symbol string) string {
	return fmt.Sprintf("%s%.2f", symbol, value)
}

// Rate renders an exchange rate with four decimals.
func Rate(rate float64) string {
	return fmt.Sprintf("%.4f", rate)
}

// Date renders a backend timestamp for display. Unparseable input is echoed
// back unchanged rather than failing the whole page.
func Date(timestamp string) string {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, timestamp); err == nil {
			return t.Format("Jan 2, 2006, 03:04 PM")
		}
	}
	return timestamp
}

// Symbol looks up the display symbol for a currency code, preferring the
// native symbol, then the generic one, then the code itself.
func Symbol(currencies []models.Currency, code string) string {
	for _, c := range currencies {
		if c.Code != code {
			continue
		}
		if c.SymbolNative != "" {
			return c.SymbolNative
		}
		if c.Symbol != "" {
			return c.Symbol
		}
		break
	}
	return code
}

// IsValidEmail reports whether the address looks like an email. This is the
// same loose shape the backend accepts; strict RFC parsing is its job.
func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// ValidatePassword checks minimum password strength. The message is returned
// ready for inline display; it is empty when the password is acceptable.
func ValidatePassword(password string) (bool, string) {
	if len(password) < 6 {
		return false, "Password must be at least 6 characters long"
	}
	return true, ""
}
