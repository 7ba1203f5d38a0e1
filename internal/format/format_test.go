package format

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/felipeejunges/currency-converter-front/internal/models"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		name   string
		value  float64
		symbol string
		want   string
	}{
		{"zero value", 0, "$", "$0.00"},
		{"whole amount", 100, "$", "$100.00"},
		{"rounds to two decimals", 5.255, "€", "€5.25"},
		{"keeps cents", 19.9, "R$", "R$19.90"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Currency(tt.value, tt.symbol))
		})
	}
}

func TestRate(t *testing.T) {
	assert.Equal(t, "5.2532", Rate(5.2532))
	assert.Equal(t, "1.0000", Rate(1))
	assert.Equal(t, "0.1880", Rate(0.188))
}

func TestDate(t *testing.T) {
	assert.Equal(t, "Mar 15, 2024, 02:30 PM", Date("2024-03-15T14:30:00Z"))
	assert.Equal(t, "Mar 15, 2024, 02:30 PM", Date("2024-03-15 14:30:00"))

	// Unparseable input is shown as-is rather than erroring the page
	assert.Equal(t, "not-a-date", Date("not-a-date"))
}

func TestSymbol(t *testing.T) {
	currencies := []models.Currency{
		{Code: "USD", Symbol: "$", SymbolNative: "$"},
		{Code: "BRL", Symbol: "R$", SymbolNative: "R$"},
		{Code: "CHF", Symbol: "CHF", SymbolNative: ""},
	}

	assert.Equal(t, "$", Symbol(currencies, "USD"))
	assert.Equal(t, "CHF", Symbol(currencies, "CHF"), "falls back to generic symbol")
	assert.Equal(t, "XYZ", Symbol(currencies, "XYZ"), "unknown code falls back to the code")
	assert.Equal(t, "EUR", Symbol(nil, "EUR"))
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"user@example.com", "first.last@sub.domain.org", "a@b.co"}
	for _, email := range valid {
		assert.True(t, IsValidEmail(email), "expected %q to be valid", email)
	}

	invalid := []string{"", "plain", "no@tld", "spaces in@example.com", "@example.com", "user@"}
	for _, email := range invalid {
		assert.False(t, IsValidEmail(email), "expected %q to be invalid", email)
	}
}

func TestValidatePassword(t *testing.T) {
	ok, msg := ValidatePassword("secret")
	assert.True(t, ok)
	assert.Empty(t, msg)

	ok, msg = ValidatePassword("12345")
	assert.False(t, ok)
	assert.Equal(t, "Password must be at least 6 characters long", msg)
}
