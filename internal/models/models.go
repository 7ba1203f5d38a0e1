package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// User represents the authenticated account holder.
type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name"`
}

// NewUserFromName builds a User from the single display name returned by the
// login endpoint. The first whitespace-delimited token becomes the first
// name, the remainder the last name (empty when the name has no spaces).
func NewUserFromName(id int64, email, name string) User {
	first, last := "", ""
	if fields := strings.Fields(name); len(fields) > 0 {
		first = fields[0]
		last = strings.Join(fields[1:], " ")
	}
	return User{
		ID:        id,
		Email:     email,
		FirstName: first,
		LastName:  last,
		FullName:  name,
	}
}

// Currency is a supported currency as returned by the backend.
type Currency struct {
	ID           int64  `json:"id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	Symbol       string `json:"symbol"`
	SymbolNative string `json:"symbol_native"`
}

// FlexFloat decodes a JSON number that may arrive either as a number or as a
// numeric string. The backend is inconsistent about monetary fields, so they
// are normalized here, once, at the API boundary.
type FlexFloat float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*f = 0
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = FlexFloat(v)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f FlexFloat) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(f))
}

// Float64 returns the normalized value.
func (f FlexFloat) Float64() float64 { return float64(f) }

// Conversion is a single currency-exchange transaction record. Conversions
// are server-assigned and immutable; the client only displays them.
type Conversion struct {
	TransactionID int64     `json:"transaction_id"`
	UserID        int64     `json:"user_id"`
	FromCurrency  string    `json:"from_currency"`
	ToCurrency    string    `json:"to_currency"`
	FromValue     FlexFloat `json:"from_value"`
	ToValue       FlexFloat `json:"to_value"`
	Rate          FlexFloat `json:"rate"`
	Timestamp     string    `json:"timestamp"`
}

// Pagination is the paging metadata attached to a conversion history page.
type Pagination struct {
	Page  int `json:"page"`
	Count int `json:"count"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// ConversionHistory is one page of conversions plus its pagination metadata.
type ConversionHistory struct {
	Conversions []Conversion `json:"conversions"`
	Pagination  Pagination   `json:"pagination"`
}
