package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	dErrors "atelier/pkg/domain-errors"
)

// Money is an immutable non-negative amount of whole cents in one currency.
//
// Invariants:
//   - amount >= 0
//   - currency is exactly three uppercase ASCII letters
//   - arithmetic never mixes currencies and never yields fractional cents
//
// The zero value is not a valid Money; construct via Cents.
type Money struct {
	amount   int64
	currency string
}

// Cents constructs Money from an integer cent amount and an ISO-4217-style
// code. The code is trimmed and uppercased before validation.
func Cents(amount int64, currency string) (Money, error) {
	if amount < 0 {
		return Money{}, dErrors.InvalidInput("money_amount_negative")
	}
	code, err := normalizeCurrency(currency)
	if err != nil {
		return Money{}, err
	}
	return Money{amount: amount, currency: code}, nil
}

// CentsFromFloat is Cents for untyped numeric input (JSON numbers). Values
// that are not whole integers are rejected rather than rounded.
func CentsFromFloat(amount float64, currency string) (Money, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount != math.Trunc(amount) {
		return Money{}, dErrors.InvalidInput("money_amount_not_integer")
	}
	if amount > math.MaxInt64 || amount < math.MinInt64 {
		return Money{}, dErrors.InvalidInput("money_amount_out_of_range")
	}
	return Cents(int64(amount), currency)
}

// MustCents panics on invalid input. Intended for tests and constants.
func MustCents(amount int64, currency string) Money {
	m, err := Cents(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

func normalizeCurrency(currency string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if len(code) != 3 {
		return "", dErrors.InvalidInput("money_currency_invalid")
	}
	for i := 0; i < len(code); i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return "", dErrors.InvalidInput("money_currency_invalid")
		}
	}
	return code, nil
}

// Amount returns the amount in cents.
func (m Money) Amount() int64 { return m.amount }

// Currency returns the normalized currency code.
func (m Money) Currency() string { return m.currency }

// IsZero reports whether the amount is zero cents.
func (m Money) IsZero() bool { return m.amount == 0 }

// Equal reports whether both amount and currency match.
func (m Money) Equal(o Money) bool {
	return m.amount == o.amount && m.currency == o.currency
}

func (m Money) sameCurrency(o Money) error {
	if m.currency != o.currency {
		return dErrors.InvalidInput(fmt.Sprintf("money_currency_mismatch:%s!=%s", m.currency, o.currency))
	}
	return nil
}

// Add returns m + o.
func (m Money) Add(o Money) (Money, error) {
	if err := m.sameCurrency(o); err != nil {
		return Money{}, err
	}
	if o.amount > math.MaxInt64-m.amount {
		return Money{}, dErrors.InvalidInput("money_amount_overflow")
	}
	return Money{amount: m.amount + o.amount, currency: m.currency}, nil
}

// Subtract returns m - o, floored at zero.
func (m Money) Subtract(o Money) (Money, error) {
	if err := m.sameCurrency(o); err != nil {
		return Money{}, err
	}
	diff := m.amount - o.amount
	if diff < 0 {
		diff = 0
	}
	return Money{amount: diff, currency: m.currency}, nil
}

// MultiplyRate scales m by rate and floors to whole cents.
func (m Money) MultiplyRate(rate float64) (Money, error) {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate < 0 {
		return Money{}, dErrors.InvalidInput("money_rate_invalid")
	}
	scaled := math.Floor(float64(m.amount) * rate)
	if scaled > math.MaxInt64 {
		return Money{}, dErrors.InvalidInput("money_amount_overflow")
	}
	return Money{amount: int64(scaled), currency: m.currency}, nil
}

// GreaterOrEqual compares two amounts of the same currency.
func (m Money) GreaterOrEqual(o Money) (bool, error) {
	if err := m.sameCurrency(o); err != nil {
		return false, err
	}
	return m.amount >= o.amount, nil
}

// String renders e.g. "12.34 USD".
func (m Money) String() string {
	return fmt.Sprintf("%d.%02d %s", m.amount/100, m.amount%100, m.currency)
}

type moneyJSON struct {
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{AmountCents: m.amount, Currency: m.currency})
}

// UnmarshalJSON validates the payload through Cents.
func (m *Money) UnmarshalJSON(data []byte) error {
	var raw struct {
		AmountCents json.Number `json:"amount_cents"`
		Currency    string      `json:"currency"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "money_malformed")
	}
	f, err := raw.AmountCents.Float64()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "money_amount_not_integer")
	}
	parsed, err := CentsFromFloat(f, raw.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
