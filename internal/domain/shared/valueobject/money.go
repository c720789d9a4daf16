package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency represents a currency code (ISO 4217)
type Currency string

// EUR is the only settlement currency.
const EUR Currency = "EUR"

// DefaultCurrency is the default currency for the system
const DefaultCurrency = EUR

// MoneyPlaces is the number of decimal places monetary amounts are stored with.
const MoneyPlaces int32 = 2

// PriceTolerance is the largest absolute difference between a declared and a
// recomputed amount that is still accepted as equal.
var PriceTolerance = decimal.RequireFromString("0.01")

// Money is a value object representing monetary amounts.
// It is immutable - all operations return new Money instances.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates Money in the default currency.
func NewMoney(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: DefaultCurrency}
}

// NewMoneyFromString creates Money from a string representation
func NewMoneyFromString(amount string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return NewMoney(d), nil
}

// Zero returns a zero-value Money in the default currency
func Zero() Money {
	return NewMoney(decimal.Zero)
}

func (m Money) Amount() decimal.Decimal { return m.amount }

func (m Money) Currency() Currency {
	if m.currency == "" {
		return DefaultCurrency
	}
	return m.currency
}

func (m Money) IsZero() bool     { return m.amount.IsZero() }
func (m Money) IsNegative() bool { return m.amount.IsNegative() }

// Add returns a new Money with the sum of both amounts
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount), currency: m.Currency()}
}

// Subtract returns a new Money with the difference
func (m Money) Subtract(other Money) Money {
	return Money{amount: m.amount.Sub(other.amount), currency: m.Currency()}
}

// Multiply returns a new Money multiplied by the given factor
func (m Money) Multiply(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor), currency: m.Currency()}
}

// MultiplyByInt returns a new Money multiplied by an integer
func (m Money) MultiplyByInt(factor int64) Money {
	return m.Multiply(decimal.NewFromInt(factor))
}

// Percentage returns rate percent of m, e.g. Percentage(21) of 100 is 21.
func (m Money) Percentage(rate decimal.Decimal) Money {
	return m.Multiply(rate.Div(decimal.NewFromInt(100)))
}

// WithPercentage returns m increased by rate percent.
func (m Money) WithPercentage(rate decimal.Decimal) Money {
	return m.Multiply(decimal.NewFromInt(1).Add(rate.Div(decimal.NewFromInt(100))))
}

// Round returns a new Money rounded half away from zero
func (m Money) Round(places int32) Money {
	return Money{amount: m.amount.Round(places), currency: m.Currency()}
}

// RoundBank returns a new Money with banker's rounding (half to even)
func (m Money) RoundBank(places int32) Money {
	return Money{amount: m.amount.RoundBank(places), currency: m.Currency()}
}

// Rounded is RoundBank at MoneyPlaces.
func (m Money) Rounded() Money {
	return m.RoundBank(MoneyPlaces)
}

// Equals returns true if both Money values are equal (same amount and currency)
func (m Money) Equals(other Money) bool {
	return m.Currency() == other.Currency() && m.amount.Equal(other.amount)
}

// DiffersBy reports whether |m - other| is strictly greater than tolerance.
func (m Money) DiffersBy(other Money, tolerance decimal.Decimal) bool {
	return m.amount.Sub(other.amount).Abs().GreaterThan(tolerance)
}

// DiffersFrom applies PriceTolerance.
func (m Money) DiffersFrom(other Money) bool {
	return m.DiffersBy(other, PriceTolerance)
}

func (m Money) GreaterThanOrEqual(other Money) bool {
	return m.amount.GreaterThanOrEqual(other.amount)
}

// Max returns the larger of m and other.
func (m Money) Max(other Money) Money {
	if other.amount.GreaterThan(m.amount) {
		return other
	}
	return m
}

// String returns a string representation of the Money
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(MoneyPlaces), m.Currency())
}

// StringFixed returns the amount as a string with fixed decimal places
func (m Money) StringFixed(places int32) string {
	return m.amount.StringFixed(places)
}

// MarshalJSON encodes the amount as a fixed two-decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency"`
	}{
		Amount:   m.amount.StringFixed(MoneyPlaces),
		Currency: m.Currency(),
	})
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var v struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(v.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	if v.Currency != "" && v.Currency != DefaultCurrency {
		return fmt.Errorf("unsupported currency %q", v.Currency)
	}
	m.amount = amount
	m.currency = DefaultCurrency
	return nil
}

// Value implements driver.Valuer (amount only)
func (m Money) Value() (driver.Value, error) {
	return m.amount.StringFixed(MoneyPlaces), nil
}

// Scan implements sql.Scanner
func (m *Money) Scan(value any) error {
	m.currency = DefaultCurrency
	if value == nil {
		m.amount = decimal.Zero
		return nil
	}
	var strVal string
	switch v := value.(type) {
	case string:
		strVal = v
	case []byte:
		strVal = string(v)
	case float64:
		m.amount = decimal.NewFromFloat(v)
		return nil
	case int64:
		m.amount = decimal.NewFromInt(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Money", value)
	}
	amount, err := decimal.NewFromString(strVal)
	if err != nil {
		return fmt.Errorf("invalid decimal value: %w", err)
	}
	m.amount = amount
	return nil
}
