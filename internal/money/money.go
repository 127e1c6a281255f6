package money

import (
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an exact decimal amount in currency major units with a fixed
// scale of 2. All monetary arithmetic in the engine goes through this type;
// float64 never touches a stored amount.
type Money struct {
	d decimal.Decimal
}

var ErrInvalidAmount = errors.New("invalid_amount")

// Zero is the canonical 0.00 amount.
var Zero = Money{d: decimal.Zero}

// New builds an amount from major and minor units, e.g. New(12, 50) == 12.50.
func New(units int64, cents int64) Money {
	total := decimal.NewFromInt(units).Shift(2).Add(decimal.NewFromInt(cents))
	return Money{d: total.Shift(-2)}
}

// FromDecimal rounds an arbitrary decimal into a Money at scale 2, half-up.
func FromDecimal(d decimal.Decimal) Money {
	return Money{d: d}.round2()
}

// FromString parses a decimal string such as "12.50".
func FromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return Money{d: d}.round2(), nil
}

// MustParse is FromString for trusted literals; it panics on bad input.
func MustParse(s string) Money {
	m, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) round2() Money {
	// decimal.Round is round-half-away-from-zero, which matches the
	// half-up policy for the non-negative amounts this engine handles.
	return Money{d: m.d.Round(2)}
}

// Round2 rounds to 2 decimal places, half-up.
func Round2(d decimal.Decimal) Money {
	return Money{d: d}.round2()
}

// Add returns m + other rounded to scale 2.
func (m Money) Add(other Money) Money {
	return Money{d: m.d.Add(other.d)}.round2()
}

// Sub returns m - other rounded to scale 2.
func (m Money) Sub(other Money) Money {
	return Money{d: m.d.Sub(other.d)}.round2()
}

// MulScalar multiplies by an unrounded decimal scalar (a VAT rate, a
// quantity) and rounds the product once at the monetary boundary.
func (m Money) MulScalar(scalar decimal.Decimal) Money {
	return Money{d: m.d.Mul(scalar)}.round2()
}

// Div divides by an unrounded decimal scalar and rounds the quotient.
func (m Money) Div(divisor decimal.Decimal) (Money, error) {
	if divisor.IsZero() {
		return Zero, ErrInvalidAmount
	}
	return Money{d: m.d.DivRound(divisor, 2)}, nil
}

// Sum folds amounts without intermediate rounding and rounds the final
// total once, so the result is independent of summation order.
func Sum(amounts ...Money) Money {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a.d)
	}
	return Money{d: total}.round2()
}

// Cmp returns -1, 0 or 1.
func (m Money) Cmp(other Money) int {
	return m.d.Cmp(other.d)
}

// IsZero reports whether the amount is exactly 0.00.
func (m Money) IsZero() bool {
	return m.d.IsZero()
}

// WithinMinorUnit reports whether two amounts differ by at most one cent,
// the tolerance reconciliation grants for rounding slack.
func WithinMinorUnit(a, b Money) bool {
	diff := a.d.Sub(b.d).Abs()
	return diff.Cmp(decimal.New(1, -2)) <= 0
}

// Decimal exposes the underlying decimal for read-only consumers.
func (m Money) Decimal() decimal.Decimal {
	return m.d
}

// Float64 is for presentation only, never for arithmetic.
func (m Money) Float64() float64 {
	f, _ := m.d.Float64()
	return f
}

// String renders with exactly two decimal places.
func (m Money) String() string {
	return m.d.StringFixed(2)
}

// MarshalJSON renders the amount as a JSON string, e.g. "12.50".
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts either a quoted or bare decimal literal.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := FromString(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value stores the amount as its fixed-point string form.
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

// Scan accepts string, []byte, int64 (whole units) and float-free forms.
func (m *Money) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*m = Zero
		return nil
	case string:
		parsed, err := FromString(v)
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	case []byte:
		parsed, err := FromString(string(v))
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	case int64:
		*m = Money{d: decimal.NewFromInt(v)}.round2()
		return nil
	case float64:
		*m = Money{d: decimal.NewFromFloat(v)}.round2()
		return nil
	default:
		return fmt.Errorf("%w: unsupported source %T", ErrInvalidAmount, value)
	}
}
