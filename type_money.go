package finasync

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency findings are written in.
const DefaultCurrency = "USD"

// Money represents a monetary value.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

func M[T float64 | int | int64 | decimal.Decimal](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: currency}
}

// USD is a shortcut for dollar amounts.
func USD[T float64 | int | int64 | decimal.Decimal](value T) Money { return M(value, DefaultCurrency) }

func newDecimal[T float64 | int | int64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	default:
		panic("unsupported type")
	}
}

// currency returns the money's currency
func (m Money) currency() money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, m.cur).Currency()
}

// String returns the string representation of the money value, e.g. "$1,234.50".
func (m Money) String() string {
	cur := m.currency()
	dec := m.value.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}

func (m Money) Currency() string         { return m.cur }
func (m Money) Decimal() decimal.Decimal { return m.value }
func (m Money) IsZero() bool             { return m.value.IsZero() }
func (m Money) IsNegative() bool         { return m.value.IsNegative() }
func (m Money) Equal(n Money) bool       { return m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) Abs() Money               { return Money{value: m.value.Abs(), cur: m.cur} }

// binary operators.
func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: cur(m, n)} }
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value), cur: cur(m, n)} }

// Mul multiplies by a quantity, as in shares times price.
func (m Money) Mul(q decimal.Decimal) Money { return Money{value: m.value.Mul(q), cur: m.cur} }

// makes the "" currency totally weak.
func cur(A, B Money) string {
	if A.cur == "" {
		return B.cur
	}
	if B.cur == "" {
		return A.cur
	}
	if A.cur != B.cur {
		panic("currency mismatch" + A.cur + "!=" + B.cur)
	}
	return A.cur
}

// ParseAmount parses a human written amount such as "$1,234.50", "-12.3",
// "(45.00)" or the European "3,50 €".
//
// A single comma followed by exactly three digits is a thousand separator,
// otherwise a lone comma is the decimal separator. When both commas and dots
// are present, the last one is the decimal separator.
func ParseAmount(s string) (decimal.Decimal, error) {
	raw := s
	s = strings.TrimSpace(s)
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	// keep only digits, separators and signs.
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',':
			b.WriteRune(r)
		case r == '-' || r == '−':
			neg = !neg
		}
	}
	s = b.String()
	if s == "" {
		return decimal.Zero, fmt.Errorf("invalid amount %q", raw)
	}

	lastComma, lastDot := strings.LastIndex(s, ","), strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 && len(s)-lastComma-1 != 3 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}

var (
	totalRe  = regexp.MustCompile(`(?im)\btotal\b[^:\n]*:[ \t]*([^\n]+)`)
	amountRe = regexp.MustCompile(`\(?[-−]?[ \t]*[$€£]?[ \t]*[-−]?\d[\d,.]*\)?`)
)

// FormatTotal returns the first line of a summary, the one ParseTotal reads back.
func FormatTotal(m Money) string {
	return "Total: " + m.String()
}

// ParseTotal returns the amount of the first "Total: <amount>" line of a
// summary, "Total spend: $1,200.00 (12 items)" reads as 1200. It reports false
// when the summary has no such line.
func ParseTotal(summary string) (decimal.Decimal, bool) {
	for _, m := range totalRe.FindAllStringSubmatch(summary, -1) {
		field := amountRe.FindString(m[1])
		field = strings.TrimRight(field, ".,")
		if field == "" {
			continue
		}
		if d, err := ParseAmount(field); err == nil {
			return d, true
		}
	}
	return decimal.Zero, false
}
