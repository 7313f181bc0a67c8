package money

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Zero is the zero amount.
var Zero = decimal.Zero

// ParseLenient parses an amount that may carry display formatting
// (currency symbols, thousands separators, surrounding whitespace).
// Returns false when nothing numeric can be recovered.
// "₦20,000.50" → 20000.50, "1 500" → 1500.
func ParseLenient(s string) (decimal.Decimal, bool) {
	cleaned := stripFormatting(s)
	if cleaned == "" || cleaned == "-" || cleaned == "." {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseAny coerces a decoded JSON value into a decimal. Accepts numbers,
// json.Number and numeric strings (with or without formatting).
// Returns false for nil and for values with no numeric content.
func ParseAny(v interface{}) (decimal.Decimal, bool) {
	switch val := v.(type) {
	case nil:
		return decimal.Zero, false
	case float64:
		return decimal.NewFromFloat(val), true
	case int:
		return decimal.NewFromInt(int64(val)), true
	case int64:
		return decimal.NewFromInt(val), true
	case json.Number:
		d, err := decimal.NewFromString(val.String())
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case string:
		return ParseLenient(val)
	default:
		return decimal.Zero, false
	}
}

// WithinEpsilon reports whether a and b differ by at most eps.
func WithinEpsilon(a, b, eps decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(eps)
}

// stripFormatting drops everything except digits, the decimal point and a
// leading minus sign. A minus anywhere before the first digit counts as the
// sign; minus signs after that are formatting noise and are dropped.
func stripFormatting(s string) string {
	var b strings.Builder
	seenDigit := false
	seenDot := false
	negative := false

	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			seenDigit = true
			b.WriteRune(r)
		case r == '.' && !seenDot:
			seenDot = true
			b.WriteRune(r)
		case (r == '-' || r == '−') && !seenDigit && !negative:
			negative = true
		}
	}

	if b.Len() == 0 {
		return ""
	}
	if negative {
		return "-" + b.String()
	}
	return b.String()
}
