package billing

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid BRL amount")

var hundred = decimal.NewFromInt(100)

// brlDigits accepts digits with optional thousands dots and one decimal comma.
var brlDigits = regexp.MustCompile(`^[0-9][0-9.]*(,[0-9]+)?$`)

// FormatBRL renders centavos the way Brazilian users read money: R$ 1.500,75.
func FormatBRL(minor int64) string {
	d := decimal.New(minor, -2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	fixed := d.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")
	return sign + "R$ " + groupThousands(intPart) + "," + frac
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// ParseBRL converts "R$ 1.500,75" (prefix and thousands separators optional)
// back to centavos. More than two decimal places is an error.
func ParseBRL(s string) (int64, error) {
	raw := strings.TrimSpace(strings.ReplaceAll(s, "\u00a0", " "))
	negative := strings.HasPrefix(raw, "-")
	raw = strings.TrimPrefix(raw, "-")
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "R$"))
	if !brlDigits.MatchString(raw) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	normalized := strings.ReplaceAll(raw, ".", "")
	normalized = strings.Replace(normalized, ",", ".", 1)
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	cents := d.Mul(hundred)
	if !cents.Equal(cents.Truncate(0)) {
		return 0, fmt.Errorf("%w: %q has more than two decimal places", ErrInvalidAmount, s)
	}
	if negative {
		cents = cents.Neg()
	}
	return cents.IntPart(), nil
}
