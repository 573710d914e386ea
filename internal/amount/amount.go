// Package amount turns spreadsheet cells into numbers.
//
// Cells come from hand-maintained workbooks: thousands separators, currency
// suffixes, French decimal commas and plain garbage all occur. A cell that
// cannot be read as a number is worth zero; aggregates stay total instead of
// failing on one bad cell.
package amount

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Parse returns the numeric value of s, or 0 when s is not a number.
func Parse(s string) float64 {
	d, ok := ParseDecimal(s)
	if !ok {
		return 0
	}

	return d.InexactFloat64()
}

// ParseDecimal reports whether s could be read as a number.
// Format examples: "1 234,56 €" -> 1234.56, "1.234,56" -> 1234.56,
// "1,234.56" -> 1234.56, "-588,74" -> -588.74, "12.5" -> 12.5.
func ParseDecimal(s string) (decimal.Decimal, bool) {
	clean := normalize(s)
	if clean == "" {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, false
	}

	return d, true
}

func normalize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "EUR")
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f', '€', '\'':
			return -1
		}

		return r
	}, s)

	dot := strings.LastIndex(s, ".")
	comma := strings.LastIndex(s, ",")

	switch {
	case dot >= 0 && comma >= 0:
		// The separator that comes last is the decimal one.
		if comma > dot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma >= 0:
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	return s
}

// Cents rounds v to the cent, as used for equality between amounts.
func Cents(v float64) int64 {
	return decimal.NewFromFloat(v).Mul(hundred).Round(0).IntPart()
}

// Format renders v with two decimals, a space thousands separator and a
// decimal comma: 1234.5 -> "1 234,50".
func Format(v float64) string {
	s := decimal.NewFromFloat(v).StringFixed(2)

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg && strings.Trim(intPart+frac, "0") != "" {
		b.WriteByte('-')
	}

	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(' ')
		}

		b.WriteRune(r)
	}

	b.WriteByte(',')
	b.WriteString(frac)

	return b.String()
}
