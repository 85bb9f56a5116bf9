// Package transform cleans a single raw extraction record into a
// unit-consistent period record: field coercion, magnitude-based unit
// normalization, company-name canonicalization, and derived-ratio fallback.
package transform

import (
	"math"
	"strconv"
	"strings"

	"findash/pkg/core/extract"
)

// Coerce resolves a raw field to a plain number. Total over all four field
// kinds: missing resolves to def, text is stripped of currency/percent
// decoration and parsed, unparsable text resolves to def. Never returns NaN
// or Inf.
func Coerce(f extract.RawField, def float64) float64 {
	switch f.Kind {
	case extract.FieldNumber, extract.FieldWrapped:
		return f.Number
	case extract.FieldText:
		cleaned := stripNonNumeric(f.Text)
		v, err := strconv.ParseFloat(cleaned, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return def
		}
		return v
	default:
		return def
	}
}

// stripNonNumeric keeps only digits, '.', and '-'. "SAR 8,713.7M" -> "8713.7".
func stripNonNumeric(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
