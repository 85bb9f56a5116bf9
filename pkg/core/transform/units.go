package transform

import "math"

// rawUnitThreshold separates "already in millions" from "raw currency units".
// Extraction output carries no unit metadata, so magnitude is the only signal:
// no company in scope reports six-digit millions, while raw-unit figures are
// always far above it. A known source of error for values near the boundary.
const rawUnitThreshold = 100000

// ToMillions rescales a monetary figure to millions of currency units.
// Values whose magnitude exceeds the threshold are assumed to be raw currency
// and divided by 1e6; everything else is assumed to already be in millions.
// Sign is preserved; zero stays zero.
func ToMillions(v float64) float64 {
	if v == 0 {
		return 0
	}
	if math.Abs(v) > rawUnitThreshold {
		return v / 1e6
	}
	return v
}
