package money

// Amount keeps prices in whole currency units; the marketplace has no sub-unit currency.
type Amount = int64

const basisPointsPerPercent = 100

// NonNegative clamps negative inputs to zero.
func NonNegative(a Amount) Amount {
	if a < 0 {
		return 0
	}
	return a
}

// DivRound divides a by b rounding half up. Non-positive divisors yield zero.
func DivRound(a, b Amount) Amount {
	if b <= 0 || a <= 0 {
		return 0
	}
	return (2*a + b) / (2 * b)
}

// Percent returns pct percent of a rounded half up.
// The percentage is resolved to basis points first so identical inputs always
// produce identical results regardless of float representation.
func Percent(a Amount, pct float64) Amount {
	if a <= 0 || pct <= 0 {
		return 0
	}
	bp := roundFloat(pct * basisPointsPerPercent)
	const base = 100 * basisPointsPerPercent
	return (a*bp + base/2) / base
}

// ClampPercent bounds p to [lo, hi].
func ClampPercent(p, lo, hi float64) float64 {
	if p < lo {
		return lo
	}
	if p > hi {
		return hi
	}
	return p
}

func roundFloat(v float64) int64 {
	if v < 0 {
		return -int64(-v + 0.5)
	}
	return int64(v + 0.5)
}
