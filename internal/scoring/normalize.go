package scoring

import "sort"

// bounds captures the min and max of one raw metric across the
// candidate set. All raw metrics must be collected before the first
// normalize call; min-max scaling is set-relative.
type bounds struct {
	min, max float64
}

func collectBounds(values []float64) bounds {
	b := bounds{}
	for i, v := range values {
		if i == 0 || v < b.min {
			b.min = v
		}
		if i == 0 || v > b.max {
			b.max = v
		}
	}
	return b
}

// degenerate reports a range with no discriminating signal.
func (b bounds) degenerate() bool {
	return b.max == b.min
}

// normalizeHigher scales a higher-is-better value into [0,1]. A
// degenerate range scores 1.0: no signal means every vendor ties best,
// not a divide-by-zero.
func normalizeHigher(v float64, b bounds) float64 {
	if b.degenerate() {
		return 1.0
	}
	return clamp01((v - b.min) / (b.max - b.min))
}

// normalizeLower scales a lower-is-better value (cost, time) into
// [0,1], inverted so the cheapest or fastest vendor scores 1.0.
func normalizeLower(v float64, b bounds) float64 {
	if b.degenerate() {
		return 1.0
	}
	return clamp01((b.max - v) / (b.max - b.min))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// winsorize caps extreme outliers at the given lower/upper percentiles
// of the input, returning a new slice. Used (when enabled) on cost,
// time, and capacity metrics ahead of normalization so a single wild
// quote does not crush everyone else's range.
func winsorize(values []float64, lowerPct, upperPct float64) []float64 {
	if len(values) == 0 {
		return nil
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	n := len(sorted)
	loIdx := int(lowerPct * float64(n))
	hiIdx := int(upperPct * float64(n))
	if hiIdx >= n {
		hiIdx = n - 1
	}
	lo := sorted[loIdx]
	hi := sorted[hiIdx]

	out := make([]float64, n)
	for i, v := range values {
		switch {
		case v < lo:
			out[i] = lo
		case v > hi:
			out[i] = hi
		default:
			out[i] = v
		}
	}
	return out
}
