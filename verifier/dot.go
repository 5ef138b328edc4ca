package verifier

import "math"

// RefDot is the registry reference for the dot-product stability domain
const RefDot = "dot/v1"

// DefaultDotTolerance is the relative error tolerance against the
// compensated-summation baseline.
const DefaultDotTolerance = 1e-6

// Dot checks numerical stability of a dot product: the claimed scalar
// must be finite and within a relative tolerance of a compensated
// (Neumaier) summation baseline over the same vectors.
type Dot struct {
	tol float64
}

// NewDot creates a dot-product verifier with the given relative tolerance
func NewDot(tol float64) *Dot {
	if tol <= 0 {
		tol = DefaultDotTolerance
	}
	return &Dot{tol: tol}
}

// Violates implements Verifier.
// Malformed input is rejected (false); malformed or non-finite output is
// a violation.
func (d *Dot) Violates(input, output []byte) bool {
	x, y, err := DecodeFloatPairs(input)
	if err != nil {
		return false
	}
	got, err := DecodeFloat(output)
	if err != nil {
		return true
	}
	if math.IsNaN(got) || math.IsInf(got, 0) {
		return true
	}

	baseline := CompensatedDot(x, y)
	return math.Abs(got-baseline) > d.tol*(1.0+math.Abs(baseline))
}

// CompensatedDot computes the dot product with Neumaier summation,
// tracking the low-order error term lost to rounding.
func CompensatedDot(x, y []float64) float64 {
	var sum, comp float64
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	for i := 0; i < n; i++ {
		prod := x[i] * y[i]
		t := sum + prod
		if math.Abs(sum) >= math.Abs(prod) {
			comp += (sum - t) + prod
		} else {
			comp += (prod - t) + sum
		}
		sum = t
	}
	return sum + comp
}

var _ Verifier = (*Dot)(nil)
