package falsify

import (
	"math/rand"

	"github.com/aletheialabs/aletheia/verifier"
)

// Built-in implementation names
const (
	ImplBuggyQuicksort = "buggy_quicksort"
	ImplQuicksort3     = "quicksort3"
	ImplDotNaive       = "dot_naive"
	ImplDotKahan       = "dot_kahan"
)

// BuggyQuicksort is a quicksort that partitions into strictly-less and
// strictly-greater halves, silently dropping every duplicate of the
// pivot except one. It exists to be caught: any duplicate-heavy input
// produces an output of the wrong length.
func BuggyQuicksort(_ *rand.Rand, input []byte) ([]byte, error) {
	a, err := verifier.DecodeUints(input)
	if err != nil {
		return nil, err
	}
	return verifier.EncodeUints(buggyQuicksort(a)), nil
}

func buggyQuicksort(a []uint64) []uint64 {
	if len(a) <= 1 {
		out := make([]uint64, len(a))
		copy(out, a)
		return out
	}
	pivot := a[len(a)/2]
	var left, right []uint64
	for _, x := range a {
		switch {
		case x < pivot:
			left = append(left, x)
		case x > pivot:
			right = append(right, x)
		}
	}
	out := buggyQuicksort(left)
	out = append(out, pivot)
	return append(out, buggyQuicksort(right)...)
}

// Quicksort3 is a three-way partition quicksort. Pivot-equal elements
// go to their own partition, so duplicates survive.
func Quicksort3(_ *rand.Rand, input []byte) ([]byte, error) {
	a, err := verifier.DecodeUints(input)
	if err != nil {
		return nil, err
	}
	return verifier.EncodeUints(quicksort3(a)), nil
}

func quicksort3(a []uint64) []uint64 {
	if len(a) <= 1 {
		out := make([]uint64, len(a))
		copy(out, a)
		return out
	}
	pivot := a[len(a)/2]
	var lt, eq, gt []uint64
	for _, x := range a {
		switch {
		case x < pivot:
			lt = append(lt, x)
		case x == pivot:
			eq = append(eq, x)
		default:
			gt = append(gt, x)
		}
	}
	out := quicksort3(lt)
	out = append(out, eq...)
	return append(out, quicksort3(gt)...)
}

// DotNaive accumulates the dot product left to right with no error
// compensation. Under heavy magnitude mixing it drifts past the
// oracle's relative tolerance.
func DotNaive(_ *rand.Rand, input []byte) ([]byte, error) {
	x, y, err := verifier.DecodeFloatPairs(input)
	if err != nil {
		return nil, err
	}
	var s float64
	for i := range x {
		s += x[i] * y[i]
	}
	return verifier.EncodeFloat(s), nil
}

// DotKahan accumulates the dot product with Kahan compensation
func DotKahan(_ *rand.Rand, input []byte) ([]byte, error) {
	x, y, err := verifier.DecodeFloatPairs(input)
	if err != nil {
		return nil, err
	}
	var s, c float64
	for i := range x {
		prod := x[i] * y[i]
		yk := prod - c
		t := s + yk
		c = (t - s) - yk
		s = t
	}
	return verifier.EncodeFloat(s), nil
}
