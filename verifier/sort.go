package verifier

import (
	"crypto/sha256"
	"sort"
)

// RefSort is the registry reference for the sorting domain
const RefSort = "sort/v1"

// Sort checks sorting correctness: the output must be a non-decreasing
// sequence of the same length as the input whose order-sensitive chain
// digest matches the input's.
type Sort struct{}

// NewSort creates a sorting-domain verifier
func NewSort() *Sort {
	return &Sort{}
}

// Violates implements Verifier.
// Malformed input is rejected (false); malformed output is a violation.
func (s *Sort) Violates(input, output []byte) bool {
	a, err := DecodeUints(input)
	if err != nil {
		return false
	}
	out, err := DecodeUints(output)
	if err != nil {
		return true
	}

	if len(out) != len(a) {
		return true
	}
	for i := 0; i+1 < len(out); i++ {
		if out[i] > out[i+1] {
			return true
		}
	}

	// Order-sensitive chain digest over the sorted input versus the
	// output. Heuristic, not a permutation proof: see the package
	// documentation before changing.
	sorted := make([]uint64, len(a))
	copy(sorted, a)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return ChainDigest(sorted) != ChainDigest(out)
}

// ChainDigest reduces a sequence to a single digest via a sequential
// hash chain: acc_0 = 0^32, acc_{i+1} = SHA256(acc_i || SHA256(elem_i)).
func ChainDigest(a []uint64) [32]byte {
	var acc [32]byte
	var buf [64]byte
	for _, v := range a {
		elem := sha256.Sum256(EncodeUints([]uint64{v}))
		copy(buf[:32], acc[:])
		copy(buf[32:], elem[:])
		acc = sha256.Sum256(buf[:])
	}
	return acc
}

var _ Verifier = (*Sort)(nil)
