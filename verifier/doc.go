// Package verifier implements the pluggable correctness checks that
// adjudicate challenges against a claim.
//
// # Contract
//
// A Verifier is a pure decision function over a submitted evidence pair:
//
//	Violates(input, output []byte) bool
//
// It must be deterministic, side-effect free, retain no state between
// calls, and be safe against adversarial bytes: malformed data must never
// panic the caller. Malformed output is treated as evidence of violation
// (the claimed result is not even well formed); malformed input is
// rejected (returns false), so a challenger cannot slash a claim with
// garbage of its own invention.
//
// # Domains
//
// Sort checks sorting correctness over sequences of big-endian uint64:
// length preservation, non-decreasing order, and an order-sensitive
// sequential chain digest comparing the sorted input with the output:
//
//	acc_0 = 0^32
//	acc_{i+1} = SHA256(acc_i || SHA256(elem_i))
//
// The chain digest is a cost-driven heuristic, NOT a permutation proof:
// it is order sensitive, so it only certifies multiset equality in
// combination with the sortedness check. A colliding final digest from a
// different starting sequence is not ruled out by digest comparison
// alone. It is preserved here exactly as specified; do not "fix" it into
// an order-independent multiset digest without flagging the behavioral
// change.
//
// Dot checks numerical stability of a dot product against a compensated
// summation baseline with relative tolerance 1e-6.
//
// # Registry
//
// Claims carry a verifier reference string. Registry maps those
// references to Verifier instances; new domains are added by registering
// another implementation of the same two-argument contract.
package verifier
