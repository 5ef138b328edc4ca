// Package registry implements the claim lifecycle state machine and
// bond custody of the dispute protocol.
//
// # Lifecycle
//
//	Open -> {Challenged-Slashed, Finalized}
//
// A party submits a claim backed by an economic bond; any observer may
// challenge it within the window by presenting an (input, output) pair;
// the claim's verifier decides whether the pair proves the claim false.
// A successful challenge slashes the bond to the challenger. An
// unchallenged claim becomes finalizable after its deadline, and its
// bond reclaimable by the submitter. First valid challenge wins; there
// is no partial or repeated slashing.
//
// # Operations
//
//	Submit(submitter, certHash, verifierRef, bond) (id, error)
//	Challenge(challenger, id, input, output) (slashed, error)
//	Finalize(id) error
//	Withdraw(caller, id) (amount, error)
//
// All four take the registry mutex, reproducing the single global
// sequential ordering of the hosting environment: no two mutations on
// the same claim are ever applied concurrently.
//
// # Atomicity
//
// Each operation is a transaction. State effects are applied before the
// external fund transfer (flags flipped, bond zeroed, record persisted),
// and a failed transfer triggers a compensating restore of the prior
// record, so a claim is never left half-slashed and a bond is never
// zeroed without payment. A failed operation returns one of the
// sentinel errors in errors.go and leaves every balance and record as
// it found them.
//
// # Time
//
// Deadlines are wall-clock comparisons against an injected clock.Clock;
// tests drive the window with a mock clock.
package registry
