// Package types defines the primitive value types shared across the
// dispute registry: content hashes, account addresses, the Claim record,
// and the audit event shapes emitted by the registry.
//
// # Claim
//
// A Claim is an economically backed assertion identified by a content
// hash. It is immutable after creation except for:
//
//	1. Bond    - escrowed funds, set to zero exactly once
//	2. Slashed - one-way flag, set before the deadline only
//	3. Finalized - one-way flag, set after the deadline only
//
// The registry package is the only writer of these fields. A slashed
// claim may still be marked finalized later as a bookkeeping no-op; its
// bond is already zero at that point.
//
// # Events
//
// Four event shapes form the audit surface:
//
//	SubmissionEvent {ID, Submitter, CertHash, VerifierRef, Bond, Deadline}
//	ChallengeEvent  {ID, Challenger}            (every challenge)
//	SlashEvent      {ID, Challenger, Reward}    (successful challenge only)
//	FinalizeEvent   {ID}
//
// plus a WithdrawEvent {ID, Submitter, Amount} so a journal replay can
// reconstruct the full bond lifecycle.
//
// # Canonical JSON
//
// CanonicalJSON produces a deterministic encoding (lexicographically
// sorted keys, compact separators) used for content hashing of
// certificates and event payloads.
package types
