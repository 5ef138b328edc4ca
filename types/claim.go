package types

import (
	"errors"
	"time"
)

// Errors
var (
	ErrEmptySubmitter   = errors.New("claim has no submitter")
	ErrEmptyVerifierRef = errors.New("claim has no verifier reference")
	ErrEmptyCertHash    = errors.New("claim has empty certificate hash")
)

// Claim is one economically backed assertion pending dispute. One record
// exists per submission; records persist for audit after the bond has
// been paid out, holding no further economic value.
type Claim struct {
	// ID is unique, monotonically assigned, never reused.
	ID uint64 `json:"id"`

	// Submitter is entitled to withdraw the bond on success.
	Submitter Address `json:"submitter"`

	// VerifierRef names the verifier that adjudicates this claim's domain.
	VerifierRef string `json:"verifier_ref"`

	// CertHash is the content commitment to the claim's evidence.
	CertHash Hash `json:"cert_hash"`

	// Bond is the amount currently escrowed. It transitions monotonically
	// from its initial value to zero and is never paid out twice.
	Bond uint64 `json:"bond"`

	// Deadline is the absolute time after which no challenge is accepted.
	Deadline time.Time `json:"deadline"`

	// Finalized is a one-way flag, settable only at or after Deadline.
	Finalized bool `json:"finalized"`

	// Slashed is a one-way flag, settable only before Deadline.
	Slashed bool `json:"slashed"`
}

// ValidateBasic checks the fields that must be set at submission time
func (c *Claim) ValidateBasic() error {
	if IsAddressEmpty(c.Submitter) {
		return ErrEmptySubmitter
	}
	if c.VerifierRef == "" {
		return ErrEmptyVerifierRef
	}
	if IsHashEmpty(&c.CertHash) {
		return ErrEmptyCertHash
	}
	return nil
}

// Clone returns a deep copy of the claim
func (c *Claim) Clone() *Claim {
	cp := *c
	if c.CertHash.Data != nil {
		cp.CertHash = MustNewHash(c.CertHash.Data)
	}
	return &cp
}

// Disputable reports whether a challenge may still mutate the claim
func (c *Claim) Disputable(now time.Time) bool {
	return now.Before(c.Deadline) && !c.Finalized && !c.Slashed
}
