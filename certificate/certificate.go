package certificate

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aletheialabs/aletheia/types"
)

// Version is the certificate format version
const Version = "1.0"

// Errors
var (
	ErrBadVersion = errors.New("unsupported certificate version")
	ErrNoClaims   = errors.New("certificate carries no claims")
)

// Domain describes the input space a claim was tested over
type Domain struct {
	Name   string                 `json:"name"`
	Params map[string]interface{} `json:"params"`
}

// Power is the statistical budget a claim was tested at
type Power struct {
	Alpha  float64 `json:"alpha"`
	Trials int     `json:"trials"`
}

// Results summarizes one claim's falsification campaign
type Results struct {
	Failures  int    `json:"failures"`
	TrialsRun int    `json:"trialsRun"`
	// Upper95FailureProb is the rule-of-three bound 3/n, present only
	// when zero failures were observed.
	Upper95FailureProb *float64 `json:"upper95FailureProb"`
	// RNGCommit binds the campaign to its seed derivation so trials
	// can be replayed bit-for-bit.
	RNGCommit string `json:"rngCommit"`
	// DurationSec is wall-clock campaign duration
	DurationSec float64 `json:"durationSec"`
}

// ClaimRecord is one tested proposition inside a certificate
type ClaimRecord struct {
	ID          string  `json:"id"`
	Proposition string  `json:"proposition"`
	Domain      Domain  `json:"domain"`
	Adversary   string  `json:"adversary"`
	Oracle      string  `json:"oracle"`
	Power       Power   `json:"power"`
	Results     Results `json:"results"`
}

// ProofArtifact references an external formal artifact backing a claim
type ProofArtifact struct {
	Kind string `json:"kind"`
	URI  string `json:"uri"`
	Hash string `json:"hash,omitempty"`
}

// BeliefCertificate is the evidence summary a bond is escrowed against
type BeliefCertificate struct {
	CertVersion string          `json:"certVersion"`
	ProgramHash string          `json:"programHash"`
	Machine     string          `json:"machine"`
	CreatedAt   int64           `json:"createdAt"`
	Claims      []ClaimRecord   `json:"claims"`
	Proofs      []ProofArtifact `json:"proofs"`
}

// ValidateBasic performs basic validation of the certificate
func (c *BeliefCertificate) ValidateBasic() error {
	if c.CertVersion != Version {
		return fmt.Errorf("%w: %q", ErrBadVersion, c.CertVersion)
	}
	if len(c.Claims) == 0 {
		return ErrNoClaims
	}
	return nil
}

// Hash computes the certificate's canonical content hash. The JSON is
// re-encoded with sorted keys first, so the hash is independent of field
// order and whitespace in any particular serialization.
func (c *BeliefCertificate) Hash() (types.Hash, error) {
	return types.CanonicalHash(c)
}

// HashString returns the canonical hash in 0x-prefixed hex
func (c *BeliefCertificate) HashString() (string, error) {
	h, err := c.Hash()
	if err != nil {
		return "", err
	}
	return types.HashString(h), nil
}

// Save writes the certificate as indented JSON, atomically via a temp
// file in the same directory. Returns the path written.
func Save(cert *BeliefCertificate, path string) (string, error) {
	data, err := json.MarshalIndent(cert, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode certificate: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(dir, "cert-*.json")
	if err != nil {
		return "", err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return path, nil
}

// Load reads and validates a certificate file
func Load(path string) (*BeliefCertificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cert BeliefCertificate
	if err := json.Unmarshal(data, &cert); err != nil {
		return nil, fmt.Errorf("failed to decode certificate: %w", err)
	}
	if err := cert.ValidateBasic(); err != nil {
		return nil, err
	}
	return &cert, nil
}

// FileDigest returns the 0x-prefixed sha256 of the raw file bytes. This
// covers the exact serialization on disk, unlike the canonical hash.
func FileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("0x%x", h.Sum(nil)), nil
}
