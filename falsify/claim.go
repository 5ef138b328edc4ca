package falsify

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aletheialabs/aletheia/verifier"
)

// Claim definition errors
var (
	ErrEmptyClaimID = errors.New("claim id must be set")
	ErrNoAdversary  = errors.New("claim names no adversary generator")
	ErrNoOracle     = errors.New("claim names no oracle")
	ErrNoImpl       = errors.New("claim names no implementation")
)

// Default trial budget and test power
const (
	DefaultTrials = 10000
	DefaultAlpha  = 0.05
)

// ClaimDef defines one falsifiable proposition: which generator attacks
// it, which oracle judges it, which implementation defends it, and at
// what statistical power. Claim files are YAML lists of these.
type ClaimDef struct {
	ID          string `json:"id" yaml:"id"`
	Proposition string `json:"proposition" yaml:"proposition"`

	// Domain names the input space for the certificate record
	Domain string `json:"domain" yaml:"domain"`

	// Adversary is the generator name; Oracle is the verifier reference
	Adversary string `json:"adversary" yaml:"adversary"`
	Oracle    string `json:"oracle" yaml:"oracle"`

	// Impl is the implementation the campaign defends
	Impl string `json:"impl" yaml:"impl"`

	Alpha  float64 `json:"alpha" yaml:"alpha"`
	Trials int     `json:"trials" yaml:"trials"`

	// Exhaustive runs the full trial budget even after a failure.
	// Default is to stop at the first counterexample.
	Exhaustive bool `json:"exhaustive" yaml:"exhaustive"`

	Params GenParams `json:"params" yaml:"params"`
}

// Normalize fills zero fields with defaults
func (c *ClaimDef) Normalize() {
	if c.Alpha == 0 {
		c.Alpha = DefaultAlpha
	}
	if c.Trials == 0 {
		c.Trials = DefaultTrials
	}
}

// ValidateBasic performs basic validation of the claim definition
func (c *ClaimDef) ValidateBasic() error {
	if c.ID == "" {
		return ErrEmptyClaimID
	}
	if c.Adversary == "" {
		return fmt.Errorf("%w: %s", ErrNoAdversary, c.ID)
	}
	if c.Oracle == "" {
		return fmt.Errorf("%w: %s", ErrNoOracle, c.ID)
	}
	if c.Impl == "" {
		return fmt.Errorf("%w: %s", ErrNoImpl, c.ID)
	}
	return nil
}

// LoadClaims reads a YAML claim file: a list of claim definitions
func LoadClaims(path string) ([]ClaimDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var claims []ClaimDef
	if err := yaml.Unmarshal(data, &claims); err != nil {
		return nil, fmt.Errorf("failed to parse claim file %s: %w", path, err)
	}
	for i := range claims {
		claims[i].Normalize()
		if err := claims[i].ValidateBasic(); err != nil {
			return nil, err
		}
	}
	return claims, nil
}

// DemoClaims returns the built-in demonstration claims: a correctness
// claim for the three-way quicksort over duplicate-heavy arrays, and a
// precision claim for the Kahan dot product under magnitude mixing.
func DemoClaims(trials int) []ClaimDef {
	if trials == 0 {
		trials = DefaultTrials
	}
	return []ClaimDef{
		{
			ID:          "SortsCorrect@quicksort3",
			Proposition: "quicksort3 sorts correctly on small duplicate-heavy arrays",
			Domain:      "int_array",
			Adversary:   GenDupHeavy,
			Oracle:      verifier.RefSort,
			Impl:        ImplQuicksort3,
			Alpha:       DefaultAlpha,
			Trials:      trials,
			Params:      GenParams{NMax: 12, ValueMax: 9},
		},
		{
			ID:          "DotKahanCorrect@floatmix",
			Proposition: "kahan dot stays within 1e-6 relative error under magnitude mixing",
			Domain:      "float_dot",
			Adversary:   GenFloatDot,
			Oracle:      verifier.RefDot,
			Impl:        ImplDotKahan,
			Alpha:       DefaultAlpha,
			Trials:      trials,
			Params:      GenParams{NMin: 64, NMax: 1024, Hi: 1e16, Lo: 1e-16},
		},
	}
}
