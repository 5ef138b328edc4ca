package registry

import (
	"errors"
	"time"

	"github.com/aletheialabs/aletheia/types"
)

// Config errors
var (
	ErrZeroMinBond = errors.New("minimum bond must be positive")
	ErrZeroWindow  = errors.New("challenge window must be positive")
	ErrEmptyEscrow = errors.New("escrow address must be set")
)

// Config holds registry configuration
type Config struct {
	// MinBond is the smallest bond accepted at submission
	MinBond uint64

	// Window is the challenge window; each claim's deadline is the
	// submission time plus Window.
	Window time.Duration

	// Escrow is the treasury address holding all bonded funds
	Escrow types.Address
}

// DefaultConfig returns a default configuration
func DefaultConfig() Config {
	return Config{
		MinBond: 1,
		Window:  24 * time.Hour,
		Escrow:  types.Address("@escrow"),
	}
}

// ValidateBasic performs basic validation of the config
func (cfg *Config) ValidateBasic() error {
	if cfg.MinBond == 0 {
		return ErrZeroMinBond
	}
	if cfg.Window <= 0 {
		return ErrZeroWindow
	}
	if types.IsAddressEmpty(cfg.Escrow) {
		return ErrEmptyEscrow
	}
	return nil
}
