package treasury

import (
	"errors"
	"sync"

	"github.com/aletheialabs/aletheia/types"
)

// Errors
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrEmptyAddress      = errors.New("empty address")
)

// Treasury moves funds between addresses. Transfer is all-or-nothing.
type Treasury interface {
	// Transfer moves amount from one address to another, failing with
	// ErrInsufficientFunds if the source balance is too low.
	Transfer(from, to types.Address, amount uint64) error

	// Balance returns the current balance of an address
	Balance(addr types.Address) uint64

	// Credit mints amount into an address. Used to fund accounts at
	// deployment and in tests; the registry itself never credits.
	Credit(addr types.Address, amount uint64) error
}

// Ledger is an in-memory treasury
type Ledger struct {
	mu       sync.Mutex
	balances map[types.Address]uint64
}

// NewLedger creates an empty in-memory ledger
func NewLedger() *Ledger {
	return &Ledger{balances: make(map[types.Address]uint64)}
}

// Transfer implements Treasury
func (l *Ledger) Transfer(from, to types.Address, amount uint64) error {
	if types.IsAddressEmpty(from) || types.IsAddressEmpty(to) {
		return ErrEmptyAddress
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.balances[from] < amount {
		return ErrInsufficientFunds
	}
	l.balances[from] -= amount
	l.balances[to] += amount
	return nil
}

// Balance implements Treasury
func (l *Ledger) Balance(addr types.Address) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[addr]
}

// Credit implements Treasury
func (l *Ledger) Credit(addr types.Address, amount uint64) error {
	if types.IsAddressEmpty(addr) {
		return ErrEmptyAddress
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[addr] += amount
	return nil
}

var _ Treasury = (*Ledger)(nil)
