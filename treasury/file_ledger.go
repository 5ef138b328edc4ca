package treasury

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/aletheialabs/aletheia/types"
)

const stateFilePerm = 0600

// FileLedger is a treasury whose balances are persisted to a JSON state
// file. Every mutation is written to a temp file and renamed into place,
// so a crash never leaves a torn state file.
type FileLedger struct {
	mu sync.Mutex

	stateFilePath string
	balances      map[types.Address]uint64
}

// fileLedgerState is the state file structure
type fileLedgerState struct {
	Balances map[types.Address]uint64 `json:"balances"`
}

// NewFileLedger creates a file-backed ledger, loading existing state if
// the file is present.
func NewFileLedger(stateFilePath string) (*FileLedger, error) {
	l := &FileLedger{
		stateFilePath: stateFilePath,
		balances:      make(map[types.Address]uint64),
	}
	if err := l.load(); err != nil {
		return nil, err
	}
	return l, nil
}

// load reads the state file, initializing empty state if it doesn't exist
func (l *FileLedger) load() error {
	data, err := os.ReadFile(l.stateFilePath)
	if os.IsNotExist(err) {
		return l.save()
	}
	if err != nil {
		return fmt.Errorf("failed to read ledger state: %w", err)
	}

	var state fileLedgerState
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("failed to parse ledger state: %w", err)
	}
	if state.Balances != nil {
		l.balances = state.Balances
	}
	return nil
}

// save writes the state file atomically. Caller must hold l.mu (or be
// the constructor before the ledger is shared).
func (l *FileLedger) save() error {
	state := fileLedgerState{Balances: l.balances}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode ledger state: %w", err)
	}

	dir := filepath.Dir(l.stateFilePath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "ledger-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write ledger state: %w", err)
	}
	if err := tmp.Chmod(stateFilePerm); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to chmod ledger state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	return os.Rename(tmpPath, l.stateFilePath)
}

// Transfer implements Treasury
func (l *FileLedger) Transfer(from, to types.Address, amount uint64) error {
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

	if err := l.save(); err != nil {
		// Undo the in-memory move so memory and disk stay consistent
		l.balances[from] += amount
		l.balances[to] -= amount
		return fmt.Errorf("failed to persist transfer: %w", err)
	}
	return nil
}

// Balance implements Treasury
func (l *FileLedger) Balance(addr types.Address) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[addr]
}

// Credit implements Treasury
func (l *FileLedger) Credit(addr types.Address, amount uint64) error {
	if types.IsAddressEmpty(addr) {
		return ErrEmptyAddress
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.balances[addr] += amount
	if err := l.save(); err != nil {
		l.balances[addr] -= amount
		return fmt.Errorf("failed to persist credit: %w", err)
	}
	return nil
}

var _ Treasury = (*FileLedger)(nil)
