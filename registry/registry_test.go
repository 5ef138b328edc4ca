package registry

import (
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/aletheialabs/aletheia/journal"
	"github.com/aletheialabs/aletheia/treasury"
	"github.com/aletheialabs/aletheia/types"
	"github.com/aletheialabs/aletheia/verifier"
)

const (
	alice = types.Address("alice")
	bob   = types.Address("bob")
	carol = types.Address("carol")
)

var testCert = types.HashBytes([]byte("belief certificate"))

// flakyTreasury fails transfers on demand to exercise rollback paths
type flakyTreasury struct {
	treasury.Treasury
	failNext bool
}

func (f *flakyTreasury) Transfer(from, to types.Address, amount uint64) error {
	if f.failNext {
		f.failNext = false
		return errors.New("injected transfer failure")
	}
	return f.Treasury.Transfer(from, to, amount)
}

type fixture struct {
	reg     *Registry
	clk     *clock.Mock
	ledger  *flakyTreasury
	journal *journal.MemJournal
	escrow  types.Address
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clk := clock.NewMock()
	ledger := &flakyTreasury{Treasury: treasury.NewLedger()}
	jrnl := &journal.MemJournal{}
	cfg := Config{MinBond: 5, Window: 100 * time.Second, Escrow: "@escrow"}

	for _, addr := range []types.Address{alice, bob, carol} {
		if err := ledger.Credit(addr, 1000); err != nil {
			t.Fatalf("Credit failed: %v", err)
		}
	}

	reg, err := New(Params{
		Config:   cfg,
		Treasury: ledger,
		Journal:  jrnl,
		Clock:    clk,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return &fixture{reg: reg, clk: clk, ledger: ledger, journal: jrnl, escrow: cfg.Escrow}
}

// unsortedPair is evidence the sort verifier flags as a violation
func unsortedPair() (input, output []byte) {
	return verifier.EncodeUints([]uint64{3, 1, 2}), verifier.EncodeUints([]uint64{3, 1, 2})
}

// sortedPair is evidence the sort verifier accepts
func sortedPair() (input, output []byte) {
	return verifier.EncodeUints([]uint64{3, 1, 2}), verifier.EncodeUints([]uint64{1, 2, 3})
}

func (f *fixture) submit(t *testing.T, bond uint64) uint64 {
	t.Helper()
	id, err := f.reg.Submit(alice, testCert, verifier.RefSort, bond)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	return id
}

func TestSubmit(t *testing.T) {
	f := newFixture(t)

	id := f.submit(t, 10)
	if id != 1 {
		t.Errorf("first id = %d, want 1", id)
	}

	c, err := f.reg.Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if c.Bond != 10 || c.Slashed || c.Finalized {
		t.Errorf("unexpected claim state: %+v", c)
	}
	wantDeadline := f.clk.Now().Add(100 * time.Second)
	if !c.Deadline.Equal(wantDeadline) {
		t.Errorf("deadline = %v, want %v", c.Deadline, wantDeadline)
	}

	// Bond escrowed
	if got := f.ledger.Balance(alice); got != 990 {
		t.Errorf("alice balance = %d, want 990", got)
	}
	if got := f.ledger.Balance(f.escrow); got != 10 {
		t.Errorf("escrow balance = %d, want 10", got)
	}

	// Monotonic ids
	if id2 := f.submit(t, 10); id2 != 2 {
		t.Errorf("second id = %d, want 2", id2)
	}

	// Submission events emitted
	if got := len(f.journal.ByType(types.EventSubmission)); got != 2 {
		t.Errorf("submission events = %d, want 2", got)
	}
}

func TestSubmitInsufficientBond(t *testing.T) {
	f := newFixture(t)

	_, err := f.reg.Submit(alice, testCert, verifier.RefSort, 4)
	if !errors.Is(err, ErrInsufficientBond) {
		t.Fatalf("expected ErrInsufficientBond, got %v", err)
	}

	// No state created, no funds moved
	if _, err := f.reg.Get(1); !errors.Is(err, ErrNotFound) {
		t.Error("claim created despite insufficient bond")
	}
	if f.ledger.Balance(alice) != 1000 {
		t.Error("funds moved despite insufficient bond")
	}
	if len(f.journal.Records) != 0 {
		t.Error("event emitted despite insufficient bond")
	}
}

func TestSubmitAtMinBond(t *testing.T) {
	f := newFixture(t)
	if _, err := f.reg.Submit(alice, testCert, verifier.RefSort, 5); err != nil {
		t.Errorf("bond == MinBond should succeed, got %v", err)
	}
}

func TestSubmitUnknownVerifier(t *testing.T) {
	f := newFixture(t)
	_, err := f.reg.Submit(alice, testCert, "nonsense/v9", 10)
	if !errors.Is(err, ErrUnknownVerifier) {
		t.Fatalf("expected ErrUnknownVerifier, got %v", err)
	}
	if f.ledger.Balance(alice) != 1000 {
		t.Error("funds moved despite unknown verifier")
	}
}

func TestSubmitEscrowTransferFails(t *testing.T) {
	f := newFixture(t)
	f.ledger.failNext = true

	_, err := f.reg.Submit(alice, testCert, verifier.RefSort, 10)
	if !errors.Is(err, ErrTransferFailed) {
		t.Fatalf("expected ErrTransferFailed, got %v", err)
	}
	if f.ledger.Balance(alice) != 1000 || f.ledger.Balance(f.escrow) != 0 {
		t.Error("balances changed on failed escrow")
	}
}

func TestChallengeSlashes(t *testing.T) {
	f := newFixture(t)
	id := f.submit(t, 10)

	// t=50: inside the window
	f.clk.Add(50 * time.Second)

	input, output := unsortedPair()
	slashed, err := f.reg.Challenge(bob, id, input, output)
	if err != nil {
		t.Fatalf("Challenge failed: %v", err)
	}
	if !slashed {
		t.Fatal("expected slash")
	}

	c, _ := f.reg.Get(id)
	if !c.Slashed || c.Bond != 0 {
		t.Errorf("claim not slashed: %+v", c)
	}
	if got := f.ledger.Balance(bob); got != 1010 {
		t.Errorf("challenger balance = %d, want 1010", got)
	}
	if got := f.ledger.Balance(f.escrow); got != 0 {
		t.Errorf("escrow balance = %d, want 0", got)
	}

	// Challenge and slash events both recorded
	if len(f.journal.ByType(types.EventChallenge)) != 1 {
		t.Error("missing challenge event")
	}
	if len(f.journal.ByType(types.EventSlash)) != 1 {
		t.Error("missing slash event")
	}
}

func TestChallengeNoViolation(t *testing.T) {
	f := newFixture(t)
	id := f.submit(t, 10)

	input, output := sortedPair()
	slashed, err := f.reg.Challenge(bob, id, input, output)
	if err != nil {
		t.Fatalf("Challenge failed: %v", err)
	}
	if slashed {
		t.Fatal("correct output slashed")
	}

	// State unchanged; audit event still recorded
	c, _ := f.reg.Get(id)
	if c.Slashed || c.Bond != 10 {
		t.Errorf("claim mutated by no-op challenge: %+v", c)
	}
	if f.ledger.Balance(bob) != 1000 {
		t.Error("funds moved on no-op challenge")
	}
	if len(f.journal.ByType(types.EventChallenge)) != 1 {
		t.Error("no-op challenge not recorded")
	}
	if len(f.journal.ByType(types.EventSlash)) != 0 {
		t.Error("slash event for no-op challenge")
	}
}

func TestChallengeErrors(t *testing.T) {
	f := newFixture(t)
	id := f.submit(t, 10)
	input, output := unsortedPair()

	// Unknown id
	if _, err := f.reg.Challenge(bob, 99, input, output); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	// Window closed, even with a valid violation pair
	f.clk.Add(100 * time.Second)
	if _, err := f.reg.Challenge(bob, id, input, output); !errors.Is(err, ErrWindowClosed) {
		t.Errorf("expected ErrWindowClosed, got %v", err)
	}
}

func TestChallengeFirstValidWins(t *testing.T) {
	f := newFixture(t)
	id := f.submit(t, 10)
	input, output := unsortedPair()

	if _, err := f.reg.Challenge(bob, id, input, output); err != nil {
		t.Fatalf("first challenge failed: %v", err)
	}

	// Second challenge would also prove a violation, but the claim is
	// closed and no further funds exist to pay.
	_, err := f.reg.Challenge(carol, id, input, output)
	if !errors.Is(err, ErrAlreadyClosed) {
		t.Fatalf("expected ErrAlreadyClosed, got %v", err)
	}
	if f.ledger.Balance(carol) != 1000 {
		t.Error("second challenger was paid")
	}
	if f.ledger.Balance(bob) != 1010 {
		t.Error("first challenger's reward changed")
	}
}

func TestChallengeAfterFinalize(t *testing.T) {
	f := newFixture(t)
	id := f.submit(t, 10)
	f.clk.Add(100 * time.Second)
	if err := f.reg.Finalize(id); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}

	input, output := unsortedPair()
	_, err := f.reg.Challenge(bob, id, input, output)
	// Past the deadline the window check fires first
	if !errors.Is(err, ErrWindowClosed) {
		t.Errorf("expected ErrWindowClosed, got %v", err)
	}
}

func TestChallengeTransferFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	id := f.submit(t, 10)
	input, output := unsortedPair()

	f.ledger.failNext = true
	_, err := f.reg.Challenge(bob, id, input, output)
	if !errors.Is(err, ErrTransferFailed) {
		t.Fatalf("expected ErrTransferFailed, got %v", err)
	}

	// Full rollback: not half-slashed, bond intact, no payout, no events
	c, _ := f.reg.Get(id)
	if c.Slashed || c.Bond != 10 {
		t.Errorf("claim left half-slashed: %+v", c)
	}
	if f.ledger.Balance(bob) != 1000 || f.ledger.Balance(f.escrow) != 10 {
		t.Error("balances inconsistent after rollback")
	}
	if len(f.journal.ByType(types.EventSlash)) != 0 {
		t.Error("slash event retained after rollback")
	}

	// The claim is still challengeable afterwards
	slashed, err := f.reg.Challenge(bob, id, input, output)
	if err != nil || !slashed {
		t.Errorf("retry after rollback failed: slashed=%v err=%v", slashed, err)
	}
}

func TestFinalize(t *testing.T) {
	f := newFixture(t)
	id := f.submit(t, 10)

	// Too early, right up to the deadline
	if err := f.reg.Finalize(id); !errors.Is(err, ErrTooEarly) {
		t.Errorf("expected ErrTooEarly, got %v", err)
	}
	f.clk.Add(99 * time.Second)
	if err := f.reg.Finalize(id); !errors.Is(err, ErrTooEarly) {
		t.Errorf("expected ErrTooEarly at t=99, got %v", err)
	}

	// At the deadline finalize succeeds
	f.clk.Add(1 * time.Second)
	if err := f.reg.Finalize(id); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	c, _ := f.reg.Get(id)
	if !c.Finalized {
		t.Error("claim not finalized")
	}
	if len(f.journal.ByType(types.EventFinalize)) != 1 {
		t.Error("missing finalize event")
	}

	// Twice fails
	if err := f.reg.Finalize(id); !errors.Is(err, ErrAlreadyFinalized) {
		t.Errorf("expected ErrAlreadyFinalized, got %v", err)
	}

	// Unknown id
	if err := f.reg.Finalize(99); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFinalizeSlashedClaimIsBookkeeping(t *testing.T) {
	f := newFixture(t)
	id := f.submit(t, 10)

	input, output := unsortedPair()
	if _, err := f.reg.Challenge(bob, id, input, output); err != nil {
		t.Fatalf("Challenge failed: %v", err)
	}

	f.clk.Add(100 * time.Second)
	if err := f.reg.Finalize(id); err != nil {
		t.Fatalf("Finalize on slashed claim should succeed: %v", err)
	}

	// Both flags set, bond zero, no funds moved by finalize
	c, _ := f.reg.Get(id)
	if !c.Finalized || !c.Slashed || c.Bond != 0 {
		t.Errorf("unexpected state: %+v", c)
	}
	if f.ledger.Balance(bob) != 1010 {
		t.Error("finalize moved funds")
	}
}

func TestWithdraw(t *testing.T) {
	f := newFixture(t)
	id := f.submit(t, 10)

	// Before finalization
	if _, err := f.reg.Withdraw(alice, id); !errors.Is(err, ErrNotFinalized) {
		t.Errorf("expected ErrNotFinalized, got %v", err)
	}

	f.clk.Add(100 * time.Second)
	if err := f.reg.Finalize(id); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}

	// Wrong caller
	if _, err := f.reg.Withdraw(bob, id); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}

	amount, err := f.reg.Withdraw(alice, id)
	if err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}
	if amount != 10 {
		t.Errorf("withdrew %d, want 10", amount)
	}
	if f.ledger.Balance(alice) != 1000 {
		t.Errorf("alice balance = %d, want 1000", f.ledger.Balance(alice))
	}

	// Second withdraw: bond already zero, must not pay twice
	if _, err := f.reg.Withdraw(alice, id); !errors.Is(err, ErrForfeited) {
		t.Errorf("expected ErrForfeited on drained claim, got %v", err)
	}
	if f.ledger.Balance(alice) != 1000 {
		t.Error("second withdraw paid out")
	}
}

func TestWithdrawSlashedClaim(t *testing.T) {
	f := newFixture(t)
	id := f.submit(t, 10)

	input, output := unsortedPair()
	if _, err := f.reg.Challenge(bob, id, input, output); err != nil {
		t.Fatalf("Challenge failed: %v", err)
	}
	f.clk.Add(100 * time.Second)
	if err := f.reg.Finalize(id); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}

	if _, err := f.reg.Withdraw(alice, id); !errors.Is(err, ErrForfeited) {
		t.Errorf("expected ErrForfeited, got %v", err)
	}
}

func TestWithdrawTransferFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	id := f.submit(t, 10)
	f.clk.Add(100 * time.Second)
	if err := f.reg.Finalize(id); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}

	f.ledger.failNext = true
	_, err := f.reg.Withdraw(alice, id)
	if !errors.Is(err, ErrTransferFailed) {
		t.Fatalf("expected ErrTransferFailed, got %v", err)
	}

	// Bond not zeroed without payment
	c, _ := f.reg.Get(id)
	if c.Bond != 10 {
		t.Errorf("bond = %d after failed transfer, want 10", c.Bond)
	}

	// Retry succeeds and pays exactly once
	amount, err := f.reg.Withdraw(alice, id)
	if err != nil || amount != 10 {
		t.Fatalf("retry failed: amount=%d err=%v", amount, err)
	}
	if f.ledger.Balance(alice) != 1000 {
		t.Error("total payout exceeds original bond")
	}
}

func TestPayoutNeverExceedsBond(t *testing.T) {
	// Across any interleaving of operations, at most one of
	// {slash-with-reward, withdraw-with-refund} occurs per claim.
	f := newFixture(t)
	id := f.submit(t, 10)

	input, output := unsortedPair()
	if _, err := f.reg.Challenge(bob, id, input, output); err != nil {
		t.Fatalf("Challenge failed: %v", err)
	}
	f.clk.Add(100 * time.Second)
	_ = f.reg.Finalize(id)
	if _, err := f.reg.Withdraw(alice, id); !errors.Is(err, ErrForfeited) {
		t.Errorf("expected ErrForfeited, got %v", err)
	}

	total := f.ledger.Balance(alice) + f.ledger.Balance(bob) + f.ledger.Balance(carol) + f.ledger.Balance(f.escrow)
	if total != 3000 {
		t.Errorf("funds not conserved: total = %d", total)
	}
	if f.ledger.Balance(bob) != 1010 || f.ledger.Balance(alice) != 990 {
		t.Error("payout exceeded original bond")
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{"zero min bond", Config{MinBond: 0, Window: time.Hour, Escrow: "@e"}, ErrZeroMinBond},
		{"zero window", Config{MinBond: 1, Window: 0, Escrow: "@e"}, ErrZeroWindow},
		{"empty escrow", Config{MinBond: 1, Window: time.Hour, Escrow: ""}, ErrEmptyEscrow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(Params{Config: tt.cfg})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultParams(t *testing.T) {
	reg, err := New(Params{})
	if err != nil {
		t.Fatalf("New with defaults failed: %v", err)
	}
	// Default ledger has no funded accounts, so submission fails at the
	// escrow transfer, not before.
	_, err = reg.Submit(alice, testCert, verifier.RefSort, 1)
	if !errors.Is(err, ErrTransferFailed) {
		t.Errorf("expected ErrTransferFailed with unfunded ledger, got %v", err)
	}
}
