package registry

import (
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/aletheialabs/aletheia/journal"
	"github.com/aletheialabs/aletheia/store"
	"github.com/aletheialabs/aletheia/treasury"
	"github.com/aletheialabs/aletheia/types"
	"github.com/aletheialabs/aletheia/verifier"
)

// Params collects the registry's collaborators. Zero fields get safe
// defaults: in-memory store and ledger, built-in verifiers, discarded
// audit events, real clock, no logging.
type Params struct {
	Config    Config
	Store     store.Store
	Treasury  treasury.Treasury
	Verifiers *verifier.Registry
	Journal   journal.Journal
	Clock     clock.Clock
	Logger    *zap.Logger
}

// Registry owns the claim table and the escrowed bonds. It is the only
// writer of a claim's bond and terminal flags.
type Registry struct {
	mu sync.Mutex

	cfg       Config
	store     store.Store
	treasury  treasury.Treasury
	verifiers *verifier.Registry
	journal   journal.Journal
	clock     clock.Clock
	logger    *zap.Logger
}

// New creates a registry
func New(p Params) (*Registry, error) {
	if p.Config == (Config{}) {
		p.Config = DefaultConfig()
	}
	if err := p.Config.ValidateBasic(); err != nil {
		return nil, err
	}
	if p.Store == nil {
		p.Store = store.NewMemStore()
	}
	if p.Treasury == nil {
		p.Treasury = treasury.NewLedger()
	}
	if p.Verifiers == nil {
		p.Verifiers = verifier.DefaultRegistry()
	}
	if p.Journal == nil {
		p.Journal = journal.NopJournal{}
	}
	if p.Clock == nil {
		p.Clock = clock.New()
	}
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}

	return &Registry{
		cfg:       p.Config,
		store:     p.Store,
		treasury:  p.Treasury,
		verifiers: p.Verifiers,
		journal:   p.Journal,
		clock:     p.Clock,
		logger:    p.Logger,
	}, nil
}

// Submit opens a claim: escrows the bond, assigns the next id, and sets
// the challenge deadline to now + window.
func (r *Registry) Submit(submitter types.Address, certHash types.Hash, verifierRef string, bond uint64) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if bond < r.cfg.MinBond {
		return 0, fmt.Errorf("%w: %d < %d", ErrInsufficientBond, bond, r.cfg.MinBond)
	}
	if !r.verifiers.Has(verifierRef) {
		return 0, fmt.Errorf("%w: %s", ErrUnknownVerifier, verifierRef)
	}

	id, err := r.store.NextID()
	if err != nil {
		return 0, err
	}

	now := r.clock.Now()
	claim := &types.Claim{
		ID:          id,
		Submitter:   submitter,
		VerifierRef: verifierRef,
		CertHash:    certHash,
		Bond:        bond,
		Deadline:    now.Add(r.cfg.Window),
	}
	if err := claim.ValidateBasic(); err != nil {
		return 0, err
	}

	// Escrow the bond before the claim becomes visible
	if err := r.treasury.Transfer(submitter, r.cfg.Escrow, bond); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	if err := r.store.Put(claim); err != nil {
		r.refund(submitter, bond)
		return 0, err
	}

	if err := r.emit(types.EventSubmission, types.SubmissionEvent{
		ID:          id,
		Submitter:   submitter,
		CertHash:    certHash,
		VerifierRef: verifierRef,
		Bond:        bond,
		Deadline:    claim.Deadline,
	}); err != nil {
		r.refund(submitter, bond)
		claim.Bond = 0
		claim.Slashed = true
		_ = r.store.Put(claim) // neutralize the record; id is burned
		return 0, err
	}

	r.logger.Info("claim submitted",
		zap.Uint64("id", id),
		zap.String("submitter", submitter.String()),
		zap.String("verifier", verifierRef),
		zap.Uint64("bond", bond),
		zap.Time("deadline", claim.Deadline))
	return id, nil
}

// Challenge presents an evidence pair against an open claim. Every
// accepted challenge is recorded for audit; if the claim's verifier
// finds a violation, the bond is slashed to the challenger. The first
// valid challenge wins; later ones fail with ErrAlreadyClosed.
func (r *Registry) Challenge(challenger types.Address, id uint64, input, output []byte) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	claim, err := r.store.Get(id)
	if err != nil {
		return false, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}

	now := r.clock.Now()
	if !now.Before(claim.Deadline) {
		return false, fmt.Errorf("%w: deadline was %s", ErrWindowClosed, claim.Deadline)
	}
	if claim.Finalized || claim.Slashed {
		return false, fmt.Errorf("%w: id %d", ErrAlreadyClosed, id)
	}

	v, err := r.verifiers.Get(claim.VerifierRef)
	if err != nil {
		return false, fmt.Errorf("%w: %s", ErrUnknownVerifier, claim.VerifierRef)
	}

	if !v.Violates(input, output) {
		// No violation: state unchanged, audit record only
		if err := r.emit(types.EventChallenge, types.ChallengeEvent{ID: id, Challenger: challenger}); err != nil {
			return false, err
		}
		r.logger.Info("challenge rejected by verifier",
			zap.Uint64("id", id),
			zap.String("challenger", challenger.String()))
		return false, nil
	}

	// Effects before the external transfer: flip the flag, zero the
	// bond, persist.
	orig := claim.Clone()
	reward := claim.Bond
	claim.Slashed = true
	claim.Bond = 0
	if err := r.store.Put(claim); err != nil {
		return false, err
	}

	if err := r.treasury.Transfer(r.cfg.Escrow, challenger, reward); err != nil {
		// Full rollback: the claim reverts to its pre-call state
		r.restore(orig)
		return false, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	if err := r.emitAll(
		event{types.EventChallenge, types.ChallengeEvent{ID: id, Challenger: challenger}},
		event{types.EventSlash, types.SlashEvent{ID: id, Challenger: challenger, Reward: reward}},
	); err != nil {
		r.clawback(challenger, reward)
		r.restore(orig)
		return false, err
	}

	r.logger.Info("claim slashed",
		zap.Uint64("id", id),
		zap.String("challenger", challenger.String()),
		zap.Uint64("reward", reward))
	return true, nil
}

// Finalize marks a claim past its deadline as no longer disputable.
// Callable by anyone: it only flips a flag and never moves funds. On a
// slashed claim it is a bookkeeping no-op over an already-zero bond.
func (r *Registry) Finalize(id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	claim, err := r.store.Get(id)
	if err != nil {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}

	now := r.clock.Now()
	if now.Before(claim.Deadline) {
		return fmt.Errorf("%w: deadline is %s", ErrTooEarly, claim.Deadline)
	}
	if claim.Finalized {
		return fmt.Errorf("%w: id %d", ErrAlreadyFinalized, id)
	}

	orig := claim.Clone()
	claim.Finalized = true
	if err := r.store.Put(claim); err != nil {
		return err
	}

	if err := r.emit(types.EventFinalize, types.FinalizeEvent{ID: id}); err != nil {
		r.restore(orig)
		return err
	}

	r.logger.Info("claim finalized", zap.Uint64("id", id))
	return nil
}

// Withdraw reclaims the bond of a finalized, unslashed claim for its
// submitter. It pays exactly the remaining bond, then zeroes it; a
// second withdrawal finds nothing left and fails.
func (r *Registry) Withdraw(caller types.Address, id uint64) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	claim, err := r.store.Get(id)
	if err != nil {
		return 0, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}

	if !claim.Finalized {
		return 0, fmt.Errorf("%w: id %d", ErrNotFinalized, id)
	}
	if claim.Slashed || claim.Bond == 0 {
		return 0, fmt.Errorf("%w: id %d", ErrForfeited, id)
	}
	if !types.AddressEqual(caller, claim.Submitter) {
		return 0, fmt.Errorf("%w: caller %s", ErrUnauthorized, caller)
	}

	orig := claim.Clone()
	amount := claim.Bond
	claim.Bond = 0
	if err := r.store.Put(claim); err != nil {
		return 0, err
	}

	if err := r.treasury.Transfer(r.cfg.Escrow, claim.Submitter, amount); err != nil {
		r.restore(orig)
		return 0, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	if err := r.emit(types.EventWithdraw, types.WithdrawEvent{
		ID:        id,
		Submitter: claim.Submitter,
		Amount:    amount,
	}); err != nil {
		r.clawback(claim.Submitter, amount)
		r.restore(orig)
		return 0, err
	}

	r.logger.Info("bond withdrawn",
		zap.Uint64("id", id),
		zap.String("submitter", claim.Submitter.String()),
		zap.Uint64("amount", amount))
	return amount, nil
}

// Get returns a copy of a claim record
func (r *Registry) Get(id uint64) (*types.Claim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	claim, err := r.store.Get(id)
	if err != nil {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return claim, nil
}

// List returns copies of all claim records, ordered by id
func (r *Registry) List() ([]*types.Claim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.List()
}

// event pairs a type with its payload for batched emission
type event struct {
	typ     types.EventType
	payload interface{}
}

func (r *Registry) emit(typ types.EventType, payload interface{}) error {
	return r.emitAll(event{typ, payload})
}

func (r *Registry) emitAll(events ...event) error {
	now := r.clock.Now()
	for _, ev := range events {
		rec, err := journal.NewRecord(ev.typ, now, ev.payload)
		if err != nil {
			return err
		}
		if err := r.journal.Append(rec); err != nil {
			return fmt.Errorf("failed to append %s record: %w", ev.typ, err)
		}
	}
	return nil
}

// restore writes a claim's pre-call state back during rollback
func (r *Registry) restore(orig *types.Claim) {
	if err := r.store.Put(orig); err != nil {
		r.logger.Error("rollback failed to restore claim",
			zap.Uint64("id", orig.ID), zap.Error(err))
	}
}

// refund returns escrowed funds to an address during rollback
func (r *Registry) refund(to types.Address, amount uint64) {
	if err := r.treasury.Transfer(r.cfg.Escrow, to, amount); err != nil {
		r.logger.Error("rollback failed to return funds",
			zap.String("to", to.String()), zap.Uint64("amount", amount), zap.Error(err))
	}
}

// clawback reverses a payout back into escrow during rollback
func (r *Registry) clawback(from types.Address, amount uint64) {
	if err := r.treasury.Transfer(from, r.cfg.Escrow, amount); err != nil {
		r.logger.Error("rollback failed to reverse payout",
			zap.String("from", from.String()), zap.Uint64("amount", amount), zap.Error(err))
	}
}
