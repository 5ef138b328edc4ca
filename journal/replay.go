package journal

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/aletheialabs/aletheia/store"
	"github.com/aletheialabs/aletheia/types"
)

// ReplayResult summarizes a journal replay
type ReplayResult struct {
	// RecordsReplayed counts all records read, including audit-only ones
	RecordsReplayed int
	// ClaimsRestored counts submission records folded into the store
	ClaimsRestored int
}

// Replay folds a journal back into a claim store. Submission records
// recreate claims; slash, finalize, and withdraw records reapply the
// terminal transitions. Challenge records are audit-only.
//
// Replay trusts the journal: records were only written by operations
// that committed, so transitions are applied without re-checking
// deadlines.
func Replay(r Reader, st store.Store) (*ReplayResult, error) {
	result := &ReplayResult{}

	for {
		rec, err := r.Read()
		if err == io.EOF {
			return result, nil
		}
		if err != nil {
			return nil, fmt.Errorf("journal replay failed: %w", err)
		}
		if err := replayRecord(rec, st); err != nil {
			return nil, fmt.Errorf("journal replay failed: %w", err)
		}
		result.RecordsReplayed++
		if rec.Type == types.EventSubmission {
			result.ClaimsRestored++
		}
	}
}

func replayRecord(rec *Record, st store.Store) error {
	switch rec.Type {
	case types.EventSubmission:
		var ev types.SubmissionEvent
		if err := json.Unmarshal(rec.Data, &ev); err != nil {
			return fmt.Errorf("bad submission record %s: %w", rec.ID, err)
		}
		return st.Put(&types.Claim{
			ID:          ev.ID,
			Submitter:   ev.Submitter,
			VerifierRef: ev.VerifierRef,
			CertHash:    ev.CertHash,
			Bond:        ev.Bond,
			Deadline:    ev.Deadline,
		})

	case types.EventSlash:
		var ev types.SlashEvent
		if err := json.Unmarshal(rec.Data, &ev); err != nil {
			return fmt.Errorf("bad slash record %s: %w", rec.ID, err)
		}
		return mutateClaim(st, ev.ID, func(c *types.Claim) {
			c.Slashed = true
			c.Bond = 0
		})

	case types.EventFinalize:
		var ev types.FinalizeEvent
		if err := json.Unmarshal(rec.Data, &ev); err != nil {
			return fmt.Errorf("bad finalize record %s: %w", rec.ID, err)
		}
		return mutateClaim(st, ev.ID, func(c *types.Claim) {
			c.Finalized = true
		})

	case types.EventWithdraw:
		var ev types.WithdrawEvent
		if err := json.Unmarshal(rec.Data, &ev); err != nil {
			return fmt.Errorf("bad withdraw record %s: %w", rec.ID, err)
		}
		return mutateClaim(st, ev.ID, func(c *types.Claim) {
			c.Bond = 0
		})

	case types.EventChallenge:
		// Audit-only: unsuccessful challenges change no state
		return nil

	default:
		// Unknown record types are skipped so newer journals replay on
		// older code.
		return nil
	}
}

func mutateClaim(st store.Store, id uint64, mutate func(*types.Claim)) error {
	c, err := st.Get(id)
	if err != nil {
		return fmt.Errorf("claim %d referenced before submission: %w", id, err)
	}
	mutate(c)
	return st.Put(c)
}
