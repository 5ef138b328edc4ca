package journal

import (
	"io"
	"testing"
	"time"

	"github.com/aletheialabs/aletheia/store"
	"github.com/aletheialabs/aletheia/types"
)

type sliceReader struct {
	recs []*Record
	pos  int
}

func (r *sliceReader) Read() (*Record, error) {
	if r.pos >= len(r.recs) {
		return nil, io.EOF
	}
	rec := r.recs[r.pos]
	r.pos++
	return rec, nil
}

func (r *sliceReader) Close() error { return nil }

func record(t *testing.T, typ types.EventType, payload interface{}) *Record {
	t.Helper()
	rec, err := NewRecord(typ, time.Unix(100, 0), payload)
	if err != nil {
		t.Fatalf("NewRecord failed: %v", err)
	}
	return rec
}

func TestReplayLifecycle(t *testing.T) {
	deadline := time.Unix(1000, 0).UTC()
	cert := types.HashBytes([]byte("cert"))

	recs := []*Record{
		// Claim 1: slashed after a challenge
		record(t, types.EventSubmission, types.SubmissionEvent{
			ID: 1, Submitter: "alice", CertHash: cert,
			VerifierRef: "sort/v1", Bond: 10, Deadline: deadline,
		}),
		record(t, types.EventChallenge, types.ChallengeEvent{ID: 1, Challenger: "bob"}),
		record(t, types.EventSlash, types.SlashEvent{ID: 1, Challenger: "bob", Reward: 10}),

		// Claim 2: finalized and withdrawn
		record(t, types.EventSubmission, types.SubmissionEvent{
			ID: 2, Submitter: "carol", CertHash: cert,
			VerifierRef: "dot/v1", Bond: 25, Deadline: deadline,
		}),
		record(t, types.EventFinalize, types.FinalizeEvent{ID: 2}),
		record(t, types.EventWithdraw, types.WithdrawEvent{ID: 2, Submitter: "carol", Amount: 25}),
	}

	st := store.NewMemStore()
	result, err := Replay(&sliceReader{recs: recs}, st)
	if err != nil {
		t.Fatalf("Replay failed: %v", err)
	}
	if result.RecordsReplayed != len(recs) {
		t.Errorf("replayed %d records, want %d", result.RecordsReplayed, len(recs))
	}
	if result.ClaimsRestored != 2 {
		t.Errorf("restored %d claims, want 2", result.ClaimsRestored)
	}

	c1, err := st.Get(1)
	if err != nil {
		t.Fatalf("claim 1 missing: %v", err)
	}
	if !c1.Slashed || c1.Finalized || c1.Bond != 0 {
		t.Errorf("claim 1 state wrong: %+v", c1)
	}
	if c1.VerifierRef != "sort/v1" || c1.Submitter != "alice" {
		t.Errorf("claim 1 fields wrong: %+v", c1)
	}
	if !c1.Deadline.Equal(deadline) {
		t.Errorf("claim 1 deadline %v, want %v", c1.Deadline, deadline)
	}

	c2, err := st.Get(2)
	if err != nil {
		t.Fatalf("claim 2 missing: %v", err)
	}
	if !c2.Finalized || c2.Slashed || c2.Bond != 0 {
		t.Errorf("claim 2 state wrong: %+v", c2)
	}

	// Id counter moved past replayed claims
	next, err := st.NextID()
	if err != nil {
		t.Fatalf("NextID failed: %v", err)
	}
	if next != 3 {
		t.Errorf("next id after replay = %d, want 3", next)
	}
}

func TestReplayOrphanTransition(t *testing.T) {
	recs := []*Record{
		record(t, types.EventSlash, types.SlashEvent{ID: 9, Challenger: "bob", Reward: 1}),
	}
	_, err := Replay(&sliceReader{recs: recs}, store.NewMemStore())
	if err == nil {
		t.Error("expected error for transition before submission")
	}
}

func TestReplayEmptyJournal(t *testing.T) {
	result, err := Replay(NopReader{}, store.NewMemStore())
	if err != nil {
		t.Fatalf("Replay failed: %v", err)
	}
	if result.RecordsReplayed != 0 {
		t.Errorf("expected 0 records, got %d", result.RecordsReplayed)
	}
}
