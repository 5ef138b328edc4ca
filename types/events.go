package types

import "time"

// EventType identifies the kind of audit event
type EventType string

const (
	EventSubmission EventType = "submission"
	EventChallenge  EventType = "challenge"
	EventSlash      EventType = "slash"
	EventFinalize   EventType = "finalize"
	EventWithdraw   EventType = "withdraw"
)

// SubmissionEvent is emitted once per accepted submission
type SubmissionEvent struct {
	ID          uint64    `json:"id"`
	Submitter   Address   `json:"submitter"`
	CertHash    Hash      `json:"cert_hash"`
	VerifierRef string    `json:"verifier_ref"`
	Bond        uint64    `json:"bond"`
	Deadline    time.Time `json:"deadline"`
}

// ChallengeEvent is emitted for every challenge, successful or not
type ChallengeEvent struct {
	ID         uint64  `json:"id"`
	Challenger Address `json:"challenger"`
}

// SlashEvent is emitted only when a challenge proves a violation
type SlashEvent struct {
	ID         uint64  `json:"id"`
	Challenger Address `json:"challenger"`
	Reward     uint64  `json:"reward"`
}

// FinalizeEvent is emitted when a claim passes its deadline undisputed
type FinalizeEvent struct {
	ID uint64 `json:"id"`
}

// WithdrawEvent is emitted when a submitter reclaims a finalized bond
type WithdrawEvent struct {
	ID        uint64  `json:"id"`
	Submitter Address `json:"submitter"`
	Amount    uint64  `json:"amount"`
}
