package domain

import (
	"time"

	"github.com/google/uuid"
)

// TallyRound records the state of one instant-runoff round. VoteCounts maps
// candidate id to first-choice votes among candidates still alive at the
// start of the round.
type TallyRound struct {
	Round      int            `json:"round"`
	VoteCounts map[string]int `json:"vote_counts"`
	TotalVotes int            `json:"total_votes"`
	Eliminated *string        `json:"eliminated,omitempty"`
	Winner     *string        `json:"winner,omitempty"`
}

type TallyWinner struct {
	ID              uuid.UUID `json:"id"`
	DestinationName string    `json:"destination_name"`
}

// TallyResult is the persisted outcome of finalizing a trip's vote. It is
// written exactly once and returned unchanged afterwards.
type TallyResult struct {
	TripID          uuid.UUID    `json:"trip_id"`
	Winner          *TallyWinner `json:"winner"`
	Rounds          []TallyRound `json:"rounds"`
	TotalVoters     int          `json:"total_voters"`
	TotalCandidates int          `json:"total_candidates"`
	ComputedAt      time.Time    `json:"computed_at"`
}
