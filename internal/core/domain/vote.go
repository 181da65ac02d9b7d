package domain

import (
	"time"

	"github.com/google/uuid"
)

// Vote is a single entry of a user's ranked ballot. Rank 1 is the first
// choice. A ballot is the full set of votes for one (trip, user) pair.
type Vote struct {
	ID               uuid.UUID `json:"id"`
	TripID           uuid.UUID `json:"trip_id"`
	UserID           uuid.UUID `json:"user_id"`
	RecommendationID uuid.UUID `json:"recommendation_id"`
	Rank             int       `json:"rank"`
	CreatedAt        time.Time `json:"created_at"`

	// Populated by queries that join on recommendations.
	DestinationName string `json:"destination_name,omitempty"`
}

// VoteSummary describes one joined participant's voting progress. HasVoted
// is true once the participant is done, whether by casting a ballot or by
// skipping; a skipped participant has a zero VoteCount.
type VoteSummary struct {
	UserID    uuid.UUID `json:"user_id"`
	UserName  string    `json:"user_name"`
	HasVoted  bool      `json:"has_voted"`
	VoteCount int       `json:"vote_count"`
}
