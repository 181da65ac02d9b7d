package domain

import (
	"time"

	"github.com/google/uuid"
)

type TripStatus string

const (
	TripStatusPlanning  TripStatus = "planning"
	TripStatusVoting    TripStatus = "voting"
	TripStatusConfirmed TripStatus = "confirmed"
	TripStatusCancelled TripStatus = "cancelled"
)

// Terminal reports whether no further lifecycle transitions are allowed.
func (s TripStatus) Terminal() bool {
	return s == TripStatusConfirmed || s == TripStatusCancelled
}

type Trip struct {
	ID                         uuid.UUID  `json:"id"`
	Title                      string     `json:"title"`
	Description                string     `json:"description,omitempty"`
	Destination                *string    `json:"destination,omitempty"`
	StartDate                  *time.Time `json:"start_date,omitempty"`
	EndDate                    *time.Time `json:"end_date,omitempty"`
	BudgetMin                  *float64   `json:"budget_min,omitempty"`
	BudgetMax                  *float64   `json:"budget_max,omitempty"`
	InviteCode                 string     `json:"invite_code"`
	Status                     TripStatus `json:"status"`
	AllowMemberRecommendations bool       `json:"allow_member_recommendations"`
	CreatedBy                  uuid.UUID  `json:"created_by"`
	CreatedAt                  time.Time  `json:"created_at"`
	UpdatedAt                  *time.Time `json:"updated_at,omitempty"`
	ParticipantCount           int        `json:"participant_count"`
}
