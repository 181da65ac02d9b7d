package domain

import (
	"time"

	"github.com/google/uuid"
)

type ParticipantRole string

const (
	RoleOwner  ParticipantRole = "owner"
	RoleAdmin  ParticipantRole = "admin"
	RoleMember ParticipantRole = "member"
)

type ParticipantStatus string

const (
	ParticipantInvited  ParticipantStatus = "invited"
	ParticipantJoined   ParticipantStatus = "joined"
	ParticipantDeclined ParticipantStatus = "declined"
)

type VoteStatus string

const (
	VoteStatusNotVoted VoteStatus = "not_voted"
	VoteStatusVoted    VoteStatus = "voted"
	VoteStatusSkipped  VoteStatus = "skipped"
)

type Participant struct {
	ID         uuid.UUID         `json:"id"`
	TripID     uuid.UUID         `json:"trip_id"`
	UserID     uuid.UUID         `json:"user_id"`
	Role       ParticipantRole   `json:"role"`
	Status     ParticipantStatus `json:"status"`
	VoteStatus VoteStatus        `json:"vote_status"`
	InvitedAt  time.Time         `json:"invited_at"`
	JoinedAt   *time.Time        `json:"joined_at,omitempty"`

	// Populated by queries that join on users.
	UserName  string `json:"user_name,omitempty"`
	UserEmail string `json:"user_email,omitempty"`
}

// CanManage reports whether the participant may edit trip content such as
// recommendations.
func (p *Participant) CanManage() bool {
	return p.Role == RoleOwner || p.Role == RoleAdmin
}
