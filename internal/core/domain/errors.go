package domain

import (
	"errors"
	"fmt"
)

var (
	ErrTripNotFound           = errors.New("trip not found")
	ErrRecommendationNotFound = errors.New("recommendation not found")
	ErrUserNotFound           = errors.New("user not found")
	ErrInvalidInviteCode      = errors.New("invalid invite code")
	ErrNotParticipant         = errors.New("access denied to this trip")
	ErrNotOwner               = errors.New("only the trip owner can perform this action")
	ErrVotingNotOpen          = errors.New("voting is not open for this trip")
	ErrTripLocked             = errors.New("trip is already confirmed or cancelled")
	ErrNotEnoughParticipants  = errors.New("at least 2 joined participants are required to vote")
	ErrNoRecommendations      = errors.New("trip has no recommendations to vote on")
	ErrRecommendationInUse    = errors.New("recommendation is already referenced by ballots")
	ErrNoBallots              = errors.New("no ballots have been cast")
	ErrResultsNotReady        = errors.New("voting results are not available yet")
	ErrEmailTaken             = errors.New("user with this email already exists")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrInternal               = errors.New("internal server error")
)

// ValidationError carries field-level detail for user-correctable input
// problems such as malformed rank sequences.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
