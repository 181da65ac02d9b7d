package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/packvote/api/internal/core/domain"
)

type VoteRepository interface {
	// ReplaceBallot removes any prior ballot for (tripID, userID), inserts
	// the new votes and marks the participant as voted, all in one
	// transaction.
	ReplaceBallot(ctx context.Context, tripID, userID uuid.UUID, votes []domain.Vote) error
	GetBallot(ctx context.Context, tripID, userID uuid.UUID) ([]domain.Vote, error)
	GetAllByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Vote, error)
	// DeleteBallot clears the ballot and sets the participant's vote
	// status back to not_voted.
	DeleteBallot(ctx context.Context, tripID, userID uuid.UUID) error
	// SkipBallot clears any ballot and marks the participant as skipped.
	SkipBallot(ctx context.Context, tripID, userID uuid.UUID) error
	// DeleteAllBallots clears every ballot for the trip and resets all
	// joined participants to not_voted.
	DeleteAllBallots(ctx context.Context, tripID uuid.UUID) error
	Summary(ctx context.Context, tripID uuid.UUID) ([]domain.VoteSummary, error)
}

type TallyRepository interface {
	// SaveResult persists the tally result, confirms the trip and sets its
	// destination in one transaction. It fails if the trip is no longer in
	// the voting state.
	SaveResult(ctx context.Context, result *domain.TallyResult, destinationName string) error
	GetResult(ctx context.Context, tripID uuid.UUID) (*domain.TallyResult, error)
}

type RankedVote struct {
	RecommendationID uuid.UUID `json:"recommendation_id"`
	Rank             int       `json:"rank"`
}

type VoteService interface {
	Cast(ctx context.Context, userID, tripID uuid.UUID, votes []RankedVote) ([]domain.Vote, error)
	MyVotes(ctx context.Context, userID, tripID uuid.UUID) ([]domain.Vote, error)
	AllVotes(ctx context.Context, userID, tripID uuid.UUID) ([]domain.Vote, error)
	Withdraw(ctx context.Context, userID, tripID uuid.UUID) error
	Skip(ctx context.Context, userID, tripID uuid.UUID) error
	Summary(ctx context.Context, userID, tripID uuid.UUID) ([]domain.VoteSummary, error)
	ResetAll(ctx context.Context, userID, tripID uuid.UUID) error
	ResetUser(ctx context.Context, ownerID, tripID, userID uuid.UUID) error
	Finalize(ctx context.Context, userID, tripID uuid.UUID) (*domain.TallyResult, error)
	Results(ctx context.Context, userID, tripID uuid.UUID) (*domain.TallyResult, error)
}
