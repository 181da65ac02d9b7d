package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/packvote/api/internal/core/domain"
)

type TripRepository interface {
	// Create inserts the trip and its owner participant in one transaction.
	Create(ctx context.Context, trip *domain.Trip, owner *domain.Participant) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Trip, error)
	GetByInviteCode(ctx context.Context, code string) (*domain.Trip, error)
	ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Trip, error)
	Update(ctx context.Context, trip *domain.Trip) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TripStatus) error

	GetParticipant(ctx context.Context, tripID, userID uuid.UUID) (*domain.Participant, error)
	ListParticipants(ctx context.Context, tripID uuid.UUID) ([]domain.Participant, error)
	AddParticipant(ctx context.Context, p *domain.Participant) error
	CountJoined(ctx context.Context, tripID uuid.UUID) (int, error)
}

type CreateTripInput struct {
	Title       string
	Description string
	StartDate   *time.Time
	EndDate     *time.Time
	BudgetMin   *float64
	BudgetMax   *float64

	AllowMemberRecommendations bool
}

type UpdateTripInput struct {
	Title       *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
	BudgetMin   *float64
	BudgetMax   *float64

	AllowMemberRecommendations *bool
}

type TripService interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateTripInput) (*domain.Trip, error)
	Get(ctx context.Context, userID, tripID uuid.UUID) (*domain.Trip, []domain.Participant, error)
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Trip, error)
	Update(ctx context.Context, userID, tripID uuid.UUID, input UpdateTripInput) (*domain.Trip, error)
	Join(ctx context.Context, userID uuid.UUID, inviteCode string) (*domain.Trip, bool, error)
	Participants(ctx context.Context, userID, tripID uuid.UUID) ([]domain.Participant, error)
	OpenVoting(ctx context.Context, userID, tripID uuid.UUID) (*domain.Trip, error)
	Cancel(ctx context.Context, userID, tripID uuid.UUID) (*domain.Trip, error)
}
