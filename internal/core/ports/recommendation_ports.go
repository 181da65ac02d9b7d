package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/packvote/api/internal/core/domain"
)

type RecommendationRepository interface {
	Create(ctx context.Context, rec *domain.Recommendation) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Recommendation, error)
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]*domain.Recommendation, error)
	CountByTrip(ctx context.Context, tripID uuid.UUID) (int, error)
	Update(ctx context.Context, rec *domain.Recommendation) error
	HasVotes(ctx context.Context, recommendationID uuid.UUID) (bool, error)
}

type RecommendationInput struct {
	DestinationName       string
	Description           string
	EstimatedCost         *float64
	Activities            []string
	AccommodationOptions  []string
	TransportationOptions []string
	AIGenerated           bool
}

type RecommendationService interface {
	Add(ctx context.Context, userID, tripID uuid.UUID, input RecommendationInput) (*domain.Recommendation, error)
	List(ctx context.Context, userID, tripID uuid.UUID) ([]*domain.Recommendation, error)
	Update(ctx context.Context, userID, tripID, recID uuid.UUID, input RecommendationInput) (*domain.Recommendation, error)
}
