package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/packvote/api/internal/core/domain"
	"github.com/packvote/api/internal/core/ports"
)

type recommendationService struct {
	tripRepo ports.TripRepository
	recRepo  ports.RecommendationRepository
}

func NewRecommendationService(tripRepo ports.TripRepository, recRepo ports.RecommendationRepository) ports.RecommendationService {
	return &recommendationService{
		tripRepo: tripRepo,
		recRepo:  recRepo,
	}
}

func (s *recommendationService) Add(ctx context.Context, userID, tripID uuid.UUID, input ports.RecommendationInput) (*domain.Recommendation, error) {
	trip, participant, err := s.access(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}
	if trip.Status.Terminal() {
		return nil, domain.ErrTripLocked
	}
	if !participant.CanManage() && !trip.AllowMemberRecommendations {
		return nil, domain.ErrNotParticipant
	}
	if input.DestinationName == "" {
		return nil, domain.NewValidationError("destination_name", "destination name is required")
	}

	rec := &domain.Recommendation{
		ID:                    uuid.New(),
		TripID:                tripID,
		DestinationName:       input.DestinationName,
		Description:           input.Description,
		EstimatedCost:         input.EstimatedCost,
		Activities:            input.Activities,
		AccommodationOptions:  input.AccommodationOptions,
		TransportationOptions: input.TransportationOptions,
		AIGenerated:           input.AIGenerated,
	}
	if err := s.recRepo.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *recommendationService) List(ctx context.Context, userID, tripID uuid.UUID) ([]*domain.Recommendation, error) {
	if _, _, err := s.access(ctx, userID, tripID); err != nil {
		return nil, err
	}
	return s.recRepo.ListByTrip(ctx, tripID)
}

// Update edits a recommendation. A recommendation becomes immutable once
// any ballot references it or the trip has reached a terminal state.
func (s *recommendationService) Update(ctx context.Context, userID, tripID, recID uuid.UUID, input ports.RecommendationInput) (*domain.Recommendation, error) {
	trip, participant, err := s.access(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}
	if trip.Status.Terminal() {
		return nil, domain.ErrTripLocked
	}
	if !participant.CanManage() {
		return nil, domain.ErrNotOwner
	}

	rec, err := s.recRepo.GetByID(ctx, recID)
	if err != nil {
		return nil, err
	}
	if rec.TripID != tripID {
		return nil, domain.ErrRecommendationNotFound
	}

	referenced, err := s.recRepo.HasVotes(ctx, recID)
	if err != nil {
		return nil, err
	}
	if referenced {
		return nil, domain.ErrRecommendationInUse
	}

	if input.DestinationName == "" {
		return nil, domain.NewValidationError("destination_name", "destination name is required")
	}
	rec.DestinationName = input.DestinationName
	rec.Description = input.Description
	rec.EstimatedCost = input.EstimatedCost
	rec.Activities = input.Activities
	rec.AccommodationOptions = input.AccommodationOptions
	rec.TransportationOptions = input.TransportationOptions

	if err := s.recRepo.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *recommendationService) access(ctx context.Context, userID, tripID uuid.UUID) (*domain.Trip, *domain.Participant, error) {
	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, nil, err
	}
	participant, err := s.tripRepo.GetParticipant(ctx, tripID, userID)
	if err != nil {
		return nil, nil, err
	}
	if participant == nil || participant.Status != domain.ParticipantJoined {
		return nil, nil, domain.ErrNotParticipant
	}
	return trip, participant, nil
}
