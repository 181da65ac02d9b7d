package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/packvote/api/internal/core/domain"
	"github.com/packvote/api/internal/core/ports"
)

// minVoters is the joined-participant threshold below which voting stays
// locked. The UI enforces it too, but the client is not trusted.
const minVoters = 2

type tripService struct {
	tripRepo ports.TripRepository
	recRepo  ports.RecommendationRepository
}

func NewTripService(tripRepo ports.TripRepository, recRepo ports.RecommendationRepository) ports.TripService {
	return &tripService{
		tripRepo: tripRepo,
		recRepo:  recRepo,
	}
}

func (s *tripService) Create(ctx context.Context, userID uuid.UUID, input ports.CreateTripInput) (*domain.Trip, error) {
	if input.Title == "" {
		return nil, domain.NewValidationError("title", "title is required")
	}
	if input.StartDate != nil && input.EndDate != nil && !input.StartDate.Before(*input.EndDate) {
		return nil, domain.NewValidationError("start_date", "start date must be before end date")
	}
	if input.BudgetMin != nil && input.BudgetMax != nil && *input.BudgetMin >= *input.BudgetMax {
		return nil, domain.NewValidationError("budget_min", "minimum budget must be less than maximum budget")
	}

	inviteCode, err := generateInviteCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invite code: %w", err)
	}

	now := time.Now()
	trip := &domain.Trip{
		ID:                         uuid.New(),
		Title:                      input.Title,
		Description:                input.Description,
		StartDate:                  input.StartDate,
		EndDate:                    input.EndDate,
		BudgetMin:                  input.BudgetMin,
		BudgetMax:                  input.BudgetMax,
		InviteCode:                 inviteCode,
		Status:                     domain.TripStatusPlanning,
		AllowMemberRecommendations: input.AllowMemberRecommendations,
		CreatedBy:                  userID,
		CreatedAt:                  now,
		ParticipantCount:           1,
	}

	owner := &domain.Participant{
		ID:         uuid.New(),
		TripID:     trip.ID,
		UserID:     userID,
		Role:       domain.RoleOwner,
		Status:     domain.ParticipantJoined,
		VoteStatus: domain.VoteStatusNotVoted,
		InvitedAt:  now,
		JoinedAt:   &now,
	}

	if err := s.tripRepo.Create(ctx, trip, owner); err != nil {
		return nil, err
	}

	return trip, nil
}

func (s *tripService) Get(ctx context.Context, userID, tripID uuid.UUID) (*domain.Trip, []domain.Participant, error) {
	trip, _, err := s.requireParticipant(ctx, userID, tripID)
	if err != nil {
		return nil, nil, err
	}

	participants, err := s.tripRepo.ListParticipants(ctx, tripID)
	if err != nil {
		return nil, nil, err
	}

	return trip, participants, nil
}

func (s *tripService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Trip, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.tripRepo.ListForUser(ctx, userID, limit, offset)
}

func (s *tripService) Update(ctx context.Context, userID, tripID uuid.UUID, input ports.UpdateTripInput) (*domain.Trip, error) {
	trip, err := s.requireOwner(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}
	if trip.Status.Terminal() {
		return nil, domain.ErrTripLocked
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, domain.NewValidationError("title", "title is required")
		}
		trip.Title = *input.Title
	}
	if input.Description != nil {
		trip.Description = *input.Description
	}
	if input.StartDate != nil {
		trip.StartDate = input.StartDate
	}
	if input.EndDate != nil {
		trip.EndDate = input.EndDate
	}
	if trip.StartDate != nil && trip.EndDate != nil && !trip.StartDate.Before(*trip.EndDate) {
		return nil, domain.NewValidationError("start_date", "start date must be before end date")
	}
	if input.BudgetMin != nil {
		trip.BudgetMin = input.BudgetMin
	}
	if input.BudgetMax != nil {
		trip.BudgetMax = input.BudgetMax
	}
	if trip.BudgetMin != nil && trip.BudgetMax != nil && *trip.BudgetMin >= *trip.BudgetMax {
		return nil, domain.NewValidationError("budget_min", "minimum budget must be less than maximum budget")
	}
	if input.AllowMemberRecommendations != nil {
		trip.AllowMemberRecommendations = *input.AllowMemberRecommendations
	}

	if err := s.tripRepo.Update(ctx, trip); err != nil {
		return nil, err
	}
	return trip, nil
}

// Join adds the user to the trip resolved from the invite code. It is
// idempotent: joining a trip the user already belongs to reports success
// with the second return value set to true.
func (s *tripService) Join(ctx context.Context, userID uuid.UUID, inviteCode string) (*domain.Trip, bool, error) {
	trip, err := s.tripRepo.GetByInviteCode(ctx, inviteCode)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.tripRepo.GetParticipant(ctx, trip.ID, userID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return trip, true, nil
	}

	now := time.Now()
	participant := &domain.Participant{
		ID:         uuid.New(),
		TripID:     trip.ID,
		UserID:     userID,
		Role:       domain.RoleMember,
		Status:     domain.ParticipantJoined,
		VoteStatus: domain.VoteStatusNotVoted,
		InvitedAt:  now,
		JoinedAt:   &now,
	}
	if err := s.tripRepo.AddParticipant(ctx, participant); err != nil {
		return nil, false, err
	}

	return trip, false, nil
}

func (s *tripService) Participants(ctx context.Context, userID, tripID uuid.UUID) ([]domain.Participant, error) {
	if _, _, err := s.requireParticipant(ctx, userID, tripID); err != nil {
		return nil, err
	}
	return s.tripRepo.ListParticipants(ctx, tripID)
}

func (s *tripService) OpenVoting(ctx context.Context, userID, tripID uuid.UUID) (*domain.Trip, error) {
	trip, err := s.requireOwner(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}
	if trip.Status != domain.TripStatusPlanning {
		if trip.Status == domain.TripStatusVoting {
			return trip, nil
		}
		return nil, domain.ErrTripLocked
	}

	recCount, err := s.recRepo.CountByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if recCount == 0 {
		return nil, domain.ErrNoRecommendations
	}

	joined, err := s.tripRepo.CountJoined(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if joined < minVoters {
		return nil, domain.ErrNotEnoughParticipants
	}

	if err := s.tripRepo.UpdateStatus(ctx, tripID, domain.TripStatusVoting); err != nil {
		return nil, err
	}
	trip.Status = domain.TripStatusVoting
	return trip, nil
}

func (s *tripService) Cancel(ctx context.Context, userID, tripID uuid.UUID) (*domain.Trip, error) {
	trip, err := s.requireOwner(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}
	if trip.Status.Terminal() {
		return nil, domain.ErrTripLocked
	}

	if err := s.tripRepo.UpdateStatus(ctx, tripID, domain.TripStatusCancelled); err != nil {
		return nil, err
	}
	trip.Status = domain.TripStatusCancelled
	return trip, nil
}

func (s *tripService) requireParticipant(ctx context.Context, userID, tripID uuid.UUID) (*domain.Trip, *domain.Participant, error) {
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

func (s *tripService) requireOwner(ctx context.Context, userID, tripID uuid.UUID) (*domain.Trip, error) {
	trip, participant, err := s.requireParticipant(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}
	if participant.Role != domain.RoleOwner {
		return nil, domain.ErrNotOwner
	}
	return trip, nil
}

// generateInviteCode mints the opaque join token for a trip. Codes are
// created once at trip creation and never rotated.
func generateInviteCode() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
