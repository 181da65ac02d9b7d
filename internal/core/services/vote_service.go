package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/packvote/api/internal/core/domain"
	"github.com/packvote/api/internal/core/ports"
	"github.com/packvote/api/internal/core/tally"
)

type voteService struct {
	tripRepo  ports.TripRepository
	recRepo   ports.RecommendationRepository
	voteRepo  ports.VoteRepository
	tallyRepo ports.TallyRepository

	// tripLocks serializes ballot and lifecycle mutation per trip on top
	// of the database transaction. finalizeGroup collapses concurrent
	// finalize calls for the same trip into a single tally run.
	tripLocks     sync.Map
	finalizeGroup singleflight.Group
}

func NewVoteService(tripRepo ports.TripRepository, recRepo ports.RecommendationRepository, voteRepo ports.VoteRepository, tallyRepo ports.TallyRepository) ports.VoteService {
	return &voteService{
		tripRepo:  tripRepo,
		recRepo:   recRepo,
		voteRepo:  voteRepo,
		tallyRepo: tallyRepo,
	}
}

func (s *voteService) lock(tripID uuid.UUID) func() {
	v, _ := s.tripLocks.LoadOrStore(tripID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Cast replaces the caller's ballot with the supplied ranking. The previous
// ballot, if any, is fully superseded.
func (s *voteService) Cast(ctx context.Context, userID, tripID uuid.UUID, votes []ports.RankedVote) ([]domain.Vote, error) {
	unlock := s.lock(tripID)
	defer unlock()

	trip, _, err := s.requireJoined(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}
	if err := s.requireVotingOpen(ctx, trip); err != nil {
		return nil, err
	}

	if err := s.validateRanking(ctx, tripID, votes); err != nil {
		return nil, err
	}

	now := time.Now()
	ballot := make([]domain.Vote, 0, len(votes))
	for _, v := range votes {
		ballot = append(ballot, domain.Vote{
			ID:               uuid.New(),
			TripID:           tripID,
			UserID:           userID,
			RecommendationID: v.RecommendationID,
			Rank:             v.Rank,
			CreatedAt:        now,
		})
	}

	if err := s.voteRepo.ReplaceBallot(ctx, tripID, userID, ballot); err != nil {
		return nil, err
	}

	return s.voteRepo.GetBallot(ctx, tripID, userID)
}

func (s *voteService) MyVotes(ctx context.Context, userID, tripID uuid.UUID) ([]domain.Vote, error) {
	if _, _, err := s.requireJoined(ctx, userID, tripID); err != nil {
		return nil, err
	}

	ballot, err := s.voteRepo.GetBallot(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}
	if ballot == nil {
		// No ballot yet is an ordinary state, not an error.
		ballot = []domain.Vote{}
	}
	return ballot, nil
}

func (s *voteService) AllVotes(ctx context.Context, userID, tripID uuid.UUID) ([]domain.Vote, error) {
	if _, _, err := s.requireJoined(ctx, userID, tripID); err != nil {
		return nil, err
	}
	return s.voteRepo.GetAllByTrip(ctx, tripID)
}

func (s *voteService) Withdraw(ctx context.Context, userID, tripID uuid.UUID) error {
	unlock := s.lock(tripID)
	defer unlock()

	trip, _, err := s.requireJoined(ctx, userID, tripID)
	if err != nil {
		return err
	}
	if trip.Status != domain.TripStatusVoting {
		return domain.ErrVotingNotOpen
	}

	return s.voteRepo.DeleteBallot(ctx, tripID, userID)
}

// Skip marks the caller as having opted out of voting. A previously cast
// ballot is cleared: skipping always wins over an earlier ranking.
func (s *voteService) Skip(ctx context.Context, userID, tripID uuid.UUID) error {
	unlock := s.lock(tripID)
	defer unlock()

	trip, _, err := s.requireJoined(ctx, userID, tripID)
	if err != nil {
		return err
	}
	if trip.Status != domain.TripStatusVoting {
		return domain.ErrVotingNotOpen
	}

	return s.voteRepo.SkipBallot(ctx, tripID, userID)
}

func (s *voteService) Summary(ctx context.Context, userID, tripID uuid.UUID) ([]domain.VoteSummary, error) {
	if _, _, err := s.requireJoined(ctx, userID, tripID); err != nil {
		return nil, err
	}
	return s.voteRepo.Summary(ctx, tripID)
}

func (s *voteService) ResetAll(ctx context.Context, userID, tripID uuid.UUID) error {
	unlock := s.lock(tripID)
	defer unlock()

	trip, err := s.requireOwner(ctx, userID, tripID)
	if err != nil {
		return err
	}
	if trip.Status != domain.TripStatusVoting {
		return domain.ErrVotingNotOpen
	}

	return s.voteRepo.DeleteAllBallots(ctx, tripID)
}

func (s *voteService) ResetUser(ctx context.Context, ownerID, tripID, userID uuid.UUID) error {
	unlock := s.lock(tripID)
	defer unlock()

	trip, err := s.requireOwner(ctx, ownerID, tripID)
	if err != nil {
		return err
	}
	if trip.Status != domain.TripStatusVoting {
		return domain.ErrVotingNotOpen
	}

	target, err := s.tripRepo.GetParticipant(ctx, tripID, userID)
	if err != nil {
		return err
	}
	if target == nil {
		return domain.ErrNotParticipant
	}

	return s.voteRepo.DeleteBallot(ctx, tripID, userID)
}

// Finalize runs the instant-runoff tally and confirms the trip. Only the
// first call computes anything; calling it again on a confirmed trip
// returns the stored result unchanged.
func (s *voteService) Finalize(ctx context.Context, userID, tripID uuid.UUID) (*domain.TallyResult, error) {
	trip, err := s.requireOwner(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}
	if trip.Status == domain.TripStatusConfirmed {
		return s.tallyRepo.GetResult(ctx, tripID)
	}
	if trip.Status != domain.TripStatusVoting {
		return nil, domain.ErrVotingNotOpen
	}

	v, err, _ := s.finalizeGroup.Do(tripID.String(), func() (interface{}, error) {
		return s.finalize(ctx, tripID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.TallyResult), nil
}

func (s *voteService) finalize(ctx context.Context, tripID uuid.UUID) (*domain.TallyResult, error) {
	unlock := s.lock(tripID)
	defer unlock()

	// A concurrent caller may have finished the tally while this one
	// waited on the lock.
	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.Status == domain.TripStatusConfirmed {
		return s.tallyRepo.GetResult(ctx, tripID)
	}

	result, err := s.computeTally(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if err := s.tallyRepo.SaveResult(ctx, result, result.Winner.DestinationName); err != nil {
		return nil, err
	}

	slog.Info("voting finalized",
		"trip_id", tripID,
		"winner", result.Winner.DestinationName,
		"rounds", len(result.Rounds),
		"voters", result.TotalVoters,
	)

	return result, nil
}

// Results returns the tally for a confirmed trip. Before confirmation the
// owner may preview results once every joined participant has voted or
// skipped; everyone else has to wait for finalize.
func (s *voteService) Results(ctx context.Context, userID, tripID uuid.UUID) (*domain.TallyResult, error) {
	trip, participant, err := s.requireJoined(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}

	if trip.Status == domain.TripStatusConfirmed {
		return s.tallyRepo.GetResult(ctx, tripID)
	}

	if participant.Role != domain.RoleOwner {
		return nil, domain.ErrResultsNotReady
	}

	complete, err := s.votingComplete(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if !complete {
		return nil, domain.ErrResultsNotReady
	}

	return s.computeTally(ctx, tripID)
}

// computeTally runs the instant-runoff count over the trip's current
// ballots without persisting anything or touching the lifecycle.
func (s *voteService) computeTally(ctx context.Context, tripID uuid.UUID) (*domain.TallyResult, error) {
	votes, err := s.voteRepo.GetAllByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if len(votes) == 0 {
		return nil, domain.ErrNoBallots
	}

	recs, err := s.recRepo.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	candidates := make([]tally.Candidate, 0, len(recs))
	recByID := make(map[string]*domain.Recommendation, len(recs))
	for _, rec := range recs {
		candidates = append(candidates, tally.Candidate{
			ID:              rec.ID.String(),
			DestinationName: rec.DestinationName,
		})
		recByID[rec.ID.String()] = rec
	}

	ballots, voters := buildBallots(votes)
	winner, rounds := tally.Count(candidates, ballots)
	if winner == nil {
		return nil, domain.ErrNoBallots
	}

	winningRec := recByID[winner.ID]
	return &domain.TallyResult{
		TripID: tripID,
		Winner: &domain.TallyWinner{
			ID:              winningRec.ID,
			DestinationName: winningRec.DestinationName,
		},
		Rounds:          rounds,
		TotalVoters:     voters,
		TotalCandidates: len(candidates),
		ComputedAt:      time.Now(),
	}, nil
}

func (s *voteService) votingComplete(ctx context.Context, tripID uuid.UUID) (bool, error) {
	participants, err := s.tripRepo.ListParticipants(ctx, tripID)
	if err != nil {
		return false, err
	}
	for _, p := range participants {
		if p.Status != domain.ParticipantJoined {
			continue
		}
		if p.VoteStatus == domain.VoteStatusNotVoted {
			return false, nil
		}
	}
	return true, nil
}

// validateRanking checks that the ballot references distinct candidates of
// this trip and that the ranks form exactly the sequence 1..k.
func (s *voteService) validateRanking(ctx context.Context, tripID uuid.UUID, votes []ports.RankedVote) error {
	if len(votes) == 0 {
		return domain.NewValidationError("votes", "at least one ranked recommendation is required")
	}

	recs, err := s.recRepo.ListByTrip(ctx, tripID)
	if err != nil {
		return err
	}
	valid := make(map[uuid.UUID]bool, len(recs))
	for _, rec := range recs {
		valid[rec.ID] = true
	}

	seen := make(map[uuid.UUID]bool, len(votes))
	ranks := make([]int, 0, len(votes))
	for _, v := range votes {
		if !valid[v.RecommendationID] {
			return domain.ErrRecommendationNotFound
		}
		if seen[v.RecommendationID] {
			return domain.NewValidationError("votes", "duplicate recommendation in ballot")
		}
		seen[v.RecommendationID] = true
		ranks = append(ranks, v.Rank)
	}

	sort.Ints(ranks)
	for i, r := range ranks {
		if r != i+1 {
			return domain.NewValidationError("votes", fmt.Sprintf("ranks must form the sequence 1..%d with no gaps or duplicates", len(votes)))
		}
	}

	return nil
}

func (s *voteService) requireVotingOpen(ctx context.Context, trip *domain.Trip) error {
	if trip.Status != domain.TripStatusVoting {
		return domain.ErrVotingNotOpen
	}

	joined, err := s.tripRepo.CountJoined(ctx, trip.ID)
	if err != nil {
		return err
	}
	if joined < minVoters {
		return domain.ErrNotEnoughParticipants
	}
	return nil
}

func (s *voteService) requireJoined(ctx context.Context, userID, tripID uuid.UUID) (*domain.Trip, *domain.Participant, error) {
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

func (s *voteService) requireOwner(ctx context.Context, userID, tripID uuid.UUID) (*domain.Trip, error) {
	trip, participant, err := s.requireJoined(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}
	if participant.Role != domain.RoleOwner {
		return nil, domain.ErrNotOwner
	}
	return trip, nil
}

// buildBallots groups votes by user and orders each group by rank. It
// returns the ballots and the number of distinct voters.
func buildBallots(votes []domain.Vote) ([]tally.Ballot, int) {
	byUser := make(map[uuid.UUID][]domain.Vote)
	for _, v := range votes {
		byUser[v.UserID] = append(byUser[v.UserID], v)
	}

	ballots := make([]tally.Ballot, 0, len(byUser))
	for _, userVotes := range byUser {
		sort.Slice(userVotes, func(i, j int) bool {
			return userVotes[i].Rank < userVotes[j].Rank
		})
		ranking := make([]string, 0, len(userVotes))
		for _, v := range userVotes {
			ranking = append(ranking, v.RecommendationID.String())
		}
		ballots = append(ballots, tally.Ballot{Ranking: ranking})
	}
	return ballots, len(byUser)
}
