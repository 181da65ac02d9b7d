package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/packvote/api/internal/core/domain"
	"github.com/packvote/api/internal/core/ports"
)

type tallyRepository struct {
	db *sql.DB
}

func NewTallyRepository(db *sql.DB) ports.TallyRepository {
	return &tallyRepository{
		db: db,
	}
}

func (r *tallyRepository) SaveResult(ctx context.Context, result *domain.TallyResult, destinationName string) error {
	rounds, err := json.Marshal(result.Rounds)
	if err != nil {
		return fmt.Errorf("failed to marshal tally rounds: %w", err)
	}

	var (
		winnerID   *uuid.UUID
		winnerName *string
	)
	if result.Winner != nil {
		winnerID = &result.Winner.ID
		winnerName = &result.Winner.DestinationName
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	queryResult := `
		INSERT INTO tally_results (trip_id, winner_id, winner_name, rounds, total_voters, total_candidates)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING computed_at
	`
	err = tx.QueryRowContext(ctx, queryResult,
		result.TripID, winnerID, winnerName, rounds, result.TotalVoters, result.TotalCandidates,
	).Scan(&result.ComputedAt)
	if err != nil {
		return fmt.Errorf("failed to insert tally result: %w", err)
	}

	queryTrip := `
		UPDATE trips
		SET status = $2, destination = $3, updated_at = NOW()
		WHERE id = $1 AND status = $4
	`
	res, err := tx.ExecContext(ctx, queryTrip,
		result.TripID, domain.TripStatusConfirmed, destinationName, domain.TripStatusVoting,
	)
	if err != nil {
		return fmt.Errorf("failed to confirm trip: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrVotingNotOpen
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *tallyRepository) GetResult(ctx context.Context, tripID uuid.UUID) (*domain.TallyResult, error) {
	query := `
		SELECT trip_id, winner_id, winner_name, rounds, total_voters, total_candidates, computed_at
		FROM tally_results
		WHERE trip_id = $1
	`
	var (
		result     domain.TallyResult
		winnerID   *uuid.UUID
		winnerName *string
		rounds     []byte
	)
	err := r.db.QueryRowContext(ctx, query, tripID).Scan(
		&result.TripID, &winnerID, &winnerName, &rounds,
		&result.TotalVoters, &result.TotalCandidates, &result.ComputedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get tally result: %w", err)
	}

	if err := json.Unmarshal(rounds, &result.Rounds); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tally rounds: %w", err)
	}
	if winnerID != nil && winnerName != nil {
		result.Winner = &domain.TallyWinner{ID: *winnerID, DestinationName: *winnerName}
	}
	return &result, nil
}
