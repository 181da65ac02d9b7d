package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/packvote/api/internal/core/domain"
	"github.com/packvote/api/internal/core/ports"
)

type voteRepository struct {
	db *sql.DB
}

func NewVoteRepository(db *sql.DB) ports.VoteRepository {
	return &voteRepository{
		db: db,
	}
}

func (r *voteRepository) ReplaceBallot(ctx context.Context, tripID, userID uuid.UUID, votes []domain.Vote) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `DELETE FROM votes WHERE trip_id = $1 AND user_id = $2`, tripID, userID)
	if err != nil {
		return fmt.Errorf("failed to clear previous ballot: %w", err)
	}

	query := `
		INSERT INTO votes (id, trip_id, user_id, recommendation_id, rank)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, v := range votes {
		if _, err := tx.ExecContext(ctx, query, v.ID, v.TripID, v.UserID, v.RecommendationID, v.Rank); err != nil {
			return fmt.Errorf("failed to insert vote: %w", err)
		}
	}

	err = setVoteStatus(ctx, tx, tripID, userID, domain.VoteStatusVoted)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

const voteColumns = `
	v.id, v.trip_id, v.user_id, v.recommendation_id, v.rank, v.created_at, r.destination_name
`

func (r *voteRepository) GetBallot(ctx context.Context, tripID, userID uuid.UUID) ([]domain.Vote, error) {
	query := `
		SELECT ` + voteColumns + `
		FROM votes v
		JOIN recommendations r ON r.id = v.recommendation_id
		WHERE v.trip_id = $1 AND v.user_id = $2
		ORDER BY v.rank
	`
	rows, err := r.db.QueryContext(ctx, query, tripID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ballot: %w", err)
	}
	defer rows.Close()

	return scanVotes(rows)
}

func (r *voteRepository) GetAllByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Vote, error) {
	query := `
		SELECT ` + voteColumns + `
		FROM votes v
		JOIN recommendations r ON r.id = v.recommendation_id
		WHERE v.trip_id = $1
		ORDER BY v.user_id, v.rank
	`
	rows, err := r.db.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	defer rows.Close()

	return scanVotes(rows)
}

func (r *voteRepository) DeleteBallot(ctx context.Context, tripID, userID uuid.UUID) error {
	return r.clearBallot(ctx, tripID, userID, domain.VoteStatusNotVoted)
}

func (r *voteRepository) SkipBallot(ctx context.Context, tripID, userID uuid.UUID) error {
	return r.clearBallot(ctx, tripID, userID, domain.VoteStatusSkipped)
}

func (r *voteRepository) clearBallot(ctx context.Context, tripID, userID uuid.UUID, status domain.VoteStatus) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `DELETE FROM votes WHERE trip_id = $1 AND user_id = $2`, tripID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete ballot: %w", err)
	}

	if err := setVoteStatus(ctx, tx, tripID, userID, status); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *voteRepository) DeleteAllBallots(ctx context.Context, tripID uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `DELETE FROM votes WHERE trip_id = $1`, tripID)
	if err != nil {
		return fmt.Errorf("failed to delete ballots: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE participants SET vote_status = $2 WHERE trip_id = $1`,
		tripID, domain.VoteStatusNotVoted,
	)
	if err != nil {
		return fmt.Errorf("failed to reset vote statuses: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *voteRepository) Summary(ctx context.Context, tripID uuid.UUID) ([]domain.VoteSummary, error) {
	query := `
		SELECT p.user_id, u.name, p.vote_status IN ('voted', 'skipped'), COUNT(v.id)
		FROM participants p
		JOIN users u ON u.id = p.user_id
		LEFT JOIN votes v ON v.trip_id = p.trip_id AND v.user_id = p.user_id
		WHERE p.trip_id = $1 AND p.status = 'joined'
		GROUP BY p.user_id, u.name, p.vote_status
		ORDER BY u.name
	`
	rows, err := r.db.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to build vote summary: %w", err)
	}
	defer rows.Close()

	var summaries []domain.VoteSummary
	for rows.Next() {
		var s domain.VoteSummary
		if err := rows.Scan(&s.UserID, &s.UserName, &s.HasVoted, &s.VoteCount); err != nil {
			return nil, fmt.Errorf("failed to scan vote summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vote summary: %w", err)
	}
	return summaries, nil
}

func setVoteStatus(ctx context.Context, tx *sql.Tx, tripID, userID uuid.UUID, status domain.VoteStatus) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE participants SET vote_status = $3 WHERE trip_id = $1 AND user_id = $2`,
		tripID, userID, status,
	)
	if err != nil {
		return fmt.Errorf("failed to update vote status: %w", err)
	}
	return nil
}

func scanVotes(rows *sql.Rows) ([]domain.Vote, error) {
	var votes []domain.Vote
	for rows.Next() {
		var v domain.Vote
		if err := rows.Scan(&v.ID, &v.TripID, &v.UserID, &v.RecommendationID, &v.Rank, &v.CreatedAt, &v.DestinationName); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating votes: %w", err)
	}
	return votes, nil
}
