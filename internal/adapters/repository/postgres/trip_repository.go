package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/packvote/api/internal/core/domain"
	"github.com/packvote/api/internal/core/ports"
)

type tripRepository struct {
	db *sql.DB
}

func NewTripRepository(db *sql.DB) ports.TripRepository {
	return &tripRepository{
		db: db,
	}
}

func (r *tripRepository) Create(ctx context.Context, trip *domain.Trip, owner *domain.Participant) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	queryTrip := `
		INSERT INTO trips (id, title, description, start_date, end_date, budget_min, budget_max, invite_code, status, allow_member_recommendations, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`
	err = tx.QueryRowContext(ctx, queryTrip,
		trip.ID, trip.Title, trip.Description, trip.StartDate, trip.EndDate,
		trip.BudgetMin, trip.BudgetMax, trip.InviteCode, trip.Status,
		trip.AllowMemberRecommendations, trip.CreatedBy,
	).Scan(&trip.CreatedAt, &trip.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert trip: %w", err)
	}

	queryOwner := `
		INSERT INTO participants (id, trip_id, user_id, role, status, vote_status, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = tx.ExecContext(ctx, queryOwner,
		owner.ID, owner.TripID, owner.UserID, owner.Role, owner.Status, owner.VoteStatus, owner.JoinedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert owner participant: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

const tripColumns = `
	t.id, t.title, t.description, t.destination, t.start_date, t.end_date,
	t.budget_min, t.budget_max, t.invite_code, t.status,
	t.allow_member_recommendations, t.created_by, t.created_at, t.updated_at,
	(SELECT COUNT(*) FROM participants p WHERE p.trip_id = t.id AND p.status = 'joined')
`

func (r *tripRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips t WHERE t.id = $1`

	trip, err := scanTrip(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTripNotFound
		}
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	return trip, nil
}

func (r *tripRepository) GetByInviteCode(ctx context.Context, code string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips t WHERE t.invite_code = $1`

	trip, err := scanTrip(r.db.QueryRowContext(ctx, query, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvalidInviteCode
		}
		return nil, fmt.Errorf("failed to get trip by invite code: %w", err)
	}
	return trip, nil
}

func (r *tripRepository) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Trip, error) {
	query := `
		SELECT ` + tripColumns + `
		FROM trips t
		JOIN participants p ON p.trip_id = t.id
		WHERE p.user_id = $1 AND p.status = 'joined'
		ORDER BY t.created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	defer rows.Close()

	var trips []*domain.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, trip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trips: %w", err)
	}
	return trips, nil
}

func (r *tripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	query := `
		UPDATE trips
		SET title = $2, description = $3, start_date = $4, end_date = $5,
		    budget_min = $6, budget_max = $7, allow_member_recommendations = $8,
		    updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query,
		trip.ID, trip.Title, trip.Description, trip.StartDate, trip.EndDate,
		trip.BudgetMin, trip.BudgetMax, trip.AllowMemberRecommendations,
	)
	if err != nil {
		return fmt.Errorf("failed to update trip: %w", err)
	}
	return nil
}

func (r *tripRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TripStatus) error {
	query := `UPDATE trips SET status = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update trip status: %w", err)
	}
	return nil
}

func (r *tripRepository) GetParticipant(ctx context.Context, tripID, userID uuid.UUID) (*domain.Participant, error) {
	query := `
		SELECT id, trip_id, user_id, role, status, vote_status, invited_at, joined_at
		FROM participants
		WHERE trip_id = $1 AND user_id = $2
	`
	p := &domain.Participant{}
	err := r.db.QueryRowContext(ctx, query, tripID, userID).Scan(
		&p.ID, &p.TripID, &p.UserID, &p.Role, &p.Status, &p.VoteStatus, &p.InvitedAt, &p.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return p, nil
}

func (r *tripRepository) ListParticipants(ctx context.Context, tripID uuid.UUID) ([]domain.Participant, error) {
	query := `
		SELECT p.id, p.trip_id, p.user_id, p.role, p.status, p.vote_status, p.invited_at, p.joined_at, u.name, u.email
		FROM participants p
		JOIN users u ON u.id = p.user_id
		WHERE p.trip_id = $1
		ORDER BY p.invited_at
	`
	rows, err := r.db.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []domain.Participant
	for rows.Next() {
		var p domain.Participant
		if err := rows.Scan(&p.ID, &p.TripID, &p.UserID, &p.Role, &p.Status, &p.VoteStatus, &p.InvitedAt, &p.JoinedAt, &p.UserName, &p.UserEmail); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participants: %w", err)
	}
	return participants, nil
}

func (r *tripRepository) AddParticipant(ctx context.Context, p *domain.Participant) error {
	query := `
		INSERT INTO participants (id, trip_id, user_id, role, status, vote_status, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (trip_id, user_id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, p.ID, p.TripID, p.UserID, p.Role, p.Status, p.VoteStatus, p.JoinedAt)
	if err != nil {
		return fmt.Errorf("failed to add participant: %w", err)
	}
	return nil
}

func (r *tripRepository) CountJoined(ctx context.Context, tripID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM participants WHERE trip_id = $1 AND status = 'joined'`
	var count int
	if err := r.db.QueryRowContext(ctx, query, tripID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count participants: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (*domain.Trip, error) {
	var trip domain.Trip
	err := row.Scan(
		&trip.ID, &trip.Title, &trip.Description, &trip.Destination,
		&trip.StartDate, &trip.EndDate, &trip.BudgetMin, &trip.BudgetMax,
		&trip.InviteCode, &trip.Status, &trip.AllowMemberRecommendations,
		&trip.CreatedBy, &trip.CreatedAt, &trip.UpdatedAt, &trip.ParticipantCount,
	)
	if err != nil {
		return nil, err
	}
	return &trip, nil
}
