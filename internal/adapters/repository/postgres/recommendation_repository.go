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

type recommendationRepository struct {
	db *sql.DB
}

func NewRecommendationRepository(db *sql.DB) ports.RecommendationRepository {
	return &recommendationRepository{
		db: db,
	}
}

func (r *recommendationRepository) Create(ctx context.Context, rec *domain.Recommendation) error {
	activities, accommodations, transport, err := marshalOptions(rec)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO recommendations (id, trip_id, destination_name, description, estimated_cost, activities, accommodation_options, transportation_options, ai_generated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`
	err = r.db.QueryRowContext(ctx, query,
		rec.ID, rec.TripID, rec.DestinationName, rec.Description, rec.EstimatedCost,
		activities, accommodations, transport, rec.AIGenerated,
	).Scan(&rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert recommendation: %w", err)
	}
	return nil
}

func (r *recommendationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Recommendation, error) {
	query := `
		SELECT id, trip_id, destination_name, description, estimated_cost, activities, accommodation_options, transportation_options, ai_generated, created_at
		FROM recommendations
		WHERE id = $1
	`
	rec, err := scanRecommendation(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRecommendationNotFound
		}
		return nil, fmt.Errorf("failed to get recommendation: %w", err)
	}
	return rec, nil
}

func (r *recommendationRepository) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]*domain.Recommendation, error) {
	query := `
		SELECT id, trip_id, destination_name, description, estimated_cost, activities, accommodation_options, transportation_options, ai_generated, created_at
		FROM recommendations
		WHERE trip_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recommendations: %w", err)
	}
	defer rows.Close()

	var recs []*domain.Recommendation
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recommendations: %w", err)
	}
	return recs, nil
}

func (r *recommendationRepository) CountByTrip(ctx context.Context, tripID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recommendations WHERE trip_id = $1`, tripID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count recommendations: %w", err)
	}
	return count, nil
}

func (r *recommendationRepository) Update(ctx context.Context, rec *domain.Recommendation) error {
	activities, accommodations, transport, err := marshalOptions(rec)
	if err != nil {
		return err
	}

	query := `
		UPDATE recommendations
		SET destination_name = $2, description = $3, estimated_cost = $4,
		    activities = $5, accommodation_options = $6, transportation_options = $7
		WHERE id = $1
	`
	_, err = r.db.ExecContext(ctx, query,
		rec.ID, rec.DestinationName, rec.Description, rec.EstimatedCost,
		activities, accommodations, transport,
	)
	if err != nil {
		return fmt.Errorf("failed to update recommendation: %w", err)
	}
	return nil
}

func (r *recommendationRepository) HasVotes(ctx context.Context, recommendationID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM votes WHERE recommendation_id = $1)`, recommendationID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check recommendation votes: %w", err)
	}
	return exists, nil
}

func marshalOptions(rec *domain.Recommendation) ([]byte, []byte, []byte, error) {
	activities, err := json.Marshal(orEmpty(rec.Activities))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal activities: %w", err)
	}
	accommodations, err := json.Marshal(orEmpty(rec.AccommodationOptions))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal accommodation options: %w", err)
	}
	transport, err := json.Marshal(orEmpty(rec.TransportationOptions))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal transportation options: %w", err)
	}
	return activities, accommodations, transport, nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func scanRecommendation(row rowScanner) (*domain.Recommendation, error) {
	var (
		rec            domain.Recommendation
		activities     []byte
		accommodations []byte
		transport      []byte
	)
	err := row.Scan(
		&rec.ID, &rec.TripID, &rec.DestinationName, &rec.Description, &rec.EstimatedCost,
		&activities, &accommodations, &transport, &rec.AIGenerated, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(activities, &rec.Activities); err != nil {
		return nil, fmt.Errorf("failed to unmarshal activities: %w", err)
	}
	if err := json.Unmarshal(accommodations, &rec.AccommodationOptions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal accommodation options: %w", err)
	}
	if err := json.Unmarshal(transport, &rec.TransportationOptions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transportation options: %w", err)
	}
	return &rec, nil
}
