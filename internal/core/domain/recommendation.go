package domain

import (
	"time"

	"github.com/google/uuid"
)

type Recommendation struct {
	ID                    uuid.UUID `json:"id"`
	TripID                uuid.UUID `json:"trip_id"`
	DestinationName       string    `json:"destination_name"`
	Description           string    `json:"description,omitempty"`
	EstimatedCost         *float64  `json:"estimated_cost,omitempty"`
	Activities            []string  `json:"activities,omitempty"`
	AccommodationOptions  []string  `json:"accommodation_options,omitempty"`
	TransportationOptions []string  `json:"transportation_options,omitempty"`
	AIGenerated           bool      `json:"ai_generated"`
	CreatedAt             time.Time `json:"created_at"`
}
