package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/packvote/api/internal/core/domain"
	"github.com/packvote/api/internal/core/ports"
)

type RecommendationHandler struct {
	service ports.RecommendationService
}

func NewRecommendationHandler(service ports.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{
		service: service,
	}
}

type recommendationRequest struct {
	DestinationName       string   `json:"destination_name"`
	Description           string   `json:"description"`
	EstimatedCost         *float64 `json:"estimated_cost"`
	Activities            []string `json:"activities"`
	AccommodationOptions  []string `json:"accommodation_options"`
	TransportationOptions []string `json:"transportation_options"`
	AIGenerated           bool     `json:"ai_generated"`
}

func (r recommendationRequest) toInput() ports.RecommendationInput {
	return ports.RecommendationInput{
		DestinationName:       r.DestinationName,
		Description:           r.Description,
		EstimatedCost:         r.EstimatedCost,
		Activities:            r.Activities,
		AccommodationOptions:  r.AccommodationOptions,
		TransportationOptions: r.TransportationOptions,
		AIGenerated:           r.AIGenerated,
	}
}

func (h *RecommendationHandler) AddRecommendation(w http.ResponseWriter, r *http.Request) {
	userID, tripID, ok := tripRequestIDs(w, r)
	if !ok {
		return
	}

	var req recommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.service.Add(r.Context(), userID, tripID, req.toInput())
	if err != nil {
		respondWithError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, rec)
}

func (h *RecommendationHandler) ListRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, tripID, ok := tripRequestIDs(w, r)
	if !ok {
		return
	}

	recs, err := h.service.List(r.Context(), userID, tripID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	if recs == nil {
		recs = []*domain.Recommendation{}
	}

	writeJSON(w, http.StatusOK, recs)
}

func (h *RecommendationHandler) UpdateRecommendation(w http.ResponseWriter, r *http.Request) {
	userID, tripID, ok := tripRequestIDs(w, r)
	if !ok {
		return
	}

	recID, err := uuid.Parse(chi.URLParam(r, "recID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid recommendation id")
		return
	}

	var req recommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.service.Update(r.Context(), userID, tripID, recID, req.toInput())
	if err != nil {
		respondWithError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}
