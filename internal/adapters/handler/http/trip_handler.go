package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/packvote/api/internal/core/domain"
	"github.com/packvote/api/internal/core/ports"
)

type TripHandler struct {
	service ports.TripService
}

func NewTripHandler(service ports.TripService) *TripHandler {
	return &TripHandler{
		service: service,
	}
}

type createTripRequest struct {
	Title                      string     `json:"title"`
	Description                string     `json:"description"`
	StartDate                  *time.Time `json:"start_date"`
	EndDate                    *time.Time `json:"end_date"`
	BudgetMin                  *float64   `json:"budget_min"`
	BudgetMax                  *float64   `json:"budget_max"`
	AllowMemberRecommendations *bool      `json:"allow_member_recommendations"`
}

type updateTripRequest struct {
	Title                      *string    `json:"title"`
	Description                *string    `json:"description"`
	StartDate                  *time.Time `json:"start_date"`
	EndDate                    *time.Time `json:"end_date"`
	BudgetMin                  *float64   `json:"budget_min"`
	BudgetMax                  *float64   `json:"budget_max"`
	AllowMemberRecommendations *bool      `json:"allow_member_recommendations"`
}

type tripResponse struct {
	Trip         *domain.Trip         `json:"trip"`
	Participants []domain.Participant `json:"participants,omitempty"`
}

type joinTripResponse struct {
	Trip          *domain.Trip `json:"trip"`
	AlreadyMember bool         `json:"already_member"`
}

func (h *TripHandler) CreateTrip(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	var req createTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := ports.CreateTripInput{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		BudgetMin:   req.BudgetMin,
		BudgetMax:   req.BudgetMax,

		// Member recommendations default to on unless explicitly disabled.
		AllowMemberRecommendations: req.AllowMemberRecommendations == nil || *req.AllowMemberRecommendations,
	}

	trip, err := h.service.Create(r.Context(), userID, input)
	if err != nil {
		respondWithError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, trip)
}

func (h *TripHandler) ListTrips(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	trips, err := h.service.List(r.Context(), userID, limit, offset)
	if err != nil {
		respondWithError(w, err)
		return
	}
	if trips == nil {
		trips = []*domain.Trip{}
	}

	writeJSON(w, http.StatusOK, trips)
}

func (h *TripHandler) GetTrip(w http.ResponseWriter, r *http.Request) {
	userID, tripID, ok := tripRequestIDs(w, r)
	if !ok {
		return
	}

	trip, participants, err := h.service.Get(r.Context(), userID, tripID)
	if err != nil {
		respondWithError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tripResponse{Trip: trip, Participants: participants})
}

func (h *TripHandler) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	userID, tripID, ok := tripRequestIDs(w, r)
	if !ok {
		return
	}

	var req updateTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := ports.UpdateTripInput{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		BudgetMin:   req.BudgetMin,
		BudgetMax:   req.BudgetMax,

		AllowMemberRecommendations: req.AllowMemberRecommendations,
	}

	trip, err := h.service.Update(r.Context(), userID, tripID, input)
	if err != nil {
		respondWithError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, trip)
}

func (h *TripHandler) CancelTrip(w http.ResponseWriter, r *http.Request) {
	userID, tripID, ok := tripRequestIDs(w, r)
	if !ok {
		return
	}

	trip, err := h.service.Cancel(r.Context(), userID, tripID)
	if err != nil {
		respondWithError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, trip)
}

func (h *TripHandler) OpenVoting(w http.ResponseWriter, r *http.Request) {
	userID, tripID, ok := tripRequestIDs(w, r)
	if !ok {
		return
	}

	trip, err := h.service.OpenVoting(r.Context(), userID, tripID)
	if err != nil {
		respondWithError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, trip)
}

func (h *TripHandler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	userID, tripID, ok := tripRequestIDs(w, r)
	if !ok {
		return
	}

	participants, err := h.service.Participants(r.Context(), userID, tripID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	if participants == nil {
		participants = []domain.Participant{}
	}

	writeJSON(w, http.StatusOK, participants)
}

func (h *TripHandler) JoinTrip(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	inviteCode := chi.URLParam(r, "inviteCode")
	if inviteCode == "" {
		writeError(w, http.StatusBadRequest, "missing invite code")
		return
	}

	trip, alreadyMember, err := h.service.Join(r.Context(), userID, inviteCode)
	if err != nil {
		respondWithError(w, err)
		return
	}

	status := http.StatusCreated
	if alreadyMember {
		status = http.StatusOK
	}
	writeJSON(w, status, joinTripResponse{Trip: trip, AlreadyMember: alreadyMember})
}

// tripRequestIDs pulls the authenticated user id from the context and the
// trip id from the URL, writing the error response itself on failure.
func tripRequestIDs(w http.ResponseWriter, r *http.Request) (userID, tripID uuid.UUID, ok bool) {
	userID, ok = userIDFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return uuid.Nil, uuid.Nil, false
	}

	tripID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid trip id")
		return uuid.Nil, uuid.Nil, false
	}

	return userID, tripID, true
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
