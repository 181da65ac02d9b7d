package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/packvote/api/internal/core/domain"
	"github.com/packvote/api/internal/core/ports"
)

type VoteHandler struct {
	service ports.VoteService
}

func NewVoteHandler(service ports.VoteService) *VoteHandler {
	return &VoteHandler{
		service: service,
	}
}

type castVotesRequest struct {
	Votes []ports.RankedVote `json:"votes"`
}

func (h *VoteHandler) CastVotes(w http.ResponseWriter, r *http.Request) {
	userID, tripID, ok := tripRequestIDs(w, r)
	if !ok {
		return
	}

	var req castVotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ballot, err := h.service.Cast(r.Context(), userID, tripID, req.Votes)
	if err != nil {
		respondWithError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ballot)
}

func (h *VoteHandler) GetMyVotes(w http.ResponseWriter, r *http.Request) {
	userID, tripID, ok := tripRequestIDs(w, r)
	if !ok {
		return
	}

	ballot, err := h.service.MyVotes(r.Context(), userID, tripID)
	if err != nil {
		respondWithError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ballot)
}

func (h *VoteHandler) GetAllVotes(w http.ResponseWriter, r *http.Request) {
	userID, tripID, ok := tripRequestIDs(w, r)
	if !ok {
		return
	}

	votes, err := h.service.AllVotes(r.Context(), userID, tripID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	if votes == nil {
		votes = []domain.Vote{}
	}

	writeJSON(w, http.StatusOK, votes)
}

func (h *VoteHandler) WithdrawVotes(w http.ResponseWriter, r *http.Request) {
	userID, tripID, ok := tripRequestIDs(w, r)
	if !ok {
		return
	}

	if err := h.service.Withdraw(r.Context(), userID, tripID); err != nil {
		respondWithError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *VoteHandler) SkipVoting(w http.ResponseWriter, r *http.Request) {
	userID, tripID, ok := tripRequestIDs(w, r)
	if !ok {
		return
	}

	if err := h.service.Skip(r.Context(), userID, tripID); err != nil {
		respondWithError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "skipped"})
}

func (h *VoteHandler) GetVoteSummary(w http.ResponseWriter, r *http.Request) {
	userID, tripID, ok := tripRequestIDs(w, r)
	if !ok {
		return
	}

	summary, err := h.service.Summary(r.Context(), userID, tripID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	if summary == nil {
		summary = []domain.VoteSummary{}
	}

	writeJSON(w, http.StatusOK, summary)
}

func (h *VoteHandler) ResetAllVotes(w http.ResponseWriter, r *http.Request) {
	userID, tripID, ok := tripRequestIDs(w, r)
	if !ok {
		return
	}

	if err := h.service.ResetAll(r.Context(), userID, tripID); err != nil {
		respondWithError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *VoteHandler) ResetUserVotes(w http.ResponseWriter, r *http.Request) {
	ownerID, tripID, ok := tripRequestIDs(w, r)
	if !ok {
		return
	}

	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.service.ResetUser(r.Context(), ownerID, tripID, userID); err != nil {
		respondWithError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *VoteHandler) FinalizeVoting(w http.ResponseWriter, r *http.Request) {
	userID, tripID, ok := tripRequestIDs(w, r)
	if !ok {
		return
	}

	result, err := h.service.Finalize(r.Context(), userID, tripID)
	if err != nil {
		respondWithError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *VoteHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	userID, tripID, ok := tripRequestIDs(w, r)
	if !ok {
		return
	}

	result, err := h.service.Results(r.Context(), userID, tripID)
	if err != nil {
		respondWithError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
