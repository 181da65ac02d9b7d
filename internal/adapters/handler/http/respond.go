package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/packvote/api/internal/core/domain"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, errorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}

// respondWithError maps domain errors to HTTP statuses. Anything not
// recognized becomes a 500 with the message hidden from the client.
func respondWithError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		writeError(w, http.StatusBadRequest, validationErr.Error())
		return
	}

	switch {
	case errors.Is(err, domain.ErrTripNotFound),
		errors.Is(err, domain.ErrRecommendationNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrInvalidInviteCode):
		writeError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())

	case errors.Is(err, domain.ErrNotParticipant),
		errors.Is(err, domain.ErrNotOwner):
		writeError(w, http.StatusForbidden, err.Error())

	case errors.Is(err, domain.ErrVotingNotOpen),
		errors.Is(err, domain.ErrTripLocked),
		errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrRecommendationInUse),
		errors.Is(err, domain.ErrResultsNotReady),
		errors.Is(err, domain.ErrNotEnoughParticipants),
		errors.Is(err, domain.ErrNoRecommendations):
		writeError(w, http.StatusConflict, err.Error())

	case errors.Is(err, domain.ErrNoBallots):
		writeError(w, http.StatusUnprocessableEntity, err.Error())

	default:
		slog.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
