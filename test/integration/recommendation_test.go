package integration

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packvote/api/internal/core/domain"
)

func TestRecommendationPermissions(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	_, ownerToken := app.createUserAndToken(t)
	_, memberToken := app.createUserAndToken(t)

	// Trip with member recommendations disabled
	var trip domain.Trip
	resp := app.doJSON(t, "POST", "/api/trips", ownerToken, map[string]any{
		"title":                        "Owner Curated",
		"allow_member_recommendations": false,
	}, &trip)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = app.doJSON(t, "POST", "/api/join/"+trip.InviteCode, memberToken, nil, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	recsPath := fmt.Sprintf("/api/trips/%s/recommendations", trip.ID)

	// 1. Member is blocked, owner is not
	resp = app.doJSON(t, "POST", recsPath, memberToken, map[string]any{
		"destination_name": "Lisbon",
	}, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	var rec domain.Recommendation
	resp = app.doJSON(t, "POST", recsPath, ownerToken, map[string]any{
		"destination_name": "Lisbon",
		"estimated_cost":   1200.50,
		"activities":       []string{"surfing", "tram 28"},
	}, &rec)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, []string{"surfing", "tram 28"}, rec.Activities)

	// 2. Members can still list
	var recs []domain.Recommendation
	resp = app.doJSON(t, "GET", recsPath, memberToken, nil, &recs)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, recs, 1)
	require.NotNil(t, recs[0].EstimatedCost)
	assert.Equal(t, 1200.50, *recs[0].EstimatedCost)

	// 3. Missing destination name
	resp = app.doJSON(t, "POST", recsPath, ownerToken, map[string]any{
		"description": "nameless",
	}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRecommendationLockedOnceVoted(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	vt := setupVotingTrip(t, app, "Lisbon", "Tokyo")
	recsPath := fmt.Sprintf("/api/trips/%s/recommendations", vt.Trip.ID)

	// 1. Editable while no ballot references it
	var updated domain.Recommendation
	resp := app.doJSON(t, "PUT", fmt.Sprintf("%s/%s", recsPath, vt.Recs[0].ID), vt.OwnerToken, map[string]any{
		"destination_name": "Lisbon, Portugal",
	}, &updated)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Lisbon, Portugal", updated.DestinationName)

	// 2. A cast ballot freezes it
	resp = app.doJSON(t, "POST", fmt.Sprintf("/api/trips/%s/votes", vt.Trip.ID), vt.MemberToken, ballotPayload(vt.Recs, 0, 1), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = app.doJSON(t, "PUT", fmt.Sprintf("%s/%s", recsPath, vt.Recs[0].ID), vt.OwnerToken, map[string]any{
		"destination_name": "Porto",
	}, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}
