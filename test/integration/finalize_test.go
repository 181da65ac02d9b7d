package integration

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packvote/api/internal/core/domain"
)

func TestFinalizeConfirmsTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	vt := setupVotingTrip(t, app, "Lisbon", "Tokyo")
	votesPath := fmt.Sprintf("/api/trips/%s/votes", vt.Trip.ID)

	// Both participants rank Tokyo first, so it wins round one outright.
	resp := app.doJSON(t, "POST", votesPath, vt.OwnerToken, ballotPayload(vt.Recs, 1, 0), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = app.doJSON(t, "POST", votesPath, vt.MemberToken, ballotPayload(vt.Recs, 1, 0), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// 1. Members cannot finalize
	resp = app.doJSON(t, "POST", votesPath+"/finalize", vt.MemberToken, nil, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// 2. Owner finalizes
	var result domain.TallyResult
	resp = app.doJSON(t, "POST", votesPath+"/finalize", vt.OwnerToken, nil, &result)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, result.Winner)
	assert.Equal(t, "Tokyo", result.Winner.DestinationName)
	assert.Equal(t, 2, result.TotalVoters)
	assert.Equal(t, 2, result.TotalCandidates)
	require.Len(t, result.Rounds, 1)
	assert.Equal(t, 2, result.Rounds[0].TotalVotes)

	// 3. Trip is confirmed with the winning destination
	var detail struct {
		Trip domain.Trip `json:"trip"`
	}
	resp = app.doJSON(t, "GET", "/api/trips/"+vt.Trip.ID.String(), vt.MemberToken, nil, &detail)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.TripStatusConfirmed, detail.Trip.Status)
	require.NotNil(t, detail.Trip.Destination)
	assert.Equal(t, "Tokyo", *detail.Trip.Destination)

	// 4. Finalizing again returns the stored result unchanged
	var again domain.TallyResult
	resp = app.doJSON(t, "POST", votesPath+"/finalize", vt.OwnerToken, nil, &again)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, again.Winner)
	assert.Equal(t, result.Winner.ID, again.Winner.ID)
	assert.Equal(t, result.ComputedAt.Unix(), again.ComputedAt.Unix())

	var stored int
	err := app.DB.QueryRow("SELECT COUNT(*) FROM tally_results WHERE trip_id = $1", vt.Trip.ID).Scan(&stored)
	require.NoError(t, err)
	assert.Equal(t, 1, stored)

	// 5. Ballots are frozen after confirmation
	resp = app.doJSON(t, "POST", votesPath, vt.MemberToken, ballotPayload(vt.Recs, 0, 1), nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestFinalizeRunsElimination(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	vt := setupVotingTrip(t, app, "Lisbon", "Tokyo", "Oslo")
	votesPath := fmt.Sprintf("/api/trips/%s/votes", vt.Trip.ID)
	_, thirdToken := app.createUserAndToken(t)
	resp := app.doJSON(t, "POST", "/api/join/"+vt.Trip.InviteCode, thirdToken, nil, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// First choices split 1/1/1, so no majority exists and one candidate
	// is eliminated; the transferred ballot then decides the winner.
	resp = app.doJSON(t, "POST", votesPath, vt.OwnerToken, ballotPayload(vt.Recs, 0, 1, 2), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = app.doJSON(t, "POST", votesPath, vt.MemberToken, ballotPayload(vt.Recs, 1, 0, 2), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = app.doJSON(t, "POST", votesPath, thirdToken, ballotPayload(vt.Recs, 2, 1, 0), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result domain.TallyResult
	resp = app.doJSON(t, "POST", votesPath+"/finalize", vt.OwnerToken, nil, &result)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NotNil(t, result.Winner)
	assert.Equal(t, 3, result.TotalVoters)
	assert.GreaterOrEqual(t, len(result.Rounds), 2, "a three-way tie takes more than one round")

	last := result.Rounds[len(result.Rounds)-1]
	require.NotNil(t, last.Winner)
	assert.Equal(t, result.Winner.ID.String(), *last.Winner)
}

func TestResultsGating(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	vt := setupVotingTrip(t, app, "Lisbon", "Tokyo")
	votesPath := fmt.Sprintf("/api/trips/%s/votes", vt.Trip.ID)

	resp := app.doJSON(t, "POST", votesPath, vt.OwnerToken, ballotPayload(vt.Recs, 0, 1), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// 1. Member still has an open ballot: no preview for anyone
	resp = app.doJSON(t, "GET", votesPath+"/results", vt.OwnerToken, nil, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = app.doJSON(t, "POST", votesPath+"/skip", vt.MemberToken, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// 2. Everyone voted or skipped: owner may preview, member may not
	var preview domain.TallyResult
	resp = app.doJSON(t, "GET", votesPath+"/results", vt.OwnerToken, nil, &preview)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, preview.Winner)
	assert.Equal(t, "Lisbon", preview.Winner.DestinationName)

	resp = app.doJSON(t, "GET", votesPath+"/results", vt.MemberToken, nil, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	// 3. Preview does not confirm the trip
	var detail struct {
		Trip domain.Trip `json:"trip"`
	}
	resp = app.doJSON(t, "GET", "/api/trips/"+vt.Trip.ID.String(), vt.OwnerToken, nil, &detail)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.TripStatusVoting, detail.Trip.Status)

	// 4. After finalize everyone sees the stored result
	resp = app.doJSON(t, "POST", votesPath+"/finalize", vt.OwnerToken, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result domain.TallyResult
	resp = app.doJSON(t, "GET", votesPath+"/results", vt.MemberToken, nil, &result)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, result.Winner)
	assert.Equal(t, "Lisbon", result.Winner.DestinationName)
}
