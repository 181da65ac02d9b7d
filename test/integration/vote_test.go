package integration

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packvote/api/internal/core/domain"
)

// votingTrip is a trip already in the voting state with the given number of
// destination recommendations and two joined users.
type votingTrip struct {
	Trip        domain.Trip
	Recs        []domain.Recommendation
	OwnerID     uuid.UUID
	OwnerToken  string
	MemberID    uuid.UUID
	MemberToken string
}

func setupVotingTrip(t *testing.T, app *TestApp, destinations ...string) *votingTrip {
	t.Helper()

	ownerID, ownerToken := app.createUserAndToken(t)
	memberID, memberToken := app.createUserAndToken(t)

	var trip domain.Trip
	resp := app.doJSON(t, "POST", "/api/trips", ownerToken, map[string]any{
		"title": "Voting Trip",
	}, &trip)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	recs := make([]domain.Recommendation, 0, len(destinations))
	for _, dest := range destinations {
		var rec domain.Recommendation
		resp = app.doJSON(t, "POST", fmt.Sprintf("/api/trips/%s/recommendations", trip.ID), ownerToken, map[string]any{
			"destination_name": dest,
		}, &rec)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		recs = append(recs, rec)
	}

	resp = app.doJSON(t, "POST", "/api/join/"+trip.InviteCode, memberToken, nil, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = app.doJSON(t, "POST", fmt.Sprintf("/api/trips/%s/voting/open", trip.ID), ownerToken, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	return &votingTrip{
		Trip:        trip,
		Recs:        recs,
		OwnerID:     ownerID,
		OwnerToken:  ownerToken,
		MemberID:    memberID,
		MemberToken: memberToken,
	}
}

func ballotPayload(recs []domain.Recommendation, order ...int) map[string]any {
	votes := make([]map[string]any, 0, len(order))
	for rank, idx := range order {
		votes = append(votes, map[string]any{
			"recommendation_id": recs[idx].ID,
			"rank":              rank + 1,
		})
	}
	return map[string]any{"votes": votes}
}

func TestCastAndReadBallot(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	vt := setupVotingTrip(t, app, "Lisbon", "Tokyo", "Oslo")
	votesPath := fmt.Sprintf("/api/trips/%s/votes", vt.Trip.ID)

	// 1. Before voting the ballot is empty, not missing
	var ballot []domain.Vote
	resp := app.doJSON(t, "GET", votesPath+"/my-votes", vt.MemberToken, nil, &ballot)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, ballot)

	// 2. Cast a full ranking
	resp = app.doJSON(t, "POST", votesPath, vt.MemberToken, ballotPayload(vt.Recs, 1, 0, 2), &ballot)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Len(t, ballot, 3)
	assert.Equal(t, vt.Recs[1].ID, ballot[0].RecommendationID)
	assert.Equal(t, 1, ballot[0].Rank)
	assert.Equal(t, "Tokyo", ballot[0].DestinationName)

	// 3. Re-casting replaces the whole ballot
	resp = app.doJSON(t, "POST", votesPath, vt.MemberToken, ballotPayload(vt.Recs, 2, 0), &ballot)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Len(t, ballot, 2)
	assert.Equal(t, vt.Recs[2].ID, ballot[0].RecommendationID)

	var count int
	err := app.DB.QueryRow("SELECT COUNT(*) FROM votes WHERE trip_id = $1 AND user_id = $2", vt.Trip.ID, vt.MemberID).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// 4. All votes includes only actual ballots
	var all []domain.Vote
	resp = app.doJSON(t, "GET", votesPath, vt.OwnerToken, nil, &all)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, all, 2)
}

func TestBallotValidation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	vt := setupVotingTrip(t, app, "Lisbon", "Tokyo")
	votesPath := fmt.Sprintf("/api/trips/%s/votes", vt.Trip.ID)

	// 1. Empty ballot
	resp := app.doJSON(t, "POST", votesPath, vt.MemberToken, map[string]any{"votes": []any{}}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// 2. Gapped ranks
	resp = app.doJSON(t, "POST", votesPath, vt.MemberToken, map[string]any{
		"votes": []map[string]any{
			{"recommendation_id": vt.Recs[0].ID, "rank": 1},
			{"recommendation_id": vt.Recs[1].ID, "rank": 3},
		},
	}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// 3. Duplicate recommendation
	resp = app.doJSON(t, "POST", votesPath, vt.MemberToken, map[string]any{
		"votes": []map[string]any{
			{"recommendation_id": vt.Recs[0].ID, "rank": 1},
			{"recommendation_id": vt.Recs[0].ID, "rank": 2},
		},
	}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// 4. Recommendation from another trip
	resp = app.doJSON(t, "POST", votesPath, vt.MemberToken, map[string]any{
		"votes": []map[string]any{
			{"recommendation_id": uuid.New(), "rank": 1},
		},
	}, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	// 5. Non-participants cannot vote
	_, strangerToken := app.createUserAndToken(t)
	resp = app.doJSON(t, "POST", votesPath, strangerToken, ballotPayload(vt.Recs, 0), nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestVotingNotOpen(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	_, ownerToken := app.createUserAndToken(t)

	var trip domain.Trip
	resp := app.doJSON(t, "POST", "/api/trips", ownerToken, map[string]any{
		"title": "Still Planning",
	}, &trip)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var rec domain.Recommendation
	resp = app.doJSON(t, "POST", fmt.Sprintf("/api/trips/%s/recommendations", trip.ID), ownerToken, map[string]any{
		"destination_name": "Lisbon",
	}, &rec)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Voting has not been opened, casting is a state conflict.
	resp = app.doJSON(t, "POST", fmt.Sprintf("/api/trips/%s/votes", trip.ID), ownerToken, map[string]any{
		"votes": []map[string]any{{"recommendation_id": rec.ID, "rank": 1}},
	}, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestSkipAndWithdraw(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	vt := setupVotingTrip(t, app, "Lisbon", "Tokyo")
	votesPath := fmt.Sprintf("/api/trips/%s/votes", vt.Trip.ID)

	resp := app.doJSON(t, "POST", votesPath, vt.MemberToken, ballotPayload(vt.Recs, 0, 1), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// 1. Skip clears the ballot and marks the participant skipped
	resp = app.doJSON(t, "POST", votesPath+"/skip", vt.MemberToken, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var ballot []domain.Vote
	resp = app.doJSON(t, "GET", votesPath+"/my-votes", vt.MemberToken, nil, &ballot)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, ballot)

	var voteStatus string
	err := app.DB.QueryRow("SELECT vote_status FROM participants WHERE trip_id = $1 AND user_id = $2", vt.Trip.ID, vt.MemberID).Scan(&voteStatus)
	require.NoError(t, err)
	assert.Equal(t, "skipped", voteStatus)

	// 2. Withdraw resets a cast ballot back to not_voted
	resp = app.doJSON(t, "POST", votesPath, vt.OwnerToken, ballotPayload(vt.Recs, 1, 0), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = app.doJSON(t, "DELETE", votesPath, vt.OwnerToken, nil, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	err = app.DB.QueryRow("SELECT vote_status FROM participants WHERE trip_id = $1 AND user_id = $2", vt.Trip.ID, vt.OwnerID).Scan(&voteStatus)
	require.NoError(t, err)
	assert.Equal(t, "not_voted", voteStatus)
}

func TestVoteSummaryAndReset(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	vt := setupVotingTrip(t, app, "Lisbon", "Tokyo")
	votesPath := fmt.Sprintf("/api/trips/%s/votes", vt.Trip.ID)

	resp := app.doJSON(t, "POST", votesPath, vt.MemberToken, ballotPayload(vt.Recs, 0, 1), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// 1. Summary shows per-participant progress without ballot contents
	var summary []domain.VoteSummary
	resp = app.doJSON(t, "GET", votesPath+"/summary", vt.OwnerToken, nil, &summary)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, summary, 2)

	byUser := make(map[uuid.UUID]domain.VoteSummary, len(summary))
	for _, s := range summary {
		byUser[s.UserID] = s
	}
	assert.True(t, byUser[vt.MemberID].HasVoted)
	assert.Equal(t, 2, byUser[vt.MemberID].VoteCount)
	assert.False(t, byUser[vt.OwnerID].HasVoted)

	// 2. Skipping counts as done, with an empty ballot
	resp = app.doJSON(t, "POST", votesPath+"/skip", vt.OwnerToken, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = app.doJSON(t, "GET", votesPath+"/summary", vt.OwnerToken, nil, &summary)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	byUser = make(map[uuid.UUID]domain.VoteSummary, len(summary))
	for _, s := range summary {
		byUser[s.UserID] = s
	}
	assert.True(t, byUser[vt.OwnerID].HasVoted)
	assert.Equal(t, 0, byUser[vt.OwnerID].VoteCount)

	// 3. Owner resets one member's ballot
	resp = app.doJSON(t, "DELETE", fmt.Sprintf("%s/%s", votesPath, vt.MemberID), vt.OwnerToken, nil, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	var count int
	err := app.DB.QueryRow("SELECT COUNT(*) FROM votes WHERE trip_id = $1", vt.Trip.ID).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// 4. Members cannot reset everything
	resp = app.doJSON(t, "POST", votesPath+"/reset", vt.MemberToken, nil, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// 5. Owner can
	resp = app.doJSON(t, "POST", votesPath, vt.MemberToken, ballotPayload(vt.Recs, 0, 1), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = app.doJSON(t, "POST", votesPath+"/reset", vt.OwnerToken, nil, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	err = app.DB.QueryRow("SELECT COUNT(*) FROM votes WHERE trip_id = $1", vt.Trip.ID).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
