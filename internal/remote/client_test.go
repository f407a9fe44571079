package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifesprint/sensai/internal/entity"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClientWithHTTP(server.URL, "test-token", server.Client())
}

func TestClient_FetchVelocity(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/velocity", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(entity.VelocityMetrics{
			CurrentVelocity: 18,
			AverageVelocity: 15,
			VelocityTrend:   entity.TrendUp,
		})
	})

	got, err := c.FetchVelocity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 18.0, got.CurrentVelocity)
	assert.Equal(t, entity.TrendUp, got.VelocityTrend)
}

func TestClient_CompleteStandup_PostsBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/standups/today/complete", r.URL.Path)

		var req CompleteStandupRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "good", req.Mood)
		require.Len(t, req.Blockers, 1)

		json.NewEncoder(w).Encode(entity.DailyStandup{
			ID:     "standup-1",
			Status: entity.StandupCompleted,
		})
	})

	got, err := c.CompleteStandup(context.Background(), CompleteStandupRequest{
		Blockers: []entity.StandupBlocker{{ID: "b1", Description: "waiting on docs"}},
		Mood:     "good",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StandupCompleted, got.Status)
}

func TestClient_AcknowledgeIntervention(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/interventions/intv-1/acknowledge", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "override", body["action"])
		assert.Equal(t, "deadline week", body["reason"])

		json.NewEncoder(w).Encode(entity.Intervention{
			ID:           "intv-1",
			Acknowledged: true,
			Overridden:   true,
		})
	})

	got, err := c.AcknowledgeIntervention(context.Background(), "intv-1", entity.ActionOverride, "deadline week")
	require.NoError(t, err)
	assert.True(t, got.Acknowledged)
	assert.True(t, got.Overridden)
}

func TestClient_ServerError_BecomesRemoteFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "sprint service unavailable", "code": "E503"},
		})
	})

	_, err := c.FetchVelocity(context.Background())
	require.Error(t, err)
	require.True(t, IsRemoteFailure(err))

	var rf *RemoteFailure
	require.ErrorAs(t, err, &rf)
	assert.Equal(t, "fetch_velocity", rf.Operation)
	assert.Contains(t, rf.Error(), "sprint service unavailable")
}

func TestClient_ClientErrorWithoutEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})

	_, err := c.FetchStandup(context.Background(), "2026-08-31")
	require.Error(t, err)

	var rf *RemoteFailure
	require.ErrorAs(t, err, &rf)
	assert.Equal(t, "fetch_standup", rf.Operation)
	assert.Contains(t, rf.Error(), "status 404")
}

func TestClient_ConnectionRefused_BecomesRemoteFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	client := NewClientWithHTTP(server.URL, "t", server.Client())
	server.Close() // force connection failure

	_, err := client.FetchMessages(context.Background())
	require.Error(t, err)
	assert.True(t, IsRemoteFailure(err))
}

func TestClient_FetchAnalytics_QueryParam(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "30d", r.URL.Query().Get("period"))
		json.NewEncoder(w).Encode(AnalyticsReport{Period: "30d", CompletedPoints: 55})
	})

	got, err := c.FetchAnalytics(context.Background(), "30d")
	require.NoError(t, err)
	assert.Equal(t, 55, got.CompletedPoints)
}
