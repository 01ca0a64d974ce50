package traininglog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchExerciseHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/exercises/ex-1/history", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"history": [
				{"date":"2026.01.15","sets":[{"weight":60,"reps":8,"rest":90,"order":2}]},
				{"date":"2026.01.12","isSuperset":true,"exercises":[{"exerciseId":"ex-1","sets":[{"weight":55,"reps":10}]}]}
			],
			"note": "pause at the bottom"
		}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(Config{BaseURL: srv.URL, Timeout: 5 * time.Second})
	resp, err := client.FetchExerciseHistory(context.Background(), "ex-1")
	require.NoError(t, err)

	assert.Equal(t, "pause at the bottom", resp.Note)
	require.Len(t, resp.History, 2)
	assert.False(t, resp.History[0].IsSuperset)
	assert.True(t, resp.History[1].IsSuperset)
}

func TestSaveSet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/log/sets", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ex-1", body["exerciseId"])
		assert.Equal(t, 60.0, body["weight"])
		assert.Equal(t, "grp-1", body["setGroupId"])
		assert.Equal(t, 3.0, body["order"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"rowReference":"row-42"}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(Config{BaseURL: srv.URL})
	resp, err := client.SaveSet(context.Background(), SaveSetRequest{
		ExerciseID:      "ex-1",
		EffectiveWeight: 60,
		InputWeight:     "20",
		Reps:            "8",
		GroupID:         "grp-1",
		Order:           3,
	})
	require.NoError(t, err)
	assert.Equal(t, "row-42", resp.RowReference)
}

func TestSaveSetServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "sheet unavailable", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewHTTPClient(Config{BaseURL: srv.URL})
	_, err := client.SaveSet(context.Background(), SaveSetRequest{ExerciseID: "ex-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestUpdateSetAddressing(t *testing.T) {
	var got UpdateSetRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		got = UpdateSetRequest{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(Config{BaseURL: srv.URL})

	// Preferred addressing: row reference.
	err := client.UpdateSet(context.Background(), UpdateSetRequest{
		RowReference:    "row-42",
		EffectiveWeight: 62.5,
		Reps:            "7",
	})
	require.NoError(t, err)
	assert.Equal(t, "row-42", got.RowReference)

	// Fallback addressing: (group, order).
	err = client.UpdateSet(context.Background(), UpdateSetRequest{
		GroupID:         "grp-1",
		Order:           3,
		EffectiveWeight: 62.5,
	})
	require.NoError(t, err)
	assert.Empty(t, got.RowReference)
	assert.Equal(t, "grp-1", got.GroupID)
	assert.Equal(t, 3, got.Order)
}
