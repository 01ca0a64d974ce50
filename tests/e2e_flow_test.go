package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/mansoorceksport/liftlog/internal/config"
	"github.com/mansoorceksport/liftlog/internal/domain"
	"github.com/mansoorceksport/liftlog/internal/infrastructure/traininglog"
	"github.com/mansoorceksport/liftlog/internal/server"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTrainingLog is a stand-in for the spreadsheet-backed log service.
type fakeTrainingLog struct {
	mu      sync.Mutex
	saves   []map[string]any
	updates []map[string]any
	history string
}

func (f *fakeTrainingLog) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/exercises/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		payload := f.history
		f.mu.Unlock()
		if payload == "" {
			payload = `{"history":[],"note":""}`
		}
		_, _ = w.Write([]byte(payload))
	})
	mux.HandleFunc("/api/log/sets", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		defer f.mu.Unlock()
		switch r.Method {
		case http.MethodPost:
			f.saves = append(f.saves, body)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"rowReference":"row-1"}`))
		case http.MethodPatch:
			f.updates = append(f.updates, body)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	return mux
}

func (f *fakeTrainingLog) savedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saves)
}

func (f *fakeTrainingLog) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

func testConfig(logURL string) *config.Config {
	cfg := &config.Config{}
	cfg.Server.Port = "0"
	cfg.TrainingLog.BaseURL = logURL
	cfg.Engine.EditDebounce = 30 * time.Millisecond
	cfg.Engine.IdleThreshold = 4 * time.Hour
	cfg.Engine.SnapshotTTL = 24 * time.Hour
	return cfg
}

func TestWorkoutFlow(t *testing.T) {
	// 1. Setup Infrastructure
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	remote := &fakeTrainingLog{}
	logServer := httptest.NewServer(remote.handler())
	defer logServer.Close()

	cfg := testConfig(logServer.URL)

	// 2. Initialize App
	app, _ := server.NewApp(server.AppDependencies{
		Config:      cfg,
		RedisClient: redisClient,
		LogClient:   traininglog.NewHTTPClient(traininglog.Config{BaseURL: logServer.URL}),
	})

	// Helper for requests
	request := func(method, path string, body interface{}) *http.Response {
		var bodyReader io.Reader
		if body != nil {
			jsonBytes, _ := json.Marshal(body)
			bodyReader = bytes.NewReader(jsonBytes)
		}
		req, _ := http.NewRequest(method, path, bodyReader)
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}

	decode := func(resp *http.Response, out any) {
		t.Helper()
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
		_ = resp.Body.Close()
	}

	// ==========================================
	// STEP 1: No session yet
	// ==========================================
	resp := request("GET", "/v1/session/", nil)
	assert.Equal(t, 200, resp.StatusCode)
	var sessionView struct {
		Active  bool                   `json:"active"`
		Session *domain.WorkoutSession `json:"session"`
	}
	decode(resp, &sessionView)
	assert.False(t, sessionView.Active)

	// ==========================================
	// STEP 2: Activate two exercises (superset)
	// ==========================================
	resp = request("POST", "/v1/session/exercises", domain.Exercise{
		ID: "ex-bench", Name: "Bench Press", InputType: domain.InputBarbell,
	})
	assert.Equal(t, 201, resp.StatusCode)
	var bench domain.ExerciseSession
	decode(resp, &bench)
	require.Len(t, bench.Sets, 1)

	resp = request("POST", "/v1/session/exercises", domain.Exercise{
		ID: "ex-row", Name: "Cable Row", InputType: domain.InputMachine,
	})
	assert.Equal(t, 201, resp.StatusCode)
	var row domain.ExerciseSession
	decode(resp, &row)

	// ==========================================
	// STEP 3: Complete a set in each exercise
	// ==========================================
	benchSet := bench.Sets[0].ID
	resp = request("PATCH", "/v1/session/exercises/ex-bench/sets/"+benchSet,
		map[string]string{"weight": "20", "reps": "8"})
	assert.Equal(t, 200, resp.StatusCode)
	_ = resp.Body.Close()

	// Completing without reps must be refused and consume nothing.
	rowSet := row.Sets[0].ID
	resp = request("POST", "/v1/session/exercises/ex-row/sets/"+rowSet+"/complete", nil)
	assert.Equal(t, 422, resp.StatusCode)
	_ = resp.Body.Close()

	resp = request("POST", "/v1/session/exercises/ex-bench/sets/"+benchSet+"/complete", nil)
	assert.Equal(t, 200, resp.StatusCode)
	var completedBench domain.WorkoutSet
	decode(resp, &completedBench)
	assert.True(t, completedBench.Completed)
	assert.Equal(t, 0, completedBench.Order)
	require.NotNil(t, completedBench.EffectiveWeight)
	assert.Equal(t, 60.0, *completedBench.EffectiveWeight)

	resp = request("PATCH", "/v1/session/exercises/ex-row/sets/"+rowSet,
		map[string]string{"weight": "55", "reps": "12"})
	assert.Equal(t, 200, resp.StatusCode)
	_ = resp.Body.Close()
	resp = request("POST", "/v1/session/exercises/ex-row/sets/"+rowSet+"/complete", nil)
	assert.Equal(t, 200, resp.StatusCode)
	var completedRow domain.WorkoutSet
	decode(resp, &completedRow)
	assert.Equal(t, 1, completedRow.Order, "orders increase across the superset")
	assert.Equal(t, completedBench.GroupID, completedRow.GroupID, "superset shares one group id")

	require.Eventually(t, func() bool {
		return remote.savedCount() == 2
	}, time.Second, 10*time.Millisecond)

	// Rest stopwatch is running after a completion.
	resp = request("GET", "/v1/session/rest-timer", nil)
	var timer struct {
		Running bool `json:"running"`
	}
	decode(resp, &timer)
	assert.True(t, timer.Running)

	// ==========================================
	// STEP 4: Edit the completed bench set
	// ==========================================
	resp = request("POST", "/v1/session/exercises/ex-bench/sets/"+benchSet+"/edit", nil)
	assert.Equal(t, 200, resp.StatusCode)
	_ = resp.Body.Close()

	resp = request("PATCH", "/v1/session/exercises/ex-bench/sets/"+benchSet,
		map[string]string{"weight": "25"})
	assert.Equal(t, 200, resp.StatusCode)
	_ = resp.Body.Close()

	require.Eventually(t, func() bool {
		return remote.updateCount() == 1
	}, time.Second, 10*time.Millisecond)

	// ==========================================
	// STEP 5: Session survives a restart (snapshot restore)
	// ==========================================
	app2, restoredService := server.NewApp(server.AppDependencies{
		Config:      cfg,
		RedisClient: redisClient,
		LogClient:   traininglog.NewHTTPClient(traininglog.Config{BaseURL: logServer.URL}),
	})
	require.NoError(t, restoredService.Restore(context.Background()))

	req, _ := http.NewRequest("GET", "/v1/session/", nil)
	resp, err = app2.Test(req, -1)
	require.NoError(t, err)
	decode(resp, &sessionView)
	require.True(t, sessionView.Active)
	assert.ElementsMatch(t, []string{"ex-bench", "ex-row"}, sessionView.Session.ActiveExerciseIDs)
	assert.True(t, sessionView.Session.Exercises["ex-bench"].Sets[0].Completed)

	// ==========================================
	// STEP 6: Finish clears everything
	// ==========================================
	resp = request("POST", "/v1/session/finish", nil)
	assert.Equal(t, 200, resp.StatusCode)
	_ = resp.Body.Close()

	resp = request("GET", "/v1/session/", nil)
	decode(resp, &sessionView)
	assert.False(t, sessionView.Active)

	keys := mr.Keys()
	assert.NotContains(t, keys, "liftlog:session:snapshot")
}

func TestHistorySeedingFlow(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	remote := &fakeTrainingLog{history: `{
		"history": [
			{"date":"2026.03.10","sets":[{"weight":60,"reps":8,"rest":90},{"weight":60,"reps":6,"rest":120}]}
		],
		"note": "elbows in"
	}`}
	logServer := httptest.NewServer(remote.handler())
	defer logServer.Close()

	cfg := testConfig(logServer.URL)
	app, sessionService := server.NewApp(server.AppDependencies{
		Config:      cfg,
		RedisClient: redisClient,
		LogClient:   traininglog.NewHTTPClient(traininglog.Config{BaseURL: logServer.URL}),
	})

	body, _ := json.Marshal(domain.Exercise{ID: "ex-bench", Name: "Bench Press", InputType: domain.InputBarbell})
	req, _ := http.NewRequest("POST", "/v1/session/exercises", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 201, resp.StatusCode)
	_ = resp.Body.Close()

	require.Eventually(t, func() bool {
		session := sessionService.Session()
		return session != nil && session.Exercises["ex-bench"].HistoryLoaded
	}, time.Second, 10*time.Millisecond)

	ex := sessionService.Session().Exercises["ex-bench"]
	require.Len(t, ex.Sets, 2)
	assert.Equal(t, "20", ex.Sets[0].Weight, "effective 60 redisplays as barbell input 20")
	require.NotNil(t, ex.Sets[0].BaselineWeight)
	assert.Equal(t, 60.0, *ex.Sets[0].BaselineWeight)
	assert.Equal(t, "elbows in", ex.Note)
}
