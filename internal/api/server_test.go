package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/108city/habit-tracker/internal/models"
	"github.com/108city/habit-tracker/internal/progress"
	"github.com/108city/habit-tracker/internal/storage/sqlite"
	"github.com/108city/habit-tracker/internal/tracker"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := sqlite.NewStore(sqlite.MemoryPath)
	require.NoError(t, store.Init(context.Background()))
	t.Cleanup(func() { store.Close() })

	svc := tracker.New(store,
		tracker.WithClock(func() time.Time { return testNow }),
		tracker.WithLocation(time.UTC),
	)
	return New(svc)
}

func do(t *testing.T, s *Server, method, path string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func createHabit(t *testing.T, s *Server, name string) models.Habit {
	t.Helper()
	resp, body := do(t, s, http.MethodPost, "/api/habits", map[string]interface{}{"name": name})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var h models.Habit
	require.NoError(t, json.Unmarshal(body, &h))
	return h
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	resp, body := do(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestCreateHabit(t *testing.T) {
	s := newTestServer(t)

	h := createHabit(t, s, "Read")
	assert.NotEmpty(t, h.ID)
	assert.Equal(t, "Read", h.Name)
	assert.Equal(t, models.FrequencyDaily, h.FrequencyType)
	assert.True(t, h.IsActive)

	resp, body := do(t, s, http.MethodPost, "/api/habits", map[string]interface{}{
		"name":           "Gym",
		"frequencyType":  "weekly",
		"frequencyValue": 9,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), `"error"`)

	resp, _ = do(t, s, http.MethodPost, "/api/habits", map[string]interface{}{"name": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMalformedBody(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/habits", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHabitLifecycle(t *testing.T) {
	s := newTestServer(t)
	h := createHabit(t, s, "Walk")

	resp, body := do(t, s, http.MethodPatch, "/api/habits/"+h.ID, map[string]interface{}{"name": "Walk 5k"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var updated models.Habit
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, "Walk 5k", updated.Name)

	resp, body = do(t, s, http.MethodPost, "/api/habits/"+h.ID+"/archive", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.False(t, updated.IsActive)

	resp, body = do(t, s, http.MethodGet, "/api/habits?archived=true", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var archived []models.Habit
	require.NoError(t, json.Unmarshal(body, &archived))
	assert.Len(t, archived, 1)

	resp, _ = do(t, s, http.MethodPost, "/api/habits/"+h.ID+"/reactivate", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, s, http.MethodDelete, "/api/habits/"+h.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = do(t, s, http.MethodDelete, "/api/habits/"+h.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), "not found")
}

func TestSetStatus(t *testing.T) {
	s := newTestServer(t)
	h := createHabit(t, s, "Read")
	path := "/api/habits/" + h.ID + "/logs/2026-03-10"

	resp, body := do(t, s, http.MethodPut, path, map[string]string{"status": "completed"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var out entryResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.NotNil(t, out.Entry)
	assert.Equal(t, models.StatusCompleted, out.Entry.Status)

	// same status again clears the day
	resp, body = do(t, s, http.MethodPut, path, map[string]string{"status": "completed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"entry":null}`, string(body))

	resp, _ = do(t, s, http.MethodPut, path, map[string]string{"status": "maybe"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, s, http.MethodPut, "/api/habits/"+h.ID+"/logs/March-10", map[string]string{"status": "completed"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, s, http.MethodPut, "/api/habits/missing/logs/2026-03-10", map[string]string{"status": "completed"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdvanceStatus(t *testing.T) {
	s := newTestServer(t)
	h := createHabit(t, s, "Stretch")
	path := "/api/habits/" + h.ID + "/logs/2026-03-08/advance"

	want := []string{`"completed"`, `"skipped"`, `null`}
	for _, w := range want {
		resp, body := do(t, s, http.MethodPost, path, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
		assert.Contains(t, string(body), w)
	}

	resp, body := do(t, s, http.MethodGet, "/api/habits/"+h.ID+"/logs?from=2026-03-01&to=2026-03-10", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body))
}

func TestSnapshot(t *testing.T) {
	s := newTestServer(t)
	h := createHabit(t, s, "Read")

	resp, _ := do(t, s, http.MethodPut, "/api/habits/"+h.ID+"/logs/2026-03-10", map[string]string{"status": "completed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := do(t, s, http.MethodPost, "/api/milestones", map[string]string{
		"title":     "March",
		"startDate": "2026-03-01",
		"endDate":   "2026-03-31",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var m models.Milestone
	require.NoError(t, json.Unmarshal(body, &m))

	resp, body = do(t, s, http.MethodGet, "/api/snapshot", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snap progress.Snapshot
	require.NoError(t, json.Unmarshal(body, &snap))
	assert.Equal(t, "2026-03-10", snap.Today.String())
	require.Len(t, snap.Habits, 1)
	assert.Equal(t, 100, snap.SuccessRates[h.ID])
	assert.Equal(t, 100, snap.TodayProgress)
	assert.True(t, snap.CelebrationActive)
	require.NotNil(t, snap.ActiveMilestone)
	assert.Equal(t, m.ID, snap.ActiveMilestone.ID)
	assert.Equal(t, 32, snap.MilestoneAggregates[m.ID].TimeProgress)
}

func TestMilestoneEndpoints(t *testing.T) {
	s := newTestServer(t)

	resp, _ := do(t, s, http.MethodPost, "/api/milestones", map[string]string{
		"title":     "Backwards",
		"startDate": "2026-03-10",
		"endDate":   "2026-03-01",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := do(t, s, http.MethodPost, "/api/milestones", map[string]string{
		"title":     "Spring",
		"startDate": "2026-03-20",
		"endDate":   "2026-06-20",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var m models.Milestone
	require.NoError(t, json.Unmarshal(body, &m))

	resp, body = do(t, s, http.MethodPatch, "/api/milestones/"+m.ID, map[string]string{"title": "Spring 2026"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), "Spring 2026")

	resp, body = do(t, s, http.MethodGet, "/api/milestones", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []models.Milestone
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Len(t, list, 1)

	resp, _ = do(t, s, http.MethodDelete, "/api/milestones/"+m.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = do(t, s, http.MethodPatch, "/api/milestones/"+m.ID, map[string]string{"title": "x"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
