package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/claude/fitlink/internal/coach"
	"github.com/claude/fitlink/internal/link"
	"github.com/claude/fitlink/internal/models"
	"github.com/claude/fitlink/internal/session"
	"github.com/claude/fitlink/internal/snapshot"
)

const testAPIKey = "test-key"

type nopRecorder struct{}

func (nopRecorder) InsertWorkout(context.Context, models.WorkoutRow) (bool, error) {
	return true, nil
}

func (nopRecorder) InsertWorkoutSets(context.Context, []models.WorkoutSetRow) (int64, error) {
	return 0, nil
}

// newTestAPI wires a Server with a live hub and snapshot store but no
// Postgres; only routes that avoid the database are exercised here.
func newTestAPI(t *testing.T, coachClient *coach.Client) *Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	snap, err := snapshot.Open(t.TempDir())
	if err != nil {
		t.Fatalf("snapshot.Open: %v", err)
	}
	t.Cleanup(func() { _ = snap.Close() })

	hub := session.NewHub(nopRecorder{}, 1, log)
	return New(nil, nil, hub, snap, nil, coachClient, testAPIKey, 1, log)
}

func doJSON(t *testing.T, s *Server, method, path string, body any, withKey bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if withKey {
		req.Header.Set("X-API-Key", testAPIKey)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func startBody() map[string]any {
	return map[string]any{
		"name": "Push Day",
		"exercises": []map[string]any{
			{"name": "Bench Press", "sets": 2, "rest_sec": 60},
		},
		"showCountdown": false,
	}
}

// TestSessionStartRequiresAuth verifies session routes sit behind the API key.
func TestSessionStartRequiresAuth(t *testing.T) {
	s := newTestAPI(t, nil)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/session/start", startBody(), false)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

// TestSessionStartAndDrain verifies starting a session queues watch
// messages that a drain request hands over.
func TestSessionStartAndDrain(t *testing.T) {
	s := newTestAPI(t, nil)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/session/start", startBody(), true)
	if rec.Code != http.StatusOK {
		t.Fatalf("start status = %d: %s", rec.Code, rec.Body.String())
	}

	var status session.Status
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatal(err)
	}
	if !status.Active {
		t.Error("session should be active after start")
	}

	rec = doJSON(t, s, http.MethodGet, "/api/v1/session/messages", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("drain status = %d", rec.Code)
	}
	var drained struct {
		Messages []link.Message `json:"messages"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&drained); err != nil {
		t.Fatal(err)
	}
	if len(drained.Messages) == 0 {
		t.Fatal("expected queued messages after start")
	}
	if drained.Messages[0].Kind != link.KindWorkoutStarted {
		t.Errorf("first message = %s, want workout_started", drained.Messages[0].Kind)
	}

	// A second drain finds an empty outbox.
	rec = doJSON(t, s, http.MethodGet, "/api/v1/session/messages", nil, true)
	if err := json.NewDecoder(rec.Body).Decode(&drained); err != nil {
		t.Fatal(err)
	}
	if len(drained.Messages) != 0 {
		t.Errorf("second drain returned %d messages, want 0", len(drained.Messages))
	}
}

// TestSessionDoubleStartConflicts verifies the single-session invariant
// surfaces as 409.
func TestSessionDoubleStartConflicts(t *testing.T) {
	s := newTestAPI(t, nil)

	if rec := doJSON(t, s, http.MethodPost, "/api/v1/session/start", startBody(), true); rec.Code != http.StatusOK {
		t.Fatalf("first start = %d", rec.Code)
	}
	if rec := doJSON(t, s, http.MethodPost, "/api/v1/session/start", startBody(), true); rec.Code != http.StatusConflict {
		t.Errorf("second start = %d, want 409", rec.Code)
	}
}

// TestSessionActionWithoutSession verifies actions on an idle hub are 409.
func TestSessionActionWithoutSession(t *testing.T) {
	s := newTestAPI(t, nil)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/session/action", map[string]string{"action": "pause"}, true)
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

// TestSessionPauseFlow verifies an action round-trips through the hub.
func TestSessionPauseFlow(t *testing.T) {
	s := newTestAPI(t, nil)

	doJSON(t, s, http.MethodPost, "/api/v1/session/start", startBody(), true)
	rec := doJSON(t, s, http.MethodPost, "/api/v1/session/action", map[string]string{"action": "pause"}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var status session.Status
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatal(err)
	}
	if !status.Paused {
		t.Error("session should be paused")
	}
}

// TestSessionReceiveSetCompleted verifies a watch-originated set logs
// through the controller.
func TestSessionReceiveSetCompleted(t *testing.T) {
	s := newTestAPI(t, nil)

	doJSON(t, s, http.MethodPost, "/api/v1/session/start", startBody(), true)

	msg := link.SetCompleted("", 80, 8, time.Now())
	rec := doJSON(t, s, http.MethodPost, "/api/v1/session/messages", msg, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var status session.Status
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatal(err)
	}
	if status.SetsLogged != 1 {
		t.Errorf("sets logged = %d, want 1", status.SetsLogged)
	}
}

// TestSnapshotEndpoint verifies the widget snapshot is readable without auth.
func TestSnapshotEndpoint(t *testing.T) {
	s := newTestAPI(t, nil)

	rec := doJSON(t, s, http.MethodGet, "/api/v1/snapshot", nil, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var snap snapshot.Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	if snap.RecoveryScore != 50 {
		t.Errorf("recovery = %d, want neutral 50", snap.RecoveryScore)
	}
}

// TestCoachProxyCachesOnFailure verifies a transient proxy failure serves
// the last good response with a stale flag.
func TestCoachProxyCachesOnFailure(t *testing.T) {
	fail := false
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"content":"Drink water.","model":"m1","provider":"p"}`))
	}))
	defer upstream.Close()

	s := newTestAPI(t, coach.New(upstream.URL, "p"))
	body := map[string]string{"prompt": "today"}

	rec := doJSON(t, s, http.MethodPost, "/api/v1/coach/tip", body, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Response coach.Response `json:"response"`
		Stale    bool           `json:"stale"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Stale {
		t.Error("fresh response marked stale")
	}

	fail = true
	rec = doJSON(t, s, http.MethodPost, "/api/v1/coach/tip", body, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("degraded status = %d, want 200", rec.Code)
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Stale {
		t.Error("degraded response should be stale")
	}
	if resp.Response.Content != "Drink water." {
		t.Errorf("content = %q, want cached content", resp.Response.Content)
	}
}

// TestCoachProxyNoCacheFails verifies a failure with an empty cache
// surfaces as an error status.
func TestCoachProxyNoCacheFails(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer upstream.Close()

	s := newTestAPI(t, coach.New(upstream.URL, "p"))
	rec := doJSON(t, s, http.MethodPost, "/api/v1/coach/tip", map[string]string{"prompt": "x"}, true)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
}

// TestCoachUnconfigured verifies the proxy reports 503 with no client.
func TestCoachUnconfigured(t *testing.T) {
	s := newTestAPI(t, nil)
	rec := doJSON(t, s, http.MethodPost, "/api/v1/coach/tip", map[string]string{"prompt": "x"}, true)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
