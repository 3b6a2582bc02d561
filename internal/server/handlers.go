package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/claude/fitlink/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// cumulativeMetrics are the metrics summed per day for the latest view.
var cumulativeMetrics = []string{"active_energy", "step_count", "apple_exercise_time"}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var payload models.SyncPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	result, err := s.ingest.Ingest(r.Context(), &payload, s.userID)
	if err != nil {
		s.log.Error("ingest error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	// Fresh data should reach widgets without waiting for the timer.
	if s.refresher != nil {
		if err := s.refresher.Refresh(r.Context()); err != nil {
			s.log.Warn("snapshot refresh after ingest failed", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleLatestMetrics(w http.ResponseWriter, r *http.Request) {
	latest, err := s.db.GetLatestSamples(r.Context(), s.userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	sums, err := s.db.GetDailySums(r.Context(), s.userID, cumulativeMetrics, 1)
	if err != nil {
		s.log.Warn("daily sums failed", "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"latest":     latest,
		"daily_sums": sums,
	})
}

func (s *Server) handleQueryMetrics(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name parameter required"})
		return
	}

	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	rows, err := s.db.QueryHealthSamples(r.Context(), name, start, end, s.userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleMetricStats(w http.ResponseWriter, r *http.Request) {
	metric := r.URL.Query().Get("metric")
	if metric == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "metric parameter required"})
		return
	}

	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	stats, err := s.db.GetMetricStats(r.Context(), metric, start, end, s.userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleTimeSeries(w http.ResponseWriter, r *http.Request) {
	metric := r.URL.Query().Get("metric")
	if metric == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "metric parameter required"})
		return
	}

	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	agg := r.URL.Query().Get("agg")
	bucket := "1 day"
	switch agg {
	case "hourly":
		bucket = "1 hour"
	case "weekly":
		bucket = "1 week"
	case "monthly":
		bucket = "1 month"
	case "daily", "":
		bucket = "1 day"
	}

	points, err := s.db.GetTimeSeries(r.Context(), metric, start, end, bucket, s.userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleAllowlist(w http.ResponseWriter, r *http.Request) {
	metrics, err := s.db.GetAllowedMetrics(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}

func (s *Server) handleQuerySleep(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	sessions, err := s.db.QuerySleepSessions(r.Context(), start, end, s.userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	stages, err := s.db.QuerySleepStages(r.Context(), start, end, s.userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": sessions,
		"stages":   stages,
	})
}

func (s *Server) handleQueryWorkouts(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	nameFilter := r.URL.Query().Get("name")
	workouts, err := s.db.QueryWorkouts(r.Context(), start, end, s.userID, nameFilter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) handleQueryWorkoutSets(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	exerciseFilter := r.URL.Query().Get("exercise")
	sets, err := s.db.QueryWorkoutSets(r.Context(), start, end, s.userID, exerciseFilter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sets)
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	workoutID, err := uuid.Parse(idStr)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return
	}

	detail, err := s.db.GetWorkout(r.Context(), workoutID, s.userID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleRecovery(w http.ResponseWriter, r *http.Request) {
	score, err := s.db.GetRecoveryScore(r.Context(), s.userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, score)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snap.Get()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleAddWater(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Ounces float64 `json:"ounces"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Ounces <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "ounces must be positive"})
		return
	}

	row := models.WaterIntakeRow{
		Time:   time.Now().UTC(),
		UserID: s.userID,
		Ounces: req.Ounces,
		Source: "api",
	}
	if err := s.db.AddWater(r.Context(), row); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	// Bump the widget snapshot immediately so the intent round-trips
	// without waiting for the next timed refresh.
	snap, err := s.snap.AddWater(req.Ounces)
	if err != nil {
		s.log.Warn("snapshot water update failed", "error", err)
		writeJSON(w, http.StatusOK, map[string]any{"ounces": req.Ounces})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		// Default: last 7 days
		end = time.Now()
		start = end.AddDate(0, 0, -7)
		return
	}

	start, err = time.Parse(time.RFC3339, startStr)
	if err != nil {
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	if endStr == "" {
		end = time.Now()
	} else {
		end, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			end, err = time.Parse("2006-01-02", endStr)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			// End of day for date-only
			end = end.Add(24 * time.Hour)
		}
	}
	return
}
