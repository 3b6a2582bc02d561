package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/claude/fitlink/internal/link"
	"github.com/claude/fitlink/internal/models"
	"github.com/claude/fitlink/internal/session"
)

func (s *Server) handleSessionStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		models.WorkoutPlan
		ShowCountdown bool `json:"showCountdown"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	if err := s.hub.Start(req.WorkoutPlan, req.ShowCountdown); err != nil {
		if errors.Is(err, session.ErrSessionActive) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, s.hub.Status())
}

func (s *Server) handleSessionAction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	if err := s.hub.Action(r.Context(), link.Action(req.Action)); err != nil {
		if errors.Is(err, session.ErrNoSession) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, s.hub.Status())
}

func (s *Server) handleSessionSet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WeightKg    float64   `json:"weightKg"`
		Reps        int       `json:"reps"`
		CompletedAt time.Time `json:"completedAt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	if err := s.hub.LogSet(r.Context(), req.WeightKg, req.Reps, req.CompletedAt); err != nil {
		if errors.Is(err, session.ErrNoSession) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, s.hub.Status())
}

func (s *Server) handleSessionHealth(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HeartRate   *float64 `json:"heartRate"`
		Calories    *float64 `json:"calories"`
		BloodOxygen *float64 `json:"bloodOxygen"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	s.hub.UpdateHealth(req.HeartRate, req.Calories, req.BloodOxygen)
	writeJSON(w, http.StatusOK, s.hub.Status())
}

func (s *Server) handleSessionStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.hub.Status())
}

// handleSessionDrain hands the queued phone→watch messages to the watch
// client. Polling this endpoint is what marks the link reachable.
func (s *Server) handleSessionDrain(w http.ResponseWriter, r *http.Request) {
	msgs := s.hub.Drain()
	if msgs == nil {
		msgs = []link.Message{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

func (s *Server) handleSessionReceive(w http.ResponseWriter, r *http.Request) {
	var msg link.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	if err := s.hub.Receive(r.Context(), msg); err != nil {
		if errors.Is(err, session.ErrNoSession) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, s.hub.Status())
}
