package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/claude/fitlink/internal/storage"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleCreateChallenge(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string    `json:"name"`
		Metric      string    `json:"metric"`
		Goal        float64   `json:"goal"`
		StartsAt    time.Time `json:"starts_at"`
		EndsAt      time.Time `json:"ends_at"`
		DisplayName string    `json:"display_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Name == "" || req.Metric == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name and metric are required"})
		return
	}
	if !req.EndsAt.After(req.StartsAt) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "ends_at must be after starts_at"})
		return
	}

	c, err := s.db.CreateChallenge(r.Context(), req.Name, req.Metric, req.Goal, req.StartsAt, req.EndsAt, s.userID, req.DisplayName)
	if err != nil {
		s.log.Error("create challenge", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleJoinChallenge(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InviteCode  string `json:"invite_code"`
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	if err := s.db.JoinChallenge(r.Context(), req.InviteCode, s.userID, req.DisplayName); err != nil {
		if errors.Is(err, storage.ErrChallengeNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown invite code"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	c, err := s.db.GetChallengeByCode(r.Context(), req.InviteCode)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleListChallenges(w http.ResponseWriter, r *http.Request) {
	challenges, err := s.db.ListChallenges(r.Context(), s.userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, challenges)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	entries, err := s.db.Leaderboard(r.Context(), code)
	if err != nil {
		if errors.Is(err, storage.ErrChallengeNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown invite code"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
