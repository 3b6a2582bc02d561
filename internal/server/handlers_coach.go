package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/claude/fitlink/internal/coach"
)

// coachCache remembers the last successful response per endpoint so
// transient proxy failures degrade to stale content instead of errors.
type coachCache struct {
	mu   sync.Mutex
	last map[string]*coach.Response
}

func (c *coachCache) get(kind string) *coach.Response {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last[kind]
}

func (c *coachCache) put(kind string, resp *coach.Response) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		c.last = map[string]*coach.Response{}
	}
	c.last[kind] = resp
}

type coachRequest struct {
	Prompt       string `json:"prompt"`
	SystemPrompt string `json:"systemPrompt,omitempty"`
}

func (s *Server) handleCoachInsights(w http.ResponseWriter, r *http.Request) {
	s.proxyCoach(w, r, "insights", func(ctx context.Context, req coachRequest) (*coach.Response, error) {
		return s.coach.Insights(ctx, req.Prompt, req.SystemPrompt)
	})
}

func (s *Server) handleCoachWorkout(w http.ResponseWriter, r *http.Request) {
	s.proxyCoach(w, r, "workout", func(ctx context.Context, req coachRequest) (*coach.Response, error) {
		return s.coach.Workout(ctx, req.Prompt, req.SystemPrompt)
	})
}

func (s *Server) handleCoachTip(w http.ResponseWriter, r *http.Request) {
	s.proxyCoach(w, r, "tip", func(ctx context.Context, req coachRequest) (*coach.Response, error) {
		return s.coach.Tip(ctx, req.Prompt)
	})
}

func (s *Server) proxyCoach(w http.ResponseWriter, r *http.Request, kind string, call func(context.Context, coachRequest) (*coach.Response, error)) {
	if s.coach == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "coach is not configured"})
		return
	}

	var req coachRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	resp, err := call(r.Context(), req)
	if err == nil {
		s.coachCache.put(kind, resp)
		writeJSON(w, http.StatusOK, map[string]any{"response": resp, "stale": false})
		return
	}

	if errors.Is(err, coach.ErrConfig) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "coach is not configured"})
		return
	}

	s.log.Warn("coach proxy failed", "kind", kind, "error", err)
	if cached := s.coachCache.get(kind); cached != nil {
		writeJSON(w, http.StatusOK, map[string]any{"response": cached, "stale": true})
		return
	}

	status := http.StatusBadGateway
	if errors.Is(err, coach.ErrRateLimited) {
		status = http.StatusTooManyRequests
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
