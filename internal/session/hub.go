package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/fitlink/internal/link"
	"github.com/claude/fitlink/internal/models"
)

// Hub owns the single workout session and the phone→watch outbox. All
// access to the controller is serialized here; the HTTP layer and the
// ticker goroutine both go through the hub.
//
// The outbox endpoint is the reachability gate: messages queue until a
// watch client drains them, mirroring the platform behavior of queueing
// while the peer is out of reach.
type Hub struct {
	mu   sync.Mutex
	ctrl *Controller
	out  *link.Endpoint
	log  *slog.Logger
}

// NewHub creates a hub with an idle controller.
func NewHub(rec Recorder, userID int, log *slog.Logger) *Hub {
	out := link.NewEndpoint(nil) // pull model: the watch drains via HTTP
	return &Hub{
		ctrl: NewController(out, rec, userID, log),
		out:  out,
		log:  log,
	}
}

// Start begins a workout session. Returns ErrSessionActive if one is
// already running.
func (h *Hub) Start(plan models.WorkoutPlan, showCountdown bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ctrl.Start(plan, showCountdown)
}

// Action applies a workout action.
func (h *Hub) Action(ctx context.Context, a link.Action) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ctrl.Apply(ctx, a)
}

// LogSet records a completed set.
func (h *Hub) LogSet(ctx context.Context, weightKg float64, reps int, at time.Time) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ctrl.LogSet(ctx, weightKg, reps, at)
}

// UpdateHealth forwards health readings to the session.
func (h *Hub) UpdateHealth(heartRate, calories, bloodOxygen *float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ctrl.UpdateHealth(heartRate, calories, bloodOxygen)
}

// Receive applies a watch-originated message.
func (h *Hub) Receive(ctx context.Context, msg link.Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ctrl.Receive(ctx, msg)
}

// Status returns the current session snapshot.
func (h *Hub) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ctrl.Status()
}

// Drain removes and returns all queued phone→watch messages.
func (h *Hub) Drain() []link.Message {
	return h.out.Drain()
}

// Run ticks the session at 1 Hz until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.mu.Lock()
			h.ctrl.Tick(ctx)
			h.mu.Unlock()
		}
	}
}
