package snapshot

import (
	"context"
	"log/slog"
	"time"

	"github.com/claude/fitlink/internal/storage"
)

// Refresher rebuilds the snapshot from the database on a fixed interval.
type Refresher struct {
	db       *storage.DB
	store    *Store
	log      *slog.Logger
	userID   int
	goalOz   float64
	interval time.Duration
}

// NewRefresher creates a Refresher for one user's snapshot.
func NewRefresher(db *storage.DB, store *Store, log *slog.Logger, userID int, goalOz float64, interval time.Duration) *Refresher {
	return &Refresher{db: db, store: store, log: log, userID: userID, goalOz: goalOz, interval: interval}
}

// Run refreshes immediately, then on every tick until ctx is cancelled.
// Individual refresh failures are logged and the loop keeps going.
func (r *Refresher) Run(ctx context.Context) {
	if err := r.Refresh(ctx); err != nil {
		r.log.Error("snapshot refresh failed", "error", err)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Refresh(ctx); err != nil {
				r.log.Error("snapshot refresh failed", "error", err)
			}
		}
	}
}

// Refresh recomputes the snapshot from storage and writes it.
func (r *Refresher) Refresh(ctx context.Context) error {
	snap := &Snapshot{WaterGoalOunces: r.goalOz}

	water, err := r.db.TodayWaterOunces(ctx, r.userID)
	if err != nil {
		return err
	}
	snap.WaterOunces = water

	if steps, err := r.db.TodayTotal(ctx, r.userID, "step_count"); err != nil {
		r.log.Warn("snapshot: steps unavailable", "error", err)
	} else {
		snap.Steps = steps
	}

	if cals, err := r.db.TodayTotal(ctx, r.userID, "active_energy"); err != nil {
		r.log.Warn("snapshot: calories unavailable", "error", err)
	} else {
		snap.ActiveCalories = cals
	}

	if w, err := r.db.LatestWorkout(ctx, r.userID); err != nil {
		r.log.Warn("snapshot: latest workout unavailable", "error", err)
	} else if w != nil {
		snap.LastWorkoutName = w.Name
		snap.LastWorkoutSec = w.DurationSec
		snap.LastWorkoutExs = w.ExerciseCount
	}

	if score, err := r.db.GetRecoveryScore(ctx, r.userID); err != nil {
		r.log.Warn("snapshot: recovery score unavailable", "error", err)
		snap.RecoveryScore = 50
	} else {
		snap.RecoveryScore = score.Value
		snap.RecoveryLabel = score.Label
	}

	if sleep, err := r.db.LastNightSleepHours(ctx, r.userID); err != nil {
		r.log.Warn("snapshot: sleep unavailable", "error", err)
	} else if sleep != nil {
		snap.SleepHours = *sleep
	}

	return r.store.Put(snap)
}
