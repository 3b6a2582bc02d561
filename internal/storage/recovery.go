package storage

import (
	"context"

	"github.com/claude/fitlink/internal/recovery"
)

// recoveryBaselineDays is the trailing window for HRV and resting HR baselines.
const recoveryBaselineDays = 30

// GetRecoveryScore gathers last-night sleep, latest HRV/RHR, and their
// trailing baselines, then computes the readiness score. Missing inputs
// are tolerated and reduce the score's weight, not its availability.
func (db *DB) GetRecoveryScore(ctx context.Context, userID int) (*recovery.Score, error) {
	var in recovery.Inputs

	sleep, err := db.LastNightSleepHours(ctx, userID)
	if err != nil {
		return nil, err
	}
	in.SleepHours = sleep

	if v, err := db.LatestValue(ctx, userID, "heart_rate_variability"); err == nil {
		in.HRV = v
	}
	if v, err := db.MetricBaseline(ctx, userID, "heart_rate_variability", recoveryBaselineDays); err == nil {
		in.HRVBaseline = v
	}
	if v, err := db.LatestValue(ctx, userID, "resting_heart_rate"); err == nil {
		in.RHR = v
	}
	if v, err := db.MetricBaseline(ctx, userID, "resting_heart_rate", recoveryBaselineDays); err == nil {
		in.RHRBaseline = v
	}

	score := recovery.Compute(in)
	return &score, nil
}
