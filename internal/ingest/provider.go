// Package ingest turns sync payloads pushed by the phone app into
// database rows, gated by the metric allowlist.
package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/claude/fitlink/internal/models"
	"github.com/claude/fitlink/internal/storage"
	"github.com/google/uuid"
)

// Result holds the outcome of an ingest operation.
type Result struct {
	MetricsReceived int      `json:"metrics_received"`
	MetricsInserted int64    `json:"metrics_inserted"`
	MetricsSkipped  int64    `json:"metrics_skipped"`
	MetricsRejected int      `json:"metrics_rejected"`
	RejectedNames   []string `json:"rejected_names,omitempty"`

	SleepSessionsInserted int   `json:"sleep_sessions_inserted,omitempty"`
	SleepStagesInserted   int64 `json:"sleep_stages_inserted,omitempty"`

	WorkoutsReceived int   `json:"workouts_received,omitempty"`
	WorkoutsInserted int   `json:"workouts_inserted,omitempty"`
	SetsInserted     int64 `json:"sets_inserted,omitempty"`

	Message string `json:"message,omitempty"`
}

// Provider processes sync payloads from the phone app.
type Provider struct {
	db  *storage.DB
	log *slog.Logger
}

// NewProvider creates a new sync ingest provider.
func NewProvider(db *storage.DB, log *slog.Logger) *Provider {
	return &Provider{db: db, log: log}
}

// Ingest processes a sync payload and stores accepted data.
func (p *Provider) Ingest(ctx context.Context, payload *models.SyncPayload, userID int) (*Result, error) {
	result := &Result{}

	if len(payload.Data.Metrics) > 0 {
		if err := p.processMetrics(ctx, payload.Data.Metrics, userID, result); err != nil {
			return result, fmt.Errorf("processing metrics: %w", err)
		}
	}

	if len(payload.Data.Sleep) > 0 {
		if err := p.processSleep(ctx, payload.Data.Sleep, userID, result); err != nil {
			return result, fmt.Errorf("processing sleep: %w", err)
		}
	}

	if len(payload.Data.Workouts) > 0 {
		if err := p.processWorkouts(ctx, payload.Data.Workouts, userID, result); err != nil {
			return result, fmt.Errorf("processing workouts: %w", err)
		}
	}

	if len(result.RejectedNames) > 0 {
		result.Message = fmt.Sprintf(
			"Some metrics were rejected because they are not in the allowlist: %v. "+
				"Accepted metrics are stored. Check GET /api/v1/allowlist for the full list.",
			result.RejectedNames)
	}

	return result, nil
}

func (p *Provider) processMetrics(ctx context.Context, metrics []models.SyncMetric, userID int, result *Result) error {
	var rows []models.HealthSampleRow
	rejectedSet := map[string]bool{}

	for _, m := range metrics {
		allowed, err := p.db.IsMetricAllowed(ctx, m.Name)
		if err != nil {
			return fmt.Errorf("checking allowlist for %s: %w", m.Name, err)
		}
		if !allowed {
			if !rejectedSet[m.Name] {
				result.RejectedNames = append(result.RejectedNames, m.Name)
				rejectedSet[m.Name] = true
			}
			result.MetricsRejected += len(m.Data)
			continue
		}

		for _, dp := range m.Data {
			result.MetricsReceived++

			row := models.HealthSampleRow{
				Time:       dp.Date,
				UserID:     userID,
				MetricName: m.Name,
				Source:     dp.Source,
				Units:      m.Units,
				Qty:        dp.Qty,
				MinVal:     dp.Min,
				AvgVal:     dp.Avg,
				MaxVal:     dp.Max,
			}
			// Samples with none of qty/min/avg/max carry nothing worth storing.
			if dp.Qty == nil && dp.Avg == nil && dp.Min == nil && dp.Max == nil {
				p.log.Warn("skipping empty data point", "metric", m.Name, "time", dp.Date)
				continue
			}
			rows = append(rows, row)
		}
	}

	if len(rows) > 0 {
		inserted, err := p.db.InsertHealthSamples(ctx, rows)
		if err != nil {
			return fmt.Errorf("inserting health samples: %w", err)
		}
		result.MetricsInserted = inserted
		result.MetricsSkipped = int64(len(rows)) - inserted
	}

	return nil
}

func (p *Provider) processSleep(ctx context.Context, sessions []models.SyncSleep, userID int, result *Result) error {
	for _, s := range sessions {
		row := models.SleepSessionRow{
			UserID:     userID,
			Date:       s.Date,
			TotalSleep: s.TotalSleep,
			Core:       s.Core,
			Deep:       s.Deep,
			REM:        s.REM,
			InBed:      s.InBed,
			SleepStart: s.SleepStart,
			SleepEnd:   s.SleepEnd,
		}
		inserted, err := p.db.InsertSleepSession(ctx, row)
		if err != nil {
			return fmt.Errorf("inserting sleep session: %w", err)
		}
		if inserted {
			result.SleepSessionsInserted++
		}

		if len(s.Stages) > 0 {
			stageRows := make([]models.SleepStageRow, len(s.Stages))
			for i, st := range s.Stages {
				stageRows[i] = models.SleepStageRow{
					StartTime:  st.Start,
					EndTime:    st.End,
					UserID:     userID,
					Stage:      st.Stage,
					DurationHr: st.End.Sub(st.Start).Hours(),
					Source:     st.Source,
				}
			}
			n, err := p.db.InsertSleepStages(ctx, stageRows)
			if err != nil {
				return fmt.Errorf("inserting sleep stages: %w", err)
			}
			result.SleepStagesInserted += n
		}

		// Mirror total sleep into health_samples so recovery scoring and
		// correlation queries see it alongside the other metrics.
		qty := s.TotalSleep
		sleepSample := models.HealthSampleRow{
			Time:       s.SleepEnd,
			UserID:     userID,
			MetricName: "sleep_analysis",
			Source:     "FitLink",
			Units:      "hr",
			Qty:        &qty,
		}
		if _, err := p.db.InsertHealthSamples(ctx, []models.HealthSampleRow{sleepSample}); err != nil {
			p.log.Warn("failed to insert sleep_analysis sample", "error", err)
		}
	}
	return nil
}

func (p *Provider) processWorkouts(ctx context.Context, workouts []models.SyncWorkout, userID int, result *Result) error {
	for _, w := range workouts {
		result.WorkoutsReceived++

		workoutID, err := uuid.Parse(w.ID)
		if err != nil {
			p.log.Warn("skipping workout: invalid UUID", "id", w.ID, "error", err)
			continue
		}

		row := models.WorkoutRow{
			ID:             workoutID,
			UserID:         userID,
			Name:           w.Name,
			StartTime:      w.Start,
			EndTime:        w.End,
			DurationSec:    w.DurationSec,
			ExerciseCount:  w.ExerciseCount,
			ActiveCalories: w.ActiveCalories,
			AvgHeartRate:   w.AvgHeartRate,
			MaxHeartRate:   w.MaxHeartRate,
			Source:         w.Source,
		}

		inserted, err := p.db.InsertWorkout(ctx, row)
		if err != nil {
			return fmt.Errorf("inserting workout %s: %w", w.ID, err)
		}
		if !inserted {
			continue
		}
		result.WorkoutsInserted++

		if len(w.Sets) > 0 {
			setRows := make([]models.WorkoutSetRow, len(w.Sets))
			for i, s := range w.Sets {
				setRows[i] = models.WorkoutSetRow{
					WorkoutID:    workoutID,
					UserID:       userID,
					ExerciseName: s.ExerciseName,
					SetNumber:    s.SetNumber,
					WeightKg:     s.WeightKg,
					Reps:         s.Reps,
					CompletedAt:  s.CompletedAt,
				}
			}
			n, err := p.db.InsertWorkoutSets(ctx, setRows)
			if err != nil {
				return fmt.Errorf("inserting workout sets: %w", err)
			}
			result.SetsInserted += n
		}
	}
	return nil
}
