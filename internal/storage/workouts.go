package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/claude/fitlink/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InsertWorkout inserts a workout row. Returns true if inserted, false if duplicate.
func (db *DB) InsertWorkout(ctx context.Context, row models.WorkoutRow) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO workouts (id, user_id, name, start_time, end_time, duration_sec,
		 exercise_count, active_calories, avg_heart_rate, max_heart_rate, source)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		 ON CONFLICT DO NOTHING`,
		row.ID, row.UserID, row.Name, row.StartTime, row.EndTime, row.DurationSec,
		row.ExerciseCount, row.ActiveCalories, row.AvgHeartRate, row.MaxHeartRate, row.Source)
	if err != nil {
		return false, fmt.Errorf("inserting workout: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// InsertWorkoutSets batch-inserts logged sets. Returns count inserted.
func (db *DB) InsertWorkoutSets(ctx context.Context, rows []models.WorkoutSetRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	query := `INSERT INTO workout_sets (workout_id, user_id, exercise_name, set_number, weight_kg, reps, completed_at) VALUES `
	args := make([]any, 0, len(rows)*7)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		base := i * 7
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7,
		))
		args = append(args, r.WorkoutID, r.UserID, r.ExerciseName, r.SetNumber, r.WeightKg, r.Reps, r.CompletedAt)
	}

	query += strings.Join(valueStrings, ",") + " ON CONFLICT DO NOTHING"

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting workout sets: %w", err)
	}
	return tag.RowsAffected(), nil
}

// QueryWorkouts retrieves workouts in a time range, optionally filtered by name.
func (db *DB) QueryWorkouts(ctx context.Context, start, end time.Time, userID int, nameFilter string) ([]models.WorkoutRow, error) {
	query := `SELECT id, user_id, name, start_time, end_time, duration_sec,
	 exercise_count, active_calories, avg_heart_rate, max_heart_rate, source
	 FROM workouts
	 WHERE start_time >= $1 AND start_time < $2 AND user_id = $3`
	args := []any{start, end, userID}
	if nameFilter != "" {
		query += ` AND name ILIKE '%' || $4 || '%'`
		args = append(args, nameFilter)
	}
	query += ` ORDER BY start_time DESC`

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	return scanWorkoutRows(rows)
}

// WorkoutDetail is a workout with its logged sets.
type WorkoutDetail struct {
	models.WorkoutRow
	Sets []models.WorkoutSetRow `json:"sets"`
}

// GetWorkout retrieves a single workout by ID with its sets.
func (db *DB) GetWorkout(ctx context.Context, workoutID uuid.UUID, userID int) (*WorkoutDetail, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, name, start_time, end_time, duration_sec,
		 exercise_count, active_calories, avg_heart_rate, max_heart_rate, source
		 FROM workouts
		 WHERE id = $1 AND user_id = $2`,
		workoutID, userID)

	var w models.WorkoutRow
	err := row.Scan(&w.ID, &w.UserID, &w.Name, &w.StartTime, &w.EndTime, &w.DurationSec,
		&w.ExerciseCount, &w.ActiveCalories, &w.AvgHeartRate, &w.MaxHeartRate, &w.Source)
	if err != nil {
		return nil, fmt.Errorf("querying workout: %w", err)
	}

	detail := &WorkoutDetail{WorkoutRow: w}

	setRows, err := db.Pool.Query(ctx,
		`SELECT workout_id, user_id, exercise_name, set_number, weight_kg, reps, completed_at
		 FROM workout_sets
		 WHERE workout_id = $1 AND user_id = $2
		 ORDER BY completed_at ASC`,
		workoutID, userID)
	if err != nil {
		return nil, fmt.Errorf("querying workout sets: %w", err)
	}
	defer setRows.Close()

	for setRows.Next() {
		var s models.WorkoutSetRow
		if err := setRows.Scan(&s.WorkoutID, &s.UserID, &s.ExerciseName, &s.SetNumber,
			&s.WeightKg, &s.Reps, &s.CompletedAt); err != nil {
			return nil, fmt.Errorf("scanning workout set: %w", err)
		}
		detail.Sets = append(detail.Sets, s)
	}

	return detail, setRows.Err()
}

// QueryWorkoutSets retrieves sets across workouts, optionally filtered by
// exercise name (partial match).
func (db *DB) QueryWorkoutSets(ctx context.Context, start, end time.Time, userID int, exerciseFilter string) ([]models.WorkoutSetRow, error) {
	query := `SELECT workout_id, user_id, exercise_name, set_number, weight_kg, reps, completed_at
	 FROM workout_sets
	 WHERE completed_at >= $1 AND completed_at < $2 AND user_id = $3`
	args := []any{start, end, userID}
	if exerciseFilter != "" {
		query += ` AND exercise_name ILIKE '%' || $4 || '%'`
		args = append(args, exerciseFilter)
	}
	query += ` ORDER BY completed_at ASC`

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying workout sets: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutSetRow
	for rows.Next() {
		var s models.WorkoutSetRow
		if err := rows.Scan(&s.WorkoutID, &s.UserID, &s.ExerciseName, &s.SetNumber,
			&s.WeightKg, &s.Reps, &s.CompletedAt); err != nil {
			return nil, fmt.Errorf("scanning workout set: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// LatestWorkout returns the most recent workout, or nil when none exist.
func (db *DB) LatestWorkout(ctx context.Context, userID int) (*models.WorkoutRow, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, name, start_time, end_time, duration_sec,
		 exercise_count, active_calories, avg_heart_rate, max_heart_rate, source
		 FROM workouts
		 WHERE user_id = $1
		 ORDER BY start_time DESC
		 LIMIT 1`,
		userID)

	var w models.WorkoutRow
	err := row.Scan(&w.ID, &w.UserID, &w.Name, &w.StartTime, &w.EndTime, &w.DurationSec,
		&w.ExerciseCount, &w.ActiveCalories, &w.AvgHeartRate, &w.MaxHeartRate, &w.Source)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying latest workout: %w", err)
	}
	return &w, nil
}

func scanWorkoutRows(rows pgx.Rows) ([]models.WorkoutRow, error) {
	var result []models.WorkoutRow
	for rows.Next() {
		var w models.WorkoutRow
		if err := rows.Scan(&w.ID, &w.UserID, &w.Name, &w.StartTime, &w.EndTime, &w.DurationSec,
			&w.ExerciseCount, &w.ActiveCalories, &w.AvgHeartRate, &w.MaxHeartRate, &w.Source); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		result = append(result, w)
	}
	return result, rows.Err()
}
