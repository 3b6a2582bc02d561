// Package models holds the row and domain types shared by storage,
// ingest, and the HTTP/MCP surfaces.
package models

import (
	"time"

	"github.com/google/uuid"
)

// HealthSampleRow is a row ready for insertion into the health_samples table.
type HealthSampleRow struct {
	Time       time.Time `json:"time"`
	UserID     int       `json:"user_id"`
	MetricName string    `json:"metric_name"`
	Source     string    `json:"source"`
	Units      string    `json:"units"`
	Qty        *float64  `json:"qty"`
	MinVal     *float64  `json:"min,omitempty"`
	AvgVal     *float64  `json:"avg,omitempty"`
	MaxVal     *float64  `json:"max,omitempty"`
}

// SleepSessionRow is a nightly sleep summary for the sleep_sessions table.
type SleepSessionRow struct {
	UserID     int       `json:"user_id"`
	Date       time.Time `json:"date"`
	TotalSleep float64   `json:"total_sleep_hr"`
	Core       float64   `json:"core_hr"`
	Deep       float64   `json:"deep_hr"`
	REM        float64   `json:"rem_hr"`
	InBed      float64   `json:"in_bed_hr"`
	SleepStart time.Time `json:"sleep_start"`
	SleepEnd   time.Time `json:"sleep_end"`
}

// SleepStageRow is an individual sleep stage segment.
type SleepStageRow struct {
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	UserID     int       `json:"user_id"`
	Stage      string    `json:"stage"`
	DurationHr float64   `json:"duration_hr"`
	Source     string    `json:"source"`
}

// WorkoutRow is a completed workout for the workouts table.
type WorkoutRow struct {
	ID             uuid.UUID `json:"id"`
	UserID         int       `json:"user_id"`
	Name           string    `json:"name"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	DurationSec    float64   `json:"duration_sec"`
	ExerciseCount  int       `json:"exercise_count"`
	ActiveCalories *float64  `json:"active_calories,omitempty"`
	AvgHeartRate   *float64  `json:"avg_heart_rate,omitempty"`
	MaxHeartRate   *float64  `json:"max_heart_rate,omitempty"`
	Source         string    `json:"source"`
}

// WorkoutSetRow is a single logged set for the workout_sets table.
type WorkoutSetRow struct {
	WorkoutID    uuid.UUID `json:"workout_id"`
	UserID       int       `json:"user_id"`
	ExerciseName string    `json:"exercise_name"`
	SetNumber    int       `json:"set_number"`
	WeightKg     float64   `json:"weight_kg"`
	Reps         int       `json:"reps"`
	CompletedAt  time.Time `json:"completed_at"`
}

// WaterIntakeRow is a logged water entry for the water_intake table.
type WaterIntakeRow struct {
	Time   time.Time `json:"time"`
	UserID int       `json:"user_id"`
	Ounces float64   `json:"ounces"`
	Source string    `json:"source"`
}

// ChallengeRow is a shared fitness challenge joined by invite code.
type ChallengeRow struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Metric     string    `json:"metric"`
	Goal       float64   `json:"goal"`
	InviteCode string    `json:"invite_code"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
	CreatedBy  int       `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// ChallengeParticipantRow links a user to a challenge.
type ChallengeParticipantRow struct {
	ChallengeID uuid.UUID `json:"challenge_id"`
	UserID      int       `json:"user_id"`
	DisplayName string    `json:"display_name"`
	JoinedAt    time.Time `json:"joined_at"`
}

// LeaderboardEntry is one participant's standing in a challenge.
type LeaderboardEntry struct {
	UserID      int     `json:"user_id"`
	DisplayName string  `json:"display_name"`
	Total       float64 `json:"total"`
	Rank        int     `json:"rank"`
}
