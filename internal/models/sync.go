package models

import "time"

// SyncPayload is the top-level JSON body pushed by the phone app.
type SyncPayload struct {
	Data SyncData `json:"data"`
}

// SyncData contains the arrays of health data in a sync push.
type SyncData struct {
	Metrics  []SyncMetric  `json:"metrics"`
	Sleep    []SyncSleep   `json:"sleep"`
	Workouts []SyncWorkout `json:"workouts"`
}

// SyncMetric is a named series of sample points.
type SyncMetric struct {
	Name  string       `json:"name"`
	Units string       `json:"units"`
	Data  []SyncSample `json:"data"`
}

// SyncSample is a single sample point. Qty carries simple quantities;
// Min/Avg/Max carry pre-aggregated series like heart rate.
type SyncSample struct {
	Date   time.Time `json:"date"`
	Qty    *float64  `json:"qty,omitempty"`
	Min    *float64  `json:"min,omitempty"`
	Avg    *float64  `json:"avg,omitempty"`
	Max    *float64  `json:"max,omitempty"`
	Source string    `json:"source,omitempty"`
}

// SyncSleep is a nightly sleep summary with its stage segments.
type SyncSleep struct {
	Date       time.Time   `json:"date"`
	TotalSleep float64     `json:"totalSleep"`
	Core       float64     `json:"core"`
	Deep       float64     `json:"deep"`
	REM        float64     `json:"rem"`
	InBed      float64     `json:"inBed"`
	SleepStart time.Time   `json:"sleepStart"`
	SleepEnd   time.Time   `json:"sleepEnd"`
	Stages     []SyncStage `json:"stages,omitempty"`
}

// SyncStage is an individual sleep stage segment.
type SyncStage struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Stage  string    `json:"stage"`
	Source string    `json:"source,omitempty"`
}

// SyncWorkout is a completed workout with its logged sets.
type SyncWorkout struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	DurationSec    float64   `json:"duration"`
	ExerciseCount  int       `json:"exercisesCompleted"`
	ActiveCalories *float64  `json:"activeCalories,omitempty"`
	AvgHeartRate   *float64  `json:"avgHeartRate,omitempty"`
	MaxHeartRate   *float64  `json:"maxHeartRate,omitempty"`
	Source         string    `json:"source,omitempty"`
	Sets           []SyncSet `json:"sets,omitempty"`
}

// SyncSet is one logged set inside a synced workout.
type SyncSet struct {
	ExerciseName string    `json:"exercise"`
	SetNumber    int       `json:"setNumber"`
	WeightKg     float64   `json:"weightKg"`
	Reps         int       `json:"reps"`
	CompletedAt  time.Time `json:"completedAt"`
}
