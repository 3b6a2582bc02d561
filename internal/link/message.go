// Package link implements the cross-device workout link: the message
// taxonomy exchanged between the phone-side workout controller and the
// wearable display, a reachability-gated best-effort transport, and the
// watch-side mirror state machine.
package link

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind tags a link message.
type Kind string

// Phone → watch messages.
const (
	KindWorkoutStarted    Kind = "workout_started"
	KindWorkoutEnded      Kind = "workout_ended"
	KindExerciseChanged   Kind = "exercise_changed"
	KindRestTimerStarted  Kind = "rest_timer_started"
	KindRestTimerEnded    Kind = "rest_timer_ended"
	KindHealthDataUpdate  Kind = "health_data_update"
	KindWorkoutUpdate     Kind = "workout_update"
	KindCountdownStarted  Kind = "countdown_started"
	KindElapsedTimeUpdate Kind = "elapsed_time_update"
)

// Watch → phone messages.
const (
	KindSetCompleted  Kind = "set_completed"
	KindWorkoutAction Kind = "workout_action"
	KindRequestSync   Kind = "request_sync"
)

// Action is the payload of a workout_action message.
type Action string

const (
	ActionPause        Action = "pause"
	ActionResume       Action = "resume"
	ActionSkipRest     Action = "skip_rest"
	ActionSkipExercise Action = "skip_exercise"
	ActionEndWorkout   Action = "end_workout"
	ActionExtendRest30 Action = "extend_rest_30"
)

// Message is the wire envelope for all link traffic. Each kind uses a
// subset of the fields; absent optional fields are nil so receivers can
// keep their previously remembered values.
type Message struct {
	Kind Kind `json:"type"`

	Name          string `json:"name,omitempty"`
	Exercise      string `json:"exercise,omitempty"`
	SetNumber     int    `json:"setNumber,omitempty"`
	TotalSets     int    `json:"totalSets,omitempty"`
	ShowCountdown bool   `json:"showCountdown,omitempty"`

	TargetWeight *float64 `json:"targetWeight,omitempty"`
	TargetReps   *int     `json:"targetReps,omitempty"`

	Duration           int `json:"duration,omitempty"`
	ExercisesCompleted int `json:"exercisesCompleted,omitempty"`
	Elapsed            int `json:"elapsed,omitempty"`
	RestRemaining      int `json:"restRemaining,omitempty"`
	Paused             bool `json:"paused,omitempty"`
	Resting            bool `json:"resting,omitempty"`

	HeartRate   *float64 `json:"heartRate,omitempty"`
	Calories    *float64 `json:"calories,omitempty"`
	BloodOxygen *float64 `json:"bloodOxygen,omitempty"`

	ExerciseID string    `json:"exerciseId,omitempty"`
	Weight     float64   `json:"weight,omitempty"`
	Reps       int       `json:"reps,omitempty"`
	Timestamp  time.Time `json:"timestamp,omitzero"`

	Action Action `json:"action,omitempty"`
}

// Encode serializes a message for the wire.
func Encode(m Message) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding %s message: %w", m.Kind, err)
	}
	return data, nil
}

// Decode parses a wire message. Unrecognized kinds are not an error; the
// mirror treats them as no-ops.
func Decode(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("decoding message: %w", err)
	}
	return m, nil
}

// --- Constructors ---

func WorkoutStarted(name, exercise string, totalSets int, showCountdown bool) Message {
	return Message{
		Kind:          KindWorkoutStarted,
		Name:          name,
		Exercise:      exercise,
		TotalSets:     totalSets,
		ShowCountdown: showCountdown,
	}
}

func WorkoutEnded(durationSec, exercisesCompleted int) Message {
	return Message{
		Kind:               KindWorkoutEnded,
		Duration:           durationSec,
		ExercisesCompleted: exercisesCompleted,
	}
}

func ExerciseChanged(exercise string, setNumber, totalSets int, targetWeight *float64, targetReps *int) Message {
	return Message{
		Kind:         KindExerciseChanged,
		Exercise:     exercise,
		SetNumber:    setNumber,
		TotalSets:    totalSets,
		TargetWeight: targetWeight,
		TargetReps:   targetReps,
	}
}

func RestTimerStarted(durationSec int) Message {
	return Message{Kind: KindRestTimerStarted, Duration: durationSec}
}

func RestTimerEnded() Message {
	return Message{Kind: KindRestTimerEnded}
}

func HealthDataUpdate(heartRate, calories, bloodOxygen *float64) Message {
	return Message{
		Kind:        KindHealthDataUpdate,
		HeartRate:   heartRate,
		Calories:    calories,
		BloodOxygen: bloodOxygen,
	}
}

func CountdownStarted() Message {
	return Message{Kind: KindCountdownStarted}
}

func ElapsedTimeUpdate(elapsedSec int) Message {
	return Message{Kind: KindElapsedTimeUpdate, Elapsed: elapsedSec}
}

func SetCompleted(exerciseID string, weight float64, reps int, at time.Time) Message {
	return Message{
		Kind:       KindSetCompleted,
		ExerciseID: exerciseID,
		Weight:     weight,
		Reps:       reps,
		Timestamp:  at,
	}
}

func WorkoutAction(a Action) Message {
	return Message{Kind: KindWorkoutAction, Action: a}
}

func RequestSync() Message {
	return Message{Kind: KindRequestSync}
}
