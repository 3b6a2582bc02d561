package models

// PlannedExercise is one exercise in a workout plan: a set count with
// optional targets and the rest to take between sets.
type PlannedExercise struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Sets         int      `json:"sets"`
	TargetWeight *float64 `json:"target_weight,omitempty"`
	TargetReps   *int     `json:"target_reps,omitempty"`
	RestSec      int      `json:"rest_sec"`
}

// WorkoutPlan is an ordered list of exercises for a session.
type WorkoutPlan struct {
	Name      string            `json:"name"`
	Exercises []PlannedExercise `json:"exercises"`
}

// Valid reports whether the plan can be started.
func (p WorkoutPlan) Valid() bool {
	if p.Name == "" || len(p.Exercises) == 0 {
		return false
	}
	for _, ex := range p.Exercises {
		if ex.Name == "" || ex.Sets < 1 {
			return false
		}
	}
	return true
}
