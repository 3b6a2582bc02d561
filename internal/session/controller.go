// Package session holds the phone-side workout session: the authoritative
// controller that drives the workout through the cross-device link, and the
// hub that guards the single active session.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/fitlink/internal/link"
	"github.com/claude/fitlink/internal/models"
	"github.com/google/uuid"
)

// ErrNoSession is returned for operations that need an active session.
var ErrNoSession = errors.New("no active workout session")

// ErrSessionActive is returned when starting while a session is running.
var ErrSessionActive = errors.New("a workout session is already active")

// Recorder persists completed sets and workout summaries. *storage.DB
// satisfies it.
type Recorder interface {
	InsertWorkout(ctx context.Context, row models.WorkoutRow) (bool, error)
	InsertWorkoutSets(ctx context.Context, rows []models.WorkoutSetRow) (int64, error)
}

// elapsedSyncInterval is how many ticks pass between elapsed_time_update
// messages to the watch.
const elapsedSyncInterval = 15

// countdownTicks matches the watch-side pre-workout countdown.
const countdownTicks = 3

// Controller is the phone-side authority for one workout session. The
// watch is a best-effort mirror: the controller emits state messages over
// the link and applies action messages the watch sends back. Not safe for
// concurrent use; the Hub serializes access.
type Controller struct {
	out    *link.Endpoint
	rec    Recorder
	log    *slog.Logger
	userID int

	active    bool
	workoutID uuid.UUID
	plan      models.WorkoutPlan
	startedAt time.Time

	countdown     int
	exerciseIdx   int
	currentSet    int
	elapsedSec    int
	restRemaining int
	resting       bool
	paused        bool
	tickCount     int

	setsLogged         int
	exercisesCompleted int

	heartRate   *float64
	calories    *float64
	bloodOxygen *float64
}

// NewController creates a controller that emits to out and persists via rec.
func NewController(out *link.Endpoint, rec Recorder, userID int, log *slog.Logger) *Controller {
	return &Controller{out: out, rec: rec, userID: userID, log: log}
}

// Active reports whether a workout is in progress.
func (c *Controller) Active() bool { return c.active }

// Start begins a workout from a plan, optionally preceded by the 3-tick
// countdown. At most one session exists at a time.
func (c *Controller) Start(plan models.WorkoutPlan, showCountdown bool) error {
	if c.active {
		return ErrSessionActive
	}
	if !plan.Valid() {
		return fmt.Errorf("invalid workout plan %q", plan.Name)
	}

	c.reset()
	c.active = true
	c.workoutID = uuid.New()
	c.plan = plan
	c.startedAt = time.Now()
	c.currentSet = 1
	if showCountdown {
		c.countdown = countdownTicks
	}

	first := plan.Exercises[0]
	c.out.Send(link.WorkoutStarted(plan.Name, first.Name, first.Sets, showCountdown))
	if showCountdown {
		c.out.Send(link.CountdownStarted())
	}
	c.log.Info("workout started", "workout", plan.Name, "exercises", len(plan.Exercises), "countdown", showCountdown)
	return nil
}

// Tick advances the session clock by one second. Rest expiry emits
// rest_timer_ended; every elapsedSyncInterval ticks the watch's elapsed
// display is resynchronized.
func (c *Controller) Tick(ctx context.Context) {
	if !c.active {
		return
	}
	if c.countdown > 0 {
		c.countdown--
		return
	}
	if c.paused {
		return
	}

	c.elapsedSec++
	c.tickCount++

	if c.resting {
		c.restRemaining--
		if c.restRemaining <= 0 {
			c.resting = false
			c.restRemaining = 0
			c.out.Send(link.RestTimerEnded())
		}
	}

	if c.tickCount%elapsedSyncInterval == 0 {
		c.out.Send(link.ElapsedTimeUpdate(c.elapsedSec))
	}
}

// LogSet records a completed set and advances the session: next set with a
// rest timer, next exercise, or workout end after the final set.
func (c *Controller) LogSet(ctx context.Context, weightKg float64, reps int, at time.Time) error {
	if !c.active {
		return ErrNoSession
	}
	if at.IsZero() {
		at = time.Now()
	}

	ex := c.plan.Exercises[c.exerciseIdx]
	row := models.WorkoutSetRow{
		WorkoutID:    c.workoutID,
		UserID:       c.userID,
		ExerciseName: ex.Name,
		SetNumber:    c.currentSet,
		WeightKg:     weightKg,
		Reps:         reps,
		CompletedAt:  at,
	}
	if c.rec != nil {
		if _, err := c.rec.InsertWorkoutSets(ctx, []models.WorkoutSetRow{row}); err != nil {
			// Recording failure does not stop the workout.
			c.log.Warn("set not persisted", "exercise", ex.Name, "set", c.currentSet, "error", err)
		}
	}
	c.setsLogged++

	if c.currentSet < ex.Sets {
		c.currentSet++
		c.out.Send(link.ExerciseChanged(ex.Name, c.currentSet, ex.Sets, ex.TargetWeight, ex.TargetReps))
		c.startRest(ex.RestSec)
		return nil
	}

	c.exercisesCompleted++
	if c.exerciseIdx+1 >= len(c.plan.Exercises) {
		return c.End(ctx)
	}
	c.advanceExercise(ex.RestSec)
	return nil
}

// advanceExercise moves to the next planned exercise and announces it.
func (c *Controller) advanceExercise(restSec int) {
	c.exerciseIdx++
	c.currentSet = 1
	next := c.plan.Exercises[c.exerciseIdx]
	c.out.Send(link.ExerciseChanged(next.Name, 1, next.Sets, next.TargetWeight, next.TargetReps))
	c.startRest(restSec)
}

func (c *Controller) startRest(sec int) {
	if sec <= 0 {
		return
	}
	c.resting = true
	c.restRemaining = sec
	c.out.Send(link.RestTimerStarted(sec))
}

// UpdateHealth forwards fresh health readings to the watch. Nil fields
// are omitted and the watch keeps its remembered values.
func (c *Controller) UpdateHealth(heartRate, calories, bloodOxygen *float64) {
	if heartRate != nil {
		c.heartRate = heartRate
	}
	if calories != nil {
		c.calories = calories
	}
	if bloodOxygen != nil {
		c.bloodOxygen = bloodOxygen
	}
	if c.active {
		c.out.Send(link.HealthDataUpdate(heartRate, calories, bloodOxygen))
	}
}

// End finishes the session: persists the workout summary, tells the watch,
// and resets to idle.
func (c *Controller) End(ctx context.Context) error {
	if !c.active {
		return ErrNoSession
	}

	row := models.WorkoutRow{
		ID:             c.workoutID,
		UserID:         c.userID,
		Name:           c.plan.Name,
		StartTime:      c.startedAt,
		EndTime:        c.startedAt.Add(time.Duration(c.elapsedSec) * time.Second),
		DurationSec:    float64(c.elapsedSec),
		ExerciseCount:  c.exercisesCompleted,
		ActiveCalories: c.calories,
		AvgHeartRate:   c.heartRate,
		Source:         "fitlink",
	}
	if c.rec != nil {
		if _, err := c.rec.InsertWorkout(ctx, row); err != nil {
			c.log.Warn("workout not persisted", "workout", c.plan.Name, "error", err)
		}
	}

	c.out.Send(link.WorkoutEnded(c.elapsedSec, c.exercisesCompleted))
	c.log.Info("workout ended", "workout", c.plan.Name,
		"duration_sec", c.elapsedSec, "sets", c.setsLogged, "exercises", c.exercisesCompleted)
	c.reset()
	return nil
}

// Receive applies a watch-originated message. Unrecognized kinds and
// actions are ignored.
func (c *Controller) Receive(ctx context.Context, msg link.Message) error {
	switch msg.Kind {
	case link.KindSetCompleted:
		return c.LogSet(ctx, msg.Weight, msg.Reps, msg.Timestamp)
	case link.KindWorkoutAction:
		return c.Apply(ctx, msg.Action)
	case link.KindRequestSync:
		if c.active {
			c.out.Send(c.syncMessage())
		}
		return nil
	default:
		return nil
	}
}

// Apply executes a workout action from either device.
func (c *Controller) Apply(ctx context.Context, a link.Action) error {
	if !c.active {
		return ErrNoSession
	}
	switch a {
	case link.ActionPause:
		c.paused = true
		c.out.Send(c.syncMessage())
	case link.ActionResume:
		c.paused = false
		c.out.Send(c.syncMessage())
	case link.ActionSkipRest:
		if c.resting {
			c.resting = false
			c.restRemaining = 0
			c.out.Send(link.RestTimerEnded())
		}
	case link.ActionExtendRest30:
		if c.resting {
			c.restRemaining += 30
			c.out.Send(link.RestTimerStarted(c.restRemaining))
		}
	case link.ActionSkipExercise:
		c.exercisesCompleted++
		if c.exerciseIdx+1 >= len(c.plan.Exercises) {
			return c.End(ctx)
		}
		c.advanceExercise(0)
	case link.ActionEndWorkout:
		return c.End(ctx)
	default:
		c.log.Warn("unknown workout action ignored", "action", string(a))
	}
	return nil
}

// Status is a read-only snapshot of the session for the HTTP API.
type Status struct {
	Active             bool     `json:"active"`
	WorkoutID          string   `json:"workout_id,omitempty"`
	WorkoutName        string   `json:"workout_name,omitempty"`
	Exercise           string   `json:"exercise,omitempty"`
	CurrentSet         int      `json:"current_set,omitempty"`
	TotalSets          int      `json:"total_sets,omitempty"`
	ElapsedSec         int      `json:"elapsed_sec"`
	RestRemainingSec   int      `json:"rest_remaining_sec"`
	Resting            bool     `json:"resting"`
	Paused             bool     `json:"paused"`
	CountdownSec       int      `json:"countdown_sec,omitempty"`
	SetsLogged         int      `json:"sets_logged"`
	ExercisesCompleted int      `json:"exercises_completed"`
	HeartRate          *float64 `json:"heart_rate,omitempty"`
	Calories           *float64 `json:"calories,omitempty"`
	BloodOxygen        *float64 `json:"blood_oxygen,omitempty"`
}

// Status returns the current snapshot.
func (c *Controller) Status() Status {
	s := Status{
		Active:             c.active,
		ElapsedSec:         c.elapsedSec,
		RestRemainingSec:   c.restRemaining,
		Resting:            c.resting,
		Paused:             c.paused,
		CountdownSec:       c.countdown,
		SetsLogged:         c.setsLogged,
		ExercisesCompleted: c.exercisesCompleted,
		HeartRate:          c.heartRate,
		Calories:           c.calories,
		BloodOxygen:        c.bloodOxygen,
	}
	if c.active {
		ex := c.plan.Exercises[c.exerciseIdx]
		s.WorkoutID = c.workoutID.String()
		s.WorkoutName = c.plan.Name
		s.Exercise = ex.Name
		s.CurrentSet = c.currentSet
		s.TotalSets = ex.Sets
	}
	return s
}

// syncMessage builds the full-state workout_update used for request_sync
// and pause/resume confirmation.
func (c *Controller) syncMessage() link.Message {
	ex := c.plan.Exercises[c.exerciseIdx]
	return link.Message{
		Kind:          link.KindWorkoutUpdate,
		Name:          c.plan.Name,
		Exercise:      ex.Name,
		SetNumber:     c.currentSet,
		TotalSets:     ex.Sets,
		TargetWeight:  ex.TargetWeight,
		TargetReps:    ex.TargetReps,
		Elapsed:       c.elapsedSec,
		Paused:        c.paused,
		Resting:       c.resting,
		RestRemaining: c.restRemaining,
	}
}

func (c *Controller) reset() {
	out, rec, log, uid := c.out, c.rec, c.log, c.userID
	*c = Controller{out: out, rec: rec, log: log, userID: uid}
}
