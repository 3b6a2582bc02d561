package session

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/claude/fitlink/internal/link"
	"github.com/claude/fitlink/internal/models"
)

// fakeRecorder captures persisted rows.
type fakeRecorder struct {
	workouts []models.WorkoutRow
	sets     []models.WorkoutSetRow
	failSets bool
}

func (r *fakeRecorder) InsertWorkout(_ context.Context, row models.WorkoutRow) (bool, error) {
	r.workouts = append(r.workouts, row)
	return true, nil
}

func (r *fakeRecorder) InsertWorkoutSets(_ context.Context, rows []models.WorkoutSetRow) (int64, error) {
	if r.failSets {
		return 0, io.ErrUnexpectedEOF
	}
	r.sets = append(r.sets, rows...)
	return int64(len(rows)), nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPlan() models.WorkoutPlan {
	w, reps := 80.0, 8
	return models.WorkoutPlan{
		Name: "Push Day",
		Exercises: []models.PlannedExercise{
			{ID: "bench-press", Name: "Bench Press", Sets: 2, TargetWeight: &w, TargetReps: &reps, RestSec: 60},
			{ID: "ohp", Name: "Overhead Press", Sets: 2, RestSec: 90},
		},
	}
}

// newTestController returns a controller plus a slice capturing every
// message sent to the watch.
func newTestController(rec Recorder) (*Controller, *[]link.Message) {
	var sent []link.Message
	out := link.NewEndpoint(func(m link.Message) { sent = append(sent, m) })
	out.SetReachable(true)
	return NewController(out, rec, 1, discard()), &sent
}

func kinds(msgs []link.Message) []link.Kind {
	out := make([]link.Kind, len(msgs))
	for i, m := range msgs {
		out[i] = m.Kind
	}
	return out
}

// TestStartEmitsWorkoutStarted announces the plan and the countdown.
func TestStartEmitsWorkoutStarted(t *testing.T) {
	c, sent := newTestController(&fakeRecorder{})

	if err := c.Start(testPlan(), true); err != nil {
		t.Fatalf("start error: %v", err)
	}

	got := kinds(*sent)
	if len(got) != 2 || got[0] != link.KindWorkoutStarted || got[1] != link.KindCountdownStarted {
		t.Fatalf("messages = %v, want [workout_started countdown_started]", got)
	}
	first := (*sent)[0]
	if first.Name != "Push Day" || first.Exercise != "Bench Press" || first.TotalSets != 2 || !first.ShowCountdown {
		t.Errorf("workout_started = %+v", first)
	}
}

// TestSingleSessionInvariant: a second Start fails until End.
func TestSingleSessionInvariant(t *testing.T) {
	c, _ := newTestController(&fakeRecorder{})

	if err := c.Start(testPlan(), false); err != nil {
		t.Fatalf("start error: %v", err)
	}
	if err := c.Start(testPlan(), false); err != ErrSessionActive {
		t.Fatalf("second start error = %v, want ErrSessionActive", err)
	}

	if err := c.End(context.Background()); err != nil {
		t.Fatalf("end error: %v", err)
	}
	if err := c.Start(testPlan(), false); err != nil {
		t.Fatalf("restart after end error: %v", err)
	}
}

// TestLogSetAdvancesAndRests: set 1 of 2 starts the planned rest and
// announces set 2.
func TestLogSetAdvancesAndRests(t *testing.T) {
	rec := &fakeRecorder{}
	c, sent := newTestController(rec)
	ctx := context.Background()

	if err := c.Start(testPlan(), false); err != nil {
		t.Fatalf("start error: %v", err)
	}
	*sent = nil

	if err := c.LogSet(ctx, 80, 8, time.Time{}); err != nil {
		t.Fatalf("log set error: %v", err)
	}

	got := kinds(*sent)
	if len(got) != 2 || got[0] != link.KindExerciseChanged || got[1] != link.KindRestTimerStarted {
		t.Fatalf("messages = %v, want [exercise_changed rest_timer_started]", got)
	}
	if (*sent)[0].SetNumber != 2 {
		t.Errorf("setNumber = %d, want 2", (*sent)[0].SetNumber)
	}
	if (*sent)[1].Duration != 60 {
		t.Errorf("rest duration = %d, want 60", (*sent)[1].Duration)
	}

	if len(rec.sets) != 1 {
		t.Fatalf("persisted sets = %d, want 1", len(rec.sets))
	}
	if rec.sets[0].ExerciseName != "Bench Press" || rec.sets[0].SetNumber != 1 {
		t.Errorf("persisted set = %+v", rec.sets[0])
	}

	st := c.Status()
	if st.CurrentSet != 2 || !st.Resting || st.RestRemainingSec != 60 {
		t.Errorf("status = %+v", st)
	}
}

// TestLastSetOfLastExerciseEndsWorkout persists the summary and resets.
func TestLastSetOfLastExerciseEndsWorkout(t *testing.T) {
	rec := &fakeRecorder{}
	c, sent := newTestController(rec)
	ctx := context.Background()

	if err := c.Start(testPlan(), false); err != nil {
		t.Fatalf("start error: %v", err)
	}

	// Work through all 4 sets; skip the rest timers in between.
	for i := 0; i < 4; i++ {
		if c.Status().Resting {
			if err := c.Apply(ctx, link.ActionSkipRest); err != nil {
				t.Fatalf("skip rest error: %v", err)
			}
		}
		if err := c.LogSet(ctx, 60, 10, time.Time{}); err != nil {
			t.Fatalf("log set %d error: %v", i+1, err)
		}
	}

	if c.Active() {
		t.Fatal("controller still active after final set")
	}
	if len(rec.workouts) != 1 {
		t.Fatalf("persisted workouts = %d, want 1", len(rec.workouts))
	}
	if rec.workouts[0].ExerciseCount != 2 {
		t.Errorf("exerciseCount = %d, want 2", rec.workouts[0].ExerciseCount)
	}
	if len(rec.sets) != 4 {
		t.Errorf("persisted sets = %d, want 4", len(rec.sets))
	}

	last := (*sent)[len(*sent)-1]
	if last.Kind != link.KindWorkoutEnded || last.ExercisesCompleted != 2 {
		t.Errorf("last message = %+v, want workout_ended{exercisesCompleted:2}", last)
	}
}

// TestRestExpiryEmitsRestTimerEnded after the planned duration of ticks.
func TestRestExpiryEmitsRestTimerEnded(t *testing.T) {
	c, sent := newTestController(&fakeRecorder{})
	ctx := context.Background()

	plan := testPlan()
	plan.Exercises[0].RestSec = 3
	if err := c.Start(plan, false); err != nil {
		t.Fatalf("start error: %v", err)
	}
	if err := c.LogSet(ctx, 80, 8, time.Time{}); err != nil {
		t.Fatalf("log set error: %v", err)
	}
	*sent = nil

	c.Tick(ctx)
	c.Tick(ctx)
	if len(*sent) != 0 {
		t.Fatalf("messages before expiry = %v", kinds(*sent))
	}
	c.Tick(ctx)

	got := kinds(*sent)
	if len(got) != 1 || got[0] != link.KindRestTimerEnded {
		t.Fatalf("messages = %v, want [rest_timer_ended]", got)
	}
	if c.Status().Resting {
		t.Error("still resting after expiry")
	}
}

// TestExtendRest30 adds thirty seconds and re-announces the timer.
func TestExtendRest30(t *testing.T) {
	c, sent := newTestController(&fakeRecorder{})
	ctx := context.Background()

	if err := c.Start(testPlan(), false); err != nil {
		t.Fatalf("start error: %v", err)
	}
	if err := c.LogSet(ctx, 80, 8, time.Time{}); err != nil {
		t.Fatalf("log set error: %v", err)
	}
	*sent = nil

	if err := c.Apply(ctx, link.ActionExtendRest30); err != nil {
		t.Fatalf("extend error: %v", err)
	}

	if c.Status().RestRemainingSec != 90 {
		t.Errorf("restRemaining = %d, want 90", c.Status().RestRemainingSec)
	}
	got := *sent
	if len(got) != 1 || got[0].Kind != link.KindRestTimerStarted || got[0].Duration != 90 {
		t.Fatalf("messages = %+v, want rest_timer_started{90}", got)
	}
}

// TestPauseFreezesClock and resume unfreezes it, each confirmed with a
// full state sync.
func TestPauseFreezesClock(t *testing.T) {
	c, sent := newTestController(&fakeRecorder{})
	ctx := context.Background()

	if err := c.Start(testPlan(), false); err != nil {
		t.Fatalf("start error: %v", err)
	}
	c.Tick(ctx)
	c.Tick(ctx)
	*sent = nil

	if err := c.Apply(ctx, link.ActionPause); err != nil {
		t.Fatalf("pause error: %v", err)
	}
	c.Tick(ctx)
	c.Tick(ctx)
	if got := c.Status().ElapsedSec; got != 2 {
		t.Errorf("elapsed = %d while paused, want 2", got)
	}

	if err := c.Apply(ctx, link.ActionResume); err != nil {
		t.Fatalf("resume error: %v", err)
	}
	c.Tick(ctx)
	if got := c.Status().ElapsedSec; got != 3 {
		t.Errorf("elapsed = %d after resume, want 3", got)
	}

	got := kinds(*sent)
	if len(got) != 2 || got[0] != link.KindWorkoutUpdate || got[1] != link.KindWorkoutUpdate {
		t.Errorf("messages = %v, want two workout_update syncs", got)
	}
	if !(*sent)[0].Paused || (*sent)[1].Paused {
		t.Errorf("paused flags = %v/%v, want true/false", (*sent)[0].Paused, (*sent)[1].Paused)
	}
}

// TestRequestSyncEmitsFullState responds with workout_update.
func TestRequestSyncEmitsFullState(t *testing.T) {
	c, sent := newTestController(&fakeRecorder{})
	ctx := context.Background()

	if err := c.Start(testPlan(), false); err != nil {
		t.Fatalf("start error: %v", err)
	}
	c.Tick(ctx)
	*sent = nil

	if err := c.Receive(ctx, link.RequestSync()); err != nil {
		t.Fatalf("receive error: %v", err)
	}

	if len(*sent) != 1 {
		t.Fatalf("messages = %v, want one workout_update", kinds(*sent))
	}
	m := (*sent)[0]
	if m.Kind != link.KindWorkoutUpdate || m.Name != "Push Day" || m.Exercise != "Bench Press" ||
		m.SetNumber != 1 || m.TotalSets != 2 || m.Elapsed != 1 {
		t.Errorf("workout_update = %+v", m)
	}
}

// TestSetCompletedFromWatch routes through LogSet.
func TestSetCompletedFromWatch(t *testing.T) {
	rec := &fakeRecorder{}
	c, _ := newTestController(rec)
	ctx := context.Background()

	if err := c.Start(testPlan(), false); err != nil {
		t.Fatalf("start error: %v", err)
	}
	at := time.Date(2026, 5, 2, 7, 30, 0, 0, time.UTC)
	if err := c.Receive(ctx, link.SetCompleted("bench-press", 82.5, 7, at)); err != nil {
		t.Fatalf("receive error: %v", err)
	}

	if len(rec.sets) != 1 {
		t.Fatalf("persisted sets = %d, want 1", len(rec.sets))
	}
	s := rec.sets[0]
	if s.WeightKg != 82.5 || s.Reps != 7 || !s.CompletedAt.Equal(at) {
		t.Errorf("set = %+v", s)
	}
}

// TestElapsedSyncEvery15Ticks resynchronizes the watch display.
func TestElapsedSyncEvery15Ticks(t *testing.T) {
	c, sent := newTestController(&fakeRecorder{})
	ctx := context.Background()

	if err := c.Start(testPlan(), false); err != nil {
		t.Fatalf("start error: %v", err)
	}
	*sent = nil

	for i := 0; i < 30; i++ {
		c.Tick(ctx)
	}

	var syncs []link.Message
	for _, m := range *sent {
		if m.Kind == link.KindElapsedTimeUpdate {
			syncs = append(syncs, m)
		}
	}
	if len(syncs) != 2 {
		t.Fatalf("elapsed syncs = %d, want 2", len(syncs))
	}
	if syncs[0].Elapsed != 15 || syncs[1].Elapsed != 30 {
		t.Errorf("sync values = %d, %d, want 15, 30", syncs[0].Elapsed, syncs[1].Elapsed)
	}
}

// TestCountdownDelaysClock: ticks during the countdown do not advance
// elapsed time.
func TestCountdownDelaysClock(t *testing.T) {
	c, _ := newTestController(&fakeRecorder{})
	ctx := context.Background()

	if err := c.Start(testPlan(), true); err != nil {
		t.Fatalf("start error: %v", err)
	}
	c.Tick(ctx)
	c.Tick(ctx)
	c.Tick(ctx)
	if got := c.Status().ElapsedSec; got != 0 {
		t.Errorf("elapsed = %d during countdown, want 0", got)
	}
	c.Tick(ctx)
	if got := c.Status().ElapsedSec; got != 1 {
		t.Errorf("elapsed = %d after countdown, want 1", got)
	}
}

// TestRecorderFailureDoesNotStopSession: the workout continues when set
// persistence fails.
func TestRecorderFailureDoesNotStopSession(t *testing.T) {
	rec := &fakeRecorder{failSets: true}
	c, _ := newTestController(rec)
	ctx := context.Background()

	if err := c.Start(testPlan(), false); err != nil {
		t.Fatalf("start error: %v", err)
	}
	if err := c.LogSet(ctx, 80, 8, time.Time{}); err != nil {
		t.Fatalf("log set error: %v", err)
	}
	if !c.Active() {
		t.Error("session ended on recorder failure")
	}
	if got := c.Status().CurrentSet; got != 2 {
		t.Errorf("currentSet = %d, want 2", got)
	}
}

// TestActionsRequireSession returns ErrNoSession when idle.
func TestActionsRequireSession(t *testing.T) {
	c, _ := newTestController(&fakeRecorder{})
	ctx := context.Background()

	if err := c.Apply(ctx, link.ActionPause); err != ErrNoSession {
		t.Errorf("pause error = %v, want ErrNoSession", err)
	}
	if err := c.LogSet(ctx, 50, 5, time.Time{}); err != ErrNoSession {
		t.Errorf("log set error = %v, want ErrNoSession", err)
	}
	if err := c.End(ctx); err != ErrNoSession {
		t.Errorf("end error = %v, want ErrNoSession", err)
	}
}
