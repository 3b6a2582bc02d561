package link

// Phase is the watch-side display phase. The phases are mutually
// exclusive, which is what keeps rest display and active-set display
// from ever being shown together.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseCountingDown
	PhaseActive
	PhaseResting
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseCountingDown:
		return "countingDown"
	case PhaseActive:
		return "active"
	case PhaseResting:
		return "resting"
	default:
		return "unknown"
	}
}

// countdownTicks is the fixed pre-workout countdown length.
const countdownTicks = 3

// Mirror is the watch-side state machine. It has no independent source of
// truth: state changes are driven by received messages, plus a local 1 Hz
// tick that runs the countdown and the rest/elapsed displays. The phone
// periodically resynchronizes elapsed time, so any local drift self-heals.
type Mirror struct {
	Phase Phase

	WorkoutName string
	Exercise    string
	CurrentSet  int
	TotalSets   int

	TargetWeight *float64
	TargetReps   *int

	ElapsedSec       int
	RestRemainingSec int
	CountdownSec     int
	Paused           bool

	HeartRate   *float64
	Calories    *float64
	BloodOxygen *float64
}

// NewMirror returns an idle mirror.
func NewMirror() *Mirror {
	return &Mirror{Phase: PhaseIdle}
}

// Apply processes one received message. Unrecognized kinds leave the
// state unchanged; absent optional fields keep their remembered values.
func (m *Mirror) Apply(msg Message) {
	switch msg.Kind {
	case KindWorkoutStarted:
		m.reset()
		m.WorkoutName = msg.Name
		m.Exercise = msg.Exercise
		m.TotalSets = msg.TotalSets
		m.CurrentSet = clampSet(1, msg.TotalSets)
		if msg.ShowCountdown {
			m.Phase = PhaseCountingDown
			m.CountdownSec = countdownTicks
		} else {
			m.Phase = PhaseActive
		}

	case KindCountdownStarted:
		if m.Phase == PhaseIdle {
			m.Phase = PhaseCountingDown
			m.CountdownSec = countdownTicks
		}

	case KindExerciseChanged:
		m.Exercise = msg.Exercise
		if msg.TotalSets > 0 {
			m.TotalSets = msg.TotalSets
		}
		m.CurrentSet = clampSet(msg.SetNumber, m.TotalSets)
		if msg.TargetWeight != nil {
			m.TargetWeight = msg.TargetWeight
		}
		if msg.TargetReps != nil {
			m.TargetReps = msg.TargetReps
		}

	case KindRestTimerStarted:
		// Also accepted while already resting: the phone re-announces the
		// timer when the user extends it.
		if m.Phase == PhaseActive || m.Phase == PhaseResting {
			m.Phase = PhaseResting
			m.RestRemainingSec = msg.Duration
		}

	case KindRestTimerEnded:
		if m.Phase == PhaseResting {
			m.Phase = PhaseActive
			m.RestRemainingSec = 0
		}

	case KindHealthDataUpdate:
		if msg.HeartRate != nil {
			m.HeartRate = msg.HeartRate
		}
		if msg.Calories != nil {
			m.Calories = msg.Calories
		}
		if msg.BloodOxygen != nil {
			m.BloodOxygen = msg.BloodOxygen
		}

	case KindElapsedTimeUpdate:
		// Phone is authoritative for elapsed time.
		m.ElapsedSec = msg.Elapsed

	case KindWorkoutUpdate:
		m.WorkoutName = msg.Name
		m.Exercise = msg.Exercise
		if msg.TotalSets > 0 {
			m.TotalSets = msg.TotalSets
		}
		m.CurrentSet = clampSet(msg.SetNumber, m.TotalSets)
		m.ElapsedSec = msg.Elapsed
		m.Paused = msg.Paused
		m.RestRemainingSec = msg.RestRemaining
		if msg.Resting {
			m.Phase = PhaseResting
		} else if m.Phase != PhaseCountingDown {
			m.Phase = PhaseActive
		}

	case KindWorkoutEnded:
		m.reset()

	default:
		// Unknown tag: no-op.
	}
}

// Tick advances local display timers by one second. The rest display can
// reach zero before the phone's rest_timer_ended arrives; the phase only
// changes on that message or a local skip.
func (m *Mirror) Tick() {
	switch m.Phase {
	case PhaseCountingDown:
		m.CountdownSec--
		if m.CountdownSec <= 0 {
			m.CountdownSec = 0
			m.Phase = PhaseActive
		}
	case PhaseActive:
		if !m.Paused {
			m.ElapsedSec++
		}
	case PhaseResting:
		if !m.Paused {
			m.ElapsedSec++
			if m.RestRemainingSec > 0 {
				m.RestRemainingSec--
			}
		}
	}
}

// SkipRest is the local skip input: it returns the display to the active
// set without waiting for the phone's rest_timer_ended.
func (m *Mirror) SkipRest() {
	if m.Phase == PhaseResting {
		m.Phase = PhaseActive
		m.RestRemainingSec = 0
	}
}

func (m *Mirror) reset() {
	*m = Mirror{Phase: PhaseIdle}
}

func clampSet(set, total int) int {
	if set < 1 {
		set = 1
	}
	if total > 0 && set > total {
		return total
	}
	return set
}
