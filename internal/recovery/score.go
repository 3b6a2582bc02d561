// Package recovery computes a daily readiness score from sleep, heart
// rate variability, and resting heart rate relative to personal baselines.
package recovery

import "math"

// Component weights. When an input is missing its weight is
// redistributed across the components that are present.
const (
	sleepWeight = 0.40
	hrvWeight   = 0.30
	rhrWeight   = 0.30
)

// sleepTargetHours is the amount of sleep that earns a full sleep score.
const sleepTargetHours = 8.0

// Inputs are last night's values plus trailing baselines. Nil means the
// value is unavailable.
type Inputs struct {
	SleepHours  *float64
	HRV         *float64
	HRVBaseline *float64
	RHR         *float64
	RHRBaseline *float64
}

// Score is the computed readiness for a day.
type Score struct {
	Value      int      `json:"score"`
	Label      string   `json:"label"`
	SleepScore *float64 `json:"sleep_score,omitempty"`
	HRVScore   *float64 `json:"hrv_score,omitempty"`
	RHRScore   *float64 `json:"rhr_score,omitempty"`
}

// Compute derives the 0-100 readiness score. With no inputs at all it
// returns a neutral 50.
func Compute(in Inputs) Score {
	var (
		total       float64
		totalWeight float64
		s           Score
	)

	if in.SleepHours != nil {
		v := clamp(*in.SleepHours/sleepTargetHours*100, 0, 100)
		s.SleepScore = &v
		total += v * sleepWeight
		totalWeight += sleepWeight
	}

	if in.HRV != nil && in.HRVBaseline != nil && *in.HRVBaseline > 0 {
		// Higher HRV than baseline is good. 100 at or above baseline,
		// scaled down linearly to 0 at half the baseline.
		ratio := *in.HRV / *in.HRVBaseline
		v := clamp((ratio-0.5)*200, 0, 100)
		s.HRVScore = &v
		total += v * hrvWeight
		totalWeight += hrvWeight
	}

	if in.RHR != nil && in.RHRBaseline != nil && *in.RHRBaseline > 0 {
		// Lower resting HR than baseline is good. 100 at or below
		// baseline, scaled down to 0 at 1.5x baseline.
		ratio := *in.RHR / *in.RHRBaseline
		v := clamp((1.5-ratio)*200, 0, 100)
		s.RHRScore = &v
		total += v * rhrWeight
		totalWeight += rhrWeight
	}

	if totalWeight == 0 {
		s.Value = 50
	} else {
		s.Value = int(math.Round(total / totalWeight))
	}
	s.Label = label(s.Value)
	return s
}

func label(score int) string {
	switch {
	case score >= 80:
		return "Ready"
	case score >= 60:
		return "Moderate"
	case score >= 40:
		return "Take it easy"
	default:
		return "Rest"
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
