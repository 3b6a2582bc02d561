package link

import (
	"testing"
)

// TestSendQueuesWhileUnreachable holds messages until the reachable edge,
// then flushes them in order.
func TestSendQueuesWhileUnreachable(t *testing.T) {
	var got []Message
	e := NewEndpoint(func(m Message) { got = append(got, m) })

	e.Send(CountdownStarted())
	e.Send(RestTimerStarted(60))
	e.Send(RestTimerEnded())

	if len(got) != 0 {
		t.Fatalf("delivered %d messages while unreachable", len(got))
	}
	if e.Pending() != 3 {
		t.Fatalf("pending = %d, want 3", e.Pending())
	}

	e.SetReachable(true)

	if len(got) != 3 {
		t.Fatalf("delivered %d messages after flush, want 3", len(got))
	}
	want := []Kind{KindCountdownStarted, KindRestTimerStarted, KindRestTimerEnded}
	for i, k := range want {
		if got[i].Kind != k {
			t.Errorf("message %d = %s, want %s", i, got[i].Kind, k)
		}
	}
	if e.Pending() != 0 {
		t.Errorf("pending = %d after flush, want 0", e.Pending())
	}
}

// TestSendImmediateWhileReachable delivers without queueing.
func TestSendImmediateWhileReachable(t *testing.T) {
	var got []Message
	e := NewEndpoint(func(m Message) { got = append(got, m) })
	e.SetReachable(true)

	e.Send(ElapsedTimeUpdate(42))

	if len(got) != 1 || got[0].Elapsed != 42 {
		t.Fatalf("got = %+v, want one elapsed_time_update{42}", got)
	}
	if e.Pending() != 0 {
		t.Errorf("pending = %d, want 0", e.Pending())
	}
}

// TestUnreachableEdgeResumesQueueing: dropping reachability queues again.
func TestUnreachableEdgeResumesQueueing(t *testing.T) {
	var got []Message
	e := NewEndpoint(func(m Message) { got = append(got, m) })
	e.SetReachable(true)
	e.Send(CountdownStarted())
	e.SetReachable(false)
	e.Send(RestTimerStarted(30))

	if len(got) != 1 {
		t.Fatalf("delivered = %d, want 1", len(got))
	}
	if e.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", e.Pending())
	}
}

// TestDrain pulls queued messages without delivery, for HTTP polling.
func TestDrain(t *testing.T) {
	e := NewEndpoint(nil)
	e.Send(CountdownStarted())
	e.Send(RestTimerStarted(60))

	msgs := e.Drain()
	if len(msgs) != 2 {
		t.Fatalf("drained = %d, want 2", len(msgs))
	}
	if msgs[0].Kind != KindCountdownStarted || msgs[1].Kind != KindRestTimerStarted {
		t.Errorf("order = %s, %s", msgs[0].Kind, msgs[1].Kind)
	}
	if len(e.Drain()) != 0 {
		t.Error("second drain not empty")
	}
}

// TestPairRoundTrip wires two endpoints so each side's sends reach the
// other's handler once both report reachable.
func TestPairRoundTrip(t *testing.T) {
	mirror := NewMirror()
	var phoneGot []Action

	toWatch, toPhone := Pair(
		func(m Message) { // phone receives
			if m.Kind == KindWorkoutAction {
				phoneGot = append(phoneGot, m.Action)
			}
		},
		func(m Message) { mirror.Apply(m) }, // watch receives
	)
	toWatch.SetReachable(true)
	toPhone.SetReachable(true)

	toWatch.Send(WorkoutStarted("Leg Day", "Squat", 5, false))
	if mirror.Phase != PhaseActive || mirror.Exercise != "Squat" {
		t.Fatalf("mirror = %s %q, want active Squat", mirror.Phase, mirror.Exercise)
	}

	toPhone.Send(WorkoutAction(ActionPause))
	if len(phoneGot) != 1 || phoneGot[0] != ActionPause {
		t.Fatalf("actions = %v, want [pause]", phoneGot)
	}
}
