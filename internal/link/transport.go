package link

import (
	"sync"
)

// Endpoint is one side of a reachability-gated link. Send delivers the
// message to the peer immediately when the peer is reachable; otherwise
// the message queues for best-effort delivery on the next reachable edge.
// There are no acknowledgements, retries, or idempotency keys: delivery
// order is preserved within the queue but nothing more is guaranteed.
type Endpoint struct {
	mu        sync.Mutex
	reachable bool
	queue     []Message
	deliver   func(Message)
}

// NewEndpoint creates an endpoint that hands received messages to deliver.
// The endpoint starts unreachable.
func NewEndpoint(deliver func(Message)) *Endpoint {
	return &Endpoint{deliver: deliver}
}

// Send queues or delivers a message to this endpoint's receiver.
func (e *Endpoint) Send(m Message) {
	e.mu.Lock()
	if !e.reachable || e.deliver == nil {
		e.queue = append(e.queue, m)
		e.mu.Unlock()
		return
	}
	deliver := e.deliver
	e.mu.Unlock()
	deliver(m)
}

// SetReachable marks the receiver side as reachable or not. Transitioning
// to reachable flushes queued messages in order.
func (e *Endpoint) SetReachable(reachable bool) {
	e.mu.Lock()
	e.reachable = reachable
	if !reachable || e.deliver == nil {
		e.mu.Unlock()
		return
	}
	pending := e.queue
	e.queue = nil
	deliver := e.deliver
	e.mu.Unlock()

	for _, m := range pending {
		deliver(m)
	}
}

// Reachable reports whether the receiver is currently reachable.
func (e *Endpoint) Reachable() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reachable
}

// Pending returns the number of queued, undelivered messages.
func (e *Endpoint) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

// Drain removes and returns all queued messages without delivering them.
// Used by transports that pull rather than push (e.g. an HTTP poller).
func (e *Endpoint) Drain() []Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	pending := e.queue
	e.queue = nil
	return pending
}

// Pair wires two in-memory endpoints so that sending on one delivers to
// the other's handler. Used in-process and in tests.
func Pair(onA, onB func(Message)) (a, b *Endpoint) {
	a = NewEndpoint(onB)
	b = NewEndpoint(onA)
	return a, b
}
