package orchestrator

import (
	"context"
	"sync"

	"github.com/namazing/namazing/internal/schema"
)

// Mode selects the pipeline width.
type Mode string

const (
	// ModeSerial researches candidates one at a time and caps the list at 24.
	ModeSerial Mode = "serial"
	// ModeParallel fans research out and allows up to 80 candidates.
	ModeParallel Mode = "parallel"
)

// Status is the run lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// MaxEventsPerRun bounds per-run event memory; see rotation in emit.
const MaxEventsPerRun = 500

// Listener receives every event emitted on a run, synchronously.
type Listener func(schema.Event)

// RunRecord is the registry's unit of state for one pipeline run. All fields
// behind mu are mutated only through the record's methods; the registry mutex
// and a record mutex are never held together.
type RunRecord struct {
	ID    string
	Brief string
	Mode  Mode

	mu           sync.Mutex
	status       Status
	events       []schema.Event
	listeners    map[int]Listener
	nextListener int
	result       *schema.RunResult
	errMsg       string

	done     chan struct{}
	doneOnce sync.Once
}

func newRunRecord(id, brief string, mode Mode) *RunRecord {
	return &RunRecord{
		ID:        id,
		Brief:     brief,
		Mode:      mode,
		status:    StatusPending,
		listeners: make(map[int]Listener),
		done:      make(chan struct{}),
	}
}

// Status returns the current lifecycle state.
func (r *RunRecord) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *RunRecord) setStatus(s Status) {
	r.mu.Lock()
	r.status = s
	r.mu.Unlock()
	if s == StatusCompleted || s == StatusFailed {
		r.doneOnce.Do(func() { close(r.done) })
	}
}

// Wait blocks until the run reaches a terminal status or ctx is cancelled.
func (r *RunRecord) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-r.done:
		return nil
	}
}

// Result returns the final result, or nil while the run is in flight.
func (r *RunRecord) Result() *schema.RunResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result
}

func (r *RunRecord) setResult(res *schema.RunResult) {
	r.mu.Lock()
	r.result = res
	r.mu.Unlock()
}

// Err returns the failure message for a failed run, empty otherwise.
func (r *RunRecord) Err() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errMsg
}

func (r *RunRecord) fail(msg string) {
	r.mu.Lock()
	r.status = StatusFailed
	r.errMsg = msg
	r.mu.Unlock()
	r.doneOnce.Do(func() { close(r.done) })
}

// Events returns a copy of the retained event list.
func (r *RunRecord) Events() []schema.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]schema.Event, len(r.events))
	copy(out, r.events)
	return out
}

// subscribe registers a listener and returns an idempotent unsubscribe.
func (r *RunRecord) subscribe(l Listener) func() {
	r.mu.Lock()
	id := r.nextListener
	r.nextListener++
	r.listeners[id] = l
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		delete(r.listeners, id)
		r.mu.Unlock()
	}
}

// emit appends the event, applies retention rotation, then delivers to every
// listener. A panicking listener is isolated so it cannot corrupt the bus or
// starve other listeners.
func (r *RunRecord) emit(ev schema.Event) {
	ev.RunID = r.ID

	r.mu.Lock()
	r.events = append(r.events, ev)
	if len(r.events) > MaxEventsPerRun {
		r.events = rotate(r.events)
	}
	listeners := make([]Listener, 0, len(r.listeners))
	for _, l := range r.listeners {
		listeners = append(listeners, l)
	}
	r.mu.Unlock()

	for _, l := range listeners {
		deliver(l, ev)
	}
}

func deliver(l Listener, ev schema.Event) {
	defer func() { _ = recover() }()
	l(ev)
}

// rotate enforces bounded retention: all critical events survive, and the
// newest rotatable (log/partial) events fill the remaining room. Insertion
// order is preserved within each partition, critical first.
func rotate(events []schema.Event) []schema.Event {
	var critical, rotatable []schema.Event
	for _, ev := range events {
		if ev.Critical() {
			critical = append(critical, ev)
		} else {
			rotatable = append(rotatable, ev)
		}
	}
	room := MaxEventsPerRun - len(critical)
	if room < 0 {
		room = 0
	}
	if len(rotatable) > room {
		rotatable = rotatable[len(rotatable)-room:]
	}
	return append(critical, rotatable...)
}
