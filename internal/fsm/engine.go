// Package fsm holds the schedule-aware state machine core: a generic
// periodic driver plus the three concrete machines it runs (freezer alarm,
// security alarm, train delay indicator).
//
// Each machine is a closed set of named states with a pure transition
// function over a context snapshot. The driver ticks at a fixed interval,
// asks the machine for its successor state and, only when the state actually
// changes, emits that state's entry event onto the shared queue exactly
// once. Machines never block on I/O inside a tick: sensor collaborators
// mutate the machine's context through setters and the tick reads a
// snapshot.
package fsm

import (
	"context"
	"log"
	"sync"
	"time"

	"home-monitor/internal/events"
)

// State names one state of a machine. Each machine defines its own closed
// set of State constants.
type State string

// Machine is the transition core of one state machine.
//
// Next must be a pure function of the current state and the snapshot taken
// by the preceding Refresh call: no mutation, no event emission, and total
// over every state/flag combination (an unhandled input means "stay").
type Machine interface {
	// Name identifies the machine as the source of its events.
	Name() string

	// Initial is the state the machine starts in.
	Initial() State

	// Refresh snapshots the machine's inputs for the tick: context flags,
	// schedule checks and any collaborator lookups. Called once per tick,
	// before Next.
	Refresh()

	// Next returns the successor of current. Returning current means stay.
	Next(current State) State

	// Consume clears any one-shot override flags that the from->to
	// transition has consumed. Called after Next decides a transition and
	// before the new state's entry event fires.
	Consume(from, to State)

	// EntryEvent is the event emitted when s becomes current, or "" for
	// none.
	EntryEvent(s State) events.Kind

	// ExitEvent is an event emitted on leaving from for to, before to's
	// entry event. Almost always ""; the security machine uses it to
	// announce reactivation on the way out of Deactivated.
	ExitEvent(from, to State) events.Kind

	// ReemitOnStay reports whether s re-fires its entry event on every tick
	// the machine remains in it. A deliberate per-machine exception to the
	// silent-stay rule; only the delay indicator's NoDelays uses it.
	ReemitOnStay(s State) bool
}

// Engine drives one Machine on a periodic tick.
type Engine struct {
	machine  Machine
	queue    *events.Queue
	interval time.Duration

	mu      sync.Mutex
	current State
}

// NewEngine creates a driver for machine, emitting entry events onto queue.
// The initial state's entry event fires here, on construction: downstream
// actuators rely on the initial notification (e.g. FREEZER_ALARM_TEMP_NORMAL
// turns the indicator bulb off at startup).
func NewEngine(machine Machine, queue *events.Queue, interval time.Duration) *Engine {
	e := &Engine{
		machine:  machine,
		queue:    queue,
		interval: interval,
		current:  machine.Initial(),
	}
	log.Printf("FSM: %s starting in state %s", machine.Name(), e.current)
	e.emit(machine.EntryEvent(e.current))
	return e
}

// Current returns the machine's current state.
func (e *Engine) Current() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Run ticks the machine until ctx is cancelled. Stopping means no further
// ticks are scheduled; a tick in flight finishes. A panic inside a
// transition function is a programming defect, not a runtime condition: it
// is left to kill the driver so the process supervisor restarts it.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Printf("FSM: %s driver stopped", e.machine.Name())
			return
		case <-ticker.C:
			e.Tick()
		}
	}
}

// Tick performs one evaluation: refresh inputs, compute the successor, and
// on a genuine change perform the transition with exactly one entry
// emission. Staying in the current state is silent unless the machine opts
// that state into re-emission.
func (e *Engine) Tick() {
	e.machine.Refresh()

	cur := e.Current()
	next := e.machine.Next(cur)

	if next == cur {
		if e.machine.ReemitOnStay(cur) {
			e.emit(e.machine.EntryEvent(cur))
		}
		return
	}

	e.machine.Consume(cur, next)
	e.emit(e.machine.ExitEvent(cur, next))

	e.mu.Lock()
	e.current = next
	e.mu.Unlock()

	log.Printf("FSM: %s %s -> %s", e.machine.Name(), cur, next)
	e.emit(e.machine.EntryEvent(next))
}

func (e *Engine) emit(kind events.Kind) {
	if kind == "" {
		return
	}
	e.queue.Put(events.New(kind, e.machine.Name()))
}
