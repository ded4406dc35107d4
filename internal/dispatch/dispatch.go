// Package dispatch drains the shared event queue and maps each event kind
// to its actuator action: bulb colour, siren start/stop, announcement. The
// mapping is a configuration artifact; the state machines know nothing
// about actuators.
//
// Everything here is best effort. A failed bulb command is logged and
// forgotten; the machines keep evaluating regardless (the delay indicator's
// NoDelays re-emission exists precisely so a stuck alert gets retried).
package dispatch

import (
	"context"
	"log"
	"time"

	"home-monitor/internal/config"
	"home-monitor/internal/events"
)

// Actuators is the device command surface the dispatcher drives.
type Actuators interface {
	SetBulb(colour string) error
	Siren(on bool) error
}

// Recorder receives a copy of every consumed event (journal, history).
type Recorder interface {
	Record(ctx context.Context, e events.Event)
}

// AnnounceFunc queues one spoken announcement.
type AnnounceFunc func(text, source string) error

// Dispatcher is the single consumer of the event queue.
type Dispatcher struct {
	queue     *events.Queue
	actions   map[events.Kind]config.DispatchAction
	act       Actuators
	announce  AnnounceFunc
	recorders []Recorder
	pollEvery time.Duration
}

// New creates the dispatcher. announce may be nil when no announcement
// queue is configured; recorders may be empty.
func New(queue *events.Queue, actions map[string]config.DispatchAction, act Actuators, announce AnnounceFunc, recorders ...Recorder) *Dispatcher {
	mapped := make(map[events.Kind]config.DispatchAction, len(actions))
	for kind, action := range actions {
		mapped[events.Kind(kind)] = action
	}
	return &Dispatcher{
		queue:     queue,
		actions:   mapped,
		act:       act,
		announce:  announce,
		recorders: recorders,
		pollEvery: 500 * time.Millisecond,
	}
}

// Run consumes events until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	log.Printf("DISPATCH: loop started")
	for {
		if ctx.Err() != nil {
			log.Printf("DISPATCH: loop stopped")
			return
		}
		e, ok := d.queue.Poll(d.pollEvery)
		if !ok {
			continue
		}
		d.Handle(ctx, e)
	}
}

// Handle executes the configured action for one event. Exported so tests
// can drive the dispatcher without the polling loop.
func (d *Dispatcher) Handle(ctx context.Context, e events.Event) {
	for _, r := range d.recorders {
		r.Record(ctx, e)
	}

	action, ok := d.actions[e.Kind]
	if !ok {
		log.Printf("DISPATCH: no action mapped for %s from %s", e.Kind, e.Source)
		return
	}
	log.Printf("DISPATCH: %s from %s -> %+v", e.Kind, e.Source, action)

	if action.Bulb != "" {
		if err := d.act.SetBulb(action.Bulb); err != nil {
			log.Printf("DISPATCH: bulb command for %s failed: %v", e.Kind, err)
		}
	}
	if action.Siren != "" {
		if err := d.act.Siren(action.Siren == "start"); err != nil {
			log.Printf("DISPATCH: siren command for %s failed: %v", e.Kind, err)
		}
	}
	if action.Announce != "" && d.announce != nil {
		if err := d.announce(action.Announce, e.Source); err != nil {
			log.Printf("DISPATCH: announcement for %s failed: %v", e.Kind, err)
		}
	}
}
