package fsm

import (
	"context"
	"time"

	"home-monitor/internal/events"
	"home-monitor/internal/schedule"
	"home-monitor/internal/trains"
)

// Delay indicator states.
const (
	NoDelays State = "NoDelays"
	Delays   State = "Delays"
)

// DelayLookup is the train-delay collaborator. Implementations return a safe
// empty list on lookup failure rather than an error: a stale "no delays" is
// acceptable, a crashed tick is not.
type DelayLookup interface {
	Delays(ctx context.Context, from, to string) []trains.DelayRecord
}

// DelayIndicator is the two-state train delay machine. Unlike the alarms it
// holds no mutable flags: every input is fetched fresh on each tick from the
// lookup and the indication schedule.
type DelayIndicator struct {
	name  string
	from  string
	to    string
	look  DelayLookup
	sched schedule.Schedule
	now   func() time.Time

	snap delaySnapshot
}

type delaySnapshot struct {
	hasDelays bool
	schedOn   bool
}

// NewDelayIndicator creates the machine for the from -> to journey. sched is
// the hours during which delays are worth indicating. now is injectable for
// tests; nil means the process clock.
func NewDelayIndicator(name, from, to string, look DelayLookup, sched schedule.Schedule, now func() time.Time) *DelayIndicator {
	if now == nil {
		now = time.Now
	}
	return &DelayIndicator{name: name, from: from, to: to, look: look, sched: sched, now: now}
}

// Name implements Machine.
func (d *DelayIndicator) Name() string { return d.name }

// Initial implements Machine.
func (d *DelayIndicator) Initial() State { return NoDelays }

// Refresh implements Machine: the delay list and schedule check are fetched
// fresh each tick. The lookup's own timeout bounds the fetch.
func (d *DelayIndicator) Refresh() {
	delays := d.look.Delays(context.Background(), d.from, d.to)
	d.snap = delaySnapshot{
		hasDelays: len(delays) > 0,
		schedOn:   d.sched.Contains(d.now()),
	}
}

// Next implements Machine.
func (d *DelayIndicator) Next(current State) State {
	switch current {
	case NoDelays:
		if d.snap.hasDelays && d.snap.schedOn {
			return Delays
		}
	case Delays:
		if !d.snap.hasDelays || !d.snap.schedOn {
			return NoDelays
		}
	}
	return current
}

// Consume implements Machine: nothing one-shot here.
func (d *DelayIndicator) Consume(from, to State) {}

// EntryEvent implements Machine.
func (d *DelayIndicator) EntryEvent(s State) events.Kind {
	switch s {
	case Delays:
		return events.TrainDelays
	case NoDelays:
		return events.TrainNoDelays
	}
	return ""
}

// ExitEvent implements Machine.
func (d *DelayIndicator) ExitEvent(from, to State) events.Kind { return "" }

// ReemitOnStay implements Machine: NoDelays re-emits on every parked tick so
// the dispatch side keeps retrying the cancel of a stuck bulb alert. A
// deliberate exception to the engine's silent-stay rule.
func (d *DelayIndicator) ReemitOnStay(s State) bool { return s == NoDelays }
