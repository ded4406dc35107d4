package fsm

import (
	"sync"
	"time"

	"home-monitor/internal/events"
	"home-monitor/internal/schedule"
)

// Freezer alarm states.
const (
	TempNormal   State = "TempNormal"
	TempHigh     State = "TempHigh"
	Disabled     State = "Disabled"
	OfflineDay   State = "OfflineDay"
	OfflineNight State = "OfflineNight"
)

// Freezer is the freezer temperature alarm machine. The Zigbee ingestion
// side owns the sensor flags (online, temp high); the button handler raises
// the disable override; the driver is the only clearer of that override.
type Freezer struct {
	name  string
	sched schedule.Schedule
	now   func() time.Time

	mu           sync.Mutex
	sensorOnline bool
	tempHigh     bool
	disabled     bool

	snap freezerSnapshot
}

type freezerSnapshot struct {
	sensorOnline bool
	tempHigh     bool
	disabled     bool
	inSchedule   bool
}

// NewFreezer creates the machine. offlineSched is the hours during which a
// silent sensor is worth an indicator light (outside them the house is
// asleep and the bulb stays dark). now is injectable for tests; nil means
// the process clock.
func NewFreezer(name string, offlineSched schedule.Schedule, now func() time.Time) *Freezer {
	if now == nil {
		now = time.Now
	}
	return &Freezer{
		name:         name,
		sched:        offlineSched,
		now:          now,
		sensorOnline: true,
	}
}

// SetSensorOnline is called by the ingestion watchdog that tracks report
// age. The watchdog owns the offline timeout; the machine only sees the
// resulting boolean.
func (f *Freezer) SetSensorOnline(online bool) {
	f.mu.Lock()
	f.sensorOnline = online
	f.mu.Unlock()
}

// SetTempHigh is called by the temperature-report handler on threshold
// crossings.
func (f *Freezer) SetTempHigh(high bool) {
	f.mu.Lock()
	f.tempHigh = high
	f.mu.Unlock()
}

// RequestDisable raises the user override (long button press). The driver
// clears it once a transition consumes it.
func (f *Freezer) RequestDisable() {
	f.mu.Lock()
	f.disabled = true
	f.mu.Unlock()
}

// Name implements Machine.
func (f *Freezer) Name() string { return f.name }

// Initial implements Machine.
func (f *Freezer) Initial() State { return TempNormal }

// Refresh implements Machine: one consistent snapshot per tick.
func (f *Freezer) Refresh() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap = freezerSnapshot{
		sensorOnline: f.sensorOnline,
		tempHigh:     f.tempHigh,
		disabled:     f.disabled,
		inSchedule:   f.sched.Contains(f.now()),
	}
}

// Next implements Machine. Conditions are evaluated in precedence order;
// the first match wins and anything unmatched stays put.
func (f *Freezer) Next(current State) State {
	s := f.snap
	switch current {
	case TempNormal:
		if !s.sensorOnline {
			if s.inSchedule {
				return OfflineDay
			}
			return OfflineNight
		}
		if s.tempHigh {
			return TempHigh
		}
	case TempHigh:
		if s.disabled {
			return Disabled
		}
	case Disabled:
		if s.sensorOnline && !s.tempHigh {
			return TempNormal
		}
	case OfflineDay:
		if s.sensorOnline {
			return TempNormal
		}
		if s.disabled {
			return Disabled
		}
		if !s.inSchedule {
			return OfflineNight
		}
	case OfflineNight:
		if s.sensorOnline {
			return TempNormal
		}
		if s.inSchedule {
			return OfflineDay
		}
		if s.disabled {
			return Disabled
		}
	}
	return current
}

// Consume implements Machine: entering Disabled consumes the one-shot
// override so a later TempNormal does not bounce straight back.
func (f *Freezer) Consume(from, to State) {
	if to != Disabled {
		return
	}
	f.mu.Lock()
	f.disabled = false
	f.mu.Unlock()
}

// EntryEvent implements Machine.
func (f *Freezer) EntryEvent(s State) events.Kind {
	switch s {
	case TempNormal:
		return events.FreezerTempNormal
	case TempHigh:
		return events.FreezerTempHigh
	case Disabled:
		return events.FreezerDisabled
	case OfflineDay:
		return events.FreezerSensorOfflineDay
	case OfflineNight:
		return events.FreezerSensorOfflineNight
	}
	return ""
}

// ExitEvent implements Machine.
func (f *Freezer) ExitEvent(from, to State) events.Kind { return "" }

// ReemitOnStay implements Machine.
func (f *Freezer) ReemitOnStay(s State) bool { return false }
