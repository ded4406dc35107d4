package fsm

import (
	"sync"
	"time"

	"home-monitor/internal/events"
	"home-monitor/internal/schedule"
)

// Security alarm states.
const (
	Disarmed    State = "Disarmed"
	Armed       State = "Armed"
	Triggered   State = "Triggered"
	Deactivated State = "Deactivated"
)

// Security is the intrusion alarm machine. The arm schedule decides when the
// house should be guarded; a contact-sensor open raises the trigger; the
// user override (long press or API) deactivates everything until toggled
// back.
type Security struct {
	name  string
	sched schedule.Schedule
	now   func() time.Time

	mu          sync.Mutex
	trigger     bool
	deactivated bool

	snap securitySnapshot
}

type securitySnapshot struct {
	trigger     bool
	deactivated bool
	armedHours  bool
}

// NewSecurity creates the machine. armSched is the armed hours. now is
// injectable for tests; nil means the process clock.
func NewSecurity(name string, armSched schedule.Schedule, now func() time.Time) *Security {
	if now == nil {
		now = time.Now
	}
	return &Security{name: name, sched: armSched, now: now}
}

// Trip raises the intrusion trigger. Called by the contact-sensor handler;
// the driver clears it when Armed consumes it, so a single open cannot
// re-trigger forever.
func (s *Security) Trip() {
	s.mu.Lock()
	s.trigger = true
	s.mu.Unlock()
}

// ToggleDeactivated flips the user override and returns the new value.
// Unlike the trigger this is a toggle, never auto-cleared.
func (s *Security) ToggleDeactivated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deactivated = !s.deactivated
	return s.deactivated
}

// Deactivated reports the current override value.
func (s *Security) Deactivated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deactivated
}

// Name implements Machine.
func (s *Security) Name() string { return s.name }

// Initial implements Machine.
func (s *Security) Initial() State { return Disarmed }

// Refresh implements Machine.
func (s *Security) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = securitySnapshot{
		trigger:     s.trigger,
		deactivated: s.deactivated,
		armedHours:  s.sched.Contains(s.now()),
	}
}

// Next implements Machine.
func (s *Security) Next(current State) State {
	snap := s.snap
	switch current {
	case Disarmed:
		if snap.deactivated {
			return Deactivated
		}
		if snap.armedHours {
			return Armed
		}
	case Armed:
		if snap.deactivated {
			return Deactivated
		}
		if !snap.armedHours {
			return Disarmed
		}
		if snap.trigger {
			return Triggered
		}
	case Triggered:
		if !snap.armedHours {
			return Disarmed
		}
		if snap.deactivated {
			return Deactivated
		}
	case Deactivated:
		if !snap.deactivated {
			return Disarmed
		}
	}
	return current
}

// Consume implements Machine: entering Triggered consumes the one-shot
// trigger.
func (s *Security) Consume(from, to State) {
	if to != Triggered {
		return
	}
	s.mu.Lock()
	s.trigger = false
	s.mu.Unlock()
}

// EntryEvent implements Machine.
func (s *Security) EntryEvent(st State) events.Kind {
	switch st {
	case Disarmed:
		return events.AlarmDisarmed
	case Armed:
		return events.AlarmArmed
	case Triggered:
		return events.AlarmTriggered
	case Deactivated:
		return events.AlarmDeactivated
	}
	return ""
}

// ExitEvent implements Machine: leaving Deactivated announces reactivation
// before the Disarmed entry event, so downstream hears ALARM_ACTIVATED then
// ALARM_DISARMED.
func (s *Security) ExitEvent(from, to State) events.Kind {
	if from == Deactivated && to == Disarmed {
		return events.AlarmActivated
	}
	return ""
}

// ReemitOnStay implements Machine.
func (s *Security) ReemitOnStay(st State) bool { return false }
