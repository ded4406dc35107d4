package dispatch

import (
	"context"
	"errors"
	"testing"

	"home-monitor/internal/config"
	"home-monitor/internal/events"
)

// fakeActuators records every command, standing in for the MQTT publisher.
type fakeActuators struct {
	bulbs  []string
	sirens []bool
	fail   bool
}

func (f *fakeActuators) SetBulb(colour string) error {
	if f.fail {
		return errors.New("bulb unreachable")
	}
	f.bulbs = append(f.bulbs, colour)
	return nil
}

func (f *fakeActuators) Siren(on bool) error {
	if f.fail {
		return errors.New("siren unreachable")
	}
	f.sirens = append(f.sirens, on)
	return nil
}

type fakeRecorder struct {
	seen []events.Event
}

func (f *fakeRecorder) Record(ctx context.Context, e events.Event) {
	f.seen = append(f.seen, e)
}

func testActions() map[string]config.DispatchAction {
	return map[string]config.DispatchAction{
		"FREEZER_ALARM_TEMP_HIGH": {Bulb: "blue"},
		"TRAIN_NO_DELAYS":         {Bulb: "off"},
		"ALARM_TRIGGERED":         {Siren: "start"},
		"ALARM_DEACTIVATED":       {Siren: "stop", Announce: "Alarm deactivated"},
	}
}

func TestDispatcherMapsKindsToActuators(t *testing.T) {
	q := events.NewQueue(10)
	act := &fakeActuators{}
	d := New(q, testActions(), act, nil)

	ctx := context.Background()
	d.Handle(ctx, events.New(events.FreezerTempHigh, "freezer-alarm"))
	d.Handle(ctx, events.New(events.AlarmTriggered, "security-alarm"))
	d.Handle(ctx, events.New(events.TrainNoDelays, "delay-indicator"))

	if len(act.bulbs) != 2 || act.bulbs[0] != "blue" || act.bulbs[1] != "off" {
		t.Errorf("bulb commands = %v", act.bulbs)
	}
	if len(act.sirens) != 1 || act.sirens[0] != true {
		t.Errorf("siren commands = %v", act.sirens)
	}
}

func TestDispatcherAnnounces(t *testing.T) {
	q := events.NewQueue(10)
	act := &fakeActuators{}
	var announced []string
	d := New(q, testActions(), act, func(text, source string) error {
		announced = append(announced, source+": "+text)
		return nil
	})

	d.Handle(context.Background(), events.New(events.AlarmDeactivated, "security-alarm"))

	if len(act.sirens) != 1 || act.sirens[0] != false {
		t.Errorf("siren commands = %v", act.sirens)
	}
	if len(announced) != 1 || announced[0] != "security-alarm: Alarm deactivated" {
		t.Errorf("announcements = %v", announced)
	}
}

// Unmapped kinds are logged and skipped, never an error: the mapping table
// is allowed to be sparse.
func TestDispatcherIgnoresUnmappedKind(t *testing.T) {
	q := events.NewQueue(10)
	act := &fakeActuators{}
	d := New(q, testActions(), act, nil)

	d.Handle(context.Background(), events.New(events.ButtonShortPress, "button"))

	if len(act.bulbs) != 0 || len(act.sirens) != 0 {
		t.Errorf("unmapped kind should not drive actuators: %v %v", act.bulbs, act.sirens)
	}
}

// Actuator failures are best-effort: the dispatcher carries on and still
// records the event.
func TestDispatcherSurvivesActuatorFailure(t *testing.T) {
	q := events.NewQueue(10)
	act := &fakeActuators{fail: true}
	rec := &fakeRecorder{}
	d := New(q, testActions(), act, nil, rec)

	d.Handle(context.Background(), events.New(events.FreezerTempHigh, "freezer-alarm"))

	if len(rec.seen) != 1 {
		t.Fatalf("recorder saw %d events, want 1", len(rec.seen))
	}
}

func TestDispatcherRecordsEveryEvent(t *testing.T) {
	q := events.NewQueue(10)
	act := &fakeActuators{}
	rec := &fakeRecorder{}
	d := New(q, testActions(), act, nil, rec)

	ctx := context.Background()
	d.Handle(ctx, events.New(events.AlarmTriggered, "security-alarm"))
	d.Handle(ctx, events.New(events.ButtonLongPress, "button")) // unmapped, still recorded

	if len(rec.seen) != 2 {
		t.Fatalf("recorder saw %d events, want 2", len(rec.seen))
	}
	if rec.seen[0].Kind != events.AlarmTriggered || rec.seen[1].Kind != events.ButtonLongPress {
		t.Errorf("recorded kinds = %v, %v", rec.seen[0].Kind, rec.seen[1].Kind)
	}
}
