package fsm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"home-monitor/internal/events"
	"home-monitor/internal/schedule"
	"home-monitor/internal/trains"
)

// fakeLookup returns a settable delay list and records calls.
type fakeLookup struct {
	delays []trains.DelayRecord
	calls  int
}

func (f *fakeLookup) Delays(ctx context.Context, from, to string) []trains.DelayRecord {
	f.calls++
	return f.delays
}

func delayRig(t *testing.T, windows ...string) (*fakeLookup, *Engine, *events.Queue) {
	t.Helper()
	if len(windows) == 0 {
		windows = []string{"00:01-23:59"}
	}
	sched, err := schedule.Parse(time.UTC, windows)
	require.NoError(t, err)

	look := &fakeLookup{}
	q := events.NewQueue(100)
	d := NewDelayIndicator("delay-indicator", "WAT", "WIN", look, sched, fixedNoon)
	e := NewEngine(d, q, time.Second)
	return look, e, q
}

func someDelay() []trains.DelayRecord {
	return []trains.DelayRecord{{STD: "06:41", ETD: "06:57", Destination: "Winchester"}}
}

func TestDelayIndicatorInitialEventAndLookupPerTick(t *testing.T) {
	look, e, q := delayRig(t)
	assert.Equal(t, NoDelays, e.Current())
	assert.Equal(t, []events.Kind{events.TrainNoDelays}, drain(q))

	e.Tick()
	e.Tick()
	assert.Equal(t, 2, look.calls, "the delay list is fetched fresh each tick")
}

func TestDelayIndicatorRoundTrip(t *testing.T) {
	look, e, q := delayRig(t)
	drain(q)

	look.delays = someDelay()
	e.Tick()
	require.Equal(t, Delays, e.Current())
	assert.Equal(t, []events.Kind{events.TrainDelays}, drain(q))

	// Delays persisting is silent.
	e.Tick()
	assert.Equal(t, Delays, e.Current())
	assert.Empty(t, drain(q))

	look.delays = nil
	e.Tick()
	require.Equal(t, NoDelays, e.Current())
	assert.Equal(t, []events.Kind{events.TrainNoDelays}, drain(q))
}

// NoDelays re-emits its entry event every parked tick: the dispatch side
// uses the repeat to retry cancelling a stuck bulb alert. This is the one
// sanctioned exception to the silent-stay rule.
func TestDelayIndicatorNoDelaysReemitsEveryTick(t *testing.T) {
	_, e, q := delayRig(t)
	drain(q)

	e.Tick()
	e.Tick()
	e.Tick()
	assert.Equal(t,
		[]events.Kind{events.TrainNoDelays, events.TrainNoDelays, events.TrainNoDelays},
		drain(q))
}

func TestDelayIndicatorGatedBySchedule(t *testing.T) {
	// Indication window long over by noon.
	look, e, q := delayRig(t, "05:30-07:00")
	drain(q)

	look.delays = someDelay()
	e.Tick()
	assert.Equal(t, NoDelays, e.Current(), "delays outside the window are not indicated")
}

func TestDelayIndicatorClearsWhenScheduleCloses(t *testing.T) {
	sched, err := schedule.Parse(time.UTC, []string{"05:30-07:00"})
	require.NoError(t, err)

	now := time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)
	look := &fakeLookup{delays: someDelay()}
	q := events.NewQueue(100)
	d := NewDelayIndicator("delay-indicator", "WAT", "WIN", look, sched, func() time.Time { return now })
	e := NewEngine(d, q, time.Second)
	drain(q)

	e.Tick()
	require.Equal(t, Delays, e.Current())
	drain(q)

	// Window closes while the delays persist: indication comes down.
	now = time.Date(2026, 3, 2, 7, 1, 0, 0, time.UTC)
	e.Tick()
	require.Equal(t, NoDelays, e.Current())
	assert.Equal(t, []events.Kind{events.TrainNoDelays}, drain(q))
}
