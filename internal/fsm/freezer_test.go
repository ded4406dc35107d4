package fsm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"home-monitor/internal/events"
	"home-monitor/internal/schedule"
)

// Always-day and always-night offline schedules, as the original test rig
// used them.
func daySchedule(t *testing.T) schedule.Schedule {
	t.Helper()
	s, err := schedule.Parse(time.UTC, []string{"00:01-23:59"})
	require.NoError(t, err)
	return s
}

func nightSchedule(t *testing.T) schedule.Schedule {
	t.Helper()
	s, err := schedule.Parse(time.UTC, []string{"23:58-23:59"})
	require.NoError(t, err)
	return s
}

func fixedNoon() time.Time {
	return time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
}

func newFreezerRig(t *testing.T, sched schedule.Schedule) (*Freezer, *Engine, *events.Queue) {
	t.Helper()
	q := events.NewQueue(100)
	f := NewFreezer("freezer-alarm", sched, fixedNoon)
	e := NewEngine(f, q, time.Second)
	return f, e, q
}

func TestFreezerInitialStateEmitsTempNormal(t *testing.T) {
	_, e, q := newFreezerRig(t, daySchedule(t))
	assert.Equal(t, TempNormal, e.Current())
	assert.Equal(t, []events.Kind{events.FreezerTempNormal}, drain(q))
}

// Scenario: normal -> high temperature -> disabled by long press.
func TestFreezerTempHighThenDisable(t *testing.T) {
	f, e, q := newFreezerRig(t, daySchedule(t))
	drain(q)

	f.SetTempHigh(true)
	e.Tick()
	require.Equal(t, TempHigh, e.Current())
	assert.Equal(t, []events.Kind{events.FreezerTempHigh}, drain(q))

	f.RequestDisable()
	e.Tick()
	require.Equal(t, Disabled, e.Current())
	assert.Equal(t, []events.Kind{events.FreezerDisabled}, drain(q))

	// Staying disabled while hot is silent.
	e.Tick()
	assert.Equal(t, Disabled, e.Current())
	assert.Empty(t, drain(q))

	// Temperature recovers: alarm re-enables.
	f.SetTempHigh(false)
	e.Tick()
	require.Equal(t, TempNormal, e.Current())
	assert.Equal(t, []events.Kind{events.FreezerTempNormal}, drain(q))
}

// Scenario: sensor goes silent during the day, then comes back.
func TestFreezerOfflineDayRoundTrip(t *testing.T) {
	f, e, q := newFreezerRig(t, daySchedule(t))
	drain(q)

	f.SetSensorOnline(false)
	e.Tick()
	require.Equal(t, OfflineDay, e.Current())
	assert.Equal(t, []events.Kind{events.FreezerSensorOfflineDay}, drain(q))

	f.SetSensorOnline(true)
	e.Tick()
	require.Equal(t, TempNormal, e.Current())
	assert.Equal(t, []events.Kind{events.FreezerTempNormal}, drain(q))
}

func TestFreezerOfflineNightRoundTrip(t *testing.T) {
	f, e, q := newFreezerRig(t, nightSchedule(t))
	drain(q)

	f.SetSensorOnline(false)
	e.Tick()
	require.Equal(t, OfflineNight, e.Current())
	assert.Equal(t, []events.Kind{events.FreezerSensorOfflineNight}, drain(q))

	e.Tick()
	assert.Equal(t, OfflineNight, e.Current())
	assert.Empty(t, drain(q))

	f.SetSensorOnline(true)
	e.Tick()
	assert.Equal(t, TempNormal, e.Current())
	assert.Equal(t, []events.Kind{events.FreezerTempNormal}, drain(q))
}

// Day/night flips while offline follow the schedule, and a long press from
// either offline state disables.
func TestFreezerOfflineDayNightFlipsAndDisable(t *testing.T) {
	q := events.NewQueue(100)
	now := fixedNoon()
	clock := func() time.Time { return now }
	sched, err := schedule.Parse(time.UTC, []string{"08:00-22:00"})
	require.NoError(t, err)

	f := NewFreezer("freezer-alarm", sched, clock)
	e := NewEngine(f, q, time.Second)
	drain(q)

	f.SetSensorOnline(false)
	e.Tick()
	require.Equal(t, OfflineDay, e.Current())
	drain(q)

	// Clock rolls past the window: day -> night.
	now = time.Date(2026, 3, 2, 23, 0, 0, 0, time.UTC)
	e.Tick()
	require.Equal(t, OfflineNight, e.Current())
	assert.Equal(t, []events.Kind{events.FreezerSensorOfflineNight}, drain(q))

	// And back again.
	now = time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	e.Tick()
	require.Equal(t, OfflineDay, e.Current())
	assert.Equal(t, []events.Kind{events.FreezerSensorOfflineDay}, drain(q))

	f.RequestDisable()
	e.Tick()
	require.Equal(t, Disabled, e.Current())
	assert.Equal(t, []events.Kind{events.FreezerDisabled}, drain(q))

	// The override was consumed on entry; recovery returns to TempNormal
	// and stays there.
	f.SetSensorOnline(true)
	e.Tick()
	require.Equal(t, TempNormal, e.Current())
	e.Tick()
	assert.Equal(t, TempNormal, e.Current())
}

// The offline checks outrank the temperature check from TempNormal.
func TestFreezerOfflineBeatsTempHigh(t *testing.T) {
	f, e, q := newFreezerRig(t, daySchedule(t))
	drain(q)

	f.SetTempHigh(true)
	f.SetSensorOnline(false)
	e.Tick()
	assert.Equal(t, OfflineDay, e.Current())
}

// The disable override is one-shot: consumed on entry to Disabled, so it
// cannot re-fire after recovery.
func TestFreezerDisableConsumedOnEntry(t *testing.T) {
	f, e, q := newFreezerRig(t, daySchedule(t))
	drain(q)

	f.SetTempHigh(true)
	e.Tick()
	f.RequestDisable()
	e.Tick()
	require.Equal(t, Disabled, e.Current())

	f.SetTempHigh(false)
	e.Tick()
	require.Equal(t, TempNormal, e.Current())

	// If the flag were still set, a later TempHigh -> Disabled would happen
	// without a new long press.
	f.SetTempHigh(true)
	e.Tick()
	require.Equal(t, TempHigh, e.Current())
	e.Tick()
	assert.Equal(t, TempHigh, e.Current(), "stale override must not disable again")
}

// A disable request in TempNormal has no transition to fire; it waits until
// a state that consumes it.
func TestFreezerDisableIgnoredInTempNormal(t *testing.T) {
	f, e, q := newFreezerRig(t, daySchedule(t))
	drain(q)

	f.RequestDisable()
	e.Tick()
	assert.Equal(t, TempNormal, e.Current())
	assert.Empty(t, drain(q))
}

// Purity and totality: identical snapshots map to identical successors, and
// every state has a defined successor for every flag combination.
func TestFreezerTransitionTotalAndDeterministic(t *testing.T) {
	states := []State{TempNormal, TempHigh, Disabled, OfflineDay, OfflineNight}
	scheds := map[string]schedule.Schedule{"day": daySchedule(t), "night": nightSchedule(t)}

	for name, sched := range scheds {
		for _, cur := range states {
			for flags := 0; flags < 8; flags++ {
				f := NewFreezer("freezer-alarm", sched, fixedNoon)
				f.SetSensorOnline(flags&1 != 0)
				f.SetTempHigh(flags&2 != 0)
				if flags&4 != 0 {
					f.RequestDisable()
				}
				f.Refresh()

				first := f.Next(cur)
				assert.Contains(t, states, first,
					"%s/%s flags=%03b: successor must be a defined state", name, cur, flags)
				for i := 0; i < 3; i++ {
					assert.Equal(t, first, f.Next(cur),
						"%s/%s flags=%03b: Next must be pure", name, cur, flags)
				}
			}
		}
	}
}
