// Package events defines the system event vocabulary shared by the state
// machines, the sensor ingestion side and the actuator dispatch loop.
package events

import "time"

// Kind names a system event. The dispatch loop maps each kind to exactly one
// actuator action via the configured mapping table.
type Kind string

// State-entry events emitted by the freezer alarm machine.
const (
	FreezerTempNormal         Kind = "FREEZER_ALARM_TEMP_NORMAL"
	FreezerTempHigh           Kind = "FREEZER_ALARM_TEMP_HIGH"
	FreezerDisabled           Kind = "FREEZER_ALARM_DISABLED"
	FreezerSensorOfflineDay   Kind = "FREEZER_ALARM_SENSOR_OFFLINE_DAY"
	FreezerSensorOfflineNight Kind = "FREEZER_ALARM_SENSOR_OFFLINE_NIGHT"
)

// State-entry events emitted by the security alarm machine. AlarmActivated
// is the exception: it fires on exit from Deactivated, immediately before
// the Disarmed entry event.
const (
	AlarmArmed       Kind = "ALARM_ARMED"
	AlarmDisarmed    Kind = "ALARM_DISARMED"
	AlarmTriggered   Kind = "ALARM_TRIGGERED"
	AlarmDeactivated Kind = "ALARM_DEACTIVATED"
	AlarmActivated   Kind = "ALARM_ACTIVATED"
)

// State-entry events emitted by the train delay indicator.
const (
	TrainDelays   Kind = "TRAIN_DELAYS"
	TrainNoDelays Kind = "TRAIN_NO_DELAYS"
)

// Ingestion-side events produced by device collaborators, not by the
// state machines.
const (
	AlarmSensorOpen   Kind = "ALARM_SENSOR_OPEN"
	AlarmSensorClosed Kind = "ALARM_SENSOR_CLOSED"
	ButtonShortPress  Kind = "BUTTON_SHORT_PRESS"
	ButtonDoublePress Kind = "BUTTON_DOUBLE_PRESS"
	ButtonLongPress   Kind = "BUTTON_LONG_PRESS"
)

// Event is a tagged value carrying its own source. It is created once,
// consumed once by the dispatch loop, then discarded.
type Event struct {
	Kind    Kind
	Source  string
	Payload map[string]string
	At      time.Time
}

// New builds an event stamped with the current time.
func New(kind Kind, source string) Event {
	return Event{Kind: kind, Source: source, At: time.Now()}
}
