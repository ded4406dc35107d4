// Package zigbee ingests zigbee2mqtt reports and feeds them into the state
// machines. It subscribes to the freezer temperature sensor, the door
// contact sensor and the wireless button, and runs the offline watchdog
// that ages out a quiet temperature sensor.
package zigbee

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"home-monitor/internal/events"
)

// FreezerSensor is the slice of the freezer machine the ingestor drives.
type FreezerSensor interface {
	SetSensorOnline(online bool)
	SetTempHigh(high bool)
}

// IntrusionSensor is the slice of the security machine the ingestor drives.
type IntrusionSensor interface {
	Trip()
}

// PressActions receives classified button presses.
type PressActions interface {
	Short()
	Double()
	Long()
}

// Ingestor subscribes to zigbee2mqtt topics and translates payloads into
// FSM inputs and ingestion events.
type Ingestor struct {
	client    mqtt.Client
	baseTopic string
	queue     *events.Queue

	freezer  FreezerSensor
	security IntrusionSensor
	presses  PressActions

	tempSensor    string
	contactSensor string
	button        string

	tempThreshold float64
	offlineAfter  time.Duration

	now func() time.Time

	mu         sync.Mutex
	lastReport time.Time
	lastTemp   float64
	tempKnown  bool
}

// New builds an ingestor. Device names are zigbee2mqtt friendly names;
// an empty name disables that subscription.
func New(client mqtt.Client, baseTopic string, queue *events.Queue,
	freezer FreezerSensor, security IntrusionSensor, presses PressActions,
	tempSensor, contactSensor, button string,
	tempThreshold float64, offlineAfter time.Duration) *Ingestor {
	return &Ingestor{
		client:        client,
		baseTopic:     baseTopic,
		queue:         queue,
		freezer:       freezer,
		security:      security,
		presses:       presses,
		tempSensor:    tempSensor,
		contactSensor: contactSensor,
		button:        button,
		tempThreshold: tempThreshold,
		offlineAfter:  offlineAfter,
		now:           time.Now,
	}
}

// Start subscribes to the configured device topics and launches the offline
// watchdog. It returns on the first failed subscription.
func (in *Ingestor) Start(ctx context.Context) error {
	subs := []struct {
		device  string
		handler mqtt.MessageHandler
	}{
		{in.tempSensor, in.onTemperature},
		{in.contactSensor, in.onContact},
		{in.button, in.onButton},
	}
	for _, s := range subs {
		if s.device == "" {
			continue
		}
		topic := fmt.Sprintf("%s/%s", in.baseTopic, s.device)
		log.Printf("ZIGBEE: subscribing to %s", topic)
		if token := in.client.Subscribe(topic, 1, s.handler); token.Wait() && token.Error() != nil {
			return fmt.Errorf("subscribing to %s: %w", topic, token.Error())
		}
	}

	if in.tempSensor != "" && in.offlineAfter > 0 {
		// The startup time is the baseline report: a sensor that is
		// already dead when the controller starts still ages out, without
		// flashing offline at boot before its first report is due.
		in.mu.Lock()
		in.lastReport = in.now()
		in.mu.Unlock()
		go in.watchdog(ctx)
	}
	return nil
}

type temperatureReport struct {
	Temperature float64 `json:"temperature"`
	Battery     float64 `json:"battery"`
}

func (in *Ingestor) onTemperature(_ mqtt.Client, msg mqtt.Message) {
	var report temperatureReport
	if err := json.Unmarshal(msg.Payload(), &report); err != nil {
		log.Printf("ZIGBEE: bad temperature payload on %s: %v", msg.Topic(), err)
		return
	}

	in.mu.Lock()
	in.lastReport = in.now()
	in.lastTemp = report.Temperature
	in.tempKnown = true
	in.mu.Unlock()

	in.freezer.SetSensorOnline(true)
	in.freezer.SetTempHigh(report.Temperature > in.tempThreshold)
	log.Printf("ZIGBEE: %s reported %.1f°C (threshold %.1f)",
		in.tempSensor, report.Temperature, in.tempThreshold)
}

type contactReport struct {
	Contact bool `json:"contact"`
}

func (in *Ingestor) onContact(_ mqtt.Client, msg mqtt.Message) {
	var report contactReport
	if err := json.Unmarshal(msg.Payload(), &report); err != nil {
		log.Printf("ZIGBEE: bad contact payload on %s: %v", msg.Topic(), err)
		return
	}

	// zigbee2mqtt reports contact=false when the door is open.
	if report.Contact {
		in.queue.Put(events.New(events.AlarmSensorClosed, in.contactSensor))
		return
	}
	log.Printf("ZIGBEE: %s opened", in.contactSensor)
	in.security.Trip()
	in.queue.Put(events.New(events.AlarmSensorOpen, in.contactSensor))
}

type buttonReport struct {
	Action string `json:"action"`
}

func (in *Ingestor) onButton(_ mqtt.Client, msg mqtt.Message) {
	var report buttonReport
	if err := json.Unmarshal(msg.Payload(), &report); err != nil {
		log.Printf("ZIGBEE: bad button payload on %s: %v", msg.Topic(), err)
		return
	}
	if report.Action == "" {
		// zigbee2mqtt republishes the device state with action cleared.
		return
	}

	switch report.Action {
	case "single":
		in.queue.Put(events.New(events.ButtonShortPress, in.button))
		in.presses.Short()
	case "double":
		in.queue.Put(events.New(events.ButtonDoublePress, in.button))
		in.presses.Double()
	case "hold", "long":
		in.queue.Put(events.New(events.ButtonLongPress, in.button))
		in.presses.Long()
	default:
		log.Printf("ZIGBEE: unhandled button action %q", report.Action)
	}
}

// watchdog marks the temperature sensor offline when it has been quiet for
// longer than offlineAfter. It checks at a quarter of the timeout so an
// outage is noticed well within one freezer FSM interval.
func (in *Ingestor) watchdog(ctx context.Context) {
	every := in.offlineAfter / 4
	if every < time.Second {
		every = time.Second
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			in.checkOffline()
		}
	}
}

// checkOffline marks the sensor offline when its last report (or the
// startup baseline) is older than offlineAfter.
func (in *Ingestor) checkOffline() {
	in.mu.Lock()
	last := in.lastReport
	in.mu.Unlock()

	if silent := in.now().Sub(last); silent > in.offlineAfter {
		log.Printf("ZIGBEE: %s silent for %s, marking offline",
			in.tempSensor, silent.Round(time.Second))
		in.freezer.SetSensorOnline(false)
	}
}

// LastTemperature returns the most recent freezer reading and whether any
// reading has arrived yet.
func (in *Ingestor) LastTemperature() (float64, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.lastTemp, in.tempKnown
}
