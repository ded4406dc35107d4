// Package actuators publishes actuator commands over MQTT to zigbee2mqtt
// devices: the indicator bulb, the siren and the light group. Commands are
// fire and forget; a bulb that fails to confirm stays wrong until the next
// event retries it.
package actuators

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Colour hex values for the indicator bulb.
var colours = map[string]string{
	"red":   "#FF0000",
	"green": "#00FF00",
	"blue":  "#0000FF",
	"white": "#FFFFFF",
}

// Zigbee publishes device commands to zigbee2mqtt set topics.
type Zigbee struct {
	client    mqtt.Client
	baseTopic string
	bulb      string
	siren     string
	group     string

	mu      sync.Mutex
	groupOn bool
}

// NewZigbee creates a publisher for the named devices under baseTopic.
func NewZigbee(client mqtt.Client, baseTopic, bulb, siren, group string) *Zigbee {
	return &Zigbee{
		client:    client,
		baseTopic: baseTopic,
		bulb:      bulb,
		siren:     siren,
		group:     group,
	}
}

// SetBulb sets the indicator bulb to a named colour, or off.
func (z *Zigbee) SetBulb(colour string) error {
	if colour == "off" {
		return z.publish(z.bulb, map[string]any{
			"state": "OFF",
			"color": map[string]string{"hex": colours["white"]},
		})
	}
	hex, ok := colours[colour]
	if !ok {
		return fmt.Errorf("unknown bulb colour %q", colour)
	}
	return z.publish(z.bulb, map[string]any{
		"state":      "ON",
		"brightness": 254,
		"color":      map[string]string{"hex": hex},
	})
}

// Siren starts or stops the warning siren.
func (z *Zigbee) Siren(on bool) error {
	mode := "stop"
	if on {
		mode = "emergency"
	}
	return z.publish(z.siren, map[string]any{
		"warning": map[string]any{
			"mode":              mode,
			"level":             "high",
			"strobe":            on,
			"duration":          600,
			"strobe_duty_cycle": 10,
		},
	})
}

// ToggleGroup flips the light group on or off (short button press).
func (z *Zigbee) ToggleGroup() error {
	z.mu.Lock()
	z.groupOn = !z.groupOn
	state := "OFF"
	if z.groupOn {
		state = "ON"
	}
	z.mu.Unlock()
	return z.publish(z.group, map[string]any{"state": state})
}

func (z *Zigbee) publish(device string, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding command for %s: %w", device, err)
	}
	topic := fmt.Sprintf("%s/%s/set", z.baseTopic, device)
	log.Printf("ACTUATORS: publish %s: %s", topic, body)
	token := z.client.Publish(topic, 1, false, body)
	// Fire and forget: errors surface via the paho token asynchronously.
	go func() {
		if token.Wait() && token.Error() != nil {
			log.Printf("ACTUATORS: publish to %s failed: %v", topic, token.Error())
		}
	}()
	return nil
}
