// Package mqtt connects to the broker zigbee2mqtt publishes on.
package mqtt

import (
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// NewClient connects to the broker and returns the raw client. Auto
// reconnect is on so a broker restart does not take the controller down;
// subscriptions are restored from the resumed session.
func NewClient(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return client, nil
}
