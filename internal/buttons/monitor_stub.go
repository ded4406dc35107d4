//go:build !linux

package buttons

import (
	"context"
	"errors"
)

// Monitor is not available off-device; the zigbee button still works.
type Monitor struct{}

// NewMonitor returns an error on non-Linux platforms.
func NewMonitor(chipName string, offset int, actions *Actions) (*Monitor, error) {
	return nil, errors.New("buttons: gpio not supported on this platform (requires Linux)")
}

func (m *Monitor) Run(ctx context.Context) {}

func (m *Monitor) Close() error { return nil }
