//go:build linux

package buttons

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// Monitor watches a wall button on a GPIO line and delivers classified
// presses to Actions.
type Monitor struct {
	chip    *gpiocdev.Chip
	line    *gpiocdev.Line
	actions *Actions

	edges chan edge
}

type edge struct {
	pressed bool
	at      time.Time
}

// NewMonitor requests the line as a debounced input with edge detection.
// The button pulls the line low when pressed.
func NewMonitor(chipName string, offset int, actions *Actions) (*Monitor, error) {
	m := &Monitor{
		actions: actions,
		edges:   make(chan edge, 16),
	}

	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	line, err := chip.RequestLine(offset,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithBothEdges,
		gpiocdev.WithDebounce(10*time.Millisecond),
		gpiocdev.WithEventHandler(m.onEvent))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request button line %d: %w", offset, err)
	}

	m.chip = chip
	m.line = line
	return m, nil
}

func (m *Monitor) onEvent(evt gpiocdev.LineEvent) {
	// Pull-up wiring: falling edge means the button went down.
	e := edge{
		pressed: evt.Type == gpiocdev.LineEventFallingEdge,
		at:      time.Now(),
	}
	select {
	case m.edges <- e:
	default:
		log.Println("BUTTON: edge queue full, dropping edge")
	}
}

// Run classifies edges until ctx is cancelled. The ticker flushes a short
// press once no double can follow it.
func (m *Monitor) Run(ctx context.Context) {
	c := NewClassifier(func(p Press) {
		log.Printf("BUTTON: %s press on gpio line", p)
		switch p {
		case PressShort:
			m.actions.Short()
		case PressDouble:
			m.actions.Double()
		case PressLong:
			m.actions.Long()
		}
	})

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case e := <-m.edges:
			c.Edge(e.pressed, e.at)
		case now := <-ticker.C:
			c.Expire(now)
		}
	}
}

// Close releases the GPIO line and chip.
func (m *Monitor) Close() error {
	var firstErr error
	if m.line != nil {
		if err := m.line.Close(); err != nil {
			firstErr = fmt.Errorf("close button line: %w", err)
		}
	}
	if m.chip != nil {
		if err := m.chip.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close chip: %w", err)
		}
	}
	return firstErr
}
