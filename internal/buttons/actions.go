// Package buttons turns button presses into controller actions. Presses
// arrive either as zigbee2mqtt action payloads or as GPIO line edges
// classified by Monitor.
package buttons

import (
	"context"
	"log"
)

// GroupToggler flips the configured light group.
type GroupToggler interface {
	ToggleGroup() error
}

// Announcer enqueues a spoken announcement.
type Announcer func(text, source string) error

// Overrides are the FSM override flags a long press raises.
type Overrides interface {
	RequestDisable()
	ToggleDeactivated() bool
}

// Actions maps press kinds to their effects: short toggles the lights,
// double reads out train delays, long reads out hot water and freezer
// temperature and then raises the holiday overrides.
type Actions struct {
	Group    GroupToggler
	Announce Announcer

	// DelayText and StatusText build the spoken reports. They are
	// queried at press time so the reports are always fresh.
	DelayText  func(ctx context.Context) string
	StatusText func(ctx context.Context) string

	Freezer  interface{ RequestDisable() }
	Security interface{ ToggleDeactivated() bool }
}

func (a *Actions) Short() {
	log.Println("BUTTON: short press, toggling light group")
	if a.Group == nil {
		return
	}
	if err := a.Group.ToggleGroup(); err != nil {
		log.Printf("BUTTON: toggle group: %v", err)
	}
}

func (a *Actions) Double() {
	log.Println("BUTTON: double press, announcing train delays")
	if a.Announce == nil || a.DelayText == nil {
		return
	}
	if err := a.Announce(a.DelayText(context.Background()), "button"); err != nil {
		log.Printf("BUTTON: enqueue delay announcement: %v", err)
	}
}

func (a *Actions) Long() {
	log.Println("BUTTON: long press, announcing status and raising overrides")
	if a.Announce != nil && a.StatusText != nil {
		if err := a.Announce(a.StatusText(context.Background()), "button"); err != nil {
			log.Printf("BUTTON: enqueue status announcement: %v", err)
		}
	}
	if a.Freezer != nil {
		a.Freezer.RequestDisable()
	}
	if a.Security != nil {
		deactivated := a.Security.ToggleDeactivated()
		log.Printf("BUTTON: security deactivated override now %v", deactivated)
	}
}
