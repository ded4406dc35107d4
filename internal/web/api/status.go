package api

import (
	"github.com/gin-gonic/gin"

	"home-monitor/internal/fsm"
)

// StateReporter is the slice of an FSM engine the API reads.
type StateReporter interface {
	Current() fsm.State
}

// QueueStats is the slice of the event queue the API reads.
type QueueStats interface {
	Len() int
	Dropped() uint64
}

// MachineStatus pairs a machine name with its engine for the status report.
type MachineStatus struct {
	Name   string
	Engine StateReporter
}

// Dependencies carries the live controller pieces into the handlers.
type Dependencies struct {
	Machines []MachineStatus
	Queue    QueueStats

	Freezer  interface{ RequestDisable() }
	Security interface {
		ToggleDeactivated() bool
		Deactivated() bool
	}

	// Temperature returns the last freezer reading, false until one arrives.
	Temperature func() (float64, bool)
}

func RegisterStatusRoutes(r *gin.Engine, deps Dependencies) {
	r.GET("/status", func(c *gin.Context) {
		machines := gin.H{}
		for _, m := range deps.Machines {
			machines[m.Name] = string(m.Engine.Current())
		}

		resp := gin.H{
			"machines": machines,
			"queue": gin.H{
				"depth":   deps.Queue.Len(),
				"dropped": deps.Queue.Dropped(),
			},
		}
		if deps.Security != nil {
			resp["security_deactivated"] = deps.Security.Deactivated()
		}
		if deps.Temperature != nil {
			if temp, known := deps.Temperature(); known {
				resp["freezer_temperature"] = temp
			}
		}
		c.JSON(200, resp)
	})
}
