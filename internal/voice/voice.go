// Package voice builds spoken announcement strings. Synthesis and playback
// are out of scope; the strings go to the announcement task queue and the
// worker's Player decides what to do with them (the default just logs).
package voice

import (
	"fmt"
	"log"
	"strings"

	"home-monitor/internal/trains"
)

// Player receives finished announcement strings.
type Player interface {
	Play(text string)
}

// LogPlayer logs announcements instead of speaking them.
type LogPlayer struct{}

func (LogPlayer) Play(text string) {
	log.Printf("VOICE: %s", text)
}

// DelayAnnouncement renders the delay list into one spoken report, e.g.
// "Train delays from WAT to WIN. The 06:41 is delayed, expected 06:57. ..."
// An empty list reports no delays.
func DelayAnnouncement(delays []trains.DelayRecord, from, to string) string {
	if len(delays) == 0 {
		return fmt.Sprintf("No delays reported from %s to %s.", from, to)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Train delays from %s to %s.", from, to)
	for _, d := range delays {
		if d.IsCancelled {
			fmt.Fprintf(&b, " The %s is cancelled.", d.STD)
			if d.CancelReason != "" {
				fmt.Fprintf(&b, " %s.", strings.TrimSuffix(d.CancelReason, "."))
			}
			continue
		}
		fmt.Fprintf(&b, " The %s is delayed, expected %s.", d.STD, d.ETD)
		if d.DelayReason != "" {
			fmt.Fprintf(&b, " %s.", strings.TrimSuffix(d.DelayReason, "."))
		}
	}
	return b.String()
}

// WaterAnnouncement renders the hot-water level report.
func WaterAnnouncement(level string) string {
	if level == "" {
		return "Hot water level is not available."
	}
	return fmt.Sprintf("Hot water is at %s.", level)
}

// TemperatureAnnouncement renders the freezer temperature report.
func TemperatureAnnouncement(temp float64, known bool) string {
	if !known {
		return "Freezer temperature is not available."
	}
	return fmt.Sprintf("Freezer temperature is %.1f degrees.", temp)
}
