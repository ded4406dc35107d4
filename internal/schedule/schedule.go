// Package schedule answers "is now inside one of these daily windows".
//
// A window is a recurring [start, end] time-of-day interval. Windows where
// start comes after end wrap past midnight, e.g. 23:00-05:00 matches 23:30
// and 04:59 but not 12:00. The evaluator works in a configured IANA timezone
// so DST shifts are handled by the time conversion, not by the window maths.
package schedule

import (
	"fmt"
	"strings"
	"time"
)

// Window is a daily time-of-day interval in minutes since midnight.
// Start > End means the window wraps past midnight. Start == End matches
// every time of day (the wrap test "m >= s || m <= e" is then always true).
type Window struct {
	Start int
	End   int
}

// Contains reports whether the minute-of-day m falls inside the window.
func (w Window) Contains(m int) bool {
	if w.Start < w.End {
		return w.Start <= m && m <= w.End
	}
	// Wraps midnight (or zero-length, which matches everything).
	return m >= w.Start || m <= w.End
}

func (w Window) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d", w.Start/60, w.Start%60, w.End/60, w.End%60)
}

// Schedule is a union of windows evaluated in a fixed timezone.
type Schedule struct {
	windows []Window
	loc     *time.Location
}

// New builds a schedule over the given windows, evaluated in loc.
func New(loc *time.Location, windows ...Window) Schedule {
	if loc == nil {
		loc = time.UTC
	}
	return Schedule{windows: windows, loc: loc}
}

// Parse builds a schedule from "HH:MM-HH:MM" window strings. A malformed
// window is a configuration error and fails immediately rather than being
// silently skipped.
func Parse(loc *time.Location, specs []string) (Schedule, error) {
	windows := make([]Window, 0, len(specs))
	for _, spec := range specs {
		w, err := ParseWindow(spec)
		if err != nil {
			return Schedule{}, err
		}
		windows = append(windows, w)
	}
	return New(loc, windows...), nil
}

// ParseWindow parses a single "HH:MM-HH:MM" window string.
func ParseWindow(spec string) (Window, error) {
	start, end, ok := strings.Cut(spec, "-")
	if !ok {
		return Window{}, fmt.Errorf("schedule window %q: want \"HH:MM-HH:MM\"", spec)
	}
	s, err := parseMinute(start)
	if err != nil {
		return Window{}, fmt.Errorf("schedule window %q: %w", spec, err)
	}
	e, err := parseMinute(end)
	if err != nil {
		return Window{}, fmt.Errorf("schedule window %q: %w", spec, err)
	}
	return Window{Start: s, End: e}, nil
}

func parseMinute(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("bad time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Contains reports whether now falls inside any window. The instant is
// converted into the schedule's timezone first, so callers can pass process
// clock (UTC) times directly.
func (s Schedule) Contains(now time.Time) bool {
	local := now.In(s.loc)
	m := local.Hour()*60 + local.Minute()
	for _, w := range s.windows {
		if w.Contains(m) {
			return true
		}
	}
	return false
}

// Empty reports whether the schedule has no windows (never matches).
func (s Schedule) Empty() bool {
	return len(s.windows) == 0
}

func (s Schedule) String() string {
	parts := make([]string, len(s.windows))
	for i, w := range s.windows {
		parts[i] = w.String()
	}
	return strings.Join(parts, ",")
}
