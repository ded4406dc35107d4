package buttons

import "time"

// Press is a classified button press.
type Press int

const (
	PressShort Press = iota
	PressDouble
	PressLong
)

func (p Press) String() string {
	switch p {
	case PressShort:
		return "short"
	case PressDouble:
		return "double"
	case PressLong:
		return "long"
	}
	return "unknown"
}

// Classification windows. Presses shorter than minPress are treated as
// contact bounce and ignored.
const (
	minPress  = 150 * time.Millisecond
	longPress = time.Second
	doubleGap = 400 * time.Millisecond
)

// Classifier turns line edges into short, double and long presses. It is
// driven entirely by the timestamps it is handed, so tests feed it
// synthetic edges. Edge and Expire must be called from one goroutine.
type Classifier struct {
	emit func(Press)

	pressed   bool
	pressedAt time.Time

	// A short press is held back for doubleGap in case a second one
	// follows; Expire releases it. A press starting inside the gap
	// claims the pending short, whatever its own release time.
	shortPending bool
	shortAt      time.Time
	pairing      bool
}

// NewClassifier builds a classifier delivering presses to emit.
func NewClassifier(emit func(Press)) *Classifier {
	return &Classifier{emit: emit}
}

// Edge feeds one line transition. pressed is the logical button state
// after the edge; at is when the edge happened.
func (c *Classifier) Edge(pressed bool, at time.Time) {
	c.Expire(at)

	if pressed {
		c.pressed = true
		c.pressedAt = at
		if c.shortPending {
			c.shortPending = false
			c.pairing = true
		}
		return
	}
	if !c.pressed {
		return
	}
	c.pressed = false
	paired := c.pairing
	c.pairing = false

	held := at.Sub(c.pressedAt)
	switch {
	case held < minPress:
		// Bounce; a claimed first press still stands on its own.
		if paired {
			c.emit(PressShort)
		}
	case held >= longPress:
		if paired {
			c.emit(PressShort)
		}
		c.emit(PressLong)
	case paired:
		c.emit(PressDouble)
	default:
		c.shortPending = true
		c.shortAt = at
	}
}

// Expire flushes a held-back short press once no second press can still
// pair with it. The monitor calls this on a ticker.
func (c *Classifier) Expire(at time.Time) {
	if c.shortPending && at.Sub(c.shortAt) > doubleGap {
		c.shortPending = false
		c.emit(PressShort)
	}
}
