package events

import (
	"log"
	"sync"
	"time"
)

// Queue is a bounded FIFO of events with any number of producers and a
// single dispatch consumer. Put never blocks and never loses an event
// silently: when the queue is full the oldest event is evicted, logged and
// counted. FIFO order holds within the queue; the interleaving of events
// from independent producers racing to Put is run-time dependent.
type Queue struct {
	mu      sync.Mutex
	items   []Event
	cap     int
	dropped uint64
	wake    chan struct{}
}

// DefaultQueueSize matches the bound the original deployment ran with.
const DefaultQueueSize = 100

// NewQueue creates a queue holding at most capacity events.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultQueueSize
	}
	return &Queue{
		cap:  capacity,
		wake: make(chan struct{}, 1),
	}
}

// Put appends an event. On a full queue the oldest event is evicted so the
// newest is never the one lost; the eviction is logged and counted, it is
// not a silent discard.
func (q *Queue) Put(e Event) {
	q.mu.Lock()
	if len(q.items) >= q.cap {
		evicted := q.items[0]
		q.items = q.items[1:]
		q.dropped++
		log.Printf("EVENTS: queue full, evicted oldest event %s from %s (%d dropped so far)",
			evicted.Kind, evicted.Source, q.dropped)
	}
	q.items = append(q.items, e)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Poll removes and returns the oldest event, waiting up to timeout for one
// to arrive. The second return is false if the timeout expired.
func (q *Queue) Poll(timeout time.Duration) (Event, bool) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		if e, ok := q.take(); ok {
			return e, true
		}
		select {
		case <-q.wake:
			// Retry; another consumer may have raced us to it.
		case <-deadline.C:
			return Event{}, false
		}
	}
}

func (q *Queue) take() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return Event{}, false
	}
	e := q.items[0]
	q.items = q.items[1:]
	return e, true
}

// Empty reports whether the queue holds no events.
func (q *Queue) Empty() bool {
	return q.Len() == 0
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Dropped returns how many events have been evicted since creation.
func (q *Queue) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
