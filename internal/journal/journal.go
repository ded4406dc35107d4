// Package journal mirrors every dispatched event onto a capped Redis
// stream, giving other tooling (dashboards, debugging) a recent-history
// view without touching the in-process queue.
package journal

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"home-monitor/internal/events"
)

// Journal appends events to one Redis stream with XADD MAXLEN.
type Journal struct {
	client *redis.Client
	stream string
	maxLen int64
}

// New creates a journal writing to stream on client, trimmed to maxLen
// entries.
func New(client *redis.Client, stream string, maxLen int64) *Journal {
	if maxLen <= 0 {
		maxLen = 1000
	}
	return &Journal{client: client, stream: stream, maxLen: maxLen}
}

// Record appends one event. Journal failures are best-effort: logged, never
// propagated into the dispatch loop.
func (j *Journal) Record(ctx context.Context, e events.Event) {
	values := map[string]interface{}{
		"kind":   string(e.Kind),
		"source": e.Source,
		"at":     e.At.UTC().Format(time.RFC3339Nano),
	}
	if len(e.Payload) > 0 {
		if body, err := json.Marshal(e.Payload); err == nil {
			values["payload"] = string(body)
		}
	}

	err := j.client.XAdd(ctx, &redis.XAddArgs{
		Stream: j.stream,
		MaxLen: j.maxLen,
		Approx: true,
		Values: values,
	}).Err()
	if err != nil {
		log.Printf("JOURNAL: recording %s from %s failed: %v", e.Kind, e.Source, err)
	}
}
