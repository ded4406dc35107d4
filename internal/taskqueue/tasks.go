// Package taskqueue queues voice announcements through asynq so they retry
// if the player is briefly unavailable and survive a controller restart.
package taskqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"
)

// TypeAnnounce is the asynq task type for a spoken announcement.
const TypeAnnounce = "announce"

// AnnouncePayload carries the finished announcement text.
type AnnouncePayload struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

// EnqueueAnnouncement queues one announcement for the worker.
func EnqueueAnnouncement(text, source string) error {
	cli := client()
	if cli == nil {
		return fmt.Errorf("taskqueue not started")
	}
	payload, err := json.Marshal(AnnouncePayload{Text: text, Source: source})
	if err != nil {
		return fmt.Errorf("encoding announcement: %w", err)
	}
	task := asynq.NewTask(TypeAnnounce, payload)
	info, err := cli.Enqueue(task, asynq.MaxRetry(3), asynq.Timeout(30*time.Second))
	if err != nil {
		return fmt.Errorf("enqueueing announcement: %w", err)
	}
	log.Printf("TASKQUEUE: enqueued announcement %s from %s", info.ID, source)
	return nil
}

// handleAnnounce plays one queued announcement.
func handleAnnounce(ctx context.Context, t *asynq.Task) error {
	var payload AnnouncePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decoding announcement payload: %w", err)
	}
	p := currentPlayer()
	if p == nil {
		return fmt.Errorf("no announcement player configured")
	}
	log.Printf("TASKQUEUE: playing announcement from %s", payload.Source)
	p.Play(payload.Text)
	return nil
}
