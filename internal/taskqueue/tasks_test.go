package taskqueue

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/hibiken/asynq"
)

type recordingPlayer struct {
	played []string
}

func (r *recordingPlayer) Play(text string) { r.played = append(r.played, text) }

func setPlayer(t *testing.T, p *recordingPlayer) {
	t.Helper()
	mu.Lock()
	prev := player
	player = p
	mu.Unlock()
	t.Cleanup(func() {
		mu.Lock()
		player = prev
		mu.Unlock()
	})
}

func TestEnqueueBeforeStartFails(t *testing.T) {
	if err := EnqueueAnnouncement("Hot water is at 80%.", "button"); err == nil {
		t.Error("enqueue with no client must fail, not drop the announcement silently")
	}
}

func TestHandleAnnouncePlays(t *testing.T) {
	p := &recordingPlayer{}
	setPlayer(t, p)

	payload, _ := json.Marshal(AnnouncePayload{Text: "Alarm deactivated", Source: "security-alarm"})
	task := asynq.NewTask(TypeAnnounce, payload)

	if err := handleAnnounce(context.Background(), task); err != nil {
		t.Fatalf("handleAnnounce: %v", err)
	}
	if len(p.played) != 1 || p.played[0] != "Alarm deactivated" {
		t.Errorf("played = %v", p.played)
	}
}

func TestHandleAnnounceRejectsBadPayload(t *testing.T) {
	p := &recordingPlayer{}
	setPlayer(t, p)

	task := asynq.NewTask(TypeAnnounce, []byte(`{broken`))
	if err := handleAnnounce(context.Background(), task); err == nil {
		t.Error("malformed payload must error so asynq retries or dead-letters it")
	}
	if len(p.played) != 0 {
		t.Errorf("nothing should play, got %v", p.played)
	}
}
