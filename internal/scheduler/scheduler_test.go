package scheduler

import (
	"context"
	"testing"
	"time"

	"home-monitor/internal/config"
)

func newTestScheduler(enqueue Enqueue) *Scheduler {
	texts := Texts{
		TrainDelays: func(ctx context.Context) string { return "No delays reported" },
		HotWater:    func(ctx context.Context) string { return "Hot water is at 80%" },
	}
	return New(time.UTC, enqueue, texts)
}

func TestLoadAnnouncements(t *testing.T) {
	s := newTestScheduler(func(text, source string) error { return nil })

	err := s.LoadAnnouncements([]config.Announcement{
		{Cron: "30 7 * * *", Kind: "train_delays"},
		{Cron: "0 22 * * *", Kind: "text", Text: "Time for bed"},
	})
	if err != nil {
		t.Fatalf("LoadAnnouncements: %v", err)
	}
	if got := s.GetScheduledJobCount(); got != 2 {
		t.Errorf("scheduled jobs = %d, want 2", got)
	}
}

// A malformed cron expression is a config error and fails the load.
func TestLoadAnnouncementsRejectsBadCron(t *testing.T) {
	s := newTestScheduler(func(text, source string) error { return nil })

	err := s.LoadAnnouncements([]config.Announcement{
		{Cron: "30 7 * * *", Kind: "train_delays"},
		{Cron: "not a cron", Kind: "hot_water"},
	})
	if err == nil {
		t.Fatal("LoadAnnouncements accepted a malformed cron expression")
	}
}

func TestBuildText(t *testing.T) {
	s := newTestScheduler(nil)

	cases := []struct {
		a    config.Announcement
		want string
	}{
		{config.Announcement{Kind: "train_delays"}, "No delays reported"},
		{config.Announcement{Kind: "hot_water"}, "Hot water is at 80%"},
		{config.Announcement{Kind: "text", Text: "Time for bed"}, "Time for bed"},
		{config.Announcement{Kind: "mystery"}, ""},
	}
	for _, c := range cases {
		if got := s.buildText(c.a); got != c.want {
			t.Errorf("buildText(%s) = %q, want %q", c.a.Kind, got, c.want)
		}
	}
}
