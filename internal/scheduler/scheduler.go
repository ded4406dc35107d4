// Package scheduler runs the cron-timed spoken reports. Each configured
// announcement builds its text at fire time and hands it to the task queue,
// so a morning report always reflects the current delays and water level.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"home-monitor/internal/config"
)

// Texts supplies the report bodies an announcement kind can ask for.
type Texts struct {
	TrainDelays func(ctx context.Context) string
	HotWater    func(ctx context.Context) string
}

// Enqueue hands a finished announcement to the task queue.
type Enqueue func(text, source string) error

// Scheduler manages the cron entries for announcements.
type Scheduler struct {
	cron      *cron.Cron
	enqueue   Enqueue
	texts     Texts
	jobMapMux sync.RWMutex
	jobMap    map[string]cron.EntryID
}

// New creates a scheduler running in loc, so "30 7 * * *" means 07:30
// local time across DST changes.
func New(loc *time.Location, enqueue Enqueue, texts Texts) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		enqueue: enqueue,
		texts:   texts,
		jobMap:  make(map[string]cron.EntryID),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("SCHEDULER: Cron scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("SCHEDULER: Cron scheduler stopped")
}

// AddJob adds a cron job and returns the entry ID
func (s *Scheduler) AddJob(spec string, fn func()) (cron.EntryID, error) {
	return s.cron.AddFunc(spec, fn)
}

// LoadAnnouncements registers every configured announcement as a cron job.
// A malformed cron expression fails the load: announcements are startup
// configuration, and a bad one is a config error, not a runtime condition.
func (s *Scheduler) LoadAnnouncements(announcements []config.Announcement) error {
	log.Printf("SCHEDULER: Loading %d announcements", len(announcements))

	for i, a := range announcements {
		a := a // capture loop variable
		entryID, err := s.AddJob(a.Cron, func() {
			log.Printf("SCHEDULER: Announcement fired: %s (%s)", a.Kind, a.Cron)
			text := s.buildText(a)
			if text == "" {
				log.Printf("SCHEDULER: Announcement %s produced no text, skipping", a.Kind)
				return
			}
			if err := s.enqueue(text, "scheduler"); err != nil {
				log.Printf("SCHEDULER: Failed to enqueue announcement %s: %v", a.Kind, err)
			}
		})
		if err != nil {
			return fmt.Errorf("announcement %d (%s): cron %q: %w", i, a.Kind, a.Cron, err)
		}

		s.jobMapMux.Lock()
		s.jobMap[a.Kind+"/"+a.Cron] = entryID
		s.jobMapMux.Unlock()

		log.Printf("SCHEDULER: Scheduled %s announcement with cron '%s' (entry ID: %d)", a.Kind, a.Cron, entryID)
	}

	log.Printf("SCHEDULER: Successfully loaded %d announcements", s.GetScheduledJobCount())
	return nil
}

func (s *Scheduler) buildText(a config.Announcement) string {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch a.Kind {
	case "train_delays":
		if s.texts.TrainDelays == nil {
			return ""
		}
		return s.texts.TrainDelays(ctx)
	case "hot_water":
		if s.texts.HotWater == nil {
			return ""
		}
		return s.texts.HotWater(ctx)
	case "text":
		return a.Text
	default:
		log.Printf("SCHEDULER: Unknown announcement kind %q", a.Kind)
		return ""
	}
}

// GetScheduledJobCount returns the number of currently scheduled jobs
func (s *Scheduler) GetScheduledJobCount() int {
	s.jobMapMux.RLock()
	defer s.jobMapMux.RUnlock()
	return len(s.jobMap)
}
