package scheduler

import (
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// Job is a named maintenance task run on a cron schedule.
type Job struct {
	Name     string
	Schedule string // cron spec with seconds field
	Run      func() error
}

// Scheduler runs background maintenance jobs (cache sweeps and the like) for
// the daemon. Overlapping runs of the same job are skipped, not queued.
type Scheduler struct {
	cron *cron.Cron
}

func New() *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
	}
}

func (s *Scheduler) Add(job Job) error {
	_, err := s.cron.AddFunc(job.Schedule, func() {
		if err := job.Run(); err != nil {
			log.Printf("Error running scheduled job %s: %v", job.Name, err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", job.Name, err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
