// Package scheduler runs periodic jobs on robfig/cron. A failing or panicking job
// is logged and the next run happens on schedule; runs of one job never overlap.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/robfig/cron/v3"
)

type Job func(ctx context.Context) error

type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

func New() *Scheduler {
	logger := cron.PrintfLogger(log.New(os.Stderr, "cron: ", log.LstdFlags))
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(logger),
			// Recover sits inside SkipIfStillRunning so a panic cannot leak its run token.
			cron.WithChain(cron.SkipIfStillRunning(logger), cron.Recover(logger)),
		),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Every schedules job at a fixed interval.
func (s *Scheduler) Every(interval time.Duration, name string, job Job) error {
	if interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive", name)
	}
	return s.Schedule(fmt.Sprintf("@every %s", interval), name, job)
}

// Schedule adds job under a cron spec such as "0 3 * * *" or "@daily".
func (s *Scheduler) Schedule(spec, name string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		start := time.Now()
		if err := job(s.ctx); err != nil {
			log.Printf("job=%s failed after %v: %v", name, time.Since(start), err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule job %s: %w", name, err)
	}
	log.Printf("scheduled job=%s spec=%q", name, spec)
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels running jobs' context and waits for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
}
