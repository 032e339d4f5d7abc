package app

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

const refreshTimeout = 30 * time.Second

type refresher interface {
	Revalidate(ctx context.Context)
}

type statsRefresher interface {
	RefreshStats(ctx context.Context) error
}

// Scheduler periodically re-validates the session credential and refreshes dashboard statistics.
type Scheduler struct {
	cron    *cron.Cron
	session refresher
	stats   statsRefresher
	logger  *log.Logger
}

func NewScheduler(spec string, sess refresher, stats statsRefresher, logger *log.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = log.Default()
	}
	s := &Scheduler{
		cron:    cron.New(),
		session: sess,
		stats:   stats,
		logger:  logger,
	}
	if _, err := s.cron.AddFunc(spec, s.RunOnce); err != nil {
		return nil, err
	}
	return s, nil
}

// RunOnce performs one refresh cycle. The session is re-validated first so an expired credential
// never triggers a statistics fetch.
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	start := time.Now()
	s.session.Revalidate(ctx)
	if err := s.stats.RefreshStats(ctx); err != nil {
		s.logger.Printf("[Scheduler] stats refresh failed: %v", err)
		return
	}
	s.logger.Printf("[Scheduler] refresh done latency=%s", time.Since(start))
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running cycle to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
