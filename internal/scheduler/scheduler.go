// Package scheduler refreshes cache entries on their own cadence.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/zeromicro/go-zero/core/logx"

	"swapstats-api/pkg/cachekit"
)

const (
	defaultJobTimeout = 5 * time.Minute
	minInterval       = time.Second
)

// Refresher recomputes one named entry.
type Refresher interface {
	Refresh(ctx context.Context, name string) error
}

// Job is one scheduled entry.
type Job struct {
	Name     string
	Interval time.Duration
}

// JobsFrom schedules entries at their requested intervals, keeping order.
func JobsFrom(entries []cachekit.EntryConfig) []Job {
	jobs := make([]Job, 0, len(entries))
	for _, e := range entries {
		jobs = append(jobs, Job{Name: e.Name, Interval: e.Interval})
	}
	return jobs
}

// Scheduler runs one cron job per entry. A job that is still running when
// its next tick fires is skipped for that tick.
type Scheduler struct {
	refresher Refresher
	jobs      []Job
	timeout   time.Duration
	cron      *cron.Cron

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	initial sync.WaitGroup
}

// Option customises a Scheduler.
type Option func(*Scheduler)

// WithJobTimeout bounds a single refresh.
func WithJobTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New builds a scheduler. Jobs keep their order for the first pass, so
// entries that feed others should come first.
func New(refresher Refresher, jobs []Job, opts ...Option) *Scheduler {
	logger := cronLogger{}
	s := &Scheduler{
		refresher: refresher,
		jobs:      jobs,
		timeout:   defaultJobTimeout,
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start refreshes every job once, in order, and then hands them to cron.
// The first pass runs in the background; Start does not block on it.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	for _, job := range s.jobs {
		if _, err := s.cron.AddJob(spec(job.Interval), s.job(job.Name)); err != nil {
			s.cancel()
			return fmt.Errorf("scheduler: add %s: %w", job.Name, err)
		}
	}
	s.started = true

	s.initial.Add(1)
	go func() {
		defer s.initial.Done()
		s.RunOnce(s.ctx)
		s.cron.Start()
		logx.Infof("scheduler: started jobs=%d", len(s.jobs))
	}()
	return nil
}

// RunOnce refreshes every job sequentially.
func (s *Scheduler) RunOnce(ctx context.Context) {
	for _, job := range s.jobs {
		if ctx.Err() != nil {
			return
		}
		s.run(ctx, job.Name)
	}
}

// Stop cancels running refreshes and waits for them to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.cancel()
	s.mu.Unlock()

	s.initial.Wait()
	<-s.cron.Stop().Done()
}

// Scheduled returns the number of registered cron jobs.
func (s *Scheduler) Scheduled() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) job(name string) cron.Job {
	return cron.FuncJob(func() {
		s.mu.Lock()
		ctx := s.ctx
		s.mu.Unlock()
		s.run(ctx, name)
	})
}

func (s *Scheduler) run(parent context.Context, name string) {
	ctx, cancel := context.WithTimeout(parent, s.timeout)
	defer cancel()

	start := time.Now()
	if err := s.refresher.Refresh(ctx, name); err != nil {
		logx.WithContext(ctx).Errorf("scheduler: refresh entry=%s took=%dms err=%v", name, time.Since(start).Milliseconds(), err)
		return
	}
	logx.WithContext(ctx).Debugf("scheduler: refreshed entry=%s took=%dms", name, time.Since(start).Milliseconds())
}

func spec(interval time.Duration) string {
	if interval < minInterval {
		interval = minInterval
	}
	return "@every " + interval.String()
}

type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logx.Debugf("scheduler: cron %s %v", msg, keysAndValues)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logx.Errorf("scheduler: cron %s %v err=%v", msg, keysAndValues, err)
}
