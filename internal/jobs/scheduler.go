package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// scheduleParser accepts the standard 5-field cron format used in the job
// configuration ("0 2 * * 0", "*/5 * * * *"). No seconds field.
var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Scheduler manages periodic job execution using cron expressions.
// Each job is protected by a per-job mutex to prevent parallel execution
// of the same job (uses TryLock — atomic, no race).
type Scheduler struct {
	mu     sync.Mutex
	cron   *cron.Cron
	jobs   []Job
	names  map[string]struct{}
	locks  map[string]*sync.Mutex
	logger *slog.Logger
	cancel context.CancelFunc
}

// NewScheduler creates a scheduler. Jobs must be registered before Start().
func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		names:  make(map[string]struct{}),
		locks:  make(map[string]*sync.Mutex),
		logger: logger,
	}
}

// RegisterJob adds a job to the scheduler. Must be called before Start().
// Returns an error if a job with the same name is already registered.
func (s *Scheduler) RegisterJob(j Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := j.Name()
	if _, exists := s.names[name]; exists {
		return fmt.Errorf("jobs: duplicate job name %q", name)
	}

	s.names[name] = struct{}{}
	s.locks[name] = &sync.Mutex{}
	s.jobs = append(s.jobs, j)
	return nil
}

// Jobs returns the registered jobs in registration order.
func (s *Scheduler) Jobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Job, len(s.jobs))
	copy(out, s.jobs)
	return out
}

// Start initializes the cron scheduler and begins executing registered jobs.
// Returns an error if any job has an invalid schedule expression.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.cron = cron.New(cron.WithParser(scheduleParser))

	for _, j := range s.jobs {
		job := j
		_, err := s.cron.AddFunc(job.Schedule(), func() { s.runJob(ctx, job) })
		if err != nil {
			cancel()
			return fmt.Errorf("jobs: invalid schedule for job %q: %w", job.Name(), err)
		}
	}

	s.cron.Start()
	s.logger.Info("jobs: scheduler started", "jobs", len(s.jobs))
	return nil
}

// runJob executes a single tick of j. TryLock is atomic — no race between
// check and acquire. If the previous tick of the same job is still running,
// this one is skipped.
func (s *Scheduler) runJob(ctx context.Context, j Job) {
	lock := s.locks[j.Name()]
	if !lock.TryLock() {
		s.logger.Warn("jobs: job still running, skipping tick",
			"job", j.Name(),
		)
		runsTotal.WithLabelValues(j.Name(), "skipped").Inc()
		return
	}
	defer lock.Unlock()

	s.logger.Debug("jobs: job started", "job", j.Name())
	start := time.Now()
	err := j.Run(ctx)
	runDuration.WithLabelValues(j.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		s.logger.Error("jobs: job failed",
			"job", j.Name(),
			"error", err,
		)
		runsTotal.WithLabelValues(j.Name(), "error").Inc()
		return
	}
	s.logger.Debug("jobs: job completed", "job", j.Name())
	runsTotal.WithLabelValues(j.Name(), "success").Inc()
}

// Stop gracefully shuts down the scheduler, waiting for in-flight jobs.
func (s *Scheduler) Stop(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	if s.cron != nil {
		// Wait for running jobs to complete.
		<-s.cron.Stop().Done()
		s.logger.Info("jobs: scheduler stopped")
	}
	return nil
}
