// Package jobs provides the CRM background jobs (customer cleanup, order
// reminders, heartbeat, stock replenishment, weekly report) and the cron
// scheduler that runs them.
package jobs

import "context"

// Job defines a periodic background task.
type Job interface {
	// Name returns a unique identifier for this job (used for logging and dedup).
	Name() string

	// Schedule returns a 5-field cron expression (e.g., "*/5 * * * *").
	Schedule() string

	// Run executes the job. Implementations should check ctx.Done() for
	// graceful cancellation.
	Run(ctx context.Context) error
}
