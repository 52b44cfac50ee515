package jobs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/flemzord/crmd/internal/auditlog"
	"github.com/flemzord/crmd/internal/store"
)

// inactivityWindow is how long a customer may go without an order before the
// cleanup job removes them.
const inactivityWindow = 365 * 24 * time.Hour

const auditTimeLayout = "2006-01-02 15:04:05"

// CustomerCleanupJob deletes customers that have placed no order within the
// inactivity window and appends one audit line per run. Deletion is the
// primary effect: an unwritable audit sink is logged as a warning, not a
// failure.
type CustomerCleanupJob struct {
	Store        store.CustomerStore
	Sink         auditlog.Sink
	Logger       *slog.Logger
	Out          io.Writer        // summary line destination, defaults to os.Stdout
	ScheduleExpr string           // empty = default "0 2 * * 0"
	Now          func() time.Time // injectable clock, defaults to time.Now
}

var _ Job = (*CustomerCleanupJob)(nil)

// Name implements Job.
func (j *CustomerCleanupJob) Name() string { return "customer_cleanup" }

// Schedule implements Job.
func (j *CustomerCleanupJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "0 2 * * 0"
}

// Run purges inactive customers and records the audit line. Re-running
// against the same data is safe: the predicate is stateless and customers
// already removed simply no longer match.
func (j *CustomerCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-inactivityWindow)

	deleted, err := j.Store.PurgeInactiveCustomers(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("jobs: purge inactive customers: %w", err)
	}

	line := fmt.Sprintf("[%s] Deleted %d inactive customers (no orders since %s)\n",
		j.now().Format(auditTimeLayout), deleted, cutoff.Format("2006-01-02"))

	if err := j.Sink.WriteLine(line); err != nil {
		j.logger().Warn("jobs: audit line not written", "job", j.Name(), "error", err)
	}

	fmt.Fprintf(j.out(), "Deleted %d inactive customers.\n", deleted)
	j.logger().Info("jobs: inactive customers purged",
		"deleted", deleted,
		"cutoff", cutoff.Format("2006-01-02"),
	)
	return nil
}

func (j *CustomerCleanupJob) now() time.Time {
	if j.Now != nil {
		return j.Now()
	}
	return time.Now()
}

func (j *CustomerCleanupJob) out() io.Writer {
	if j.Out != nil {
		return j.Out
	}
	return os.Stdout
}

func (j *CustomerCleanupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
