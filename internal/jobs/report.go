package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/flemzord/crmd/internal/auditlog"
	"github.com/flemzord/crmd/internal/store"
)

// StatsSource is the aggregate view the weekly report reads.
type StatsSource interface {
	Stats(ctx context.Context) (store.Stats, error)
}

// WeeklyReportJob appends one summary line with customer, order, and revenue
// totals. Store failures are recorded in the log before the job fails.
type WeeklyReportJob struct {
	Store        StatsSource
	Sink         auditlog.Sink
	Logger       *slog.Logger
	ScheduleExpr string           // empty = default "0 6 * * 1"
	Now          func() time.Time // injectable clock, defaults to time.Now
}

var _ Job = (*WeeklyReportJob)(nil)

// Name implements Job.
func (j *WeeklyReportJob) Name() string { return "weekly_report" }

// Schedule implements Job.
func (j *WeeklyReportJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "0 6 * * 1"
}

// Run implements Job.
func (j *WeeklyReportJob) Run(ctx context.Context) error {
	stats, err := j.Store.Stats(ctx)
	if err != nil {
		errLine := fmt.Sprintf("%s - ERROR: %s\n", j.now().Format(auditTimeLayout), err)
		if werr := j.Sink.WriteLine(errLine); werr != nil {
			j.logger().Warn("jobs: error line not written", "job", j.Name(), "error", werr)
		}
		return fmt.Errorf("jobs: load report stats: %w", err)
	}

	line := fmt.Sprintf("%s - Report: %d customers, %d orders, %s revenue.\n",
		j.now().Format(auditTimeLayout), stats.Customers, stats.Orders, stats.Revenue.StringFixed(2))

	if err := j.Sink.WriteLine(line); err != nil {
		j.logger().Warn("jobs: report line not written", "job", j.Name(), "error", err)
	}

	j.logger().Info("jobs: report generated",
		"customers", stats.Customers,
		"orders", stats.Orders,
		"revenue", stats.Revenue.StringFixed(2),
	)
	return nil
}

func (j *WeeklyReportJob) now() time.Time {
	if j.Now != nil {
		return j.Now()
	}
	return time.Now()
}

func (j *WeeklyReportJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
