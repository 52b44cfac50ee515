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

// reminderWindow is how far back the reminder job looks for pending orders.
const reminderWindow = 7 * 24 * time.Hour

// OrderReminderJob logs one reminder line per order placed within the last
// seven days, followed by a total. Store failures are recorded in the log
// before the job fails.
type OrderReminderJob struct {
	Store        store.OrderStore
	Sink         auditlog.Sink
	Logger       *slog.Logger
	Out          io.Writer        // summary line destination, defaults to os.Stdout
	ScheduleExpr string           // empty = default "0 8 * * *"
	Now          func() time.Time // injectable clock, defaults to time.Now
}

var _ Job = (*OrderReminderJob)(nil)

// Name implements Job.
func (j *OrderReminderJob) Name() string { return "order_reminders" }

// Schedule implements Job.
func (j *OrderReminderJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "0 8 * * *"
}

// Run implements Job.
func (j *OrderReminderJob) Run(ctx context.Context) error {
	since := j.now().UTC().Add(-reminderWindow)

	orders, err := j.Store.OrdersSince(ctx, since)
	if err != nil {
		errLine := fmt.Sprintf("[%s] ERROR: %s\n", j.now().Format(auditTimeLayout), err)
		if werr := j.Sink.WriteLine(errLine); werr != nil {
			j.logger().Warn("jobs: error line not written", "job", j.Name(), "error", werr)
		}
		return fmt.Errorf("jobs: load pending orders: %w", err)
	}

	if len(orders) == 0 {
		if err := j.Sink.WriteLine("No pending orders found from the last 7 days.\n"); err != nil {
			j.logger().Warn("jobs: reminder line not written", "job", j.Name(), "error", err)
		}
	}

	for _, o := range orders {
		name, email := "Unknown customer", "N/A"
		if o.Customer != nil {
			name, email = o.Customer.Name, o.Customer.Email
		}
		line := fmt.Sprintf("Order ID: %d | Customer: %s (%s) | Order Date: %s\n",
			o.ID, name, email, o.OrderDate.Format(auditTimeLayout))
		if err := j.Sink.WriteLine(line); err != nil {
			j.logger().Warn("jobs: reminder line not written", "job", j.Name(), "error", err)
		}
	}

	totalLine := fmt.Sprintf("Total orders to process: %d\n", len(orders))
	if err := j.Sink.WriteLine(totalLine); err != nil {
		j.logger().Warn("jobs: reminder line not written", "job", j.Name(), "error", err)
	}

	fmt.Fprintf(j.out(), "Order reminders processed! Found %d orders from the last 7 days.\n", len(orders))
	j.logger().Info("jobs: order reminders processed", "orders", len(orders))
	return nil
}

func (j *OrderReminderJob) now() time.Time {
	if j.Now != nil {
		return j.Now()
	}
	return time.Now()
}

func (j *OrderReminderJob) out() io.Writer {
	if j.Out != nil {
		return j.Out
	}
	return os.Stdout
}

func (j *OrderReminderJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
