package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/flemzord/crmd/internal/auditlog"
	"github.com/flemzord/crmd/internal/store"
)

const (
	// restockThreshold marks a product as low on stock.
	restockThreshold = 10
	// restockIncrement is how many units a replenishment adds.
	restockIncrement = 10
)

// StockReplenishJob tops up products whose stock has fallen below the
// threshold and records each replenished product in the log.
type StockReplenishJob struct {
	Store        store.ProductStore
	Sink         auditlog.Sink
	Logger       *slog.Logger
	ScheduleExpr string           // empty = default "0 */12 * * *"
	Now          func() time.Time // injectable clock, defaults to time.Now
}

var _ Job = (*StockReplenishJob)(nil)

// Name implements Job.
func (j *StockReplenishJob) Name() string { return "stock_replenish" }

// Schedule implements Job.
func (j *StockReplenishJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "0 */12 * * *"
}

// Run implements Job.
func (j *StockReplenishJob) Run(ctx context.Context) error {
	products, err := j.Store.RestockLowProducts(ctx, restockThreshold, restockIncrement)
	if err != nil {
		return fmt.Errorf("jobs: restock products: %w", err)
	}

	ts := j.now().Format(auditTimeLayout)
	for _, p := range products {
		line := fmt.Sprintf("[%s] Product: %s, New Stock: %d\n", ts, p.Name, p.Stock)
		if err := j.Sink.WriteLine(line); err != nil {
			j.logger().Warn("jobs: restock line not written", "job", j.Name(), "error", err)
		}
	}

	j.logger().Info("jobs: low-stock products replenished", "products", len(products))
	return nil
}

func (j *StockReplenishJob) now() time.Time {
	if j.Now != nil {
		return j.Now()
	}
	return time.Now()
}

func (j *StockReplenishJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
