package sqlite

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/flemzord/crmd/internal/store"
)

var _ store.Store = (*SQLStore)(nil)

// Stats implements store.Store. Revenue sums total_amount over all orders.
func (s *SQLStore) Stats(ctx context.Context) (store.Stats, error) {
	var stats store.Stats

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM customers").Scan(&stats.Customers); err != nil {
		return store.Stats{}, fmt.Errorf("sqlite: count customers: %w", err)
	}

	var revenue decimal.Decimal
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(total_amount), 0) FROM orders",
	).Scan(&stats.Orders, &revenue); err != nil {
		return store.Stats{}, fmt.Errorf("sqlite: aggregate orders: %w", err)
	}
	stats.Revenue = revenue

	return stats, nil
}
