package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const schemaVersion = 1

// schemaStatements are executed in order to create the database schema.
// All use IF NOT EXISTS for idempotent re-application. DECIMAL columns get
// SQLite NUMERIC affinity so price range filters compare numerically.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT NOT NULL,
		email      TEXT NOT NULL UNIQUE,
		phone      TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_customers_email ON customers(email)`,

	`CREATE TABLE IF NOT EXISTS products (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT NOT NULL,
		price      DECIMAL(10,2) NOT NULL DEFAULT 0,
		stock      INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS orders (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		customer_id  INTEGER NOT NULL REFERENCES customers(id) ON DELETE CASCADE,
		order_date   TEXT NOT NULL,
		total_amount DECIMAL(10,2) NOT NULL DEFAULT 0
	)`,

	`CREATE INDEX IF NOT EXISTS idx_orders_date ON orders(order_date)`,

	`CREATE INDEX IF NOT EXISTS idx_orders_customer_date ON orders(customer_id, order_date)`,

	`CREATE TABLE IF NOT EXISTS order_products (
		order_id   INTEGER NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		PRIMARY KEY (order_id, product_id)
	)`,
}

// migrate creates or updates the database schema to the latest version.
// All DDL uses IF NOT EXISTS, making migration idempotent.
func migrate(db *sqlx.DB) error {
	ctx := context.TODO()

	// Ensure schema_version table exists first.
	if _, err := db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)"); err != nil {
		return fmt.Errorf("sqlite: create schema_version: %w", err)
	}

	var current int
	if err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&current); err != nil {
		return fmt.Errorf("sqlite: read schema version: %w", err)
	}

	if current >= schemaVersion {
		return nil
	}

	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: migrate: %w\nstatement: %s", err, stmt)
		}
	}

	if _, err := db.ExecContext(ctx, "INSERT OR REPLACE INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("sqlite: record schema version: %w", err)
	}

	return nil
}
