// Package store defines the persistence interface the CRM daemon is built
// against. The SQLite implementation lives in the sqlite subpackage; jobs and
// the GraphQL layer depend only on the interfaces here.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/flemzord/crmd/internal/crm"
	"github.com/shopspring/decimal"
)

// Sentinel errors for store operations.
var (
	ErrCustomerNotFound = errors.New("store: customer not found")
	ErrProductNotFound  = errors.New("store: product not found")
	ErrOrderNotFound    = errors.New("store: order not found")
	ErrDuplicateEmail   = errors.New("store: email already exists")
	ErrNoProducts       = errors.New("store: order requires at least one product")
)

// CustomerFilter narrows ListCustomers. Zero values mean "no constraint".
type CustomerFilter struct {
	NameContains  string
	EmailContains string
	PhonePrefix   string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// ProductFilter narrows ListProducts. Nil pointers mean "no constraint".
// LowStock selects products with stock below the replenishment threshold.
type ProductFilter struct {
	NameContains string
	PriceMin     *decimal.Decimal
	PriceMax     *decimal.Decimal
	StockMin     *int
	StockMax     *int
	LowStock     bool
}

// OrderFilter narrows ListOrders. Customer fields match through the join.
type OrderFilter struct {
	TotalMin      *decimal.Decimal
	TotalMax      *decimal.Decimal
	DateFrom      *time.Time
	DateTo        *time.Time
	CustomerName  string
	CustomerEmail string
	ProductID     int64 // 0 = no constraint
}

// Stats is the aggregate snapshot used by the weekly report.
type Stats struct {
	Customers int64
	Orders    int64
	Revenue   decimal.Decimal
}

// Store is the full persistence contract.
type Store interface {
	CustomerStore
	ProductStore
	OrderStore

	// Stats returns customer count, order count, and total revenue.
	Stats(ctx context.Context) (Stats, error)

	// Ping verifies the backing database is reachable.
	Ping(ctx context.Context) error

	Close() error
}

// CustomerStore covers customer persistence, including the purge used by the
// inactive-customer cleanup job.
type CustomerStore interface {
	// CreateCustomer inserts a customer and returns it with ID and CreatedAt
	// set. Returns ErrDuplicateEmail when the email is already taken.
	CreateCustomer(ctx context.Context, c crm.Customer) (crm.Customer, error)

	// GetCustomer returns ErrCustomerNotFound when no row matches.
	GetCustomer(ctx context.Context, id int64) (crm.Customer, error)

	ListCustomers(ctx context.Context, f CustomerFilter) ([]crm.Customer, error)

	// PurgeInactiveCustomers deletes every customer that has no order dated
	// at or after cutoff (customers with no orders at all included) and
	// returns the number of customers removed. The candidate evaluation and
	// the delete run in one transaction, so the returned count is exact.
	// Orders belonging to purged customers are removed by cascade.
	PurgeInactiveCustomers(ctx context.Context, cutoff time.Time) (int64, error)
}

// ProductStore covers product persistence and the low-stock replenishment.
type ProductStore interface {
	CreateProduct(ctx context.Context, p crm.Product) (crm.Product, error)

	// GetProduct returns ErrProductNotFound when no row matches.
	GetProduct(ctx context.Context, id int64) (crm.Product, error)

	ListProducts(ctx context.Context, f ProductFilter) ([]crm.Product, error)

	// RestockLowProducts increments the stock of every product below
	// threshold by increment, in one transaction, and returns the updated
	// products with their new stock levels.
	RestockLowProducts(ctx context.Context, threshold, increment int) ([]crm.Product, error)
}

// OrderStore covers order persistence.
type OrderStore interface {
	// CreateOrder inserts an order for customerID over productIDs, computing
	// TotalAmount from the product prices, all in one transaction. Returns
	// ErrCustomerNotFound, ErrProductNotFound, or ErrNoProducts on bad input.
	CreateOrder(ctx context.Context, customerID int64, productIDs []int64, orderDate time.Time) (crm.Order, error)

	// GetOrder returns the order with its customer and products attached.
	// Returns ErrOrderNotFound when no row matches.
	GetOrder(ctx context.Context, id int64) (crm.Order, error)

	// ListOrders returns orders with their customer attached (products are
	// not loaded; use GetOrder for the full graph).
	ListOrders(ctx context.Context, f OrderFilter) ([]crm.Order, error)

	// OrdersSince returns orders with order_date at or after since, customer
	// attached, oldest first. Used by the order reminder job.
	OrdersSince(ctx context.Context, since time.Time) ([]crm.Order, error)
}
