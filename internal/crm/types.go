// Package crm defines the domain model: customers, products, and orders.
package crm

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is an identity record owning zero or more orders.
type Customer struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone,omitempty"`
	CreatedAt time.Time `db:"-" json:"created_at"`

	// Orders is populated only by queries that ask for it.
	Orders []Order `db:"-" json:"orders,omitempty"`
}

// Product is a sellable item with a unit price and a stock level.
type Product struct {
	ID        int64           `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Stock     int             `db:"stock" json:"stock"`
	CreatedAt time.Time       `db:"-" json:"created_at"`
}

// Order links a customer to one or more products. TotalAmount is the sum of
// the product prices at creation time and is never recomputed afterwards.
type Order struct {
	ID          int64           `db:"id" json:"id"`
	CustomerID  int64           `db:"customer_id" json:"customer_id"`
	OrderDate   time.Time       `db:"-" json:"order_date"`
	TotalAmount decimal.Decimal `db:"total_amount" json:"total_amount"`

	// Customer and Products are populated only by queries that ask for them.
	Customer *Customer `db:"-" json:"customer,omitempty"`
	Products []Product `db:"-" json:"products,omitempty"`
}
