package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flemzord/crmd/internal/crm"
	"github.com/flemzord/crmd/internal/store"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	st, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func mustCustomer(t *testing.T, st *SQLStore, name, email string) crm.Customer {
	t.Helper()
	c, err := st.CreateCustomer(context.Background(), crm.Customer{Name: name, Email: email})
	if err != nil {
		t.Fatalf("create customer %s: %v", name, err)
	}
	return c
}

func mustProduct(t *testing.T, st *SQLStore, name string, price float64, stock int) crm.Product {
	t.Helper()
	p, err := st.CreateProduct(context.Background(), crm.Product{
		Name:  name,
		Price: decimal.NewFromFloat(price),
		Stock: stock,
	})
	if err != nil {
		t.Fatalf("create product %s: %v", name, err)
	}
	return p
}

func mustOrder(t *testing.T, st *SQLStore, customerID int64, productIDs []int64, date time.Time) crm.Order {
	t.Helper()
	o, err := st.CreateOrder(context.Background(), customerID, productIDs, date)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return o
}

func daysAgo(n int) time.Time {
	return time.Now().UTC().Add(-time.Duration(n) * 24 * time.Hour)
}

func TestPurgeInactiveCustomers(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()

	// A: no orders. B: one stale order. C: one recent order.
	a := mustCustomer(t, st, "Alice", "alice@example.com")
	b := mustCustomer(t, st, "Bob", "bob@example.com")
	c := mustCustomer(t, st, "Carol", "carol@example.com")

	p := mustProduct(t, st, "Widget", 9.99, 50)
	staleOrder := mustOrder(t, st, b.ID, []int64{p.ID}, daysAgo(400))
	mustOrder(t, st, c.ID, []int64{p.ID}, daysAgo(10))

	cutoff := daysAgo(365)
	deleted, err := st.PurgeInactiveCustomers(ctx, cutoff)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}

	if _, err := st.GetCustomer(ctx, a.ID); !errors.Is(err, store.ErrCustomerNotFound) {
		t.Errorf("customer A should be gone, got %v", err)
	}
	if _, err := st.GetCustomer(ctx, b.ID); !errors.Is(err, store.ErrCustomerNotFound) {
		t.Errorf("customer B should be gone, got %v", err)
	}
	if _, err := st.GetCustomer(ctx, c.ID); err != nil {
		t.Errorf("customer C should survive, got %v", err)
	}

	// B's order cascades away with its customer.
	if _, err := st.GetOrder(ctx, staleOrder.ID); !errors.Is(err, store.ErrOrderNotFound) {
		t.Errorf("stale order should cascade, got %v", err)
	}

	// A second run over the same data is a no-op.
	deleted, err = st.PurgeInactiveCustomers(ctx, cutoff)
	if err != nil {
		t.Fatalf("second purge: %v", err)
	}
	if deleted != 0 {
		t.Errorf("second purge deleted = %d, want 0", deleted)
	}
}

func TestPurgeInactiveCustomers_EmptyStore(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	deleted, err := st.PurgeInactiveCustomers(context.Background(), daysAgo(365))
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if deleted != 0 {
		t.Errorf("deleted = %d, want 0", deleted)
	}
}

func TestCreateCustomer_Normalizes(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	c, err := st.CreateCustomer(context.Background(), crm.Customer{
		Name:  "  Dave  ",
		Email: " DAVE@Example.COM ",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.Name != "Dave" || c.Email != "dave@example.com" {
		t.Errorf("got %q %q, want normalized values", c.Name, c.Email)
	}
	if c.ID == 0 {
		t.Error("ID not set")
	}
	if c.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestCreateCustomer_DuplicateEmail(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	mustCustomer(t, st, "Alice", "alice@example.com")

	_, err := st.CreateCustomer(context.Background(), crm.Customer{
		Name:  "Other Alice",
		Email: "ALICE@example.com", // same address after normalization
	})
	if !errors.Is(err, store.ErrDuplicateEmail) {
		t.Errorf("err = %v, want ErrDuplicateEmail", err)
	}
}

func TestGetCustomer_NotFound(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	_, err := st.GetCustomer(context.Background(), 42)
	if !errors.Is(err, store.ErrCustomerNotFound) {
		t.Errorf("err = %v, want ErrCustomerNotFound", err)
	}
}

func TestListCustomers_Filters(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()

	if _, err := st.CreateCustomer(ctx, crm.Customer{Name: "Alice Smith", Email: "alice@example.com", Phone: "+1234567890"}); err != nil {
		t.Fatal(err)
	}
	if _, err := st.CreateCustomer(ctx, crm.Customer{Name: "Bob Jones", Email: "bob@other.org", Phone: "(123) 456-7890"}); err != nil {
		t.Fatal(err)
	}

	got, err := st.ListCustomers(ctx, store.CustomerFilter{NameContains: "smith"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "Alice Smith" {
		t.Errorf("name filter: got %v", got)
	}

	got, err = st.ListCustomers(ctx, store.CustomerFilter{EmailContains: "example.com"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Email != "alice@example.com" {
		t.Errorf("email filter: got %v", got)
	}

	got, err = st.ListCustomers(ctx, store.CustomerFilter{PhonePrefix: "+1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "Alice Smith" {
		t.Errorf("phone filter: got %v", got)
	}

	got, err = st.ListCustomers(ctx, store.CustomerFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("no filter: got %d customers, want 2", len(got))
	}
}

func TestCreateOrder(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()

	c := mustCustomer(t, st, "Alice", "alice@example.com")
	p1 := mustProduct(t, st, "Widget", 9.99, 50)
	p2 := mustProduct(t, st, "Gadget", 20.01, 50)

	o := mustOrder(t, st, c.ID, []int64{p1.ID, p2.ID}, daysAgo(1))

	if !o.TotalAmount.Equal(decimal.NewFromFloat(30.00)) {
		t.Errorf("total = %s, want 30", o.TotalAmount)
	}

	got, err := st.GetOrder(ctx, o.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if got.Customer == nil || got.Customer.ID != c.ID {
		t.Error("customer not attached")
	}
	if len(got.Products) != 2 {
		t.Errorf("products = %d, want 2", len(got.Products))
	}
	if !got.TotalAmount.Equal(decimal.NewFromFloat(30.00)) {
		t.Errorf("stored total = %s, want 30", got.TotalAmount)
	}
}

func TestCreateOrder_BadInput(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()

	c := mustCustomer(t, st, "Alice", "alice@example.com")
	p := mustProduct(t, st, "Widget", 9.99, 50)

	if _, err := st.CreateOrder(ctx, 999, []int64{p.ID}, time.Now()); !errors.Is(err, store.ErrCustomerNotFound) {
		t.Errorf("unknown customer: err = %v", err)
	}
	if _, err := st.CreateOrder(ctx, c.ID, nil, time.Now()); !errors.Is(err, store.ErrNoProducts) {
		t.Errorf("no products: err = %v", err)
	}
	if _, err := st.CreateOrder(ctx, c.ID, []int64{999}, time.Now()); !errors.Is(err, store.ErrProductNotFound) {
		t.Errorf("unknown product: err = %v", err)
	}
}

func TestOrdersSince(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)

	c := mustCustomer(t, st, "Alice", "alice@example.com")
	p := mustProduct(t, st, "Widget", 5.00, 50)

	mustOrder(t, st, c.ID, []int64{p.ID}, daysAgo(10))
	recent := mustOrder(t, st, c.ID, []int64{p.ID}, daysAgo(3))

	got, err := st.OrdersSince(context.Background(), daysAgo(7))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != recent.ID {
		t.Errorf("got %d orders, want only the recent one", len(got))
	}
	if got[0].Customer == nil || got[0].Customer.Email != "alice@example.com" {
		t.Error("customer not attached")
	}
}

func TestListOrders_Filters(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()

	alice := mustCustomer(t, st, "Alice", "alice@example.com")
	bob := mustCustomer(t, st, "Bob", "bob@example.com")
	cheap := mustProduct(t, st, "Widget", 5.00, 50)
	dear := mustProduct(t, st, "Gadget", 500.00, 50)

	mustOrder(t, st, alice.ID, []int64{cheap.ID}, daysAgo(2))
	big := mustOrder(t, st, bob.ID, []int64{dear.ID}, daysAgo(1))

	min := decimal.NewFromInt(100)
	got, err := st.ListOrders(ctx, store.OrderFilter{TotalMin: &min})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != big.ID {
		t.Errorf("total filter: got %v", got)
	}

	got, err = st.ListOrders(ctx, store.OrderFilter{CustomerName: "alice"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Customer.Name != "Alice" {
		t.Errorf("customer name filter: got %v", got)
	}

	got, err = st.ListOrders(ctx, store.OrderFilter{ProductID: dear.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != big.ID {
		t.Errorf("product filter: got %v", got)
	}
}

func TestRestockLowProducts(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()

	low := mustProduct(t, st, "Widget", 5.00, 9)
	atThreshold := mustProduct(t, st, "Gadget", 5.00, 10)

	updated, err := st.RestockLowProducts(ctx, 10, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(updated) != 1 || updated[0].ID != low.ID {
		t.Fatalf("updated = %v, want only the low product", updated)
	}
	if updated[0].Stock != 19 {
		t.Errorf("stock = %d, want 19", updated[0].Stock)
	}

	got, err := st.GetProduct(ctx, atThreshold.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Stock != 10 {
		t.Errorf("product at threshold changed: stock = %d", got.Stock)
	}

	// Nothing left below threshold.
	updated, err = st.RestockLowProducts(ctx, 10, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(updated) != 0 {
		t.Errorf("second restock updated %d products, want 0", len(updated))
	}
}

func TestListProducts_Filters(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()

	mustProduct(t, st, "Laptop", 999.99, 4)
	mustProduct(t, st, "Mouse", 19.99, 100)

	got, err := st.ListProducts(ctx, store.ProductFilter{LowStock: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "Laptop" {
		t.Errorf("low stock filter: got %v", got)
	}

	min := decimal.NewFromInt(100)
	got, err = st.ListProducts(ctx, store.ProductFilter{PriceMin: &min})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "Laptop" {
		t.Errorf("price filter: got %v", got)
	}

	got, err = st.ListProducts(ctx, store.ProductFilter{NameContains: "mou"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "Mouse" {
		t.Errorf("name filter: got %v", got)
	}
}

func TestStats(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()

	c := mustCustomer(t, st, "Alice", "alice@example.com")
	mustCustomer(t, st, "Bob", "bob@example.com")
	p := mustProduct(t, st, "Widget", 12.50, 50)

	mustOrder(t, st, c.ID, []int64{p.ID}, daysAgo(1))
	mustOrder(t, st, c.ID, []int64{p.ID}, daysAgo(2))

	stats, err := st.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Customers != 2 {
		t.Errorf("customers = %d, want 2", stats.Customers)
	}
	if stats.Orders != 2 {
		t.Errorf("orders = %d, want 2", stats.Orders)
	}
	if !stats.Revenue.Equal(decimal.NewFromFloat(25.00)) {
		t.Errorf("revenue = %s, want 25", stats.Revenue)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	if err := migrate(st.db); err != nil {
		t.Fatalf("re-migrate: %v", err)
	}
}
