package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"github.com/flemzord/crmd/internal/crm"
	"github.com/flemzord/crmd/internal/store"
)

type orderRow struct {
	ID          int64           `db:"id"`
	CustomerID  int64           `db:"customer_id"`
	OrderDate   string          `db:"order_date"`
	TotalAmount decimal.Decimal `db:"total_amount"`
}

func (r orderRow) toDomain() (crm.Order, error) {
	orderDate, err := parseTime(r.OrderDate)
	if err != nil {
		return crm.Order{}, err
	}
	return crm.Order{
		ID:          r.ID,
		CustomerID:  r.CustomerID,
		OrderDate:   orderDate,
		TotalAmount: r.TotalAmount,
	}, nil
}

// orderWithCustomerRow joins the customer columns onto the order for list
// queries that attach the customer in one pass.
type orderWithCustomerRow struct {
	orderRow
	CustomerName      string `db:"customer_name"`
	CustomerEmail     string `db:"customer_email"`
	CustomerPhone     string `db:"customer_phone"`
	CustomerCreatedAt string `db:"customer_created_at"`
}

func (r orderWithCustomerRow) toDomain() (crm.Order, error) {
	o, err := r.orderRow.toDomain()
	if err != nil {
		return crm.Order{}, err
	}
	createdAt, err := parseTime(r.CustomerCreatedAt)
	if err != nil {
		return crm.Order{}, err
	}
	o.Customer = &crm.Customer{
		ID:        r.CustomerID,
		Name:      r.CustomerName,
		Email:     r.CustomerEmail,
		Phone:     r.CustomerPhone,
		CreatedAt: createdAt,
	}
	return o, nil
}

const orderWithCustomerColumns = `
	o.id, o.customer_id, o.order_date, o.total_amount,
	c.name AS customer_name, c.email AS customer_email,
	c.phone AS customer_phone, c.created_at AS customer_created_at`

// CreateOrder implements store.OrderStore. The customer check, product
// lookups, total computation, and inserts all run in one transaction.
func (s *SQLStore) CreateOrder(ctx context.Context, customerID int64, productIDs []int64, orderDate time.Time) (crm.Order, error) {
	if len(productIDs) == 0 {
		return crm.Order{}, store.ErrNoProducts
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return crm.Order{}, fmt.Errorf("sqlite: begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var customerExists bool
	if err := tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM customers WHERE id = ?)", customerID,
	).Scan(&customerExists); err != nil {
		return crm.Order{}, fmt.Errorf("sqlite: check customer: %w", err)
	}
	if !customerExists {
		return crm.Order{}, fmt.Errorf("%w: id %d", store.ErrCustomerNotFound, customerID)
	}

	query, args, err := s.builder.
		Select("id", "name", "price", "stock", "created_at").
		From("products").
		Where(sq.Eq{"id": productIDs}).
		ToSql()
	if err != nil {
		return crm.Order{}, fmt.Errorf("sqlite: build product lookup: %w", err)
	}

	var productRows []productRow
	if err := tx.SelectContext(ctx, &productRows, query, args...); err != nil {
		return crm.Order{}, fmt.Errorf("sqlite: load products: %w", err)
	}

	found := make(map[int64]crm.Product, len(productRows))
	for _, row := range productRows {
		p, err := row.toDomain()
		if err != nil {
			return crm.Order{}, err
		}
		found[p.ID] = p
	}

	total := decimal.Zero
	products := make([]crm.Product, 0, len(productIDs))
	seen := make(map[int64]bool, len(productIDs))
	for _, id := range productIDs {
		p, ok := found[id]
		if !ok {
			return crm.Order{}, fmt.Errorf("%w: id %d", store.ErrProductNotFound, id)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		total = total.Add(p.Price)
		products = append(products, p)
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO orders (customer_id, order_date, total_amount) VALUES (?, ?, ?)",
		customerID, fmtTime(orderDate), total,
	)
	if err != nil {
		return crm.Order{}, fmt.Errorf("sqlite: insert order: %w", err)
	}

	orderID, err := res.LastInsertId()
	if err != nil {
		return crm.Order{}, fmt.Errorf("sqlite: last insert id: %w", err)
	}

	for _, p := range products {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO order_products (order_id, product_id) VALUES (?, ?)",
			orderID, p.ID,
		); err != nil {
			return crm.Order{}, fmt.Errorf("sqlite: link product %d: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return crm.Order{}, fmt.Errorf("sqlite: commit order: %w", err)
	}

	return crm.Order{
		ID:          orderID,
		CustomerID:  customerID,
		OrderDate:   orderDate.UTC().Truncate(time.Second),
		TotalAmount: total,
		Products:    products,
	}, nil
}

// GetOrder implements store.OrderStore. The customer and products are
// attached.
func (s *SQLStore) GetOrder(ctx context.Context, id int64) (crm.Order, error) {
	var row orderWithCustomerRow
	err := s.db.GetContext(ctx, &row,
		"SELECT"+orderWithCustomerColumns+`
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return crm.Order{}, fmt.Errorf("%w: id %d", store.ErrOrderNotFound, id)
	}
	if err != nil {
		return crm.Order{}, fmt.Errorf("sqlite: get order: %w", err)
	}

	order, err := row.toDomain()
	if err != nil {
		return crm.Order{}, err
	}

	var productRows []productRow
	if err := s.db.SelectContext(ctx, &productRows, `
		SELECT p.id, p.name, p.price, p.stock, p.created_at
		FROM products p
		JOIN order_products op ON op.product_id = p.id
		WHERE op.order_id = ?
		ORDER BY p.name, p.id`, id,
	); err != nil {
		return crm.Order{}, fmt.Errorf("sqlite: load order products: %w", err)
	}

	order.Products = make([]crm.Product, 0, len(productRows))
	for _, pr := range productRows {
		p, err := pr.toDomain()
		if err != nil {
			return crm.Order{}, err
		}
		order.Products = append(order.Products, p)
	}
	return order, nil
}

// ListOrders implements store.OrderStore. Newest orders first.
func (s *SQLStore) ListOrders(ctx context.Context, f store.OrderFilter) ([]crm.Order, error) {
	q := s.builder.
		Select(
			"o.id", "o.customer_id", "o.order_date", "o.total_amount",
			"c.name AS customer_name", "c.email AS customer_email",
			"c.phone AS customer_phone", "c.created_at AS customer_created_at",
		).
		From("orders o").
		Join("customers c ON c.id = o.customer_id").
		OrderBy("o.order_date DESC", "o.id DESC")

	if f.TotalMin != nil {
		q = q.Where(sq.GtOrEq{"o.total_amount": *f.TotalMin})
	}
	if f.TotalMax != nil {
		q = q.Where(sq.LtOrEq{"o.total_amount": *f.TotalMax})
	}
	if f.DateFrom != nil {
		q = q.Where(sq.GtOrEq{"o.order_date": fmtTime(*f.DateFrom)})
	}
	if f.DateTo != nil {
		q = q.Where(sq.LtOrEq{"o.order_date": fmtTime(*f.DateTo)})
	}
	if f.CustomerName != "" {
		q = q.Where(sq.Like{"c.name": "%" + f.CustomerName + "%"})
	}
	if f.CustomerEmail != "" {
		q = q.Where(sq.Like{"c.email": "%" + f.CustomerEmail + "%"})
	}
	if f.ProductID != 0 {
		q = q.Where("EXISTS (SELECT 1 FROM order_products op WHERE op.order_id = o.id AND op.product_id = ?)", f.ProductID)
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: build order query: %w", err)
	}

	var rows []orderWithCustomerRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("sqlite: list orders: %w", err)
	}

	orders := make([]crm.Order, 0, len(rows))
	for _, row := range rows {
		o, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// OrdersSince implements store.OrderStore. Oldest first.
func (s *SQLStore) OrdersSince(ctx context.Context, since time.Time) ([]crm.Order, error) {
	var rows []orderWithCustomerRow
	if err := s.db.SelectContext(ctx, &rows,
		"SELECT"+orderWithCustomerColumns+`
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.order_date >= ?
		ORDER BY o.order_date, o.id`,
		fmtTime(since),
	); err != nil {
		return nil, fmt.Errorf("sqlite: orders since: %w", err)
	}

	orders := make([]crm.Order, 0, len(rows))
	for _, row := range rows {
		o, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}
