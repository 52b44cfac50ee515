package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/flemzord/crmd/internal/crm"
	"github.com/flemzord/crmd/internal/store"
)

type customerRow struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	Email     string `db:"email"`
	Phone     string `db:"phone"`
	CreatedAt string `db:"created_at"`
}

func (r customerRow) toDomain() (crm.Customer, error) {
	createdAt, err := parseTime(r.CreatedAt)
	if err != nil {
		return crm.Customer{}, err
	}
	return crm.Customer{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		Phone:     r.Phone,
		CreatedAt: createdAt,
	}, nil
}

// CreateCustomer implements store.CustomerStore. The duplicate check and the
// insert run in one transaction so concurrent creates cannot slip past the
// email uniqueness rule (the UNIQUE index is the backstop either way).
func (s *SQLStore) CreateCustomer(ctx context.Context, c crm.Customer) (crm.Customer, error) {
	c = crm.NormalizeCustomer(c)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return crm.Customer{}, fmt.Errorf("sqlite: begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists bool
	if err := tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM customers WHERE email = ?)", c.Email,
	).Scan(&exists); err != nil {
		return crm.Customer{}, fmt.Errorf("sqlite: check email: %w", err)
	}
	if exists {
		return crm.Customer{}, fmt.Errorf("%w: %s", store.ErrDuplicateEmail, c.Email)
	}

	now := time.Now().UTC().Truncate(time.Second)
	res, err := tx.ExecContext(ctx,
		"INSERT INTO customers (name, email, phone, created_at) VALUES (?, ?, ?, ?)",
		c.Name, c.Email, c.Phone, fmtTime(now),
	)
	if err != nil {
		return crm.Customer{}, fmt.Errorf("sqlite: insert customer: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return crm.Customer{}, fmt.Errorf("sqlite: last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return crm.Customer{}, fmt.Errorf("sqlite: commit customer: %w", err)
	}

	c.ID = id
	c.CreatedAt = now
	return c, nil
}

// GetCustomer implements store.CustomerStore.
func (s *SQLStore) GetCustomer(ctx context.Context, id int64) (crm.Customer, error) {
	var row customerRow
	err := s.db.GetContext(ctx, &row,
		"SELECT id, name, email, phone, created_at FROM customers WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return crm.Customer{}, fmt.Errorf("%w: id %d", store.ErrCustomerNotFound, id)
	}
	if err != nil {
		return crm.Customer{}, fmt.Errorf("sqlite: get customer: %w", err)
	}
	return row.toDomain()
}

// ListCustomers implements store.CustomerStore. Text filters are
// case-insensitive partial matches; date filters compare inclusively.
func (s *SQLStore) ListCustomers(ctx context.Context, f store.CustomerFilter) ([]crm.Customer, error) {
	q := s.builder.
		Select("id", "name", "email", "phone", "created_at").
		From("customers").
		OrderBy("created_at DESC", "id DESC")

	if f.NameContains != "" {
		q = q.Where(sq.Like{"name": "%" + f.NameContains + "%"})
	}
	if f.EmailContains != "" {
		q = q.Where(sq.Like{"email": "%" + f.EmailContains + "%"})
	}
	if f.PhonePrefix != "" {
		q = q.Where(sq.Like{"phone": f.PhonePrefix + "%"})
	}
	if f.CreatedAfter != nil {
		q = q.Where(sq.GtOrEq{"created_at": fmtTime(*f.CreatedAfter)})
	}
	if f.CreatedBefore != nil {
		q = q.Where(sq.LtOrEq{"created_at": fmtTime(*f.CreatedBefore)})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: build customer query: %w", err)
	}

	var rows []customerRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("sqlite: list customers: %w", err)
	}

	customers := make([]crm.Customer, 0, len(rows))
	for _, row := range rows {
		c, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, nil
}

// PurgeInactiveCustomers implements store.CustomerStore. A customer is
// inactive when it has no order dated at or after cutoff — this single
// NOT EXISTS predicate covers both "no orders at all" and "all orders stale".
// The delete runs in one transaction on the single write connection, so the
// returned count always equals the rows actually removed. Deleting customers
// that another run already removed is naturally a no-op.
func (s *SQLStore) PurgeInactiveCustomers(ctx context.Context, cutoff time.Time) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		DELETE FROM customers
		WHERE NOT EXISTS (
			SELECT 1 FROM orders
			WHERE orders.customer_id = customers.id
			  AND orders.order_date >= ?
		)`,
		fmtTime(cutoff),
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: purge inactive customers: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit purge: %w", err)
	}

	return deleted, nil
}
