package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"github.com/flemzord/crmd/internal/crm"
	"github.com/flemzord/crmd/internal/store"
)

// lowStockThreshold mirrors the "low stock" filter: fewer than 10 units.
const lowStockThreshold = 10

type productRow struct {
	ID        int64           `db:"id"`
	Name      string          `db:"name"`
	Price     decimal.Decimal `db:"price"`
	Stock     int             `db:"stock"`
	CreatedAt string          `db:"created_at"`
}

func (r productRow) toDomain() (crm.Product, error) {
	createdAt, err := parseTime(r.CreatedAt)
	if err != nil {
		return crm.Product{}, err
	}
	return crm.Product{
		ID:        r.ID,
		Name:      r.Name,
		Price:     r.Price,
		Stock:     r.Stock,
		CreatedAt: createdAt,
	}, nil
}

// CreateProduct implements store.ProductStore.
func (s *SQLStore) CreateProduct(ctx context.Context, p crm.Product) (crm.Product, error) {
	p.Name = strings.TrimSpace(p.Name)

	now := time.Now().UTC().Truncate(time.Second)
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO products (name, price, stock, created_at) VALUES (?, ?, ?, ?)",
		p.Name, p.Price, p.Stock, fmtTime(now),
	)
	if err != nil {
		return crm.Product{}, fmt.Errorf("sqlite: insert product: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return crm.Product{}, fmt.Errorf("sqlite: last insert id: %w", err)
	}

	p.ID = id
	p.CreatedAt = now
	return p, nil
}

// GetProduct implements store.ProductStore.
func (s *SQLStore) GetProduct(ctx context.Context, id int64) (crm.Product, error) {
	var row productRow
	err := s.db.GetContext(ctx, &row,
		"SELECT id, name, price, stock, created_at FROM products WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return crm.Product{}, fmt.Errorf("%w: id %d", store.ErrProductNotFound, id)
	}
	if err != nil {
		return crm.Product{}, fmt.Errorf("sqlite: get product: %w", err)
	}
	return row.toDomain()
}

// ListProducts implements store.ProductStore. Products are ordered by name.
func (s *SQLStore) ListProducts(ctx context.Context, f store.ProductFilter) ([]crm.Product, error) {
	q := s.builder.
		Select("id", "name", "price", "stock", "created_at").
		From("products").
		OrderBy("name", "id")

	if f.NameContains != "" {
		q = q.Where(sq.Like{"name": "%" + f.NameContains + "%"})
	}
	if f.PriceMin != nil {
		q = q.Where(sq.GtOrEq{"price": *f.PriceMin})
	}
	if f.PriceMax != nil {
		q = q.Where(sq.LtOrEq{"price": *f.PriceMax})
	}
	if f.StockMin != nil {
		q = q.Where(sq.GtOrEq{"stock": *f.StockMin})
	}
	if f.StockMax != nil {
		q = q.Where(sq.LtOrEq{"stock": *f.StockMax})
	}
	if f.LowStock {
		q = q.Where(sq.Lt{"stock": lowStockThreshold})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: build product query: %w", err)
	}

	var rows []productRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("sqlite: list products: %w", err)
	}

	products := make([]crm.Product, 0, len(rows))
	for _, row := range rows {
		p, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

// RestockLowProducts implements store.ProductStore. The select and the
// update run in one transaction so the returned products reflect exactly
// the rows the update touched.
func (s *SQLStore) RestockLowProducts(ctx context.Context, threshold, increment int) ([]crm.Product, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var rows []productRow
	if err := tx.SelectContext(ctx, &rows,
		"SELECT id, name, price, stock, created_at FROM products WHERE stock < ? ORDER BY name, id",
		threshold,
	); err != nil {
		return nil, fmt.Errorf("sqlite: select low-stock products: %w", err)
	}

	if len(rows) == 0 {
		return nil, tx.Commit()
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE products SET stock = stock + ? WHERE stock < ?",
		increment, threshold,
	); err != nil {
		return nil, fmt.Errorf("sqlite: restock products: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite: commit restock: %w", err)
	}

	products := make([]crm.Product, 0, len(rows))
	for _, row := range rows {
		p, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		p.Stock += increment
		products = append(products, p)
	}
	return products, nil
}
