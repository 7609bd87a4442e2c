package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductTotals are the raw ledger sums for one product.
type ProductTotals struct {
	ProductID   uuid.UUID
	ProductName string
	Purchased   int
	Sold        int
}

// StockRepository reads ledger aggregates. Stock itself is never stored.
type StockRepository interface {
	Totals(ctx context.Context, productID uuid.UUID) (purchased, sold int, err error)
	AllTotals(ctx context.Context, activeOnly bool) ([]ProductTotals, error)
	TotalsFor(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]ProductTotals, error)
}

type stockRepo struct {
	db *gorm.DB
}

func NewStockRepo(db *gorm.DB) StockRepository {
	return &stockRepo{db}
}

func (r *stockRepo) Totals(ctx context.Context, productID uuid.UUID) (int, int, error) {
	var row struct {
		Purchased int
		Sold      int
	}
	err := r.db.WithContext(ctx).Raw(`
SELECT
	(SELECT COALESCE(SUM(quantity), 0) FROM purchases WHERE product_id = @pid) AS purchased,
	(SELECT COALESCE(SUM(quantity), 0) FROM sales WHERE product_id = @pid) AS sold
`, map[string]any{"pid": productID}).Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.Purchased, row.Sold, nil
}

const totalsQuery = `
SELECT
	p.id AS product_id,
	p.name AS product_name,
	COALESCE(pu.total, 0) AS purchased,
	COALESCE(sa.total, 0) AS sold
FROM products p
LEFT JOIN (SELECT product_id, SUM(quantity) AS total FROM purchases GROUP BY product_id) pu
	ON pu.product_id = p.id
LEFT JOIN (SELECT product_id, SUM(quantity) AS total FROM sales GROUP BY product_id) sa
	ON sa.product_id = p.id
`

func (r *stockRepo) AllTotals(ctx context.Context, activeOnly bool) ([]ProductTotals, error) {
	query := totalsQuery
	if activeOnly {
		query += "WHERE p.is_active = true\n"
	}
	query += "ORDER BY p.name ASC"

	var rows []ProductTotals
	if err := r.db.WithContext(ctx).Raw(query).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *stockRepo) TotalsFor(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]ProductTotals, error) {
	out := make(map[uuid.UUID]ProductTotals, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}

	var rows []ProductTotals
	if err := r.db.WithContext(ctx).Raw(totalsQuery+"WHERE p.id IN ?", productIDs).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ProductID] = row
	}
	return out, nil
}
