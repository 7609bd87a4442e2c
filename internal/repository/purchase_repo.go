package repository

import (
	"context"
	"errors"
	"time"

	"go-remedyflow/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerStats summarises a purchase or sale ledger.
type LedgerStats struct {
	Count       int64           `json:"count"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	TodayCount  int64           `json:"todayCount"`
}

type PurchaseRepository interface {
	Create(ctx context.Context, purchase *model.Purchase) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Purchase, error)
	List(ctx context.Context, page Page) ([]model.Purchase, int64, error)
	Stats(ctx context.Context, dayStart time.Time) (*LedgerStats, error)
}

type purchaseRepo struct {
	db *gorm.DB
}

func NewPurchaseRepo(db *gorm.DB) PurchaseRepository {
	return &purchaseRepo{db}
}

func (r *purchaseRepo) Create(ctx context.Context, purchase *model.Purchase) error {
	return r.db.WithContext(ctx).Omit("Product").Create(purchase).Error
}

func (r *purchaseRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Purchase, error) {
	var p model.Purchase
	err := r.db.WithContext(ctx).Preload("Product").First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *purchaseRepo) List(ctx context.Context, page Page) ([]model.Purchase, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Purchase{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page = page.Normalize()
	var purchases []model.Purchase
	err := r.db.WithContext(ctx).
		Preload("Product").
		Order("purchase_date DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&purchases).Error
	if err != nil {
		return nil, 0, err
	}
	return purchases, total, nil
}

func (r *purchaseRepo) Stats(ctx context.Context, dayStart time.Time) (*LedgerStats, error) {
	return ledgerStats(ctx, r.db, "purchases", "purchase_price", "purchase_date", dayStart)
}

// ledgerStats is shared by the purchase and sale ledgers; table and
// column names are constants from this package, never user input.
func ledgerStats(ctx context.Context, db *gorm.DB, table, priceCol, dateCol string, dayStart time.Time) (*LedgerStats, error) {
	var row struct {
		Count       int64
		TotalAmount decimal.Decimal
		TodayCount  int64
	}
	err := db.WithContext(ctx).Table(table).
		Select(
			"COUNT(*) AS count, "+
				"COALESCE(SUM(quantity * "+priceCol+"), 0) AS total_amount, "+
				"COUNT(*) FILTER (WHERE "+dateCol+" >= ?) AS today_count",
			dayStart,
		).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &LedgerStats{Count: row.Count, TotalAmount: row.TotalAmount, TodayCount: row.TodayCount}, nil
}
