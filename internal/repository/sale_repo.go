package repository

import (
	"context"
	"errors"
	"time"

	"go-remedyflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SaleRepository interface {
	Create(ctx context.Context, sale *model.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	CountByOrderID(ctx context.Context, orderID uuid.UUID) (int64, error)
	List(ctx context.Context, page Page) ([]model.Sale, int64, error)
	Stats(ctx context.Context, dayStart time.Time) (*LedgerStats, error)
}

type saleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) SaleRepository {
	return &saleRepo{db}
}

func (r *saleRepo) Create(ctx context.Context, sale *model.Sale) error {
	return r.db.WithContext(ctx).Omit("Product").Create(sale).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).Preload("Product").First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *saleRepo) CountByOrderID(ctx context.Context, orderID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Sale{}).Where("order_id = ?", orderID).Count(&n).Error
	return n, err
}

func (r *saleRepo) List(ctx context.Context, page Page) ([]model.Sale, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Sale{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page = page.Normalize()
	var sales []model.Sale
	err := r.db.WithContext(ctx).
		Preload("Product").
		Order("sale_date DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&sales).Error
	if err != nil {
		return nil, 0, err
	}
	return sales, total, nil
}

func (r *saleRepo) Stats(ctx context.Context, dayStart time.Time) (*LedgerStats, error) {
	return ledgerStats(ctx, r.db, "sales", "sale_price", "sale_date", dayStart)
}
