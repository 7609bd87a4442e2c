package repository

import (
	"context"
	"errors"

	"go-remedyflow/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderFilter struct {
	Status    *model.OrderStatus
	Email     string
	ProductID *uuid.UUID
	Page      Page
}

type OrderStats struct {
	Total     int64           `json:"total"`
	Pending   int64           `json:"pending"`
	Confirmed int64           `json:"confirmed"`
	Shipped   int64           `json:"shipped"`
	Delivered int64           `json:"delivered"`
	Cancelled int64           `json:"cancelled"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	// FindByID preloads the product and the linked sale, if any.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	// LockByID reads the bare row with SELECT ... FOR UPDATE.
	LockByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus, updatedBy string) error
	List(ctx context.Context, f OrderFilter) ([]model.Order, int64, error)
	Recent(ctx context.Context, limit int) ([]model.Order, error)
	Stats(ctx context.Context) (*OrderStats, error)
}

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) OrderRepository {
	return &orderRepo{db}
}

func (r *orderRepo) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Omit("Product", "Sale").Create(order).Error
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Preload("Product").Preload("Sale").First(&o, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) LockByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Clauses(forUpdate).First(&o, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus, updatedBy string) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_by": updatedBy,
		}).Error
}

func (r *orderRepo) List(ctx context.Context, f OrderFilter) ([]model.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Order{})
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.Email != "" {
		q = q.Where("email ILIKE ?", "%"+f.Email+"%")
	}
	if f.ProductID != nil {
		q = q.Where("product_id = ?", *f.ProductID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := f.Page.Normalize()
	var orders []model.Order
	err := q.Preload("Product").Preload("Sale").
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *orderRepo) Recent(ctx context.Context, limit int) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).Preload("Product").
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

type statusBucket struct {
	Status model.OrderStatus
	Count  int64
	Amount decimal.Decimal
}

func (r *orderRepo) Stats(ctx context.Context) (*OrderStats, error) {
	var rows []statusBucket
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS amount").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := &OrderStats{Revenue: decimal.Zero}
	for _, row := range rows {
		stats.Total += row.Count
		switch row.Status {
		case model.OrderStatusPending:
			stats.Pending = row.Count
		case model.OrderStatusConfirmed:
			stats.Confirmed = row.Count
		case model.OrderStatusShipped:
			stats.Shipped = row.Count
		case model.OrderStatusDelivered:
			stats.Delivered = row.Count
		case model.OrderStatusCancelled:
			stats.Cancelled = row.Count
		}
		if row.Status.BooksRevenue() {
			stats.Revenue = stats.Revenue.Add(row.Amount)
		}
	}
	return stats, nil
}
