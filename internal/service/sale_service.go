package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-remedyflow/internal/model"
	"go-remedyflow/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CreateSaleInput struct {
	ProductID uuid.UUID       `json:"productId" validate:"uuid_required"`
	Quantity  int             `json:"quantity" validate:"required,gt=0,lte=1000000"`
	SalePrice decimal.Decimal `json:"salePrice" validate:"gt=0"`
	Notes     *string         `json:"notes" validate:"omitempty,max=1000"`
	SaleDate  *time.Time      `json:"saleDate"`
	CreatedBy string          `json:"-"`
}

// SaleService appends walk-in sales to the stock-out ledger. Order-linked
// sales are only ever written by OrderService while confirming.
type SaleService interface {
	RecordManualSale(ctx context.Context, in CreateSaleInput) (*model.Sale, error)
	GetSale(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	ListSales(ctx context.Context, page repository.Page) ([]model.Sale, repository.Pagination, error)
	SalesStats(ctx context.Context) (*repository.LedgerStats, error)
}

type saleService struct {
	repo *repository.Repository
	hub  Broadcaster
	log  *zap.Logger
	now  func() time.Time
}

func NewSaleService(repo *repository.Repository, hub Broadcaster, log *zap.Logger) SaleService {
	return &saleService{
		repo: repo,
		hub:  broadcasterOrNop(hub),
		log:  log,
		now:  time.Now,
	}
}

func (s *saleService) RecordManualSale(ctx context.Context, in CreateSaleInput) (*model.Sale, error) {
	if err := validate(&in); err != nil {
		return nil, err
	}

	var (
		sale    *model.Sale
		product *model.Product
	)
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		var err error
		product, err = tx.Products.LockByID(ctx, in.ProductID)
		if err != nil {
			return fmt.Errorf("lock product: %w", err)
		}
		if product == nil {
			return ErrProductNotFound
		}

		if err := checkStockLocked(ctx, tx, product, in.Quantity); err != nil {
			return err
		}

		date := s.now()
		if in.SaleDate != nil {
			date = *in.SaleDate
		}
		sale = &model.Sale{
			ProductID: product.ID,
			Quantity:  in.Quantity,
			SalePrice: in.SalePrice,
			Notes:     in.Notes,
			SaleDate:  date,
		}
		sale.CreatedBy = in.CreatedBy
		sale.UpdatedBy = in.CreatedBy
		if err := tx.Sales.Create(ctx, sale); err != nil {
			return fmt.Errorf("create sale: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sale.Product = product

	s.log.Info("manual sale recorded",
		zap.String("product_id", product.ID.String()),
		zap.Int("quantity", sale.Quantity),
	)
	if stock, err := stockOf(ctx, s.repo, product.ID); err == nil {
		s.hub.Publish("stock_update", map[string]any{
			"action":       "sale_recorded",
			"productId":    product.ID,
			"productName":  product.Name,
			"quantity":     sale.Quantity,
			"currentStock": stock,
		})
	}
	return sale, nil
}

// recordSaleForOrder books the sale for a confirming order. It must run
// inside the transaction that moves the order to CONFIRMED.
func recordSaleForOrder(ctx context.Context, tx *repository.Repository, order *model.Order, at time.Time, by string) (*model.Sale, error) {
	n, err := tx.Sales.CountByOrderID(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("count order sales: %w", err)
	}
	if n > 0 {
		return nil, ErrDuplicateSale
	}

	orderID := order.ID
	notes := "Sale from order " + order.OrderNumber
	sale := &model.Sale{
		ProductID: order.ProductID,
		Quantity:  order.Quantity,
		SalePrice: order.UnitPrice(),
		OrderID:   &orderID,
		Notes:     &notes,
		SaleDate:  at,
	}
	sale.CreatedBy = by
	sale.UpdatedBy = by
	if err := tx.Sales.Create(ctx, sale); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateSale
		}
		return nil, fmt.Errorf("create order sale: %w", err)
	}
	return sale, nil
}

func (s *saleService) GetSale(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	sale, err := s.repo.Sales.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find sale: %w", err)
	}
	if sale == nil {
		return nil, ErrSaleNotFound
	}
	return sale, nil
}

func (s *saleService) ListSales(ctx context.Context, page repository.Page) ([]model.Sale, repository.Pagination, error) {
	items, total, err := s.repo.Sales.List(ctx, page)
	if err != nil {
		return nil, repository.Pagination{}, fmt.Errorf("list sales: %w", err)
	}
	return items, repository.NewPagination(page, total), nil
}

func (s *saleService) SalesStats(ctx context.Context) (*repository.LedgerStats, error) {
	stats, err := s.repo.Sales.Stats(ctx, startOfDay(s.now()))
	if err != nil {
		return nil, fmt.Errorf("sale stats: %w", err)
	}
	return stats, nil
}
