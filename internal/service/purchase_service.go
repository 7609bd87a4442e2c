package service

import (
	"context"
	"fmt"
	"time"

	"go-remedyflow/internal/model"
	"go-remedyflow/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CreatePurchaseInput struct {
	ProductID     uuid.UUID       `json:"productId" validate:"uuid_required"`
	Quantity      int             `json:"quantity" validate:"required,gt=0,lte=1000000"`
	PurchasePrice decimal.Decimal `json:"purchasePrice" validate:"gt=0"`
	Supplier      *string         `json:"supplier" validate:"omitempty,max=200"`
	Notes         *string         `json:"notes" validate:"omitempty,max=1000"`
	PurchaseDate  *time.Time      `json:"purchaseDate"`
	CreatedBy     string          `json:"-"`
}

// PurchaseService appends to the stock-in ledger. There is no update or delete.
type PurchaseService interface {
	RecordPurchase(ctx context.Context, in CreatePurchaseInput) (*model.Purchase, error)
	GetPurchase(ctx context.Context, id uuid.UUID) (*model.Purchase, error)
	ListPurchases(ctx context.Context, page repository.Page) ([]model.Purchase, repository.Pagination, error)
	PurchaseStats(ctx context.Context) (*repository.LedgerStats, error)
}

type purchaseService struct {
	repo *repository.Repository
	hub  Broadcaster
	log  *zap.Logger
	now  func() time.Time
}

func NewPurchaseService(repo *repository.Repository, hub Broadcaster, log *zap.Logger) PurchaseService {
	return &purchaseService{
		repo: repo,
		hub:  broadcasterOrNop(hub),
		log:  log,
		now:  time.Now,
	}
}

func (s *purchaseService) RecordPurchase(ctx context.Context, in CreatePurchaseInput) (*model.Purchase, error) {
	if err := validate(&in); err != nil {
		return nil, err
	}

	product, err := s.repo.Products.FindByID(ctx, in.ProductID)
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	date := s.now()
	if in.PurchaseDate != nil {
		date = *in.PurchaseDate
	}
	purchase := &model.Purchase{
		ProductID:     product.ID,
		Quantity:      in.Quantity,
		PurchasePrice: in.PurchasePrice,
		Supplier:      in.Supplier,
		Notes:         in.Notes,
		PurchaseDate:  date,
	}
	purchase.CreatedBy = in.CreatedBy
	purchase.UpdatedBy = in.CreatedBy

	if err := s.repo.Purchases.Create(ctx, purchase); err != nil {
		return nil, fmt.Errorf("create purchase: %w", err)
	}
	purchase.Product = product

	s.log.Info("purchase recorded",
		zap.String("product_id", product.ID.String()),
		zap.Int("quantity", purchase.Quantity),
	)
	s.publishStock(ctx, "purchase_recorded", product, purchase.Quantity)
	return purchase, nil
}

func (s *purchaseService) publishStock(ctx context.Context, action string, product *model.Product, qty int) {
	stock, err := stockOf(ctx, s.repo, product.ID)
	if err != nil {
		s.log.Warn("stock lookup for broadcast failed", zap.Error(err))
		return
	}
	s.hub.Publish("stock_update", map[string]any{
		"action":       action,
		"productId":    product.ID,
		"productName":  product.Name,
		"quantity":     qty,
		"currentStock": stock,
	})
}

func (s *purchaseService) GetPurchase(ctx context.Context, id uuid.UUID) (*model.Purchase, error) {
	p, err := s.repo.Purchases.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find purchase: %w", err)
	}
	if p == nil {
		return nil, ErrPurchaseNotFound
	}
	return p, nil
}

func (s *purchaseService) ListPurchases(ctx context.Context, page repository.Page) ([]model.Purchase, repository.Pagination, error) {
	items, total, err := s.repo.Purchases.List(ctx, page)
	if err != nil {
		return nil, repository.Pagination{}, fmt.Errorf("list purchases: %w", err)
	}
	return items, repository.NewPagination(page, total), nil
}

func (s *purchaseService) PurchaseStats(ctx context.Context) (*repository.LedgerStats, error) {
	stats, err := s.repo.Purchases.Stats(ctx, startOfDay(s.now()))
	if err != nil {
		return nil, fmt.Errorf("purchase stats: %w", err)
	}
	return stats, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
