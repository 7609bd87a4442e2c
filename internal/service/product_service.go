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

type CreateProductInput struct {
	Name          string          `json:"name" validate:"required,min=2,max=200"`
	Description   string          `json:"description" validate:"max=5000"`
	CategoryID    uuid.UUID       `json:"categoryId" validate:"uuid_required"`
	Potency       string          `json:"potency" validate:"max=50"`
	Form          string          `json:"form" validate:"max=50"`
	Manufacturer  string          `json:"manufacturer" validate:"max=200"`
	BatchNumber   *string         `json:"batchNumber" validate:"omitempty,max=100"`
	ExpiryDate    *time.Time      `json:"expiryDate"`
	Image         string          `json:"image" validate:"max=500"`
	SellingPrice  decimal.Decimal `json:"sellingPrice" validate:"gt=0"`
	PurchasePrice decimal.Decimal `json:"purchasePrice" validate:"gt=0"`
	IsHot         bool            `json:"isHot"`
	IsBestSeller  bool            `json:"isBestSeller"`
	IsActive      *bool           `json:"isActive"`
	By            string          `json:"-"`
}

// UpdateProductInput changes only the fields that are set.
type UpdateProductInput struct {
	Name          *string          `json:"name" validate:"omitempty,min=2,max=200"`
	Description   *string          `json:"description" validate:"omitempty,max=5000"`
	CategoryID    *uuid.UUID       `json:"categoryId"`
	Potency       *string          `json:"potency" validate:"omitempty,max=50"`
	Form          *string          `json:"form" validate:"omitempty,max=50"`
	Manufacturer  *string          `json:"manufacturer" validate:"omitempty,max=200"`
	BatchNumber   *string          `json:"batchNumber" validate:"omitempty,max=100"`
	ExpiryDate    *time.Time       `json:"expiryDate"`
	Image         *string          `json:"image" validate:"omitempty,max=500"`
	SellingPrice  *decimal.Decimal `json:"sellingPrice" validate:"omitempty,gt=0"`
	PurchasePrice *decimal.Decimal `json:"purchasePrice" validate:"omitempty,gt=0"`
	IsHot         *bool            `json:"isHot"`
	IsBestSeller  *bool            `json:"isBestSeller"`
	IsActive      *bool            `json:"isActive"`
	By            string           `json:"-"`
}

type ProductListInput struct {
	CategoryID *uuid.UUID
	Search     string
	IsActive   *bool
	Page       repository.Page
}

type ProductService interface {
	ListPublic(ctx context.Context, in ProductListInput) ([]model.PublicProduct, repository.Pagination, error)
	GetPublic(ctx context.Context, id uuid.UUID) (*model.PublicProduct, error)
	ListAdmin(ctx context.Context, in ProductListInput) ([]model.AdminProduct, repository.Pagination, error)
	GetAdmin(ctx context.Context, id uuid.UUID) (*model.AdminProduct, error)
	Create(ctx context.Context, in CreateProductInput) (*model.Product, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateProductInput) (*model.Product, error)
	// Deactivate is the soft delete; ledger rows keep referencing the product.
	Deactivate(ctx context.Context, id uuid.UUID, by string) error
}

type productService struct {
	repo  *repository.Repository
	stock StockService
	hub   Broadcaster
	log   *zap.Logger
}

func NewProductService(repo *repository.Repository, stock StockService, hub Broadcaster, log *zap.Logger) ProductService {
	return &productService{repo: repo, stock: stock, hub: broadcasterOrNop(hub), log: log}
}

func (s *productService) ListPublic(ctx context.Context, in ProductListInput) ([]model.PublicProduct, repository.Pagination, error) {
	active := true
	in.IsActive = &active
	products, pag, stock, err := s.list(ctx, in)
	if err != nil {
		return nil, pag, err
	}
	out := make([]model.PublicProduct, 0, len(products))
	for i := range products {
		out = append(out, products[i].ToPublic(stock[products[i].ID]))
	}
	return out, pag, nil
}

func (s *productService) GetPublic(ctx context.Context, id uuid.UUID) (*model.PublicProduct, error) {
	p, err := s.repo.Products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	if p == nil || !p.IsActive {
		return nil, ErrProductNotFound
	}
	stock, err := s.stock.StockOf(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	pub := p.ToPublic(stock)
	return &pub, nil
}

func (s *productService) ListAdmin(ctx context.Context, in ProductListInput) ([]model.AdminProduct, repository.Pagination, error) {
	products, pag, stock, err := s.list(ctx, in)
	if err != nil {
		return nil, pag, err
	}
	out := make([]model.AdminProduct, 0, len(products))
	for _, p := range products {
		out = append(out, model.AdminProduct{Product: p, CurrentStock: stock[p.ID]})
	}
	return out, pag, nil
}

func (s *productService) list(ctx context.Context, in ProductListInput) ([]model.Product, repository.Pagination, map[uuid.UUID]int, error) {
	products, total, err := s.repo.Products.List(ctx, repository.ProductFilter{
		CategoryID: in.CategoryID,
		Search:     in.Search,
		IsActive:   in.IsActive,
		Page:       in.Page,
	})
	if err != nil {
		return nil, repository.Pagination{}, nil, fmt.Errorf("list products: %w", err)
	}
	ids := make([]uuid.UUID, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	stock, err := s.stock.StockFor(ctx, ids)
	if err != nil {
		return nil, repository.Pagination{}, nil, err
	}
	return products, repository.NewPagination(in.Page, total), stock, nil
}

func (s *productService) GetAdmin(ctx context.Context, id uuid.UUID) (*model.AdminProduct, error) {
	p, err := s.repo.Products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	stock, err := s.stock.StockOf(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return &model.AdminProduct{Product: *p, CurrentStock: stock}, nil
}

func (s *productService) requireCategory(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	c, err := s.repo.Categories.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	if c == nil {
		return nil, ErrCategoryNotFound
	}
	return c, nil
}

func (s *productService) Create(ctx context.Context, in CreateProductInput) (*model.Product, error) {
	if err := validate(&in); err != nil {
		return nil, err
	}
	category, err := s.requireCategory(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}

	p := &model.Product{
		Name:          in.Name,
		Description:   in.Description,
		CategoryID:    category.ID,
		Potency:       in.Potency,
		Form:          in.Form,
		Manufacturer:  in.Manufacturer,
		BatchNumber:   in.BatchNumber,
		ExpiryDate:    in.ExpiryDate,
		Image:         in.Image,
		SellingPrice:  in.SellingPrice,
		PurchasePrice: in.PurchasePrice,
		IsHot:         in.IsHot,
		IsBestSeller:  in.IsBestSeller,
		IsActive:      true,
	}
	p.CreatedBy = in.By
	p.UpdatedBy = in.By
	if err := s.repo.Products.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	// default:true swallows a false on insert
	if in.IsActive != nil && !*in.IsActive {
		p.IsActive = false
		if err := s.repo.Products.Update(ctx, p); err != nil {
			return nil, fmt.Errorf("deactivate product: %w", err)
		}
	}
	p.Category = category

	s.hub.Publish("product_update", map[string]any{"action": "product_created", "productId": p.ID, "name": p.Name})
	return p, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, in UpdateProductInput) (*model.Product, error) {
	if err := validate(&in); err != nil {
		return nil, err
	}
	p, err := s.repo.Products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	if p == nil {
		return nil, ErrProductNotFound
	}

	if in.CategoryID != nil && *in.CategoryID != p.CategoryID {
		category, err := s.requireCategory(ctx, *in.CategoryID)
		if err != nil {
			return nil, err
		}
		p.CategoryID = category.ID
		p.Category = category
	}
	setIf(&p.Name, in.Name)
	setIf(&p.Description, in.Description)
	setIf(&p.Potency, in.Potency)
	setIf(&p.Form, in.Form)
	setIf(&p.Manufacturer, in.Manufacturer)
	setIf(&p.Image, in.Image)
	setIf(&p.SellingPrice, in.SellingPrice)
	setIf(&p.PurchasePrice, in.PurchasePrice)
	setIf(&p.IsHot, in.IsHot)
	setIf(&p.IsBestSeller, in.IsBestSeller)
	setIf(&p.IsActive, in.IsActive)
	if in.BatchNumber != nil {
		p.BatchNumber = in.BatchNumber
	}
	if in.ExpiryDate != nil {
		p.ExpiryDate = in.ExpiryDate
	}
	p.UpdatedBy = in.By

	if err := s.repo.Products.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	s.hub.Publish("product_update", map[string]any{"action": "product_updated", "productId": p.ID, "name": p.Name})
	return p, nil
}

func (s *productService) Deactivate(ctx context.Context, id uuid.UUID, by string) error {
	p, err := s.repo.Products.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find product: %w", err)
	}
	if p == nil {
		return ErrProductNotFound
	}
	p.IsActive = false
	p.UpdatedBy = by
	if err := s.repo.Products.Update(ctx, p); err != nil {
		return fmt.Errorf("deactivate product: %w", err)
	}
	s.log.Info("product deactivated", zap.String("product_id", id.String()))
	s.hub.Publish("product_update", map[string]any{"action": "product_deactivated", "productId": p.ID, "name": p.Name})
	return nil
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
