package service

import (
	"context"
	"fmt"

	"go-remedyflow/internal/model"
	"go-remedyflow/internal/repository"

	"github.com/google/uuid"
)

// StockService derives stock from the purchase and sale ledgers.
type StockService interface {
	StockOf(ctx context.Context, productID uuid.UUID) (int, error)
	StockOfAll(ctx context.Context, activeOnly bool, lowStockThreshold int) ([]model.StockInfo, error)
	StockFor(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]int, error)
	HasSufficientStock(ctx context.Context, productID uuid.UUID, quantity int) (bool, error)
}

type stockService struct {
	repo *repository.Repository
}

func NewStockService(repo *repository.Repository) StockService {
	return &stockService{repo: repo}
}

func (s *stockService) StockOf(ctx context.Context, productID uuid.UUID) (int, error) {
	return stockOf(ctx, s.repo, productID)
}

func (s *stockService) StockOfAll(ctx context.Context, activeOnly bool, lowStockThreshold int) ([]model.StockInfo, error) {
	rows, err := s.repo.Stock.AllTotals(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("stock totals: %w", err)
	}
	out := make([]model.StockInfo, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.NewStockInfo(r.ProductID, r.ProductName, r.Purchased, r.Sold, lowStockThreshold))
	}
	return out, nil
}

func (s *stockService) StockFor(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	totals, err := s.repo.Stock.TotalsFor(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("stock totals: %w", err)
	}
	out := make(map[uuid.UUID]int, len(totals))
	for id, t := range totals {
		out[id] = t.Purchased - t.Sold
	}
	return out, nil
}

func (s *stockService) HasSufficientStock(ctx context.Context, productID uuid.UUID, quantity int) (bool, error) {
	stock, err := s.StockOf(ctx, productID)
	if err != nil {
		return false, err
	}
	return stock >= quantity, nil
}

func stockOf(ctx context.Context, repo *repository.Repository, productID uuid.UUID) (int, error) {
	purchased, sold, err := repo.Stock.Totals(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("stock totals: %w", err)
	}
	return purchased - sold, nil
}

// checkStockLocked is the sufficiency check for stock-decreasing writes.
// tx must be a transaction that already holds the product row lock, so
// competing writers for the same product wait until this one commits.
func checkStockLocked(ctx context.Context, tx *repository.Repository, product *model.Product, quantity int) error {
	stock, err := stockOf(ctx, tx, product.ID)
	if err != nil {
		return err
	}
	if stock < quantity {
		return &InsufficientStockError{ProductName: product.Name, Available: stock, Requested: quantity}
	}
	return nil
}
