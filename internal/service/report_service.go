package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"go-remedyflow/internal/model"
	"go-remedyflow/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type StockReportType string

const (
	StockReportAll        StockReportType = "all"
	StockReportLowStock   StockReportType = "low-stock"
	StockReportOutOfStock StockReportType = "out-of-stock"
)

// ParseStockReportType falls back to "all" for unknown values.
func ParseStockReportType(s string) StockReportType {
	switch StockReportType(s) {
	case StockReportLowStock, StockReportOutOfStock:
		return StockReportType(s)
	default:
		return StockReportAll
	}
}

// ReportDefaults are used when a caller passes a non-positive threshold or window.
type ReportDefaults struct {
	LowStockThreshold int
	ExpiryWindowDays  int
}

type DashboardStats struct {
	Orders          *repository.OrderStats  `json:"orders"`
	Purchases       *repository.LedgerStats `json:"purchases"`
	Sales           *repository.LedgerStats `json:"sales"`
	ActiveProducts  int64                   `json:"activeProducts"`
	LowStockCount   int                     `json:"lowStockCount"`
	OutOfStockCount int                     `json:"outOfStockCount"`
	RecentOrders    []model.Order           `json:"recentOrders"`
}

type ReportService interface {
	StockReport(ctx context.Context, kind StockReportType, threshold int) ([]model.StockInfo, error)
	LowStockAlerts(ctx context.Context, threshold int) ([]model.StockInfo, error)
	OutOfStockProducts(ctx context.Context) ([]model.StockInfo, error)
	AllStock(ctx context.Context, threshold int) ([]model.StockInfo, error)
	ExpiryAlerts(ctx context.Context, windowDays int) ([]model.ExpiryAlert, error)
	DashboardStats(ctx context.Context) (*DashboardStats, error)
	ExportStockXLSX(ctx context.Context, w io.Writer, threshold int) error
	Defaults() ReportDefaults
}

type reportService struct {
	repo     *repository.Repository
	stock    StockService
	defaults ReportDefaults
	log      *zap.Logger
	now      func() time.Time
}

func NewReportService(repo *repository.Repository, stock StockService, defaults ReportDefaults, log *zap.Logger) ReportService {
	if defaults.LowStockThreshold <= 0 {
		defaults.LowStockThreshold = model.DefaultLowStockThreshold
	}
	if defaults.ExpiryWindowDays <= 0 {
		defaults.ExpiryWindowDays = model.DefaultExpiryWindowDays
	}
	return &reportService{
		repo:     repo,
		stock:    stock,
		defaults: defaults,
		log:      log,
		now:      time.Now,
	}
}

func (s *reportService) Defaults() ReportDefaults { return s.defaults }

func (s *reportService) threshold(n int) int {
	if n <= 0 {
		return s.defaults.LowStockThreshold
	}
	return n
}

func (s *reportService) StockReport(ctx context.Context, kind StockReportType, threshold int) ([]model.StockInfo, error) {
	switch kind {
	case StockReportLowStock:
		return s.LowStockAlerts(ctx, threshold)
	case StockReportOutOfStock:
		return s.OutOfStockProducts(ctx)
	default:
		return s.AllStock(ctx, threshold)
	}
}

func (s *reportService) AllStock(ctx context.Context, threshold int) ([]model.StockInfo, error) {
	return s.stock.StockOfAll(ctx, true, s.threshold(threshold))
}

func (s *reportService) LowStockAlerts(ctx context.Context, threshold int) ([]model.StockInfo, error) {
	all, err := s.AllStock(ctx, threshold)
	if err != nil {
		return nil, err
	}
	return filterStock(all, func(i model.StockInfo) bool { return i.IsLowStock }), nil
}

func (s *reportService) OutOfStockProducts(ctx context.Context) ([]model.StockInfo, error) {
	all, err := s.AllStock(ctx, 0)
	if err != nil {
		return nil, err
	}
	return filterStock(all, func(i model.StockInfo) bool { return i.IsOutOfStock }), nil
}

func filterStock(in []model.StockInfo, keep func(model.StockInfo) bool) []model.StockInfo {
	out := make([]model.StockInfo, 0, len(in))
	for _, i := range in {
		if keep(i) {
			out = append(out, i)
		}
	}
	return out
}

func (s *reportService) ExpiryAlerts(ctx context.Context, windowDays int) ([]model.ExpiryAlert, error) {
	if windowDays <= 0 {
		windowDays = s.defaults.ExpiryWindowDays
	}
	now := s.now()
	products, err := s.repo.Products.ListExpiringBetween(ctx, now, now.AddDate(0, 0, windowDays))
	if err != nil {
		return nil, fmt.Errorf("expiring products: %w", err)
	}

	ids := make([]uuid.UUID, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	stock, err := s.stock.StockFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	return buildExpiryAlerts(products, stock, now, windowDays), nil
}

// buildExpiryAlerts keeps active products expiring within [now, now+windowDays].
func buildExpiryAlerts(products []model.Product, stock map[uuid.UUID]int, now time.Time, windowDays int) []model.ExpiryAlert {
	limit := now.AddDate(0, 0, windowDays)
	alerts := make([]model.ExpiryAlert, 0, len(products))
	for _, p := range products {
		if !p.IsActive || p.ExpiryDate == nil {
			continue
		}
		exp := *p.ExpiryDate
		if exp.Before(now) || exp.After(limit) {
			continue
		}
		days := model.DaysUntil(exp, now)
		alerts = append(alerts, model.ExpiryAlert{
			ProductID:       p.ID,
			ProductName:     p.Name,
			BatchNumber:     p.BatchNumber,
			ExpiryDate:      exp,
			DaysUntilExpiry: days,
			CurrentStock:    stock[p.ID],
			Severity:        model.SeverityFor(days),
		})
	}
	return alerts
}

func (s *reportService) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	orders, err := s.repo.Orders.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("order stats: %w", err)
	}
	dayStart := startOfDay(s.now())
	purchases, err := s.repo.Purchases.Stats(ctx, dayStart)
	if err != nil {
		return nil, fmt.Errorf("purchase stats: %w", err)
	}
	sales, err := s.repo.Sales.Stats(ctx, dayStart)
	if err != nil {
		return nil, fmt.Errorf("sale stats: %w", err)
	}
	active, err := s.repo.Products.CountActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	recent, err := s.repo.Orders.Recent(ctx, 5)
	if err != nil {
		return nil, fmt.Errorf("recent orders: %w", err)
	}
	stock, err := s.AllStock(ctx, 0)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		Orders:         orders,
		Purchases:      purchases,
		Sales:          sales,
		ActiveProducts: active,
		RecentOrders:   recent,
	}
	for _, i := range stock {
		if i.IsLowStock {
			stats.LowStockCount++
		}
		if i.IsOutOfStock {
			stats.OutOfStockCount++
		}
	}
	return stats, nil
}
