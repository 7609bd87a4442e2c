package handler

import (
	"context"
	"errors"
	"io"

	"go-remedyflow/internal/model"
	"go-remedyflow/internal/repository"
	"go-remedyflow/internal/service"
	"go-remedyflow/pkg/jwt"

	"github.com/google/uuid"
)

var errNotMocked = errors.New("not mocked")

type MockOrderService struct {
	CreateOrderFunc  func(ctx context.Context, in service.CreateOrderInput) (*model.Order, error)
	UpdateStatusFunc func(ctx context.Context, id uuid.UUID, status model.OrderStatus, by string) (*model.Order, error)
	GetOrderFunc     func(ctx context.Context, id uuid.UUID) (*model.Order, error)
	ListOrdersFunc   func(ctx context.Context, in service.OrderListInput) ([]model.Order, repository.Pagination, error)
	OrderStatsFunc   func(ctx context.Context) (*repository.OrderStats, error)
}

func (m *MockOrderService) CreateOrder(ctx context.Context, in service.CreateOrderInput) (*model.Order, error) {
	if m.CreateOrderFunc != nil {
		return m.CreateOrderFunc(ctx, in)
	}
	return nil, errNotMocked
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus, by string) (*model.Order, error) {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status, by)
	}
	return nil, errNotMocked
}

func (m *MockOrderService) GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	if m.GetOrderFunc != nil {
		return m.GetOrderFunc(ctx, id)
	}
	return nil, errNotMocked
}

func (m *MockOrderService) ListOrders(ctx context.Context, in service.OrderListInput) ([]model.Order, repository.Pagination, error) {
	if m.ListOrdersFunc != nil {
		return m.ListOrdersFunc(ctx, in)
	}
	return nil, repository.Pagination{}, errNotMocked
}

func (m *MockOrderService) OrderStats(ctx context.Context) (*repository.OrderStats, error) {
	if m.OrderStatsFunc != nil {
		return m.OrderStatsFunc(ctx)
	}
	return nil, errNotMocked
}

type MockReportService struct {
	StockReportFunc    func(ctx context.Context, kind service.StockReportType, threshold int) ([]model.StockInfo, error)
	ExpiryAlertsFunc   func(ctx context.Context, windowDays int) ([]model.ExpiryAlert, error)
	DashboardStatsFunc func(ctx context.Context) (*service.DashboardStats, error)
	ExportFunc         func(ctx context.Context, w io.Writer, threshold int) error
	DefaultsValue      service.ReportDefaults
}

func (m *MockReportService) StockReport(ctx context.Context, kind service.StockReportType, threshold int) ([]model.StockInfo, error) {
	if m.StockReportFunc != nil {
		return m.StockReportFunc(ctx, kind, threshold)
	}
	return nil, errNotMocked
}

func (m *MockReportService) LowStockAlerts(ctx context.Context, threshold int) ([]model.StockInfo, error) {
	return m.StockReport(ctx, service.StockReportLowStock, threshold)
}

func (m *MockReportService) OutOfStockProducts(ctx context.Context) ([]model.StockInfo, error) {
	return m.StockReport(ctx, service.StockReportOutOfStock, 0)
}

func (m *MockReportService) AllStock(ctx context.Context, threshold int) ([]model.StockInfo, error) {
	return m.StockReport(ctx, service.StockReportAll, threshold)
}

func (m *MockReportService) ExpiryAlerts(ctx context.Context, windowDays int) ([]model.ExpiryAlert, error) {
	if m.ExpiryAlertsFunc != nil {
		return m.ExpiryAlertsFunc(ctx, windowDays)
	}
	return nil, errNotMocked
}

func (m *MockReportService) DashboardStats(ctx context.Context) (*service.DashboardStats, error) {
	if m.DashboardStatsFunc != nil {
		return m.DashboardStatsFunc(ctx)
	}
	return nil, errNotMocked
}

func (m *MockReportService) ExportStockXLSX(ctx context.Context, w io.Writer, threshold int) error {
	if m.ExportFunc != nil {
		return m.ExportFunc(ctx, w, threshold)
	}
	return errNotMocked
}

func (m *MockReportService) Defaults() service.ReportDefaults { return m.DefaultsValue }

type MockAuthService struct {
	LoginFunc        func(ctx context.Context, email, password string) (*service.LoginResponse, error)
	AuthenticateFunc func(ctx context.Context, token string) (*jwt.Claims, error)
	MeFunc           func(ctx context.Context, id uuid.UUID) (*model.UserResponse, error)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*service.LoginResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return nil, errNotMocked
}

func (m *MockAuthService) Authenticate(ctx context.Context, token string) (*jwt.Claims, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, token)
	}
	return nil, service.ErrUnauthorized
}

func (m *MockAuthService) Me(ctx context.Context, id uuid.UUID) (*model.UserResponse, error) {
	if m.MeFunc != nil {
		return m.MeFunc(ctx, id)
	}
	return nil, errNotMocked
}

func (m *MockAuthService) EnsureAdmin(context.Context, string, string, string) (*model.User, error) {
	return nil, errNotMocked
}
