package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-remedyflow/internal/model"
	"go-remedyflow/internal/service"
	"go-remedyflow/pkg/jwt"
	"go-remedyflow/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const adminToken = "admin-token"

func newTestApp(orders *MockOrderService, reports *MockReportService, auth *MockAuthService) *fiber.App {
	log := zap.NewNop()
	if auth.AuthenticateFunc == nil {
		auth.AuthenticateFunc = func(_ context.Context, token string) (*jwt.Claims, error) {
			if token != adminToken {
				return nil, service.ErrUnauthorized
			}
			codes := make([]string, 0, len(model.DefaultPrivileges))
			for _, p := range model.DefaultPrivileges {
				codes = append(codes, p.Code)
			}
			return &jwt.Claims{UserID: uuid.New(), Email: "admin@example.com", Privileges: codes}, nil
		}
	}

	app := fiber.New()
	SetupRoutes(app, Handlers{
		Auth:      NewAuthHandler(auth, log),
		Order:     NewOrderHandler(orders, log),
		Purchase:  NewPurchaseHandler(nil, log),
		Sale:      NewSaleHandler(nil, log),
		Report:    NewReportHandler(reports, log),
		Dashboard: NewDashboardHandler(reports, log),
		Product:   NewProductHandler(nil, log),
		Category:  NewCategoryHandler(nil, log),
		Health:    NewHealthHandler(func(context.Context) error { return nil }, log),
	}, RouterDeps{Auth: auth, Log: log})
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path string, body any, token string) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func TestCreateOrder_Success(t *testing.T) {
	productID := uuid.New()
	orders := &MockOrderService{
		CreateOrderFunc: func(_ context.Context, in service.CreateOrderInput) (*model.Order, error) {
			assert.Equal(t, productID, in.ProductID)
			assert.Equal(t, 2, in.Quantity)
			return &model.Order{OrderNumber: "ORD-20260101-AAAAAA", Status: model.OrderStatusPending}, nil
		},
	}
	app := newTestApp(orders, &MockReportService{}, &MockAuthService{})

	resp, body := doRequest(t, app, http.MethodPost, "/api/orders", map[string]any{
		"customerName": "Jane Doe",
		"productId":    productID,
		"quantity":     2,
	}, "")

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "ORD-20260101-AAAAAA", data["orderNumber"])
}

func TestCreateOrder_HidesCostFields(t *testing.T) {
	batch := "B-42"
	product := &model.Product{
		Name:          "Amoxicillin 500mg",
		Image:         "amox.png",
		SellingPrice:  decimal.RequireFromString("12.50"),
		PurchasePrice: decimal.RequireFromString("7.10"),
		BatchNumber:   &batch,
		IsActive:      true,
	}
	product.ID = uuid.New()
	orders := &MockOrderService{
		CreateOrderFunc: func(context.Context, service.CreateOrderInput) (*model.Order, error) {
			return &model.Order{
				OrderNumber: "ORD-20260101-BBBBBB",
				ProductID:   product.ID,
				Product:     product,
				Quantity:    1,
				TotalAmount: product.SellingPrice,
				Status:      model.OrderStatusPending,
			}, nil
		},
	}
	app := newTestApp(orders, &MockReportService{}, &MockAuthService{})

	resp, body := doRequest(t, app, http.MethodPost, "/api/orders", map[string]any{
		"productId": product.ID,
		"quantity":  1,
	}, "")

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	data := body["data"].(map[string]any)
	got := data["product"].(map[string]any)
	assert.Equal(t, product.ID.String(), got["id"])
	assert.Equal(t, "Amoxicillin 500mg", got["name"])
	assert.Equal(t, "amox.png", got["image"])
	assert.Contains(t, got, "sellingPrice")
	for _, key := range []string{"purchasePrice", "batchNumber", "isActive", "categoryId"} {
		assert.NotContains(t, got, key)
	}
	assert.NotContains(t, data, "sale")
}

func TestCreateOrder_ValidationDetails(t *testing.T) {
	orders := &MockOrderService{
		CreateOrderFunc: func(context.Context, service.CreateOrderInput) (*model.Order, error) {
			return nil, &service.ValidationError{Fields: []*validator.ErrorResponse{{FailedField: "email", Tag: "email"}}}
		},
	}
	app := newTestApp(orders, &MockReportService{}, &MockAuthService{})

	resp, body := doRequest(t, app, http.MethodPost, "/api/orders", map[string]any{"email": "nope"}, "")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "validation_error", body["error"])
	details := body["details"].([]any)
	require.Len(t, details, 1)
	assert.Equal(t, "email", details[0].(map[string]any)["field"])
}

func TestCreateOrder_InvalidJSON(t *testing.T) {
	app := newTestApp(&MockOrderService{}, &MockReportService{}, &MockAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateStatus_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"already confirmed", fmt.Errorf("confirm: %w", service.ErrAlreadyConfirmed), http.StatusBadRequest, "already_confirmed"},
		{"insufficient stock", &service.InsufficientStockError{ProductName: "Aspirin", Available: 5, Requested: 10}, http.StatusBadRequest, "insufficient_stock"},
		{"not found", service.ErrOrderNotFound, http.StatusNotFound, "not_found"},
		{"bad status", &service.ValidationError{Reason: `invalid order status "LOST"`}, http.StatusBadRequest, "validation_error"},
		{"unexpected", fmt.Errorf("lock order: %w", io.ErrUnexpectedEOF), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := &MockOrderService{
				UpdateStatusFunc: func(context.Context, uuid.UUID, model.OrderStatus, string) (*model.Order, error) {
					return nil, tt.err
				},
			}
			app := newTestApp(orders, &MockReportService{}, &MockAuthService{})

			resp, body := doRequest(t, app, http.MethodPatch, "/api/admin/orders/"+uuid.NewString()+"/status",
				map[string]any{"status": "CONFIRMED"}, adminToken)

			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, body["error"])
			assert.Equal(t, false, body["success"])
		})
	}
}

func TestRespondError_CatalogConflicts(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"duplicate name", service.ErrNameConflict, "conflict"},
		{"wrapped duplicate name", fmt.Errorf("update category: %w", service.ErrNameConflict), "conflict"},
		{"category in use", fmt.Errorf("%w: category has 3 products", service.ErrReferentialBlock), "referenced"},
		{"bare referential block", service.ErrReferentialBlock, "referenced"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Delete("/thing", func(c *fiber.Ctx) error {
				return respondError(c, zap.NewNop(), tt.err)
			})

			resp, body := doRequest(t, app, http.MethodDelete, "/thing", nil, "")

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.code, body["error"])
			assert.Equal(t, false, body["success"])
		})
	}
}

func TestUpdateStatus_Success(t *testing.T) {
	orderID := uuid.New()
	orders := &MockOrderService{
		UpdateStatusFunc: func(_ context.Context, id uuid.UUID, status model.OrderStatus, by string) (*model.Order, error) {
			assert.Equal(t, orderID, id)
			assert.Equal(t, model.OrderStatusConfirmed, status)
			assert.NotEmpty(t, by)
			return &model.Order{Status: status}, nil
		},
	}
	app := newTestApp(orders, &MockReportService{}, &MockAuthService{})

	resp, body := doRequest(t, app, http.MethodPatch, "/api/admin/orders/"+orderID.String()+"/status",
		map[string]any{"status": "CONFIRMED"}, adminToken)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Order status updated to CONFIRMED", body["message"])
}

func TestUpdateStatus_InvalidID(t *testing.T) {
	app := newTestApp(&MockOrderService{}, &MockReportService{}, &MockAuthService{})

	resp, body := doRequest(t, app, http.MethodPatch, "/api/admin/orders/not-a-uuid/status",
		map[string]any{"status": "CONFIRMED"}, adminToken)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid order ID", body["message"])
}

func TestAdminRoutes_RequireToken(t *testing.T) {
	app := newTestApp(&MockOrderService{}, &MockReportService{}, &MockAuthService{})

	resp, body := doRequest(t, app, http.MethodGet, "/api/admin/orders", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, false, body["success"])

	resp, _ = doRequest(t, app, http.MethodGet, "/api/admin/orders", nil, "stolen")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminRoutes_RequirePrivilege(t *testing.T) {
	auth := &MockAuthService{
		AuthenticateFunc: func(context.Context, string) (*jwt.Claims, error) {
			return &jwt.Claims{UserID: uuid.New(), Privileges: []string{model.PrivOrderView}}, nil
		},
	}
	app := newTestApp(&MockOrderService{}, &MockReportService{}, auth)

	resp, _ := doRequest(t, app, http.MethodGet, "/api/admin/reports/stock", nil, "any")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestStockReport_DefaultsAndType(t *testing.T) {
	var gotKind service.StockReportType
	var gotThreshold int
	reports := &MockReportService{
		DefaultsValue: service.ReportDefaults{LowStockThreshold: 10, ExpiryWindowDays: 90},
		StockReportFunc: func(_ context.Context, kind service.StockReportType, threshold int) ([]model.StockInfo, error) {
			gotKind, gotThreshold = kind, threshold
			return []model.StockInfo{{ProductName: "Aspirin", CurrentStock: 3, IsLowStock: true}}, nil
		},
	}
	app := newTestApp(&MockOrderService{}, reports, &MockAuthService{})

	resp, body := doRequest(t, app, http.MethodGet, "/api/admin/reports/stock?type=low-stock", nil, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, service.StockReportLowStock, gotKind)
	assert.Equal(t, 10, gotThreshold)
	assert.Equal(t, "low-stock", body["reportType"])
	assert.EqualValues(t, 1, body["count"])

	_, body = doRequest(t, app, http.MethodGet, "/api/admin/reports/stock?type=bogus&threshold=25", nil, adminToken)
	assert.Equal(t, service.StockReportAll, gotKind)
	assert.Equal(t, 25, gotThreshold)
	assert.Equal(t, "all", body["reportType"])
}

func TestExpiryReport_Grouped(t *testing.T) {
	var gotDays int
	reports := &MockReportService{
		DefaultsValue: service.ReportDefaults{LowStockThreshold: 10, ExpiryWindowDays: 90},
		ExpiryAlertsFunc: func(_ context.Context, days int) ([]model.ExpiryAlert, error) {
			gotDays = days
			return []model.ExpiryAlert{
				{ProductName: "A", DaysUntilExpiry: 20, Severity: model.SeverityCritical},
				{ProductName: "B", DaysUntilExpiry: 45, Severity: model.SeverityWarning},
			}, nil
		},
	}
	app := newTestApp(&MockOrderService{}, reports, &MockAuthService{})

	resp, body := doRequest(t, app, http.MethodGet, "/api/admin/reports/expiry", nil, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 90, gotDays)

	grouped := body["grouped"].(map[string]any)
	assert.Len(t, grouped["critical"], 1)
	assert.Len(t, grouped["warning"], 1)
	assert.Len(t, grouped["notice"], 0)
}

func TestExportStock_Headers(t *testing.T) {
	reports := &MockReportService{
		DefaultsValue: service.ReportDefaults{LowStockThreshold: 10},
		ExportFunc: func(_ context.Context, w io.Writer, threshold int) error {
			assert.Equal(t, 10, threshold)
			_, err := w.Write([]byte("PK"))
			return err
		},
	}
	app := newTestApp(&MockOrderService{}, reports, &MockAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/reports/stock/export", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, xlsxContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "stock-report-")
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "PK", string(raw))
}

func TestDashboardStats(t *testing.T) {
	reports := &MockReportService{
		DashboardStatsFunc: func(context.Context) (*service.DashboardStats, error) {
			return &service.DashboardStats{ActiveProducts: 4, LowStockCount: 1, RecentOrders: []model.Order{}}, nil
		},
	}
	app := newTestApp(&MockOrderService{}, reports, &MockAuthService{})

	resp, body := doRequest(t, app, http.MethodGet, "/api/admin/dashboard/stats", nil, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]any)
	assert.EqualValues(t, 4, data["activeProducts"])
}

func TestLogin(t *testing.T) {
	auth := &MockAuthService{
		LoginFunc: func(_ context.Context, email, password string) (*service.LoginResponse, error) {
			if password != "correct-horse" {
				return nil, service.ErrInvalidCredentials
			}
			return &service.LoginResponse{Token: "tok"}, nil
		},
	}
	app := newTestApp(&MockOrderService{}, &MockReportService{}, auth)

	resp, body := doRequest(t, app, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "admin@example.com", "password": "correct-horse"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "tok", body["data"].(map[string]any)["token"])

	resp, body = doRequest(t, app, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "admin@example.com", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "unauthorized", body["error"])

	resp, _ = doRequest(t, app, http.MethodPost, "/api/auth/login", map[string]string{"email": ""}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", NewHealthHandler(func(context.Context) error { return context.DeadlineExceeded }, zap.NewNop()).Health)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, err := app.Test(req, int((3 * time.Second).Milliseconds()))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
