package handler

import (
	"time"

	"go-remedyflow/internal/middleware"
	"go-remedyflow/internal/model"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Handlers struct {
	Auth      *AuthHandler
	Order     *OrderHandler
	Purchase  *PurchaseHandler
	Sale      *SaleHandler
	Report    *ReportHandler
	Dashboard *DashboardHandler
	Product   *ProductHandler
	Category  *CategoryHandler
	Health    *HealthHandler
}

type RouterDeps struct {
	Auth            middleware.Authenticator
	OrderLimiter    middleware.RateLimiter
	OrderRateWindow time.Duration
	// WebSocket serves /ws when set.
	WebSocket func(*websocket.Conn)
	Log       *zap.Logger
}

func SetupRoutes(app *fiber.App, h Handlers, deps RouterDeps) {
	app.Get("/healthz", h.Health.Health)

	api := app.Group("/api")

	// ============ PUBLIC ROUTES ============
	api.Post("/orders", middleware.RateLimit(deps.OrderLimiter, deps.OrderRateWindow, deps.Log), h.Order.CreateOrder)
	api.Get("/products", h.Product.GetPublicProducts)
	api.Get("/products/:id", h.Product.GetPublicProduct)
	api.Get("/categories", h.Category.GetPublicCategories)

	auth := api.Group("/auth")
	auth.Post("/login", h.Auth.Login)
	auth.Get("/me", middleware.RequireAuth(deps.Auth), h.Auth.Me)

	// ============ ADMIN ROUTES ============
	admin := api.Group("/admin", middleware.RequireAuth(deps.Auth))

	orders := admin.Group("/orders")
	orders.Get("/", middleware.RequirePrivilege(model.PrivOrderView), h.Order.GetOrders)
	orders.Get("/stats", middleware.RequirePrivilege(model.PrivOrderView), h.Order.GetOrderStats)
	orders.Get("/:id", middleware.RequirePrivilege(model.PrivOrderView), h.Order.GetOrder)
	orders.Patch("/:id/status", middleware.RequirePrivilege(model.PrivOrderUpdateStatus), h.Order.UpdateStatus)

	purchases := admin.Group("/purchases")
	purchases.Post("/", middleware.RequirePrivilege(model.PrivPurchaseCreate), h.Purchase.CreatePurchase)
	purchases.Get("/", middleware.RequirePrivilege(model.PrivPurchaseView), h.Purchase.GetPurchases)
	purchases.Get("/stats", middleware.RequirePrivilege(model.PrivPurchaseView), h.Purchase.GetPurchaseStats)
	purchases.Get("/:id", middleware.RequirePrivilege(model.PrivPurchaseView), h.Purchase.GetPurchase)

	sales := admin.Group("/sales")
	sales.Post("/", middleware.RequirePrivilege(model.PrivSaleCreate), h.Sale.CreateSale)
	sales.Get("/", middleware.RequirePrivilege(model.PrivSaleView), h.Sale.GetSales)
	sales.Get("/stats", middleware.RequirePrivilege(model.PrivSaleView), h.Sale.GetSaleStats)
	sales.Get("/:id", middleware.RequirePrivilege(model.PrivSaleView), h.Sale.GetSale)

	reports := admin.Group("/reports", middleware.RequirePrivilege(model.PrivReportView))
	reports.Get("/stock", h.Report.GetStockReport)
	reports.Get("/stock/export", h.Report.ExportStock)
	reports.Get("/expiry", h.Report.GetExpiryReport)

	admin.Get("/dashboard/stats", middleware.RequireAnyPrivilege(model.PrivDashboardView, model.PrivReportView), h.Dashboard.GetDashboardStats)

	products := admin.Group("/products", middleware.RequirePrivilege(model.PrivProductManage))
	products.Get("/", h.Product.GetProducts)
	products.Get("/:id", h.Product.GetProduct)
	products.Post("/", h.Product.CreateProduct)
	products.Put("/:id", h.Product.UpdateProduct)
	products.Delete("/:id", h.Product.DeleteProduct)

	categories := admin.Group("/categories", middleware.RequirePrivilege(model.PrivCategoryManage))
	categories.Get("/", h.Category.GetCategories)
	categories.Get("/:id", h.Category.GetCategory)
	categories.Post("/", h.Category.CreateCategory)
	categories.Put("/:id", h.Category.UpdateCategory)
	categories.Delete("/:id", h.Category.DeleteCategory)

	// WebSocket Route
	if deps.WebSocket != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return c.SendStatus(fiber.StatusUpgradeRequired)
		})
		app.Get("/ws", websocket.New(deps.WebSocket))
	}
}
