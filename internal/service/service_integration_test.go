package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go-remedyflow/internal/model"
	"go-remedyflow/internal/repository"
	"go-remedyflow/internal/testutil"
	"go-remedyflow/pkg/jwt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []model.OrderStatusEvent
	err    error
	panics bool
}

func (n *recordingNotifier) OrderStatusChanged(_ context.Context, ev model.OrderStatusEvent) error {
	n.mu.Lock()
	n.events = append(n.events, ev)
	n.mu.Unlock()
	if n.panics {
		panic("smtp exploded")
	}
	return n.err
}

func (n *recordingNotifier) statuses() []model.OrderStatus {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]model.OrderStatus, len(n.events))
	for i, ev := range n.events {
		out[i] = ev.Status
	}
	return out
}

type fixture struct {
	repo      *repository.Repository
	orders    *orderService
	purchases PurchaseService
	sales     SaleService
	stock     StockService
	notifier  *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := repository.New(testutil.SetupTestPostgres(t))
	n := &recordingNotifier{}
	orders := NewOrderService(repo, n, nil, zap.NewNop()).(*orderService)
	orders.dispatch = func(fn func()) { fn() }

	return &fixture{
		repo:      repo,
		orders:    orders,
		purchases: NewPurchaseService(repo, nil, zap.NewNop()),
		sales:     NewSaleService(repo, nil, zap.NewNop()),
		stock:     NewStockService(repo),
		notifier:  n,
	}
}

func (f *fixture) product(t *testing.T, name string, stock int) *model.Product {
	t.Helper()
	ctx := context.Background()
	cat := &model.Category{Name: "cat-" + uuid.NewString()[:8], IsActive: true}
	require.NoError(t, f.repo.Categories.Create(ctx, cat))

	p := &model.Product{
		Name:          name,
		CategoryID:    cat.ID,
		SellingPrice:  decimal.RequireFromString("4.50"),
		PurchasePrice: decimal.RequireFromString("2.00"),
		IsActive:      true,
	}
	require.NoError(t, f.repo.Products.Create(ctx, p))

	if stock > 0 {
		_, err := f.purchases.RecordPurchase(ctx, CreatePurchaseInput{
			ProductID:     p.ID,
			Quantity:      stock,
			PurchasePrice: decimal.RequireFromString("2.00"),
		})
		require.NoError(t, err)
	}
	return p
}

func (f *fixture) order(t *testing.T, productID uuid.UUID, qty int) *model.Order {
	t.Helper()
	o, err := f.orders.CreateOrder(context.Background(), CreateOrderInput{
		CustomerName: "Jane Doe",
		Email:        "jane@example.com",
		Phone:        "+15551234567",
		Province:     "Ontario",
		City:         "Toronto",
		Area:         "Downtown",
		Address:      "100 Queen Street West",
		ProductID:    productID,
		Quantity:     qty,
	})
	require.NoError(t, err)
	return o
}

func (f *fixture) stockOf(t *testing.T, productID uuid.UUID) int {
	t.Helper()
	n, err := f.stock.StockOf(context.Background(), productID)
	require.NoError(t, err)
	return n
}

func (f *fixture) salesFor(t *testing.T, orderID uuid.UUID) int64 {
	t.Helper()
	n, err := f.repo.Sales.CountByOrderID(context.Background(), orderID)
	require.NoError(t, err)
	return n
}

func TestConfirm_HappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Paracetamol", 0)
	for i := 0; i < 2; i++ {
		_, err := f.purchases.RecordPurchase(ctx, CreatePurchaseInput{
			ProductID:     p.ID,
			Quantity:      50,
			PurchasePrice: decimal.RequireFromString("2.00"),
		})
		require.NoError(t, err)
	}
	o := f.order(t, p.ID, 10)

	assert.Equal(t, model.OrderStatusPending, o.Status)
	assert.True(t, decimal.RequireFromString("45").Equal(o.TotalAmount))
	assert.Equal(t, 100, f.stockOf(t, p.ID), "placing an order reserves nothing")

	confirmed, err := f.orders.UpdateStatus(ctx, o.ID, model.OrderStatusConfirmed, "admin")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusConfirmed, confirmed.Status)
	require.NotNil(t, confirmed.Sale)
	assert.Equal(t, 10, confirmed.Sale.Quantity)
	assert.True(t, decimal.RequireFromString("4.5").Equal(confirmed.Sale.SalePrice))
	assert.Equal(t, "Sale from order "+o.OrderNumber, *confirmed.Sale.Notes)

	assert.Equal(t, 90, f.stockOf(t, p.ID))
	assert.Equal(t, []model.OrderStatus{model.OrderStatusConfirmed}, f.notifier.statuses())
}

func TestConfirm_InsufficientStock(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Ibuprofen", 5)
	o := f.order(t, p.ID, 10)

	_, err := f.orders.UpdateStatus(context.Background(), o.ID, model.OrderStatusConfirmed, "admin")
	require.ErrorIs(t, err, ErrInsufficientStock)
	var serr *InsufficientStockError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 5, serr.Available)
	assert.Equal(t, 10, serr.Requested)

	got, err := f.orders.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, got.Status)
	assert.Zero(t, f.salesFor(t, o.ID))
	assert.Equal(t, 5, f.stockOf(t, p.ID))
	assert.Empty(t, f.notifier.statuses())
}

func TestConfirm_Twice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Cetirizine", 50)
	o := f.order(t, p.ID, 5)

	_, err := f.orders.UpdateStatus(ctx, o.ID, model.OrderStatusConfirmed, "admin")
	require.NoError(t, err)

	_, err = f.orders.UpdateStatus(ctx, o.ID, model.OrderStatusConfirmed, "admin")
	assert.ErrorIs(t, err, ErrAlreadyConfirmed)

	assert.EqualValues(t, 1, f.salesFor(t, o.ID))
	assert.Equal(t, 45, f.stockOf(t, p.ID))
}

func TestConfirm_AfterBackAndForthBooksOneSale(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Loratadine", 20)
	o := f.order(t, p.ID, 4)

	for _, st := range []model.OrderStatus{model.OrderStatusConfirmed, model.OrderStatusPending, model.OrderStatusConfirmed} {
		_, err := f.orders.UpdateStatus(ctx, o.ID, st, "admin")
		require.NoError(t, err, "to %s", st)
	}

	assert.EqualValues(t, 1, f.salesFor(t, o.ID))
	assert.Equal(t, 16, f.stockOf(t, p.ID))
}

func TestNonConfirmTransitions_LeaveLedgersAlone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Omeprazole", 30)

	cancelled := f.order(t, p.ID, 3)
	_, err := f.orders.UpdateStatus(ctx, cancelled.ID, model.OrderStatusCancelled, "admin")
	require.NoError(t, err)
	assert.Zero(t, f.salesFor(t, cancelled.ID))

	o := f.order(t, p.ID, 3)
	_, err = f.orders.UpdateStatus(ctx, o.ID, model.OrderStatusConfirmed, "admin")
	require.NoError(t, err)
	assert.Equal(t, 27, f.stockOf(t, p.ID))

	for _, st := range []model.OrderStatus{model.OrderStatusShipped, model.OrderStatusDelivered} {
		_, err := f.orders.UpdateStatus(ctx, o.ID, st, "admin")
		require.NoError(t, err)
		assert.Equal(t, 27, f.stockOf(t, p.ID), "after %s", st)
		assert.EqualValues(t, 1, f.salesFor(t, o.ID))
	}
}

func TestPermissiveTransition_DeliveredToPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Metformin", 10)
	o := f.order(t, p.ID, 2)

	for _, st := range []model.OrderStatus{model.OrderStatusConfirmed, model.OrderStatusShipped, model.OrderStatusDelivered} {
		_, err := f.orders.UpdateStatus(ctx, o.ID, st, "admin")
		require.NoError(t, err)
	}

	core, logs := observer.New(zap.WarnLevel)
	f.orders.log = zap.New(core)

	got, err := f.orders.UpdateStatus(ctx, o.ID, model.OrderStatusPending, "admin")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, got.Status)
	assert.Equal(t, 8, f.stockOf(t, p.ID), "sale stays booked")

	entries := logs.FilterMessage("order status change outside lifecycle").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "DELIVERED", fields["from"])
	assert.Equal(t, "PENDING", fields["to"])
	assert.Equal(t, true, fields["from_terminal"])
}

func TestUpdateStatus_UnknownStatusAndOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.orders.UpdateStatus(ctx, uuid.New(), model.OrderStatus("LOST"), "admin")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.orders.UpdateStatus(ctx, uuid.New(), model.OrderStatusConfirmed, "admin")
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConfirm_RollsBackOnLateFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Amoxicillin", 10)
	o := f.order(t, p.ID, 4)

	boom := errors.New("injected failure")
	f.orders.beforeCommit = func(context.Context, *repository.Repository, *model.Order) error { return boom }

	_, err := f.orders.UpdateStatus(ctx, o.ID, model.OrderStatusConfirmed, "admin")
	require.ErrorIs(t, err, boom)

	got, err := f.orders.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, got.Status)
	assert.Nil(t, got.Sale)
	assert.Equal(t, 10, f.stockOf(t, p.ID))
	assert.Empty(t, f.notifier.statuses())

	f.orders.beforeCommit = nil
	_, err = f.orders.UpdateStatus(ctx, o.ID, model.OrderStatusConfirmed, "admin")
	require.NoError(t, err)
	assert.Equal(t, 6, f.stockOf(t, p.ID))
}

func TestConfirm_ConcurrentOrdersNeverOversell(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Salbutamol", 100)

	const n = 10
	orders := make([]*model.Order, n)
	for i := range orders {
		orders[i] = f.order(t, p.ID, 15)
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i, o := range orders {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			_, errs[i] = f.orders.UpdateStatus(ctx, id, model.OrderStatusConfirmed, "admin")
		}(i, o.ID)
	}
	wg.Wait()

	confirmed := 0
	for _, err := range errs {
		if err == nil {
			confirmed++
			continue
		}
		assert.ErrorIs(t, err, ErrInsufficientStock)
	}
	assert.Equal(t, 6, confirmed)
	assert.Equal(t, 10, f.stockOf(t, p.ID))
}

func TestConfirm_RacingSameOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Insulin", 50)
	o := f.order(t, p.ID, 5)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.orders.UpdateStatus(ctx, o.ID, model.OrderStatusConfirmed, "admin")
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, ErrAlreadyConfirmed)
	}
	assert.Equal(t, 1, ok)
	assert.EqualValues(t, 1, f.salesFor(t, o.ID))
	assert.Equal(t, 45, f.stockOf(t, p.ID))
}

func TestConfirm_NotifierFailureIsSwallowed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Aspirin", 10)

	f.notifier.err = errors.New("smtp: connection refused")
	o := f.order(t, p.ID, 1)
	got, err := f.orders.UpdateStatus(ctx, o.ID, model.OrderStatusConfirmed, "admin")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusConfirmed, got.Status)

	f.notifier.err = nil
	f.notifier.panics = true
	o2 := f.order(t, p.ID, 1)
	_, err = f.orders.UpdateStatus(ctx, o2.ID, model.OrderStatusConfirmed, "admin")
	require.NoError(t, err)
	assert.Equal(t, 8, f.stockOf(t, p.ID))
}

func TestCreateOrder_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.orders.CreateOrder(ctx, CreateOrderInput{CustomerName: "J"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.Fields)

	in := CreateOrderInput{
		CustomerName: "Jane Doe",
		Email:        "jane@example.com",
		Phone:        "+15551234567",
		Province:     "Ontario",
		City:         "Toronto",
		Area:         "Downtown",
		Address:      "100 Queen Street West",
		ProductID:    uuid.New(),
		Quantity:     1,
	}
	_, err = f.orders.CreateOrder(ctx, in)
	assert.ErrorIs(t, err, ErrProductNotFound)

	in.ProductID = f.product(t, "Zinc", 0).ID
	in.Quantity = 10001
	_, err = f.orders.CreateOrder(ctx, in)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestOrderStats_Revenue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Vitamin C", 100)

	a := f.order(t, p.ID, 2)
	b := f.order(t, p.ID, 4)
	c := f.order(t, p.ID, 1)
	_ = f.order(t, p.ID, 3)

	_, err := f.orders.UpdateStatus(ctx, a.ID, model.OrderStatusConfirmed, "admin")
	require.NoError(t, err)
	_, err = f.orders.UpdateStatus(ctx, b.ID, model.OrderStatusConfirmed, "admin")
	require.NoError(t, err)
	_, err = f.orders.UpdateStatus(ctx, b.ID, model.OrderStatusShipped, "admin")
	require.NoError(t, err)
	_, err = f.orders.UpdateStatus(ctx, c.ID, model.OrderStatusCancelled, "admin")
	require.NoError(t, err)

	stats, err := f.orders.OrderStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 4, stats.Total)
	assert.EqualValues(t, 1, stats.Pending)
	assert.EqualValues(t, 1, stats.Cancelled)
	assert.True(t, decimal.RequireFromString("27").Equal(stats.Revenue), "revenue %s", stats.Revenue)

	_, _, err = f.orders.ListOrders(ctx, OrderListInput{Status: "nope"})
	assert.ErrorIs(t, err, ErrValidation)

	list, page, err := f.orders.ListOrders(ctx, OrderListInput{Status: string(model.OrderStatusConfirmed)})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.EqualValues(t, 1, page.Total)
}

func TestManualSale(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Diclofenac", 5)

	_, err := f.sales.RecordManualSale(ctx, CreateSaleInput{ProductID: p.ID, Quantity: 6, SalePrice: decimal.RequireFromString("3")})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	sale, err := f.sales.RecordManualSale(ctx, CreateSaleInput{ProductID: p.ID, Quantity: 5, SalePrice: decimal.RequireFromString("3")})
	require.NoError(t, err)
	assert.Nil(t, sale.OrderID)
	assert.Equal(t, 0, f.stockOf(t, p.ID))

	_, err = f.sales.RecordManualSale(ctx, CreateSaleInput{ProductID: uuid.New(), Quantity: 1, SalePrice: decimal.RequireFromString("3")})
	assert.ErrorIs(t, err, ErrProductNotFound)

	stats, err := f.sales.SalesStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Count)
	assert.True(t, decimal.RequireFromString("15").Equal(stats.TotalAmount))
}

func TestPurchase_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.purchases.RecordPurchase(ctx, CreatePurchaseInput{ProductID: uuid.New(), Quantity: 1, PurchasePrice: decimal.RequireFromString("1")})
	assert.ErrorIs(t, err, ErrProductNotFound)

	p := f.product(t, "Saline", 0)
	_, err = f.purchases.RecordPurchase(ctx, CreatePurchaseInput{ProductID: p.ID, Quantity: 0, PurchasePrice: decimal.RequireFromString("1")})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.purchases.RecordPurchase(ctx, CreatePurchaseInput{ProductID: p.ID, Quantity: 1, PurchasePrice: decimal.Zero})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.purchases.GetPurchase(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrPurchaseNotFound)
}

func TestStockOfAll_Flags(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	empty := f.product(t, "Empty", 0)
	low := f.product(t, "Low", 3)
	plenty := f.product(t, "Plenty", 50)

	rows, err := f.stock.StockOfAll(ctx, true, 10)
	require.NoError(t, err)
	byID := map[uuid.UUID]model.StockInfo{}
	for _, r := range rows {
		byID[r.ProductID] = r
	}

	assert.True(t, byID[empty.ID].IsOutOfStock)
	assert.False(t, byID[empty.ID].IsLowStock)
	assert.True(t, byID[low.ID].IsLowStock)
	assert.False(t, byID[plenty.ID].IsLowStock)
	assert.Equal(t, 50, byID[plenty.ID].CurrentStock)

	ok, err := f.stock.HasSufficientStock(ctx, low.ID, 4)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReport_ExpiryAndDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()

	p := f.product(t, "Eye drops", 12)
	exp := now.AddDate(0, 0, 20)
	p.ExpiryDate = &exp
	require.NoError(t, f.repo.Products.Update(ctx, p))

	far := f.product(t, "Syrup", 1)
	farExp := now.AddDate(0, 0, 200)
	far.ExpiryDate = &farExp
	require.NoError(t, f.repo.Products.Update(ctx, far))

	reports := NewReportService(f.repo, f.stock, ReportDefaults{LowStockThreshold: 10, ExpiryWindowDays: 90}, zap.NewNop())

	alerts, err := reports.ExpiryAlerts(ctx, 0)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, p.ID, alerts[0].ProductID)
	assert.Equal(t, model.SeverityCritical, alerts[0].Severity)
	assert.Equal(t, 12, alerts[0].CurrentStock)

	low, err := reports.StockReport(ctx, StockReportLowStock, 0)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, far.ID, low[0].ProductID)

	stats, err := reports.DashboardStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.ActiveProducts)
	assert.Equal(t, 1, stats.LowStockCount)
	assert.EqualValues(t, 2, stats.Purchases.Count)
	assert.NotNil(t, stats.RecentOrders)
}

func TestCategory_ConflictAndReferentialBlock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	categories := NewCategoryService(f.repo)

	c, err := categories.Create(ctx, CategoryInput{Name: "Analgesics"})
	require.NoError(t, err)

	_, err = categories.Create(ctx, CategoryInput{Name: "Analgesics"})
	assert.ErrorIs(t, err, ErrNameConflict)

	p := &model.Product{
		Name:          "Naproxen",
		CategoryID:    c.ID,
		SellingPrice:  decimal.RequireFromString("6"),
		PurchasePrice: decimal.RequireFromString("3"),
		IsActive:      true,
	}
	require.NoError(t, f.repo.Products.Create(ctx, p))

	assert.ErrorIs(t, categories.Delete(ctx, c.ID), ErrReferentialBlock)

	empty, err := categories.Create(ctx, CategoryInput{Name: "Unused"})
	require.NoError(t, err)
	require.NoError(t, categories.Delete(ctx, empty.ID))
	_, err = categories.Get(ctx, empty.ID)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestAuth_LoginAndAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	auth := NewAuthService(f.repo, jwt.NewManager("test-secret", time.Hour), zap.NewNop())

	admin, err := auth.EnsureAdmin(ctx, "admin@example.com", "s3cret-pass", "Admin")
	require.NoError(t, err)
	assert.Len(t, admin.Privileges, len(model.DefaultPrivileges))

	_, err = auth.Login(ctx, "admin@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.ErrorIs(t, err, ErrUnauthorized)

	first, err := auth.Login(ctx, "admin@example.com", "s3cret-pass")
	require.NoError(t, err)
	claims, err := auth.Authenticate(ctx, first.Token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, claims.UserID)
	assert.Contains(t, claims.Privileges, model.PrivOrderUpdateStatus)

	second, err := auth.Login(ctx, "admin@example.com", "s3cret-pass")
	require.NoError(t, err)
	_, err = auth.Authenticate(ctx, first.Token)
	assert.ErrorIs(t, err, ErrUnauthorized, "older session is replaced")
	_, err = auth.Authenticate(ctx, second.Token)
	assert.NoError(t, err)

	me, err := auth.Me(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", me.Email)
}
