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

const defaultNotifyTimeout = 15 * time.Second

type CreateOrderInput struct {
	CustomerName string    `json:"customerName" validate:"required,min=2,max=200"`
	Email        string    `json:"email" validate:"required,email,max=255"`
	Phone        string    `json:"phone" validate:"required,min=10,max=20"`
	Province     string    `json:"province" validate:"required,min=1,max=100"`
	City         string    `json:"city" validate:"required,min=1,max=100"`
	Area         string    `json:"area" validate:"required,min=1,max=100"`
	Address      string    `json:"address" validate:"required,min=10,max=1000"`
	Notes        *string   `json:"notes" validate:"omitempty,max=1000"`
	ProductID    uuid.UUID `json:"productId" validate:"uuid_required"`
	Quantity     int       `json:"quantity" validate:"required,gt=0,lte=10000"`
}

type OrderListInput struct {
	Status    string
	Email     string
	ProductID *uuid.UUID
	Page      repository.Page
}

// OrderService owns the order lifecycle. Moving an order to CONFIRMED is
// the only transition with ledger effects: it checks stock and books the
// sale in the same transaction as the status change.
type OrderService interface {
	CreateOrder(ctx context.Context, in CreateOrderInput) (*model.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus, updatedBy string) (*model.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error)
	ListOrders(ctx context.Context, in OrderListInput) ([]model.Order, repository.Pagination, error)
	OrderStats(ctx context.Context) (*repository.OrderStats, error)
}

type orderService struct {
	repo     *repository.Repository
	notifier OrderNotifier
	hub      Broadcaster
	log      *zap.Logger
	now      func() time.Time

	notifyTimeout time.Duration
	// dispatch runs post-commit work; a goroutine outside tests.
	dispatch func(fn func())
	// beforeCommit runs last inside the confirm transaction; an error rolls it back.
	beforeCommit func(ctx context.Context, tx *repository.Repository, order *model.Order) error
}

func NewOrderService(repo *repository.Repository, notifier OrderNotifier, hub Broadcaster, log *zap.Logger) OrderService {
	return &orderService{
		repo:          repo,
		notifier:      notifier,
		hub:           broadcasterOrNop(hub),
		log:           log,
		now:           time.Now,
		notifyTimeout: defaultNotifyTimeout,
		dispatch:      func(fn func()) { go fn() },
	}
}

func (s *orderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*model.Order, error) {
	if err := validate(&in); err != nil {
		return nil, err
	}

	product, err := s.repo.Products.FindByID(ctx, in.ProductID)
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	if product == nil || !product.IsActive {
		return nil, ErrProductNotFound
	}

	now := s.now()
	order := &model.Order{
		OrderNumber:  model.NewOrderNumber(now),
		CustomerName: in.CustomerName,
		Email:        in.Email,
		Phone:        in.Phone,
		Province:     in.Province,
		City:         in.City,
		Area:         in.Area,
		Address:      in.Address,
		Notes:        in.Notes,
		ProductID:    product.ID,
		Quantity:     in.Quantity,
		TotalAmount:  product.SellingPrice.Mul(decimal.NewFromInt(int64(in.Quantity))),
		Status:       model.OrderStatusPending,
	}
	if err := s.repo.Orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	order.Product = product

	s.log.Info("order created",
		zap.String("order_number", order.OrderNumber),
		zap.String("product_id", product.ID.String()),
		zap.Int("quantity", order.Quantity),
	)
	s.hub.Publish("order_update", map[string]any{
		"action":      "order_created",
		"orderId":     order.ID,
		"orderNumber": order.OrderNumber,
		"status":      order.Status,
	})
	return order, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus, updatedBy string) (*model.Order, error) {
	if !status.Valid() {
		return nil, invalid(fmt.Sprintf("invalid order status %q", status))
	}

	var previous model.OrderStatus
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		order, err := tx.Orders.LockByID(ctx, orderID)
		if err != nil {
			return fmt.Errorf("lock order: %w", err)
		}
		if order == nil {
			return ErrOrderNotFound
		}
		previous = order.Status

		if status == model.OrderStatusConfirmed && order.Status == model.OrderStatusConfirmed {
			return ErrAlreadyConfirmed
		}
		if order.Status != status && !order.Status.CanTransitionTo(status) {
			// Admins are trusted to move orders freely; keep a trail of it.
			s.log.Warn("order status change outside lifecycle",
				zap.String("order_number", order.OrderNumber),
				zap.String("from", string(order.Status)),
				zap.String("to", string(status)),
				zap.Bool("from_terminal", order.Status.IsTerminal()),
			)
		}

		if status == model.OrderStatusConfirmed {
			return s.confirm(ctx, tx, order, updatedBy)
		}
		return tx.Orders.UpdateStatus(ctx, order.ID, status, updatedBy)
	})
	if err != nil {
		return nil, err
	}

	order, err := s.repo.Orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("reload order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	s.log.Info("order status updated",
		zap.String("order_number", order.OrderNumber),
		zap.String("from", string(previous)),
		zap.String("to", string(order.Status)),
	)
	s.afterCommit(ctx, order, previous)
	return order, nil
}

// confirm runs inside the status transaction with the order row locked.
func (s *orderService) confirm(ctx context.Context, tx *repository.Repository, order *model.Order, by string) error {
	existing, err := tx.Sales.CountByOrderID(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("count order sales: %w", err)
	}
	if existing > 0 {
		// Sale booked by an earlier confirm; only the status moves.
		return tx.Orders.UpdateStatus(ctx, order.ID, model.OrderStatusConfirmed, by)
	}

	product, err := tx.Products.LockByID(ctx, order.ProductID)
	if err != nil {
		return fmt.Errorf("lock product: %w", err)
	}
	if product == nil {
		return ErrProductNotFound
	}
	if err := checkStockLocked(ctx, tx, product, order.Quantity); err != nil {
		return err
	}

	if err := tx.Orders.UpdateStatus(ctx, order.ID, model.OrderStatusConfirmed, by); err != nil {
		return err
	}
	order.Status = model.OrderStatusConfirmed

	if _, err := recordSaleForOrder(ctx, tx, order, s.now(), by); err != nil {
		return err
	}

	if s.beforeCommit != nil {
		return s.beforeCommit(ctx, tx, order)
	}
	return nil
}

// afterCommit hands the change to the notifier. Delivery failures are
// logged and never reach the caller.
func (s *orderService) afterCommit(ctx context.Context, order *model.Order, previous model.OrderStatus) {
	if s.notifier == nil {
		return
	}
	ev := model.NewOrderStatusEvent(order, previous, s.now())
	base := context.WithoutCancel(ctx)
	s.dispatch(func() {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("order notifier panicked", zap.Any("panic", r), zap.String("order_number", ev.OrderNumber))
			}
		}()
		nctx, cancel := context.WithTimeout(base, s.notifyTimeout)
		defer cancel()
		if err := s.notifier.OrderStatusChanged(nctx, ev); err != nil {
			s.log.Warn("order notification failed",
				zap.String("order_number", ev.OrderNumber),
				zap.String("status", string(ev.Status)),
				zap.Error(err),
			)
		}
	})
}

func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.repo.Orders.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, in OrderListInput) ([]model.Order, repository.Pagination, error) {
	f := repository.OrderFilter{
		Email:     in.Email,
		ProductID: in.ProductID,
		Page:      in.Page,
	}
	if in.Status != "" {
		st := model.OrderStatus(in.Status)
		if !st.Valid() {
			return nil, repository.Pagination{}, invalid(fmt.Sprintf("invalid order status %q", in.Status))
		}
		f.Status = &st
	}

	orders, total, err := s.repo.Orders.List(ctx, f)
	if err != nil {
		return nil, repository.Pagination{}, fmt.Errorf("list orders: %w", err)
	}
	return orders, repository.NewPagination(in.Page, total), nil
}

func (s *orderService) OrderStats(ctx context.Context) (*repository.OrderStats, error) {
	stats, err := s.repo.Orders.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("order stats: %w", err)
	}
	return stats, nil
}
