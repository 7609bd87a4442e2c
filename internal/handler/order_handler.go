package handler

import (
	"go-remedyflow/internal/model"
	"go-remedyflow/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type OrderHandler struct {
	service service.OrderService
	log     *zap.Logger
}

func NewOrderHandler(s service.OrderService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{service: s, log: log}
}

type UpdateOrderStatusRequest struct {
	Status model.OrderStatus `json:"status"`
}

// CreateOrder places a storefront order. No stock is reserved here.
// POST /api/orders
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var req service.CreateOrderInput
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	order, err := h.service.CreateOrder(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return success(c, fiber.StatusCreated, order.ToPublic(), "Order placed")
}

// GET /api/admin/orders
func (h *OrderHandler) GetOrders(c *fiber.Ctx) error {
	productID, ok := queryUUID(c, "productId")
	if !ok {
		return invalidID(c, "product")
	}

	orders, pagination, err := h.service.ListOrders(c.UserContext(), service.OrderListInput{
		Status:    c.Query("status"),
		Email:     c.Query("email"),
		ProductID: productID,
		Page:      queryPage(c),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return list(c, orders, pagination)
}

// GET /api/admin/orders/:id
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "order")
	}

	order, err := h.service.GetOrder(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return success(c, fiber.StatusOK, order, "")
}

// GET /api/admin/orders/stats
func (h *OrderHandler) GetOrderStats(c *fiber.Ctx) error {
	stats, err := h.service.OrderStats(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return success(c, fiber.StatusOK, stats, "")
}

// UpdateStatus moves an order through its lifecycle. Confirming books the sale.
// PATCH /api/admin/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "order")
	}

	var req UpdateOrderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	order, err := h.service.UpdateStatus(c.UserContext(), id, req.Status, getUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return success(c, fiber.StatusOK, order, "Order status updated to "+string(order.Status))
}
