package handler

import (
	"go-remedyflow/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type PurchaseHandler struct {
	service service.PurchaseService
	log     *zap.Logger
}

func NewPurchaseHandler(s service.PurchaseService, log *zap.Logger) *PurchaseHandler {
	return &PurchaseHandler{service: s, log: log}
}

// POST /api/admin/purchases
func (h *PurchaseHandler) CreatePurchase(c *fiber.Ctx) error {
	var req service.CreatePurchaseInput
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	req.CreatedBy = getUserID(c)

	purchase, err := h.service.RecordPurchase(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return success(c, fiber.StatusCreated, purchase, "Purchase recorded")
}

// GET /api/admin/purchases
func (h *PurchaseHandler) GetPurchases(c *fiber.Ctx) error {
	purchases, pagination, err := h.service.ListPurchases(c.UserContext(), queryPage(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return list(c, purchases, pagination)
}

// GET /api/admin/purchases/:id
func (h *PurchaseHandler) GetPurchase(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "purchase")
	}

	purchase, err := h.service.GetPurchase(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return success(c, fiber.StatusOK, purchase, "")
}

// GET /api/admin/purchases/stats
func (h *PurchaseHandler) GetPurchaseStats(c *fiber.Ctx) error {
	stats, err := h.service.PurchaseStats(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return success(c, fiber.StatusOK, stats, "")
}
