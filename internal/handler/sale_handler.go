package handler

import (
	"go-remedyflow/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type SaleHandler struct {
	service service.SaleService
	log     *zap.Logger
}

func NewSaleHandler(s service.SaleService, log *zap.Logger) *SaleHandler {
	return &SaleHandler{service: s, log: log}
}

// CreateSale records a walk-in sale.
// POST /api/admin/sales
func (h *SaleHandler) CreateSale(c *fiber.Ctx) error {
	var req service.CreateSaleInput
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	req.CreatedBy = getUserID(c)

	sale, err := h.service.RecordManualSale(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return success(c, fiber.StatusCreated, sale, "Sale recorded")
}

// GET /api/admin/sales
func (h *SaleHandler) GetSales(c *fiber.Ctx) error {
	sales, pagination, err := h.service.ListSales(c.UserContext(), queryPage(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return list(c, sales, pagination)
}

// GET /api/admin/sales/:id
func (h *SaleHandler) GetSale(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "sale")
	}

	sale, err := h.service.GetSale(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return success(c, fiber.StatusOK, sale, "")
}

// GET /api/admin/sales/stats
func (h *SaleHandler) GetSaleStats(c *fiber.Ctx) error {
	stats, err := h.service.SalesStats(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return success(c, fiber.StatusOK, stats, "")
}
