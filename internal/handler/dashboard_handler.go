package handler

import (
	"go-remedyflow/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	service service.ReportService
	log     *zap.Logger
}

func NewDashboardHandler(s service.ReportService, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{service: s, log: log}
}

// GetDashboardStats returns overview statistics
// GET /api/admin/dashboard/stats
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.DashboardStats(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return success(c, fiber.StatusOK, stats, "")
}
