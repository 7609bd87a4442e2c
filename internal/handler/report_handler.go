package handler

import (
	"bytes"
	"fmt"
	"time"

	"go-remedyflow/internal/model"
	"go-remedyflow/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	service service.ReportService
	log     *zap.Logger
}

func NewReportHandler(s service.ReportService, log *zap.Logger) *ReportHandler {
	return &ReportHandler{service: s, log: log}
}

// threshold reads ?threshold, using the configured default when absent or not positive.
func (h *ReportHandler) threshold(c *fiber.Ctx) int {
	n := c.QueryInt("threshold", 0)
	if n <= 0 {
		return h.service.Defaults().LowStockThreshold
	}
	return n
}

// GetStockReport
// GET /api/admin/reports/stock?type=all|low-stock|out-of-stock&threshold=N
func (h *ReportHandler) GetStockReport(c *fiber.Ctx) error {
	kind := service.ParseStockReportType(c.Query("type"))
	threshold := h.threshold(c)

	rows, err := h.service.StockReport(c.UserContext(), kind, threshold)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"data":       rows,
		"reportType": kind,
		"threshold":  threshold,
		"count":      len(rows),
		"success":    true,
	})
}

// GetExpiryReport returns alerts sorted by expiry plus the same alerts
// grouped by severity.
// GET /api/admin/reports/expiry?days=N
func (h *ReportHandler) GetExpiryReport(c *fiber.Ctx) error {
	days := c.QueryInt("days", 0)
	if days <= 0 {
		days = h.service.Defaults().ExpiryWindowDays
	}

	alerts, err := h.service.ExpiryAlerts(c.UserContext(), days)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"data":       alerts,
		"grouped":    model.GroupExpiryAlerts(alerts),
		"windowDays": days,
		"success":    true,
	})
}

// ExportStock downloads the stock and expiry sheets as one workbook.
// GET /api/admin/reports/stock/export?threshold=N
func (h *ReportHandler) ExportStock(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.service.ExportStockXLSX(c.UserContext(), &buf, h.threshold(c)); err != nil {
		return respondError(c, h.log, err)
	}

	filename := fmt.Sprintf("stock-report-%s.xlsx", time.Now().Format("20060102"))
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(buf.Bytes())
}
