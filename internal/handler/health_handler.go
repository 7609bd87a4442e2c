package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Pinger checks a backing store is reachable.
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	ping Pinger
	log  *zap.Logger
}

func NewHealthHandler(ping Pinger, log *zap.Logger) *HealthHandler {
	return &HealthHandler{ping: ping, log: log}
}

// GET /healthz
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	if err := h.ping(ctx); err != nil {
		h.log.Warn("health check failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable", "success": false})
	}
	return c.JSON(fiber.Map{"status": "ok", "success": true})
}
