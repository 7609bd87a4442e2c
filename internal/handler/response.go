package handler

import (
	"errors"
	"strconv"

	"go-remedyflow/internal/repository"
	"go-remedyflow/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func success(c *fiber.Ctx, status int, data any, message string) error {
	body := fiber.Map{"data": data, "success": true}
	if message != "" {
		body["message"] = message
	}
	return c.Status(status).JSON(body)
}

func list(c *fiber.Ctx, data any, p repository.Pagination) error {
	return c.JSON(fiber.Map{"data": data, "pagination": p, "success": true})
}

func fail(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": code, "message": message, "success": false})
}

// respondError maps service errors to HTTP statuses. Unknown errors are
// logged and reported as 500 without their text.
func respondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	var verr *service.ValidationError
	var serr *service.InsufficientStockError

	switch {
	case errors.As(err, &verr):
		body := fiber.Map{"error": "validation_error", "message": verr.Error(), "success": false}
		if len(verr.Fields) > 0 {
			body["details"] = verr.Fields
		}
		return c.Status(fiber.StatusBadRequest).JSON(body)
	case errors.As(err, &serr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "insufficient_stock",
			"message": serr.Error(),
			"details": fiber.Map{"product": serr.ProductName, "available": serr.Available, "requested": serr.Requested},
			"success": false,
		})
	case errors.Is(err, service.ErrAlreadyConfirmed):
		return fail(c, fiber.StatusBadRequest, "already_confirmed", err.Error())
	case errors.Is(err, service.ErrDuplicateSale):
		return fail(c, fiber.StatusBadRequest, "duplicate_sale", err.Error())
	case errors.Is(err, service.ErrNotFound):
		return fail(c, fiber.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		return fail(c, fiber.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, service.ErrNameConflict):
		return fail(c, fiber.StatusBadRequest, "conflict", err.Error())
	case errors.Is(err, service.ErrReferentialBlock):
		return fail(c, fiber.StatusBadRequest, "referenced", err.Error())
	}

	log.Error("request failed",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return fail(c, fiber.StatusInternalServerError, "internal_error", "Internal Server Error")
}

func invalidJSON(c *fiber.Ctx) error {
	return fail(c, fiber.StatusBadRequest, "validation_error", "Invalid JSON")
}

// Helpers for the session set by the auth middleware.
func getUserID(c *fiber.Ctx) string {
	userID, ok := c.Locals("user_id").(string)
	if !ok {
		return "system"
	}
	return userID
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func invalidID(c *fiber.Ctx, what string) error {
	return fail(c, fiber.StatusBadRequest, "validation_error", "Invalid "+what+" ID")
}

func queryUUID(c *fiber.Ctx, key string) (*uuid.UUID, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, false
	}
	return &id, true
}

func queryBool(c *fiber.Ctx, key string) *bool {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &b
}

func queryPage(c *fiber.Ctx) repository.Page {
	return repository.Page{
		Page:  c.QueryInt("page", 1),
		Limit: c.QueryInt("limit", repository.DefaultPageSize),
	}
}
