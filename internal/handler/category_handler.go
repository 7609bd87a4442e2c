package handler

import (
	"go-remedyflow/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type CategoryHandler struct {
	service service.CategoryService
	log     *zap.Logger
}

func NewCategoryHandler(s service.CategoryService, log *zap.Logger) *CategoryHandler {
	return &CategoryHandler{service: s, log: log}
}

// GET /api/categories
func (h *CategoryHandler) GetPublicCategories(c *fiber.Ctx) error {
	categories, err := h.service.List(c.UserContext(), true)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return success(c, fiber.StatusOK, categories, "")
}

// GET /api/admin/categories
func (h *CategoryHandler) GetCategories(c *fiber.Ctx) error {
	categories, err := h.service.List(c.UserContext(), false)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return success(c, fiber.StatusOK, categories, "")
}

// GET /api/admin/categories/:id
func (h *CategoryHandler) GetCategory(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "category")
	}

	category, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return success(c, fiber.StatusOK, category, "")
}

// POST /api/admin/categories
func (h *CategoryHandler) CreateCategory(c *fiber.Ctx) error {
	var req service.CategoryInput
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	req.By = getUserID(c)

	category, err := h.service.Create(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return success(c, fiber.StatusCreated, category, "Category created")
}

// PUT /api/admin/categories/:id
func (h *CategoryHandler) UpdateCategory(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "category")
	}

	var req service.CategoryInput
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	req.By = getUserID(c)

	category, err := h.service.Update(c.UserContext(), id, req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return success(c, fiber.StatusOK, category, "Category updated")
}

// DeleteCategory refuses while products still reference the category.
// DELETE /api/admin/categories/:id
func (h *CategoryHandler) DeleteCategory(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "category")
	}

	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return respondError(c, h.log, err)
	}
	return success(c, fiber.StatusOK, nil, "Category deleted")
}
