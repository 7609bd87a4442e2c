package handler

import (
	"go-remedyflow/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ProductHandler struct {
	service service.ProductService
	log     *zap.Logger
}

func NewProductHandler(s service.ProductService, log *zap.Logger) *ProductHandler {
	return &ProductHandler{service: s, log: log}
}

func (h *ProductHandler) listInput(c *fiber.Ctx) (service.ProductListInput, bool) {
	categoryID, ok := queryUUID(c, "categoryId")
	if !ok {
		return service.ProductListInput{}, false
	}
	return service.ProductListInput{
		CategoryID: categoryID,
		Search:     c.Query("search"),
		Page:       queryPage(c),
	}, true
}

// GetPublicProducts lists the active catalog with availability only.
// GET /api/products
func (h *ProductHandler) GetPublicProducts(c *fiber.Ctx) error {
	in, ok := h.listInput(c)
	if !ok {
		return invalidID(c, "category")
	}

	products, pagination, err := h.service.ListPublic(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return list(c, products, pagination)
}

// GET /api/products/:id
func (h *ProductHandler) GetPublicProduct(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "product")
	}

	product, err := h.service.GetPublic(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return success(c, fiber.StatusOK, product, "")
}

// GET /api/admin/products
func (h *ProductHandler) GetProducts(c *fiber.Ctx) error {
	in, ok := h.listInput(c)
	if !ok {
		return invalidID(c, "category")
	}
	in.IsActive = queryBool(c, "isActive")

	products, pagination, err := h.service.ListAdmin(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return list(c, products, pagination)
}

// GET /api/admin/products/:id
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "product")
	}

	product, err := h.service.GetAdmin(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return success(c, fiber.StatusOK, product, "")
}

// POST /api/admin/products
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.CreateProductInput
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	req.By = getUserID(c)

	product, err := h.service.Create(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return success(c, fiber.StatusCreated, product, "Product created")
}

// PUT /api/admin/products/:id
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "product")
	}

	var req service.UpdateProductInput
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	req.By = getUserID(c)

	product, err := h.service.Update(c.UserContext(), id, req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return success(c, fiber.StatusOK, product, "Product updated")
}

// DeleteProduct deactivates the product; its ledger history stays.
// DELETE /api/admin/products/:id
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "product")
	}

	if err := h.service.Deactivate(c.UserContext(), id, getUserID(c)); err != nil {
		return respondError(c, h.log, err)
	}
	return success(c, fiber.StatusOK, nil, "Product deactivated")
}
