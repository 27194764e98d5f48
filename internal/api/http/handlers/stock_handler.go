package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/reparolabs/repairshop-service/internal/api/dto"
	"github.com/reparolabs/repairshop-service/internal/api/validate"
	"github.com/reparolabs/repairshop-service/internal/auth"
	"github.com/reparolabs/repairshop-service/internal/domain"
	"github.com/reparolabs/repairshop-service/internal/service"
	apperrors "github.com/reparolabs/repairshop-service/pkg/util/errorutil"
)

// StockHandler manages inventory endpoints.
type StockHandler struct {
	service *service.StockService
}

// NewStockHandler constructs handler.
func NewStockHandler(stockService *service.StockService) *StockHandler {
	return &StockHandler{service: stockService}
}

// CreateItem POST /stock/items.
func (h *StockHandler) CreateItem(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	req, err := parseStockItemRequest(c)
	if err != nil {
		return err
	}

	item, err := h.service.CreateItem(c.Context(), principal.User.ID, service.StockItemInput{
		Name:        req.Name,
		SKU:         req.SKU,
		Quantity:    req.Quantity,
		MinQuantity: req.MinQuantity,
		UnitPrice:   req.UnitPrice,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewStockItemResponse(item)})
}

// UpdateItem PUT /stock/items/:id.
func (h *StockHandler) UpdateItem(c *fiber.Ctx) error {
	req, err := parseStockItemRequest(c)
	if err != nil {
		return err
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	item, err := h.service.UpdateItem(c.Context(), c.Params("id"), service.StockItemInput{
		Name:        req.Name,
		SKU:         req.SKU,
		Quantity:    req.Quantity,
		MinQuantity: req.MinQuantity,
		UnitPrice:   req.UnitPrice,
	}, active)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewStockItemResponse(item)})
}

// GetItem GET /stock/items/:id.
func (h *StockHandler) GetItem(c *fiber.Ctx) error {
	item, err := h.service.GetItem(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewStockItemResponse(item)})
}

// ListItems GET /stock/items.
func (h *StockHandler) ListItems(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)
	items, err := h.service.ListItems(c.Context(), c.Query("search"), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewStockItemListResponse(items)})
}

// ListLowStock GET /stock/items/low.
func (h *StockHandler) ListLowStock(c *fiber.Ctx) error {
	items, err := h.service.ListLowStock(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewStockItemListResponse(items)})
}

// ListMovements GET /stock/items/:id/movements.
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)
	movements, err := h.service.ListMovements(c.Context(), c.Params("id"), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewStockMovementListResponse(movements)})
}

// RecordMovement POST /stock/items/:id/movements.
func (h *StockHandler) RecordMovement(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.StockMovementRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	item, err := h.service.RecordMovement(c.Context(), principal.User.ID, c.Params("id"),
		domain.MovementType(req.Type), req.Quantity, req.Reason)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewStockItemResponse(item)})
}

func parseStockItemRequest(c *fiber.Ctx) (*dto.StockItemRequest, error) {
	var req dto.StockItemRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	return &req, nil
}
