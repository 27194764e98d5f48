package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/reparolabs/repairshop-service/internal/api/dto"
	"github.com/reparolabs/repairshop-service/internal/api/validate"
	"github.com/reparolabs/repairshop-service/internal/auth"
	"github.com/reparolabs/repairshop-service/internal/domain"
	"github.com/reparolabs/repairshop-service/internal/service"
	apperrors "github.com/reparolabs/repairshop-service/pkg/util/errorutil"
)

// OrdersHandler manages service order endpoints.
type OrdersHandler struct {
	service *service.OrderService
}

// NewOrdersHandler constructs handler.
func NewOrdersHandler(orderService *service.OrderService) *OrdersHandler {
	return &OrdersHandler{service: orderService}
}

// Create POST /orders. The authenticated caller becomes the attendant.
func (h *OrdersHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.OrderCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	order, err := h.service.CreateOrder(c.Context(), principal.User.ID, service.OrderCreateInput{
		CustomerID:        req.CustomerID,
		Equipment:         req.Equipment,
		Brand:             req.Brand,
		DefectDescription: req.DefectDescription,
		LaborAmount:       req.LaborAmount,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewOrderResponse(order, nil)})
}

// Get GET /orders/:id.
func (h *OrdersHandler) Get(c *fiber.Ctx) error {
	order, parts, err := h.service.GetOrder(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewOrderResponse(order, parts)})
}

// List GET /orders.
func (h *OrdersHandler) List(c *fiber.Ctx) error {
	filter, err := parseOrderQuery(c)
	if err != nil {
		return err
	}
	orders, err := h.service.ListOrders(c.Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewOrderListResponse(orders)})
}

// UpdateStatus PATCH /orders/:id/status.
func (h *OrdersHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.OrderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	order, err := h.service.UpdateStatus(c.Context(), principal.User.ID, c.Params("id"), domain.OrderStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewOrderResponse(order, nil)})
}

// Assign PATCH /orders/:id/technician.
func (h *OrdersHandler) Assign(c *fiber.Ctx) error {
	var req dto.OrderAssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	order, err := h.service.AssignTechnician(c.Context(), c.Params("id"), req.TechnicianID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewOrderResponse(order, nil)})
}

// SetDiagnosis PATCH /orders/:id/diagnosis.
func (h *OrdersHandler) SetDiagnosis(c *fiber.Ctx) error {
	var req dto.OrderDiagnosisRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	order, err := h.service.SetDiagnosis(c.Context(), c.Params("id"), req.Diagnosis, req.LaborAmount)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewOrderResponse(order, nil)})
}

// AddPart POST /orders/:id/parts. Consumes stock into the order.
func (h *OrdersHandler) AddPart(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.OrderPartRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	order, err := h.service.AddPart(c.Context(), principal.User.ID, c.Params("id"), req.StockItemID, req.Quantity)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewOrderResponse(order, nil)})
}

// Finalize POST /orders/:id/finalize. Marks the order delivered; terminal.
func (h *OrdersHandler) Finalize(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	order, err := h.service.FinalizeOrder(c.Context(), principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewOrderResponse(order, nil)})
}

func parseOrderQuery(c *fiber.Ctx) (service.OrderListFilter, error) {
	filter := service.OrderListFilter{}
	filter.Limit, filter.Offset = parsePagination(c)

	if raw := c.Query("customer_id"); raw != "" {
		filter.CustomerID = &raw
	}
	if raw := c.Query("technician_id"); raw != "" {
		filter.TechnicianID = &raw
	}
	if raw := c.Query("search"); raw != "" {
		filter.SearchTerm = &raw
	}
	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			status := domain.OrderStatus(strings.ToUpper(strings.TrimSpace(part)))
			switch status {
			case domain.OrderStatusReceived, domain.OrderStatusInRepair, domain.OrderStatusAwaitingParts,
				domain.OrderStatusReady, domain.OrderStatusDelivered, domain.OrderStatusCancelled:
				filter.Statuses = append(filter.Statuses, status)
			default:
				return filter, apperrors.NewValidationError("invalid status filter", map[string]any{"status": string(status)})
			}
		}
	}
	if raw := c.Query("created_from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, apperrors.NewValidationError("invalid created_from", nil)
		}
		filter.CreatedFrom = &parsed
	}
	if raw := c.Query("created_to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, apperrors.NewValidationError("invalid created_to", nil)
		}
		filter.CreatedTo = &parsed
	}
	return filter, nil
}
