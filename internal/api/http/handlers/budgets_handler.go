package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/reparolabs/repairshop-service/internal/api/dto"
	"github.com/reparolabs/repairshop-service/internal/api/validate"
	"github.com/reparolabs/repairshop-service/internal/auth"
	"github.com/reparolabs/repairshop-service/internal/domain"
	"github.com/reparolabs/repairshop-service/internal/service"
	apperrors "github.com/reparolabs/repairshop-service/pkg/util/errorutil"
)

// BudgetsHandler manages repair estimate endpoints.
type BudgetsHandler struct {
	service *service.BudgetService
}

// NewBudgetsHandler constructs handler.
func NewBudgetsHandler(budgetService *service.BudgetService) *BudgetsHandler {
	return &BudgetsHandler{service: budgetService}
}

// Create POST /budgets.
func (h *BudgetsHandler) Create(c *fiber.Ctx) error {
	var req dto.BudgetCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	budget, err := h.service.CreateBudget(c.Context(), service.BudgetInput{
		CustomerID:  req.CustomerID,
		OrderID:     req.OrderID,
		Description: req.Description,
		LaborAmount: req.LaborAmount,
		PartsAmount: req.PartsAmount,
		ValidUntil:  req.ValidUntil,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewBudgetResponse(budget)})
}

// Get GET /budgets/:id.
func (h *BudgetsHandler) Get(c *fiber.Ctx) error {
	budget, err := h.service.GetBudget(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewBudgetResponse(budget)})
}

// List GET /budgets.
func (h *BudgetsHandler) List(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)

	var customerID *string
	if raw := c.Query("customer_id"); raw != "" {
		customerID = &raw
	}

	var statuses []domain.BudgetStatus
	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			status := domain.BudgetStatus(strings.ToUpper(strings.TrimSpace(part)))
			switch status {
			case domain.BudgetStatusPending, domain.BudgetStatusApproved,
				domain.BudgetStatusRejected, domain.BudgetStatusExpired:
				statuses = append(statuses, status)
			default:
				return apperrors.NewValidationError("invalid status filter", map[string]any{"status": string(status)})
			}
		}
	}

	budgets, err := h.service.ListBudgets(c.Context(), customerID, statuses, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewBudgetListResponse(budgets)})
}

// Approve POST /budgets/:id/approve.
func (h *BudgetsHandler) Approve(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	budget, err := h.service.ApproveBudget(c.Context(), principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewBudgetResponse(budget)})
}

// Reject POST /budgets/:id/reject.
func (h *BudgetsHandler) Reject(c *fiber.Ctx) error {
	budget, err := h.service.RejectBudget(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewBudgetResponse(budget)})
}

// LinkOrder POST /budgets/:id/order.
func (h *BudgetsHandler) LinkOrder(c *fiber.Ctx) error {
	var req dto.BudgetLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	budget, err := h.service.LinkOrder(c.Context(), c.Params("id"), req.OrderID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewBudgetResponse(budget)})
}
