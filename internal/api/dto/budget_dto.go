package dto

import (
	"time"

	"github.com/reparolabs/repairshop-service/internal/domain"
)

// BudgetCreateRequest payload for a new estimate.
type BudgetCreateRequest struct {
	CustomerID  string     `json:"customer_id" validate:"required,uuid"`
	OrderID     *string    `json:"order_id" validate:"omitempty,uuid"`
	Description string     `json:"description" validate:"required,min=5,max=2000"`
	LaborAmount int64      `json:"labor_amount" validate:"gte=0"`
	PartsAmount int64      `json:"parts_amount" validate:"gte=0"`
	ValidUntil  *time.Time `json:"valid_until"`
}

// BudgetLinkRequest payload for attaching an approved budget to an order.
type BudgetLinkRequest struct {
	OrderID string `json:"order_id" validate:"required,uuid"`
}

// BudgetResponse is the wire shape of a budget.
type BudgetResponse struct {
	ID          string    `json:"id"`
	CustomerID  string    `json:"customer_id"`
	OrderID     *string   `json:"order_id,omitempty"`
	Description string    `json:"description"`
	LaborAmount int64     `json:"labor_amount"`
	PartsAmount int64     `json:"parts_amount"`
	TotalAmount int64     `json:"total_amount"`
	Status      string    `json:"status"`
	ValidUntil  time.Time `json:"valid_until"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewBudgetResponse maps a budget onto its wire shape.
func NewBudgetResponse(budget *domain.Budget) BudgetResponse {
	return BudgetResponse{
		ID:          budget.ID,
		CustomerID:  budget.CustomerID,
		OrderID:     budget.OrderID,
		Description: budget.Description,
		LaborAmount: budget.LaborAmount,
		PartsAmount: budget.PartsAmount,
		TotalAmount: budget.TotalAmount,
		Status:      string(budget.Status),
		ValidUntil:  budget.ValidUntil,
		CreatedAt:   budget.CreatedAt,
		UpdatedAt:   budget.UpdatedAt,
	}
}

// NewBudgetListResponse maps a budget slice.
func NewBudgetListResponse(budgets []domain.Budget) []BudgetResponse {
	out := make([]BudgetResponse, 0, len(budgets))
	for i := range budgets {
		out = append(out, NewBudgetResponse(&budgets[i]))
	}
	return out
}
