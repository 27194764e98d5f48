package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/reparolabs/repairshop-service/internal/domain"
	"github.com/reparolabs/repairshop-service/internal/events"
	"github.com/reparolabs/repairshop-service/internal/repository"
)

const defaultBudgetValidity = 15 * 24 * time.Hour

// BudgetService coordinates repair cost estimates.
type BudgetService struct {
	budgets    repository.BudgetRepository
	customers  repository.CustomerRepository
	dispatcher events.Dispatcher
}

// BudgetInput describes create payload.
type BudgetInput struct {
	CustomerID  string
	OrderID     *string
	Description string
	LaborAmount int64
	PartsAmount int64
	ValidUntil  *time.Time
}

// NewBudgetService constructs the service.
func NewBudgetService(budgets repository.BudgetRepository, customers repository.CustomerRepository, dispatcher events.Dispatcher) *BudgetService {
	return &BudgetService{budgets: budgets, customers: customers, dispatcher: dispatcher}
}

// CreateBudget registers a pending estimate for a customer.
func (s *BudgetService) CreateBudget(ctx context.Context, input BudgetInput) (*domain.Budget, error) {
	if _, err := s.customers.GetByID(ctx, input.CustomerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	validUntil := time.Now().Add(defaultBudgetValidity)
	if input.ValidUntil != nil {
		validUntil = *input.ValidUntil
	}

	budget := &domain.Budget{
		CustomerID:  input.CustomerID,
		OrderID:     input.OrderID,
		Description: strings.TrimSpace(input.Description),
		LaborAmount: input.LaborAmount,
		PartsAmount: input.PartsAmount,
		TotalAmount: input.LaborAmount + input.PartsAmount,
		Status:      domain.BudgetStatusPending,
		ValidUntil:  validUntil,
	}
	if err := s.budgets.Create(ctx, budget); err != nil {
		return nil, err
	}
	return budget, nil
}

// GetBudget fetches a budget, expiring it lazily when its validity passed.
func (s *BudgetService) GetBudget(ctx context.Context, id string) (*domain.Budget, error) {
	budget, err := s.budgets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if budget.Expired(time.Now()) {
		budget.Status = domain.BudgetStatusExpired
		if err := s.budgets.Update(ctx, budget); err != nil {
			return nil, err
		}
	}
	return budget, nil
}

// ListBudgets returns paginated budgets.
func (s *BudgetService) ListBudgets(ctx context.Context, customerID *string, statuses []domain.BudgetStatus, limit, offset int) ([]domain.Budget, error) {
	return s.budgets.ListWithFilter(ctx, repository.BudgetFilter{
		CustomerID: customerID,
		Statuses:   statuses,
		Limit:      limit,
		Offset:     offset,
	})
}

// ApproveBudget approves a pending, unexpired budget.
func (s *BudgetService) ApproveBudget(ctx context.Context, actorID, id string) (*domain.Budget, error) {
	budget, err := s.GetBudget(ctx, id)
	if err != nil {
		return nil, err
	}
	if budget.Status != domain.BudgetStatusPending {
		return nil, domain.ErrBudgetNotPending
	}

	budget.Status = domain.BudgetStatusApproved
	if err := s.budgets.Update(ctx, budget); err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventBudgetApproved,
			ActorID:   actorID,
			Timestamp: time.Now(),
			Payload: events.BudgetApprovedPayload{
				BudgetID:    budget.ID,
				CustomerID:  budget.CustomerID,
				TotalAmount: budget.TotalAmount,
			},
		})
	}
	return budget, nil
}

// RejectBudget rejects a pending budget.
func (s *BudgetService) RejectBudget(ctx context.Context, id string) (*domain.Budget, error) {
	budget, err := s.GetBudget(ctx, id)
	if err != nil {
		return nil, err
	}
	if budget.Status != domain.BudgetStatusPending {
		return nil, domain.ErrBudgetNotPending
	}

	budget.Status = domain.BudgetStatusRejected
	if err := s.budgets.Update(ctx, budget); err != nil {
		return nil, err
	}
	return budget, nil
}

// LinkOrder ties an approved budget to the service order created from it.
func (s *BudgetService) LinkOrder(ctx context.Context, budgetID, orderID string) (*domain.Budget, error) {
	budget, err := s.GetBudget(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	if budget.Status != domain.BudgetStatusApproved {
		return nil, domain.ErrBudgetNotPending
	}

	budget.OrderID = &orderID
	if err := s.budgets.Update(ctx, budget); err != nil {
		return nil, err
	}
	return budget, nil
}
