package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/reparolabs/repairshop-service/internal/domain"
	"github.com/reparolabs/repairshop-service/internal/events"
	"github.com/reparolabs/repairshop-service/internal/repository"
)

type stubBudgetRepo struct {
	budgets map[string]*domain.Budget
	nextID  int
}

func newStubBudgetRepo() *stubBudgetRepo {
	return &stubBudgetRepo{budgets: map[string]*domain.Budget{}}
}

func (r *stubBudgetRepo) Create(_ context.Context, budget *domain.Budget) error {
	r.nextID++
	budget.ID = fmt.Sprintf("budget-%d", r.nextID)
	copied := *budget
	r.budgets[budget.ID] = &copied
	return nil
}

func (r *stubBudgetRepo) Update(_ context.Context, budget *domain.Budget) error {
	if _, ok := r.budgets[budget.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *budget
	r.budgets[budget.ID] = &copied
	return nil
}

func (r *stubBudgetRepo) GetByID(_ context.Context, id string) (*domain.Budget, error) {
	budget, ok := r.budgets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *budget
	return &copied, nil
}

func (r *stubBudgetRepo) ListWithFilter(_ context.Context, filter repository.BudgetFilter) ([]domain.Budget, error) {
	out := []domain.Budget{}
	for _, budget := range r.budgets {
		if filter.CustomerID != nil && budget.CustomerID != *filter.CustomerID {
			continue
		}
		out = append(out, *budget)
	}
	return out, nil
}

type budgetFixture struct {
	service    *BudgetService
	repo       *stubBudgetRepo
	customers  *stubCustomerRepo
	dispatcher *recorderDispatcher
}

func newBudgetFixture(t *testing.T) *budgetFixture {
	t.Helper()
	repo := newStubBudgetRepo()
	customers := newStubCustomerRepo()
	dispatcher := &recorderDispatcher{}
	return &budgetFixture{
		service:    NewBudgetService(repo, customers, dispatcher),
		repo:       repo,
		customers:  customers,
		dispatcher: dispatcher,
	}
}

func (f *budgetFixture) seedBudget(t *testing.T, validUntil *time.Time) *domain.Budget {
	t.Helper()
	customer := &domain.Customer{Name: "Maria Alves", Phone: "11988887777"}
	if err := f.customers.Create(context.Background(), customer); err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	budget, err := f.service.CreateBudget(context.Background(), BudgetInput{
		CustomerID:  customer.ID,
		Description: "screen replacement",
		LaborAmount: 8000,
		PartsAmount: 45000,
		ValidUntil:  validUntil,
	})
	if err != nil {
		t.Fatalf("seed budget: %v", err)
	}
	return budget
}

func TestCreateBudgetStartsPendingWithTotal(t *testing.T) {
	f := newBudgetFixture(t)
	budget := f.seedBudget(t, nil)

	if budget.Status != domain.BudgetStatusPending {
		t.Fatalf("status = %s, want PENDING", budget.Status)
	}
	if budget.TotalAmount != 53000 {
		t.Fatalf("total = %d, want labor + parts", budget.TotalAmount)
	}
	if !budget.ValidUntil.After(time.Now().Add(13 * 24 * time.Hour)) {
		t.Fatalf("valid until = %v, want default validity applied", budget.ValidUntil)
	}
}

func TestCreateBudgetUnknownCustomer(t *testing.T) {
	f := newBudgetFixture(t)
	_, err := f.service.CreateBudget(context.Background(), BudgetInput{
		CustomerID:  "missing",
		Description: "anything",
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestApproveBudgetEmitsEvent(t *testing.T) {
	f := newBudgetFixture(t)
	budget := f.seedBudget(t, nil)

	approved, err := f.service.ApproveBudget(context.Background(), "atendente-1", budget.ID)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Status != domain.BudgetStatusApproved {
		t.Fatalf("status = %s, want APPROVED", approved.Status)
	}

	emitted := f.dispatcher.byType(events.EventBudgetApproved)
	if len(emitted) != 1 {
		t.Fatalf("budget_approved events = %d, want 1", len(emitted))
	}

	// Only pending budgets can change state.
	if _, err := f.service.ApproveBudget(context.Background(), "atendente-1", budget.ID); !errors.Is(err, domain.ErrBudgetNotPending) {
		t.Fatalf("second approve err = %v, want ErrBudgetNotPending", err)
	}
	if _, err := f.service.RejectBudget(context.Background(), budget.ID); !errors.Is(err, domain.ErrBudgetNotPending) {
		t.Fatalf("reject after approve err = %v, want ErrBudgetNotPending", err)
	}
}

func TestExpiredBudgetCannotBeApproved(t *testing.T) {
	f := newBudgetFixture(t)
	past := time.Now().Add(-time.Hour)
	budget := f.seedBudget(t, &past)

	if _, err := f.service.ApproveBudget(context.Background(), "atendente-1", budget.ID); !errors.Is(err, domain.ErrBudgetNotPending) {
		t.Fatalf("err = %v, want ErrBudgetNotPending", err)
	}

	fetched, err := f.service.GetBudget(context.Background(), budget.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if fetched.Status != domain.BudgetStatusExpired {
		t.Fatalf("status = %s, want EXPIRED", fetched.Status)
	}
}

func TestLinkOrderRequiresApproval(t *testing.T) {
	f := newBudgetFixture(t)
	budget := f.seedBudget(t, nil)

	if _, err := f.service.LinkOrder(context.Background(), budget.ID, "order-1"); !errors.Is(err, domain.ErrBudgetNotPending) {
		t.Fatalf("link pending err = %v, want ErrBudgetNotPending", err)
	}

	if _, err := f.service.ApproveBudget(context.Background(), "atendente-1", budget.ID); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	linked, err := f.service.LinkOrder(context.Background(), budget.ID, "order-1")
	if err != nil {
		t.Fatalf("link failed: %v", err)
	}
	if linked.OrderID == nil || *linked.OrderID != "order-1" {
		t.Fatal("order id not linked")
	}
}
