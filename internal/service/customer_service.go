package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/reparolabs/repairshop-service/internal/domain"
	"github.com/reparolabs/repairshop-service/internal/repository"
)

// CustomerService coordinates customer intake and upkeep.
type CustomerService struct {
	customers repository.CustomerRepository
	orders    repository.OrderRepository
}

// CustomerInput describes create/update payload.
type CustomerInput struct {
	Name     string
	Phone    string
	Email    string
	Document string
	Address  string
	Notes    string
}

// NewCustomerService constructs the service.
func NewCustomerService(customers repository.CustomerRepository, orders repository.OrderRepository) *CustomerService {
	return &CustomerService{customers: customers, orders: orders}
}

// CreateCustomer registers a new customer.
func (s *CustomerService) CreateCustomer(ctx context.Context, input CustomerInput) (*domain.Customer, error) {
	customer := customerFromInput(input)
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// UpdateCustomer replaces customer fields.
func (s *CustomerService) UpdateCustomer(ctx context.Context, id string, input CustomerInput) (*domain.Customer, error) {
	customer, err := s.getCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := customerFromInput(input)
	updated.ID = customer.ID
	if err := s.customers.Update(ctx, updated); err != nil {
		return nil, err
	}
	updated.CreatedAt = customer.CreatedAt
	return updated, nil
}

// GetCustomer fetches one customer.
func (s *CustomerService) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	return s.getCustomer(ctx, id)
}

// ListCustomers returns paginated customers, optionally filtered by name or
// document search.
func (s *CustomerService) ListCustomers(ctx context.Context, search string, limit, offset int) ([]domain.Customer, error) {
	return s.customers.List(ctx, strings.TrimSpace(search), limit, offset)
}

// DeleteCustomer removes a customer without open service orders.
func (s *CustomerService) DeleteCustomer(ctx context.Context, id string) error {
	if _, err := s.getCustomer(ctx, id); err != nil {
		return err
	}

	open, err := s.orders.CountOpenByCustomer(ctx, id)
	if err != nil {
		return err
	}
	if open > 0 {
		return domain.ErrCustomerHasOrders
	}
	return s.customers.Delete(ctx, id)
}

func (s *CustomerService) getCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return customer, nil
}

func customerFromInput(input CustomerInput) *domain.Customer {
	return &domain.Customer{
		Name:     strings.TrimSpace(input.Name),
		Phone:    strings.TrimSpace(input.Phone),
		Email:    strings.ToLower(strings.TrimSpace(input.Email)),
		Document: strings.TrimSpace(input.Document),
		Address:  strings.TrimSpace(input.Address),
		Notes:    strings.TrimSpace(input.Notes),
	}
}
