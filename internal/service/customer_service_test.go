package service

import (
	"context"
	"errors"
	"testing"

	"github.com/reparolabs/repairshop-service/internal/domain"
)

func newCustomerFixture(t *testing.T) (*CustomerService, *stubCustomerRepo, *stubOrderRepo) {
	t.Helper()
	customers := newStubCustomerRepo()
	orders := newStubOrderRepo()
	return NewCustomerService(customers, orders), customers, orders
}

func TestCreateCustomerNormalizesFields(t *testing.T) {
	svc, _, _ := newCustomerFixture(t)

	customer, err := svc.CreateCustomer(context.Background(), CustomerInput{
		Name:  "  Carlos Lima  ",
		Phone: " 11999990000 ",
		Email: " Carlos@Example.COM ",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if customer.Name != "Carlos Lima" || customer.Phone != "11999990000" {
		t.Fatalf("fields not trimmed: %+v", customer)
	}
	if customer.Email != "carlos@example.com" {
		t.Fatalf("email = %q, want lowercase", customer.Email)
	}
}

func TestDeleteCustomerRefusedWithOpenOrders(t *testing.T) {
	svc, customers, orders := newCustomerFixture(t)

	customer := &domain.Customer{Name: "Carlos Lima", Phone: "11999990000"}
	if err := customers.Create(context.Background(), customer); err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	order := &domain.ServiceOrder{
		ExternalKey: "OS-AAAA0001",
		CustomerID:  customer.ID,
		AttendantID: "attendant-1",
		Equipment:   "Notebook",
		Status:      domain.OrderStatusInRepair,
	}
	if err := orders.Create(context.Background(), order); err != nil {
		t.Fatalf("seed order: %v", err)
	}

	if err := svc.DeleteCustomer(context.Background(), customer.ID); !errors.Is(err, domain.ErrCustomerHasOrders) {
		t.Fatalf("err = %v, want ErrCustomerHasOrders", err)
	}

	// A customer with only terminal orders can be deleted.
	order.Status = domain.OrderStatusDelivered
	if err := orders.Update(context.Background(), order); err != nil {
		t.Fatalf("close order: %v", err)
	}
	if err := svc.DeleteCustomer(context.Background(), customer.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.GetCustomer(context.Background(), customer.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound after delete", err)
	}
}
