package dto

import (
	"time"

	"github.com/reparolabs/repairshop-service/internal/domain"
)

// CustomerRequest payload for creating or updating a customer.
type CustomerRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=150"`
	Phone    string `json:"phone" validate:"required,min=8,max=20"`
	Email    string `json:"email" validate:"omitempty,email"`
	Document string `json:"document" validate:"omitempty,max=20"`
	Address  string `json:"address" validate:"omitempty,max=250"`
	Notes    string `json:"notes" validate:"omitempty,max=1000"`
}

// CustomerResponse is the wire shape of a customer.
type CustomerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	Document  string    `json:"document,omitempty"`
	Address   string    `json:"address,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCustomerResponse maps a customer onto its wire shape.
func NewCustomerResponse(customer *domain.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        customer.ID,
		Name:      customer.Name,
		Phone:     customer.Phone,
		Email:     customer.Email,
		Document:  customer.Document,
		Address:   customer.Address,
		Notes:     customer.Notes,
		CreatedAt: customer.CreatedAt,
		UpdatedAt: customer.UpdatedAt,
	}
}

// NewCustomerListResponse maps a customer slice.
func NewCustomerListResponse(customers []domain.Customer) []CustomerResponse {
	out := make([]CustomerResponse, 0, len(customers))
	for i := range customers {
		out = append(out, NewCustomerResponse(&customers[i]))
	}
	return out
}
