package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/reparolabs/repairshop-service/internal/api/dto"
	"github.com/reparolabs/repairshop-service/internal/api/validate"
	"github.com/reparolabs/repairshop-service/internal/service"
	apperrors "github.com/reparolabs/repairshop-service/pkg/util/errorutil"
)

// CustomersHandler manages customer records.
type CustomersHandler struct {
	service *service.CustomerService
}

// NewCustomersHandler constructs handler.
func NewCustomersHandler(customerService *service.CustomerService) *CustomersHandler {
	return &CustomersHandler{service: customerService}
}

// Create POST /customers.
func (h *CustomersHandler) Create(c *fiber.Ctx) error {
	input, err := h.parseInput(c)
	if err != nil {
		return err
	}
	customer, err := h.service.CreateCustomer(c.Context(), *input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewCustomerResponse(customer)})
}

// Update PUT /customers/:id.
func (h *CustomersHandler) Update(c *fiber.Ctx) error {
	input, err := h.parseInput(c)
	if err != nil {
		return err
	}
	customer, err := h.service.UpdateCustomer(c.Context(), c.Params("id"), *input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCustomerResponse(customer)})
}

// Get GET /customers/:id.
func (h *CustomersHandler) Get(c *fiber.Ctx) error {
	customer, err := h.service.GetCustomer(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCustomerResponse(customer)})
}

// List GET /customers.
func (h *CustomersHandler) List(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)
	customers, err := h.service.ListCustomers(c.Context(), c.Query("search"), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCustomerListResponse(customers)})
}

// Delete DELETE /customers/:id. Refused while the customer has open orders.
func (h *CustomersHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.DeleteCustomer(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *CustomersHandler) parseInput(c *fiber.Ctx) (*service.CustomerInput, error) {
	var req dto.CustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	return &service.CustomerInput{
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Document: req.Document,
		Address:  req.Address,
		Notes:    req.Notes,
	}, nil
}
