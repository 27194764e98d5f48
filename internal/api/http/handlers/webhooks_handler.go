package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/reparolabs/repairshop-service/internal/api/dto"
	"github.com/reparolabs/repairshop-service/internal/api/validate"
	"github.com/reparolabs/repairshop-service/internal/domain"
	"github.com/reparolabs/repairshop-service/internal/service"
	apperrors "github.com/reparolabs/repairshop-service/pkg/util/errorutil"
)

// WebhooksHandler manages webhook endpoint configuration and delivery history.
type WebhooksHandler struct {
	service *service.WebhookService
}

// NewWebhooksHandler constructs handler.
func NewWebhooksHandler(webhookService *service.WebhookService) *WebhooksHandler {
	return &WebhooksHandler{service: webhookService}
}

// Create POST /webhooks.
func (h *WebhooksHandler) Create(c *fiber.Ctx) error {
	req, err := parseWebhookRequest(c)
	if err != nil {
		return err
	}
	endpoint, err := h.service.CreateEndpoint(c.Context(), service.WebhookEndpointInput{
		URL:    req.URL,
		Events: req.Events,
		Active: req.Active,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewWebhookEndpointResponse(endpoint)})
}

// Update PUT /webhooks/:id.
func (h *WebhooksHandler) Update(c *fiber.Ctx) error {
	req, err := parseWebhookRequest(c)
	if err != nil {
		return err
	}
	endpoint, err := h.service.UpdateEndpoint(c.Context(), c.Params("id"), service.WebhookEndpointInput{
		URL:    req.URL,
		Events: req.Events,
		Active: req.Active,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewWebhookEndpointResponse(endpoint)})
}

// Delete DELETE /webhooks/:id.
func (h *WebhooksHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.DeleteEndpoint(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// List GET /webhooks.
func (h *WebhooksHandler) List(c *fiber.Ctx) error {
	endpoints, err := h.service.ListEndpoints(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewWebhookEndpointListResponse(endpoints)})
}

// ListDeliveries GET /webhooks/deliveries. Filter status=FAILED for the
// dead-letter view.
func (h *WebhooksHandler) ListDeliveries(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)

	var status *domain.DeliveryStatus
	if raw := c.Query("status"); raw != "" {
		candidate := domain.DeliveryStatus(strings.ToUpper(strings.TrimSpace(raw)))
		switch candidate {
		case domain.DeliveryStatusPending, domain.DeliveryStatusDelivered, domain.DeliveryStatusFailed:
			status = &candidate
		default:
			return apperrors.NewValidationError("invalid status filter", map[string]any{"status": raw})
		}
	}

	deliveries, err := h.service.ListDeliveries(c.Context(), status, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewWebhookDeliveryListResponse(deliveries)})
}

func parseWebhookRequest(c *fiber.Ctx) (*dto.WebhookEndpointRequest, error) {
	var req dto.WebhookEndpointRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	return &req, nil
}
