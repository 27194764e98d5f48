package dto

import (
	"time"

	"github.com/reparolabs/repairshop-service/internal/domain"
)

// WebhookEndpointRequest payload for endpoint registration.
type WebhookEndpointRequest struct {
	URL    string   `json:"url" validate:"required,url"`
	Events []string `json:"events" validate:"dive,oneof=order_created order_status_changed order_finalized budget_approved stock_low_level"`
	Active bool     `json:"active"`
}

// WebhookEndpointResponse is the wire shape of an endpoint.
type WebhookEndpointResponse struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Events    []string  `json:"events"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WebhookDeliveryResponse is the wire shape of a delivery attempt record.
type WebhookDeliveryResponse struct {
	ID          string     `json:"id"`
	EndpointID  string     `json:"endpoint_id"`
	EventType   string     `json:"event_type"`
	Status      string     `json:"status"`
	Attempts    int        `json:"attempts"`
	LastError   string     `json:"last_error,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewWebhookEndpointResponse maps an endpoint onto its wire shape.
func NewWebhookEndpointResponse(endpoint *domain.WebhookEndpoint) WebhookEndpointResponse {
	return WebhookEndpointResponse{
		ID:        endpoint.ID,
		URL:       endpoint.URL,
		Events:    endpoint.Events,
		Active:    endpoint.Active,
		CreatedAt: endpoint.CreatedAt,
		UpdatedAt: endpoint.UpdatedAt,
	}
}

// NewWebhookEndpointListResponse maps an endpoint slice.
func NewWebhookEndpointListResponse(endpoints []domain.WebhookEndpoint) []WebhookEndpointResponse {
	out := make([]WebhookEndpointResponse, 0, len(endpoints))
	for i := range endpoints {
		out = append(out, NewWebhookEndpointResponse(&endpoints[i]))
	}
	return out
}

// NewWebhookDeliveryListResponse maps a delivery slice.
func NewWebhookDeliveryListResponse(deliveries []domain.WebhookDelivery) []WebhookDeliveryResponse {
	out := make([]WebhookDeliveryResponse, 0, len(deliveries))
	for _, delivery := range deliveries {
		out = append(out, WebhookDeliveryResponse{
			ID:          delivery.ID,
			EndpointID:  delivery.EndpointID,
			EventType:   delivery.EventType,
			Status:      string(delivery.Status),
			Attempts:    delivery.Attempts,
			LastError:   delivery.LastError,
			DeliveredAt: delivery.DeliveredAt,
			CreatedAt:   delivery.CreatedAt,
		})
	}
	return out
}
