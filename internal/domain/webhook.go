package domain

import "time"

// WebhookEndpoint is an operator-configured delivery target. Events holds the
// event type names the endpoint subscribes to; empty means all.
type WebhookEndpoint struct {
	ID        string
	URL       string
	Events    []string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Subscribed reports whether the endpoint wants the given event type.
func (e WebhookEndpoint) Subscribed(eventType string) bool {
	if len(e.Events) == 0 {
		return true
	}
	for _, candidate := range e.Events {
		if candidate == eventType {
			return true
		}
	}
	return false
}

// DeliveryStatus enumerates webhook delivery outcomes.
type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "PENDING"
	DeliveryStatusDelivered DeliveryStatus = "DELIVERED"
	DeliveryStatusFailed    DeliveryStatus = "FAILED"
)

// WebhookDelivery tracks one event sent to one endpoint. FAILED rows with
// exhausted attempts form the dead-letter record.
type WebhookDelivery struct {
	ID          string
	EndpointID  string
	EventType   string
	Payload     []byte
	Status      DeliveryStatus
	Attempts    int
	LastError   string
	DeliveredAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
