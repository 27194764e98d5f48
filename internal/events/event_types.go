package events

import (
	"time"

	"github.com/reparolabs/repairshop-service/internal/domain"
)

// EventType enumerates supported event identifiers. The string values are the
// webhook subscription names operators configure.
type EventType string

const (
	EventOrderCreated       EventType = "order_created"
	EventOrderStatusChanged EventType = "order_status_changed"
	EventOrderFinalized     EventType = "order_finalized"
	EventBudgetApproved     EventType = "budget_approved"
	EventStockLowLevel      EventType = "stock_low_level"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// OrderCreatedPayload payload.
type OrderCreatedPayload struct {
	OrderID     string `json:"order_id"`
	ExternalKey string `json:"external_key"`
	CustomerID  string `json:"customer_id"`
	Equipment   string `json:"equipment"`
	Defect      string `json:"defect"`
}

// OrderStatusChangedPayload payload.
type OrderStatusChangedPayload struct {
	OrderID     string             `json:"order_id"`
	ExternalKey string             `json:"external_key"`
	OldStatus   domain.OrderStatus `json:"old_status"`
	NewStatus   domain.OrderStatus `json:"new_status"`
}

// OrderFinalizedPayload payload.
type OrderFinalizedPayload struct {
	OrderID     string `json:"order_id"`
	ExternalKey string `json:"external_key"`
	CustomerID  string `json:"customer_id"`
	TotalAmount int64  `json:"total_amount"`
}

// BudgetApprovedPayload payload.
type BudgetApprovedPayload struct {
	BudgetID    string `json:"budget_id"`
	CustomerID  string `json:"customer_id"`
	TotalAmount int64  `json:"total_amount"`
}

// StockLowLevelPayload payload.
type StockLowLevelPayload struct {
	StockItemID string `json:"stock_item_id"`
	SKU         string `json:"sku"`
	Quantity    int    `json:"quantity"`
	MinQuantity int    `json:"min_quantity"`
}
