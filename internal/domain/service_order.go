package domain

import "time"

// OrderStatus enumerates lifecycle states for service orders.
type OrderStatus string

const (
	OrderStatusReceived      OrderStatus = "RECEIVED"
	OrderStatusInRepair      OrderStatus = "IN_REPAIR"
	OrderStatusAwaitingParts OrderStatus = "AWAITING_PARTS"
	OrderStatusReady         OrderStatus = "READY"
	OrderStatusDelivered     OrderStatus = "DELIVERED"
	OrderStatusCancelled     OrderStatus = "CANCELLED"
)

// Terminal reports whether the status admits no further transitions.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// ServiceOrder is the repair job aggregate tracked from intake to delivery.
type ServiceOrder struct {
	ID                string
	ExternalKey       string
	CustomerID        string
	AttendantID       string
	TechnicianID      *string
	Equipment         string
	Brand             string
	DefectDescription string
	Diagnosis         string
	Status            OrderStatus
	LaborAmount       int64
	PartsAmount       int64
	TotalAmount       int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
	FinalizedAt       *time.Time
}

// OrderPart records a stock item consumed by a service order. UnitPrice is
// captured at consumption time, in cents.
type OrderPart struct {
	ID          string
	OrderID     string
	StockItemID string
	Quantity    int
	UnitPrice   int64
	CreatedAt   time.Time
}
