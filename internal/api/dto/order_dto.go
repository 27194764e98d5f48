package dto

import (
	"time"

	"github.com/reparolabs/repairshop-service/internal/domain"
)

// OrderCreateRequest payload for customer intake.
type OrderCreateRequest struct {
	CustomerID        string `json:"customer_id" validate:"required,uuid"`
	Equipment         string `json:"equipment" validate:"required,min=2,max=150"`
	Brand             string `json:"brand" validate:"omitempty,max=100"`
	DefectDescription string `json:"defect_description" validate:"required,min=5,max=2000"`
	LaborAmount       int64  `json:"labor_amount" validate:"gte=0"`
}

// OrderStatusRequest payload for status transitions.
type OrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=RECEIVED IN_REPAIR AWAITING_PARTS READY DELIVERED CANCELLED"`
}

// OrderAssignRequest payload for technician assignment.
type OrderAssignRequest struct {
	TechnicianID string `json:"technician_id" validate:"required,uuid"`
}

// OrderDiagnosisRequest payload for the technician's findings.
type OrderDiagnosisRequest struct {
	Diagnosis   string `json:"diagnosis" validate:"required,min=5,max=2000"`
	LaborAmount int64  `json:"labor_amount" validate:"gte=0"`
}

// OrderPartRequest payload for consuming a stock item into an order.
type OrderPartRequest struct {
	StockItemID string `json:"stock_item_id" validate:"required,uuid"`
	Quantity    int    `json:"quantity" validate:"required,gte=1"`
}

// OrderPartResponse is the wire shape of a consumed part.
type OrderPartResponse struct {
	ID          string    `json:"id"`
	StockItemID string    `json:"stock_item_id"`
	Quantity    int       `json:"quantity"`
	UnitPrice   int64     `json:"unit_price"`
	CreatedAt   time.Time `json:"created_at"`
}

// OrderResponse is the wire shape of a service order.
type OrderResponse struct {
	ID                string              `json:"id"`
	ExternalKey       string              `json:"external_key"`
	CustomerID        string              `json:"customer_id"`
	AttendantID       string              `json:"attendant_id"`
	TechnicianID      *string             `json:"technician_id,omitempty"`
	Equipment         string              `json:"equipment"`
	Brand             string              `json:"brand,omitempty"`
	DefectDescription string              `json:"defect_description"`
	Diagnosis         string              `json:"diagnosis,omitempty"`
	Status            string              `json:"status"`
	LaborAmount       int64               `json:"labor_amount"`
	PartsAmount       int64               `json:"parts_amount"`
	TotalAmount       int64               `json:"total_amount"`
	Parts             []OrderPartResponse `json:"parts,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
	FinalizedAt       *time.Time          `json:"finalized_at,omitempty"`
}

// NewOrderResponse maps an order (and optional parts) onto its wire shape.
func NewOrderResponse(order *domain.ServiceOrder, parts []domain.OrderPart) OrderResponse {
	resp := OrderResponse{
		ID:                order.ID,
		ExternalKey:       order.ExternalKey,
		CustomerID:        order.CustomerID,
		AttendantID:       order.AttendantID,
		TechnicianID:      order.TechnicianID,
		Equipment:         order.Equipment,
		Brand:             order.Brand,
		DefectDescription: order.DefectDescription,
		Diagnosis:         order.Diagnosis,
		Status:            string(order.Status),
		LaborAmount:       order.LaborAmount,
		PartsAmount:       order.PartsAmount,
		TotalAmount:       order.TotalAmount,
		CreatedAt:         order.CreatedAt,
		UpdatedAt:         order.UpdatedAt,
		FinalizedAt:       order.FinalizedAt,
	}
	for _, part := range parts {
		resp.Parts = append(resp.Parts, OrderPartResponse{
			ID:          part.ID,
			StockItemID: part.StockItemID,
			Quantity:    part.Quantity,
			UnitPrice:   part.UnitPrice,
			CreatedAt:   part.CreatedAt,
		})
	}
	return resp
}

// NewOrderListResponse maps an order slice without parts.
func NewOrderListResponse(orders []domain.ServiceOrder) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, NewOrderResponse(&orders[i], nil))
	}
	return out
}
