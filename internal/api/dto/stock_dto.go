package dto

import (
	"time"

	"github.com/reparolabs/repairshop-service/internal/domain"
)

// StockItemRequest payload for creating or updating a stock item.
type StockItemRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=150"`
	SKU         string `json:"sku" validate:"required,min=2,max=60"`
	Quantity    int    `json:"quantity" validate:"gte=0"`
	MinQuantity int    `json:"min_quantity" validate:"gte=0"`
	UnitPrice   int64  `json:"unit_price" validate:"gte=0"`
	Active      *bool  `json:"active"`
}

// StockMovementRequest payload for recording a manual movement.
type StockMovementRequest struct {
	Type     string `json:"type" validate:"required,oneof=IN OUT ADJUSTMENT"`
	Quantity int    `json:"quantity" validate:"gte=0"`
	Reason   string `json:"reason" validate:"required,min=3,max=250"`
}

// StockItemResponse is the wire shape of a stock item.
type StockItemResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	SKU         string    `json:"sku"`
	Quantity    int       `json:"quantity"`
	MinQuantity int       `json:"min_quantity"`
	UnitPrice   int64     `json:"unit_price"`
	Active      bool      `json:"active"`
	LowStock    bool      `json:"low_stock"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StockMovementResponse is the wire shape of a movement record.
type StockMovementResponse struct {
	ID          string    `json:"id"`
	StockItemID string    `json:"stock_item_id"`
	Type        string    `json:"type"`
	Quantity    int       `json:"quantity"`
	Reason      string    `json:"reason,omitempty"`
	OrderID     *string   `json:"order_id,omitempty"`
	ActorID     string    `json:"actor_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewStockItemResponse maps a stock item onto its wire shape.
func NewStockItemResponse(item *domain.StockItem) StockItemResponse {
	return StockItemResponse{
		ID:          item.ID,
		Name:        item.Name,
		SKU:         item.SKU,
		Quantity:    item.Quantity,
		MinQuantity: item.MinQuantity,
		UnitPrice:   item.UnitPrice,
		Active:      item.Active,
		LowStock:    item.LowStock(),
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

// NewStockItemListResponse maps a stock item slice.
func NewStockItemListResponse(items []domain.StockItem) []StockItemResponse {
	out := make([]StockItemResponse, 0, len(items))
	for i := range items {
		out = append(out, NewStockItemResponse(&items[i]))
	}
	return out
}

// NewStockMovementListResponse maps a movement slice.
func NewStockMovementListResponse(movements []domain.StockMovement) []StockMovementResponse {
	out := make([]StockMovementResponse, 0, len(movements))
	for _, movement := range movements {
		out = append(out, StockMovementResponse{
			ID:          movement.ID,
			StockItemID: movement.StockItemID,
			Type:        string(movement.Type),
			Quantity:    movement.Quantity,
			Reason:      movement.Reason,
			OrderID:     movement.OrderID,
			ActorID:     movement.ActorID,
			CreatedAt:   movement.CreatedAt,
		})
	}
	return out
}
