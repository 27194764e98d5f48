package domain

import "time"

// StockItem is a part or consumable tracked in inventory. Prices are cents.
type StockItem struct {
	ID          string
	Name        string
	SKU         string
	Quantity    int
	MinQuantity int
	UnitPrice   int64
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// LowStock reports whether the item is at or below its minimum level.
func (i StockItem) LowStock() bool {
	return i.Quantity <= i.MinQuantity
}

// MovementType enumerates stock movement directions.
type MovementType string

const (
	MovementIn         MovementType = "IN"
	MovementOut        MovementType = "OUT"
	MovementAdjustment MovementType = "ADJUSTMENT"
)

// StockMovement is an append-only record of an inventory change. For
// adjustments Quantity holds the new absolute quantity.
type StockMovement struct {
	ID          string
	StockItemID string
	Type        MovementType
	Quantity    int
	Reason      string
	OrderID     *string
	ActorID     string
	CreatedAt   time.Time
}
