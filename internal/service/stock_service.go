package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/reparolabs/repairshop-service/internal/domain"
	"github.com/reparolabs/repairshop-service/internal/events"
	"github.com/reparolabs/repairshop-service/internal/repository"
)

// StockService coordinates inventory workflows.
type StockService struct {
	stock      repository.StockRepository
	audit      repository.AuditRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// StockItemInput describes item create/update payload.
type StockItemInput struct {
	Name        string
	SKU         string
	Quantity    int
	MinQuantity int
	UnitPrice   int64
}

// NewStockService constructs the service.
func NewStockService(stock repository.StockRepository, audit repository.AuditRepository, dispatcher events.Dispatcher, logger *zap.Logger) *StockService {
	return &StockService{stock: stock, audit: audit, dispatcher: dispatcher, logger: logger}
}

// CreateItem registers a new stock item.
func (s *StockService) CreateItem(ctx context.Context, actorID string, input StockItemInput) (*domain.StockItem, error) {
	item := &domain.StockItem{
		Name:        strings.TrimSpace(input.Name),
		SKU:         strings.TrimSpace(input.SKU),
		Quantity:    input.Quantity,
		MinQuantity: input.MinQuantity,
		UnitPrice:   input.UnitPrice,
		Active:      true,
	}
	if err := s.stock.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	if input.Quantity > 0 {
		s.recordMovementEntry(ctx, actorID, item, domain.MovementIn, input.Quantity, "initial stock", nil)
	}
	return item, nil
}

// UpdateItem updates item metadata. Quantity changes go through movements.
func (s *StockService) UpdateItem(ctx context.Context, id string, input StockItemInput, active bool) (*domain.StockItem, error) {
	item, err := s.getItem(ctx, id)
	if err != nil {
		return nil, err
	}

	item.Name = strings.TrimSpace(input.Name)
	item.SKU = strings.TrimSpace(input.SKU)
	item.MinQuantity = input.MinQuantity
	item.UnitPrice = input.UnitPrice
	item.Active = active
	if err := s.stock.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// GetItem fetches a single item.
func (s *StockService) GetItem(ctx context.Context, id string) (*domain.StockItem, error) {
	return s.getItem(ctx, id)
}

// ListItems returns paginated items.
func (s *StockService) ListItems(ctx context.Context, search string, limit, offset int) ([]domain.StockItem, error) {
	return s.stock.ListItems(ctx, search, limit, offset)
}

// ListLowStock returns active items at or below their minimum level.
func (s *StockService) ListLowStock(ctx context.Context) ([]domain.StockItem, error) {
	return s.stock.ListLowStock(ctx)
}

// ListMovements returns movement history for an item.
func (s *StockService) ListMovements(ctx context.Context, itemID string, limit, offset int) ([]domain.StockMovement, error) {
	return s.stock.ListMovements(ctx, itemID, limit, offset)
}

// RecordMovement applies an inventory change. IN adds, OUT subtracts (never
// below zero), ADJUSTMENT sets the absolute quantity.
func (s *StockService) RecordMovement(ctx context.Context, actorID, itemID string, movementType domain.MovementType, quantity int, reason string) (*domain.StockItem, error) {
	if quantity < 0 {
		return nil, domain.ErrInsufficientStock
	}

	item, err := s.getItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	switch movementType {
	case domain.MovementIn:
		item.Quantity += quantity
	case domain.MovementOut:
		if item.Quantity < quantity {
			return nil, domain.ErrInsufficientStock
		}
		item.Quantity -= quantity
	case domain.MovementAdjustment:
		item.Quantity = quantity
	default:
		return nil, fmt.Errorf("unknown movement type %q", movementType)
	}

	if err := s.stock.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	s.recordMovementEntry(ctx, actorID, item, movementType, quantity, reason, nil)
	s.checkLowStock(ctx, actorID, item)
	return item, nil
}

// ConsumeForOrder decrements stock for a service-order part.
func (s *StockService) ConsumeForOrder(ctx context.Context, actorID, itemID, orderID string, quantity int) (*domain.StockItem, error) {
	if quantity <= 0 {
		return nil, domain.ErrInsufficientStock
	}

	item, err := s.getItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !item.Active || item.Quantity < quantity {
		return nil, domain.ErrInsufficientStock
	}

	item.Quantity -= quantity
	if err := s.stock.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	s.recordMovementEntry(ctx, actorID, item, domain.MovementOut, quantity, "consumed by service order", &orderID)
	s.checkLowStock(ctx, actorID, item)
	return item, nil
}

func (s *StockService) getItem(ctx context.Context, id string) (*domain.StockItem, error) {
	item, err := s.stock.GetItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

func (s *StockService) recordMovementEntry(ctx context.Context, actorID string, item *domain.StockItem, movementType domain.MovementType, quantity int, reason string, orderID *string) {
	movement := &domain.StockMovement{
		StockItemID: item.ID,
		Type:        movementType,
		Quantity:    quantity,
		Reason:      reason,
		OrderID:     orderID,
		ActorID:     actorID,
	}
	if err := s.stock.CreateMovement(ctx, movement); err != nil {
		s.logger.Warn("stock movement record failed", zap.String("item_id", item.ID), zap.Error(err))
	}
	if s.audit != nil {
		entry := &domain.AuditEntry{
			ActorID:     &actorID,
			Action:      domain.AuditStockMovement,
			Description: fmt.Sprintf("%s %d x %s", movementType, quantity, item.SKU),
		}
		if err := s.audit.Create(ctx, entry); err != nil {
			s.logger.Warn("audit append failed", zap.Error(err))
		}
	}
}

func (s *StockService) checkLowStock(ctx context.Context, actorID string, item *domain.StockItem) {
	if s.dispatcher == nil || !item.LowStock() {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventStockLowLevel,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Payload: events.StockLowLevelPayload{
			StockItemID: item.ID,
			SKU:         item.SKU,
			Quantity:    item.Quantity,
			MinQuantity: item.MinQuantity,
		},
	})
}
