package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/reparolabs/repairshop-service/internal/domain"
	"github.com/reparolabs/repairshop-service/internal/events"
)

type stockFixture struct {
	service    *StockService
	repo       *stubStockRepo
	audit      *stubAuditRepo
	dispatcher *recorderDispatcher
}

func newStockFixture(t *testing.T) *stockFixture {
	t.Helper()
	repo := newStubStockRepo()
	audit := &stubAuditRepo{}
	dispatcher := &recorderDispatcher{}
	return &stockFixture{
		service:    NewStockService(repo, audit, dispatcher, zap.NewNop()),
		repo:       repo,
		audit:      audit,
		dispatcher: dispatcher,
	}
}

func TestCreateItemRecordsInitialMovement(t *testing.T) {
	f := newStockFixture(t)

	item, err := f.service.CreateItem(context.Background(), "admin-1", StockItemInput{
		Name:        "  Tela 15.6  ",
		SKU:         "SCR-156",
		Quantity:    5,
		MinQuantity: 2,
		UnitPrice:   45000,
	})
	if err != nil {
		t.Fatalf("create item failed: %v", err)
	}
	if item.Name != "Tela 15.6" {
		t.Fatalf("name = %q, want trimmed", item.Name)
	}
	if !item.Active {
		t.Fatal("new items start active")
	}

	movements, _ := f.service.ListMovements(context.Background(), item.ID, 10, 0)
	if len(movements) != 1 || movements[0].Type != domain.MovementIn || movements[0].Quantity != 5 {
		t.Fatalf("initial movement not recorded: %+v", movements)
	}
	if !f.audit.has(domain.AuditStockMovement) {
		t.Fatal("movement audit entry missing")
	}
}

func TestRecordMovementDirections(t *testing.T) {
	f := newStockFixture(t)
	item, err := f.service.CreateItem(context.Background(), "admin-1", StockItemInput{
		Name: "Memoria 8GB", SKU: "RAM-8", Quantity: 10, MinQuantity: 2, UnitPrice: 18000,
	})
	if err != nil {
		t.Fatalf("seed item: %v", err)
	}

	updated, err := f.service.RecordMovement(context.Background(), "admin-1", item.ID, domain.MovementIn, 5, "restock")
	if err != nil {
		t.Fatalf("IN failed: %v", err)
	}
	if updated.Quantity != 15 {
		t.Fatalf("quantity after IN = %d, want 15", updated.Quantity)
	}

	updated, err = f.service.RecordMovement(context.Background(), "admin-1", item.ID, domain.MovementOut, 4, "sold")
	if err != nil {
		t.Fatalf("OUT failed: %v", err)
	}
	if updated.Quantity != 11 {
		t.Fatalf("quantity after OUT = %d, want 11", updated.Quantity)
	}

	updated, err = f.service.RecordMovement(context.Background(), "admin-1", item.ID, domain.MovementAdjustment, 7, "inventory recount")
	if err != nil {
		t.Fatalf("ADJUSTMENT failed: %v", err)
	}
	if updated.Quantity != 7 {
		t.Fatalf("quantity after ADJUSTMENT = %d, want 7", updated.Quantity)
	}
}

func TestRecordMovementOutRefusesOverdraw(t *testing.T) {
	f := newStockFixture(t)
	item, err := f.service.CreateItem(context.Background(), "admin-1", StockItemInput{
		Name: "Teclado", SKU: "KB-1", Quantity: 2, UnitPrice: 9000,
	})
	if err != nil {
		t.Fatalf("seed item: %v", err)
	}

	if _, err := f.service.RecordMovement(context.Background(), "admin-1", item.ID, domain.MovementOut, 3, "oversale"); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}

	// Quantity is untouched after a refused movement.
	current, _ := f.service.GetItem(context.Background(), item.ID)
	if current.Quantity != 2 {
		t.Fatalf("quantity = %d, want 2", current.Quantity)
	}
}

func TestLowStockEventEmitted(t *testing.T) {
	f := newStockFixture(t)
	item, err := f.service.CreateItem(context.Background(), "admin-1", StockItemInput{
		Name: "Bateria", SKU: "BAT-1", Quantity: 5, MinQuantity: 3, UnitPrice: 25000,
	})
	if err != nil {
		t.Fatalf("seed item: %v", err)
	}

	if _, err := f.service.RecordMovement(context.Background(), "admin-1", item.ID, domain.MovementOut, 3, "sold"); err != nil {
		t.Fatalf("OUT failed: %v", err)
	}

	emitted := f.dispatcher.byType(events.EventStockLowLevel)
	if len(emitted) != 1 {
		t.Fatalf("stock_low_level events = %d, want 1", len(emitted))
	}
	payload, ok := emitted[0].Payload.(events.StockLowLevelPayload)
	if !ok {
		t.Fatalf("unexpected payload type %T", emitted[0].Payload)
	}
	if payload.Quantity != 2 || payload.MinQuantity != 3 {
		t.Fatalf("payload = %+v", payload)
	}

	low, _ := f.service.ListLowStock(context.Background())
	if len(low) != 1 {
		t.Fatalf("low stock listing = %d items, want 1", len(low))
	}
}

func TestConsumeForOrderRefusesInactiveItem(t *testing.T) {
	f := newStockFixture(t)
	item, err := f.service.CreateItem(context.Background(), "admin-1", StockItemInput{
		Name: "Cooler", SKU: "FAN-1", Quantity: 4, UnitPrice: 6000,
	})
	if err != nil {
		t.Fatalf("seed item: %v", err)
	}
	if _, err := f.service.UpdateItem(context.Background(), item.ID, StockItemInput{
		Name: "Cooler", SKU: "FAN-1", UnitPrice: 6000,
	}, false); err != nil {
		t.Fatalf("deactivate item: %v", err)
	}

	if _, err := f.service.ConsumeForOrder(context.Background(), "tech-1", item.ID, "order-1", 1); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}
}

func TestUnknownItemReturnsNotFound(t *testing.T) {
	f := newStockFixture(t)
	if _, err := f.service.GetItem(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
