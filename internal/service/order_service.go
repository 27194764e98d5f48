package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/reparolabs/repairshop-service/internal/domain"
	"github.com/reparolabs/repairshop-service/internal/events"
	"github.com/reparolabs/repairshop-service/internal/repository"
)

// OrderService coordinates service-order workflows.
type OrderService struct {
	orders     repository.OrderRepository
	customers  repository.CustomerRepository
	users      repository.UserRepository
	stock      *StockService
	audit      repository.AuditRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// OrderDependencies bundles requirements for the order service.
type OrderDependencies struct {
	OrderRepo    repository.OrderRepository
	CustomerRepo repository.CustomerRepository
	UserRepo     repository.UserRepository
	Stock        *StockService
	AuditRepo    repository.AuditRepository
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// OrderCreateInput describes intake payload.
type OrderCreateInput struct {
	CustomerID        string
	Equipment         string
	Brand             string
	DefectDescription string
	LaborAmount       int64
}

// OrderListFilter describes listing filters.
type OrderListFilter struct {
	CustomerID   *string
	TechnicianID *string
	Statuses     []domain.OrderStatus
	SearchTerm   *string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	Limit        int
	Offset       int
}

// NewOrderService constructs the service.
func NewOrderService(deps OrderDependencies) *OrderService {
	return &OrderService{
		orders:     deps.OrderRepo,
		customers:  deps.CustomerRepo,
		users:      deps.UserRepo,
		stock:      deps.Stock,
		audit:      deps.AuditRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// CreateOrder registers a repair intake for a customer.
func (s *OrderService) CreateOrder(ctx context.Context, attendantID string, input OrderCreateInput) (*domain.ServiceOrder, error) {
	if _, err := s.customers.GetByID(ctx, input.CustomerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	order := &domain.ServiceOrder{
		ExternalKey:       generateOrderKey(),
		CustomerID:        input.CustomerID,
		AttendantID:       attendantID,
		Equipment:         strings.TrimSpace(input.Equipment),
		Brand:             strings.TrimSpace(input.Brand),
		DefectDescription: strings.TrimSpace(input.DefectDescription),
		Status:            domain.OrderStatusReceived,
		LaborAmount:       input.LaborAmount,
		TotalAmount:       input.LaborAmount,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, attendantID, domain.AuditOrderCreated, "service order created: "+order.ExternalKey)
	s.publishEvent(ctx, events.Event{
		Type:    events.EventOrderCreated,
		ActorID: attendantID,
		Payload: events.OrderCreatedPayload{
			OrderID:     order.ID,
			ExternalKey: order.ExternalKey,
			CustomerID:  order.CustomerID,
			Equipment:   order.Equipment,
			Defect:      order.DefectDescription,
		},
	})
	return order, nil
}

// GetOrder fetches an order with its consumed parts.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*domain.ServiceOrder, []domain.OrderPart, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, err
	}
	parts, err := s.orders.ListParts(ctx, order.ID)
	if err != nil {
		return nil, nil, err
	}
	return order, parts, nil
}

// ListOrders returns paginated orders matching the filter.
func (s *OrderService) ListOrders(ctx context.Context, filter OrderListFilter) ([]domain.ServiceOrder, error) {
	return s.orders.ListWithFilter(ctx, repository.OrderFilter{
		CustomerID:   filter.CustomerID,
		TechnicianID: filter.TechnicianID,
		Statuses:     filter.Statuses,
		SearchTerm:   filter.SearchTerm,
		CreatedFrom:  filter.CreatedFrom,
		CreatedTo:    filter.CreatedTo,
		Limit:        filter.Limit,
		Offset:       filter.Offset,
	})
}

// UpdateStatus transitions an order between lifecycle states.
func (s *OrderService) UpdateStatus(ctx context.Context, actorID, orderID string, newStatus domain.OrderStatus) (*domain.ServiceOrder, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if !isValidTransition(order.Status, newStatus) {
		return nil, domain.ErrInvalidTransition
	}

	oldStatus := order.Status
	order.Status = newStatus
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventOrderStatusChanged,
		ActorID: actorID,
		Payload: events.OrderStatusChangedPayload{
			OrderID:     order.ID,
			ExternalKey: order.ExternalKey,
			OldStatus:   oldStatus,
			NewStatus:   newStatus,
		},
	})
	return order, nil
}

// AssignTechnician sets the responsible technician.
func (s *OrderService) AssignTechnician(ctx context.Context, orderID, technicianID string) (*domain.ServiceOrder, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if order.Status.Terminal() {
		return nil, domain.ErrOrderFinalized
	}

	technician, err := s.users.GetByID(ctx, technicianID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if !technician.Active || !technician.Role.CanAccess(domain.RoleTechnician, domain.RoleAdmin) {
		return nil, domain.ErrNotFound
	}

	order.TechnicianID = &technician.ID
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// SetDiagnosis records the technician's findings and labor estimate.
func (s *OrderService) SetDiagnosis(ctx context.Context, orderID, diagnosis string, laborAmount int64) (*domain.ServiceOrder, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if order.Status.Terminal() {
		return nil, domain.ErrOrderFinalized
	}

	order.Diagnosis = strings.TrimSpace(diagnosis)
	if laborAmount >= 0 {
		order.LaborAmount = laborAmount
	}
	order.TotalAmount = order.LaborAmount + order.PartsAmount
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// AddPart consumes a stock item for the order and rolls its price into the
// order totals. Stock is decremented through a movement record.
func (s *OrderService) AddPart(ctx context.Context, actorID, orderID, stockItemID string, quantity int) (*domain.ServiceOrder, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if order.Status.Terminal() {
		return nil, domain.ErrOrderFinalized
	}

	item, err := s.stock.ConsumeForOrder(ctx, actorID, stockItemID, order.ID, quantity)
	if err != nil {
		return nil, err
	}

	part := &domain.OrderPart{
		OrderID:     order.ID,
		StockItemID: item.ID,
		Quantity:    quantity,
		UnitPrice:   item.UnitPrice,
	}
	if err := s.orders.AddPart(ctx, part); err != nil {
		// Return the consumed quantity so the failed attach leaves no
		// phantom OUT movement behind.
		if _, rerr := s.stock.RecordMovement(ctx, actorID, item.ID, domain.MovementIn, quantity, "returned after failed part attach"); rerr != nil {
			s.logger.Error("stock return after failed part attach",
				zap.String("order_id", order.ID),
				zap.String("stock_item_id", item.ID),
				zap.Error(rerr))
		}
		return nil, err
	}

	order.PartsAmount += int64(quantity) * item.UnitPrice
	order.TotalAmount = order.LaborAmount + order.PartsAmount
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// FinalizeOrder delivers a ready order. The webhook notification is queued
// asynchronously; its failure never undoes the finalization.
func (s *OrderService) FinalizeOrder(ctx context.Context, actorID, orderID string) (*domain.ServiceOrder, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if order.Status == domain.OrderStatusDelivered {
		return nil, domain.ErrOrderFinalized
	}
	if !isValidTransition(order.Status, domain.OrderStatusDelivered) {
		return nil, domain.ErrInvalidTransition
	}

	now := time.Now()
	order.Status = domain.OrderStatusDelivered
	order.FinalizedAt = &now
	order.TotalAmount = order.LaborAmount + order.PartsAmount
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actorID, domain.AuditOrderFinalized, "service order finalized: "+order.ExternalKey)
	s.publishEvent(ctx, events.Event{
		Type:    events.EventOrderFinalized,
		ActorID: actorID,
		Payload: events.OrderFinalizedPayload{
			OrderID:     order.ID,
			ExternalKey: order.ExternalKey,
			CustomerID:  order.CustomerID,
			TotalAmount: order.TotalAmount,
		},
	})
	return order, nil
}

func (s *OrderService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func (s *OrderService) recordAudit(ctx context.Context, actorID, action, description string) {
	if s.audit == nil {
		return
	}
	entry := &domain.AuditEntry{ActorID: &actorID, Action: action, Description: description}
	if err := s.audit.Create(ctx, entry); err != nil {
		s.logger.Warn("audit append failed", zap.String("action", action), zap.Error(err))
	}
}

func generateOrderKey() string {
	return "OS-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

var allowedTransitions = map[domain.OrderStatus][]domain.OrderStatus{
	domain.OrderStatusReceived:      {domain.OrderStatusInRepair, domain.OrderStatusCancelled},
	domain.OrderStatusInRepair:      {domain.OrderStatusAwaitingParts, domain.OrderStatusReady, domain.OrderStatusCancelled},
	domain.OrderStatusAwaitingParts: {domain.OrderStatusInRepair, domain.OrderStatusCancelled},
	domain.OrderStatusReady:         {domain.OrderStatusDelivered, domain.OrderStatusInRepair},
	domain.OrderStatusDelivered:     {},
	domain.OrderStatusCancelled:     {},
}

func isValidTransition(current, next domain.OrderStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}
