package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reparolabs/repairshop-service/internal/domain"
)

// OrderFilter captures service-order search parameters.
type OrderFilter struct {
	CustomerID   *string
	TechnicianID *string
	Statuses     []domain.OrderStatus
	SearchTerm   *string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	Limit        int
	Offset       int
}

// OrderRepository encapsulates service-order persistence.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.ServiceOrder) error
	Update(ctx context.Context, order *domain.ServiceOrder) error
	GetByID(ctx context.Context, id string) (*domain.ServiceOrder, error)
	GetByExternalKey(ctx context.Context, key string) (*domain.ServiceOrder, error)
	ListWithFilter(ctx context.Context, filter OrderFilter) ([]domain.ServiceOrder, error)
	CountOpenByCustomer(ctx context.Context, customerID string) (int, error)
	AddPart(ctx context.Context, part *domain.OrderPart) error
	ListParts(ctx context.Context, orderID string) ([]domain.OrderPart, error)
}

type orderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository instantiates repository.
func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &orderRepository{pool: pool}
}

func (r *orderRepository) Create(ctx context.Context, order *domain.ServiceOrder) error {
	const query = `
        INSERT INTO service_orders (external_key, customer_id, attendant_id, technician_id,
            equipment, brand, defect_description, diagnosis, status, labor_amount, parts_amount, total_amount)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		order.ExternalKey,
		order.CustomerID,
		order.AttendantID,
		order.TechnicianID,
		order.Equipment,
		order.Brand,
		order.DefectDescription,
		order.Diagnosis,
		order.Status,
		order.LaborAmount,
		order.PartsAmount,
		order.TotalAmount,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
}

func (r *orderRepository) Update(ctx context.Context, order *domain.ServiceOrder) error {
	const query = `
        UPDATE service_orders SET technician_id=$1, equipment=$2, brand=$3, defect_description=$4,
            diagnosis=$5, status=$6, labor_amount=$7, parts_amount=$8, total_amount=$9,
            finalized_at=$10, updated_at=NOW()
        WHERE id=$11`
	cmd, err := r.pool.Exec(ctx, query,
		order.TechnicianID,
		order.Equipment,
		order.Brand,
		order.DefectDescription,
		order.Diagnosis,
		order.Status,
		order.LaborAmount,
		order.PartsAmount,
		order.TotalAmount,
		order.FinalizedAt,
		order.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.ServiceOrder, error) {
	const query = `
        SELECT id, external_key, customer_id, attendant_id, technician_id, equipment, brand,
               defect_description, diagnosis, status, labor_amount, parts_amount, total_amount,
               created_at, updated_at, finalized_at
        FROM service_orders WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *orderRepository) GetByExternalKey(ctx context.Context, key string) (*domain.ServiceOrder, error) {
	const query = `
        SELECT id, external_key, customer_id, attendant_id, technician_id, equipment, brand,
               defect_description, diagnosis, status, labor_amount, parts_amount, total_amount,
               created_at, updated_at, finalized_at
        FROM service_orders WHERE external_key=$1`
	return r.fetchSingle(ctx, query, key)
}

func (r *orderRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.ServiceOrder, error) {
	var order domain.ServiceOrder
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&order.ID,
		&order.ExternalKey,
		&order.CustomerID,
		&order.AttendantID,
		&order.TechnicianID,
		&order.Equipment,
		&order.Brand,
		&order.DefectDescription,
		&order.Diagnosis,
		&order.Status,
		&order.LaborAmount,
		&order.PartsAmount,
		&order.TotalAmount,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.FinalizedAt,
	); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) ListWithFilter(ctx context.Context, filter OrderFilter) ([]domain.ServiceOrder, error) {
	base := `SELECT id, external_key, customer_id, attendant_id, technician_id, equipment, brand,
                    defect_description, diagnosis, status, labor_amount, parts_amount, total_amount,
                    created_at, updated_at, finalized_at
             FROM service_orders`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		clauses = append(clauses, fmt.Sprintf("customer_id=$%d", len(args)))
	}
	if filter.TechnicianID != nil {
		args = append(args, *filter.TechnicianID)
		clauses = append(clauses, fmt.Sprintf("technician_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(equipment) LIKE %s OR LOWER(defect_description) LIKE %s OR LOWER(external_key) LIKE %s)", placeholder, placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

func (r *orderRepository) CountOpenByCustomer(ctx context.Context, customerID string) (int, error) {
	const query = `
        SELECT COUNT(*) FROM service_orders
        WHERE customer_id=$1 AND status NOT IN ($2, $3)`
	var count int
	err := r.pool.QueryRow(ctx, query, customerID, domain.OrderStatusDelivered, domain.OrderStatusCancelled).Scan(&count)
	return count, err
}

func (r *orderRepository) AddPart(ctx context.Context, part *domain.OrderPart) error {
	const query = `
        INSERT INTO order_parts (order_id, stock_item_id, quantity, unit_price)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		part.OrderID,
		part.StockItemID,
		part.Quantity,
		part.UnitPrice,
	).Scan(&part.ID, &part.CreatedAt)
}

func (r *orderRepository) ListParts(ctx context.Context, orderID string) ([]domain.OrderPart, error) {
	const query = `
        SELECT id, order_id, stock_item_id, quantity, unit_price, created_at
        FROM order_parts WHERE order_id=$1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	parts := []domain.OrderPart{}
	for rows.Next() {
		var part domain.OrderPart
		if err := rows.Scan(
			&part.ID,
			&part.OrderID,
			&part.StockItemID,
			&part.Quantity,
			&part.UnitPrice,
			&part.CreatedAt,
		); err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	return parts, rows.Err()
}

func scanOrders(rows pgx.Rows) ([]domain.ServiceOrder, error) {
	var result []domain.ServiceOrder
	for rows.Next() {
		var order domain.ServiceOrder
		if err := rows.Scan(
			&order.ID,
			&order.ExternalKey,
			&order.CustomerID,
			&order.AttendantID,
			&order.TechnicianID,
			&order.Equipment,
			&order.Brand,
			&order.DefectDescription,
			&order.Diagnosis,
			&order.Status,
			&order.LaborAmount,
			&order.PartsAmount,
			&order.TotalAmount,
			&order.CreatedAt,
			&order.UpdatedAt,
			&order.FinalizedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, order)
	}
	return result, rows.Err()
}
