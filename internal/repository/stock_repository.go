package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reparolabs/repairshop-service/internal/domain"
)

// StockRepository encapsulates inventory persistence.
type StockRepository interface {
	CreateItem(ctx context.Context, item *domain.StockItem) error
	UpdateItem(ctx context.Context, item *domain.StockItem) error
	GetItemByID(ctx context.Context, id string) (*domain.StockItem, error)
	GetItemBySKU(ctx context.Context, sku string) (*domain.StockItem, error)
	ListItems(ctx context.Context, search string, limit, offset int) ([]domain.StockItem, error)
	ListLowStock(ctx context.Context) ([]domain.StockItem, error)
	CreateMovement(ctx context.Context, movement *domain.StockMovement) error
	ListMovements(ctx context.Context, itemID string, limit, offset int) ([]domain.StockMovement, error)
}

type stockRepository struct {
	pool *pgxpool.Pool
}

// NewStockRepository instantiates repository.
func NewStockRepository(pool *pgxpool.Pool) StockRepository {
	return &stockRepository{pool: pool}
}

func (r *stockRepository) CreateItem(ctx context.Context, item *domain.StockItem) error {
	const query = `
        INSERT INTO stock_items (name, sku, quantity, min_quantity, unit_price, active)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		item.Name,
		item.SKU,
		item.Quantity,
		item.MinQuantity,
		item.UnitPrice,
		item.Active,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.ErrSKUTaken
	}
	return err
}

func (r *stockRepository) UpdateItem(ctx context.Context, item *domain.StockItem) error {
	const query = `
        UPDATE stock_items SET name=$1, sku=$2, quantity=$3, min_quantity=$4, unit_price=$5, active=$6, updated_at=NOW()
        WHERE id=$7`

	cmd, err := r.pool.Exec(ctx, query,
		item.Name,
		item.SKU,
		item.Quantity,
		item.MinQuantity,
		item.UnitPrice,
		item.Active,
		item.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSKUTaken
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *stockRepository) GetItemByID(ctx context.Context, id string) (*domain.StockItem, error) {
	const query = `
        SELECT id, name, sku, quantity, min_quantity, unit_price, active, created_at, updated_at
        FROM stock_items WHERE id=$1`
	return r.scanItem(r.pool.QueryRow(ctx, query, id))
}

func (r *stockRepository) GetItemBySKU(ctx context.Context, sku string) (*domain.StockItem, error) {
	const query = `
        SELECT id, name, sku, quantity, min_quantity, unit_price, active, created_at, updated_at
        FROM stock_items WHERE sku=$1`
	return r.scanItem(r.pool.QueryRow(ctx, query, sku))
}

func (r *stockRepository) ListItems(ctx context.Context, search string, limit, offset int) ([]domain.StockItem, error) {
	const query = `
        SELECT id, name, sku, quantity, min_quantity, unit_price, active, created_at, updated_at
        FROM stock_items
        WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR sku ILIKE '%' || $1 || '%')
        ORDER BY name LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, search, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanItems(rows)
}

func (r *stockRepository) ListLowStock(ctx context.Context) ([]domain.StockItem, error) {
	const query = `
        SELECT id, name, sku, quantity, min_quantity, unit_price, active, created_at, updated_at
        FROM stock_items WHERE active AND quantity <= min_quantity ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanItems(rows)
}

func (r *stockRepository) CreateMovement(ctx context.Context, movement *domain.StockMovement) error {
	const query = `
        INSERT INTO stock_movements (stock_item_id, type, quantity, reason, order_id, actor_id)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		movement.StockItemID,
		movement.Type,
		movement.Quantity,
		movement.Reason,
		movement.OrderID,
		movement.ActorID,
	).Scan(&movement.ID, &movement.CreatedAt)
}

func (r *stockRepository) ListMovements(ctx context.Context, itemID string, limit, offset int) ([]domain.StockMovement, error) {
	const query = `
        SELECT id, stock_item_id, type, quantity, reason, order_id, actor_id, created_at
        FROM stock_movements WHERE stock_item_id=$1
        ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, itemID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	movements := []domain.StockMovement{}
	for rows.Next() {
		var movement domain.StockMovement
		if err := rows.Scan(
			&movement.ID,
			&movement.StockItemID,
			&movement.Type,
			&movement.Quantity,
			&movement.Reason,
			&movement.OrderID,
			&movement.ActorID,
			&movement.CreatedAt,
		); err != nil {
			return nil, err
		}
		movements = append(movements, movement)
	}
	return movements, rows.Err()
}

func (r *stockRepository) scanItem(row pgx.Row) (*domain.StockItem, error) {
	var item domain.StockItem
	if err := row.Scan(
		&item.ID,
		&item.Name,
		&item.SKU,
		&item.Quantity,
		&item.MinQuantity,
		&item.UnitPrice,
		&item.Active,
		&item.CreatedAt,
		&item.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &item, nil
}

func scanItems(rows pgx.Rows) ([]domain.StockItem, error) {
	items := []domain.StockItem{}
	for rows.Next() {
		var item domain.StockItem
		if err := rows.Scan(
			&item.ID,
			&item.Name,
			&item.SKU,
			&item.Quantity,
			&item.MinQuantity,
			&item.UnitPrice,
			&item.Active,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
