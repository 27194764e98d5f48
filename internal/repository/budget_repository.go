package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reparolabs/repairshop-service/internal/domain"
)

// BudgetFilter captures budget search parameters.
type BudgetFilter struct {
	CustomerID *string
	Statuses   []domain.BudgetStatus
	Limit      int
	Offset     int
}

// BudgetRepository encapsulates budget persistence.
type BudgetRepository interface {
	Create(ctx context.Context, budget *domain.Budget) error
	Update(ctx context.Context, budget *domain.Budget) error
	GetByID(ctx context.Context, id string) (*domain.Budget, error)
	ListWithFilter(ctx context.Context, filter BudgetFilter) ([]domain.Budget, error)
}

type budgetRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetRepository instantiates repository.
func NewBudgetRepository(pool *pgxpool.Pool) BudgetRepository {
	return &budgetRepository{pool: pool}
}

func (r *budgetRepository) Create(ctx context.Context, budget *domain.Budget) error {
	const query = `
        INSERT INTO budgets (customer_id, order_id, description, labor_amount, parts_amount, total_amount, status, valid_until)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		budget.CustomerID,
		budget.OrderID,
		budget.Description,
		budget.LaborAmount,
		budget.PartsAmount,
		budget.TotalAmount,
		budget.Status,
		budget.ValidUntil,
	).Scan(&budget.ID, &budget.CreatedAt, &budget.UpdatedAt)
}

func (r *budgetRepository) Update(ctx context.Context, budget *domain.Budget) error {
	const query = `
        UPDATE budgets SET order_id=$1, description=$2, labor_amount=$3, parts_amount=$4,
            total_amount=$5, status=$6, valid_until=$7, updated_at=NOW()
        WHERE id=$8`

	cmd, err := r.pool.Exec(ctx, query,
		budget.OrderID,
		budget.Description,
		budget.LaborAmount,
		budget.PartsAmount,
		budget.TotalAmount,
		budget.Status,
		budget.ValidUntil,
		budget.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *budgetRepository) GetByID(ctx context.Context, id string) (*domain.Budget, error) {
	const query = `
        SELECT id, customer_id, order_id, description, labor_amount, parts_amount, total_amount,
               status, valid_until, created_at, updated_at
        FROM budgets WHERE id=$1`

	var budget domain.Budget
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&budget.ID,
		&budget.CustomerID,
		&budget.OrderID,
		&budget.Description,
		&budget.LaborAmount,
		&budget.PartsAmount,
		&budget.TotalAmount,
		&budget.Status,
		&budget.ValidUntil,
		&budget.CreatedAt,
		&budget.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &budget, nil
}

func (r *budgetRepository) ListWithFilter(ctx context.Context, filter BudgetFilter) ([]domain.Budget, error) {
	base := `SELECT id, customer_id, order_id, description, labor_amount, parts_amount, total_amount,
                    status, valid_until, created_at, updated_at
             FROM budgets`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		clauses = append(clauses, fmt.Sprintf("customer_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
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

	budgets := []domain.Budget{}
	for rows.Next() {
		var budget domain.Budget
		if err := rows.Scan(
			&budget.ID,
			&budget.CustomerID,
			&budget.OrderID,
			&budget.Description,
			&budget.LaborAmount,
			&budget.PartsAmount,
			&budget.TotalAmount,
			&budget.Status,
			&budget.ValidUntil,
			&budget.CreatedAt,
			&budget.UpdatedAt,
		); err != nil {
			return nil, err
		}
		budgets = append(budgets, budget)
	}
	return budgets, rows.Err()
}
