package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reparolabs/repairshop-service/internal/domain"
)

// WebhookRepository persists endpoints and delivery attempts.
type WebhookRepository interface {
	CreateEndpoint(ctx context.Context, endpoint *domain.WebhookEndpoint) error
	UpdateEndpoint(ctx context.Context, endpoint *domain.WebhookEndpoint) error
	DeleteEndpoint(ctx context.Context, id string) error
	GetEndpointByID(ctx context.Context, id string) (*domain.WebhookEndpoint, error)
	ListEndpoints(ctx context.Context, activeOnly bool) ([]domain.WebhookEndpoint, error)
	CreateDelivery(ctx context.Context, delivery *domain.WebhookDelivery) error
	UpdateDelivery(ctx context.Context, delivery *domain.WebhookDelivery) error
	ListDeliveries(ctx context.Context, status *domain.DeliveryStatus, limit, offset int) ([]domain.WebhookDelivery, error)
}

type webhookRepository struct {
	pool *pgxpool.Pool
}

// NewWebhookRepository instantiates repository.
func NewWebhookRepository(pool *pgxpool.Pool) WebhookRepository {
	return &webhookRepository{pool: pool}
}

func (r *webhookRepository) CreateEndpoint(ctx context.Context, endpoint *domain.WebhookEndpoint) error {
	const query = `
        INSERT INTO webhook_endpoints (url, events, active)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		endpoint.URL,
		endpoint.Events,
		endpoint.Active,
	).Scan(&endpoint.ID, &endpoint.CreatedAt, &endpoint.UpdatedAt)
}

func (r *webhookRepository) UpdateEndpoint(ctx context.Context, endpoint *domain.WebhookEndpoint) error {
	const query = `
        UPDATE webhook_endpoints SET url=$1, events=$2, active=$3, updated_at=NOW()
        WHERE id=$4`

	cmd, err := r.pool.Exec(ctx, query,
		endpoint.URL,
		endpoint.Events,
		endpoint.Active,
		endpoint.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *webhookRepository) DeleteEndpoint(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM webhook_endpoints WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *webhookRepository) GetEndpointByID(ctx context.Context, id string) (*domain.WebhookEndpoint, error) {
	const query = `
        SELECT id, url, events, active, created_at, updated_at
        FROM webhook_endpoints WHERE id=$1`

	var endpoint domain.WebhookEndpoint
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&endpoint.ID,
		&endpoint.URL,
		&endpoint.Events,
		&endpoint.Active,
		&endpoint.CreatedAt,
		&endpoint.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &endpoint, nil
}

func (r *webhookRepository) ListEndpoints(ctx context.Context, activeOnly bool) ([]domain.WebhookEndpoint, error) {
	const query = `
        SELECT id, url, events, active, created_at, updated_at
        FROM webhook_endpoints WHERE (NOT $1 OR active) ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	endpoints := []domain.WebhookEndpoint{}
	for rows.Next() {
		var endpoint domain.WebhookEndpoint
		if err := rows.Scan(
			&endpoint.ID,
			&endpoint.URL,
			&endpoint.Events,
			&endpoint.Active,
			&endpoint.CreatedAt,
			&endpoint.UpdatedAt,
		); err != nil {
			return nil, err
		}
		endpoints = append(endpoints, endpoint)
	}
	return endpoints, rows.Err()
}

func (r *webhookRepository) CreateDelivery(ctx context.Context, delivery *domain.WebhookDelivery) error {
	const query = `
        INSERT INTO webhook_deliveries (endpoint_id, event_type, payload, status, attempts, last_error)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		delivery.EndpointID,
		delivery.EventType,
		delivery.Payload,
		delivery.Status,
		delivery.Attempts,
		delivery.LastError,
	).Scan(&delivery.ID, &delivery.CreatedAt, &delivery.UpdatedAt)
}

func (r *webhookRepository) UpdateDelivery(ctx context.Context, delivery *domain.WebhookDelivery) error {
	const query = `
        UPDATE webhook_deliveries SET status=$1, attempts=$2, last_error=$3, delivered_at=$4, updated_at=NOW()
        WHERE id=$5`

	cmd, err := r.pool.Exec(ctx, query,
		delivery.Status,
		delivery.Attempts,
		delivery.LastError,
		delivery.DeliveredAt,
		delivery.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *webhookRepository) ListDeliveries(ctx context.Context, status *domain.DeliveryStatus, limit, offset int) ([]domain.WebhookDelivery, error) {
	const query = `
        SELECT id, endpoint_id, event_type, payload, status, attempts, last_error, delivered_at, created_at, updated_at
        FROM webhook_deliveries
        WHERE ($1::text IS NULL OR status = $1)
        ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	deliveries := []domain.WebhookDelivery{}
	for rows.Next() {
		var delivery domain.WebhookDelivery
		if err := rows.Scan(
			&delivery.ID,
			&delivery.EndpointID,
			&delivery.EventType,
			&delivery.Payload,
			&delivery.Status,
			&delivery.Attempts,
			&delivery.LastError,
			&delivery.DeliveredAt,
			&delivery.CreatedAt,
			&delivery.UpdatedAt,
		); err != nil {
			return nil, err
		}
		deliveries = append(deliveries, delivery)
	}
	return deliveries, rows.Err()
}
