package service

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/reparolabs/repairshop-service/internal/domain"
	"github.com/reparolabs/repairshop-service/internal/repository"
	apperrors "github.com/reparolabs/repairshop-service/pkg/util/errorutil"
)

// WebhookService manages operator-configured delivery endpoints.
type WebhookService struct {
	webhooks repository.WebhookRepository
}

// WebhookEndpointInput describes endpoint create/update payload.
type WebhookEndpointInput struct {
	URL    string
	Events []string
	Active bool
}

// NewWebhookService constructs the service.
func NewWebhookService(webhooks repository.WebhookRepository) *WebhookService {
	return &WebhookService{webhooks: webhooks}
}

// CreateEndpoint registers a delivery target.
func (s *WebhookService) CreateEndpoint(ctx context.Context, input WebhookEndpointInput) (*domain.WebhookEndpoint, error) {
	if err := validateEndpointURL(input.URL); err != nil {
		return nil, err
	}

	endpoint := &domain.WebhookEndpoint{
		URL:    strings.TrimSpace(input.URL),
		Events: input.Events,
		Active: input.Active,
	}
	if err := s.webhooks.CreateEndpoint(ctx, endpoint); err != nil {
		return nil, err
	}
	return endpoint, nil
}

// UpdateEndpoint replaces endpoint settings.
func (s *WebhookService) UpdateEndpoint(ctx context.Context, id string, input WebhookEndpointInput) (*domain.WebhookEndpoint, error) {
	if err := validateEndpointURL(input.URL); err != nil {
		return nil, err
	}

	endpoint, err := s.getEndpoint(ctx, id)
	if err != nil {
		return nil, err
	}

	endpoint.URL = strings.TrimSpace(input.URL)
	endpoint.Events = input.Events
	endpoint.Active = input.Active
	if err := s.webhooks.UpdateEndpoint(ctx, endpoint); err != nil {
		return nil, err
	}
	return endpoint, nil
}

// DeleteEndpoint removes a delivery target.
func (s *WebhookService) DeleteEndpoint(ctx context.Context, id string) error {
	if _, err := s.getEndpoint(ctx, id); err != nil {
		return err
	}
	return s.webhooks.DeleteEndpoint(ctx, id)
}

// ListEndpoints returns all configured endpoints.
func (s *WebhookService) ListEndpoints(ctx context.Context) ([]domain.WebhookEndpoint, error) {
	return s.webhooks.ListEndpoints(ctx, false)
}

// ListDeliveries returns delivery attempts, optionally by status. FAILED is
// the dead-letter view.
func (s *WebhookService) ListDeliveries(ctx context.Context, status *domain.DeliveryStatus, limit, offset int) ([]domain.WebhookDelivery, error) {
	return s.webhooks.ListDeliveries(ctx, status, limit, offset)
}

func (s *WebhookService) getEndpoint(ctx context.Context, id string) (*domain.WebhookEndpoint, error) {
	endpoint, err := s.webhooks.GetEndpointByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return endpoint, nil
}

func validateEndpointURL(raw string) error {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return apperrors.NewValidationError("invalid webhook url", map[string]any{"url": "must be an absolute http(s) url"})
	}
	return nil
}
