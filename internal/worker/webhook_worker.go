package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/reparolabs/repairshop-service/internal/config"
	"github.com/reparolabs/repairshop-service/internal/domain"
	"github.com/reparolabs/repairshop-service/internal/events"
	"github.com/reparolabs/repairshop-service/internal/repository"
)

// deliveryJob is one queued event-to-endpoint delivery.
type deliveryJob struct {
	delivery *domain.WebhookDelivery
	url      string
}

// WebhookWorker fans domain events out to subscribed endpoints over HTTP.
// Each event/endpoint pair gets a persisted delivery row; rows that exhaust
// their attempts end up FAILED and act as the dead-letter record.
type WebhookWorker struct {
	webhooks repository.WebhookRepository
	client   *http.Client
	logger   *zap.Logger

	maxAttempts int
	baseBackoff time.Duration

	queue     chan deliveryJob
	workers   int
	wg        sync.WaitGroup
	cancel    context.CancelFunc
	startOnce sync.Once
	stopOnce  sync.Once

	mu     sync.Mutex
	closed bool
}

// NewWebhookWorker constructs the worker from delivery configuration.
func NewWebhookWorker(webhooks repository.WebhookRepository, cfg config.WebhookConfig, logger *zap.Logger) *WebhookWorker {
	return &WebhookWorker{
		webhooks:    webhooks,
		client:      &http.Client{Timeout: cfg.Timeout()},
		logger:      logger,
		maxAttempts: cfg.MaxAttempts,
		baseBackoff: cfg.BaseBackoff(),
		queue:       make(chan deliveryJob, cfg.QueueSize),
		workers:     cfg.Workers,
	}
}

// Register subscribes the worker to every outbound event type.
func (w *WebhookWorker) Register(dispatcher events.Dispatcher) {
	for _, eventType := range []events.EventType{
		events.EventOrderCreated,
		events.EventOrderStatusChanged,
		events.EventOrderFinalized,
		events.EventBudgetApproved,
		events.EventStockLowLevel,
	} {
		dispatcher.Subscribe(eventType, w.handleEvent)
	}
}

// Start spins up the delivery goroutines.
func (w *WebhookWorker) Start() {
	w.startOnce.Do(func() {
		ctx, cancel := context.WithCancel(context.Background())
		w.cancel = cancel
		for i := 0; i < w.workers; i++ {
			w.wg.Add(1)
			go w.run(ctx)
		}
	})
}

// Stop drains in-flight deliveries and shuts the workers down.
func (w *WebhookWorker) Stop() {
	w.stopOnce.Do(func() {
		if w.cancel != nil {
			w.cancel()
		}
		w.mu.Lock()
		w.closed = true
		close(w.queue)
		w.mu.Unlock()
		w.wg.Wait()
	})
}

// handleEvent persists a PENDING delivery row per subscribed endpoint and
// enqueues it. A full queue drops the job; the row stays PENDING for
// operator inspection.
func (w *WebhookWorker) handleEvent(ctx context.Context, event events.Event) error {
	endpoints, err := w.webhooks.ListEndpoints(ctx, true)
	if err != nil {
		w.logger.Warn("webhook endpoint lookup failed",
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	for _, endpoint := range endpoints {
		if !endpoint.Subscribed(string(event.Type)) {
			continue
		}

		delivery := &domain.WebhookDelivery{
			EndpointID: endpoint.ID,
			EventType:  string(event.Type),
			Payload:    payload,
			Status:     domain.DeliveryStatusPending,
		}
		if err := w.webhooks.CreateDelivery(ctx, delivery); err != nil {
			w.logger.Warn("webhook delivery row insert failed",
				zap.String("endpoint_id", endpoint.ID),
				zap.Error(err))
			continue
		}

		if !w.enqueue(deliveryJob{delivery: delivery, url: endpoint.URL}) {
			w.logger.Warn("webhook queue unavailable, delivery deferred",
				zap.String("delivery_id", delivery.ID),
				zap.String("endpoint_id", endpoint.ID))
		}
	}
	return nil
}

// enqueue hands a job to the workers without blocking. A stopped worker or a
// full queue leaves the delivery row PENDING.
func (w *WebhookWorker) enqueue(job deliveryJob) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return false
	}
	select {
	case w.queue <- job:
		return true
	default:
		return false
	}
}

func (w *WebhookWorker) run(ctx context.Context) {
	defer w.wg.Done()
	for job := range w.queue {
		w.deliver(ctx, job)
	}
}

// deliver attempts the HTTP POST up to maxAttempts times with exponential
// backoff, persisting the outcome after every attempt.
func (w *WebhookWorker) deliver(ctx context.Context, job deliveryJob) {
	delivery := job.delivery

	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		delivery.Attempts = attempt

		err := w.post(ctx, job.url, delivery.Payload)
		if err == nil {
			now := time.Now().UTC()
			delivery.Status = domain.DeliveryStatusDelivered
			delivery.DeliveredAt = &now
			delivery.LastError = ""
			w.persist(ctx, delivery)
			return
		}

		delivery.LastError = err.Error()
		if attempt == w.maxAttempts {
			delivery.Status = domain.DeliveryStatusFailed
			w.persist(ctx, delivery)
			w.logger.Warn("webhook delivery dead-lettered",
				zap.String("delivery_id", delivery.ID),
				zap.String("url", job.url),
				zap.Int("attempts", attempt),
				zap.Error(err))
			return
		}

		w.persist(ctx, delivery)

		backoff := w.baseBackoff * time.Duration(1<<(attempt-1))
		select {
		case <-ctx.Done():
			delivery.Status = domain.DeliveryStatusFailed
			delivery.LastError = "worker shutting down"
			w.persist(context.Background(), delivery)
			return
		case <-time.After(backoff):
		}
	}
}

func (w *WebhookWorker) post(ctx context.Context, url string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("endpoint responded %d", resp.StatusCode)
	}
	return nil
}

func (w *WebhookWorker) persist(ctx context.Context, delivery *domain.WebhookDelivery) {
	if err := w.webhooks.UpdateDelivery(ctx, delivery); err != nil {
		w.logger.Warn("webhook delivery update failed",
			zap.String("delivery_id", delivery.ID),
			zap.Error(err))
	}
}
