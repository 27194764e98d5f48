package worker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/reparolabs/repairshop-service/internal/config"
	"github.com/reparolabs/repairshop-service/internal/domain"
	"github.com/reparolabs/repairshop-service/internal/events"
)

type stubWebhookRepo struct {
	mu         sync.Mutex
	endpoints  []domain.WebhookEndpoint
	deliveries map[string]*domain.WebhookDelivery
	nextID     int
}

func newStubWebhookRepo(endpoints ...domain.WebhookEndpoint) *stubWebhookRepo {
	return &stubWebhookRepo{
		endpoints:  endpoints,
		deliveries: map[string]*domain.WebhookDelivery{},
	}
}

func (r *stubWebhookRepo) CreateEndpoint(ctx context.Context, endpoint *domain.WebhookEndpoint) error {
	return nil
}

func (r *stubWebhookRepo) UpdateEndpoint(ctx context.Context, endpoint *domain.WebhookEndpoint) error {
	return nil
}

func (r *stubWebhookRepo) DeleteEndpoint(ctx context.Context, id string) error { return nil }

func (r *stubWebhookRepo) GetEndpointByID(ctx context.Context, id string) (*domain.WebhookEndpoint, error) {
	return nil, domain.ErrNotFound
}

func (r *stubWebhookRepo) ListEndpoints(ctx context.Context, activeOnly bool) ([]domain.WebhookEndpoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.WebhookEndpoint{}
	for _, endpoint := range r.endpoints {
		if activeOnly && !endpoint.Active {
			continue
		}
		out = append(out, endpoint)
	}
	return out, nil
}

func (r *stubWebhookRepo) CreateDelivery(ctx context.Context, delivery *domain.WebhookDelivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	delivery.ID = string(rune('a' + r.nextID))
	copied := *delivery
	r.deliveries[delivery.ID] = &copied
	return nil
}

func (r *stubWebhookRepo) UpdateDelivery(ctx context.Context, delivery *domain.WebhookDelivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *delivery
	r.deliveries[delivery.ID] = &copied
	return nil
}

func (r *stubWebhookRepo) ListDeliveries(ctx context.Context, status *domain.DeliveryStatus, limit, offset int) ([]domain.WebhookDelivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.WebhookDelivery{}
	for _, delivery := range r.deliveries {
		if status != nil && delivery.Status != *status {
			continue
		}
		out = append(out, *delivery)
	}
	return out, nil
}

func (r *stubWebhookRepo) waitForTerminal(t *testing.T, deadline time.Duration) domain.WebhookDelivery {
	t.Helper()
	timeout := time.After(deadline)
	for {
		r.mu.Lock()
		for _, delivery := range r.deliveries {
			if delivery.Status != domain.DeliveryStatusPending {
				out := *delivery
				r.mu.Unlock()
				return out
			}
		}
		r.mu.Unlock()

		select {
		case <-timeout:
			t.Fatal("no delivery reached a terminal status in time")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func testConfig() config.WebhookConfig {
	return config.WebhookConfig{
		MaxAttempts:    3,
		BaseBackoffMS:  5,
		TimeoutSeconds: 2,
		QueueSize:      16,
		Workers:        1,
	}
}

func publishTestEvent(t *testing.T, worker *WebhookWorker) {
	t.Helper()
	dispatcher := events.NewInMemoryDispatcher()
	worker.Register(dispatcher)
	err := dispatcher.Publish(context.Background(), events.Event{
		ID:        "evt-1",
		Type:      events.EventOrderFinalized,
		Timestamp: time.Now().UTC(),
		Payload:   events.OrderFinalizedPayload{OrderID: "ord-1", ExternalKey: "OS-ABCD1234", TotalAmount: 15000},
	})
	if err != nil {
		t.Fatalf("publish returned error: %v", err)
	}
}

func TestWebhookWorkerDeliversToSubscribedEndpoint(t *testing.T) {
	received := make(chan []byte, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := make([]byte, r.ContentLength)
		r.Body.Read(body)
		received <- body
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	repo := newStubWebhookRepo(domain.WebhookEndpoint{
		ID:     "ep-1",
		URL:    server.URL,
		Events: []string{"order_finalized"},
		Active: true,
	})
	worker := NewWebhookWorker(repo, testConfig(), zap.NewNop())
	worker.Start()
	defer worker.Stop()

	publishTestEvent(t, worker)

	delivery := repo.waitForTerminal(t, 2*time.Second)
	if delivery.Status != domain.DeliveryStatusDelivered {
		t.Fatalf("status = %s, want DELIVERED (last error %q)", delivery.Status, delivery.LastError)
	}
	if delivery.Attempts != 1 {
		t.Fatalf("attempts = %d, want 1", delivery.Attempts)
	}
	if delivery.DeliveredAt == nil {
		t.Fatal("delivered_at not set")
	}

	select {
	case body := <-received:
		if len(body) == 0 {
			t.Fatal("endpoint received empty body")
		}
	case <-time.After(time.Second):
		t.Fatal("endpoint never received the request")
	}
}

func TestWebhookWorkerDeadLettersAfterExhaustedRetries(t *testing.T) {
	var hits int32
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	repo := newStubWebhookRepo(domain.WebhookEndpoint{
		ID:     "ep-1",
		URL:    server.URL,
		Active: true,
	})
	worker := NewWebhookWorker(repo, testConfig(), zap.NewNop())
	worker.Start()
	defer worker.Stop()

	publishTestEvent(t, worker)

	delivery := repo.waitForTerminal(t, 2*time.Second)
	if delivery.Status != domain.DeliveryStatusFailed {
		t.Fatalf("status = %s, want FAILED", delivery.Status)
	}
	if delivery.Attempts != 3 {
		t.Fatalf("attempts = %d, want 3", delivery.Attempts)
	}
	if delivery.LastError == "" {
		t.Fatal("last error not recorded")
	}

	mu.Lock()
	defer mu.Unlock()
	if hits != 3 {
		t.Fatalf("endpoint hit %d times, want 3", hits)
	}
}

func TestWebhookWorkerSkipsUnsubscribedEndpoints(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unsubscribed endpoint should not be called")
	}))
	defer server.Close()

	repo := newStubWebhookRepo(
		domain.WebhookEndpoint{ID: "ep-1", URL: server.URL, Events: []string{"order_created"}, Active: true},
		domain.WebhookEndpoint{ID: "ep-2", URL: server.URL, Active: false},
	)
	worker := NewWebhookWorker(repo, testConfig(), zap.NewNop())
	worker.Start()
	defer worker.Stop()

	publishTestEvent(t, worker)

	time.Sleep(100 * time.Millisecond)

	deliveries, _ := repo.ListDeliveries(context.Background(), nil, 100, 0)
	if len(deliveries) != 0 {
		t.Fatalf("expected no delivery rows, got %d", len(deliveries))
	}
}

func TestWebhookWorkerStopBlocksFurtherEnqueues(t *testing.T) {
	var hits int32
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	repo := newStubWebhookRepo(domain.WebhookEndpoint{
		ID:     "ep-1",
		URL:    server.URL,
		Events: []string{"order_finalized"},
		Active: true,
	})
	worker := NewWebhookWorker(repo, testConfig(), zap.NewNop())
	worker.Start()
	worker.Stop()

	// A publisher racing shutdown must not panic; its row stays PENDING.
	publishTestEvent(t, worker)

	deliveries, err := repo.ListDeliveries(context.Background(), nil, 0, 0)
	if err != nil {
		t.Fatalf("list deliveries: %v", err)
	}
	if len(deliveries) != 1 {
		t.Fatalf("delivery rows = %d, want 1", len(deliveries))
	}
	if deliveries[0].Status != domain.DeliveryStatusPending {
		t.Fatalf("status = %s, want PENDING", deliveries[0].Status)
	}
	if deliveries[0].Attempts != 0 {
		t.Fatalf("attempts = %d, want 0", deliveries[0].Attempts)
	}

	mu.Lock()
	defer mu.Unlock()
	if hits != 0 {
		t.Fatalf("endpoint hits = %d, want 0", hits)
	}
}
