package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/attireworks/wardrobe/internal/circuitbreaker"
	"github.com/attireworks/wardrobe/internal/diff"
	"github.com/attireworks/wardrobe/internal/rental"
	"github.com/attireworks/wardrobe/internal/state"
)

type fakeTrigger struct {
	events  []diff.Event
	passErr error
	breaker *circuitbreaker.CircuitBreaker
	runs    int
}

func (f *fakeTrigger) RunPass(ctx context.Context) ([]diff.Event, error) {
	f.runs++
	if f.passErr != nil {
		return nil, f.passErr
	}
	return f.events, nil
}

func (f *fakeTrigger) Recent(n int) []diff.Event {
	if n <= 0 || n > len(f.events) {
		n = len(f.events)
	}
	return f.events[:n]
}

func (f *fakeTrigger) Breaker() *circuitbreaker.CircuitBreaker { return f.breaker }

func (f *fakeTrigger) Scope() string { return "user:1" }

type fakeCatalog struct {
	costumes []rental.Costume
	err      error
}

func (f *fakeCatalog) ListCostumes(ctx context.Context) ([]rental.Costume, error) {
	return f.costumes, f.err
}

func newTestHandler(trigger *fakeTrigger, catalog Catalog) (*Handler, *state.MemoryStore) {
	if trigger.breaker == nil {
		trigger.breaker = circuitbreaker.New(circuitbreaker.DefaultConfig("test"), zap.NewNop())
	}
	store := state.NewMemoryStore()
	return NewHandler(zap.NewNop(), trigger, store, catalog), store
}

func TestListEvents(t *testing.T) {
	trigger := &fakeTrigger{events: []diff.Event{
		{ID: uuid.New(), Type: diff.TypeNewReservation, OccurredAt: time.Now()},
		{ID: uuid.New(), Type: diff.TypeDeadline, OccurredAt: time.Now()},
	}}
	h, _ := newTestHandler(trigger, nil)

	req := httptest.NewRequest("GET", "/v1/events", nil)
	rec := httptest.NewRecorder()
	h.ListEvents(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body.Count != 2 {
		t.Errorf("count = %d, want 2", body.Count)
	}
}

func TestListCostumes_FromCache(t *testing.T) {
	h, _ := newTestHandler(&fakeTrigger{}, &fakeCatalog{
		costumes: []rental.Costume{{ID: 1, Name: "Pirate"}},
	})

	rec := httptest.NewRecorder()
	h.ListCostumes(rec, httptest.NewRequest("GET", "/v1/costumes", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestListCostumes_NoCacheConfigured(t *testing.T) {
	h, _ := newTestHandler(&fakeTrigger{}, nil)

	rec := httptest.NewRecorder()
	h.ListCostumes(rec, httptest.NewRequest("GET", "/v1/costumes", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestGetState(t *testing.T) {
	h, store := newTestHandler(&fakeTrigger{}, nil)

	snap := state.New()
	snap.SeenPendingIDs[42] = true
	if err := store.Save(context.Background(), "user:1", snap); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	rec := httptest.NewRecorder()
	h.GetState(rec, httptest.NewRequest("GET", "/v1/state", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Scope string         `json:"scope"`
		State state.Snapshot `json:"state"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body.Scope != "user:1" || !body.State.SeenPendingIDs[42] {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestTriggerPoll(t *testing.T) {
	trigger := &fakeTrigger{events: []diff.Event{{ID: uuid.New(), Type: diff.TypeStatusChange}}}
	h, _ := newTestHandler(trigger, nil)

	rec := httptest.NewRecorder()
	h.TriggerPoll(rec, httptest.NewRequest("POST", "/v1/poll", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if trigger.runs != 1 {
		t.Errorf("runs = %d, want 1", trigger.runs)
	}
}

func TestTriggerPoll_BreakerOpen(t *testing.T) {
	trigger := &fakeTrigger{passErr: circuitbreaker.ErrCircuitOpen}
	h, _ := newTestHandler(trigger, nil)

	rec := httptest.NewRecorder()
	h.TriggerPoll(rec, httptest.NewRequest("POST", "/v1/poll", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestTriggerPoll_BackendError(t *testing.T) {
	trigger := &fakeTrigger{passErr: errors.New("fetch failed")}
	h, _ := newTestHandler(trigger, nil)

	rec := httptest.NewRecorder()
	h.TriggerPoll(rec, httptest.NewRequest("POST", "/v1/poll", nil))

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestBreakerEndpoints(t *testing.T) {
	h, _ := newTestHandler(&fakeTrigger{}, nil)

	rec := httptest.NewRecorder()
	h.GetBreaker(rec, httptest.NewRequest("GET", "/v1/breaker", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	var stats circuitbreaker.Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if stats.State != "closed" {
		t.Errorf("state = %q, want closed", stats.State)
	}

	rec = httptest.NewRecorder()
	h.ResetBreaker(rec, httptest.NewRequest("POST", "/v1/breaker/reset", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("reset status = %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	h, _ := newTestHandler(&fakeTrigger{}, nil)

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q", body["status"])
	}
}
