// Package api exposes the ops surface of the notifier: recent events,
// the cached catalog, persisted diff state, a manual poll trigger, and
// breaker controls.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/attireworks/wardrobe/internal/circuitbreaker"
	"github.com/attireworks/wardrobe/internal/diff"
	"github.com/attireworks/wardrobe/internal/rental"
	"github.com/attireworks/wardrobe/internal/state"
)

// Trigger is the poller surface the API needs. *poller.Poller
// satisfies this.
type Trigger interface {
	RunPass(ctx context.Context) ([]diff.Event, error)
	Recent(n int) []diff.Event
	Breaker() *circuitbreaker.CircuitBreaker
	Scope() string
}

// Catalog reads the cached costume catalog. *cache.Repository
// satisfies this.
type Catalog interface {
	ListCostumes(ctx context.Context) ([]rental.Costume, error)
}

// ErrorResponse represents an error in problem+json format
type ErrorResponse struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Handler holds dependencies for API handlers
type Handler struct {
	logger  *zap.Logger
	trigger Trigger
	store   state.Store
	catalog Catalog // nil if no cache database configured
}

// NewHandler creates a new API handler.
func NewHandler(logger *zap.Logger, trigger Trigger, store state.Store, catalog Catalog) *Handler {
	return &Handler{
		logger:  logger,
		trigger: trigger,
		store:   store,
		catalog: catalog,
	}
}

// ListEvents handles GET /v1/events?limit=50
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 500 {
			limit = l
		}
	}

	events := h.trigger.Recent(limit)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"data":  events,
		"count": len(events),
	})
}

// ListCostumes handles GET /v1/costumes, served from the cache.
func (h *Handler) ListCostumes(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		h.writeError(w, http.StatusServiceUnavailable, "cache_disabled",
			"Costume cache not configured", "")
		return
	}

	costumes, err := h.catalog.ListCostumes(r.Context())
	if err != nil {
		h.logger.Error("failed to list cached costumes", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "database_error",
			"Failed to read costume cache", "")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"data":  costumes,
		"count": len(costumes),
	})
}

// GetState handles GET /v1/state, the persisted diff snapshot for the
// watcher's scope.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.Load(r.Context(), h.trigger.Scope())
	if err != nil {
		h.logger.Error("failed to load diff state",
			zap.Error(err),
			zap.String("scope", h.trigger.Scope()),
		)
		h.writeError(w, http.StatusInternalServerError, "state_error",
			"Failed to load diff state", "")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"scope": h.trigger.Scope(),
		"state": snap,
	})
}

// TriggerPoll handles POST /v1/poll, running a pass immediately.
func (h *Handler) TriggerPoll(w http.ResponseWriter, r *http.Request) {
	events, err := h.trigger.RunPass(r.Context())
	if err != nil {
		if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
			h.writeError(w, http.StatusServiceUnavailable, "breaker_open",
				"Backend unavailable", "The circuit breaker is open; try again later")
			return
		}
		h.logger.Error("manual poll failed", zap.Error(err))
		h.writeError(w, http.StatusBadGateway, "poll_failed",
			"Polling pass failed", err.Error())
		return
	}

	h.logger.Info("manual poll complete", zap.Int("events", len(events)))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"events": events,
		"count":  len(events),
	})
}

// GetBreaker handles GET /v1/breaker
func (h *Handler) GetBreaker(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(h.trigger.Breaker().Stats())
}

// ResetBreaker handles POST /v1/breaker/reset
func (h *Handler) ResetBreaker(w http.ResponseWriter, r *http.Request) {
	h.trigger.Breaker().Reset()
	h.logger.Info("breaker reset via ops API")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(h.trigger.Breaker().Stats())
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"breaker": h.trigger.Breaker().GetState().String(),
	})
}

func (h *Handler) writeError(w http.ResponseWriter, status int, errType, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Type:   errType,
		Title:  title,
		Status: status,
		Detail: detail,
	})
}
