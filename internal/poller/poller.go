// Package poller drives the fetch-diff-notify cycle against the
// rental backend.
package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/attireworks/wardrobe/internal/circuitbreaker"
	"github.com/attireworks/wardrobe/internal/diff"
	"github.com/attireworks/wardrobe/internal/metrics"
	"github.com/attireworks/wardrobe/internal/notify"
	"github.com/attireworks/wardrobe/internal/rental"
	"github.com/attireworks/wardrobe/internal/state"
)

// Source provides reservation and catalog snapshots. *backend.Client
// satisfies this.
type Source interface {
	AllReservations(ctx context.Context) ([]rental.Reservation, error)
	Costumes(ctx context.Context) ([]rental.Costume, error)
}

// Cache receives fetched snapshots for serving while the backend is
// down. Optional.
type Cache interface {
	ReplaceCostumes(ctx context.Context, costumes []rental.Costume) error
	ReplaceReservations(ctx context.Context, scope string, reservations []rental.Reservation) error
}

// Config holds poller settings.
type Config struct {
	// Scope partitions persisted diff state, one watcher per scope.
	Scope string

	// Interval between automatic passes.
	Interval time.Duration

	// CronSpec optionally schedules extra passes at fixed times, so
	// return reminders land at a predictable hour.
	CronSpec string

	// EventHistory caps the in-memory ring of recent events served
	// by the ops API.
	EventHistory int
}

// Poller runs polling passes. Passes are serialized; a manual trigger
// arriving during a scheduled pass waits its turn.
type Poller struct {
	source  Source
	store   state.Store
	engine  *diff.Engine
	sender  notify.Sender
	breaker *circuitbreaker.CircuitBreaker
	cache   Cache
	config  Config
	logger  *zap.Logger

	now func() time.Time

	mu sync.Mutex // serializes passes

	historyMu sync.Mutex
	history   []diff.Event
}

// New creates a poller.
func New(
	source Source,
	store state.Store,
	engine *diff.Engine,
	sender notify.Sender,
	breaker *circuitbreaker.CircuitBreaker,
	cache Cache,
	cfg Config,
	logger *zap.Logger,
) *Poller {
	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.EventHistory == 0 {
		cfg.EventHistory = 100
	}
	if cfg.Scope == "" {
		cfg.Scope = "default"
	}

	return &Poller{
		source:  source,
		store:   store,
		engine:  engine,
		sender:  sender,
		breaker: breaker,
		cache:   cache,
		config:  cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// RunPass executes one fetch-diff-notify cycle and returns the events
// it produced. State is saved before any notification goes out, so a
// crash mid-delivery drops notifications rather than repeating them.
func (p *Poller) RunPass(ctx context.Context) ([]diff.Event, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()

	if !p.breaker.Allow() {
		metrics.RecordBreakerRejection()
		metrics.RecordPollPass("breaker_open", time.Since(start))
		return nil, circuitbreaker.ErrCircuitOpen
	}

	fetched, err := p.source.AllReservations(ctx)
	if err != nil {
		p.breaker.RecordFailure()
		metrics.RecordBackendFetchFailure()
		metrics.RecordPollPass("fetch_failed", time.Since(start))
		p.logger.Error("reservation fetch failed", zap.Error(err))
		return nil, fmt.Errorf("fetch reservations: %w", err)
	}
	p.breaker.RecordSuccess()
	metrics.SetTrackedReservations(len(fetched))

	prior, err := p.store.Load(ctx, p.config.Scope)
	if err != nil {
		metrics.RecordPollPass("state_load_failed", time.Since(start))
		return nil, fmt.Errorf("load diff state: %w", err)
	}

	events, next := p.engine.Run(fetched, prior, p.now())

	// Persist before dispatch. Losing a notification beats sending
	// the same one twice.
	if err := p.store.Save(ctx, p.config.Scope, next); err != nil {
		metrics.RecordPollPass("state_save_failed", time.Since(start))
		return nil, fmt.Errorf("save diff state: %w", err)
	}

	if p.cache != nil {
		if err := p.cache.ReplaceReservations(ctx, p.config.Scope, fetched); err != nil {
			p.logger.Warn("reservation cache update failed", zap.Error(err))
		}
	}

	for _, event := range events {
		metrics.RecordEventDetected(string(event.Type))
		msg := notify.Render(event)
		if err := p.sender.Send(ctx, event, msg); err != nil {
			metrics.RecordEventDelivered("error")
			p.logger.Error("event delivery failed",
				zap.String("event_id", event.ID.String()),
				zap.String("event_type", string(event.Type)),
				zap.Error(err),
			)
			continue
		}
		metrics.RecordEventDelivered("ok")
	}

	p.remember(events)

	metrics.RecordPollPass("success", time.Since(start))
	p.logger.Info("polling pass complete",
		zap.String("scope", p.config.Scope),
		zap.Int("reservations", len(fetched)),
		zap.Int("events", len(events)),
		zap.Duration("duration", time.Since(start)),
	)

	return events, nil
}

// SyncCostumes refreshes the cached catalog.
func (p *Poller) SyncCostumes(ctx context.Context) error {
	if p.cache == nil {
		return nil
	}

	costumes, err := p.source.Costumes(ctx)
	if err != nil {
		return fmt.Errorf("fetch costumes: %w", err)
	}

	if err := p.cache.ReplaceCostumes(ctx, costumes); err != nil {
		return fmt.Errorf("replace costume cache: %w", err)
	}

	return nil
}

// Start runs passes until ctx is cancelled. One pass runs immediately,
// then on every tick, plus at any configured cron times.
func (p *Poller) Start(ctx context.Context) error {
	var schedule *cron.Cron
	if p.config.CronSpec != "" {
		schedule = cron.New()
		if _, err := schedule.AddFunc(p.config.CronSpec, func() {
			if _, err := p.RunPass(ctx); err != nil {
				p.logger.Warn("scheduled pass failed", zap.Error(err))
			}
		}); err != nil {
			return fmt.Errorf("invalid cron spec %q: %w", p.config.CronSpec, err)
		}
		schedule.Start()
		defer schedule.Stop()
	}

	if err := p.SyncCostumes(ctx); err != nil {
		p.logger.Warn("initial costume sync failed", zap.Error(err))
	}
	if _, err := p.RunPass(ctx); err != nil {
		p.logger.Warn("initial pass failed", zap.Error(err))
	}

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller stopping")
			return nil
		case <-ticker.C:
			if err := p.SyncCostumes(ctx); err != nil {
				p.logger.Warn("costume sync failed", zap.Error(err))
			}
			if _, err := p.RunPass(ctx); err != nil {
				p.logger.Warn("polling pass failed", zap.Error(err))
			}
		}
	}
}

// Recent returns up to n of the most recently detected events, newest
// last.
func (p *Poller) Recent(n int) []diff.Event {
	p.historyMu.Lock()
	defer p.historyMu.Unlock()

	if n <= 0 || n > len(p.history) {
		n = len(p.history)
	}
	out := make([]diff.Event, n)
	copy(out, p.history[len(p.history)-n:])
	return out
}

// Breaker exposes the breaker for the ops API.
func (p *Poller) Breaker() *circuitbreaker.CircuitBreaker {
	return p.breaker
}

// Scope returns the configured state scope.
func (p *Poller) Scope() string {
	return p.config.Scope
}

func (p *Poller) remember(events []diff.Event) {
	if len(events) == 0 {
		return
	}

	p.historyMu.Lock()
	defer p.historyMu.Unlock()

	p.history = append(p.history, events...)
	if over := len(p.history) - p.config.EventHistory; over > 0 {
		p.history = append(p.history[:0:0], p.history[over:]...)
	}
}
