package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/attireworks/wardrobe/internal/api"
	"github.com/attireworks/wardrobe/internal/backend"
	"github.com/attireworks/wardrobe/internal/cache"
	"github.com/attireworks/wardrobe/internal/circuitbreaker"
	"github.com/attireworks/wardrobe/internal/config"
	"github.com/attireworks/wardrobe/internal/diff"
	"github.com/attireworks/wardrobe/internal/metrics"
	"github.com/attireworks/wardrobe/internal/notify"
	"github.com/attireworks/wardrobe/internal/observ"
	"github.com/attireworks/wardrobe/internal/poller"
	"github.com/attireworks/wardrobe/internal/redis"
	"github.com/attireworks/wardrobe/internal/sqs"
	"github.com/attireworks/wardrobe/internal/state"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting wardrobe notifier",
		zap.String("env", cfg.Env),
		zap.Int("port", cfg.Port),
		zap.String("backend_url", cfg.BackendURL),
		zap.String("scope", cfg.StateScope),
	)

	ctx := context.Background()

	// Rental backend client
	client := backend.New(backend.Config{
		BaseURL: cfg.BackendURL,
		Timeout: time.Duration(cfg.BackendTimeout) * time.Second,
		Token:   cfg.BackendToken,
	}, logger)

	if cfg.BackendToken == "" && cfg.BackendEmail != "" {
		if _, err := client.Login(ctx, backend.LoginParams{
			Email:    cfg.BackendEmail,
			Password: cfg.BackendPassword,
		}); err != nil {
			return fmt.Errorf("backend login failed: %w", err)
		}
	}

	// Redis holds the diff state and the ops API rate limits. Without
	// it we fall back to in-memory state, which forgets everything on
	// restart.
	redisClient, err := redis.New(ctx, redis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, logger)
	if err != nil {
		logger.Warn("redis unavailable, diff state will not survive restarts",
			zap.Error(err),
			zap.String("host", cfg.RedisHost),
		)
	}

	var store state.Store
	var rateLimiter *redis.RateLimiter
	if redisClient != nil {
		store = redis.NewSnapshotStore(redisClient, logger)
		rateLimiter = redis.NewRateLimiter(redisClient, logger, redis.RateLimitConfig{
			Limit:  100,
			Window: 1 * time.Minute,
		})
		defer redisClient.Close()
	} else {
		store = state.NewMemoryStore()
	}

	// Optional cache database for serving reads while the backend is
	// down.
	var repo *cache.Repository
	if cfg.CacheEnabled {
		db, err := cache.New(ctx, cache.Config{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			Database: cfg.DBName,
			SSLMode:  cfg.DBSSLMode,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to cache database: %w", err)
		}
		defer db.Close()
		repo = cache.NewRepository(db, logger)
	}

	// Delivery channels. Anything unconfigured is skipped; with no
	// channels at all, events only get logged.
	senders := []notify.Sender{}

	if cfg.SESToEmail != "" {
		sesSender, err := notify.NewSESSender(ctx, notify.SESConfig{
			Region:    cfg.AWSRegion,
			FromEmail: cfg.SESFromEmail,
			ToEmail:   cfg.SESToEmail,
		}, logger)
		if err != nil {
			logger.Warn("SES sender unavailable, email alerts disabled", zap.Error(err))
		} else {
			senders = append(senders, sesSender)
		}
	}

	if cfg.SNSPhone != "" {
		snsSender, err := notify.NewSNSSender(ctx, notify.SNSConfig{
			Region:      cfg.SNSRegion,
			PhoneNumber: cfg.SNSPhone,
		}, logger)
		if err != nil {
			logger.Warn("SNS sender unavailable, SMS alerts disabled", zap.Error(err))
		} else {
			senders = append(senders, snsSender)
		}
	}

	if cfg.WebhookURL != "" {
		senders = append(senders, notify.NewWebhookSender(notify.WebhookConfig{
			URL:     cfg.WebhookURL,
			Timeout: time.Duration(cfg.WebhookTimeout) * time.Second,
		}, logger))
	}

	if cfg.SQSQueueURL != "" {
		publisher, err := sqs.NewPublisher(ctx, sqs.Config{
			Region:   cfg.SQSRegion,
			QueueURL: cfg.SQSQueueURL,
		}, logger)
		if err != nil {
			logger.Warn("sqs publisher unavailable, event stream disabled", zap.Error(err))
		} else {
			senders = append(senders, publisher)
		}
	}

	if len(senders) == 0 {
		senders = append(senders, notify.NewLogSender(logger))
	}

	sender := notify.NewMultiSender(logger, senders...)

	logger.Info("delivery channels configured", zap.Int("channels", len(senders)))

	// Breaker, engine, poller
	breaker := circuitbreaker.New(circuitbreaker.Config{
		Name:        "rental-backend",
		MaxFailures: cfg.BreakerFailures,
	}, logger)

	engine := &diff.Engine{
		DeadlineWindow: cfg.DeadlineWindow,
		DedupDeadlines: cfg.DedupDeadlines,
	}

	var pollerCache poller.Cache
	if repo != nil {
		pollerCache = repo
	}

	p := poller.New(client, store, engine, sender, breaker, pollerCache, poller.Config{
		Scope:    cfg.StateScope,
		Interval: time.Duration(cfg.PollInterval) * time.Second,
		CronSpec: cfg.PollCron,
	}, logger)

	pollCtx, pollCancel := context.WithCancel(context.Background())
	defer pollCancel()

	go func() {
		if err := p.Start(pollCtx); err != nil {
			logger.Error("poller stopped", zap.Error(err))
		}
	}()

	logger.Info("background poller started",
		zap.Int("interval_seconds", cfg.PollInterval),
		zap.String("cron", cfg.PollCron),
	)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(metrics.Middleware)

	// Custom logging middleware
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration_ms", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	})

	// API routes
	var catalog api.Catalog
	if repo != nil {
		catalog = repo
	}
	handler := api.NewHandler(logger, p, store, catalog)

	r.Route("/v1", func(r chi.Router) {
		r.Use(api.RateLimitMiddleware(rateLimiter, logger, api.IPKeyFunc))

		r.Get("/events", handler.ListEvents)
		r.Get("/costumes", handler.ListCostumes)
		r.Get("/state", handler.GetState)
		r.Post("/poll", handler.TriggerPoll)
		r.Get("/breaker", handler.GetBreaker)
		r.Post("/breaker/reset", handler.ResetBreaker)
	})

	// Health check
	r.Get("/health", handler.Health)

	// Prometheus metrics endpoint
	r.Handle("/metrics", metrics.Handler())

	// Setup HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Listen for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or server error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))

		pollCancel()

		// Give outstanding requests 10 seconds to complete
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			srv.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}

		logger.Info("server stopped gracefully")
	}

	return nil
}
