// Package config loads service settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Port     int
	LogLevel string
	Env      string

	// Rental backend
	BackendURL      string
	BackendEmail    string
	BackendPassword string
	BackendToken    string // preissued token, skips login
	BackendTimeout  int    // seconds

	// Polling
	PollInterval    int    // seconds between passes
	PollCron        string // optional cron spec for fixed-time passes
	StateScope      string // partitions persisted diff state
	DeadlineWindow  int    // days ahead to warn about return deadlines
	DedupDeadlines  bool   // suppress repeat deadline reminders
	BreakerFailures int    // consecutive fetch failures before opening

	// Cache database (optional)
	CacheEnabled bool
	DBHost       string
	DBPort       int
	DBUser       string
	DBPassword   string
	DBName       string
	DBSSLMode    string

	// Redis config
	RedisHost     string
	RedisPort     int
	RedisPassword string
	RedisDB       int

	// AWS Services
	AWSRegion    string
	SESFromEmail string
	SESToEmail   string // operator inbox for reservation alerts
	SNSRegion    string
	SNSPhone     string // operator phone for SMS alerts

	// SQS event stream
	SQSRegion   string
	SQSQueueURL string

	// Webhook config
	WebhookURL     string
	WebhookTimeout int // seconds
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	cfg := &Config{
		Port:     8080,
		LogLevel: "info",
		Env:      "development",

		BackendURL:     "http://localhost:8000/api",
		BackendTimeout: 15,

		PollInterval:    300,
		StateScope:      "default",
		DeadlineWindow:  3,
		BreakerFailures: 5,

		// Local postgres defaults
		DBHost:    "localhost",
		DBPort:    5432,
		DBUser:    "wardrobe",
		DBName:    "wardrobe",
		DBSSLMode: "disable",

		// Redis defaults
		RedisHost: "localhost",
		RedisPort: 6379,

		AWSRegion:      "us-east-1",
		SESFromEmail:   "noreply@wardrobe.local",
		WebhookTimeout: 30,
	}

	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
		cfg.Port = p
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	if env := os.Getenv("ENV"); env != "" {
		cfg.Env = env
	}

	// Rental backend
	if url := os.Getenv("BACKEND_URL"); url != "" {
		cfg.BackendURL = url
	}

	if email := os.Getenv("BACKEND_EMAIL"); email != "" {
		cfg.BackendEmail = email
	}

	if password := os.Getenv("BACKEND_PASSWORD"); password != "" {
		cfg.BackendPassword = password
	}

	if token := os.Getenv("BACKEND_TOKEN"); token != "" {
		cfg.BackendToken = token
	}

	if timeout := os.Getenv("BACKEND_TIMEOUT"); timeout != "" {
		t, err := strconv.Atoi(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid BACKEND_TIMEOUT: %w", err)
		}
		cfg.BackendTimeout = t
	}

	// Polling
	if interval := os.Getenv("POLL_INTERVAL"); interval != "" {
		i, err := strconv.Atoi(interval)
		if err != nil {
			return nil, fmt.Errorf("invalid POLL_INTERVAL: %w", err)
		}
		cfg.PollInterval = i
	}

	if spec := os.Getenv("POLL_CRON"); spec != "" {
		cfg.PollCron = spec
	}

	if scope := os.Getenv("STATE_SCOPE"); scope != "" {
		cfg.StateScope = scope
	}

	if window := os.Getenv("DEADLINE_WINDOW_DAYS"); window != "" {
		w, err := strconv.Atoi(window)
		if err != nil {
			return nil, fmt.Errorf("invalid DEADLINE_WINDOW_DAYS: %w", err)
		}
		cfg.DeadlineWindow = w
	}

	if dedup := os.Getenv("DEDUP_DEADLINES"); dedup != "" {
		d, err := strconv.ParseBool(dedup)
		if err != nil {
			return nil, fmt.Errorf("invalid DEDUP_DEADLINES: %w", err)
		}
		cfg.DedupDeadlines = d
	}

	if failures := os.Getenv("BREAKER_FAILURES"); failures != "" {
		f, err := strconv.Atoi(failures)
		if err != nil {
			return nil, fmt.Errorf("invalid BREAKER_FAILURES: %w", err)
		}
		cfg.BreakerFailures = f
	}

	// Cache database
	if enabled := os.Getenv("CACHE_ENABLED"); enabled != "" {
		e, err := strconv.ParseBool(enabled)
		if err != nil {
			return nil, fmt.Errorf("invalid CACHE_ENABLED: %w", err)
		}
		cfg.CacheEnabled = e
	}

	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.DBHost = host
	}

	if port := os.Getenv("DB_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid DB_PORT: %w", err)
		}
		cfg.DBPort = p
	}

	if user := os.Getenv("DB_USER"); user != "" {
		cfg.DBUser = user
	}

	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.DBPassword = password
	}

	if dbname := os.Getenv("DB_NAME"); dbname != "" {
		cfg.DBName = dbname
	}

	if sslmode := os.Getenv("DB_SSLMODE"); sslmode != "" {
		cfg.DBSSLMode = sslmode
	}

	// Redis config
	if host := os.Getenv("REDIS_HOST"); host != "" {
		cfg.RedisHost = host
	}

	if port := os.Getenv("REDIS_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_PORT: %w", err)
		}
		cfg.RedisPort = p
	}

	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.RedisPassword = password
	}

	if db := os.Getenv("REDIS_DB"); db != "" {
		d, err := strconv.Atoi(db)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
		}
		cfg.RedisDB = d
	}

	// AWS
	if region := os.Getenv("AWS_REGION"); region != "" {
		cfg.AWSRegion = region
	}

	if from := os.Getenv("SES_FROM_EMAIL"); from != "" {
		cfg.SESFromEmail = from
	}

	if to := os.Getenv("SES_TO_EMAIL"); to != "" {
		cfg.SESToEmail = to
	}

	if region := os.Getenv("SNS_REGION"); region != "" {
		cfg.SNSRegion = region
	} else {
		cfg.SNSRegion = cfg.AWSRegion
	}

	if phone := os.Getenv("SNS_PHONE_NUMBER"); phone != "" {
		cfg.SNSPhone = phone
	}

	// SQS config
	if region := os.Getenv("SQS_REGION"); region != "" {
		cfg.SQSRegion = region
	} else {
		cfg.SQSRegion = cfg.AWSRegion
	}

	if url := os.Getenv("SQS_QUEUE_URL"); url != "" {
		cfg.SQSQueueURL = url
	}

	// Webhook config
	if url := os.Getenv("WEBHOOK_URL"); url != "" {
		cfg.WebhookURL = url
	}

	if timeout := os.Getenv("WEBHOOK_TIMEOUT"); timeout != "" {
		t, err := strconv.Atoi(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid WEBHOOK_TIMEOUT: %w", err)
		}
		cfg.WebhookTimeout = t
	}

	return cfg, nil
}
