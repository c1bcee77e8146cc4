package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the service.
type AppConfig struct {
	DatabaseURL string
	HTTPAddr    string
	LogLevel    string
	Environment string

	// Delivery processor
	DeliveryProviders    []string // enabled transports; empty disables delivery
	DeliveryBatchLimit   int
	DeliveryTriggerToken string // pre-shared secret for the trigger endpoint
	DeliveryStaleAfter   time.Duration
	CronSpecDelivery     string
	CronSpecStaleReclaim string

	// SendGrid transport
	SendgridAPIKey   string
	EmailFromName    string
	EmailFromAddress string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.HTTPAddr = os.Getenv("HTTP_ADDR")
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	if raw := os.Getenv("DELIVERY_ENABLED_PROVIDERS"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				cfg.DeliveryProviders = append(cfg.DeliveryProviders, name)
			}
		}
	}

	cfg.DeliveryBatchLimit = 10
	if raw := os.Getenv("DELIVERY_BATCH_LIMIT"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid DELIVERY_BATCH_LIMIT: %w", err)
		}
		cfg.DeliveryBatchLimit = n
	}

	// May legitimately be empty; the trigger endpoint then fails closed.
	cfg.DeliveryTriggerToken = os.Getenv("DELIVERY_TRIGGER_TOKEN")

	cfg.DeliveryStaleAfter = 15 * time.Minute
	if raw := os.Getenv("DELIVERY_STALE_AFTER"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid DELIVERY_STALE_AFTER: %w", err)
		}
		cfg.DeliveryStaleAfter = d
	}

	cfg.CronSpecDelivery = os.Getenv("CRON_SPEC_DELIVERY")
	if cfg.CronSpecDelivery == "" {
		cfg.CronSpecDelivery = "* * * * *" // Default: every minute
	}
	cfg.CronSpecStaleReclaim = os.Getenv("CRON_SPEC_STALE_RECLAIM")
	if cfg.CronSpecStaleReclaim == "" {
		cfg.CronSpecStaleReclaim = "*/10 * * * *" // Default: every 10 minutes
	}

	cfg.SendgridAPIKey = os.Getenv("SENDGRID_API_KEY")
	cfg.EmailFromName = os.Getenv("EMAIL_FROM_NAME")
	if cfg.EmailFromName == "" {
		cfg.EmailFromName = "Parish LMS"
	}
	cfg.EmailFromAddress = os.Getenv("EMAIL_FROM_ADDRESS")
	if cfg.EmailFromAddress == "" {
		cfg.EmailFromAddress = "noreply@parishlms.local"
	}

	for _, name := range cfg.DeliveryProviders {
		if name == "sendgrid" && cfg.SendgridAPIKey == "" {
			return nil, fmt.Errorf("SENDGRID_API_KEY is not set but sendgrid transport is enabled")
		}
	}

	return cfg, nil
}
