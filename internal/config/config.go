package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const defaultJWTSecret = "change-me-in-production"

type Config struct {
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort string `env:"APP_PORT" envDefault:"8080"`

	DBHost         string `env:"DB_HOST" envDefault:"localhost"`
	DBPort         string `env:"DB_PORT" envDefault:"5432"`
	DBUser         string `env:"DB_USER" envDefault:"postgres"`
	DBPassword     string `env:"DB_PASSWORD"`
	DBName         string `env:"DB_NAME" envDefault:"orderdesk"`
	DBSSLMode      string `env:"DB_SSLMODE" envDefault:"disable"`
	DBMaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns int    `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`

	JWTSecret string `env:"JWT_SECRET" envDefault:"change-me-in-production"`

	// Empty RabbitMQURL means notifications are only logged.
	RabbitMQURL          string `env:"RABBITMQ_URL"`
	NotificationExchange string `env:"NOTIFICATION_EXCHANGE" envDefault:"orderdesk.notifications"`

	DispatchWorkers        int `env:"DISPATCH_WORKERS" envDefault:"4"`
	DispatchQueueSize      int `env:"DISPATCH_QUEUE_SIZE" envDefault:"256"`
	DispatchMaxAttempts    int `env:"DISPATCH_MAX_ATTEMPTS" envDefault:"3"`
	DispatchRetryBackoffMS int `env:"DISPATCH_RETRY_BACKOFF_MS" envDefault:"200"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"20"`

	// AuditSink is "postgres" (system_logs table) or "log".
	AuditSink string `env:"AUDIT_SINK" envDefault:"postgres"`

	DefaultOrderTemplate  string `env:"DEFAULT_ORDER_TEMPLATE" envDefault:"WO-{number}"`
	DefaultPhoneRegion    string `env:"DEFAULT_PHONE_REGION" envDefault:"US"`
	RequestTimeoutSeconds int    `env:"REQUEST_TIMEOUT_SECONDS" envDefault:"15"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad is Load for main packages: it exits the process on failure.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	return cfg
}

func (c *Config) validate() error {
	if c.DBHost == "" {
		return errors.New("DB_HOST must be set")
	}
	if c.DispatchWorkers < 1 {
		return fmt.Errorf("DISPATCH_WORKERS must be at least 1, got %d", c.DispatchWorkers)
	}
	if c.DispatchQueueSize < 1 {
		return fmt.Errorf("DISPATCH_QUEUE_SIZE must be at least 1, got %d", c.DispatchQueueSize)
	}
	if c.DispatchMaxAttempts < 1 {
		return fmt.Errorf("DISPATCH_MAX_ATTEMPTS must be at least 1, got %d", c.DispatchMaxAttempts)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		return errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	switch c.AuditSink {
	case "postgres", "log":
	default:
		return fmt.Errorf("AUDIT_SINK must be postgres or log, got %q", c.AuditSink)
	}
	if len(strings.TrimSpace(c.DefaultPhoneRegion)) != 2 {
		return fmt.Errorf("DEFAULT_PHONE_REGION must be a two-letter region code, got %q", c.DefaultPhoneRegion)
	}
	if c.IsProduction() && c.JWTSecret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be set explicitly in production")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// DSN returns the lib/pq connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}

func (c *Config) RetryBackoff() time.Duration {
	return time.Duration(c.DispatchRetryBackoffMS) * time.Millisecond
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}
