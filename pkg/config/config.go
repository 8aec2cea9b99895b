// Package config loads gatherly's configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Gateway kinds.
const (
	GatewayRazorpay  = "razorpay"
	GatewaySimulated = "simulated"
)

// Config holds application configuration.
type Config struct {
	AppEnv    string `env:"APP_ENV" envDefault:"development"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	Version   string `env:"GATHERLY_VERSION" envDefault:"dev"`
	// MemberID is the member the CLI acts as.
	MemberID string `env:"GATHERLY_MEMBER_ID"`

	Database DatabaseConfig
	Outbox   OutboxConfig
	API      APIConfig
	Payment  PaymentConfig
	Mail     MailConfig

	RedisURL    string `env:"REDIS_URL"`
	RabbitMQURL string `env:"RABBITMQ_URL"`
	// EventBus is "inprocess" or "rabbitmq".
	EventBus string `env:"EVENT_BUS" envDefault:"inprocess"`

	WorkerHealthAddr string `env:"WORKER_HEALTH_ADDR" envDefault:"0.0.0.0:8081"`

	MCPAddr      string `env:"MCP_ADDR" envDefault:"127.0.0.1:8090"`
	MCPAuthToken string `env:"MCP_AUTH_TOKEN"`

	// ReportUTCOffset is the fixed offset every reporting window is cut in.
	ReportUTCOffset string `env:"REPORT_UTC_OFFSET" envDefault:"+05:30"`
}

// DatabaseConfig selects the store. An empty URL means SQLite at SQLitePath.
type DatabaseConfig struct {
	URL        string `env:"DATABASE_URL"`
	SQLitePath string `env:"SQLITE_PATH"`
	MaxConns   int    `env:"DATABASE_MAX_CONNS" envDefault:"10"`
}

// OutboxConfig tunes the relay.
type OutboxConfig struct {
	Enabled         bool          `env:"OUTBOX_PROCESSOR_ENABLED" envDefault:"true"`
	PollInterval    time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"500ms"`
	BatchSize       int           `env:"OUTBOX_BATCH_SIZE" envDefault:"100"`
	MaxRetries      int           `env:"OUTBOX_MAX_RETRIES" envDefault:"5"`
	RetentionDays   int           `env:"OUTBOX_RETENTION_DAYS" envDefault:"14"`
	CleanupInterval time.Duration `env:"OUTBOX_CLEANUP_INTERVAL" envDefault:"24h"`
	StatsInterval   time.Duration `env:"OUTBOX_STATS_INTERVAL" envDefault:"30s"`
}

// APIConfig configures the HTTP server.
type APIConfig struct {
	Addr           string   `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	JWTSecret      string   `env:"JWT_SECRET"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// PaymentConfig configures the payment gateway and webhook verification.
type PaymentConfig struct {
	Gateway         string        `env:"PAYMENT_GATEWAY" envDefault:"simulated"`
	BaseURL         string        `env:"PAYMENT_BASE_URL" envDefault:"https://api.razorpay.com"`
	KeyID           string        `env:"PAYMENT_KEY_ID"`
	KeySecret       string        `env:"PAYMENT_KEY_SECRET"`
	TokenURL        string        `env:"PAYMENT_OAUTH_TOKEN_URL"`
	ClientID        string        `env:"PAYMENT_OAUTH_CLIENT_ID"`
	ClientSecret    string        `env:"PAYMENT_OAUTH_CLIENT_SECRET"`
	WebhookSecret   string        `env:"PAYMENT_WEBHOOK_SECRET"`
	SignatureHeader string        `env:"PAYMENT_SIGNATURE_HEADER" envDefault:"X-Razorpay-Signature"`
	Currency        string        `env:"PAYMENT_CURRENCY" envDefault:"INR"`
	Timeout         time.Duration `env:"PAYMENT_HTTP_TIMEOUT" envDefault:"10s"`
	BreakerFailures uint32        `env:"PAYMENT_BREAKER_FAILURES" envDefault:"5"`
	BreakerTimeout  time.Duration `env:"PAYMENT_BREAKER_TIMEOUT" envDefault:"30s"`
	LinkCacheTTL    time.Duration `env:"PAYMENT_LINK_CACHE_TTL" envDefault:"24h"`
	PublicLinkBase  string        `env:"PAYMENT_PUBLIC_LINK_BASE" envDefault:"https://rzp.io/i"`
}

// MailConfig selects the notifier.
type MailConfig struct {
	Provider       string `env:"MAIL_PROVIDER" envDefault:"log"`
	From           string `env:"MAIL_FROM" envDefault:"Gatherly <no-reply@gatherly.local>"`
	AWSRegion      string `env:"AWS_REGION" envDefault:"ap-south-1"`
	AWSAccessKeyID string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey   string `env:"AWS_SECRET_ACCESS_KEY"`
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse builds a configuration from vars alone, ignoring the process
// environment and .env.
func Parse(vars map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: vars}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings that are unsafe or inconsistent.
func (c *Config) Validate() error {
	var errs []error

	if _, err := ParseUTCOffset(c.ReportUTCOffset); err != nil {
		errs = append(errs, err)
	}

	switch c.Payment.Gateway {
	case GatewayRazorpay, GatewaySimulated:
	default:
		errs = append(errs, fmt.Errorf("PAYMENT_GATEWAY must be %q or %q", GatewayRazorpay, GatewaySimulated))
	}

	switch c.EventBus {
	case "inprocess":
	case "rabbitmq":
		if c.RabbitMQURL == "" {
			errs = append(errs, errors.New("RABBITMQ_URL is required when EVENT_BUS=rabbitmq"))
		}
	default:
		errs = append(errs, errors.New(`EVENT_BUS must be "inprocess" or "rabbitmq"`))
	}

	if c.IsProduction() {
		if c.Payment.Gateway == GatewaySimulated {
			errs = append(errs, errors.New("the simulated payment gateway cannot run in production"))
		}
		if c.Payment.WebhookSecret == "" {
			errs = append(errs, errors.New("PAYMENT_WEBHOOK_SECRET is required in production"))
		}
		if c.API.JWTSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET is required in production"))
		}
	}

	return errors.Join(errs...)
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// ReportLocation returns the fixed zone reporting windows are cut in.
func (c *Config) ReportLocation() *time.Location {
	loc, err := ParseUTCOffset(c.ReportUTCOffset)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ParseUTCOffset parses "+05:30" or "-0800" style offsets into a fixed zone.
func ParseUTCOffset(s string) (*time.Location, error) {
	raw := strings.TrimSpace(s)
	if raw == "" || raw == "Z" {
		return time.UTC, nil
	}
	if len(raw) < 3 || (raw[0] != '+' && raw[0] != '-') {
		return nil, fmt.Errorf("invalid UTC offset %q", s)
	}

	sign := 1
	if raw[0] == '-' {
		sign = -1
	}
	digits := strings.ReplaceAll(raw[1:], ":", "")
	if len(digits) != 2 && len(digits) != 4 {
		return nil, fmt.Errorf("invalid UTC offset %q", s)
	}

	hours, err := strconv.Atoi(digits[:2])
	if err != nil {
		return nil, fmt.Errorf("invalid UTC offset %q", s)
	}
	minutes := 0
	if len(digits) == 4 {
		if minutes, err = strconv.Atoi(digits[2:]); err != nil {
			return nil, fmt.Errorf("invalid UTC offset %q", s)
		}
	}
	if hours > 14 || minutes > 59 {
		return nil, fmt.Errorf("invalid UTC offset %q", s)
	}

	offset := sign * (hours*3600 + minutes*60)
	return time.FixedZone("UTC"+raw, offset), nil
}
