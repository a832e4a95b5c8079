package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Supported storage drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr               string   `env:"ROLLCALL_ADDR" envDefault:":8088"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	AdminJWTSecret     string   `env:"ADMIN_JWT_SECRET"`
	EmailDomain        string   `env:"EMAIL_DOMAIN" envDefault:"userid.edu"`
	SeedDefaultStudent bool     `env:"SEED_DEFAULT_STUDENT" envDefault:"true"`

	Database DatabaseConfig
	Redis    RedisConfig
	Audit    AuditConfig
	Kafka    KafkaConfig
	Log      LogConfig
	Tracing  TracingConfig
}

// DatabaseConfig selects the storage engine.
type DatabaseConfig struct {
	Driver string `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	URL    string `env:"DATABASE_URL" envDefault:"./attendance.db"`
}

// RedisConfig configures the optional identity cache. An empty URL disables it.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	CacheTTL     time.Duration `env:"IDENTITY_CACHE_TTL" envDefault:"5m"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// AuditConfig bounds the asynchronous audit writer.
type AuditConfig struct {
	BufferSize   int           `env:"AUDIT_BUFFER_SIZE" envDefault:"1024"`
	WriteTimeout time.Duration `env:"AUDIT_WRITE_TIMEOUT" envDefault:"2s"`
	PageSize     int           `env:"AUDIT_PAGE_SIZE" envDefault:"100"`
}

// KafkaConfig enables the audit stream when Brokers is non-empty.
type KafkaConfig struct {
	Brokers    []string `env:"KAFKA_BROKERS" envSeparator:","`
	AuditTopic string   `env:"KAFKA_AUDIT_TOPIC" envDefault:"rollcall.audit"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// TracingConfig enables OTLP span export when Endpoint is set.
type TracingConfig struct {
	Endpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"rollcall"`
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c Server) Validate() error {
	switch strings.ToLower(c.Database.Driver) {
	case DriverMemory, DriverSQLite, DriverPostgres, DriverPgx:
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver)
	}
	if c.Database.Driver != DriverMemory && c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required for driver %q", c.Database.Driver)
	}
	if c.Audit.BufferSize <= 0 {
		return fmt.Errorf("AUDIT_BUFFER_SIZE must be positive, got %d", c.Audit.BufferSize)
	}
	if c.Audit.WriteTimeout <= 0 {
		return fmt.Errorf("AUDIT_WRITE_TIMEOUT must be positive, got %s", c.Audit.WriteTimeout)
	}
	if c.Audit.PageSize <= 0 {
		return fmt.Errorf("AUDIT_PAGE_SIZE must be positive, got %d", c.Audit.PageSize)
	}
	if strings.TrimSpace(c.EmailDomain) == "" {
		return fmt.Errorf("EMAIL_DOMAIN must not be empty")
	}
	return nil
}

// KafkaEnabled reports whether the audit stream should be started.
func (c Server) KafkaEnabled() bool {
	return len(c.Kafka.Brokers) > 0
}
