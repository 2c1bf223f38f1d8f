package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Service configuration constants
const (
	ServiceName    = "catalog-service"
	ServiceVersion = "0.1.0"
)

// Kafka configuration constants
const (
	StockFeedTopic   = "StockFeed"
	StockEventsTopic = "StockUpdated"
	GroupID          = "catalog-service-group"
	BatchTimeout     = 10 * time.Millisecond
	BatchSize        = 100
)

// OpenTelemetry configuration constants
const (
	LogsPath       = "/otlp/v1/logs"    // Grafana Cloud OTLP path
	TracesPath     = "/otlp/v1/traces"  // Grafana Cloud OTLP path
	MetricsPath    = "/otlp/v1/metrics" // Grafana Cloud OTLP path
	ExportTimeout  = 30 * time.Second
	ExportInterval = 15 * time.Second
	MaxQueueSize   = 2048
)

// Stock pipeline and process lifecycle constants
const (
	DefaultQueueCapacity = 1024
	ShutdownTimeout      = 15 * time.Second
	ReadHeaderTimeout    = 5 * time.Second
)

// Config holds environment-specific configuration
type Config struct {
	HTTPAddr       string `toml:"http_addr" validate:"required"`
	DBPath         string `toml:"db_path" validate:"required"`
	SeedOnStartup  bool   `toml:"seed_on_startup"`
	QueueCapacity  int    `toml:"queue_capacity" validate:"min=1"`
	KafkaBroker    string `toml:"kafka_broker"`
	OtelEndpoint   string `toml:"otel_endpoint"`
	OtelAuthHeader string `toml:"otel_auth_header" validate:"required_with=OtelEndpoint"`
}

// KafkaEnabled reports whether a broker is configured for the stock feed and events.
func (c *Config) KafkaEnabled() bool { return c.KafkaBroker != "" }

// OtelEnabled reports whether telemetry should be exported over OTLP.
func (c *Config) OtelEnabled() bool { return c.OtelEndpoint != "" }

func defaults() *Config {
	return &Config{
		HTTPAddr:      ":8080",
		DBPath:        "./data/catalog",
		SeedOnStartup: true,
		QueueCapacity: DefaultQueueCapacity,
	}
}

// LoadConfig loads configuration from an optional TOML file (CONFIG_FILE)
// and then applies environment variable overrides.
func LoadConfig() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("KAFKA_BROKER"); v != "" {
		cfg.KafkaBroker = v
	}
	if v := os.Getenv("OTEL_ENDPOINT"); v != "" {
		cfg.OtelEndpoint = v
	}
	if v := os.Getenv("OTEL_AUTH_HEADER"); v != "" {
		cfg.OtelAuthHeader = v
	}
	if v := os.Getenv("SEED_ON_STARTUP"); v != "" {
		seed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SEED_ON_STARTUP must be a boolean: %w", err)
		}
		cfg.SeedOnStartup = seed
	}
	if v := os.Getenv("STOCK_QUEUE_CAPACITY"); v != "" {
		capacity, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("STOCK_QUEUE_CAPACITY must be an integer: %w", err)
		}
		cfg.QueueCapacity = capacity
	}
	return nil
}
