// Package config loads service configuration from a YAML file with
// environment variable overrides. A .env file, when present, is loaded
// into the environment first.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ravenstack/ticket-classifier/internal/logger"
)

// Config is the root configuration for the classifier service.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Processor  ProcessorConfig  `yaml:"processor"`
	Logging    logger.Config    `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string   `yaml:"host" env:"SERVER_HOST"`
	Port            int      `yaml:"port" env:"SERVER_PORT"`
	ReadTimeout     Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
	WriteTimeout    Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
}

// DatabaseConfig holds ticket repository connection settings.
type DatabaseConfig struct {
	Driver          string   `yaml:"driver" env:"DB_DRIVER"`
	DSN             string   `yaml:"dsn" env:"DB_DSN"`
	MaxConnections  int      `yaml:"max_connections" env:"DB_MAX_CONNECTIONS"`
	MaxIdleConns    int      `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
	ConnMaxLifetime Duration `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
}

// ClassifierConfig holds the hybrid decision gate settings.
type ClassifierConfig struct {
	ConfidenceThreshold float64 `yaml:"confidence_threshold" env:"CLASSIFIER_CONFIDENCE_THRESHOLD"`
	FallbackMargin      float64 `yaml:"fallback_margin" env:"CLASSIFIER_FALLBACK_MARGIN"`
	Concurrency         int     `yaml:"concurrency" env:"CLASSIFIER_CONCURRENCY"`
}

// ProcessorConfig holds batch poller settings.
type ProcessorConfig struct {
	BatchSize    int      `yaml:"batch_size" env:"PROCESSOR_BATCH_SIZE"`
	PollInterval Duration `yaml:"poll_interval" env:"PROCESSOR_POLL_INTERVAL"`
	StoreQPS     int      `yaml:"store_qps" env:"PROCESSOR_STORE_QPS"`
}

// SetDefaults fills in zero-valued fields.
func (c *Config) SetDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = Duration(15 * time.Second)
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = Duration(30 * time.Second)
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = Duration(10 * time.Second)
	}

	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite3"
	}
	if c.Database.DSN == "" {
		c.Database.DSN = "tickets.db"
	}
	if c.Database.MaxConnections == 0 {
		c.Database.MaxConnections = 10
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = Duration(time.Hour)
	}

	if c.Classifier.ConfidenceThreshold == 0 {
		c.Classifier.ConfidenceThreshold = 0.55
	}
	if c.Classifier.FallbackMargin == 0 {
		c.Classifier.FallbackMargin = 0.05
	}
	if c.Classifier.Concurrency == 0 {
		c.Classifier.Concurrency = 4
	}

	if c.Processor.BatchSize == 0 {
		c.Processor.BatchSize = 500
	}
	if c.Processor.PollInterval == 0 {
		c.Processor.PollInterval = Duration(30 * time.Second)
	}
	if c.Processor.StoreQPS == 0 {
		c.Processor.StoreQPS = 10
	}

	c.Logging.SetDefaults()
}

// Validate reports configuration values the service cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Database.Driver != "postgres" && c.Database.Driver != "sqlite3" {
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Classifier.ConfidenceThreshold < 0 || c.Classifier.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence threshold %g outside [0, 1]", c.Classifier.ConfidenceThreshold)
	}
	if c.Classifier.FallbackMargin < 0 || c.Classifier.FallbackMargin > 1 {
		return fmt.Errorf("fallback margin %g outside [0, 1]", c.Classifier.FallbackMargin)
	}
	if c.Classifier.Concurrency < 1 {
		return fmt.Errorf("concurrency must be positive, got %d", c.Classifier.Concurrency)
	}
	if c.Processor.BatchSize < 1 {
		return fmt.Errorf("batch size must be positive, got %d", c.Processor.BatchSize)
	}
	return nil
}

// Addr returns the host:port the HTTP server listens on.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ConfigPath returns the configuration file path, honoring the
// CONFIG_PATH environment variable.
func ConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "config.yml"
}
