package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("Load with missing file: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("default port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite3" {
		t.Errorf("default driver = %q, want sqlite3", cfg.Database.Driver)
	}
	if cfg.Classifier.ConfidenceThreshold != 0.55 {
		t.Errorf("default confidence threshold = %g, want 0.55", cfg.Classifier.ConfidenceThreshold)
	}
	if cfg.Classifier.FallbackMargin != 0.05 {
		t.Errorf("default fallback margin = %g, want 0.05", cfg.Classifier.FallbackMargin)
	}
	if cfg.Processor.PollInterval.Std() != 30*time.Second {
		t.Errorf("default poll interval = %s, want 30s", cfg.Processor.PollInterval)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default log level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
database:
  driver: postgres
  dsn: postgres://localhost/tickets
classifier:
  confidence_threshold: 0.7
  fallback_margin: 0.1
processor:
  batch_size: 250
  poll_interval: 1m
logging:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("driver = %q, want postgres", cfg.Database.Driver)
	}
	if cfg.Classifier.ConfidenceThreshold != 0.7 {
		t.Errorf("confidence threshold = %g, want 0.7", cfg.Classifier.ConfidenceThreshold)
	}
	if cfg.Processor.BatchSize != 250 {
		t.Errorf("batch size = %d, want 250", cfg.Processor.BatchSize)
	}
	if cfg.Processor.PollInterval.Std() != time.Minute {
		t.Errorf("poll interval = %s, want 1m", cfg.Processor.PollInterval)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")

	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("CLASSIFIER_CONFIDENCE_THRESHOLD", "0.8")
	t.Setenv("PROCESSOR_POLL_INTERVAL", "45s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("port = %d, env override must win over file", cfg.Server.Port)
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("driver = %q, want postgres", cfg.Database.Driver)
	}
	if cfg.Classifier.ConfidenceThreshold != 0.8 {
		t.Errorf("confidence threshold = %g, want 0.8", cfg.Classifier.ConfidenceThreshold)
	}
	if cfg.Processor.PollInterval.Std() != 45*time.Second {
		t.Errorf("poll interval = %s, want 45s", cfg.Processor.PollInterval)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad driver", "database:\n  driver: oracle\n"},
		{"threshold above one", "classifier:\n  confidence_threshold: 1.5\n"},
		{"negative concurrency", "classifier:\n  concurrency: -2\n"},
		{"port out of range", "server:\n  port: 70000\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadRejectsMalformedEnv(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")
	t.Setenv("SERVER_PORT", "not-a-number")

	if _, err := Load(path); err == nil {
		t.Error("expected error for non-numeric port override")
	}
}
