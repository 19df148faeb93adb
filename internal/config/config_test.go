package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv(EnvDataDir, "/tmp/jr3d-test")

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port() != DefaultPort {
		t.Errorf("Port = %d, want %d", cfg.Port(), DefaultPort)
	}
	if cfg.LogLevel() != DefaultLogLevel {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel(), DefaultLogLevel)
	}
	if cfg.FetchTimeout() != DefaultFetchTimeout {
		t.Errorf("FetchTimeout = %v, want %v", cfg.FetchTimeout(), DefaultFetchTimeout)
	}
	if cfg.FetchConcurrency() != DefaultFetchConcurrency {
		t.Errorf("FetchConcurrency = %d, want %d", cfg.FetchConcurrency(), DefaultFetchConcurrency)
	}
	if cfg.CompressionLevel() != DefaultCompressionLevel {
		t.Errorf("CompressionLevel = %d, want %d", cfg.CompressionLevel(), DefaultCompressionLevel)
	}
	if cfg.DBPath() != filepath.Join("/tmp/jr3d-test", DBFilename) {
		t.Errorf("DBPath = %q", cfg.DBPath())
	}
	if cfg.ArchivesDir() != filepath.Join("/tmp/jr3d-test", "archives") {
		t.Errorf("ArchivesDir = %q", cfg.ArchivesDir())
	}
}

func TestNew_FromEnv(t *testing.T) {
	t.Setenv(EnvPort, "9000")
	t.Setenv(EnvFetchTimeout, "5s")
	t.Setenv(EnvFetchConcurrency, "1")
	t.Setenv(EnvCompressionLevel, "0")
	t.Setenv(EnvEffectsBaseURL, "https://cdn.example.com/effects")

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port() != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Port())
	}
	if cfg.FetchTimeout() != 5*time.Second {
		t.Errorf("FetchTimeout = %v, want 5s", cfg.FetchTimeout())
	}
	if cfg.FetchConcurrency() != 1 {
		t.Errorf("FetchConcurrency = %d, want 1", cfg.FetchConcurrency())
	}
	if cfg.CompressionLevel() != 0 {
		t.Errorf("CompressionLevel = %d, want 0 (store)", cfg.CompressionLevel())
	}
	if cfg.EffectsBaseURL() != "https://cdn.example.com/effects" {
		t.Errorf("EffectsBaseURL = %q", cfg.EffectsBaseURL())
	}
}

func TestNew_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"port out of range", EnvPort, "70000"},
		{"port not a number", EnvPort, "http"},
		{"negative concurrency", EnvFetchConcurrency, "-2"},
		{"compression too high", EnvCompressionLevel, "12"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := New(); err == nil {
				t.Fatalf("expected error for %s=%s", tc.key, tc.value)
			}
		})
	}
}
