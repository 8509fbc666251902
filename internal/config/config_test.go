package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Threshold != 0.35 {
		t.Errorf("threshold = %v, want default 0.35", cfg.Threshold)
	}
	if cfg.ResultCap != 25 {
		t.Errorf("result cap = %v, want default 25", cfg.ResultCap)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "threshold: 0.5\nresult_cap: 10\ncache_ttl: 1h\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Threshold != 0.5 {
		t.Errorf("threshold = %v, want 0.5", cfg.Threshold)
	}
	if cfg.ResultCap != 10 {
		t.Errorf("result cap = %v, want 10", cfg.ResultCap)
	}
	if cfg.CacheTTL != time.Hour {
		t.Errorf("cache ttl = %v, want 1h", cfg.CacheTTL)
	}
	// Untouched fields keep defaults
	if cfg.MaxConcurrentFetches != 5 {
		t.Errorf("max concurrent fetches = %v, want default 5", cfg.MaxConcurrentFetches)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("SIGHTLINE_THRESHOLD", "0.7")
	t.Setenv("SIGHTLINE_CACHE_TTL", "30m")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Threshold != 0.7 {
		t.Errorf("threshold = %v, want env override 0.7", cfg.Threshold)
	}
	if cfg.CacheTTL != 30*time.Minute {
		t.Errorf("cache ttl = %v, want 30m", cfg.CacheTTL)
	}
}

func TestMalformedEnvIsConfigurationError(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"threshold", "SIGHTLINE_THRESHOLD", "abc"},
		{"result cap", "SIGHTLINE_RESULT_CAP", "many"},
		{"cache ttl", "SIGHTLINE_CACHE_TTL", "soon"},
		{"fetch timeout", "SIGHTLINE_FETCH_TIMEOUT", "whenever"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load("")
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Load() error = %v, want *ConfigurationError", err)
			}
			if cfgErr.Field != tt.key {
				t.Errorf("error field = %q, want %q", cfgErr.Field, tt.key)
			}
		})
	}
}

func TestInvalidWeightsIsConfigurationError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "weights:\n  recency: 0.9\n  authority: 0.9\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid weight vector")
	}
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error type = %T, want *ConfigurationError", err)
	}
	if cfgErr.Field != "weights" {
		t.Errorf("error field = %q, want weights", cfgErr.Field)
	}
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative threshold", func(c *Config) { c.Threshold = -0.1 }},
		{"zero similarity", func(c *Config) { c.Similarity = 0 }},
		{"zero cap", func(c *Config) { c.ResultCap = 0 }},
		{"zero ttl", func(c *Config) { c.CacheTTL = 0 }},
		{"zero fetch timeout", func(c *Config) { c.FetchTimeout = 0 }},
		{"empty allow-list", func(c *Config) { c.TrustedDomains = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			var cfgErr *ConfigurationError
			if err := cfg.Validate(); !errors.As(err, &cfgErr) {
				t.Errorf("Validate() = %v, want *ConfigurationError", err)
			}
		})
	}
}
