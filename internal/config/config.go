// Package config loads pipeline configuration from YAML with defaults
// and environment overrides, and validates it at load time. Validation
// failures are ConfigurationError values; nothing else in the pipeline
// may abort a run.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sightlinehq/sightline/internal/profile"
)

// ConfigurationError is a fatal configuration violation, raised before
// any run begins. Check with errors.As.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// Config is the full pipeline configuration.
type Config struct {
	// Threshold is the default relevance gate threshold.
	Threshold float64
	// Weights is the default composite weight vector.
	Weights profile.Weights
	// Similarity is the token-overlap threshold for clustering.
	Similarity float64
	// ResultCap truncates the ranked output.
	ResultCap int
	// CacheTTL is attached to every cache write.
	CacheTTL time.Duration
	// CachePath is the sqlite cache location; empty means memory only.
	CachePath string
	// CacheSize bounds the in-memory cache layer.
	CacheSize int
	// MaxConcurrentFetches limits adapter fan-out.
	MaxConcurrentFetches int
	// FetchTimeout bounds each adapter call independently.
	FetchTimeout time.Duration
	// BufferLimit bounds the evidence working set per run.
	BufferLimit int
	// TrustedDomains is the source URL allow-list. Records citing other
	// domains are dropped before deduplication.
	TrustedDomains []string
	// Synthesis configures the optional generative synthesis provider.
	Synthesis SynthesisConfig
}

// SynthesisConfig configures the generative synthesis path. Disabled
// when Endpoint is empty; the rule-based synthesizer is always the
// fallback regardless.
type SynthesisConfig struct {
	Endpoint string
	Model    string
	APIKey   string
	Timeout  time.Duration
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Threshold:            0.35,
		Weights:              profile.DefaultWeights(),
		Similarity:           0.5,
		ResultCap:            25,
		CacheTTL:             6 * time.Hour,
		CacheSize:            256,
		MaxConcurrentFetches: 5,
		FetchTimeout:         30 * time.Second,
		BufferLimit:          500,
		TrustedDomains: []string{
			"reddit.com",
			"yelp.com",
			"google.com",
			"trustpilot.com",
			"g2.com",
			"capterra.com",
			"clutch.co",
			"linkedin.com",
			"news.ycombinator.com",
		},
		Synthesis: SynthesisConfig{
			Timeout: 20 * time.Second,
		},
	}
}

// fileConfig is the YAML shape. Pointers distinguish "absent" from
// "zero" so file values merge over defaults; durations are strings
// ("6h", "30s").
type fileConfig struct {
	Threshold            *float64         `yaml:"threshold"`
	Weights              *profile.Weights `yaml:"weights"`
	Similarity           *float64         `yaml:"similarity"`
	ResultCap            *int             `yaml:"result_cap"`
	CacheTTL             *string          `yaml:"cache_ttl"`
	CachePath            *string          `yaml:"cache_path"`
	CacheSize            *int             `yaml:"cache_size"`
	MaxConcurrentFetches *int             `yaml:"max_concurrent_fetches"`
	FetchTimeout         *string          `yaml:"fetch_timeout"`
	BufferLimit          *int             `yaml:"buffer_limit"`
	TrustedDomains       []string         `yaml:"trusted_domains"`
	Synthesis            *struct {
		Endpoint string `yaml:"endpoint"`
		Model    string `yaml:"model"`
		APIKey   string `yaml:"api_key"`
		Timeout  string `yaml:"timeout"`
	} `yaml:"synthesis"`
}

// Load reads configuration from path, applies environment overrides,
// and validates the result. A missing file is not an error; defaults
// apply.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("failed to read config: %w", err)
			}
		} else if err := mergeFile(&cfg, data); err != nil {
			return cfg, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// mergeFile overlays file values on cfg. Weights merge per-field over
// the defaults so a partial weights block is allowed (and then
// validated as a whole).
func mergeFile(cfg *Config, data []byte) error {
	fc := fileConfig{Weights: &cfg.Weights}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	if fc.Threshold != nil {
		cfg.Threshold = *fc.Threshold
	}
	if fc.Similarity != nil {
		cfg.Similarity = *fc.Similarity
	}
	if fc.ResultCap != nil {
		cfg.ResultCap = *fc.ResultCap
	}
	if fc.CachePath != nil {
		cfg.CachePath = *fc.CachePath
	}
	if fc.CacheSize != nil {
		cfg.CacheSize = *fc.CacheSize
	}
	if fc.MaxConcurrentFetches != nil {
		cfg.MaxConcurrentFetches = *fc.MaxConcurrentFetches
	}
	if fc.BufferLimit != nil {
		cfg.BufferLimit = *fc.BufferLimit
	}
	if len(fc.TrustedDomains) > 0 {
		cfg.TrustedDomains = fc.TrustedDomains
	}
	if err := setDuration(&cfg.CacheTTL, "cache_ttl", fc.CacheTTL); err != nil {
		return err
	}
	if err := setDuration(&cfg.FetchTimeout, "fetch_timeout", fc.FetchTimeout); err != nil {
		return err
	}
	if fc.Synthesis != nil {
		cfg.Synthesis.Endpoint = fc.Synthesis.Endpoint
		cfg.Synthesis.Model = fc.Synthesis.Model
		cfg.Synthesis.APIKey = fc.Synthesis.APIKey
		if fc.Synthesis.Timeout != "" {
			if err := setDuration(&cfg.Synthesis.Timeout, "synthesis.timeout", &fc.Synthesis.Timeout); err != nil {
				return err
			}
		}
	}
	return nil
}

func setDuration(dst *time.Duration, field string, value *string) error {
	if value == nil {
		return nil
	}
	d, err := time.ParseDuration(*value)
	if err != nil {
		return &ConfigurationError{Field: field, Reason: err.Error()}
	}
	*dst = d
	return nil
}

// applyEnv overlays SIGHTLINE_* environment variables on cfg. A set
// but malformed variable is a ConfigurationError, never silently
// ignored.
func applyEnv(cfg *Config) error {
	if v := os.Getenv("SIGHTLINE_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return &ConfigurationError{Field: "SIGHTLINE_THRESHOLD", Reason: err.Error()}
		}
		cfg.Threshold = f
	}
	if v := os.Getenv("SIGHTLINE_RESULT_CAP"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &ConfigurationError{Field: "SIGHTLINE_RESULT_CAP", Reason: err.Error()}
		}
		cfg.ResultCap = n
	}
	if v := os.Getenv("SIGHTLINE_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return &ConfigurationError{Field: "SIGHTLINE_CACHE_TTL", Reason: err.Error()}
		}
		cfg.CacheTTL = d
	}
	if v := os.Getenv("SIGHTLINE_CACHE_PATH"); v != "" {
		cfg.CachePath = v
	}
	if v := os.Getenv("SIGHTLINE_FETCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return &ConfigurationError{Field: "SIGHTLINE_FETCH_TIMEOUT", Reason: err.Error()}
		}
		cfg.FetchTimeout = d
	}
	if v := os.Getenv("SIGHTLINE_SYNTHESIS_ENDPOINT"); v != "" {
		cfg.Synthesis.Endpoint = v
	}
	if v := os.Getenv("SIGHTLINE_SYNTHESIS_API_KEY"); v != "" {
		cfg.Synthesis.APIKey = v
	}
	if v := os.Getenv("SIGHTLINE_SYNTHESIS_MODEL"); v != "" {
		cfg.Synthesis.Model = v
	}
	return nil
}

// Validate checks every load-time invariant. Returns a
// *ConfigurationError describing the first violation found.
func (c Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return &ConfigurationError{Field: "weights", Reason: err.Error()}
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		return &ConfigurationError{Field: "threshold", Reason: fmt.Sprintf("%v outside [0,1]", c.Threshold)}
	}
	if c.Similarity <= 0 || c.Similarity > 1 {
		return &ConfigurationError{Field: "similarity", Reason: fmt.Sprintf("%v outside (0,1]", c.Similarity)}
	}
	if c.ResultCap <= 0 {
		return &ConfigurationError{Field: "result_cap", Reason: "must be positive"}
	}
	if c.CacheTTL <= 0 {
		return &ConfigurationError{Field: "cache_ttl", Reason: "must be positive"}
	}
	if c.MaxConcurrentFetches <= 0 {
		return &ConfigurationError{Field: "max_concurrent_fetches", Reason: "must be positive"}
	}
	if c.FetchTimeout <= 0 {
		return &ConfigurationError{Field: "fetch_timeout", Reason: "must be positive"}
	}
	if c.BufferLimit <= 0 {
		return &ConfigurationError{Field: "buffer_limit", Reason: "must be positive"}
	}
	if len(c.TrustedDomains) == 0 {
		return &ConfigurationError{Field: "trusted_domains", Reason: "allow-list is empty"}
	}
	return nil
}
