// Package config loads the server configuration from an optional file
// and the environment.
package config

import (
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/sonarmcp/encoding"
	"github.com/effective-security/sonarmcp/pkg/pricing"
	"github.com/effective-security/sonarmcp/pkg/sonar"
	"github.com/effective-security/sonarmcp/tools"
	"github.com/effective-security/x/configloader"
	"github.com/go-playground/validator/v10"
)

// Environment variables
const (
	EnvAPIKey         = "PERPLEXITY_API_KEY"
	EnvAPIKeyFallback = "API_KEY"
	EnvDefaultModel   = "SONAR_DEFAULT_MODEL"
	EnvContextSize    = "SONAR_CONTEXT_SIZE"
	// EnvPricing holds a price table in JSON, YAML or TOML,
	// optionally wrapped in a markdown fence
	EnvPricing = "SONAR_PRICING"
)

// Config of the server
type Config struct {
	// APIKey is the bearer token of the API, usually set with PERPLEXITY_API_KEY
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	// BaseURL overrides the API endpoint root
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,http_url"`
	// DefaultModel is used by search_web and search_web_advanced
	DefaultModel string `json:"default_model,omitempty" yaml:"default_model,omitempty"`
	// DefaultContextSize is used by search_web
	DefaultContextSize string `json:"default_context_size,omitempty" yaml:"default_context_size,omitempty" validate:"omitempty,oneof=low medium high auto"`
	// Timeout bounds a single API call, for example 30s
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	// RequestsPerSecond limits the outbound request rate, zero disables the limit
	RequestsPerSecond float64 `json:"requests_per_second,omitempty" yaml:"requests_per_second,omitempty" validate:"gte=0"`
	Burst             int     `json:"burst,omitempty" yaml:"burst,omitempty" validate:"gte=0"`
	// Pricing adds or overrides model prices, in USD per 1000 tokens
	Pricing map[string]pricing.Price `json:"pricing,omitempty" yaml:"pricing,omitempty" validate:"omitempty,dive"`
	// ServerName and ServerVersion are announced to clients
	ServerName    string `json:"server_name,omitempty" yaml:"server_name,omitempty"`
	ServerVersion string `json:"server_version,omitempty" yaml:"server_version,omitempty"`
}

// Load returns the configuration from the file, if not empty,
// with the environment overrides applied.
func Load(file string) (*Config, error) {
	cfg := new(Config)
	if file != "" {
		if err := configloader.UnmarshalAndExpand(file, cfg); err != nil {
			return nil, errors.WithMessagef(err, "failed to load config %s", file)
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	if doc, ok := os.LookupEnv(EnvPricing); ok {
		if err := cfg.ApplyPricing(doc); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides the configuration with the non-empty variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	get := func(name string) string {
		v, _ := lookup(name)
		return strings.TrimSpace(v)
	}
	if v := get(EnvAPIKey); v != "" {
		c.APIKey = v
	} else if v := get(EnvAPIKeyFallback); v != "" && c.APIKey == "" {
		c.APIKey = v
	}
	if v := get(EnvDefaultModel); v != "" {
		c.DefaultModel = v
	}
	if v := get(EnvContextSize); v != "" {
		c.DefaultContextSize = v
	}
}

// ApplyPricing adds the prices of the document to the configured prices,
// replacing those of the same models. A blank document is ignored.
func (c *Config) ApplyPricing(doc string) error {
	if strings.TrimSpace(doc) == "" {
		return nil
	}
	var prices pricing.Table
	if err := encoding.Unmarshal([]byte(doc), &prices); err != nil {
		return errors.WithMessagef(err, "invalid %s", EnvPricing)
	}
	if c.Pricing == nil {
		c.Pricing = make(map[string]pricing.Price, len(prices))
	}
	maps.Copy(c.Pricing, prices)
	return nil
}

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return errors.WithMessage(err, "invalid configuration")
	}
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	if c.DefaultModel != "" {
		models := append(slices.Clone(sonar.Models), c.Prices().Models()...)
		if !slices.Contains(models, c.DefaultModel) {
			return errors.Errorf("invalid configuration: unsupported default_model %q", c.DefaultModel)
		}
	}
	return nil
}

// TimeoutDuration returns the API call timeout, or the default if not set.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return sonar.DefaultTimeout, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 0, errors.Errorf("invalid configuration: timeout must be a positive duration: %q", c.Timeout)
	}
	return d, nil
}

// Prices returns the default price table with the configured prices applied.
func (c *Config) Prices() pricing.Table {
	return pricing.Default.Merge(c.Pricing)
}

// Defaults returns the tool defaults.
func (c *Config) Defaults() tools.Defaults {
	return tools.Defaults{
		Model:       c.DefaultModel,
		ContextSize: sonar.ContextSize(c.DefaultContextSize),
	}
}

// HasAPIKey returns true if the API key is set.
func (c *Config) HasAPIKey() bool {
	return c.APIKey != ""
}
