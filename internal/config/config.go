// Package config loads the YAML configuration of a synthesis engine.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"shape-synth/internal/diagnostic"
	"shape-synth/internal/generate"
	"shape-synth/internal/logging"
	"shape-synth/internal/schema"
	"shape-synth/internal/tree"
	"shape-synth/utils"
)

// DefaultNullInjection is the null probability of nillable nodes.
const DefaultNullInjection = 0.2

// Config is the engine configuration file.
//
//	seed: 42
//	size: {min: 0, max: 5}
//	null_injection: 0.2
//	retries: {filter: 100, unique: 1000}
//	cache: {size: 2048}
//	schema: {cache_size: 1024}
//	strict: true
//	log: {level: info, format: text}
type Config struct {
	Seed          int64         `yaml:"seed,omitempty"`
	Size          SizeConfig    `yaml:"size"`
	NullInjection *float64      `yaml:"null_injection,omitempty"`
	Retries       RetriesConfig `yaml:"retries"`
	Cache         CacheConfig   `yaml:"cache"`
	Schema        SchemaConfig  `yaml:"schema"`
	Strict        *bool         `yaml:"strict,omitempty"`
	Log           LogConfig     `yaml:"log"`
}

// SizeConfig is the default container size range.
type SizeConfig struct {
	Min *int `yaml:"min,omitempty"`
	Max *int `yaml:"max,omitempty"`
}

// RetriesConfig holds the retry budgets of filters and unique containers.
type RetriesConfig struct {
	Filter int `yaml:"filter,omitempty"`
	Unique int `yaml:"unique,omitempty"`
}

// CacheConfig sizes the structural generation cache. A negative size
// disables it.
type CacheConfig struct {
	Size int `yaml:"size,omitempty"`
}

// SchemaConfig sizes the shape cache of the resolver.
type SchemaConfig struct {
	CacheSize int `yaml:"cache_size,omitempty"`
}

// LogConfig selects the log level and format.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// Default returns a Config with every default applied.
func Default() *Config {
	var c Config
	applyDefaults(&c)

	return &c
}

// LoadFile loads and parses a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a validated Config.
func Parse(data []byte) (*Config, error) {
	var c Config

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	applyDefaults(&c)

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// ApplyDefaults fills the unset fields of c.
func (c *Config) ApplyDefaults() {
	applyDefaults(c)
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(c *Config) {
	if c.Size.Min == nil {
		c.Size.Min = ptr(tree.DefaultBounds.Min)
	}

	if c.Size.Max == nil {
		c.Size.Max = ptr(max(tree.DefaultBounds.Max, *c.Size.Min))
	}

	if c.NullInjection == nil {
		c.NullInjection = ptr(DefaultNullInjection)
	}

	if c.Retries.Filter == 0 {
		c.Retries.Filter = generate.DefaultFilterRetries
	}

	if c.Retries.Unique == 0 {
		c.Retries.Unique = generate.DefaultUniqueRetries
	}

	if c.Cache.Size == 0 {
		c.Cache.Size = generate.DefaultCacheSize
	}

	if c.Schema.CacheSize == 0 {
		c.Schema.CacheSize = schema.DefaultCacheSize
	}

	if c.Strict == nil {
		c.Strict = ptr(true)
	}

	if c.Log.Level == "" {
		c.Log.Level = logging.LevelInfo.String()
	}

	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate reports every inconsistent setting.
func (c *Config) Validate() error {
	var errs []error

	if err := diagnostic.CheckBounds("size", *c.Size.Min, *c.Size.Max); err != nil {
		errs = append(errs, err)
	}

	if p := *c.NullInjection; !utils.IsProbability(p) {
		errs = append(errs, &diagnostic.ConstraintError{Reason: fmt.Sprintf("null_injection %v outside [0, 1]", p)})
	}

	errs = append(errs,
		diagnostic.CheckRetries("filter", c.Retries.Filter),
		diagnostic.CheckRetries("unique", c.Retries.Unique),
	)

	if c.Schema.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("schema.cache_size must be positive, got %d", c.Schema.CacheSize))
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}

	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// Bounds returns the default container bounds.
func (c *Config) Bounds() tree.Bounds {
	return tree.Bounds{Min: *c.Size.Min, Max: *c.Size.Max}
}

// IsStrict reports whether manipulators resolve strictly by default.
func (c *Config) IsStrict() bool {
	return c.Strict == nil || *c.Strict
}

// Logger builds the logger described by the log section, writing to out
// (stderr when nil).
func (c *Config) Logger(out io.Writer) logging.Logger {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		level = logging.LevelInfo
	}

	return logging.NewLogger(logging.Config{Level: level, Format: c.Log.Format, Output: out})
}

// Marshal serializes a Config to YAML.
func Marshal(c *Config) ([]byte, error) {
	return yaml.Marshal(c)
}

func ptr[T any](v T) *T {
	return &v
}
