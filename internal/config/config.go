package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/junction/internal/errors"
)

const (
	// ConfigFileName is the default name of the configuration file.
	ConfigFileName = "junction.yaml"

	// SignalsReactive selects the built-in reactive signal implementation.
	SignalsReactive = "reactive"

	// SignalsNone leaves stores without a signal factory.
	SignalsNone = "none"

	// TransformIdentity stores values unchanged.
	TransformIdentity = "identity"

	// TransformTrim trims whitespace from string values.
	TransformTrim = "trim"

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"

	// DefaultNamespace is the default metrics namespace and tracer name.
	DefaultNamespace = "junction"
)

// candidateNames are the file names Load looks for, in order.
var candidateNames = []string{ConfigFileName, "junction.yml", "junction.json"}

// Config represents the complete junction configuration.
type Config struct {
	// Signals selects the signal implementation ("reactive" or "none").
	Signals string `json:"signals,omitempty" yaml:"signals,omitempty"`

	// Transform selects the value transform ("identity" or "trim").
	Transform string `json:"transform,omitempty" yaml:"transform,omitempty"`

	// LogLevel is the slog level name (debug, info, warn, error).
	LogLevel string `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `json:"metrics,omitempty" yaml:"metrics,omitempty"`

	// Tracing contains OpenTelemetry settings.
	Tracing TracingConfig `json:"tracing,omitempty" yaml:"tracing,omitempty"`

	// Seed contains values every new store starts with.
	Seed map[string]any `json:"seed,omitempty" yaml:"seed,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled turns on metric collection.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`

	// Namespace is the metrics namespace.
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`

	// Subsystem is the metrics subsystem.
	Subsystem string `json:"subsystem,omitempty" yaml:"subsystem,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	// Enabled turns on span export.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`

	// TracerName is the name of the tracer.
	TracerName string `json:"tracerName,omitempty" yaml:"tracerName,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Signals:   SignalsReactive,
		Transform: TransformIdentity,
		LogLevel:  DefaultLogLevel,
		Metrics: MetricsConfig{
			Namespace: DefaultNamespace,
		},
		Tracing: TracingConfig{
			TracerName: DefaultNamespace,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for junction.yaml, junction.yml and junction.json, in that order.
func Load(dir string) (*Config, error) {
	for _, name := range candidateNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("J101").
		WithDetail("No junction.yaml or junction.json found in " + dir)
}

// LoadFile reads configuration from the specified file path.
// Files ending in .json are parsed as JSON, everything else as YAML.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("J101").WithDetail("No configuration at " + path)
		}
		return nil, errors.New("J102").WithDetail(path).Wrap(err)
	}

	cfg := New()
	if isJSON(path) {
		err = json.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New("J102").
			WithDetail("Failed to parse " + filepath.Base(path)).
			Wrap(err)
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveTo writes the configuration to the specified path, as JSON or YAML
// depending on the extension.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isJSON(path) {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return errors.New("J102").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("J102").WithDetail(path).Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Signals == "" {
		c.Signals = SignalsReactive
	}
	if c.Transform == "" {
		c.Transform = TransformIdentity
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultNamespace
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Signals {
	case SignalsReactive, SignalsNone:
	default:
		return errors.New("J103").
			WithDetailf("unknown signals implementation %q", c.Signals).
			WithSuggestion(`Use "reactive" or "none"`)
	}

	switch c.Transform {
	case TransformIdentity, TransformTrim:
	default:
		return errors.New("J103").
			WithDetailf("unknown transform %q", c.Transform).
			WithSuggestion(`Use "identity" or "trim"`)
	}

	if _, err := c.SlogLevel(); err != nil {
		return errors.New("J103").
			WithDetailf("unknown log level %q", c.LogLevel).
			WithSuggestion("Use debug, info, warn or error")
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(c.LogLevel))
	return level, err
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
