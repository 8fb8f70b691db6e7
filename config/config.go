// Package config provides configuration loading and management for cipctl.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/core-coin/cipctl/collection"
	"github.com/core-coin/cipctl/lifecycle"
	"github.com/core-coin/cipctl/notify"
	"gopkg.in/yaml.v3"
)

// Config represents the complete cipctl configuration
type Config struct {
	Collection CollectionConfig `yaml:"collection"`
	Lifecycle  LifecycleConfig  `yaml:"lifecycle"`
	Notify     NotifyConfig     `yaml:"notify"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Watch      WatchConfig      `yaml:"watch"`
}

// CollectionConfig locates the proposal documents
type CollectionConfig struct {
	// Root is the repository root (auto-detected from git if empty)
	Root string `yaml:"root"`
	// Patterns are doublestar globs relative to Root
	Patterns []string `yaml:"patterns"`
}

// LifecycleConfig selects how status is recorded in metadata
type LifecycleConfig struct {
	// Strategy is "tags" or "status"
	Strategy string `yaml:"strategy"`
}

// NotifyConfig configures status change notifications
type NotifyConfig struct {
	// NATSURL is the NATS server URL (empty = notifications disabled)
	NATSURL string `yaml:"nats_url"`
	// Subject is the subject prefix events are published under
	Subject string `yaml:"subject"`
}

// MetricsConfig configures the Prometheus textfile export
type MetricsConfig struct {
	// Textfile is written after every run (empty = disabled)
	Textfile string `yaml:"textfile"`
}

// WatchConfig configures watch mode
type WatchConfig struct {
	// Debounce is how long to wait for changes to settle before a run
	Debounce time.Duration `yaml:"debounce"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Collection: CollectionConfig{
			Root:     "", // Auto-detect
			Patterns: append([]string(nil), collection.DefaultPatterns...),
		},
		Lifecycle: LifecycleConfig{
			Strategy: "tags",
		},
		Notify: NotifyConfig{
			Subject: notify.DefaultSubject,
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if len(c.Collection.Patterns) == 0 {
		return fmt.Errorf("collection.patterns must not be empty")
	}
	for _, p := range c.Collection.Patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("collection.patterns: invalid pattern %q", p)
		}
	}
	if _, err := lifecycle.StrategyByName(c.Lifecycle.Strategy); err != nil {
		return fmt.Errorf("lifecycle.strategy: %w", err)
	}
	if c.Notify.NATSURL != "" && c.Notify.Subject == "" {
		return fmt.Errorf("notify.subject is required when notify.nats_url is set")
	}
	if c.Watch.Debounce <= 0 {
		return fmt.Errorf("watch.debounce must be positive")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file over the defaults
func LoadFromFile(path string) (*Config, error) {
	overlay, err := readFile(path)
	if err != nil {
		return nil, err
	}
	config := DefaultConfig()
	config.Merge(overlay)
	return config, nil
}

// readFile decodes a YAML file without defaults so it can be layered with Merge
func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// A relative root is relative to the file that names it
	if config.Collection.Root != "" && !filepath.IsAbs(config.Collection.Root) {
		config.Collection.Root = filepath.Join(filepath.Dir(path), config.Collection.Root)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Collection.Root != "" {
		c.Collection.Root = other.Collection.Root
	}
	if len(other.Collection.Patterns) > 0 {
		c.Collection.Patterns = other.Collection.Patterns
	}

	if other.Lifecycle.Strategy != "" {
		c.Lifecycle.Strategy = other.Lifecycle.Strategy
	}

	if other.Notify.NATSURL != "" {
		c.Notify.NATSURL = other.Notify.NATSURL
	}
	if other.Notify.Subject != "" {
		c.Notify.Subject = other.Notify.Subject
	}

	if other.Metrics.Textfile != "" {
		c.Metrics.Textfile = other.Metrics.Textfile
	}

	if other.Watch.Debounce != 0 {
		c.Watch.Debounce = other.Watch.Debounce
	}
}
