// Package config loads casearch settings from embedded defaults, an
// optional YAML file and CASEARCH_* environment variables, in that order.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// EnvPrefix prefixes every environment override. CASEARCH_SEARCH_THREADS
// sets search.threads.
const EnvPrefix = "CASEARCH_"

// Config is the full configuration.
type Config struct {
	Log        LogConfig       `yaml:"log"`
	Search     SearchConfig    `yaml:"search"`
	Identify   IdentifyConfig  `yaml:"identify"`
	Store      StoreConfig     `yaml:"store"`
	Ruletables RuletableConfig `yaml:"ruletables"`
	Viewer     ViewerConfig    `yaml:"viewer"`
}

// LogConfig sets the log level: debug, info, warn or error.
type LogConfig struct {
	Level string `yaml:"level"`
}

// SearchConfig holds the defaults of search programs.
type SearchConfig struct {
	// Threads is the worker count; 0 uses every CPU.
	Threads       int           `yaml:"threads"`
	Iterations    int           `yaml:"iterations"`
	Seed          int64         `yaml:"seed"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	ProgressEvery int           `yaml:"progress_every"`
}

// IdentifyConfig bounds pattern identification.
type IdentifyConfig struct {
	MaxPeriod int `yaml:"max_period"`
}

// StoreConfig locates the results database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// RuletableConfig locates @RULE files referenced as @name.
type RuletableConfig struct {
	Directory string `yaml:"directory"`
}

// ViewerConfig holds the GUI viewer defaults. Width and Height are in
// cells; SoupSize is the side of the random soups the viewer seeds.
type ViewerConfig struct {
	Scale       int     `yaml:"scale"`
	TPS         int     `yaml:"tps"`
	Rule        string  `yaml:"rule"`
	Pattern     string  `yaml:"pattern"`
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	SoupSize    int     `yaml:"soup_size"`
	SoupDensity float64 `yaml:"soup_density"`
}

// Default returns the embedded defaults.
func Default() *Config {
	c := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, c); err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return c
}

// Load returns the defaults overlaid with the file at path (skipped when
// path is empty) and then the environment.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := c.Apply(environ()); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// environ collects CASEARCH_* variables as dotted lower-case keys:
// CASEARCH_IDENTIFY_MAX_PERIOD becomes identify.max_period.
func environ() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(k, EnvPrefix) {
			continue
		}
		section, field, ok := strings.Cut(strings.ToLower(strings.TrimPrefix(k, EnvPrefix)), "_")
		if !ok {
			continue
		}
		out[section+"."+field] = v
	}
	return out
}

// Apply overrides settings from dotted key/value pairs such as
// "search.threads" = "8". Unknown keys are ignored.
func (c *Config) Apply(values map[string]string) error {
	for key, v := range values {
		var err error
		switch key {
		case "log.level":
			c.Log.Level = v
		case "search.threads":
			c.Search.Threads, err = strconv.Atoi(v)
		case "search.iterations":
			c.Search.Iterations, err = strconv.Atoi(v)
		case "search.seed":
			c.Search.Seed, err = strconv.ParseInt(v, 10, 64)
		case "search.flush_interval":
			c.Search.FlushInterval, err = time.ParseDuration(v)
		case "search.progress_every":
			c.Search.ProgressEvery, err = strconv.Atoi(v)
		case "identify.max_period":
			c.Identify.MaxPeriod, err = strconv.Atoi(v)
		case "store.path":
			c.Store.Path = v
		case "ruletables.directory":
			c.Ruletables.Directory = v
		case "viewer.scale":
			c.Viewer.Scale, err = strconv.Atoi(v)
		case "viewer.tps":
			c.Viewer.TPS, err = strconv.Atoi(v)
		case "viewer.rule":
			c.Viewer.Rule = v
		case "viewer.pattern":
			c.Viewer.Pattern = v
		case "viewer.width":
			c.Viewer.Width, err = strconv.Atoi(v)
		case "viewer.height":
			c.Viewer.Height, err = strconv.Atoi(v)
		case "viewer.soup_size":
			c.Viewer.SoupSize, err = strconv.Atoi(v)
		case "viewer.soup_density":
			c.Viewer.SoupDensity, err = strconv.ParseFloat(v, 64)
		}
		if err != nil {
			return fmt.Errorf("config: %s=%q: %w", key, v, err)
		}
	}
	return nil
}

// Validate checks ranges.
func (c *Config) Validate() error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if c.Log.Level != "" && !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("config: invalid log level %q (valid: debug, info, warn, error)", c.Log.Level)
	}
	switch {
	case c.Search.Threads < 0:
		return fmt.Errorf("config: search.threads must be non-negative, got %d", c.Search.Threads)
	case c.Search.Iterations < 0:
		return fmt.Errorf("config: search.iterations must be non-negative, got %d", c.Search.Iterations)
	case c.Search.FlushInterval < 0:
		return fmt.Errorf("config: search.flush_interval must be non-negative, got %v", c.Search.FlushInterval)
	case c.Identify.MaxPeriod <= 0:
		return fmt.Errorf("config: identify.max_period must be positive, got %d", c.Identify.MaxPeriod)
	case c.Viewer.Scale <= 0:
		return fmt.Errorf("config: viewer.scale must be positive, got %d", c.Viewer.Scale)
	case c.Viewer.TPS <= 0:
		return fmt.Errorf("config: viewer.tps must be positive, got %d", c.Viewer.TPS)
	case c.Viewer.Width <= 0 || c.Viewer.Height <= 0:
		return fmt.Errorf("config: viewer size must be positive, got %dx%d", c.Viewer.Width, c.Viewer.Height)
	case c.Viewer.SoupDensity < 0 || c.Viewer.SoupDensity > 1:
		return fmt.Errorf("config: viewer.soup_density must be in [0, 1], got %v", c.Viewer.SoupDensity)
	}
	return nil
}
