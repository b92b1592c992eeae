package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds the process-wide configuration of the search service.
type ServerConfig struct {
	HTTP    HTTPConfig        `yaml:"http"`
	Storage StorageConfig     `yaml:"storage"`
	Jobs    JobsConfig        `yaml:"jobs"`
	Search  SearchConfig      `yaml:"search"`
	Logging LoggingConfig     `yaml:"logging"`
	Lexicon LexiconConfig     `yaml:"lexicon"`
	Scoring *ScoringOverrides `yaml:"scoring"` // server-wide changes to the stock weights
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int   `yaml:"port"`
	ReadTimeoutSec  int   `yaml:"read_timeout_sec"`
	WriteTimeoutSec int   `yaml:"write_timeout_sec"`
	ShutdownSec     int   `yaml:"shutdown_timeout_sec"`
	MaxBodyBytes    int64 `yaml:"max_body_bytes"`
}

// StorageConfig holds persistence settings.
type StorageConfig struct {
	DataDir string `yaml:"data_dir"`
}

// JobsConfig holds background job settings.
type JobsConfig struct {
	MaxWorkers       int `yaml:"max_workers"`
	RetentionMinutes int `yaml:"retention_minutes"` // finished jobs are kept this long
}

// SearchConfig holds request-level search settings.
type SearchConfig struct {
	DefaultPageSize    int `yaml:"default_page_size"`
	MaxPageSize        int `yaml:"max_page_size"`
	MultiSearchWorkers int `yaml:"multi_search_workers"`
	MaxMultiQueries    int `yaml:"max_multi_queries"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Env   string `yaml:"env"`   // development or production
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// LexiconConfig points at an optional YAML overlay for the built-in word tables.
type LexiconConfig struct {
	Path string `yaml:"path"`
}

// DefaultServerConfig returns a configuration with every default applied.
func DefaultServerConfig() ServerConfig {
	var cfg ServerConfig
	cfg.ApplyDefaults()
	return cfg
}

// LoadServerConfig reads configuration from a YAML file. An empty path yields
// the defaults.
func LoadServerConfig(path string) (ServerConfig, error) {
	if path == "" {
		return DefaultServerConfig(), nil
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return ServerConfig{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return ParseServerConfig(data)
}

// ParseServerConfig decodes YAML after substituting ${VAR} and ${VAR:-default}
// references, then applies defaults and validates.
func ParseServerConfig(data []byte) (ServerConfig, error) {
	data = expandEnvVars(data)

	var cfg ServerConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ServerConfig{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return ServerConfig{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyDefaults fills empty fields with default values.
func (c *ServerConfig) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		c.HTTP.MaxBodyBytes = 50 << 20
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "./data"
	}
	if c.Jobs.MaxWorkers <= 0 {
		c.Jobs.MaxWorkers = 4
	}
	if c.Jobs.RetentionMinutes <= 0 {
		c.Jobs.RetentionMinutes = 60
	}
	if c.Search.DefaultPageSize <= 0 {
		c.Search.DefaultPageSize = 10
	}
	if c.Search.MaxPageSize <= 0 {
		c.Search.MaxPageSize = 100
	}
	if c.Search.MultiSearchWorkers <= 0 {
		c.Search.MultiSearchWorkers = 8
	}
	if c.Search.MaxMultiQueries <= 0 {
		c.Search.MaxMultiQueries = 10
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "development"
	}
}

// Validate checks the configuration for correctness.
func (c *ServerConfig) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Search.DefaultPageSize > c.Search.MaxPageSize {
		return fmt.Errorf("search.default_page_size (%d) must not exceed search.max_page_size (%d)",
			c.Search.DefaultPageSize, c.Search.MaxPageSize)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
		// ok
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	if err := c.Scoring.Apply(DefaultScoringConfig()).Validate(); err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	return nil
}

// BaseScoring returns the stock weights with the server-wide overrides applied.
func (c *ServerConfig) BaseScoring() ScoringConfig {
	return c.Scoring.Apply(DefaultScoringConfig())
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
