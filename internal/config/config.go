package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Defaults for the search run. The target digest and keyspace bounds
// mirror the challenge this coordinator was built for.
const (
	DefaultTargetHash = "EC9C0F7EDCC18A98B1F31853B1813301"
	DefaultRangeEnd   = int64(1e10) - 1
	DefaultBlockUnit  = 100000
	DefaultHost       = "0.0.0.0"
	DefaultPort       = 5000
	DefaultStatusPort = 8571
	DefaultMaxConns   = 256
)

// Config represents coordinator configuration
type Config struct {
	// Host is the bind address for the worker listener
	Host string `json:"host"`
	// Port is the worker listener port
	Port int `json:"port"`
	// StatusPort serves the HTTP status/metrics endpoint; 0 disables it
	StatusPort int `json:"status_port"`
	// TargetHash is the MD5 digest workers search for, upper-case hex
	TargetHash string `json:"target_hash"`
	// RangeEnd is the inclusive upper bound of the keyspace [0, RangeEnd]
	RangeEnd int64 `json:"range_end"`
	// BlockUnit is the per-core block size; a worker declaring N cores
	// receives blocks of BlockUnit*N numbers
	BlockUnit int64 `json:"block_unit"`
	// MaxConns caps concurrent worker connections
	MaxConns int `json:"max_conns"`
	// LogLevel is one of debug, info, warn, error, none
	LogLevel string `json:"log_level"`
	// LogPath is the log file path; empty logs to stderr
	LogPath string `json:"log_path,omitempty"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Host:       DefaultHost,
		Port:       DefaultPort,
		StatusPort: DefaultStatusPort,
		TargetHash: DefaultTargetHash,
		RangeEnd:   DefaultRangeEnd,
		BlockUnit:  DefaultBlockUnit,
		MaxConns:   DefaultMaxConns,
		LogLevel:   "info",
	}
}

// Load loads configuration from file, starting from defaults so a
// partial file overrides only the fields it provides. A missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Validate checks the configuration and normalizes the target hash to
// upper case
func (c *Config) Validate() error {
	c.TargetHash = strings.ToUpper(strings.TrimSpace(c.TargetHash))

	if len(c.TargetHash) != 32 {
		return fmt.Errorf("target hash must be 32 hex characters, got %d", len(c.TargetHash))
	}
	for _, r := range c.TargetHash {
		if (r < '0' || r > '9') && (r < 'A' || r > 'F') {
			return fmt.Errorf("target hash contains non-hex character %q", r)
		}
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.StatusPort < 0 || c.StatusPort > 65535 {
		return fmt.Errorf("invalid status port %d", c.StatusPort)
	}
	if c.RangeEnd < 0 {
		return fmt.Errorf("range end must be non-negative, got %d", c.RangeEnd)
	}
	if c.BlockUnit <= 0 {
		return fmt.Errorf("block unit must be positive, got %d", c.BlockUnit)
	}
	if c.MaxConns <= 0 {
		return fmt.Errorf("max connections must be positive, got %d", c.MaxConns)
	}

	return nil
}

// ListenAddr returns the worker listener address
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StatusAddr returns the status endpoint address, or empty when disabled
func (c *Config) StatusAddr() string {
	if c.StatusPort == 0 {
		return ""
	}
	return fmt.Sprintf(":%d", c.StatusPort)
}
