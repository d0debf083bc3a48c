package config

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config represents the startup configuration for the server
type Config struct {
	// ConnectionString is the SQL Server connection string
	ConnectionString string `yaml:"connectionString"`

	// Debug enables mirroring of wire traffic to the log directory
	Debug bool `yaml:"debug"`

	// LogDir is where debug logs are written when Debug is set
	LogDir string `yaml:"logDir"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		LogDir: "logs",
	}
}

// LoadFile loads configuration from a YAML file, falling back to defaults
// when path is empty or the file does not exist
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("error opening config file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Load loads configuration from an io.Reader
func Load(r io.Reader) (*Config, error) {
	config := Default()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading config data: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config YAML: %w", err)
	}

	return config, nil
}

// FromEnv applies environment overrides on top of cfg and returns it
func FromEnv(cfg *Config) *Config {
	if v := os.Getenv("MSSQL_CONNECTION_STRING"); v != "" {
		cfg.ConnectionString = v
	}
	if v := os.Getenv("MSSQL_MCP_DEBUG"); v != "" {
		if debug, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = debug
		}
	}
	if v := os.Getenv("MSSQL_MCP_LOG_DIR"); v != "" {
		cfg.LogDir = v
	}
	return cfg
}

// Validate reports whether the configuration can start the server
func (c *Config) Validate() error {
	if c.ConnectionString == "" {
		return fmt.Errorf("no connection string configured (set connectionString in the config file or MSSQL_CONNECTION_STRING)")
	}
	return nil
}
