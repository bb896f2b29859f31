/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ssargent/rowreader/pkg/codec"
	"github.com/ssargent/rowreader/pkg/logging"
	"github.com/ssargent/rowreader/pkg/storage"
)

// Config represents the rowreader configuration
type Config struct {
	DataDir  string   `yaml:"data_dir"`
	Port     int      `yaml:"port"`
	Bind     string   `yaml:"bind"`
	Security Security `yaml:"security"`
	Logging  Logging  `yaml:"logging"`
	Decoder  Decoder  `yaml:"decoder"`
	Storage  Storage  `yaml:"storage"`
	Cache    Cache    `yaml:"cache"`
}

// Security contains security-related configuration
type Security struct {
	APIKey string `yaml:"api_key"`
}

// Logging contains logging configuration
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Decoder contains defaults for decode requests
type Decoder struct {
	DefaultType  string `yaml:"default_type"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
	Parallelism  int    `yaml:"parallelism"`
}

// Storage contains dataset storage configuration
type Storage struct {
	Compression string `yaml:"compression"`
}

// Cache contains configuration of the query result cache
type Cache struct {
	MaxBytes int64 `yaml:"max_bytes"` // 0 disables the cache
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data",
		Port:    8080,
		Bind:    "127.0.0.1",
		Security: Security{
			APIKey: "auto",
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
		Decoder: Decoder{
			DefaultType:  codec.TagFloat32,
			MaxBodyBytes: 64 << 20,
			Parallelism:  0,
		},
		Storage: Storage{
			Compression: string(storage.CompressionLZ4),
		},
		Cache: Cache{
			MaxBytes: 32 << 20,
		},
	}
}

// Validate checks that all enumerated settings hold supported values
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	if _, err := logging.ParseFormat(c.Logging.Format); err != nil {
		return err
	}
	if _, err := codec.ParseElementType(c.Decoder.DefaultType); err != nil {
		return fmt.Errorf("invalid decoder.default_type: %w", err)
	}
	if c.Decoder.MaxBodyBytes <= 0 {
		return fmt.Errorf("decoder.max_body_bytes must be positive, got %d", c.Decoder.MaxBodyBytes)
	}
	if _, err := storage.ParseCompression(c.Storage.Compression); err != nil {
		return fmt.Errorf("invalid storage.compression: %w", err)
	}
	if c.Cache.MaxBytes < 0 {
		return fmt.Errorf("cache.max_bytes must not be negative, got %d", c.Cache.MaxBytes)
	}
	return nil
}

// LoadConfig loads configuration from the specified path. Settings missing from
// the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	// Validate path to prevent directory traversal
	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write with secure permissions (0600)
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateSecureKey generates a cryptographically secure random key
func GenerateSecureKey(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// BootstrapConfig creates a new configuration with a generated API key and saves it
func BootstrapConfig(configPath string, dataDir string) (*Config, error) {
	config := DefaultConfig()
	if dataDir != "" {
		config.DataDir = dataDir
	}

	apiKey, err := GenerateSecureKey(32) // 256 bits
	if err != nil {
		return nil, fmt.Errorf("failed to generate API key: %w", err)
	}
	config.Security.APIKey = apiKey

	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./rowreader.yaml"
	}

	// For Linux/macOS, use ~/.config/rowreader/config.yaml
	return filepath.Join(homeDir, ".config", "rowreader", "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
