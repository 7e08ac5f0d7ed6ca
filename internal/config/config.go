package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// PlatformsFile overrides the built-in hardware-id table (YAML or JSON)
	PlatformsFile string `yaml:"platforms_file,omitempty"`
	// Database is the inventory database path
	Database string `yaml:"database,omitempty"`
	// MountTypes limits the filesystems considered; an explicit empty list means all
	MountTypes []string      `yaml:"mount_types,omitempty"`
	DevRoot    string        `yaml:"dev_root,omitempty"`
	MountsFile string        `yaml:"mounts_file,omitempty"`
	Timeout    time.Duration `yaml:"timeout,omitempty"`
	Logging    Logging       `yaml:"logging"`
}

type Logging struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file,omitempty"`
	MaxSize    int    `yaml:"max_size,omitempty"`
	MaxBackups int    `yaml:"max_backups,omitempty"`
	MaxAge     int    `yaml:"max_age,omitempty"`
}

// defaultConfig provides baseline settings; enumerator paths default in the sources package
var defaultConfig = Config{
	Database: "/var/lib/mbedls/inventory.db",
	Timeout:  5 * time.Second,
	Logging: Logging{
		Level:      "warn",
		Format:     "console",
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	},
}

// SearchPaths lists the locations tried when no config path is given
func SearchPaths() []string {
	return []string{
		"/etc/mbedls/config.yaml",
		filepath.Join(os.Getenv("HOME"), ".config/mbedls/config.yaml"),
		"config.yaml",
	}
}

// Default returns the built-in configuration
func Default() *Config {
	cfg := defaultConfig
	return &cfg
}

func Load(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		for _, c := range SearchPaths() {
			if _, err := os.Stat(c); err == nil {
				path = c
				break
			}
		}
	}

	var cfg Config
	if path == "" {
		cfg = defaultConfig
	} else {
		data, err := os.ReadFile(path)
		switch {
		case err != nil && explicit:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		case err != nil:
			cfg = defaultConfig
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	// Apply defaults for missing fields
	if cfg.Database == "" {
		cfg.Database = defaultConfig.Database
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultConfig.Timeout
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaultConfig.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = defaultConfig.Logging.Format
	}
	if cfg.Logging.MaxSize == 0 {
		cfg.Logging.MaxSize = defaultConfig.Logging.MaxSize
	}
	if cfg.Logging.MaxBackups == 0 {
		cfg.Logging.MaxBackups = defaultConfig.Logging.MaxBackups
	}
	if cfg.Logging.MaxAge == 0 {
		cfg.Logging.MaxAge = defaultConfig.Logging.MaxAge
	}

	return &cfg, nil
}
