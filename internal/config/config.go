package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server   HTTPConfig     `yaml:"server" json:"server"`
	Database DatabaseConfig `yaml:"database" json:"database"`
	Storage  StorageConfig  `yaml:"storage" json:"storage"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
	Rcon     RconConfig     `yaml:"rcon" json:"rcon"`
	ChatLog  ChatLogConfig  `yaml:"chat_log" json:"chat_log"`
	Updates  UpdatesConfig  `yaml:"updates" json:"updates"`
}

// HTTPConfig contains HTTP server settings
type HTTPConfig struct {
	Host           string   `yaml:"host" json:"host"`
	Port           int      `yaml:"port" json:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Path string `yaml:"path" json:"path"`
}

// StorageConfig contains storage paths
type StorageConfig struct {
	DataDir    string `yaml:"data_dir" json:"data_dir"`
	ChatLogDir string `yaml:"chat_log_dir" json:"chat_log_dir"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `yaml:"level" json:"level"`
	Format     string `yaml:"format" json:"format"`
	File       string `yaml:"file" json:"file"`
	MaxSize    int    `yaml:"max_size" json:"max_size"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`
	MaxAge     int    `yaml:"max_age" json:"max_age"`
}

// RconConfig contains RCON session tuning. The reconnect delays are part of
// the supervisor contract and are not configurable; only the per-command
// timeout is.
type RconConfig struct {
	CommandTimeout string `yaml:"command_timeout" json:"command_timeout"`
}

// Timeout returns the parsed per-command timeout.
func (r RconConfig) Timeout() time.Duration {
	return parseDuration(r.CommandTimeout, 10*time.Second)
}

// ChatLogConfig contains chat/event log retention settings
type ChatLogConfig struct {
	Retention     string `yaml:"retention" json:"retention"`
	SweepInterval string `yaml:"sweep_interval" json:"sweep_interval"`
}

// RetentionDuration returns the parsed retention window.
func (c ChatLogConfig) RetentionDuration() time.Duration {
	return parseDuration(c.Retention, 2*time.Hour)
}

// SweepEvery returns the parsed sweep interval.
func (c ChatLogConfig) SweepEvery() time.Duration {
	return parseDuration(c.SweepInterval, time.Minute)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// UpdatesConfig contains the external update command. The command is run with
// the server's install path appended and its output is streamed to the update
// subscriber.
type UpdatesConfig struct {
	Command string `yaml:"command" json:"command"`
}

// Load loads configuration from file and environment variables
func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: HTTPConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			AllowedOrigins: []string{"*"},
		},
		Database: DatabaseConfig{
			Path: "./data/squad-manager.db",
		},
		Storage: StorageConfig{
			DataDir: "./data",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			File:       "",
			MaxSize:    100,
			MaxBackups: 5,
			MaxAge:     30,
		},
		Rcon: RconConfig{
			CommandTimeout: "10s",
		},
		ChatLog: ChatLogConfig{
			Retention:     "2h",
			SweepInterval: "1m",
		},
		Updates: UpdatesConfig{
			Command: "",
		},
	}

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "./configs/config.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Override with environment variables
	if dbPath := os.Getenv("DATABASE_PATH"); dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		cfg.Storage.DataDir = dataDir
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	cfg.normalizePaths()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535")
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("database path must be set")
	}
	if d, err := time.ParseDuration(c.ChatLog.Retention); err != nil || d <= 0 {
		return fmt.Errorf("chat log retention must be a positive duration")
	}
	if d, err := time.ParseDuration(c.ChatLog.SweepInterval); err != nil || d < time.Second {
		return fmt.Errorf("chat log sweep interval must be at least one second")
	}
	if d, err := time.ParseDuration(c.Rcon.CommandTimeout); err != nil || d <= 0 {
		return fmt.Errorf("rcon command timeout must be a positive duration")
	}
	return nil
}

func (c *Config) normalizePaths() {
	if strings.TrimSpace(c.Storage.DataDir) == "" {
		c.Storage.DataDir = "./data"
	}
	if abs, err := filepath.Abs(c.Storage.DataDir); err == nil {
		c.Storage.DataDir = abs
	}
	if strings.TrimSpace(c.Storage.ChatLogDir) == "" {
		c.Storage.ChatLogDir = filepath.Join(c.Storage.DataDir, "chatlogs")
	}
	if !filepath.IsAbs(c.Database.Path) {
		if abs, err := filepath.Abs(c.Database.Path); err == nil {
			c.Database.Path = abs
		}
	}
}
