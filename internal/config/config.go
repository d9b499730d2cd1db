package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

const envPrefix = "EXPLORER"

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Data    DataConfig    `yaml:"data" envconfig:"DATA"`
	Export  ExportConfig  `yaml:"export" envconfig:"EXPORT"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST" default:""`
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// DataConfig describes where the dataset comes from
type DataConfig struct {
	Source       string        `yaml:"source" envconfig:"SOURCE" default:"data/framingham.csv"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" envconfig:"FETCH_TIMEOUT" default:"30s"`
	MaxRetries   int           `yaml:"max_retries" envconfig:"MAX_RETRIES" default:"3"`
	// Generic loads every header column with inferred types instead of the
	// fixed heart-study schema.
	Generic bool `yaml:"generic" envconfig:"GENERIC" default:"false"`
}

// ExportConfig contains export destinations
type ExportConfig struct {
	Dir        string `yaml:"dir" envconfig:"DIR" default:"output"`
	SQLitePath string `yaml:"sqlite_path" envconfig:"SQLITE_PATH" default:"output/explorer.db"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/explorer.log"`
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load loads configuration from environment variables and an optional YAML
// file. Environment variables take precedence over the file.
func Load() (*Config, error) {
	var cfg Config

	// Load from environment variables first
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// Load from config file if exists
	if configFile := getConfigFilePath(); configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		mergeConfigs(*fileConfig, &cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// mergeConfigs copies every non-zero file value into cfg unless the matching
// environment variable was set explicitly.
func mergeConfigs(file Config, cfg *Config) {
	override(&cfg.Server.Host, file.Server.Host, "SERVER_HOST")
	override(&cfg.Server.Port, file.Server.Port, "SERVER_PORT")
	override(&cfg.Server.ReadTimeout, file.Server.ReadTimeout, "SERVER_READ_TIMEOUT")
	override(&cfg.Server.WriteTimeout, file.Server.WriteTimeout, "SERVER_WRITE_TIMEOUT")
	override(&cfg.Server.IdleTimeout, file.Server.IdleTimeout, "SERVER_IDLE_TIMEOUT")
	override(&cfg.Server.ShutdownTimeout, file.Server.ShutdownTimeout, "SERVER_SHUTDOWN_TIMEOUT")

	override(&cfg.Data.Source, file.Data.Source, "DATA_SOURCE")
	override(&cfg.Data.FetchTimeout, file.Data.FetchTimeout, "DATA_FETCH_TIMEOUT")
	override(&cfg.Data.MaxRetries, file.Data.MaxRetries, "DATA_MAX_RETRIES")
	override(&cfg.Data.Generic, file.Data.Generic, "DATA_GENERIC")

	override(&cfg.Export.Dir, file.Export.Dir, "EXPORT_DIR")
	override(&cfg.Export.SQLitePath, file.Export.SQLitePath, "EXPORT_SQLITE_PATH")

	override(&cfg.Logging.Level, file.Logging.Level, "LOGGING_LEVEL")
	override(&cfg.Logging.Format, file.Logging.Format, "LOGGING_FORMAT")
	override(&cfg.Logging.Output, file.Logging.Output, "LOGGING_OUTPUT")
	override(&cfg.Logging.FilePath, file.Logging.FilePath, "LOGGING_FILE_PATH")
}

func override[T comparable](dst *T, fileValue T, envKey string) {
	var zero T
	if fileValue == zero {
		return
	}
	if _, set := os.LookupEnv(envPrefix + "_" + envKey); set {
		return
	}
	*dst = fileValue
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}
	if strings.TrimSpace(c.Data.Source) == "" {
		return fmt.Errorf("data source must be set")
	}
	if c.Data.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative: %d", c.Data.MaxRetries)
	}

	c.Logging.Format = strings.ToLower(c.Logging.Format)
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid logging format %q: want json or text", c.Logging.Format)
	}
	c.Logging.Output = strings.ToLower(c.Logging.Output)
	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid logging output %q: want console, file or both", c.Logging.Output)
	}
	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return fmt.Errorf("logging file path is required for output %q", c.Logging.Output)
	}
	return nil
}

// getConfigFilePath returns the path to the config file, or "" if none exists
func getConfigFilePath() string {
	if explicit := os.Getenv(envPrefix + "_CONFIG"); explicit != "" {
		return explicit
	}
	locations := []string{
		"explorer.yaml",
		"configs/explorer.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Data: DataConfig{
			Source:       "data/framingham.csv",
			FetchTimeout: 30 * time.Second,
			MaxRetries:   3,
		},
		Export: ExportConfig{
			Dir:        "output",
			SQLitePath: "output/explorer.db",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/explorer.log",
		},
	}
}
