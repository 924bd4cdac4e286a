package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// PostgresConfig holds connection settings for the postgres job store
type PostgresConfig struct {
	URL             string        `yaml:"url"`
	ConnectAttempts uint          `yaml:"connectAttempts" validate:"min=1"`
	ConnectDelay    time.Duration `yaml:"connectDelay"`
}

// Config represents the application configuration
type Config struct {
	ServiceName     string         `yaml:"serviceName" validate:"required"`
	APIVersion      string         `yaml:"apiVersion" validate:"required"`
	ListenAddr      string         `yaml:"listenAddr" validate:"required,hostname_port"`
	RequestTimeout  time.Duration  `yaml:"requestTimeout" validate:"gt=0"`
	ShutdownTimeout time.Duration  `yaml:"shutdownTimeout" validate:"gt=0"`
	LogsDir         string         `yaml:"logsDir" validate:"required"`
	LogLevel        string         `yaml:"logLevel" validate:"required,oneof=debug info warn error"`
	Store           string         `yaml:"store" validate:"required,oneof=memory postgres"`
	Postgres        PostgresConfig `yaml:"postgres"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Default returns the configuration used when a field is not set in the file
func Default() Config {
	return Config{
		ServiceName:     "LMT321",
		APIVersion:      "v1",
		ListenAddr:      ":8000",
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		LogsDir:         "logs",
		LogLevel:        "info",
		Store:           StoreMemory,
		Postgres: PostgresConfig{
			ConnectAttempts: 5,
			ConnectDelay:    2 * time.Second,
		},
	}
}

// LoadWithEnv loads and validates lmt321_config_<env>.yaml.
// It looks for the config file in the current directory first, then in the user's home directory.
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(fmt.Sprintf("lmt321_config_%s.yaml", env))
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path.
// Fields missing from the file keep their Default values.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct and the store-specific settings
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.Store == StorePostgres && cfg.Postgres.URL == "" {
		return fmt.Errorf("config validation failed: postgres.url is required when store is %q", StorePostgres)
	}

	return nil
}

// applyEnvOverrides replaces the port of ListenAddr with $PORT when it is set
func applyEnvOverrides(cfg *Config) {
	port := os.Getenv("PORT")
	if port == "" {
		return
	}

	host, _, err := net.SplitHostPort(cfg.ListenAddr)
	if err != nil {
		host = ""
	}
	cfg.ListenAddr = net.JoinHostPort(host, port)
}

// findConfigFile searches for configFileName in the current directory and home directory
func findConfigFile(configFileName string) (string, error) {
	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", configFileName)
}
