package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// MinThreshold is the lowest popularity threshold that can ever be satisfied.
const MinThreshold = 1

// ErrInvalidThreshold is returned for thresholds below MinThreshold.
var ErrInvalidThreshold = errors.New("invalid popularity threshold")

// Config contains the program configuration
type Config struct {
	ClientID              string `yaml:"client_id"`
	ClientSecret          string `yaml:"client_secret"`
	CredentialsFile       string `yaml:"credentials_file"`
	GenresFile            string `yaml:"genres_file"`
	Threshold             int    `yaml:"threshold"`
	MaxAttempts           int    `yaml:"max_attempts"`
	SampleAttempts        int    `yaml:"sample_attempts"`
	MaxOffset             int    `yaml:"max_offset"`
	Workers               int    `yaml:"workers"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
	RequestsPerSecond     int    `yaml:"requests_per_second"`
	HistoryDB             string `yaml:"history_db"`
	PreviewDir            string `yaml:"preview_dir"`
	PreviewFallback       bool   `yaml:"preview_fallback"`
	FetchLyrics           bool   `yaml:"fetch_lyrics"`
	Seed                  uint64 `yaml:"seed"`
	Verbose               bool   `yaml:"verbose"`

	// Genre is filled from the command line, never from the file.
	Genre []string `yaml:"-"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		CredentialsFile:       "client_secrets.json",
		GenresFile:            "genres.json",
		Threshold:             MinThreshold,
		MaxAttempts:           255,
		SampleAttempts:        64,
		MaxOffset:             200,
		Workers:               1,
		RequestTimeoutSeconds: 10,
		RequestsPerSecond:     10,
		HistoryDB:             filepath.Join(GetDefaultDataPath(), "history.db"),
	}
}

// LoadConfigFile loads configuration from a YAML file.
// If path is empty, searches standard locations. Returns defaults if no file found.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.CredentialsFile = ExpandHome(cfg.CredentialsFile)
	cfg.GenresFile = ExpandHome(cfg.GenresFile)
	cfg.HistoryDB = ExpandHome(cfg.HistoryDB)
	cfg.PreviewDir = ExpandHome(cfg.PreviewDir)

	return cfg, nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

// FindConfigFile searches for a config file in standard locations
func FindConfigFile() string {
	home := homeDir()
	locations := []string{
		"./deepcut.yaml",
		"./deepcut.yml",
		filepath.Join(home, ".config", "deepcut", "config.yaml"),
		filepath.Join(home, ".config", "deepcut", "config.yml"),
		filepath.Join(home, ".deepcut.yaml"),
	}

	for _, path := range locations {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// SaveConfigFile saves the configuration to a YAML file
func SaveConfigFile(cfg Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Inline credentials may live here.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPath returns the default config file path
func GetDefaultConfigPath() string {
	return filepath.Join(homeDir(), ".config", "deepcut", "config.yaml")
}

// GetDefaultDataPath returns the directory for logs and the history database.
func GetDefaultDataPath() string {
	return filepath.Join(homeDir(), ".local", "share", "deepcut")
}

// GetDefaultLogPath returns the default log directory path
func GetDefaultLogPath() string {
	return filepath.Join(GetDefaultDataPath(), "logs")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

// RequestTimeout returns the per-request timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// ValidateThreshold reports whether threshold can ever be satisfied.
func ValidateThreshold(threshold int) error {
	if threshold < MinThreshold {
		return fmt.Errorf("%w: %d is too low to find any songs, must be %d or higher",
			ErrInvalidThreshold, threshold, MinThreshold)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := ValidateThreshold(c.Threshold); err != nil {
		return err
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1, got %d", c.MaxAttempts)
	}
	if c.SampleAttempts < 1 {
		return fmt.Errorf("sample_attempts must be at least 1, got %d", c.SampleAttempts)
	}
	if c.MaxOffset < 0 || c.MaxOffset > 1000 {
		return fmt.Errorf("max_offset must be between 0 and 1000, got %d", c.MaxOffset)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Workers > 16 {
		return fmt.Errorf("workers cannot exceed 16 (to avoid rate limiting), got %d", c.Workers)
	}
	if c.RequestTimeoutSeconds < 1 {
		return fmt.Errorf("request_timeout_seconds must be at least 1, got %d", c.RequestTimeoutSeconds)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second cannot be negative, got %d", c.RequestsPerSecond)
	}
	if c.GenresFile == "" {
		return fmt.Errorf("genres_file cannot be empty")
	}

	return nil
}
