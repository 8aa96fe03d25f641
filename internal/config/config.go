// Package config loads cinematch configuration from an optional YAML file
// and environment variables, and wires the process-wide logger.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration values.
type Config struct {
	// SurrealDB connection
	SurrealDBURL       string `yaml:"surrealdb_url"`
	SurrealDBNamespace string `yaml:"surrealdb_namespace"`
	SurrealDBDatabase  string `yaml:"surrealdb_database"`
	SurrealDBUser      string `yaml:"surrealdb_user"`
	SurrealDBPass      string `yaml:"surrealdb_pass"`
	SurrealDBAuthLevel string `yaml:"surrealdb_auth_level"` // "root" or "database"

	// Ollama embedding
	OllamaHost         string        `yaml:"ollama_host"`
	EmbeddingModel     string        `yaml:"embedding_model"`
	EmbeddingDimension int           `yaml:"embedding_dimension"`
	EmbeddingTimeout   time.Duration `yaml:"embedding_timeout"`
	EmbeddingAttempts  int           `yaml:"embedding_attempts"`

	// Generation
	MaxConcurrent int `yaml:"max_concurrent"`
	BatchSize     int `yaml:"batch_size"`

	// Similarity queries
	MaxResults int `yaml:"max_results"`

	// Logging
	LogFile  string     `yaml:"log_file"`
	LogLevel slog.Level `yaml:"-"`
}

// Load reads configuration with precedence defaults < config file < env.
// The config file is $CINEMATCH_CONFIG or ~/.cinematch.yaml if present.
func Load() (Config, error) {
	cfg := Config{
		SurrealDBURL:       "ws://localhost:8000/rpc",
		SurrealDBNamespace: "cinematch",
		SurrealDBDatabase:  "movies",
		SurrealDBUser:      "root",
		SurrealDBPass:      "root",
		SurrealDBAuthLevel: "root",

		OllamaHost:         "http://localhost:11434",
		EmbeddingModel:     "nomic-embed-text",
		EmbeddingDimension: 768,
		EmbeddingTimeout:   120 * time.Second,
		EmbeddingAttempts:  3,

		MaxConcurrent: 10,
		BatchSize:     1000,
		MaxResults:    100,

		LogFile:  filepath.Join(os.TempDir(), "cinematch.log"),
		LogLevel: slog.LevelInfo,
	}

	if err := applyFile(&cfg); err != nil {
		return cfg, err
	}
	applyEnv(&cfg)

	if cfg.EmbeddingDimension <= 0 {
		return cfg, fmt.Errorf("embedding dimension must be positive, got %d", cfg.EmbeddingDimension)
	}
	if cfg.EmbeddingAttempts <= 0 {
		cfg.EmbeddingAttempts = 1
	}
	return cfg, nil
}

// applyFile overlays values from the optional YAML config file.
func applyFile(cfg *Config) error {
	path := os.Getenv("CINEMATCH_CONFIG")
	explicit := path != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		path = filepath.Join(home, ".cinematch.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if explicit {
			return fmt.Errorf("read config file %s: %w", path, err)
		}
		return nil
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	// The level keyword lives in the file as a string.
	var raw struct {
		LogLevel string `yaml:"log_level"`
	}
	if err := yaml.Unmarshal(data, &raw); err == nil && raw.LogLevel != "" {
		cfg.LogLevel = ParseLogLevel(raw.LogLevel)
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.SurrealDBURL, "SURREALDB_URL")
	setString(&cfg.SurrealDBNamespace, "SURREALDB_NAMESPACE")
	setString(&cfg.SurrealDBDatabase, "SURREALDB_DATABASE")
	setString(&cfg.SurrealDBUser, "SURREALDB_USER")
	setString(&cfg.SurrealDBPass, "SURREALDB_PASS")
	setString(&cfg.SurrealDBAuthLevel, "SURREALDB_AUTH_LEVEL")

	setString(&cfg.OllamaHost, "OLLAMA_HOST")
	setString(&cfg.EmbeddingModel, "CINEMATCH_EMBEDDING_MODEL")
	setInt(&cfg.EmbeddingDimension, "CINEMATCH_EMBEDDING_DIMENSION")
	setInt(&cfg.EmbeddingAttempts, "CINEMATCH_EMBEDDING_ATTEMPTS")
	if v := os.Getenv("OLLAMA_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.EmbeddingTimeout = time.Duration(secs) * time.Second
		}
	}

	setInt(&cfg.MaxConcurrent, "CINEMATCH_MAX_CONCURRENT")
	setInt(&cfg.BatchSize, "CINEMATCH_BATCH_SIZE")
	setInt(&cfg.MaxResults, "CINEMATCH_MAX_RESULTS")

	setString(&cfg.LogFile, "CINEMATCH_LOG_FILE")
	if v := os.Getenv("CINEMATCH_LOG_LEVEL"); v != "" {
		cfg.LogLevel = ParseLogLevel(v)
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// ParseLogLevel maps a level keyword to a slog.Level, defaulting to INFO.
func ParseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
