package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	LLM      LLMConfig
	Ingest   IngestConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr string
}

// LLMConfig holds model-related configuration
type LLMConfig struct {
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration
	// MaxDocumentChars caps document text submitted for extraction.
	// 0 means the built-in default.
	MaxDocumentChars int
}

// IngestConfig holds directory-watch ingestion configuration
type IngestConfig struct {
	WatchDirs []string
	Debounce  time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		},
		LLM: LLMConfig{
			Model:            getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:           getEnv("OPENAI_API_KEY", ""),
			BaseURL:          getEnv("OPENAI_BASE_URL", ""),
			Temperature:      getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			Timeout:          getEnvAsDuration("OPENAI_TIMEOUT", 45*time.Second),
			MaxDocumentChars: getEnvAsInt("EXTRACT_MAX_DOCUMENT_CHARS", 0),
		},
		Ingest: IngestConfig{
			Debounce: getEnvAsDuration("INGEST_DEBOUNCE", 500*time.Millisecond),
		},
	}
}

// fileConfig mirrors the optional TOML config file. Only the fields a file
// may override are listed; env vars still win for secrets.
type fileConfig struct {
	Server struct {
		HTTPAddr string `toml:"http_addr"`
	} `toml:"server"`
	Database struct {
		DSN string `toml:"dsn"`
	} `toml:"database"`
	LLM struct {
		Model            string  `toml:"model"`
		BaseURL          string  `toml:"base_url"`
		Temperature      float32 `toml:"temperature"`
		MaxDocumentChars int     `toml:"max_document_chars"`
	} `toml:"llm"`
	Ingest struct {
		WatchDirs []string `toml:"watch_dirs"`
		Debounce  string   `toml:"debounce"`
	} `toml:"ingest"`
}

// ApplyFile overlays values from a TOML config file onto c. Missing file is
// not an error when optional is true. Env-sourced values are only replaced
// when the file sets the field and the env left the default.
func (c *Config) ApplyFile(path string, optional bool) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return nil
		}
		return WrapError(err, "read config file")
	}
	var fc fileConfig
	if err := toml.Unmarshal(b, &fc); err != nil {
		return WrapError(err, "parse config file")
	}

	if fc.Server.HTTPAddr != "" {
		c.Server.HTTPAddr = fc.Server.HTTPAddr
	}
	if fc.Database.DSN != "" && os.Getenv("DB_URL") == "" {
		c.Database.DSN = fc.Database.DSN
	}
	if fc.LLM.Model != "" && os.Getenv("OPENAI_MODEL") == "" {
		c.LLM.Model = fc.LLM.Model
	}
	if fc.LLM.BaseURL != "" && os.Getenv("OPENAI_BASE_URL") == "" {
		c.LLM.BaseURL = fc.LLM.BaseURL
	}
	if fc.LLM.Temperature != 0 {
		c.LLM.Temperature = fc.LLM.Temperature
	}
	if fc.LLM.MaxDocumentChars != 0 {
		c.LLM.MaxDocumentChars = fc.LLM.MaxDocumentChars
	}
	if len(fc.Ingest.WatchDirs) > 0 {
		c.Ingest.WatchDirs = fc.Ingest.WatchDirs
	}
	if fc.Ingest.Debounce != "" {
		d, err := time.ParseDuration(fc.Ingest.Debounce)
		if err != nil {
			return fmt.Errorf("ingest.debounce: %w", err)
		}
		c.Ingest.Debounce = d
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required", ErrInvalidInput)
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	return nil
}
