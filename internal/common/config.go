package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Env names the deployment mode. Test mode shrinks the cache and disables
// the background memory sweep so tests stay deterministic.
type Env string

const (
	EnvProduction Env = "production"
	EnvTest       Env = "test"
)

// Config holds all application configuration
type Config struct {
	Env      Env
	Cache    CacheConfig
	OCR      OCRConfig
	Database DatabaseConfig
	Server   ServerConfig
	Ingest   IngestConfig
}

// CacheConfig holds the OCR text cache limits and memory thresholds.
type CacheConfig struct {
	MaxEntries    int
	DefaultTTL    time.Duration
	CheckInterval time.Duration
	MemoryWarn    uint64 // bytes
	MemoryCleanup uint64 // bytes
	MemoryMax     uint64 // bytes
}

// OCRConfig holds the vision OCR provider settings.
type OCRConfig struct {
	BaseURL  string
	APIKey   string
	Model    string
	Timeout  time.Duration
	MaxBytes int64
}

// DatabaseConfig holds record-store configuration.
type DatabaseConfig struct {
	// DSN selects the Postgres store when set; otherwise SQLitePath is used.
	DSN             string
	SQLitePath      string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// ServerConfig holds daemon serving configuration.
type ServerConfig struct {
	GRPCAddr string
}

// IngestConfig holds the watch-directory settings.
type IngestConfig struct {
	Roots    []string
	Debounce time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	env := Env(getEnv("APP_ENV", string(EnvProduction)))

	// Test mode runs with a small, short-lived cache and no sweep timer.
	cache := CacheConfig{
		MaxEntries:    getEnvAsInt("CACHE_MAX_ENTRIES", 1000),
		DefaultTTL:    getEnvAsDuration("CACHE_DEFAULT_TTL", time.Hour),
		CheckInterval: getEnvAsDuration("CACHE_CHECK_INTERVAL", 2*time.Minute),
		MemoryWarn:    getEnvAsUint64("CACHE_MEMORY_WARN_BYTES", 256<<20),
		MemoryCleanup: getEnvAsUint64("CACHE_MEMORY_CLEANUP_BYTES", 384<<20),
		MemoryMax:     getEnvAsUint64("CACHE_MEMORY_MAX_BYTES", 512<<20),
	}
	if env == EnvTest {
		cache.MaxEntries = getEnvAsInt("CACHE_MAX_ENTRIES", 100)
		cache.DefaultTTL = getEnvAsDuration("CACHE_DEFAULT_TTL", time.Minute)
		cache.CheckInterval = 0 // sweep disabled
	}

	return &Config{
		Env:   env,
		Cache: cache,
		OCR: OCRConfig{
			BaseURL:  getEnv("OCR_BASE_URL", "https://api.openai.com/v1"),
			APIKey:   getEnv("OCR_API_KEY", ""),
			Model:    getEnv("OCR_MODEL", "gpt-4o-mini"),
			Timeout:  getEnvAsDuration("OCR_TIMEOUT", 45*time.Second),
			MaxBytes: int64(getEnvAsUint64("OCR_MAX_BYTES", 20<<20)),
		},
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", ""),
			SQLitePath:      getEnv("SQLITE_PATH", "./cellarscan.db"),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Server: ServerConfig{
			GRPCAddr: getEnv("GRPC_ADDR", ":8080"),
		},
		Ingest: IngestConfig{
			Roots:    splitNonEmpty(getEnv("WATCH_ROOTS", "")),
			Debounce: getEnvAsDuration("WATCH_DEBOUNCE", 500*time.Millisecond),
		},
	}
}

// ValidateConfig validates the loaded configuration
func (c *Config) Validate() error {
	if c.OCR.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "OCR_API_KEY is required", ErrInvalidInput)
	}
	if c.Cache.MemoryWarn >= c.Cache.MemoryCleanup || c.Cache.MemoryCleanup >= c.Cache.MemoryMax {
		return NewAppError("CONFIG_ERROR", "memory thresholds must satisfy warn < cleanup < max", ErrInvalidInput)
	}
	if c.Server.GRPCAddr == "" {
		return NewAppError("CONFIG_ERROR", "GRPC_ADDR is required", ErrInvalidInput)
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

func getEnvAsUint64(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseUint(value, 10, 64); err == nil {
			return v
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

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
