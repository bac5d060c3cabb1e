package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	Env string // development, staging, production

	// Inputs / state
	Store      StoreConfig
	Feeds      FeedConfig
	PolicyPath string // 정책 YAML (비어 있으면 기본값)

	// Database (POSITION_STORE=postgres 일 때만 필요)
	Database DatabaseConfig

	// Redis (스냅샷 캐시)
	Redis RedisConfig

	// Scheduler
	ScheduleCron string

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsPushURL string
	MetricsJob     string
}

// StoreConfig selects the position store backend
type StoreConfig struct {
	Backend       string // file, postgres
	PositionsPath string
}

// FeedConfig holds the locations of the per-cycle inputs
type FeedConfig struct {
	PredictionsPath  string
	SnapshotPath     string
	SnapshotURL      string
	SnapshotTimeout  time.Duration
	SnapshotCacheTTL time.Duration
	HTTPRatePerSec   float64
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

const (
	StoreBackendFile     = "file"
	StoreBackendPostgres = "postgres"
)

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		Env: getEnv("ENV", "development"),

		Store: StoreConfig{
			Backend:       getEnv("POSITION_STORE", StoreBackendFile),
			PositionsPath: getEnv("POSITIONS_PATH", "trade/positions.json"),
		},

		Feeds: FeedConfig{
			PredictionsPath:  getEnv("PREDICTIONS_PATH", "trade/daily_scores.csv"),
			SnapshotPath:     getEnv("MARKET_SNAPSHOT_PATH", ""),
			SnapshotURL:      getEnv("MARKET_SNAPSHOT_URL", ""),
			SnapshotTimeout:  getEnvAsDuration("MARKET_SNAPSHOT_TIMEOUT", "30s"),
			SnapshotCacheTTL: getEnvAsDuration("SNAPSHOT_CACHE_TTL", "10m"),
			HTTPRatePerSec:   getEnvAsFloat("HTTP_RATE_PER_SEC", 5),
		},

		PolicyPath: getEnv("POLICY_PATH", ""),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 4),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// 평일 장 마감 30분 전 (초 단위 cron)
		ScheduleCron: getEnv("SCHEDULE_CRON", "0 30 14 * * MON-FRI"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		MetricsPushURL: getEnv("METRICS_PUSH_URL", ""),
		MetricsJob:     getEnv("METRICS_JOB", "rebalancer"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.Store.Backend {
	case StoreBackendFile:
		if c.Store.PositionsPath == "" {
			return fmt.Errorf("POSITIONS_PATH is required for the file store")
		}
	case StoreBackendPostgres:
		// Database URL is required only when positions live in Postgres
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when POSITION_STORE=postgres")
		}
	default:
		return fmt.Errorf("POSITION_STORE must be one of: file, postgres")
	}

	if c.Feeds.HTTPRatePerSec <= 0 {
		return fmt.Errorf("HTTP_RATE_PER_SEC must be > 0")
	}

	return nil
}

// HasSnapshotSource reports whether either snapshot location is configured
func (c *Config) HasSnapshotSource() bool {
	return c.Feeds.SnapshotPath != "" || c.Feeds.SnapshotURL != ""
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
