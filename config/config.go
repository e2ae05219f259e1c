package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds application configuration loaded from environment variables and .env file.
type AppConfig struct {
	// Target database (queries run against this, control tables live here too)
	DBHost string
	DBPort int
	DBUser string
	DBPass string
	DBName string

	// Executor pool. PoolSize is the baseline kept idle, MaxOverflow the
	// extra connections allowed under load, PoolTimeout how long a request
	// waits for a free connection before failing with server_error.
	PoolSize    int
	MaxOverflow int
	PoolTimeout time.Duration

	// Query execution bounds
	QueryTimeout time.Duration
	MaxRows      int

	// Cache tiers. Independent TTLs encode the volatility ordering
	// schema >> permission >> query. PermissionCacheTTL bounds how long a
	// revoked user can keep a stale allow; lower it for deployments where
	// revocation must take effect faster.
	QueryCacheTTL      time.Duration
	SchemaCacheTTL     time.Duration
	PermissionCacheTTL time.Duration

	// Redis cache store. Empty address selects the in-memory store.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Per-user rate limit: RateLimitPerUser requests per RateLimitWindow.
	RateLimitPerUser int
	RateLimitWindow  time.Duration

	// Audit trail retention enforced by the background sweeper.
	HistoryRetentionDays int

	// Sandbox mode: run against an embedded MySQL server seeded with the
	// demo dataset instead of an external database.
	SandboxEnabled bool

	// Logging config
	LogLevel      string
	LogFile       string
	LogMaxSize    int // MB
	LogMaxBackups int
	LogMaxAge     int // days
	LogCompress   bool
}

// Cfg is the global application configuration instance.
var Cfg AppConfig

// LoadConfig loads application configuration from .env file and environment variables.
func LoadConfig() error {
	err := godotenv.Load()
	if err != nil {
		// Use standard log here since logger is not initialized yet
		log.Printf("[WARN] .env file not found or cannot be loaded: %v", err)
	} else {
		log.Printf("[INFO] .env file loaded successfully")
	}

	Cfg.DBHost = getEnv("DB_HOST", "127.0.0.1")
	Cfg.DBPort = getEnvInt("DB_PORT", 3306)
	Cfg.DBUser = getEnv("DB_USER", "root")
	Cfg.DBPass = getEnv("DB_PASS", "")
	Cfg.DBName = getEnv("DB_NAME", "querygate")

	Cfg.PoolSize = getEnvInt("DB_POOL_SIZE", 20)
	Cfg.MaxOverflow = getEnvInt("DB_MAX_OVERFLOW", 40)
	Cfg.PoolTimeout = getEnvSeconds("DB_POOL_TIMEOUT", 30)

	Cfg.QueryTimeout = getEnvSeconds("QUERY_TIMEOUT", 30)
	Cfg.MaxRows = getEnvInt("MAX_QUERY_RESULTS", 1000)

	Cfg.QueryCacheTTL = getEnvSeconds("QUERY_CACHE_TTL", 300)
	Cfg.SchemaCacheTTL = getEnvSeconds("SCHEMA_CACHE_TTL", 3600)
	Cfg.PermissionCacheTTL = getEnvSeconds("PERMISSION_CACHE_TTL", 900)

	Cfg.RedisAddr = getEnv("REDIS_ADDR", "")
	Cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	Cfg.RedisDB = getEnvInt("REDIS_DB", 0)

	Cfg.RateLimitPerUser = getEnvInt("RATE_LIMIT_PER_USER", 100)
	Cfg.RateLimitWindow = getEnvSeconds("RATE_LIMIT_WINDOW", 3600)

	Cfg.HistoryRetentionDays = getEnvInt("HISTORY_RETENTION_DAYS", 30)

	Cfg.SandboxEnabled = getEnvBool("SANDBOX_ENABLED", false)

	Cfg.LogLevel = getEnv("LOG_LEVEL", "DEBUG")
	Cfg.LogFile = getEnv("LOG_FILE", "/var/log/querygate/querygateapi.log")
	Cfg.LogMaxSize = getEnvInt("LOG_MAX_SIZE", 10)
	Cfg.LogMaxBackups = getEnvInt("LOG_MAX_BACKUPS", 3)
	Cfg.LogMaxAge = getEnvInt("LOG_MAX_AGE", 28)
	Cfg.LogCompress = getEnvBool("LOG_COMPRESS", true)

	log.Printf("[INFO] Config loaded - DB: %s@%s:%d/%s, LogLevel: %s",
		Cfg.DBUser, Cfg.DBHost, Cfg.DBPort, Cfg.DBName, Cfg.LogLevel)
	log.Printf("[INFO] Executor config - Pool: %d+%d, PoolTimeout: %v, QueryTimeout: %v, MaxRows: %d",
		Cfg.PoolSize, Cfg.MaxOverflow, Cfg.PoolTimeout, Cfg.QueryTimeout, Cfg.MaxRows)
	log.Printf("[INFO] Cache TTLs - query: %v, schema: %v, permission: %v",
		Cfg.QueryCacheTTL, Cfg.SchemaCacheTTL, Cfg.PermissionCacheTTL)
	log.Printf("[INFO] Rate limit - %d requests per %v per user",
		Cfg.RateLimitPerUser, Cfg.RateLimitWindow)

	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if boolVal, err := strconv.ParseBool(val); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvSeconds(key string, defaultSeconds int) time.Duration {
	return time.Duration(getEnvInt(key, defaultSeconds)) * time.Second
}
