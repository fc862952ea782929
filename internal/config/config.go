package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string `validate:"required,numeric"`

	// Datastore configuration
	DatastoreType string `validate:"oneof=sql redis memory"`
	LRUSize       int    `validate:"gte=0"` // 0 disables the in-process read cache
	SeedPath      string // server seeds on start only when set

	// SQL configuration
	DBDriver   string `validate:"oneof=postgres mysql"`
	DBUser     string
	DBPassword string
	DBHost     string `validate:"required_if=DatastoreType sql"`
	DBPort     int    `validate:"gt=0,lte=65535"`
	DBName     string `validate:"required_if=DatastoreType sql"`
	DBSSLMode  string

	// Redis configuration
	RedisAddr     string `validate:"required"`
	RedisPassword string
	RedisDB       int    `validate:"gte=0"`

	// Resolver configuration
	ResolverType    string        `validate:"oneof=ipinfo geoip2"`
	ResolverURL     string        `validate:"url"`
	ResolverToken   string
	ResolverTimeout time.Duration `validate:"gt=0"`
	GeoIPDBPath     string        `validate:"required_if=ResolverType geoip2"`
	CacheFallback   bool          // persist "Unknown" answers

	// Rate limiting
	RateLimitType   string        `validate:"oneof=memory redis"`
	RateLimit       int           `validate:"gt=0"`
	RateLimitWindow time.Duration `validate:"gte=1s"`

	// Logging
	LogLevel  string `validate:"oneof=trace debug info warn error fatal panic disabled"`
	LogPretty bool
	LogFile   string // also append log lines to this file
}

// Load reads a .env file when present, then the environment, and validates the result
func Load() (*Config, error) {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	return FromEnv()
}

// FromEnv builds the configuration from the current environment only
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port: getEnv("PORT", "5000"),

		DatastoreType: strings.ToLower(getEnv("DATASTORE_TYPE", "sql")),
		LRUSize:       getEnvAsInt("LRU_SIZE", 10000),
		SeedPath:      getEnv("SEED_PATH", ""),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnvAsInt("DATABASE_PORT", 5432),
		DBName:     getEnv("DATABASE_DB", "bar"),
		DBSSLMode:  getEnv("DB_SSLMODE", "require"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		ResolverType:    strings.ToLower(getEnv("RESOLVER_TYPE", "ipinfo")),
		ResolverURL:     getEnv("RESOLVER_URL", "https://ipinfo.io"),
		ResolverToken:   getEnv("RESOLVER_TOKEN", ""),
		ResolverTimeout: getEnvAsSeconds("RESOLVER_TIMEOUT", 5*time.Second),
		GeoIPDBPath:     getEnv("GEOIP_DB_PATH", ""),
		CacheFallback:   getEnvAsBool("CACHE_FALLBACK", true),

		RateLimitType:   strings.ToLower(getEnv("RATE_LIMITER_TYPE", "memory")),
		RateLimit:       getEnvAsInt("RATE_LIMIT", 10),
		RateLimitWindow: getEnvAsSeconds("RATE_LIMIT_WINDOW", time.Second),

		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogPretty: getEnvAsBool("LOG_PRETTY", true),
		LogFile:   getEnv("LOG_FILE", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct tags and reports every offending field at once
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value: %v)", fe.Field(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt reads an environment variable as an integer
// Returns default if not set or invalid
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

// getEnvAsBool accepts anything strconv.ParseBool does
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

// getEnvAsSeconds reads a whole number of seconds
func getEnvAsSeconds(key string, defaultValue time.Duration) time.Duration {
	seconds := getEnvAsInt(key, -1)
	if seconds < 0 {
		return defaultValue
	}
	return time.Duration(seconds) * time.Second
}
