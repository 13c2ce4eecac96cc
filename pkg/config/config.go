package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "your-secret-key"

type Config struct {
	ServerPort      string
	Environment     string
	FirebaseProject string
	StoreDriver     string
	JWTSecret       string

	FirebaseCredentialsJSON string
	FirebaseCredentialsPath string

	MarketAPIURL     string
	MarketAPITimeout time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	BlockCacheTTL        time.Duration
	SendRatePerMinute    int
	RequestRatePerMinute int

	LogLevel  string
	LogFormat string
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		FirebaseProject: getEnv("FIREBASE_PROJECT_ID", ""),
		StoreDriver:     getEnv("STORE_DRIVER", "firestore"),
		JWTSecret:       getEnv("JWT_SECRET", defaultJWTSecret),

		FirebaseCredentialsJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		FirebaseCredentialsPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),

		MarketAPIURL:     getEnv("MARKET_API_URL", "http://localhost:5000/api"),
		MarketAPITimeout: getEnvAsDuration("MARKET_API_TIMEOUT", 10*time.Second),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       int(getEnvAsInt64("REDIS_DB", 0)),

		BlockCacheTTL:        getEnvAsDuration("BLOCK_CACHE_TTL", 5*time.Minute),
		SendRatePerMinute:    int(getEnvAsInt64("SEND_RATE_PER_MINUTE", 30)),
		RequestRatePerMinute: int(getEnvAsInt64("REQUEST_RATE_PER_MINUTE", 300)),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	if !config.IsDevelopment() && config.JWTSecret == defaultJWTSecret {
		return nil, errors.New("JWT_SECRET must be set outside development")
	}
	if config.StoreDriver != "firestore" && config.StoreDriver != "memory" {
		return nil, errors.New("STORE_DRIVER must be firestore or memory")
	}

	return config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go duration strings ("30s") or a bare number of seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
