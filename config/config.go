package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config is the typed view of the process environment.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	JWTSecret   string `env:"JWT_SECRET"`

	FirebaseBucket string `env:"FIREBASE_STORAGE_BUCKET"`
	RedisURL       string `env:"REDIS_URL"`

	FrontendURL string `env:"FRONTEND_URL"`
	AdminURL    string `env:"ADMIN_URL"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	BulkTxTimeout      time.Duration `env:"BULK_TX_TIMEOUT" envDefault:"10s"`
	ImageCheckAttempts int           `env:"IMAGE_CHECK_ATTEMPTS" envDefault:"10"`
	ImageCheckInterval time.Duration `env:"IMAGE_CHECK_INTERVAL" envDefault:"1s"`
	SheetRange         string        `env:"SHEET_RANGE" envDefault:"A:D"`

	ActivityBatchSize     int           `env:"ACTIVITY_BATCH_SIZE" envDefault:"50"`
	ActivityFlushInterval time.Duration `env:"ACTIVITY_FLUSH_INTERVAL" envDefault:"5s"`
	ActivityQueueSize     int           `env:"ACTIVITY_QUEUE_SIZE" envDefault:"1000"`

	CategoryCacheTTL time.Duration `env:"CATEGORY_CACHE_TTL" envDefault:"5m"`
}

func LoadEnv() error {
	// Try to load .env file if it exists (for local development).
	// In production the variables are set directly on the process.
	if err := godotenv.Load(); err != nil {
		return nil
	}
	return nil
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if cfg.ImageCheckAttempts < 1 {
		cfg.ImageCheckAttempts = 1
	}
	if cfg.ActivityBatchSize < 1 {
		cfg.ActivityBatchSize = 1
	}
	return cfg, nil
}

// ValidateEnv checks that critical environment variables are set.
// Returns an error if any critical variable is missing.
func ValidateEnv() error {
	var missing []string

	// Critical variables - application cannot function without these
	if os.Getenv("JWT_SECRET") == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if os.Getenv("DATABASE_URL") == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return fmt.Errorf("critical environment variables not set: %v", missing)
	}

	// Non-critical variables - log warnings but don't fail
	if os.Getenv("FIREBASE_STORAGE_BUCKET") == "" {
		logrus.Warn("FIREBASE_STORAGE_BUCKET not set - image uploads will fail")
	}
	if os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
		logrus.Warn("GOOGLE_APPLICATION_CREDENTIALS not set - Firebase features may not work")
	}
	if os.Getenv("FRONTEND_URL") == "" {
		logrus.Warn("FRONTEND_URL not set - CORS may not work correctly")
	}
	if os.Getenv("ADMIN_URL") == "" {
		logrus.Warn("ADMIN_URL not set")
	}
	if os.Getenv("REDIS_URL") == "" {
		logrus.Warn("REDIS_URL not set - category cache and maintenance lock are process-local")
	}

	return nil
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
