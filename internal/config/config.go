package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort string `envconfig:"SERVER_PORT" default:"8080"`

	// --- Database ---
	DBDriver       string `envconfig:"DB_DRIVER" default:"mysql"`
	DatabaseDSN    string `envconfig:"DATABASE_DSN" default:"user:password@tcp(localhost:3306)/taskledger?charset=utf8mb4&parseTime=True&loc=UTC"`
	DBMaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	DBMaxIdleConns int    `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ResetDB        bool   `envconfig:"RESET_DB" default:"false"`

	// --- Redis ---
	RedisAddr string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB   int    `envconfig:"REDIS_DB" default:"0"`
	RedisPass string `envconfig:"REDIS_PASSWORD"`

	// --- HTTP ---
	JWTSecret   string `envconfig:"JWT_SECRET" default:"change-me"`
	SwaggerHost string `envconfig:"SWAGGER_HOST"`

	// --- Logging ---
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	// --- Ledger ---
	BalanceCacheTTL     time.Duration `envconfig:"BALANCE_CACHE_TTL" default:"30s"`
	HistoryDefaultLimit int           `envconfig:"HISTORY_DEFAULT_LIMIT" default:"50"`

	// --- Jobs ---
	ReconcileEnabled  bool   `envconfig:"RECONCILE_ENABLED" default:"true"`
	ReconcileSchedule string `envconfig:"RECONCILE_SCHEDULE" default:"0 3 * * *"`
}

// placeholderJWTSecret is only accepted with the sqlite driver.
const placeholderJWTSecret = "change-me"

// Validate checks values envconfig cannot express through tags.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be one of mysql, postgres, sqlite; got %q", c.DBDriver)
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN is empty")
	}
	if c.DBMaxOpenConns <= 0 || c.DBMaxIdleConns < 0 || c.DBMaxIdleConns > c.DBMaxOpenConns {
		return fmt.Errorf("invalid DB_MAX_OPEN_CONNS/DB_MAX_IDLE_CONNS")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is empty")
	}
	if c.JWTSecret == placeholderJWTSecret && c.DBDriver != "sqlite" {
		return fmt.Errorf("JWT_SECRET must be set when DB_DRIVER is %s", c.DBDriver)
	}
	if c.HistoryDefaultLimit <= 0 {
		return fmt.Errorf("HISTORY_DEFAULT_LIMIT must be > 0")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json; got %q", c.LogFormat)
	}
	return nil
}

// Load reads an optional .env file, then builds Config from the environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
