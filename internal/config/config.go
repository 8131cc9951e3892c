package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "SUPPLY"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Config is the full runtime configuration of the supply backend.
type Config struct {
	App     AppConfig
	Server  ServerConfig
	DB      DBConfig
	Redis   RedisConfig
	Journal JournalConfig
	CORS    CORSConfig
	Orders  OrdersConfig
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects combinations that cannot be served.
func (c *Config) Validate() error {
	if c.DB.DSN == "" {
		return fmt.Errorf("SUPPLY_DB_DSN is required")
	}
	if c.Journal.Dir == "" {
		return fmt.Errorf("SUPPLY_JOURNAL_DIR must not be empty")
	}
	if c.App.IsProd() && c.App.LogFormat == "console" {
		return fmt.Errorf("console log format is not allowed in %s", AppEnvProd)
	}
	return nil
}

type AppConfig struct {
	Env       string `envconfig:"SUPPLY_APP_ENV" default:"dev"`
	Port      string `envconfig:"SUPPLY_APP_PORT" default:"5000"`
	LogLevel  string `envconfig:"SUPPLY_LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"SUPPLY_LOG_FORMAT" default:"json"`
	WarnStack bool   `envconfig:"SUPPLY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServerConfig struct {
	ReadTimeout     time.Duration `envconfig:"SUPPLY_SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SUPPLY_SERVER_WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `envconfig:"SUPPLY_SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SUPPLY_SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
}

type DBConfig struct {
	DSN             string        `envconfig:"SUPPLY_DB_DSN"`
	Driver          string        `envconfig:"SUPPLY_DB_DRIVER" default:"postgres"`
	MaxOpenConns    int           `envconfig:"SUPPLY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SUPPLY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SUPPLY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SUPPLY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	AutoMigrate     bool          `envconfig:"SUPPLY_DB_AUTO_MIGRATE" default:"false"`
}

// RedisConfig is optional; an empty URL disables idempotent order replay.
type RedisConfig struct {
	URL            string        `envconfig:"SUPPLY_REDIS_URL"`
	PoolSize       int           `envconfig:"SUPPLY_REDIS_POOL_SIZE" default:"10"`
	DialTimeout    time.Duration `envconfig:"SUPPLY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout    time.Duration `envconfig:"SUPPLY_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout   time.Duration `envconfig:"SUPPLY_REDIS_WRITE_TIMEOUT" default:"3s"`
	IdempotencyTTL time.Duration `envconfig:"SUPPLY_REDIS_IDEMPOTENCY_TTL" default:"24h"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != ""
}

type JournalConfig struct {
	Dir string `envconfig:"SUPPLY_JOURNAL_DIR" default:"logs"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"SUPPLY_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type OrdersConfig struct {
	// EnforceCatalogPrice rejects cart lines whose price differs from the catalog price.
	EnforceCatalogPrice bool `envconfig:"SUPPLY_ORDERS_ENFORCE_CATALOG_PRICE" default:"false"`
}
