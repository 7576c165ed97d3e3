package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	StorageMemory = "memory"
	StorageMongo  = "mongo"

	LockMemory = "memory"
	LockRedis  = "redis"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET, required"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Storage     string `env:"STORAGE,      default=memory"`
	LockBackend string `env:"LOCK_BACKEND, default=memory"`

	LockTTL         time.Duration `env:"LOCK_TTL,         default=10s"`
	LockWait        time.Duration `env:"LOCK_WAIT,        default=3s"`
	AuditWorkers    int           `env:"AUDIT_WORKERS,    default=4"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=yoga_booking"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// Load reads configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects combinations the entry point cannot wire.
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage {
	case StorageMemory, StorageMongo:
	default:
		errs = append(errs, fmt.Errorf("config: unknown STORAGE %q", c.Storage))
	}

	switch c.LockBackend {
	case LockMemory:
	case LockRedis:
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("config: LOCK_BACKEND=redis requires REDIS_ADDR"))
		}
	default:
		errs = append(errs, fmt.Errorf("config: unknown LOCK_BACKEND %q", c.LockBackend))
	}

	if c.LockWait <= 0 {
		errs = append(errs, errors.New("config: LOCK_WAIT must be positive"))
	}
	if c.AuditWorkers <= 0 {
		errs = append(errs, errors.New("config: AUDIT_WORKERS must be positive"))
	}

	return errors.Join(errs...)
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
