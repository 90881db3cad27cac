package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	AuthModeDev = "dev"
	AuthModeJWT = "jwt"

	StorageMemory   = "memory"
	StorageSnapshot = "snapshot"
	StoragePostgres = "postgres"
)

// Config is the API server configuration, read from the environment.
type Config struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// AuthMode is "jwt" (bearer tokens verified against JWKS) or "dev" (X-Debug-Subject header).
	AuthMode   string `env:"AUTH_MODE" envDefault:"jwt"`
	DevSubject string `env:"DEV_SUBJECT" envDefault:"dev|local"`
	JWT        JWTConfig

	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"memory"`
	SnapshotPath   string `env:"SNAPSHOT_PATH" envDefault:"camps.db"`
	DatabaseURL    string `env:"DATABASE_URL"`
	DBMaxConns     int32  `env:"DB_MAX_CONNS" envDefault:"10"`

	IdempotencyRetention time.Duration `env:"IDEMPOTENCY_RETENTION" envDefault:"24h"`
	SeedDemoData         bool          `env:"SEED_DEMO_DATA" envDefault:"false"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses the process environment and validates the result.
func Load() (Config, error) {
	return load(env.Options{})
}

// LoadFrom is Load over an explicit environment map.
func LoadFrom(environ map[string]string) (Config, error) {
	return load(env.Options{Environment: environ})
}

func load(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.AuthMode {
	case AuthModeDev:
	case AuthModeJWT:
		if err := c.JWT.Validate(); err != nil {
			return fmt.Errorf("invalid auth config: %w", err)
		}
	default:
		return fmt.Errorf("AUTH_MODE must be %q or %q, got %q", AuthModeDev, AuthModeJWT, c.AuthMode)
	}

	switch c.StorageBackend {
	case StorageMemory:
	case StorageSnapshot:
		if c.SnapshotPath == "" {
			return fmt.Errorf("SNAPSHOT_PATH is required for the snapshot backend")
		}
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be one of memory, snapshot, postgres; got %q", c.StorageBackend)
	}
	return nil
}
