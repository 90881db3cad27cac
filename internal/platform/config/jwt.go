package config

import (
	"errors"
	"time"
)

// JWTConfig configures JWT verification against a JWKS endpoint.
type JWTConfig struct {
	Issuer   string `env:"JWT_ISSUER"`
	Audience string `env:"JWT_AUDIENCE"`
	JWKSURL  string `env:"JWT_JWKS_URL"`

	ClockSkew time.Duration `env:"JWT_CLOCK_SKEW" envDefault:"30s"`
	// Refresh periodically to pick up key rotation even if an old key is still cached.
	JWKSRefreshInterval time.Duration `env:"JWT_JWKS_REFRESH_INTERVAL" envDefault:"5m"`
	// Bound refresh frequency when a token presents an unknown kid.
	JWKSMinRefreshInterval time.Duration `env:"JWT_JWKS_MIN_REFRESH_INTERVAL" envDefault:"10s"`

	HTTPTimeout time.Duration `env:"JWT_HTTP_TIMEOUT" envDefault:"5s"`
}

func (c JWTConfig) Validate() error {
	if c.Issuer == "" || c.Audience == "" || c.JWKSURL == "" {
		return errors.New("missing required env vars: JWT_ISSUER, JWT_AUDIENCE, JWT_JWKS_URL")
	}
	return nil
}

// LoadJWTConfigFromEnv parses and validates only the JWT settings.
func LoadJWTConfigFromEnv() (JWTConfig, error) {
	var cfg JWTConfig
	if err := ParseEnv(&cfg); err != nil {
		return JWTConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return JWTConfig{}, err
	}
	return cfg, nil
}
