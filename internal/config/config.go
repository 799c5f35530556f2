package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config is the server configuration read from the environment.
type Config struct {
	Port          int    `env:"SABOTEUR_PORT"           envDefault:"8080"`
	RedisAddr     string `env:"SABOTEUR_REDIS_ADDR"`
	RedisPassword string `env:"SABOTEUR_REDIS_PASSWORD"`
	RedisDB       int    `env:"SABOTEUR_REDIS_DB"       envDefault:"0"`
	CatalogPath   string `env:"SABOTEUR_CATALOG"`
	Dev           bool   `env:"SABOTEUR_DEV"`
	PublicURL     string `env:"SABOTEUR_PUBLIC_URL"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads Config from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("parse env: invalid port %d", cfg.Port)
	}
	return cfg, nil
}
