package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store backends selectable via POINT_STORE.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// Config holds the process configuration, populated from the environment.
type Config struct {
	ListenAddr string `env:"POINT_LISTEN_ADDR" envDefault:":8080"`

	// Store selects the persistence backend: memory, postgres or sqlite.
	Store       string `env:"POINT_STORE" envDefault:"memory"`
	PostgresDSN string `env:"POINT_POSTGRES_DSN"`
	SQLitePath  string `env:"POINT_SQLITE_PATH" envDefault:"points.db"`

	// KafkaBrokers empty disables event publication.
	KafkaBrokers []string `env:"POINT_KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"POINT_KAFKA_TOPIC" envDefault:"balance_changed"`

	// LockWait bounds per-account lock acquisition; zero waits forever.
	LockWait time.Duration `env:"POINT_LOCK_WAIT" envDefault:"5s"`
}

// Load reads an optional .env file and parses the environment into a
// Config. A missing .env file is not an error.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	switch cfg.Store {
	case StoreMemory, StoreSQLite:
	case StorePostgres:
		if cfg.PostgresDSN == "" {
			return Config{}, fmt.Errorf("POINT_POSTGRES_DSN is required when POINT_STORE=postgres")
		}
	default:
		return Config{}, fmt.Errorf("unknown store backend %q", cfg.Store)
	}
	return cfg, nil
}
