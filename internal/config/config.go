package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/mcoot/playerledger/internal/api"
	"github.com/mcoot/playerledger/internal/factory"
	"github.com/mcoot/playerledger/internal/services/token"
	pgstorage "github.com/mcoot/playerledger/internal/storage/postgres"
	redisstorage "github.com/mcoot/playerledger/internal/storage/redis"
)

// Config is the server configuration, read from LEDGER_* environment variables
type Config struct {
	HTTPHost string `env:"LEDGER_HTTP_HOST"`
	HTTPPort int    `env:"LEDGER_HTTP_PORT" envDefault:"8080"`
	LogLevel string `env:"LEDGER_LOG_LEVEL" envDefault:"info"`

	StorageType string `env:"LEDGER_STORAGE_TYPE" envDefault:"memory"`
	RedisURL    string `env:"LEDGER_REDIS_URL"`
	DatabaseURL string `env:"LEDGER_DATABASE_URL"`

	TokenSecret string        `env:"LEDGER_TOKEN_SECRET,required,notEmpty"`
	TokenIssuer string        `env:"LEDGER_TOKEN_ISSUER" envDefault:"playerledger"`
	TokenTTL    time.Duration `env:"LEDGER_TOKEN_TTL" envDefault:"1h"`
}

// Load parses the environment and validates the result
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements env tags cannot express
func (c Config) Validate() error {
	var errs []error

	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("LEDGER_HTTP_PORT out of range: %d", c.HTTPPort))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	switch c.StorageType {
	case factory.StorageTypeMemory:
	case factory.StorageTypeRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("LEDGER_REDIS_URL required when LEDGER_STORAGE_TYPE=redis"))
		}
	case factory.StorageTypePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("LEDGER_DATABASE_URL required when LEDGER_STORAGE_TYPE=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown LEDGER_STORAGE_TYPE %q", c.StorageType))
	}

	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("LEDGER_TOKEN_TTL must be positive"))
	}

	return errors.Join(errs...)
}

// Level returns the configured slog level
func (c Config) Level() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LEDGER_LOG_LEVEL %q", s)
	}
	return level, nil
}

// Factory builds the application factory configuration
func (c Config) Factory(logger *slog.Logger) factory.Config {
	cfg := factory.Config{
		Logger:      logger,
		StorageType: c.StorageType,
		TokenConfig: token.Config{
			Secret: c.TokenSecret,
			Issuer: c.TokenIssuer,
			TTL:    c.TokenTTL,
		},
	}

	switch c.StorageType {
	case factory.StorageTypeRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.RedisURL
		cfg.RedisConfig = &redisCfg
	case factory.StorageTypePostgres:
		pgCfg := pgstorage.DefaultConfig()
		pgCfg.URL = c.DatabaseURL
		cfg.PostgresConfig = &pgCfg
	}
	return cfg
}

// Server builds the HTTP server configuration
func (c Config) Server() api.ServerConfig {
	cfg := api.DefaultServerConfig()
	cfg.Host = c.HTTPHost
	cfg.Port = c.HTTPPort
	return cfg
}
