package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/playerledger/internal/dependencies/clock"
	"github.com/mcoot/playerledger/internal/dependencies/random"
	"github.com/mcoot/playerledger/internal/metrics"
	"github.com/mcoot/playerledger/internal/services/access"
	"github.com/mcoot/playerledger/internal/services/audit"
	"github.com/mcoot/playerledger/internal/services/auth"
	"github.com/mcoot/playerledger/internal/services/facade"
	"github.com/mcoot/playerledger/internal/services/ledger"
	"github.com/mcoot/playerledger/internal/services/oplog"
	"github.com/mcoot/playerledger/internal/services/token"
	"github.com/mcoot/playerledger/internal/storage"
	"github.com/mcoot/playerledger/internal/storage/memory"
	pgstorage "github.com/mcoot/playerledger/internal/storage/postgres"
	redisstorage "github.com/mcoot/playerledger/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Observability
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	// Services
	Tokens       *token.Authenticator
	AuthService  *auth.Service
	Guard        *access.Guard
	Ledger       *ledger.Service
	OperationLog *oplog.Service
	ActionAudit  *audit.Service
	LedgerFacade *facade.Facade
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PostgresConfig holds database settings (required if StorageType is "postgres")
	PostgresConfig *pgstorage.Config
	// TokenConfig configures access tokens. Secret is required.
	TokenConfig token.Config
	// AuthConfig holds configuration for the auth service (optional)
	AuthConfig auth.Config
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app, err := newWithDependencies(store, clock.New(), random.New(), cfg.TokenConfig, cfg.AuthConfig, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return app, nil
}

func openStorage(ctx context.Context, cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, errors.New("PostgresConfig required when StorageType is postgres")
		}
		return pgstorage.Open(ctx, *cfg.PostgresConfig)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'postgres'", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	tokenCfg token.Config,
	authCfg auth.Config,
	logger *slog.Logger,
) (*App, error) {
	m := metrics.New()

	tokens, err := token.New(clk, tokenCfg)
	if err != nil {
		return nil, fmt.Errorf("token authenticator: %w", err)
	}

	authService := auth.New(store, tokens, clk, logger, authCfg)
	guard := access.New()
	ledgerService := ledger.New(store, clk, m, logger)
	operationLog := oplog.New(store, clk)
	actionAudit := audit.New(store, clk)
	ledgerFacade := facade.New(guard, ledgerService, operationLog, actionAudit, m, logger)

	return &App{
		Storage:      store,
		Clock:        clk,
		Random:       rnd,
		Logger:       logger,
		Metrics:      m,
		Tokens:       tokens,
		AuthService:  authService,
		Guard:        guard,
		Ledger:       ledgerService,
		OperationLog: operationLog,
		ActionAudit:  actionAudit,
		LedgerFacade: ledgerFacade,
	}, nil
}

// Close releases the storage backend
func (a *App) Close() error {
	return a.Storage.Close()
}
