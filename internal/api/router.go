package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/playerledger/internal/api/apierr"
	"github.com/mcoot/playerledger/internal/api/handler"
	"github.com/mcoot/playerledger/internal/api/middleware"
	"github.com/mcoot/playerledger/internal/api/response"
	"github.com/mcoot/playerledger/internal/dependencies/random"
	"github.com/mcoot/playerledger/internal/metrics"
	"github.com/mcoot/playerledger/internal/services/auth"
	"github.com/mcoot/playerledger/internal/services/facade"
)

// RouterConfig holds dependencies for the router
type RouterConfig struct {
	Logger      *slog.Logger
	Random      random.Random
	Metrics     *metrics.Metrics
	AuthService *auth.Service
	Facade      *facade.Facade
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apierr.WriteError(w, apierr.NewNotFoundError())
	})

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.AuthService)
	accountHandler := handler.NewAccountHandler(cfg.Facade)
	operationHandler := handler.NewOperationHandler(cfg.Facade)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger, cfg.Random)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)
	metricsMiddleware := middleware.Metrics(cfg.Metrics)

	// Prometheus scrape endpoint sits outside the API middleware
	r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(loggingMiddleware)
	api.Use(recoveryMiddleware)
	api.Use(metricsMiddleware)

	// Player routes (no auth required for registering/logging in)
	api.HandleFunc("/players/register", playerHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/players/login", playerHandler.Login).Methods(http.MethodPost)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// Everything else requires a bearer token
	protected := api.NewRoute().Subrouter()
	protected.Use(authMiddleware)

	protected.HandleFunc("/players/me", playerHandler.GetMe).Methods(http.MethodGet)

	protected.HandleFunc("/accounts", accountHandler.Create).Methods(http.MethodPost)
	protected.HandleFunc("/accounts", accountHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/accounts/{id}", accountHandler.Get).Methods(http.MethodGet)
	protected.HandleFunc("/accounts/{id}/credit", accountHandler.Credit).Methods(http.MethodPost)
	protected.HandleFunc("/accounts/{id}/debit", accountHandler.Debit).Methods(http.MethodPost)
	protected.HandleFunc("/accounts/{id}/operations", accountHandler.Operations).Methods(http.MethodGet)

	protected.HandleFunc("/operations/{id}", operationHandler.Get).Methods(http.MethodGet)
	protected.HandleFunc("/actions", operationHandler.Actions).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
