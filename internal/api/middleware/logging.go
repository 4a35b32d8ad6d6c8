package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/playerledger/internal/dependencies/random"
	"github.com/mcoot/playerledger/internal/middleware"
)

// Logging creates request logging middleware for the API
func Logging(logger *slog.Logger, rnd random.Random) func(http.Handler) http.Handler {
	return middleware.Logging(logger, rnd)
}
