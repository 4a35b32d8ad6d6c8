package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/playerledger/internal/dependencies/clock"
	"github.com/mcoot/playerledger/internal/model"
	"github.com/mcoot/playerledger/internal/services/token"
	"github.com/mcoot/playerledger/internal/storage"
)

// Session is the result of a successful registration or login
type Session struct {
	Token     string
	Player    model.Player
	ExpiresAt time.Time
}

// Config holds configuration for the auth service
type Config struct {
	BcryptCost int
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		BcryptCost: bcrypt.DefaultCost,
	}
}

// Service is the player directory: registration, password login and token
// authentication
type Service struct {
	players storage.PlayerStore
	tokens  *token.Authenticator
	clock   clock.Clock
	logger  *slog.Logger

	bcryptCost int
}

// New creates a new auth service
func New(players storage.PlayerStore, tokens *token.Authenticator, clock clock.Clock, logger *slog.Logger, cfg Config) *Service {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = DefaultConfig().BcryptCost
	}
	return &Service{
		players:    players,
		tokens:     tokens,
		clock:      clock,
		logger:     logger,
		bcryptCost: cfg.BcryptCost,
	}
}

// Register creates a player and logs them in
func (s *Service) Register(ctx context.Context, name, password string) (*Session, error) {
	if err := model.ValidateName(name); err != nil {
		return nil, err
	}
	if err := model.ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	player, err := s.players.CreatePlayer(ctx, &model.Player{
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    s.clock.Now(),
	})
	if err != nil {
		return nil, model.StorageError(err)
	}

	s.logger.Info("player registered", "player_id", player.ID, "name", player.Name)
	return s.createSession(player)
}

// Login checks a name and password and returns a fresh session
func (s *Service) Login(ctx context.Context, name, password string) (*Session, error) {
	player, err := s.players.GetPlayerByName(ctx, name)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return nil, model.ErrInvalidCredentials
		}
		return nil, model.StorageError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(player.PasswordHash), []byte(password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	return s.createSession(player)
}

// Authenticate verifies an access token and returns the player it names
func (s *Service) Authenticate(tokenString string) (model.PlayerID, error) {
	return s.tokens.Verify(tokenString)
}

// GetPlayer returns a player by id
func (s *Service) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	if !id.Valid() {
		return nil, model.ErrInvalidID
	}
	return s.players.GetPlayer(ctx, id)
}

// FindByName returns a player by name
func (s *Service) FindByName(ctx context.Context, name string) (*model.Player, error) {
	if err := model.ValidateName(name); err != nil {
		return nil, err
	}
	return s.players.GetPlayerByName(ctx, name)
}

func (s *Service) createSession(player *model.Player) (*Session, error) {
	tok, err := s.tokens.Issue(player.ID)
	if err != nil {
		return nil, err
	}
	return &Session{
		Token:     tok,
		Player:    *player,
		ExpiresAt: s.clock.Now().Add(s.tokens.TTL()),
	}, nil
}
