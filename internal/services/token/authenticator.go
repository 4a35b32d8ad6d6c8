package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mcoot/playerledger/internal/dependencies/clock"
	"github.com/mcoot/playerledger/internal/model"
)

// Config errors
var (
	ErrEmptySecret = errors.New("token secret cannot be empty")
	ErrInvalidTTL  = errors.New("token ttl must be positive")
	ErrEmptyIssuer = errors.New("token issuer cannot be empty")
)

// Config holds configuration for the authenticator
type Config struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// DefaultConfig returns default token configuration. Secret has no default.
func DefaultConfig() Config {
	return Config{
		Issuer: "playerledger",
		TTL:    time.Hour,
	}
}

type claims struct {
	// Pointer so that an absent claim is distinguishable from zero
	PlayerID *int64 `json:"player_id,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator issues and verifies HS256 access tokens binding a player id
type Authenticator struct {
	secret []byte
	issuer string
	ttl    time.Duration
	clock  clock.Clock
	parser *jwt.Parser
}

// New creates an Authenticator, rejecting unusable configuration
func New(clock clock.Clock, cfg Config) (*Authenticator, error) {
	if cfg.Secret == "" {
		return nil, ErrEmptySecret
	}
	if cfg.TTL <= 0 {
		return nil, ErrInvalidTTL
	}
	if cfg.Issuer == "" {
		return nil, ErrEmptyIssuer
	}

	return &Authenticator{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		clock:  clock,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(cfg.Issuer),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(clock.Now),
		),
	}, nil
}

// TTL returns the lifetime of issued tokens
func (a *Authenticator) TTL() time.Duration {
	return a.ttl
}

// Issue signs a token for playerID expiring TTL from now
func (a *Authenticator) Issue(playerID model.PlayerID) (string, error) {
	if !playerID.Valid() {
		return "", model.ErrInvalidID
	}

	now := a.clock.Now()
	id := int64(playerID)
	c := &claims{
		PlayerID: &id,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(a.secret)
}

// Verify checks signature, issuer and expiry and returns the embedded player id
func (a *Authenticator) Verify(tokenString string) (model.PlayerID, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return 0, model.ErrMissingToken
	}

	var c claims
	_, err := a.parser.ParseWithClaims(tokenString, &c, func(*jwt.Token) (any, error) {
		return a.secret, nil
	})
	if err != nil {
		return 0, &model.Error{
			Kind:    model.KindInvalidSignatureOrExpired,
			Message: model.ErrInvalidSignatureOrExpired.Message,
			Err:     err,
		}
	}

	if c.PlayerID == nil || *c.PlayerID <= 0 {
		return 0, model.ErrMissingClaim
	}
	return model.PlayerID(*c.PlayerID), nil
}
