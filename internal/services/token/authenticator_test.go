package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/playerledger/internal/dependencies/mocks"
	"github.com/mcoot/playerledger/internal/model"
)

const testSecret = "test-secret-with-enough-bytes-for-hs256"

type AuthenticatorSuite struct {
	suite.Suite
	clock *mocks.MockClock
	auth  *Authenticator
}

func TestAuthenticatorSuite(t *testing.T) {
	suite.Run(t, new(AuthenticatorSuite))
}

func (s *AuthenticatorSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	auth, err := New(s.clock, Config{Secret: testSecret, Issuer: "ledger-test", TTL: time.Hour})
	s.Require().NoError(err)
	s.auth = auth
}

// sign builds a token with arbitrary claims using the suite secret
func (s *AuthenticatorSuite) sign(method jwt.SigningMethod, c jwt.Claims, key any) string {
	tok, err := jwt.NewWithClaims(method, c).SignedString(key)
	s.Require().NoError(err)
	return tok
}

func (s *AuthenticatorSuite) registered(expiresIn time.Duration) jwt.RegisteredClaims {
	now := s.clock.Now()
	return jwt.RegisteredClaims{
		Issuer:    "ledger-test",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
	}
}

// Config tests

func (s *AuthenticatorSuite) TestNewRejectsEmptySecret() {
	_, err := New(s.clock, Config{Issuer: "x", TTL: time.Hour})
	s.ErrorIs(err, ErrEmptySecret)
}

func (s *AuthenticatorSuite) TestNewRejectsNonPositiveTTL() {
	_, err := New(s.clock, Config{Secret: testSecret, Issuer: "x"})
	s.ErrorIs(err, ErrInvalidTTL)
}

func (s *AuthenticatorSuite) TestNewRejectsEmptyIssuer() {
	_, err := New(s.clock, Config{Secret: testSecret, TTL: time.Hour})
	s.ErrorIs(err, ErrEmptyIssuer)
}

// Issue / Verify tests

func (s *AuthenticatorSuite) TestRoundTrip() {
	for _, id := range []model.PlayerID{1, 2, 42, 1 << 40} {
		tok, err := s.auth.Issue(id)
		s.Require().NoError(err)
		s.Equal(2, strings.Count(tok, "."), "token has three parts")

		got, err := s.auth.Verify(tok)
		s.Require().NoError(err)
		s.Equal(id, got)
	}
}

func (s *AuthenticatorSuite) TestIssueRejectsInvalidPlayerID() {
	_, err := s.auth.Issue(0)
	s.ErrorIs(err, model.ErrInvalidID)
}

func (s *AuthenticatorSuite) TestVerifyJustBeforeExpiry() {
	tok, _ := s.auth.Issue(7)
	s.clock.Advance(time.Hour - time.Second)

	got, err := s.auth.Verify(tok)
	s.Require().NoError(err)
	s.Equal(model.PlayerID(7), got)
}

func (s *AuthenticatorSuite) TestVerifyExpired() {
	tok, _ := s.auth.Issue(7)
	s.clock.Advance(time.Hour + time.Second)

	_, err := s.auth.Verify(tok)
	s.ErrorIs(err, model.ErrInvalidSignatureOrExpired)
}

func (s *AuthenticatorSuite) TestVerifyTokenExpiredOneSecondAgo() {
	id := int64(7)
	tok := s.sign(jwt.SigningMethodHS256, &claims{PlayerID: &id, RegisteredClaims: s.registered(-time.Second)}, []byte(testSecret))

	_, err := s.auth.Verify(tok)
	s.ErrorIs(err, model.ErrInvalidSignatureOrExpired)
}

func (s *AuthenticatorSuite) TestVerifyEmpty() {
	for _, tok := range []string{"", "   "} {
		_, err := s.auth.Verify(tok)
		s.ErrorIs(err, model.ErrMissingToken)
	}
}

func (s *AuthenticatorSuite) TestVerifyTamperedPayload() {
	tok, _ := s.auth.Issue(7)
	other, _ := s.auth.Issue(8)

	parts := strings.Split(tok, ".")
	otherParts := strings.Split(other, ".")
	forged := parts[0] + "." + otherParts[1] + "." + parts[2]

	_, err := s.auth.Verify(forged)
	s.ErrorIs(err, model.ErrInvalidSignatureOrExpired)
}

func (s *AuthenticatorSuite) TestVerifyWrongSecret() {
	id := int64(7)
	tok := s.sign(jwt.SigningMethodHS256, &claims{PlayerID: &id, RegisteredClaims: s.registered(time.Hour)}, []byte("another-secret"))

	_, err := s.auth.Verify(tok)
	s.ErrorIs(err, model.ErrInvalidSignatureOrExpired)
}

func (s *AuthenticatorSuite) TestVerifyWrongIssuer() {
	other, err := New(s.clock, Config{Secret: testSecret, Issuer: "someone-else", TTL: time.Hour})
	s.Require().NoError(err)
	tok, _ := other.Issue(7)

	_, err = s.auth.Verify(tok)
	s.ErrorIs(err, model.ErrInvalidSignatureOrExpired)
}

func (s *AuthenticatorSuite) TestVerifyRejectsOtherAlgorithms() {
	id := int64(7)
	tok := s.sign(jwt.SigningMethodHS512, &claims{PlayerID: &id, RegisteredClaims: s.registered(time.Hour)}, []byte(testSecret))

	_, err := s.auth.Verify(tok)
	s.ErrorIs(err, model.ErrInvalidSignatureOrExpired)
}

func (s *AuthenticatorSuite) TestVerifyRequiresExpiry() {
	id := int64(7)
	c := &claims{PlayerID: &id, RegisteredClaims: jwt.RegisteredClaims{Issuer: "ledger-test"}}
	tok := s.sign(jwt.SigningMethodHS256, c, []byte(testSecret))

	_, err := s.auth.Verify(tok)
	s.ErrorIs(err, model.ErrInvalidSignatureOrExpired)
}

func (s *AuthenticatorSuite) TestVerifyGarbage() {
	_, err := s.auth.Verify("not.a.token")
	s.ErrorIs(err, model.ErrInvalidSignatureOrExpired)
}

func (s *AuthenticatorSuite) TestVerifyMissingPlayerClaim() {
	tok := s.sign(jwt.SigningMethodHS256, &claims{RegisteredClaims: s.registered(time.Hour)}, []byte(testSecret))

	_, err := s.auth.Verify(tok)
	s.ErrorIs(err, model.ErrMissingClaim)
}

func (s *AuthenticatorSuite) TestVerifyNonPositivePlayerClaim() {
	id := int64(0)
	tok := s.sign(jwt.SigningMethodHS256, &claims{PlayerID: &id, RegisteredClaims: s.registered(time.Hour)}, []byte(testSecret))

	_, err := s.auth.Verify(tok)
	s.ErrorIs(err, model.ErrMissingClaim)
}

func (s *AuthenticatorSuite) TestVerifyIsPure() {
	tok, _ := s.auth.Issue(3)
	for i := 0; i < 3; i++ {
		got, err := s.auth.Verify(tok)
		s.Require().NoError(err)
		s.Equal(model.PlayerID(3), got)
	}
}
