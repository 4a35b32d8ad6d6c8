package factory

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/playerledger/internal/dependencies/mocks"
	"github.com/mcoot/playerledger/internal/services/auth"
	"github.com/mcoot/playerledger/internal/services/token"
	"github.com/mcoot/playerledger/internal/storage/memory"
	"github.com/mcoot/playerledger/internal/testutil"
)

// TestTokenSecret signs tokens issued by a TestApp
const TestTokenSecret = "test-secret-do-not-use-in-production"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	Memory     *memory.Storage
}

// NewTestApp creates an App over in-memory storage with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	tokenCfg := token.DefaultConfig()
	tokenCfg.Secret = TestTokenSecret

	app, err := newWithDependencies(store, mockClock, mockRandom, tokenCfg, auth.Config{BcryptCost: bcrypt.MinCost}, testutil.NopLogger())
	if err != nil {
		// The test configuration is static; failure here is a programming error
		panic(err)
	}

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		Memory:     store,
	}
}
