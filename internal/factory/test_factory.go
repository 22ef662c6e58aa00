package factory

import (
	"time"

	"github.com/mcoot/trucogame/internal/dependencies/mocks"
	"github.com/mcoot/trucogame/internal/services/auth"
	"github.com/mcoot/trucogame/internal/services/game"
	"github.com/mcoot/trucogame/internal/services/scoring"
	"github.com/mcoot/trucogame/internal/storage/memory"
	"github.com/mcoot/trucogame/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	Memory     *memory.Storage
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// Hands resolve once MockClock passes game.DefaultConfig().HandDelay.
func NewTestApp() *TestApp {
	return newTestApp(game.DefaultConfig())
}

// NewInstantTestApp is NewTestApp with hands resolving as soon as the table
// is complete
func NewInstantTestApp() *TestApp {
	cfg := game.DefaultConfig()
	cfg.HandDelay = 0
	return newTestApp(cfg)
}

func newTestApp(gameCfg game.Config) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, mockClock, mockRandom, mockRandom, auth.DefaultConfig(), gameCfg, scoring.DefaultWinningScore, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		Memory:     store,
	}
}
