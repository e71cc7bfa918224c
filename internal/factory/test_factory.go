package factory

import (
	"time"

	"github.com/mcoot/courgette-crush/internal/dependencies/mocks"
	"github.com/mcoot/courgette-crush/internal/services/auth"
	"github.com/mcoot/courgette-crush/internal/services/game"
	"github.com/mcoot/courgette-crush/internal/storage/memory"
	"github.com/mcoot/courgette-crush/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// Game IDs and seeds come from MockRandom, so queue them before creating games.
func NewTestApp(gameCfg game.Config) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, mockClock, mockRandom, auth.Config{
		Secret:          "test-secret",
		SessionDuration: 24 * time.Hour,
	}, gameCfg, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
