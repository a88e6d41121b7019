package factory

import (
	"time"

	"github.com/hamsterrace/raceboard/internal/dependencies/mocks"
	"github.com/hamsterrace/raceboard/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
// and in-memory stores. Rate limiting stays off unless cfg enables it.
func NewTestApp(cfg Config) *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	logger := cfg.Logger
	if logger == nil {
		logger = discardLogger()
	}

	app := newWithDependencies(
		memory.NewSessionStorage(), memory.NewRaceStorage(), mockClock, mockRandom, cfg, logger,
	)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
