package testutil

import (
	"time"

	"github.com/light-bringer/pos-service/internal/pkg/clock"
)

// Now is the instant fixtures are created at. It is a Saturday morning in
// Nairobi, 09:30 UTC.
var Now = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// NewMockClock creates a mock clock starting at Now.
func NewMockClock() *clock.MockClock {
	return clock.NewMockClock(Now)
}
