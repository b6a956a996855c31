package booking

import (
	"testing"

	"bjorkvang/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestStatusEngineHeuristic(t *testing.T) {
	engine := NewStatusEngine(models.PolicyHeuristic, "", 0)

	// Full venue confirms right away.
	assert.Equal(t, models.StatusConfirmed, engine.Compute([]string{models.FullVenueSpace}, 2, ""))

	// Long bookings confirm too.
	assert.Equal(t, models.StatusConfirmed, engine.Compute([]string{"storsalen"}, 8, ""))
	assert.Equal(t, models.StatusConfirmed, engine.Compute(nil, 10, ""))

	// Short partial bookings wait.
	assert.Equal(t, models.StatusPending, engine.Compute([]string{"storsalen"}, 4, ""))
	assert.Equal(t, models.StatusPending, engine.Compute([]string{"kjøkken"}, 7.5, ""))
}

func TestStatusEngineBoard(t *testing.T) {
	engine := NewStatusEngine(models.PolicyBoard, "", 0)

	// The board policy never auto-confirms.
	assert.Equal(t, models.StatusPending, engine.Compute([]string{models.FullVenueSpace}, 12, ""))
	assert.Equal(t, models.StatusPending, engine.Compute(nil, 24, ""))
}

func TestStatusEngineExplicitStatus(t *testing.T) {
	engine := NewStatusEngine(models.PolicyBoard, "", 0)

	assert.Equal(t, models.StatusBlocked, engine.Compute(nil, 4, models.StatusBlocked))
	assert.Equal(t, models.StatusConfirmed, engine.Compute(nil, 1, models.StatusConfirmed))

	// Unknown explicit statuses fall back to the policy.
	assert.Equal(t, models.StatusPending, engine.Compute(nil, 4, "tentative"))
}

func TestCanTransition(t *testing.T) {
	board := NewStatusEngine(models.PolicyBoard, "", 0)

	assert.True(t, board.CanTransition(models.StatusPending, models.StatusApproved))
	assert.True(t, board.CanTransition(models.StatusPending, models.StatusRejected))

	// One-way: decided bookings stay decided.
	assert.False(t, board.CanTransition(models.StatusApproved, models.StatusRejected))
	assert.False(t, board.CanTransition(models.StatusRejected, models.StatusApproved))
	assert.False(t, board.CanTransition(models.StatusBlocked, models.StatusApproved))
	assert.False(t, board.CanTransition(models.StatusPending, models.StatusConfirmed))

	heuristic := NewStatusEngine(models.PolicyHeuristic, "", 0)
	assert.False(t, heuristic.CanTransition(models.StatusPending, models.StatusApproved))
}

func TestStatusEngineDefaults(t *testing.T) {
	engine := NewStatusEngine("", "", 0)
	assert.Equal(t, models.PolicyBoard, engine.Policy())

	custom := NewStatusEngine(models.PolicyHeuristic, "hovedsal", 6)
	assert.Equal(t, models.StatusConfirmed, custom.Compute([]string{"hovedsal"}, 2, ""))
	assert.Equal(t, models.StatusConfirmed, custom.Compute([]string{"kjøkken"}, 6, ""))
	assert.Equal(t, models.StatusPending, custom.Compute([]string{"kjøkken"}, 5, ""))
}
