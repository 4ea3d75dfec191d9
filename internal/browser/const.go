package browser

import "time"

const (
	// slowMotionDelay is the delay between browser actions in debug mode.
	slowMotionDelay = 200 * time.Millisecond

	// cleanupDelay gives Chrome time to release profile file locks before removal.
	cleanupDelay = 500 * time.Millisecond

	// DefaultNavigationTimeout bounds navigation and element lookup.
	DefaultNavigationTimeout = 30 * time.Second

	// inputMinDelay is the minimum pause before typing or clicking.
	inputMinDelay = 150 * time.Millisecond
	// inputMaxDelay is the maximum pause before typing or clicking.
	inputMaxDelay = 600 * time.Millisecond

	// mouseMovements is the number of pointer moves made before an interaction.
	mouseMovements = 2
	// mouseMovementMinDelay is the minimum delay between pointer moves.
	mouseMovementMinDelay = 50 * time.Millisecond
	// mouseMovementMaxDelay is the maximum delay between pointer moves.
	mouseMovementMaxDelay = 200 * time.Millisecond
	// mouseMovementSteps is the number of intermediate points per pointer move.
	mouseMovementSteps = 5

	// scrollProbability is the chance of a small scroll before an interaction (1 in N).
	scrollProbability = 4
	// scrollMinAmount is the minimum scroll in pixels.
	scrollMinAmount = -60
	// scrollMaxAmount is the width of the scroll range in pixels.
	scrollMaxAmount = 120
)
