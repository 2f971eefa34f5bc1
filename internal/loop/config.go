package loop

import "time"

// Frame pacing.
const (
	targetFPS       = 60
	targetFrameTime = time.Second / targetFPS

	// maxDelta caps the simulated step after a stall; one long frame must
	// not teleport the run across several rows.
	maxDelta = 0.1
)

// Logical canvas resolution. Height is in half-block sub-pixels, two per
// terminal row, so 100 sub-pixels render on 50 rows.
const (
	targetWidth  = 160.0
	targetHeight = 100.0

	maxTermWidth  = 160
	maxTermHeight = 50
)

// Corridor projection. Depths are world units; one track row spans
// depthPerRow of them.
const (
	vanishYRatio   = 0.28
	baselineYRatio = 0.92
	viewerDistance = 220.0

	depthPerRow = 60.0
	shipDepth   = 8.0

	tileInset     = 0.42 // tile half-width in lanes, leaves a gutter between lanes
	tileDepthFill = 0.82 // fraction of a row's depth a tile covers
	railOverhang  = 0.65 // corridor walls sit this far outside the outer lanes

	shipSize    = 9.0
	pickupSize  = 5.0
	pickupHover = 9.0 // lift above the tile so the diamond reads against the dark
)

// Consequence timing, in seconds.
const (
	minorInvulnSeconds        = 0.75
	postRecoveryInvulnSeconds = 1.5
	deathLockoutSeconds       = 1.5

	warnFlashSeconds = 0.9
	noteFlashSeconds = 1.6
)

// Blink rates for overlays.
const (
	shipBlinkFrequency = 10.0
	promptBlinkMs      = 600
)

// Session housekeeping.
const (
	inactivityWarnSeconds       = 90
	inactivityDisconnectSeconds = 120
	shutdownDisplaySeconds      = 10.0
)
