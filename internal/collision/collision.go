// Package collision classifies whether the ship is supported by the track
// window and how badly it is off when not. Outcomes are plain values graded
// by severity; they are consumed by the game loop, never raised as errors.
package collision

import (
	"fmt"

	"starlane/internal/track"
)

// Kind names the class of collision found.
type Kind int

const (
	KindNone Kind = iota
	KindOffTrack
	KindBoundary
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindOffTrack:
		return "off-track"
	case KindBoundary:
		return "boundary"
	default:
		return "unknown"
	}
}

// Severity grades the consequence tier of an outcome.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityMinor
	SeverityMajor
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "none"
	case SeverityMinor:
		return "minor"
	case SeverityMajor:
		return "major"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Outcome is produced fresh on every check and never mutated afterwards.
// Distance is measured in lanes to the nearest support at the checked row;
// it is zero when the row holds no tiles at all. AheadRows is set only by
// the predictive check: the number of rows until support runs out.
type Outcome struct {
	HasCollision bool
	Kind         Kind
	Distance     float64
	Severity     Severity
	AheadRows    int
}

// Config holds the grading thresholds. Distances are in lane widths.
// Grading cascades outward: within ShipTolerance the ship is supported,
// past it the closer the miss the harsher the tier, and a row with no
// support at all is fatal.
type Config struct {
	Lanes          int
	ShipTolerance  float64 // supported when within this of a tile
	MajorThreshold float64 // off-track misses closer than this cost a life
	MinorThreshold float64 // off-track misses closer than this cost score
	GraceTiles     int     // generated-tile count below which empty rows stay minor
	LookAheadRows  int     // future rows inspected for imminent loss of support
}

// Detector performs support checks. It carries no mutable state besides the
// configuration, so a single instance is safe to reuse across runs.
type Detector struct {
	cfg Config
}

// NewDetector validates the thresholds and returns a detector.
func NewDetector(cfg Config) (*Detector, error) {
	if cfg.Lanes <= 0 {
		return nil, fmt.Errorf("collision: lane count %d must be positive", cfg.Lanes)
	}
	if cfg.ShipTolerance <= 0 {
		return nil, fmt.Errorf("collision: ship tolerance %g must be positive", cfg.ShipTolerance)
	}
	if cfg.MajorThreshold < cfg.ShipTolerance {
		return nil, fmt.Errorf("collision: major threshold %g below ship tolerance %g", cfg.MajorThreshold, cfg.ShipTolerance)
	}
	if cfg.MinorThreshold < cfg.MajorThreshold {
		return nil, fmt.Errorf("collision: minor threshold %g below major threshold %g", cfg.MinorThreshold, cfg.MajorThreshold)
	}
	if cfg.GraceTiles < 0 {
		return nil, fmt.Errorf("collision: grace tiles %d must not be negative", cfg.GraceTiles)
	}
	if cfg.LookAheadRows < 0 {
		return nil, fmt.Errorf("collision: lookahead rows %d must not be negative", cfg.LookAheadRows)
	}
	return &Detector{cfg: cfg}, nil
}

// Check classifies the ship's support against the tile window. playerLane is
// the ship's fractional lane position, playerRow the scroll row it rides,
// and generated the total tiles created this run (drives startup leniency).
//
// Boundary violations short-circuit everything else: a ship outside the
// corridor is off regardless of what the window holds.
func (d *Detector) Check(playerLane float64, playerRow int, window []track.Tile, generated int) Outcome {
	if playerLane < 0 || playerLane >= float64(d.cfg.Lanes) {
		return Outcome{
			HasCollision: true,
			Kind:         KindBoundary,
			Distance:     boundaryOverrun(playerLane, d.cfg.Lanes),
			Severity:     SeverityMajor,
		}
	}

	dist, found := nearestSupport(window, playerRow, playerLane)
	if !found {
		// No tiles at the ship's row. During window warm-up that is the
		// game's fault, not the player's; afterwards it means the ship has
		// outrun or fallen off the path entirely.
		severity := SeverityFatal
		if generated < d.cfg.GraceTiles {
			severity = SeverityMinor
		}
		return Outcome{
			HasCollision: true,
			Kind:         KindOffTrack,
			Distance:     0,
			Severity:     severity,
		}
	}

	if dist <= d.cfg.ShipTolerance {
		if ahead, miss := d.lookAhead(playerLane, playerRow, window); miss {
			return Outcome{
				HasCollision: true,
				Kind:         KindOffTrack,
				Distance:     dist,
				Severity:     SeverityMinor,
				AheadRows:    ahead,
			}
		}
		return Outcome{Kind: KindNone, Distance: dist}
	}

	switch {
	case dist <= d.cfg.MajorThreshold:
		return Outcome{HasCollision: true, Kind: KindOffTrack, Distance: dist, Severity: SeverityMajor}
	case dist <= d.cfg.MinorThreshold:
		return Outcome{HasCollision: true, Kind: KindOffTrack, Distance: dist, Severity: SeverityMinor}
	default:
		// Too far off for a graded hit; worth logging upstream but not
		// acting on.
		return Outcome{Kind: KindOffTrack, Distance: dist}
	}
}

// lookAhead scans up to LookAheadRows future rows at the ship's current lane
// and reports the first one lacking support. Rows past the generation
// frontier are skipped: not yet materialized is not the same as missing.
func (d *Detector) lookAhead(playerLane float64, playerRow int, window []track.Tile) (int, bool) {
	if d.cfg.LookAheadRows <= 0 || len(window) == 0 {
		return 0, false
	}
	frontier := window[len(window)-1].Row

	for off := 1; off <= d.cfg.LookAheadRows; off++ {
		row := playerRow + off
		if row > frontier {
			break
		}
		if dist, found := nearestSupport(window, row, playerLane); !found || dist > d.cfg.ShipTolerance {
			return off, true
		}
	}
	return 0, false
}

// nearestSupport returns the smallest lane distance from position to any
// tile at the given row.
func nearestSupport(window []track.Tile, row int, position float64) (float64, bool) {
	best := 0.0
	found := false
	for _, t := range window {
		if t.Row != row {
			if t.Row > row {
				break
			}
			continue
		}
		d := position - float64(t.Lane)
		if d < 0 {
			d = -d
		}
		if !found || d < best {
			best = d
			found = true
		}
	}
	return best, found
}

// boundaryOverrun measures how far past the corridor rails the position is.
func boundaryOverrun(position float64, lanes int) float64 {
	if position < 0 {
		return -position
	}
	return position - float64(lanes-1)
}
