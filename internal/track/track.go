// Package track maintains the forward window of path tiles the ship races
// over. Tiles are appended at the far end with bounded lateral drift and
// trimmed at the near end as the scroll row passes them.
package track

import (
	"fmt"
	"math/rand"
)

// Tile is one walkable path cell. Row grows monotonically away from the
// start; Lane is bounded [0, lane count). Tiles never change once appended.
type Tile struct {
	Lane int
	Row  int
}

// Config bounds the generated window.
type Config struct {
	Lanes       int // lane count across the corridor
	MinTiles    int // refill trigger: window may not shrink below this
	MaxTiles    int // refill target and window ceiling
	StraightRun int // tiles at run start generated with drift suppressed
	TrimBehind  int // rows to keep behind the current scroll row
}

// Generator produces the tile window. It is intentionally stochastic; tests
// inject a seeded source for reproducibility.
type Generator struct {
	cfg Config
	rng *rand.Rand

	tiles     []Tile
	lastLane  int
	lastRow   int
	generated int // tiles generated this run, drives the straight-run gate
}

// NewGenerator validates the configuration and returns a generator ready for
// a run. A nil random source is refused rather than silently falling back to
// the global one.
func NewGenerator(cfg Config, rng *rand.Rand) (*Generator, error) {
	if cfg.Lanes <= 0 {
		return nil, fmt.Errorf("track: lane count %d must be positive", cfg.Lanes)
	}
	if cfg.MinTiles <= 0 {
		return nil, fmt.Errorf("track: min tiles %d must be positive", cfg.MinTiles)
	}
	if cfg.MaxTiles < cfg.MinTiles {
		return nil, fmt.Errorf("track: max tiles %d below min tiles %d", cfg.MaxTiles, cfg.MinTiles)
	}
	if cfg.StraightRun < 0 {
		return nil, fmt.Errorf("track: straight run %d must not be negative", cfg.StraightRun)
	}
	if cfg.TrimBehind < 0 {
		return nil, fmt.Errorf("track: trim margin %d must not be negative", cfg.TrimBehind)
	}
	if rng == nil {
		return nil, fmt.Errorf("track: random source must not be nil")
	}

	g := &Generator{cfg: cfg, rng: rng}
	g.Reset()
	return g, nil
}

// Reset drops the window and restarts generation from the center lane. The
// straight-run gate re-arms so the next run begins with a safe corridor.
func (g *Generator) Reset() {
	g.tiles = g.tiles[:0]
	g.lastLane = g.cfg.Lanes / 2
	g.lastRow = 0
	g.generated = 0
}

// EnsureWindow trims tiles that fell behind currentRow and, when the window
// has shrunk below the minimum, appends fresh rows up to the maximum. Called
// once per row crossing, so the refill runs as an occasional burst rather
// than a per-frame trickle.
func (g *Generator) EnsureWindow(currentRow int) {
	cutoff := currentRow - g.cfg.TrimBehind
	kept := g.tiles[:0]
	for _, t := range g.tiles {
		if t.Row >= cutoff {
			kept = append(kept, t)
		}
	}
	g.tiles = kept

	if len(g.tiles) >= g.cfg.MinTiles {
		return
	}

	if len(g.tiles) == 0 {
		// The whole window fell behind: restart generation from the center
		// lane at the scroll position instead of extending a stale frontier.
		if currentRow > g.lastRow {
			g.lastRow = currentRow
		}
		g.lastLane = g.cfg.Lanes / 2
	}

	for len(g.tiles) < g.cfg.MaxTiles {
		g.appendTile()
	}
}

// appendTile advances the frontier one row with bounded lateral drift.
func (g *Generator) appendTile() {
	step := 0
	if g.generated >= g.cfg.StraightRun {
		step = g.rng.Intn(3) - 1
	}

	g.lastLane = clampLane(g.lastLane+step, g.cfg.Lanes)
	g.lastRow++
	g.tiles = append(g.tiles, Tile{Lane: g.lastLane, Row: g.lastRow})
	g.generated++
}

// Tiles exposes the live window ordered by ascending row. The slice is owned
// by the generator; callers must not mutate or retain it across EnsureWindow
// calls.
func (g *Generator) Tiles() []Tile {
	return g.tiles
}

// TileAt returns the tile at the given row, if the row is materialized.
func (g *Generator) TileAt(row int) (Tile, bool) {
	for _, t := range g.tiles {
		if t.Row == row {
			return t, true
		}
		if t.Row > row {
			break
		}
	}
	return Tile{}, false
}

// Generated reports how many tiles have been created this run. Trimming does
// not decrease it; collision grading uses it to detect window warm-up.
func (g *Generator) Generated() int {
	return g.generated
}

// LastRow returns the generation frontier, the highest row materialized so
// far.
func (g *Generator) LastRow() int {
	return g.lastRow
}

// Lanes returns the configured lane count.
func (g *Generator) Lanes() int {
	return g.cfg.Lanes
}

func clampLane(lane, laneCount int) int {
	if lane < 0 {
		return 0
	}
	if lane >= laneCount {
		return laneCount - 1
	}
	return lane
}
