// Package fx holds the distance-driven rendering policies: atmospheric fade
// and level-of-detail stepping. Instances are owned by the game and passed
// to render calls; nothing here is package-global, so concurrent sessions
// never share fx state.
package fx

import "fmt"

// Atmosphere fades distant geometry toward the horizon. Alpha is full up to
// FogStart, then falls linearly to zero at FogEnd.
type Atmosphere struct {
	fogStart float64
	fogEnd   float64
}

// NewAtmosphere validates the fog band and returns an atmosphere.
func NewAtmosphere(fogStart, fogEnd float64) (*Atmosphere, error) {
	if fogStart < 0 {
		return nil, fmt.Errorf("fx: fog start %g must not be negative", fogStart)
	}
	if fogEnd <= fogStart {
		return nil, fmt.Errorf("fx: fog end %g must lie beyond fog start %g", fogEnd, fogStart)
	}
	return &Atmosphere{fogStart: fogStart, fogEnd: fogEnd}, nil
}

// Alpha returns the visibility of geometry at a distance, in [0,1].
func (a *Atmosphere) Alpha(distance float64) float64 {
	if distance <= a.fogStart {
		return 1
	}
	if distance >= a.fogEnd {
		return 0
	}
	return 1 - (distance-a.fogStart)/(a.fogEnd-a.fogStart)
}

// Visible reports whether geometry at a distance is worth drawing at all.
func (a *Atmosphere) Visible(distance float64) bool {
	return distance < a.fogEnd
}

// Level is a detail tier the renderer applies before drawing.
type Level int

const (
	LevelFull    Level = iota // filled shape
	LevelOutline              // outline only
	LevelSparse               // single marker pixel
	LevelHidden               // skip entirely
)

func (l Level) String() string {
	switch l {
	case LevelFull:
		return "full"
	case LevelOutline:
		return "outline"
	case LevelSparse:
		return "sparse"
	case LevelHidden:
		return "hidden"
	default:
		return "unknown"
	}
}

// LOD steps detail down with distance.
type LOD struct {
	outline float64
	sparse  float64
	hidden  float64
}

// NewLOD validates the threshold ordering and returns a stepper.
func NewLOD(outline, sparse, hidden float64) (*LOD, error) {
	if outline <= 0 {
		return nil, fmt.Errorf("fx: outline distance %g must be positive", outline)
	}
	if sparse <= outline || hidden <= sparse {
		return nil, fmt.Errorf("fx: lod thresholds %g/%g/%g must increase", outline, sparse, hidden)
	}
	return &LOD{outline: outline, sparse: sparse, hidden: hidden}, nil
}

// Level returns the detail tier for geometry at a distance.
func (l *LOD) Level(distance float64) Level {
	switch {
	case distance < l.outline:
		return LevelFull
	case distance < l.sparse:
		return LevelOutline
	case distance < l.hidden:
		return LevelSparse
	default:
		return LevelHidden
	}
}
