// Package camera projects lane/depth track coordinates onto the 2D canvas.
// Everything the renderer draws goes through the same projector so
// horizontal and vertical foreshortening stay consistent.
package camera

import (
	"errors"
	"fmt"
)

// depthEpsilon keeps the projection denominator strictly positive even at
// zero depth.
const depthEpsilon = 1e-6

// Scale clamp bounds. The hyperbolic falloff approaches zero asymptotically;
// the floor keeps far geometry from degenerating to zero-size, the ceiling
// keeps near geometry from exploding when the viewer distance dwarfs depth.
const (
	minScale = 0.001
	maxScale = 10.0
)

// memoLimit caps the projection cache. Past it the cache is dropped
// wholesale rather than evicted piecemeal; recomputation is pure float math
// so a post-eviction call returns bit-identical results.
const memoLimit = 4096

// View describes the screen-space frame projections land in. Coordinates are
// logical canvas units with Y growing downward.
type View struct {
	Width          float64 // canvas logical width
	Height         float64 // canvas logical height
	VanishX        float64 // vanishing point, usually centered
	VanishY        float64 // vanishing point height
	BaselineY      float64 // where zero-depth geometry sits, below the vanish point
	ViewerDistance float64 // eye-to-screen distance controlling falloff steepness
}

// Projection is the screen-space result for one track coordinate.
type Projection struct {
	X     float64
	Y     float64
	Scale float64
}

// Projector converts (lateral offset, depth) pairs into screen coordinates.
// It memoizes results purely as a speed optimization; cache state is never
// observable in the output.
type Projector struct {
	view View
	memo map[memoKey]Projection
}

type memoKey struct {
	lateral float64
	depth   float64
}

// NewProjector validates the view geometry and returns a projector for it.
func NewProjector(view View) (*Projector, error) {
	if view.Width <= 0 || view.Height <= 0 {
		return nil, fmt.Errorf("camera: view dimensions %gx%g must be positive", view.Width, view.Height)
	}
	if view.ViewerDistance <= 0 {
		return nil, fmt.Errorf("camera: viewer distance %g must be positive", view.ViewerDistance)
	}
	if view.BaselineY <= view.VanishY {
		return nil, errors.New("camera: baseline must sit below the vanishing point")
	}
	return &Projector{
		view: view,
		memo: make(map[memoKey]Projection),
	}, nil
}

// View returns the geometry the projector was built with.
func (p *Projector) View() View {
	return p.view
}

// Scale returns the distance scale factor for a depth. Negative depths are
// clamped to zero before the falloff is computed, so the result is always in
// [minScale, maxScale].
func (p *Projector) Scale(depth float64) float64 {
	if depth < 0 {
		depth = 0
	}
	s := p.view.ViewerDistance / (p.view.ViewerDistance + depth + depthEpsilon)
	if s < minScale {
		return minScale
	}
	if s > maxScale {
		return maxScale
	}
	return s
}

// Project maps a lateral offset at a given depth to screen coordinates.
// lateral is a signed distance from the corridor center at zero depth;
// depth grows away from the viewer. Never fails: out-of-domain depths are
// clamped, not rejected.
func (p *Projector) Project(lateral, depth float64) Projection {
	key := memoKey{lateral: lateral, depth: depth}
	if cached, ok := p.memo[key]; ok {
		return cached
	}

	scale := p.Scale(depth)
	proj := Projection{
		X:     p.view.VanishX + lateral*scale,
		Y:     p.view.VanishY + (p.view.BaselineY-p.view.VanishY)*scale,
		Scale: scale,
	}

	if len(p.memo) >= memoLimit {
		clear(p.memo)
	}
	p.memo[key] = proj

	return proj
}

// LaneOffset converts a fractional lane index into a signed lateral offset
// from the corridor center, in the same units as laneWidth.
func LaneOffset(lane float64, laneCount int, laneWidth float64) float64 {
	center := float64(laneCount-1) / 2
	return (lane - center) * laneWidth
}
