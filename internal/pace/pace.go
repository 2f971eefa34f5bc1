// Package pace computes scroll-speed progression. Two policies live here:
// the classic stepped increase driven purely by score, and a smooth curve
// blending score progress with elapsed run time.
package pace

import "fmt"

// Stepped returns the stepped-difficulty speed: base plus one step for every
// full score interval, capped at capFactor times base. A non-positive
// interval disables stepping rather than dividing by zero.
func Stepped(base float64, score, interval int, step, capFactor float64) float64 {
	if interval <= 0 || score < 0 {
		return base
	}
	speed := base + float64(score/interval)*step
	if cap := base * capFactor; speed > cap {
		return cap
	}
	return speed
}

// Curve eases speed from Base to Max along a smoothstep, driven by whichever
// is further along: the caller-supplied progress scalar or elapsed run time
// against the ramp duration. Score surges and long careful runs both push
// the pace.
type Curve struct {
	base float64
	max  float64
	ramp float64 // seconds to reach full pace on time alone

	elapsed float64
}

// NewCurve validates the speed band and returns a curve at rest.
func NewCurve(base, max, rampSeconds float64) (*Curve, error) {
	if base <= 0 {
		return nil, fmt.Errorf("pace: base speed %g must be positive", base)
	}
	if max < base {
		return nil, fmt.Errorf("pace: max speed %g below base %g", max, base)
	}
	if rampSeconds <= 0 {
		return nil, fmt.Errorf("pace: ramp duration %g must be positive", rampSeconds)
	}
	return &Curve{base: base, max: max, ramp: rampSeconds}, nil
}

// Advance accumulates elapsed run time.
func (c *Curve) Advance(dt float64) {
	if dt > 0 {
		c.elapsed += dt
	}
}

// Speed returns the current speed for a normalized progress scalar in [0,1].
// Out-of-range progress is clamped, never rejected.
func (c *Curve) Speed(progress float64) float64 {
	p := progress
	if t := c.elapsed / c.ramp; t > p {
		p = t
	}
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	smooth := p * p * (3 - 2*p)
	return c.base + (c.max-c.base)*smooth
}

// Reset rewinds the time component for a fresh run.
func (c *Curve) Reset() {
	c.elapsed = 0
}
