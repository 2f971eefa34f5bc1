// Package ship turns held left/right keys into smoothed, time-interpolated
// lane motion. It knows nothing about the track or collisions; it only moves
// a position toward a target.
package ship

import (
	"fmt"
	"time"
)

// snapEpsilon is the remaining distance below which the position locks onto
// the target exactly, ending the move.
const snapEpsilon = 0.02

// Config tunes the motion feel.
type Config struct {
	Lanes       int
	Smoothing   float64       // approach rate: fraction of remaining gap covered per second
	MaxStep     float64       // speed cap in lanes per second
	RepeatDelay time.Duration // minimum interval between accepted moves in one direction
}

// State is a read-only snapshot of the ship's lane motion. Position is
// fractional mid-move; Velocity is in lanes per second, signed.
type State struct {
	Position float64
	Target   float64
	Velocity float64
	Moving   bool
}

// Controller owns the ship's lane state. Collision checks and rendering read
// snapshots; only the controller mutates.
type Controller struct {
	cfg   Config
	state State

	lastLeft  time.Time
	lastRight time.Time
}

// NewController validates the configuration and returns a controller with
// the ship centered.
func NewController(cfg Config) (*Controller, error) {
	if cfg.Lanes <= 0 {
		return nil, fmt.Errorf("ship: lane count %d must be positive", cfg.Lanes)
	}
	if cfg.Smoothing <= 0 {
		return nil, fmt.Errorf("ship: smoothing %g must be positive", cfg.Smoothing)
	}
	if cfg.MaxStep <= 0 {
		return nil, fmt.Errorf("ship: max step %g must be positive", cfg.MaxStep)
	}
	if cfg.RepeatDelay < 0 {
		return nil, fmt.Errorf("ship: repeat delay %v must not be negative", cfg.RepeatDelay)
	}

	c := &Controller{cfg: cfg}
	c.SetPosition(float64(cfg.Lanes / 2))
	return c, nil
}

// Steer accepts the held key state for one frame. A held key produces at
// most one lane move per RepeatDelay in that direction, so a single press
// never jumps multiple lanes.
func (c *Controller) Steer(left, right bool, now time.Time) {
	if left && now.Sub(c.lastLeft) >= c.cfg.RepeatDelay {
		if c.move(-1) {
			c.lastLeft = now
		}
	}
	if right && now.Sub(c.lastRight) >= c.cfg.RepeatDelay {
		if c.move(1) {
			c.lastRight = now
		}
	}
}

// move shifts the target one lane, clamped to the rails. Reports whether the
// target actually changed; a clamped no-op doesn't count as an accepted move.
func (c *Controller) move(delta int) bool {
	target := c.state.Target + float64(delta)
	if target < 0 {
		target = 0
	}
	if max := float64(c.cfg.Lanes - 1); target > max {
		target = max
	}
	if target == c.state.Target {
		return false
	}
	c.state.Target = target
	c.state.Moving = true
	return true
}

// Update advances the position toward the target by elapsed time. The
// approach speed is proportional to the remaining gap, capped at MaxStep,
// and snaps onto the target once the gap falls under a small epsilon.
func (c *Controller) Update(dt float64) State {
	remaining := c.state.Target - c.state.Position
	if remaining == 0 {
		c.state.Velocity = 0
		c.state.Moving = false
		return c.state
	}

	step := remaining * c.cfg.Smoothing
	if step > c.cfg.MaxStep {
		step = c.cfg.MaxStep
	} else if step < -c.cfg.MaxStep {
		step = -c.cfg.MaxStep
	}

	c.state.Position += step * dt
	c.state.Velocity = step

	after := c.state.Target - c.state.Position
	if remaining*after <= 0 || (after < snapEpsilon && after > -snapEpsilon) {
		// Landed, overshot, or close enough: lock on.
		c.state.Position = c.state.Target
		c.state.Velocity = 0
		c.state.Moving = false
	}

	return c.state
}

// SetPosition teleports the ship: position and target collapse onto the
// given lane, motion stops, and the steer gate re-arms so the next press
// moves immediately. Used for run resets and post-collision recentering.
func (c *Controller) SetPosition(lane float64) {
	if lane < 0 {
		lane = 0
	}
	if max := float64(c.cfg.Lanes - 1); lane > max {
		lane = max
	}
	c.state = State{Position: lane, Target: lane}
	c.lastLeft = time.Time{}
	c.lastRight = time.Time{}
}

// State returns the current motion snapshot.
func (c *Controller) State() State {
	return c.state
}
