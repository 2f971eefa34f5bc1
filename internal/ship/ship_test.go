package ship

import (
	"math"
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		Lanes:       7,
		Smoothing:   9,
		MaxStep:     14,
		RepeatDelay: 140 * time.Millisecond,
	}
}

func newTestController(t *testing.T, cfg Config) *Controller {
	t.Helper()
	c, err := NewController(cfg)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	return c
}

func TestNewControllerValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero lanes", func(c *Config) { c.Lanes = 0 }},
		{"zero smoothing", func(c *Config) { c.Smoothing = 0 }},
		{"negative max step", func(c *Config) { c.MaxStep = -1 }},
		{"negative repeat delay", func(c *Config) { c.RepeatDelay = -time.Second }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(&cfg)
			if _, err := NewController(cfg); err == nil {
				t.Fatal("degenerate config accepted")
			}
		})
	}
}

func TestStartsCentered(t *testing.T) {
	c := newTestController(t, testConfig())
	if s := c.State(); s.Position != 3 || s.Target != 3 || s.Moving {
		t.Fatalf("initial state = %+v, want centered and still", s)
	}
}

func TestSteerRepeatDelay(t *testing.T) {
	c := newTestController(t, testConfig())
	t0 := time.Now()

	c.Steer(true, false, t0)
	if got := c.State().Target; got != 2 {
		t.Fatalf("target after first press = %v, want 2", got)
	}

	// Held within the repeat window: no further move.
	c.Steer(true, false, t0.Add(50*time.Millisecond))
	if got := c.State().Target; got != 2 {
		t.Fatalf("target inside repeat window = %v, want 2", got)
	}

	// Past the window the held key repeats.
	c.Steer(true, false, t0.Add(150*time.Millisecond))
	if got := c.State().Target; got != 1 {
		t.Fatalf("target past repeat window = %v, want 1", got)
	}
}

func TestSteerDirectionsGateIndependently(t *testing.T) {
	c := newTestController(t, testConfig())
	t0 := time.Now()

	c.Steer(true, false, t0)
	// An immediate opposite press is not blocked by the left gate.
	c.Steer(false, true, t0.Add(time.Millisecond))
	if got := c.State().Target; got != 3 {
		t.Fatalf("target after left+right = %v, want 3", got)
	}
}

func TestSteerClampsAtRails(t *testing.T) {
	c := newTestController(t, testConfig())

	now := time.Now()
	for i := 0; i < 20; i++ {
		c.Steer(true, false, now.Add(time.Duration(i)*time.Second))
	}
	if got := c.State().Target; got != 0 {
		t.Fatalf("target after hammering left = %v, want 0", got)
	}
}

func TestUpdateConvergesAndSnaps(t *testing.T) {
	c := newTestController(t, testConfig())
	c.Steer(true, false, time.Now())

	const dt = 1.0 / 60
	var s State
	for i := 0; i < 120; i++ {
		s = c.Update(dt)
		if !s.Moving {
			break
		}
	}
	if s.Moving {
		t.Fatalf("move never converged: %+v", s)
	}
	if s.Position != 2 {
		t.Fatalf("snapped position = %v, want exactly 2", s.Position)
	}
	if s.Velocity != 0 {
		t.Fatalf("velocity after snap = %v, want 0", s.Velocity)
	}
}

func TestUpdateMovesTowardTarget(t *testing.T) {
	c := newTestController(t, testConfig())
	c.Steer(false, true, time.Now())

	s := c.Update(1.0 / 60)
	if s.Position <= 3 || s.Position > 4 {
		t.Fatalf("position after one tick = %v, want in (3,4]", s.Position)
	}
	if s.Velocity <= 0 {
		t.Fatalf("velocity = %v, want positive toward target", s.Velocity)
	}
	if !s.Moving {
		t.Fatal("not flagged as moving mid-flight")
	}
}

func TestUpdateRespectsMaxStep(t *testing.T) {
	cfg := testConfig()
	cfg.Smoothing = 1000 // would overshoot wildly without the cap
	cfg.MaxStep = 2
	c := newTestController(t, cfg)
	c.Steer(true, false, time.Now())

	const dt = 1.0 / 60
	before := c.State().Position
	s := c.Update(dt)
	if moved := math.Abs(s.Position - before); moved > cfg.MaxStep*dt+1e-9 {
		t.Fatalf("moved %v in one tick, cap is %v", moved, cfg.MaxStep*dt)
	}
	if math.Abs(s.Velocity) != cfg.MaxStep {
		t.Fatalf("velocity = %v, want clamped to %v", s.Velocity, cfg.MaxStep)
	}
}

func TestUpdateOvershootSnaps(t *testing.T) {
	cfg := testConfig()
	cfg.Smoothing = 30 // smoothing * dt > 1 crosses the target in one tick
	cfg.MaxStep = 100
	c := newTestController(t, cfg)
	c.Steer(true, false, time.Now())

	s := c.Update(0.05)
	if s.Position != 2 || s.Moving {
		t.Fatalf("overshoot not snapped: %+v", s)
	}
}

func TestUpdateIdleIsStable(t *testing.T) {
	c := newTestController(t, testConfig())

	s := c.Update(1.0 / 60)
	if s.Position != 3 || s.Velocity != 0 || s.Moving {
		t.Fatalf("idle update drifted: %+v", s)
	}
}

func TestSetPositionTeleports(t *testing.T) {
	c := newTestController(t, testConfig())
	c.Steer(true, false, time.Now())
	c.Update(1.0 / 60)

	c.SetPosition(5)
	s := c.State()
	if s.Position != 5 || s.Target != 5 || s.Velocity != 0 || s.Moving {
		t.Fatalf("teleport left residue: %+v", s)
	}

	// Out-of-range teleports clamp to the rails.
	c.SetPosition(99)
	if got := c.State().Position; got != 6 {
		t.Fatalf("clamped teleport = %v, want 6", got)
	}

	// The steer gate re-arms: a press right after teleport moves.
	c.Steer(true, false, time.Now())
	if got := c.State().Target; got != 5 {
		t.Fatalf("steer after teleport target = %v, want 5", got)
	}
}
