package pace

import "testing"

func TestSteppedProgression(t *testing.T) {
	// Two full intervals of 500 at score 1000: base 240 plus two steps of 20.
	if got := Stepped(240, 1000, 500, 20, 2); got != 280 {
		t.Fatalf("Stepped(240, 1000, 500, 20, x2) = %v, want 280", got)
	}

	// Partial intervals don't count.
	if got := Stepped(240, 499, 500, 20, 2); got != 240 {
		t.Fatalf("speed below one interval = %v, want 240", got)
	}
	if got := Stepped(240, 500, 500, 20, 2); got != 260 {
		t.Fatalf("speed at one interval = %v, want 260", got)
	}
}

func TestSteppedCap(t *testing.T) {
	if got := Stepped(240, 1_000_000, 500, 20, 2); got != 480 {
		t.Fatalf("capped speed = %v, want 480", got)
	}
}

func TestSteppedDegenerateInputs(t *testing.T) {
	if got := Stepped(240, 1000, 0, 20, 2); got != 240 {
		t.Fatalf("zero interval speed = %v, want base", got)
	}
	if got := Stepped(240, -100, 500, 20, 2); got != 240 {
		t.Fatalf("negative score speed = %v, want base", got)
	}
}

func TestNewCurveValidation(t *testing.T) {
	if _, err := NewCurve(0, 480, 180); err == nil {
		t.Fatal("zero base accepted")
	}
	if _, err := NewCurve(240, 200, 180); err == nil {
		t.Fatal("max below base accepted")
	}
	if _, err := NewCurve(240, 480, 0); err == nil {
		t.Fatal("zero ramp accepted")
	}
}

func TestCurveEndpoints(t *testing.T) {
	c, err := NewCurve(240, 480, 180)
	if err != nil {
		t.Fatal(err)
	}

	if got := c.Speed(0); got != 240 {
		t.Fatalf("speed at rest = %v, want base", got)
	}
	if got := c.Speed(1); got != 480 {
		t.Fatalf("speed at full progress = %v, want max", got)
	}
	// Clamped outside the band.
	if got := c.Speed(-2); got != 240 {
		t.Fatalf("speed at negative progress = %v, want base", got)
	}
	if got := c.Speed(5); got != 480 {
		t.Fatalf("speed past full progress = %v, want max", got)
	}
}

func TestCurveSmoothstepMidpoint(t *testing.T) {
	c, err := NewCurve(200, 400, 100)
	if err != nil {
		t.Fatal(err)
	}
	// smoothstep(0.5) = 0.5, so the midpoint lands halfway up the band.
	if got := c.Speed(0.5); got != 300 {
		t.Fatalf("midpoint speed = %v, want 300", got)
	}
}

func TestCurveMonotone(t *testing.T) {
	c, err := NewCurve(240, 480, 180)
	if err != nil {
		t.Fatal(err)
	}

	prev := 0.0
	for p := 0.0; p <= 1.0; p += 0.05 {
		s := c.Speed(p)
		if s < prev {
			t.Fatalf("speed fell with progress at %v: %v < %v", p, s, prev)
		}
		if s < 240 || s > 480 {
			t.Fatalf("speed %v escaped the configured band", s)
		}
		prev = s
	}
}

func TestCurveTimeComponent(t *testing.T) {
	c, err := NewCurve(200, 400, 10)
	if err != nil {
		t.Fatal(err)
	}

	c.Advance(5) // halfway up the ramp on time alone
	if got := c.Speed(0); got != 300 {
		t.Fatalf("time-driven speed = %v, want 300", got)
	}

	// Score progress beyond the time component wins.
	if got := c.Speed(1); got != 400 {
		t.Fatalf("progress-driven speed = %v, want 400", got)
	}

	// Negative dt is ignored.
	c.Advance(-100)
	if got := c.Speed(0); got != 300 {
		t.Fatalf("speed after negative advance = %v, want unchanged 300", got)
	}

	c.Reset()
	if got := c.Speed(0); got != 200 {
		t.Fatalf("speed after reset = %v, want base", got)
	}
}
