package fx

import "testing"

func TestNewAtmosphereValidation(t *testing.T) {
	if _, err := NewAtmosphere(-1, 100); err == nil {
		t.Fatal("negative fog start accepted")
	}
	if _, err := NewAtmosphere(100, 100); err == nil {
		t.Fatal("zero-width fog band accepted")
	}
	if _, err := NewAtmosphere(200, 100); err == nil {
		t.Fatal("inverted fog band accepted")
	}
}

func TestAtmosphereAlpha(t *testing.T) {
	a, err := NewAtmosphere(100, 300)
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		distance float64
		want     float64
	}{
		{0, 1},
		{100, 1},
		{200, 0.5},
		{300, 0},
		{900, 0},
	}
	for _, tc := range cases {
		if got := a.Alpha(tc.distance); got != tc.want {
			t.Errorf("Alpha(%v) = %v, want %v", tc.distance, got, tc.want)
		}
	}
}

func TestAtmosphereAlphaMonotone(t *testing.T) {
	a, err := NewAtmosphere(50, 500)
	if err != nil {
		t.Fatal(err)
	}

	prev := 2.0
	for d := 0.0; d <= 600; d += 10 {
		alpha := a.Alpha(d)
		if alpha > prev {
			t.Fatalf("alpha rose with distance at %v: %v > %v", d, alpha, prev)
		}
		if alpha < 0 || alpha > 1 {
			t.Fatalf("alpha %v at distance %v escaped [0,1]", alpha, d)
		}
		prev = alpha
	}
}

func TestAtmosphereVisible(t *testing.T) {
	a, err := NewAtmosphere(100, 300)
	if err != nil {
		t.Fatal(err)
	}
	if !a.Visible(299) {
		t.Fatal("in-band distance reported invisible")
	}
	if a.Visible(300) {
		t.Fatal("fully fogged distance reported visible")
	}
}

func TestNewLODValidation(t *testing.T) {
	if _, err := NewLOD(0, 10, 20); err == nil {
		t.Fatal("zero outline threshold accepted")
	}
	if _, err := NewLOD(10, 10, 20); err == nil {
		t.Fatal("non-increasing thresholds accepted")
	}
	if _, err := NewLOD(10, 20, 15); err == nil {
		t.Fatal("hidden below sparse accepted")
	}
}

func TestLODLevels(t *testing.T) {
	l, err := NewLOD(200, 380, 560)
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		distance float64
		want     Level
	}{
		{0, LevelFull},
		{199, LevelFull},
		{200, LevelOutline},
		{379, LevelOutline},
		{380, LevelSparse},
		{559, LevelSparse},
		{560, LevelHidden},
		{9999, LevelHidden},
	}
	for _, tc := range cases {
		if got := l.Level(tc.distance); got != tc.want {
			t.Errorf("Level(%v) = %v, want %v", tc.distance, got, tc.want)
		}
	}
}

func TestLODNeverGainsDetailWithDistance(t *testing.T) {
	l, err := NewLOD(100, 200, 300)
	if err != nil {
		t.Fatal(err)
	}

	prev := LevelFull
	for d := 0.0; d <= 400; d += 5 {
		level := l.Level(d)
		if level < prev {
			t.Fatalf("detail increased with distance at %v: %v after %v", d, level, prev)
		}
		prev = level
	}
}

func TestLevelStrings(t *testing.T) {
	want := map[Level]string{
		LevelFull:    "full",
		LevelOutline: "outline",
		LevelSparse:  "sparse",
		LevelHidden:  "hidden",
		Level(99):    "unknown",
	}
	for level, s := range want {
		if got := level.String(); got != s {
			t.Errorf("%d.String() = %q, want %q", level, got, s)
		}
	}
}
