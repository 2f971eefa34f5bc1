package loop

// Status is the phase a session is in. The tick dispatches simulation and
// screen layout on it.
type Status int

const (
	StatusStart Status = iota
	StatusPlaying
	StatusPaused
	StatusDead
	StatusFault
	StatusShutdown
)

func (s Status) String() string {
	switch s {
	case StatusStart:
		return "start"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	case StatusDead:
		return "dead"
	case StatusFault:
		return "fault"
	case StatusShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// ScrollState is the forward progress of a run. OffsetPx accumulates scroll
// in logical pixels; every full row height it rolls over and CurrentRow
// advances by one.
type ScrollState struct {
	OffsetPx   float64
	CurrentRow int
}

// Run is the per-run state. Everything here is reinitialized when a new run
// starts; session-level state (terminal, input, inactivity) lives on Game.
type Run struct {
	Status  Status
	Score   int
	Lives   int
	Scroll  ScrollState
	Seconds float64
}

// recovery is the deferred recenter armed by a survivable major collision.
// It counts down with the playing tick rather than on a timer goroutine, and
// carries the generation it was armed under: a recovery that outlives its
// run is dropped instead of recentering the next one.
type recovery struct {
	pending    bool
	remaining  float64
	generation uint64
}

// flash is a transient HUD message and its remaining display time.
type flash struct {
	text string
	left float64
}

func (f *flash) set(text string, seconds float64) {
	f.text = text
	f.left = seconds
}

func (f *flash) tick(dt float64) {
	if f.left <= 0 {
		return
	}
	f.left -= dt
	if f.left <= 0 {
		f.text = ""
		f.left = 0
	}
}

func (f *flash) active() bool {
	return f.left > 0 && f.text != ""
}
