package input

import (
	"bufio"
	"time"
)

// keyHoldDuration is how long a key counts as held after its last press.
// Terminals deliver held keys as bursts of discrete presses with small gaps
// this window has to bridge.
const keyHoldDuration = 30 * time.Millisecond

// Input is one frame's worth of key state.
type Input struct {
	Quit    bool
	Left    bool
	Right   bool
	Up      bool
	Down    bool
	Space   bool
	Enter   bool
	Escape  bool
	Pause   bool
	Pressed []byte
}

// keyState tracks the last time each key was seen.
type keyState struct {
	quit   time.Time
	left   time.Time
	right  time.Time
	up     time.Time
	down   time.Time
	space  time.Time
	enter  time.Time
	escape time.Time
	pause  time.Time
}

// Stream delivers input bytes from a reader goroutine and keeps per-key
// timestamps so simultaneous key combinations survive frame boundaries.
type Stream struct {
	ch     chan byte
	closed bool
	state  keyState
}

// StartStream spawns a goroutine that reads from r and feeds the stream
// until the reader fails (session closed, stdin gone).
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{
		ch: make(chan byte, 128),
	}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// ReadInput drains all bytes available on the stream without blocking,
// decodes CSI arrow sequences, and reports which keys are currently held.
// A closed stream reads as Quit so the game loop winds down when the
// connection drops.
func ReadInput(s *Stream) Input {
	now := time.Now()
	var buf []byte

drain:
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}

	parseBytes(&s.state, buf, now)

	in := snapshot(&s.state, buf, now)
	if s.closed {
		in.Quit = true
	}
	return in
}

// ResetKeyInput forgets all held keys. Called on screen transitions so a key
// held on the previous screen doesn't trigger an action on the next one.
func ResetKeyInput(s *Stream) {
	s.state = keyState{}
}

// parseBytes walks the drained bytes, decoding CSI arrow sequences and
// stamping per-key timestamps.
func parseBytes(state *keyState, buf []byte, now time.Time) {
	for i := 0; i < len(buf); i++ {
		b := buf[i]

		// CSI sequence: ESC [ <code>
		if b == '\x1b' && i+2 < len(buf) && buf[i+1] == '[' {
			switch buf[i+2] {
			case 'A':
				state.up = now
				i += 2
				continue
			case 'B':
				state.down = now
				i += 2
				continue
			case 'C':
				state.right = now
				i += 2
				continue
			case 'D':
				state.left = now
				i += 2
				continue
			}
		}

		applyByteToState(state, b, now)
	}
}

// applyByteToState stamps the key matching a single input byte.
func applyByteToState(state *keyState, b byte, now time.Time) {
	switch b {
	case 'q', 'Q', 0x03: // ctrl-c arrives as a raw byte in raw mode
		state.quit = now
	case 'a', 'A', 'h', 'H':
		state.left = now
	case 'd', 'D', 'l', 'L':
		state.right = now
	case 'w', 'W', 'k', 'K':
		state.up = now
	case 's', 'S', 'j', 'J':
		state.down = now
	case 'p', 'P':
		state.pause = now
	case ' ':
		state.space = now
	case '\n', '\r':
		state.enter = now
	case '\x1b':
		state.escape = now
	}
}

// snapshot builds an Input from the key timestamps. A key is held if it was
// seen within the hold window.
func snapshot(state *keyState, buf []byte, now time.Time) Input {
	return Input{
		Quit:    now.Sub(state.quit) < keyHoldDuration,
		Left:    now.Sub(state.left) < keyHoldDuration,
		Right:   now.Sub(state.right) < keyHoldDuration,
		Up:      now.Sub(state.up) < keyHoldDuration,
		Down:    now.Sub(state.down) < keyHoldDuration,
		Space:   now.Sub(state.space) < keyHoldDuration,
		Enter:   now.Sub(state.enter) < keyHoldDuration,
		Escape:  now.Sub(state.escape) < keyHoldDuration,
		Pause:   now.Sub(state.pause) < keyHoldDuration,
		Pressed: buf,
	}
}
