// Package draw renders the game to a terminal using half-block characters
// and batched ANSI escape sequences.
package draw

// Point is a 2D coordinate in logical canvas space.
type Point struct {
	X, Y float64
}

// Block characters used by the canvas compositor.
const (
	BlockFull      = '█'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
	BlockEmpty     = ' '
)

// Shades orders fill characters from empty to solid, for HUD accents that
// draw intensity without going through the pixel canvas.
var Shades = []rune{' ', '░', '▒', '▓', '█'}

// ShadeLevel returns a shade character for an intensity between 0.0 (empty)
// and 1.0 (solid).
func ShadeLevel(intensity float64) rune {
	if intensity <= 0 {
		return Shades[0]
	}
	if intensity >= 1 {
		return Shades[len(Shades)-1]
	}
	return Shades[int(intensity*float64(len(Shades)-1))]
}

// ANSI color sequences for HUD accents.
const (
	ColorReset      = "\033[0m"
	ColorDim        = "\033[2m"
	ColorRed        = "\033[31m"
	ColorYellow     = "\033[33m"
	ColorBrightCyan = "\033[96m"
)

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
