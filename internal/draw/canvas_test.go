package draw

import (
	"bytes"
	"regexp"
	"strings"
	"testing"
)

var cellRe = regexp.MustCompile(`\x1b\[(\d+);(\d+)H(.)`)

// renderedCells parses Render output into a map keyed by (row, col).
func renderedCells(t *testing.T, s string) map[[2]int]rune {
	t.Helper()
	cells := make(map[[2]int]rune)
	matches := cellRe.FindAllStringSubmatch(s, -1)
	for _, m := range matches {
		row, col := atoi(t, m[1]), atoi(t, m[2])
		cells[[2]int{row, col}] = []rune(m[3])[0]
	}
	return cells
}

func atoi(t *testing.T, s string) int {
	t.Helper()
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}

func render(c *Canvas) string {
	var buf bytes.Buffer
	c.Render(&buf)
	return buf.String()
}

func TestCanvasRenderEmitsOnlyChanges(t *testing.T) {
	c := NewCanvas(4, 2)

	first := renderedCells(t, render(c))
	if len(first) != 8 {
		t.Fatalf("initial render emitted %d cells, want 8", len(first))
	}

	if out := render(c); out != "" {
		t.Fatalf("unchanged render emitted %q, want nothing", out)
	}

	c.Set(0, 0)
	cells := renderedCells(t, render(c))
	if len(cells) != 1 {
		t.Fatalf("render after one pixel emitted %d cells, want 1", len(cells))
	}
	if got := cells[[2]int{1, 1}]; got != BlockUpperHalf {
		t.Fatalf("cell (1,1) = %q, want %q", got, BlockUpperHalf)
	}

	c.Clear()
	cells = renderedCells(t, render(c))
	if len(cells) != 1 {
		t.Fatalf("render after clear emitted %d cells, want 1", len(cells))
	}
	if got := cells[[2]int{1, 1}]; got != BlockEmpty {
		t.Fatalf("cleared cell (1,1) = %q, want blank", got)
	}
}

func TestCanvasForceRedraw(t *testing.T) {
	c := NewCanvas(3, 2)
	render(c)

	c.ForceRedraw()
	cells := renderedCells(t, render(c))
	if len(cells) != 6 {
		t.Fatalf("render after ForceRedraw emitted %d cells, want 6", len(cells))
	}
}

func TestCanvasMarkTextDirty(t *testing.T) {
	c := NewCanvas(4, 2)
	render(c)

	c.MarkTextDirty(2, 1, 2)
	cells := renderedCells(t, render(c))
	if len(cells) != 2 {
		t.Fatalf("render after MarkTextDirty emitted %d cells, want 2", len(cells))
	}
	for _, pos := range [][2]int{{1, 2}, {1, 3}} {
		if _, ok := cells[pos]; !ok {
			t.Errorf("cell %v not re-emitted", pos)
		}
	}

	// Out-of-range marks must be ignored.
	c.MarkTextDirty(0, 99, 5)
	if out := render(c); out != "" {
		t.Fatalf("out-of-range mark emitted %q, want nothing", out)
	}
}

func TestCanvasResize(t *testing.T) {
	c := NewCanvas(4, 2)
	render(c)

	c.Resize(3, 2)
	cells := renderedCells(t, render(c))
	if len(cells) != 6 {
		t.Fatalf("render after resize emitted %d cells, want 6", len(cells))
	}

	// Same dimensions keep the previous frame state.
	c.Resize(3, 2)
	if out := render(c); out != "" {
		t.Fatalf("same-size resize emitted %q, want nothing", out)
	}
}

func TestCanvasScaling(t *testing.T) {
	c := NewScaledCanvas(8, 4, 4, 4)

	render(c)
	c.SetFloat(1, 1)
	cells := renderedCells(t, render(c))
	if got := cells[[2]int{2, 3}]; got != BlockUpperHalf {
		t.Fatalf("scaled pixel landed wrong: cells=%v", cells)
	}

	col, row := c.LogicalToTerminal(1, 1)
	if col != 3 || row != 2 {
		t.Fatalf("LogicalToTerminal(1,1) = (%d,%d), want (3,2)", col, row)
	}

	if c.LogicalWidth() != 4 || c.LogicalHeight() != 4 {
		t.Fatalf("logical size = (%v,%v), want (4,4)", c.LogicalWidth(), c.LogicalHeight())
	}
	if c.TerminalWidth() != 8 || c.TerminalHeight() != 4 {
		t.Fatalf("terminal size = (%d,%d), want (8,4)", c.TerminalWidth(), c.TerminalHeight())
	}
}

func TestCanvasOffsetAppliedToRender(t *testing.T) {
	c := NewCanvas(1, 1)
	c.SetOffset(3, 2)

	cells := renderedCells(t, render(c))
	if _, ok := cells[[2]int{3, 4}]; !ok {
		t.Fatalf("offset cell missing, got %v", cells)
	}
	if c.OffsetCol() != 3 || c.OffsetRow() != 2 {
		t.Fatalf("offsets = (%d,%d), want (3,2)", c.OffsetCol(), c.OffsetRow())
	}
}

func TestDrawLineHorizontal(t *testing.T) {
	c := NewCanvas(5, 1)
	render(c)

	c.DrawLine(Point{X: 0, Y: 0}, Point{X: 4, Y: 0})
	cells := renderedCells(t, render(c))
	if len(cells) != 5 {
		t.Fatalf("line emitted %d cells, want 5", len(cells))
	}
	for col := 1; col <= 5; col++ {
		if got := cells[[2]int{1, col}]; got != BlockUpperHalf {
			t.Errorf("cell (1,%d) = %q, want %q", col, got, BlockUpperHalf)
		}
	}
}

func TestDrawPolygonFilled(t *testing.T) {
	c := NewCanvas(4, 2)
	render(c)

	pts := []Point{{X: 0, Y: 0}, {X: 3, Y: 0}, {X: 3, Y: 3}, {X: 0, Y: 3}}
	c.DrawPolygon(pts, true)

	cells := renderedCells(t, render(c))
	if len(cells) != 8 {
		t.Fatalf("filled rect emitted %d cells, want 8", len(cells))
	}
	for pos, ch := range cells {
		if ch != BlockFull {
			t.Errorf("cell %v = %q, want full block", pos, ch)
		}
	}
}

func TestDrawPolygonTooFewPoints(t *testing.T) {
	c := NewCanvas(4, 2)
	render(c)

	c.DrawPolygon([]Point{{X: 0, Y: 0}, {X: 3, Y: 3}}, true)
	if out := render(c); out != "" {
		t.Fatalf("degenerate polygon emitted %q, want nothing", out)
	}
}

func TestBorrowPointsReuse(t *testing.T) {
	c := NewCanvas(4, 2)

	a := c.BorrowPoints(3)
	if len(a) != 3 {
		t.Fatalf("BorrowPoints(3) length = %d, want 3", len(a))
	}
	b := c.BorrowPoints(2)
	if len(b) != 2 {
		t.Fatalf("BorrowPoints(2) length = %d, want 2", len(b))
	}
	if &a[0] != &b[0] {
		t.Fatal("BorrowPoints did not reuse the buffer")
	}
}

func TestShadeLevel(t *testing.T) {
	cases := []struct {
		intensity float64
		want      rune
	}{
		{-0.5, ' '},
		{0, ' '},
		{0.3, '░'},
		{0.5, '▒'},
		{1, '█'},
		{1.7, '█'},
	}
	for _, tc := range cases {
		if got := ShadeLevel(tc.intensity); got != tc.want {
			t.Errorf("ShadeLevel(%v) = %q, want %q", tc.intensity, got, tc.want)
		}
	}
}

func TestChunkWriterOffsets(t *testing.T) {
	var buf bytes.Buffer
	cw := NewChunkWriter(&buf, 2, 1)

	cw.WriteAt(1, 1, "hi")
	if err := cw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if got, want := buf.String(), "\033[2;3Hhi"; got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}

	buf.Reset()
	cw.SetOffset(0, 0)
	cw.WriteAt(3, 2, "x")
	if err := cw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if got, want := buf.String(), "\033[2;3Hx"; got != want {
		t.Fatalf("output after SetOffset = %q, want %q", got, want)
	}
}

func TestChunkWriterPreservesContentAcrossChunks(t *testing.T) {
	var buf bytes.Buffer
	cw := NewChunkWriter(&buf, 0, 0)

	payload := strings.Repeat("abcdefgh", 700) // well past one chunk
	cw.WriteString(payload)
	if err := cw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if buf.String() != payload {
		t.Fatalf("payload corrupted: got %d bytes, want %d", buf.Len(), len(payload))
	}
}

func TestTerminalSizeRawWith(t *testing.T) {
	w, h, err := TerminalSizeRawWith(func() (int, int, error) {
		return 120, 40, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w != 120 || h != 40 {
		t.Fatalf("size = (%d,%d), want (120,40)", w, h)
	}
}
