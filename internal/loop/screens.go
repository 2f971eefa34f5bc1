package loop

import (
	"fmt"
	"math"
	"strings"
	"time"

	"starlane/internal/bonus"
	"starlane/internal/draw"
)

var titleArt = []string{
	" ___  _____    _    ___  _       _    _  _  ___ ",
	"/ __||_   _|  /_\\  | _ \\| |     /_\\  | \\| || __|",
	"\\__ \\  | |   / _ \\ |   /| |__  / _ \\ | .` || _| ",
	"|___/  |_|  /_/ \\_\\|_|_\\|____|/_/ \\_\\|_|\\_||___|",
}

var gameOverArt = []string{
	"  ___    _    __  __  ___    ___  __   __ ___  ___ ",
	" / __|  /_\\  |  \\/  || __|   / _ \\ \\ \\ / /| __|| _ \\",
	"| (_ | / _ \\ | |\\/| || _|   | (_) | \\ V / | _| |   /",
	" \\___|/_/ \\_\\|_|  |_||___|   \\___/   \\_/  |___||_|_\\",
}

var pausedArt = []string{
	" ___    _    _   _  ___  ___  ___  ",
	"| _ \\  /_\\  | | | |/ __|| __||   \\ ",
	"|  _/ / _ \\ | |_| |\\__ \\| _| | |) |",
	"|_|  /_/ \\_\\ \\___/ |___/|___||___/ ",
}

var faultArt = []string{
	" ___    _    _   _  _     _____ ",
	"| __|  /_\\  | | | || |   |_   _|",
	"| _|  / _ \\ | |_| || |__   | |  ",
	"|_|  /_/ \\_\\ \\___/ |____|  |_|  ",
}

// drawOverlay writes the text layer for the current phase on top of the
// rendered scene.
func (g *Game) drawOverlay() {
	switch g.run.Status {
	case StatusStart:
		g.drawStartScreen()
	case StatusPlaying:
		g.drawHUD()
	case StatusPaused:
		g.drawHUD()
		g.drawPausedScreen()
	case StatusDead:
		g.drawDeadScreen()
	case StatusFault:
		g.drawFaultScreen()
	case StatusShutdown:
		g.drawShutdownScreen()
	}

	if g.isInactive {
		remaining := inactivityDisconnectSeconds - int(time.Since(g.lastInput).Seconds())
		if remaining < 0 {
			remaining = 0
		}
		msg := fmt.Sprintf("still there? any key stays connected, %2ds to disconnect", remaining)
		g.drawCenteredColor(g.termHeight-1, msg, draw.ColorRed)
	}
}

func (g *Game) drawStartScreen() {
	top := g.termHeight/2 - 9
	if top < 2 {
		top = 2
	}
	g.drawArt(titleArt, top)
	g.drawCentered(top+5, "ride the corridor, dodge the gaps")

	controls := []string{
		"A D or arrows   steer",
		"P               pause",
		"Q               quit",
	}
	for i, line := range controls {
		g.drawCentered(top+8+i, line)
	}

	if g.bestScore > 0 {
		g.drawCentered(top+12, fmt.Sprintf("session best %d", g.bestScore))
	}
	if blinkOn() {
		g.drawCenteredColor(top+14, ">>  press SPACE to launch  <<", draw.ColorBrightCyan)
	}
}

// drawHUD writes the fixed-position readouts. Fields are padded to constant
// width so a shrinking number never leaves residue behind.
func (g *Game) drawHUD() {
	g.writer.WriteAt(2, 1, fmt.Sprintf("SCORE %-8d", g.run.Score))

	combo := ""
	if g.combo.Multiplier() > 1 {
		combo = fmt.Sprintf("x%d  chain %d", g.combo.Multiplier(), g.combo.Chain())
	}
	g.writer.WriteAt(20, 1, fmt.Sprintf("%-16s", combo))

	lives := fmt.Sprintf("LIVES %d/%d", g.run.Lives, g.cfg.Game.Lives)
	g.writer.WriteAt(g.termWidth-len(lives), 1, lives)

	g.writer.WriteAt(2, g.termHeight,
		fmt.Sprintf("SPEED %4.0f %s ROW %-7d", g.speed, g.speedGauge(), g.run.Scroll.CurrentRow))

	badges := g.effectBadges()
	g.writer.WriteAt(g.termWidth-badgeWidth, g.termHeight, fmt.Sprintf("%*s", badgeWidth, badges))

	if g.warnFlash.active() {
		g.drawCenteredColor(3, g.warnFlash.text, draw.ColorRed)
	}
	if g.noteFlash.active() {
		g.drawCenteredColor(5, g.noteFlash.text, draw.ColorBrightCyan)
	}
	if g.rec.pending && blinkOn() {
		g.drawCenteredColor(g.termHeight/2, "R E A L I G N I N G", draw.ColorYellow)
	}
}

const badgeWidth = 36

// speedGauge renders the speed as a fixed-width shade bar against the
// schedule cap. Boost can push past the cap; the bar just pegs full.
func (g *Game) speedGauge() string {
	const cells = 8
	frac := g.speed / (g.cfg.Game.BaseSpeed * g.cfg.Game.SpeedCapFactor)
	if frac > 1 {
		frac = 1
	} else if frac < 0 {
		frac = 0
	}
	var b strings.Builder
	for i := 0; i < cells; i++ {
		b.WriteRune(draw.ShadeLevel((frac - float64(i)/cells) * cells))
	}
	return b.String()
}

func (g *Game) effectBadges() string {
	var b strings.Builder
	for _, e := range []bonus.Effect{bonus.EffectShield, bonus.EffectBoost, bonus.EffectSlow} {
		left := g.powerups.EffectRemaining(e)
		if left <= 0 {
			continue
		}
		fmt.Fprintf(&b, " [%s %.0fs]", strings.ToUpper(e.String()), math.Ceil(left))
	}
	return b.String()
}

func (g *Game) drawPausedScreen() {
	top := g.termHeight/2 - 4
	g.drawArt(pausedArt, top)
	if blinkOn() {
		g.drawCentered(top+6, "press P to resume")
	}
}

func (g *Game) drawDeadScreen() {
	top := g.termHeight/2 - 7
	if top < 2 {
		top = 2
	}
	g.drawArt(gameOverArt, top)
	g.drawCentered(top+6, fmt.Sprintf("score %d", g.run.Score))
	g.drawCentered(top+7, fmt.Sprintf("rows  %d", g.run.Scroll.CurrentRow))
	g.drawCentered(top+8, fmt.Sprintf("time  %ds", int(g.run.Seconds)))
	if g.bestScore > g.run.Score {
		g.drawCentered(top+9, fmt.Sprintf("best  %d", g.bestScore))
	}
	if g.deathTimer <= 0 && blinkOn() {
		g.drawCenteredColor(top+11, ">>  press SPACE for another run  <<", draw.ColorBrightCyan)
	}
}

func (g *Game) drawFaultScreen() {
	top := g.termHeight/2 - 5
	g.drawArt(faultArt, top)

	msg := g.faultMsg
	if max := g.termWidth - 4; len(msg) > max && max > 0 {
		msg = msg[:max]
	}
	g.drawCenteredColor(top+5, msg, draw.ColorDim)
	g.drawCentered(top+7, "the run tripped over itself and was stopped")
	if blinkOn() {
		g.drawCenteredColor(top+9, ">>  press SPACE to retry  <<", draw.ColorBrightCyan)
	}
}

func (g *Game) drawShutdownScreen() {
	mid := g.termHeight / 2
	g.drawCenteredColor(mid-2, "SERVER RESTARTING", draw.ColorYellow)
	g.drawCentered(mid, fmt.Sprintf("disconnecting in %2.0fs", math.Max(g.shutdownTimer, 0)))
	g.drawCentered(mid+2, "thanks for riding")
	if g.run.Score > 0 {
		g.drawCentered(mid+4, fmt.Sprintf("final score %d", g.run.Score))
	}
}

// drawTextMarked writes overlay text and marks its cells dirty, so the
// canvas repaints them once the text stops being written.
func (g *Game) drawTextMarked(col, row int, s string) {
	g.writer.WriteAt(col, row, s)
	g.canvas.MarkTextDirty(col, row, len(s))
}

func (g *Game) drawCentered(row int, s string) {
	g.drawTextMarked((g.termWidth-len(s))/2+1, row, s)
}

func (g *Game) drawCenteredColor(row int, s, color string) {
	col := (g.termWidth-len(s))/2 + 1
	g.writer.MoveCursor(col, row)
	g.writer.WriteString(color)
	g.writer.WriteString(s)
	g.writer.WriteString(draw.ColorReset)
	g.canvas.MarkTextDirty(col, row, len(s))
}

func (g *Game) drawArt(art []string, row int) {
	for i, line := range art {
		g.drawCentered(row+i, line)
	}
}

// blinkOn gates prompt text so it pulses instead of sitting static.
func blinkOn() bool {
	return time.Now().UnixMilli()/promptBlinkMs%2 == 0
}
