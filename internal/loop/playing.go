package loop

import (
	"fmt"
	"strings"
	"time"

	"starlane/internal/bonus"
	"starlane/internal/collision"
	"starlane/internal/input"
	"starlane/internal/pace"
)

func (g *Game) stepStart() {
	if g.in.Space || g.in.Enter {
		g.reset()
	}
}

func (g *Game) stepPaused() {
	if g.pausePressed() || g.in.Space || g.in.Enter {
		g.run.Status = StatusPlaying
		if g.stream != nil {
			input.ResetKeyInput(g.stream)
		}
	}
}

func (g *Game) stepDead(dt float64) {
	if g.deathTimer > 0 {
		g.deathTimer -= dt
		return
	}
	if g.in.Space || g.in.Enter {
		g.reset()
	}
}

func (g *Game) stepFault() {
	if g.in.Space || g.in.Enter {
		g.faultMsg = ""
		g.reset()
	}
}

func (g *Game) stepShutdown(dt float64) {
	g.shutdownTimer -= dt
	if g.shutdownTimer <= 0 {
		g.running = false
	}
}

// stepPlaying advances one simulation tick: steering, effect timers, scroll,
// row crossings, then the collision verdict. A pending recovery freezes the
// run until its countdown fires.
func (g *Game) stepPlaying(dt float64, now time.Time) {
	if g.pausePressed() {
		g.run.Status = StatusPaused
		return
	}

	g.warnFlash.tick(dt)
	g.noteFlash.tick(dt)

	if g.rec.pending {
		g.tickRecovery(dt)
		return
	}

	g.run.Seconds += dt
	if g.invuln > 0 {
		g.invuln -= dt
		if g.invuln < 0 {
			g.invuln = 0
		}
	}
	if g.cfg.Game.UseSpeedCurve {
		g.curve.Advance(dt)
	}

	g.ctrl.Steer(g.in.Left, g.in.Right, now)
	shipState := g.ctrl.Update(dt)

	for _, ev := range g.combo.Update(now) {
		g.noteComboEvent(ev)
	}
	for _, ev := range g.powerups.Update(dt, shipState.Position, g.run.Scroll.CurrentRow) {
		g.notePowerupEvent(ev)
	}

	g.speed = g.currentSpeed()
	g.run.Scroll.OffsetPx += g.speed * dt
	for g.run.Scroll.OffsetPx >= g.rowHeight {
		g.run.Scroll.OffsetPx -= g.rowHeight
		g.run.Scroll.CurrentRow++
		g.onRowCrossed(now)
	}

	g.checkCollision(shipState.Position)
}

// onRowCrossed settles one survived row: it scores, feeds the streak, tops
// up the tile window, and rolls pickup spawns for the fresh rows. The
// multiplier applied is the one the streak had before this row.
func (g *Game) onRowCrossed(now time.Time) {
	g.run.Score += g.cfg.Score.RowPoints * g.combo.Multiplier()
	for _, ev := range g.combo.Record(g.cfg.Score.RowPoints, now) {
		g.noteComboEvent(ev)
	}

	g.gen.EnsureWindow(g.run.Scroll.CurrentRow)
	g.powerups.SpawnOnTiles(g.gen.Tiles())
}

// checkCollision grades the ship's support and applies consequences. The
// detector always runs once the window is populated so the gap warning stays
// fresh, but consequences respect the invulnerability window.
func (g *Game) checkCollision(position float64) {
	window := g.gen.Tiles()
	if len(window) < g.cfg.Collision.GraceWindow {
		return
	}

	outcome := g.detector.Check(position, g.run.Scroll.CurrentRow, window, g.gen.Generated())
	if outcome.AheadRows > 0 {
		g.warnFlash.set(fmt.Sprintf("!! GAP %d AHEAD !!", outcome.AheadRows), warnFlashSeconds)
	}
	if !outcome.HasCollision {
		if outcome.Kind == collision.KindOffTrack && outcome.Distance > 0 {
			g.logger.Debug("drifting", "distance", outcome.Distance)
		}
		return
	}
	if g.invuln > 0 {
		return
	}

	g.applyOutcome(outcome)
}

func (g *Game) applyOutcome(outcome collision.Outcome) {
	g.logger.Debug("collision",
		"kind", outcome.Kind,
		"severity", outcome.Severity,
		"distance", outcome.Distance,
		"row", g.run.Scroll.CurrentRow)

	switch outcome.Severity {
	case collision.SeverityFatal:
		g.run.Lives = 0
		g.gameOver()

	case collision.SeverityMajor:
		if g.powerups.ConsumeShield() {
			g.noteFlash.set("SHIELD ABSORBED THE HIT", noteFlashSeconds)
			g.invuln = minorInvulnSeconds
			return
		}
		g.combo.Reset()
		g.run.Lives--
		if g.run.Lives <= 0 {
			g.gameOver()
			return
		}
		g.noteFlash.set("HULL HIT", noteFlashSeconds)
		g.scheduleRecovery()

	case collision.SeverityMinor:
		g.combo.Reset()
		g.run.Score -= g.cfg.Score.MinorPenalty
		if g.run.Score < 0 {
			g.run.Score = 0
		}
		g.noteFlash.set(fmt.Sprintf("SCRAPE  -%d", g.cfg.Score.MinorPenalty), noteFlashSeconds)
		g.invuln = minorInvulnSeconds
	}
}

// scheduleRecovery arms the deferred recenter under the current generation.
// The run freezes while it counts down.
func (g *Game) scheduleRecovery() {
	g.rec = recovery{
		pending:    true,
		remaining:  g.cfg.RecoveryDelay().Seconds(),
		generation: g.generation,
	}
}

// tickRecovery counts the pending recenter down and fires it: the ship snaps
// to the supported lane of the current row, or the center lane when the row
// has none. A recovery armed under an older generation is dropped unfired.
func (g *Game) tickRecovery(dt float64) {
	g.rec.remaining -= dt
	if g.rec.remaining > 0 {
		return
	}
	g.rec.pending = false

	if g.rec.generation != g.generation {
		g.logger.Debug("dropping stale recovery", "generation", g.rec.generation)
		return
	}

	lane := float64(g.cfg.Game.Lanes / 2)
	if tile, ok := g.gen.TileAt(g.run.Scroll.CurrentRow); ok {
		lane = float64(tile.Lane)
	}
	g.ctrl.SetPosition(lane)
	g.invuln = postRecoveryInvulnSeconds
	g.noteFlash.set("REALIGNED", noteFlashSeconds)
}

// gameOver ends the run. The generation bump makes any still-pending
// deferred action from this run inert.
func (g *Game) gameOver() {
	g.generation++
	g.rec = recovery{}
	if g.run.Score > g.bestScore {
		g.bestScore = g.run.Score
	}
	g.run.Status = StatusDead
	g.deathTimer = deathLockoutSeconds
	g.logger.Info("run over",
		"score", g.run.Score,
		"row", g.run.Scroll.CurrentRow,
		"seconds", int(g.run.Seconds))
}

// reset starts a fresh run: new generation, regenerated track, recentered
// ship, cleared streak and effects. The scroll row starts on the first
// generated row so the ship spawns supported.
func (g *Game) reset() {
	g.generation++
	g.rec = recovery{}
	g.invuln = 0
	g.deathTimer = 0
	g.warnFlash = flash{}
	g.noteFlash = flash{}

	g.gen.Reset()
	g.gen.EnsureWindow(0)
	g.powerups.Reset()
	g.powerups.SpawnOnTiles(g.gen.Tiles())
	g.combo.Reset()
	g.curve.Reset()
	g.ctrl.SetPosition(float64(g.cfg.Game.Lanes / 2))

	g.speed = g.cfg.Game.BaseSpeed
	g.run = Run{
		Status: StatusPlaying,
		Lives:  g.cfg.Game.Lives,
		Scroll: ScrollState{CurrentRow: 1},
	}

	if g.stream != nil {
		input.ResetKeyInput(g.stream)
	}
	g.logger.Debug("run started", "generation", g.generation)
}

// currentSpeed resolves the scroll speed for this tick: the stepped schedule
// (or the smooth curve when configured) scaled by any active boost or slow.
func (g *Game) currentSpeed() float64 {
	var speed float64
	if g.cfg.Game.UseSpeedCurve {
		speed = g.curve.Speed(g.scoreProgress())
	} else {
		speed = pace.Stepped(
			g.cfg.Game.BaseSpeed,
			g.run.Score,
			g.cfg.Game.SpeedStepInterval,
			g.cfg.Game.SpeedStepAmount,
			g.cfg.Game.SpeedCapFactor,
		)
	}
	return speed * g.powerups.SpeedFactor()
}

// scoreProgress maps the score onto [0,1] for the smooth curve, reaching 1
// at the score where the stepped schedule would hit its cap. Both pacing
// modes top out around the same point that way.
func (g *Game) scoreProgress() float64 {
	if g.cfg.Game.SpeedStepInterval <= 0 || g.cfg.Game.SpeedStepAmount <= 0 {
		return 0
	}
	steps := (g.cfg.Game.SpeedCapFactor - 1) * g.cfg.Game.BaseSpeed / g.cfg.Game.SpeedStepAmount
	capScore := steps * float64(g.cfg.Game.SpeedStepInterval)
	if capScore <= 0 {
		return 0
	}
	progress := float64(g.run.Score) / capScore
	if progress > 1 {
		return 1
	}
	return progress
}

func (g *Game) noteComboEvent(ev bonus.ComboEvent) {
	switch ev.Kind {
	case bonus.ComboMilestone:
		g.noteFlash.set(fmt.Sprintf("CHAIN %d", ev.Chain), noteFlashSeconds)
	case bonus.ComboChanged:
		if ev.Multiplier > 1 {
			g.noteFlash.set(fmt.Sprintf("MULTIPLIER x%d", ev.Multiplier), noteFlashSeconds)
		}
	case bonus.ComboBroken:
		g.noteFlash.set("COMBO LOST", noteFlashSeconds)
	}
}

func (g *Game) notePowerupEvent(ev bonus.PowerupEvent) {
	name := strings.ToUpper(ev.Effect.String())
	switch ev.Kind {
	case bonus.PowerupCollected:
		g.noteFlash.set(name+" UP", noteFlashSeconds)
		g.logger.Debug("pickup collected", "effect", ev.Effect)
	case bonus.PowerupExpired:
		g.noteFlash.set(name+" DOWN", noteFlashSeconds)
	}
}
