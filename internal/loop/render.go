package loop

import (
	"starlane/internal/bonus"
	"starlane/internal/camera"
	"starlane/internal/draw"
	"starlane/internal/fx"
)

// drawFrame paints one frame: scene pixels through the diffing canvas, then
// the text overlay for the current phase. A status or inactivity flip clears
// the whole screen first so no residue survives the layout change.
func (g *Game) drawFrame() error {
	if g.run.Status != g.prevStatus || g.isInactive != g.wasInactive {
		g.writer.WriteString("\033[H\033[2J")
		g.canvas.ForceRedraw()
		g.borderDirty = true
		g.prevStatus = g.run.Status
		g.wasInactive = g.isInactive
	}

	g.canvas.Clear()
	switch g.run.Status {
	case StatusPlaying, StatusPaused, StatusDead:
		g.guard("corridor", g.drawCorridor)
		g.guard("pickups", g.drawPickups)
		if g.run.Status != StatusDead {
			g.guard("ship", g.drawShip)
		}
	}

	g.canvas.Render(g.writer)
	if g.borderDirty {
		g.canvas.RenderBorder(g.writer)
		g.borderDirty = false
	}
	g.guard("overlay", g.drawOverlay)
	return g.writer.Flush()
}

// guard runs one drawable and contains its panic: the element is skipped for
// this frame and the failure logged, the rest of the frame still renders.
func (g *Game) guard(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			g.renderFaults++
			g.logger.Error("drawable failed", "drawable", name, "err", r)
		}
	}()
	fn()
}

// shipRowProgress is the ship's fractional row position, advancing smoothly
// between row crossings.
func (g *Game) shipRowProgress() float64 {
	return float64(g.run.Scroll.CurrentRow) + g.run.Scroll.OffsetPx/g.rowHeight
}

// tileDepth maps a track row to world depth for this frame. Rows ahead of
// the ship are positive; a row slides below zero as the ship passes it.
func (g *Game) tileDepth(row int) float64 {
	return (float64(row)-g.shipRowProgress())*depthPerRow + shipDepth
}

func (g *Game) drawCorridor() {
	g.drawHorizon()
	g.drawRails()

	lanes := g.cfg.Game.Lanes
	for _, t := range g.gen.Tiles() {
		depthNear := g.tileDepth(t.Row)
		depthFar := depthNear + depthPerRow*tileDepthFill
		if depthFar <= 0 || !g.atmo.Visible(depthNear) {
			continue
		}
		if depthNear < 0 {
			depthNear = 0
		}

		level := g.lod.Level(depthNear)
		if level == fx.LevelHidden {
			continue
		}
		alpha := g.atmo.Alpha(depthNear)
		if alpha <= 0 {
			continue
		}
		// Haze walks distant tiles down the detail ladder before the
		// hard cutoffs reach them.
		if alpha < 0.3 {
			level = fx.LevelSparse
		} else if alpha < 0.6 && level == fx.LevelFull {
			level = fx.LevelOutline
		}

		lat := camera.LaneOffset(float64(t.Lane), lanes, g.laneWidth)
		half := g.laneWidth * tileInset

		if level == fx.LevelSparse {
			mid := g.projector.Project(lat, depthNear+depthPerRow*tileDepthFill/2)
			g.canvas.SetFloat(mid.X, mid.Y)
			continue
		}

		nl := g.projector.Project(lat-half, depthNear)
		nr := g.projector.Project(lat+half, depthNear)
		fr := g.projector.Project(lat+half, depthFar)
		fl := g.projector.Project(lat-half, depthFar)

		quad := g.canvas.BorrowPoints(4)
		quad[0] = draw.Point{X: nl.X, Y: nl.Y}
		quad[1] = draw.Point{X: nr.X, Y: nr.Y}
		quad[2] = draw.Point{X: fr.X, Y: fr.Y}
		quad[3] = draw.Point{X: fl.X, Y: fl.Y}
		g.canvas.DrawPolygon(quad, level == fx.LevelFull)
	}
}

// drawHorizon anchors the scene with a line at the vanishing height.
func (g *Game) drawHorizon() {
	y := targetHeight * vanishYRatio
	g.canvas.DrawLine(draw.Point{X: 0, Y: y}, draw.Point{X: targetWidth - 1, Y: y})
}

// drawRails draws the corridor walls: two lines just outside the outer lanes
// converging on the vanishing point.
func (g *Game) drawRails() {
	lanes := g.cfg.Game.Lanes
	edges := [2]float64{
		camera.LaneOffset(-railOverhang, lanes, g.laneWidth),
		camera.LaneOffset(float64(lanes-1)+railOverhang, lanes, g.laneWidth),
	}
	for _, lat := range edges {
		near := g.projector.Project(lat, 0)
		far := g.projector.Project(lat, g.cfg.Fx.FogEnd)
		g.canvas.DrawLine(draw.Point{X: near.X, Y: near.Y}, draw.Point{X: far.X, Y: far.Y})
	}
}

func (g *Game) drawShip() {
	if g.rec.pending {
		if blinkHidden(g.rec.remaining, shipBlinkFrequency) {
			return
		}
	} else if g.invuln > 0 && blinkHidden(g.invuln, shipBlinkFrequency) {
		return
	}

	st := g.ctrl.State()
	lat := camera.LaneOffset(st.Position, g.cfg.Game.Lanes, g.laneWidth)
	proj := g.projector.Project(lat, shipDepth)
	size := shipSize * proj.Scale

	tilt := st.Velocity * 0.06
	if tilt > 0.9 {
		tilt = 0.9
	} else if tilt < -0.9 {
		tilt = -0.9
	}

	tri := g.canvas.BorrowPoints(3)
	tri[0] = draw.Point{X: proj.X + tilt*size, Y: proj.Y - size*1.6}
	tri[1] = draw.Point{X: proj.X - size*0.7, Y: proj.Y}
	tri[2] = draw.Point{X: proj.X + size*0.7, Y: proj.Y}
	g.canvas.DrawPolygon(tri, true)

	if g.powerups.EffectRemaining(bonus.EffectBoost) > 0 {
		flame := g.canvas.BorrowPoints(3)
		flame[0] = draw.Point{X: proj.X - size*0.35, Y: proj.Y + 1}
		flame[1] = draw.Point{X: proj.X + size*0.35, Y: proj.Y + 1}
		flame[2] = draw.Point{X: proj.X, Y: proj.Y + size*0.9}
		g.canvas.DrawPolygon(flame, true)
	}

	if g.powerups.ShieldActive() {
		ring := g.canvas.BorrowPoints(4)
		cx, cy := proj.X, proj.Y-size*0.8
		rx, ry := size*1.5, size*2.3
		ring[0] = draw.Point{X: cx, Y: cy - ry}
		ring[1] = draw.Point{X: cx + rx, Y: cy}
		ring[2] = draw.Point{X: cx, Y: cy + ry}
		ring[3] = draw.Point{X: cx - rx, Y: cy}
		g.canvas.DrawPolygon(ring, false)
	}
}

// drawPickups floats a diamond above each uncollected pickup so it reads
// against the tile under it.
func (g *Game) drawPickups() {
	lanes := g.cfg.Game.Lanes
	for _, p := range g.powerups.Pickups() {
		depth := g.tileDepth(p.Row) + depthPerRow*tileDepthFill/2
		if depth <= 0 || !g.atmo.Visible(depth) {
			continue
		}
		level := g.lod.Level(depth)
		if level == fx.LevelHidden || g.atmo.Alpha(depth) <= 0 {
			continue
		}

		lat := camera.LaneOffset(float64(p.Lane), lanes, g.laneWidth)
		proj := g.projector.Project(lat, depth)
		hover := pickupHover * proj.Scale
		if level == fx.LevelSparse {
			g.canvas.SetFloat(proj.X, proj.Y-hover)
			continue
		}

		size := pickupSize * proj.Scale
		d := g.canvas.BorrowPoints(4)
		d[0] = draw.Point{X: proj.X, Y: proj.Y - hover - size}
		d[1] = draw.Point{X: proj.X + size*0.7, Y: proj.Y - hover}
		d[2] = draw.Point{X: proj.X, Y: proj.Y - hover + size}
		d[3] = draw.Point{X: proj.X - size*0.7, Y: proj.Y - hover}
		g.canvas.DrawPolygon(d, level == fx.LevelFull)
	}
}

// blinkHidden alternates visibility while a countdown runs, hiding on the
// odd phase.
func blinkHidden(remaining, frequency float64) bool {
	return int(remaining*frequency)%2 == 1
}
