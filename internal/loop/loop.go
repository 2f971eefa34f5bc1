// Package loop runs one player's session: a fixed-rate tick that reads
// input, advances the run, and paints the terminal through the diffing
// canvas. It owns every gameplay subsystem and is the only package that
// wires them together.
package loop

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"starlane/internal/bonus"
	"starlane/internal/camera"
	"starlane/internal/collision"
	"starlane/internal/config"
	"starlane/internal/draw"
	"starlane/internal/fx"
	"starlane/internal/input"
	"starlane/internal/pace"
	"starlane/internal/ship"
	"starlane/internal/track"
)

// Options customizes a session beyond the shared configuration.
type Options struct {
	// TermSizeFunc reports the terminal size. Defaults to the local
	// terminal; SSH sessions inject one backed by their window channel.
	TermSizeFunc draw.TermSizeFunc
	// Rand drives track generation and pickup spawns. Defaults to a
	// source seeded from the configuration.
	Rand *rand.Rand
	// Logger receives session events. Defaults to the package-global
	// logger.
	Logger *log.Logger
}

// Game is a single session. It is not safe for concurrent use; Run drives
// it from one goroutine and only NotifyShutdown may be called from another.
type Game struct {
	cfg    config.Config
	logger *log.Logger
	rng    *rand.Rand

	gen       *track.Generator
	detector  *collision.Detector
	ctrl      *ship.Controller
	combo     *bonus.Combo
	powerups  *bonus.Powerups
	curve     *pace.Curve
	atmo      *fx.Atmosphere
	lod       *fx.LOD
	projector *camera.Projector

	canvas   *draw.Canvas
	writer   *draw.ChunkWriter
	stream   *input.Stream
	termSize draw.TermSizeFunc

	termWidth  int
	termHeight int

	laneWidth float64 // logical pixels per lane at zero depth
	rowHeight float64 // logical pixels of scroll per track row

	run        Run
	generation uint64
	rec        recovery

	running   bool
	delta     time.Duration
	in        input.Input
	pauseHeld bool

	prevStatus  Status
	wasInactive bool
	isInactive  bool
	lastInput   time.Time

	invuln        float64
	deathTimer    float64
	speed         float64
	bestScore     int
	warnFlash     flash
	noteFlash     flash
	faultMsg      string
	borderDirty   bool
	renderFaults  uint64
	shutdownReq   atomic.Bool
	shutdownTimer float64
}

// NewGame validates the configuration and assembles a session in the start
// state. The terminal is not touched until Run.
func NewGame(cfg config.Config, opts Options) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("loop: %w", err)
	}

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(cfg.RngSeed()))
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	termSize := opts.TermSizeFunc
	if termSize == nil {
		termSize = draw.DefaultTermSizeFunc
	}

	gen, err := track.NewGenerator(track.Config{
		Lanes:       cfg.Game.Lanes,
		MinTiles:    cfg.Track.MinTiles,
		MaxTiles:    cfg.Track.MaxTiles,
		StraightRun: cfg.Track.StraightRun,
		TrimBehind:  cfg.Track.TrimBehind,
	}, rng)
	if err != nil {
		return nil, fmt.Errorf("loop: track: %w", err)
	}

	detector, err := collision.NewDetector(collision.Config{
		Lanes:          cfg.Game.Lanes,
		ShipTolerance:  cfg.Collision.ShipTolerance,
		MajorThreshold: cfg.Collision.MajorThreshold,
		MinorThreshold: cfg.Collision.MinorThreshold,
		GraceTiles:     cfg.Collision.GraceTiles,
		LookAheadRows:  cfg.Collision.LookAheadRows,
	})
	if err != nil {
		return nil, fmt.Errorf("loop: collision: %w", err)
	}

	ctrl, err := ship.NewController(ship.Config{
		Lanes:       cfg.Game.Lanes,
		Smoothing:   cfg.Ship.Smoothing,
		MaxStep:     cfg.Ship.MaxStep,
		RepeatDelay: cfg.RepeatDelay(),
	})
	if err != nil {
		return nil, fmt.Errorf("loop: ship: %w", err)
	}

	combo, err := bonus.NewCombo(bonus.ComboConfig{
		Window:        cfg.ComboWindow(),
		ChainPerStep:  cfg.Combo.ChainPerStep,
		MaxMultiplier: int(cfg.Combo.MaxMultiplier),
		Milestone:     cfg.Combo.Milestone,
	})
	if err != nil {
		return nil, fmt.Errorf("loop: combo: %w", err)
	}

	powerups, err := bonus.NewPowerups(bonus.PowerupConfig{
		SpawnChance:   cfg.Powerups.SpawnChance,
		CollectRadius: cfg.Powerups.CollectRadius,
		ShieldSeconds: cfg.Powerups.ShieldSeconds,
		BoostSeconds:  cfg.Powerups.BoostSeconds,
		SlowSeconds:   cfg.Powerups.SlowSeconds,
		BoostFactor:   cfg.Powerups.BoostFactor,
		SlowFactor:    cfg.Powerups.SlowFactor,
	}, rng)
	if err != nil {
		return nil, fmt.Errorf("loop: powerups: %w", err)
	}

	curve, err := pace.NewCurve(cfg.Game.BaseSpeed, cfg.Game.BaseSpeed*cfg.Game.SpeedCapFactor, cfg.Game.RampSeconds)
	if err != nil {
		return nil, fmt.Errorf("loop: pace: %w", err)
	}

	atmo, err := fx.NewAtmosphere(cfg.Fx.FogStart, cfg.Fx.FogEnd)
	if err != nil {
		return nil, fmt.Errorf("loop: atmosphere: %w", err)
	}

	lod, err := fx.NewLOD(cfg.Fx.LodOutline, cfg.Fx.LodSparse, cfg.Fx.LodHidden)
	if err != nil {
		return nil, fmt.Errorf("loop: lod: %w", err)
	}

	projector, err := camera.NewProjector(camera.View{
		Width:          targetWidth,
		Height:         targetHeight,
		VanishX:        targetWidth / 2,
		VanishY:        targetHeight * vanishYRatio,
		BaselineY:      targetHeight * baselineYRatio,
		ViewerDistance: viewerDistance,
	})
	if err != nil {
		return nil, fmt.Errorf("loop: camera: %w", err)
	}

	return &Game{
		cfg:       cfg,
		logger:    logger,
		rng:       rng,
		gen:       gen,
		detector:  detector,
		ctrl:      ctrl,
		combo:     combo,
		powerups:  powerups,
		curve:     curve,
		atmo:      atmo,
		lod:       lod,
		projector: projector,
		termSize:  termSize,
		laneWidth: targetWidth / float64(cfg.Game.Lanes+2),
		rowHeight: targetHeight * cfg.Game.RowHeightRatio,
		speed:     cfg.Game.BaseSpeed,
		run:       Run{Status: StatusStart, Lives: cfg.Game.Lives},
	}, nil
}

// NotifyShutdown switches the session to the shutdown screen on its next
// tick. Safe to call from another goroutine; the session disconnects itself
// after the countdown.
func (g *Game) NotifyShutdown() {
	g.shutdownReq.Store(true)
}

// Score reports the current run's score.
func (g *Game) Score() int {
	return g.run.Score
}

// Status reports the session phase.
func (g *Game) Status() Status {
	return g.run.Status
}

// Run drives the session at a fixed frame rate until the player quits, the
// context is canceled, the session idles out, or a shutdown countdown ends.
func (g *Game) Run(ctx context.Context, r *bufio.Reader, w io.Writer) error {
	g.stream = input.StartStream(r)

	width, height, offsetCol, offsetRow, err := g.renderArea()
	if err != nil {
		return fmt.Errorf("loop: terminal size: %w", err)
	}
	g.termWidth, g.termHeight = width, height

	g.canvas = draw.NewScaledCanvas(width, height, targetWidth, targetHeight)
	g.canvas.SetOffset(offsetCol, offsetRow)
	g.writer = draw.NewChunkWriter(w, offsetCol, offsetRow)

	draw.HideCursor(w)
	draw.ClearScreen(w)
	defer func() {
		draw.ClearScreen(w)
		draw.MoveCursor(w, 1, 1)
		draw.ShowCursor(w)
	}()

	g.running = true
	g.borderDirty = true
	g.prevStatus = g.run.Status
	g.lastInput = time.Now()
	lastFrame := time.Now()

	g.logger.Info("session started", "lanes", g.cfg.Game.Lanes, "lives", g.cfg.Game.Lives)

	for g.running {
		if ctx.Err() != nil {
			g.logger.Info("session canceled")
			return ctx.Err()
		}

		frameStart := time.Now()
		g.delta = frameStart.Sub(lastFrame)
		lastFrame = frameStart

		g.processInput(frameStart)
		g.pollResize()
		g.safeStep()
		if err := g.drawFrame(); err != nil {
			return fmt.Errorf("loop: write frame: %w", err)
		}

		if wait := targetFrameTime - time.Since(frameStart); wait > 0 {
			time.Sleep(wait)
		}
	}

	g.logger.Info("session ended", "score", g.run.Score, "status", g.run.Status)
	return nil
}

// processInput snapshots key state and handles the session-level keys that
// work in every phase: quit, the inactivity clock, and a pending shutdown.
func (g *Game) processInput(now time.Time) {
	g.in = input.ReadInput(g.stream)

	if len(g.in.Pressed) > 0 {
		g.lastInput = now
		g.isInactive = false
	} else {
		idle := now.Sub(g.lastInput)
		if idle > inactivityDisconnectSeconds*time.Second {
			g.logger.Info("session idle, disconnecting")
			g.running = false
			return
		}
		g.isInactive = idle > inactivityWarnSeconds*time.Second
	}

	if g.in.Quit {
		g.running = false
		return
	}

	if g.shutdownReq.Load() && g.run.Status != StatusShutdown {
		g.run.Status = StatusShutdown
		g.shutdownTimer = shutdownDisplaySeconds
	}
}

// pollResize re-centers the render area when the terminal changes size. The
// whole screen is repainted on the next frame.
func (g *Game) pollResize() {
	width, height, offsetCol, offsetRow, err := g.renderArea()
	if err != nil {
		return
	}
	if width == g.termWidth && height == g.termHeight &&
		offsetCol == g.canvas.OffsetCol() && offsetRow == g.canvas.OffsetRow() {
		return
	}

	g.termWidth, g.termHeight = width, height
	g.canvas.Resize(width, height)
	g.canvas.SetOffset(offsetCol, offsetRow)
	g.writer.SetOffset(offsetCol, offsetRow)
	g.writer.WriteString("\033[H\033[2J")
	g.canvas.ForceRedraw()
	g.borderDirty = true
}

// safeStep advances the simulation one tick. A panic anywhere in the tick is
// downgraded to the fault screen so the session survives and the player can
// retry; stale deferred actions from the broken run are suppressed by the
// generation bump.
func (g *Game) safeStep() {
	defer func() {
		if r := recover(); r != nil {
			g.generation++
			g.rec = recovery{}
			g.faultMsg = fmt.Sprint(r)
			g.run.Status = StatusFault
			g.logger.Error("tick failed", "err", r)
		}
	}()
	g.step()
}

func (g *Game) step() {
	dt := g.delta.Seconds()
	if dt > maxDelta {
		dt = maxDelta
	}

	switch g.run.Status {
	case StatusStart:
		g.stepStart()
	case StatusPlaying:
		g.stepPlaying(dt, time.Now())
	case StatusPaused:
		g.stepPaused()
	case StatusDead:
		g.stepDead(dt)
	case StatusFault:
		g.stepFault()
	case StatusShutdown:
		g.stepShutdown(dt)
	}
}

// pausePressed edge-detects the pause key so holding it doesn't toggle the
// state every frame.
func (g *Game) pausePressed() bool {
	held := g.in.Pause || g.in.Escape
	pressed := held && !g.pauseHeld
	g.pauseHeld = held
	return pressed
}

// renderArea measures the terminal and clamps the render area to the maximum
// resolution, centered. The terminal's bottom row always stays free so a
// write to the last cell never wraps the screen.
func (g *Game) renderArea() (w, h, offsetCol, offsetRow int, err error) {
	w, h, err = draw.TerminalSizeRawWith(g.termSize)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	h--
	w, h, offsetCol, offsetRow = clampTermSize(w, h)
	return w, h, offsetCol, offsetRow, nil
}

// clampTermSize bounds the render area to the maximum resolution and centers
// it, returning the area size and its top-left offset. A one-cell margin is
// implied whenever an offset is non-zero; RenderBorder draws into it.
func clampTermSize(width, height int) (w, h, offsetCol, offsetRow int) {
	w, h = width, height
	if w > maxTermWidth {
		offsetCol = (w - maxTermWidth) / 2
		w = maxTermWidth
	}
	if h > maxTermHeight {
		offsetRow = (h - maxTermHeight) / 2
		h = maxTermHeight
	}
	return w, h, offsetCol, offsetRow
}
