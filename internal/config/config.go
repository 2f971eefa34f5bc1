// Package config provides game configuration: YAML tuning files with
// defaults, environment overrides, and validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config contains all tunable game parameters. Zero values are never used
// directly; start from Default and overlay a YAML file on top.
type Config struct {
	Game      GameConfig      `yaml:"game"`
	Track     TrackConfig     `yaml:"track"`
	Collision CollisionConfig `yaml:"collision"`
	Ship      ShipConfig      `yaml:"ship"`
	Score     ScoreConfig     `yaml:"score"`
	Combo     ComboConfig     `yaml:"combo"`
	Powerups  PowerupConfig   `yaml:"powerups"`
	Fx        FxConfig        `yaml:"fx"`

	// Seed fixes the track layout for a run. 0 selects a time-based seed;
	// the STARLANE_SEED environment variable overrides either.
	Seed int64 `yaml:"seed"`
}

// GameConfig defines the run-level parameters.
type GameConfig struct {
	Lanes             int     `yaml:"lanes"`               // track width in lanes
	Lives             int     `yaml:"lives"`               // starting lives
	BaseSpeed         float64 `yaml:"base_speed"`          // scroll speed in depth units per second
	RowHeightRatio    float64 `yaml:"row_height_ratio"`    // row depth as a fraction of the logical canvas height
	SpeedStepInterval int     `yaml:"speed_step_interval"` // score between speed increases
	SpeedStepAmount   float64 `yaml:"speed_step_amount"`   // speed added per step
	SpeedCapFactor    float64 `yaml:"speed_cap_factor"`    // speed ceiling as a multiple of base speed
	UseSpeedCurve     bool    `yaml:"use_speed_curve"`     // replace stepped speed with the smooth curve
	RampSeconds       float64 `yaml:"ramp_seconds"`        // curve time to full speed when no score accrues
	RecoveryMs        int     `yaml:"recovery_ms"`         // delay before recentering after a major collision
}

// TrackConfig bounds the path generator.
type TrackConfig struct {
	MinTiles    int `yaml:"min_tiles"`    // refill when fewer rows than this remain ahead
	MaxTiles    int `yaml:"max_tiles"`    // forward window size after a refill
	StraightRun int `yaml:"straight_run"` // driftless tiles at the start of a run
	TrimBehind  int `yaml:"trim_behind"`  // rows kept behind the scroll row before trimming
}

// CollisionConfig tunes the support detector.
type CollisionConfig struct {
	ShipTolerance  float64 `yaml:"ship_tolerance"`  // lane fraction counted as supported
	MajorThreshold float64 `yaml:"major_threshold"` // near-miss distance graded major
	MinorThreshold float64 `yaml:"minor_threshold"` // miss distance graded minor
	GraceTiles     int     `yaml:"grace_tiles"`     // generated-tile count below which empty rows stay minor
	LookAheadRows  int     `yaml:"look_ahead_rows"` // future rows probed at the ship's lane
	GraceWindow    int     `yaml:"grace_window"`    // window size below which checks are skipped entirely
}

// ShipConfig tunes the lane controller.
type ShipConfig struct {
	Smoothing     float64 `yaml:"smoothing"`       // proportional pull toward the target lane, per second
	MaxStep       float64 `yaml:"max_step"`        // lateral speed ceiling in lanes per second
	RepeatDelayMs int     `yaml:"repeat_delay_ms"` // minimum gap between accepted moves per direction
}

// ScoreConfig sets the scoring increments.
type ScoreConfig struct {
	RowPoints    int `yaml:"row_points"`    // base score per row survived
	MinorPenalty int `yaml:"minor_penalty"` // score deducted on a minor collision
}

// ComboConfig tunes the streak tracker.
type ComboConfig struct {
	WindowMs      int     `yaml:"window_ms"`      // max gap between actions before the chain breaks
	ChainPerStep  int     `yaml:"chain_per_step"` // chain links per +1 multiplier
	MaxMultiplier float64 `yaml:"max_multiplier"`
	Milestone     int     `yaml:"milestone"` // chain length announced as a milestone
}

// PowerupConfig tunes pickup spawning and effect durations.
type PowerupConfig struct {
	SpawnChance   float64 `yaml:"spawn_chance"`   // per-tile probability of carrying a pickup
	CollectRadius float64 `yaml:"collect_radius"` // lane distance within which a pickup is collected
	ShieldSeconds float64 `yaml:"shield_seconds"`
	BoostSeconds  float64 `yaml:"boost_seconds"`
	SlowSeconds   float64 `yaml:"slow_seconds"`
	BoostFactor   float64 `yaml:"boost_factor"` // scroll speed multiplier while boosted
	SlowFactor    float64 `yaml:"slow_factor"`  // speed multiplier while slowed
}

// FxConfig places the fog and level-of-detail bands, in depth units.
type FxConfig struct {
	FogStart   float64 `yaml:"fog_start"`
	FogEnd     float64 `yaml:"fog_end"`
	LodOutline float64 `yaml:"lod_outline"`
	LodSparse  float64 `yaml:"lod_sparse"`
	LodHidden  float64 `yaml:"lod_hidden"`
}

// Default returns the shipped tuning.
func Default() Config {
	return Config{
		Game: GameConfig{
			Lanes:             7,
			Lives:             3,
			BaseSpeed:         240,
			RowHeightRatio:    0.6,
			SpeedStepInterval: 500,
			SpeedStepAmount:   20,
			SpeedCapFactor:    2.0,
			UseSpeedCurve:     false,
			RampSeconds:       180,
			RecoveryMs:        900,
		},
		Track: TrackConfig{
			MinTiles:    12,
			MaxTiles:    24,
			StraightRun: 6,
			TrimBehind:  0,
		},
		Collision: CollisionConfig{
			ShipTolerance:  0.55,
			MajorThreshold: 1.25,
			MinorThreshold: 2.5,
			GraceTiles:     5,
			LookAheadRows:  2,
			GraceWindow:    3,
		},
		Ship: ShipConfig{
			Smoothing:     9.0,
			MaxStep:       14.0,
			RepeatDelayMs: 140,
		},
		Score: ScoreConfig{
			RowPoints:    10,
			MinorPenalty: 25,
		},
		Combo: ComboConfig{
			WindowMs:      2200,
			ChainPerStep:  4,
			MaxMultiplier: 5,
			Milestone:     20,
		},
		Powerups: PowerupConfig{
			SpawnChance:   0.04,
			CollectRadius: 0.6,
			ShieldSeconds: 6,
			BoostSeconds:  4,
			SlowSeconds:   4,
			BoostFactor:   2.0,
			SlowFactor:    0.6,
		},
		Fx: FxConfig{
			FogStart:   150,
			FogEnd:     620,
			LodOutline: 200,
			LodSparse:  380,
			LodHidden:  560,
		},
	}
}

// Load reads a YAML tuning file over the defaults. An empty path or a
// missing file yields the defaults; a malformed or invalid file is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate refuses degenerate geometry and timing before a game is built
// from this configuration.
func (c Config) Validate() error {
	switch {
	case c.Game.Lanes <= 0:
		return fmt.Errorf("lane count must be positive, got %d", c.Game.Lanes)
	case c.Game.Lives <= 0:
		return fmt.Errorf("lives must be positive, got %d", c.Game.Lives)
	case c.Game.BaseSpeed <= 0:
		return fmt.Errorf("base speed must be positive, got %g", c.Game.BaseSpeed)
	case c.Game.RowHeightRatio <= 0:
		return fmt.Errorf("row height ratio must be positive, got %g", c.Game.RowHeightRatio)
	case c.Game.SpeedCapFactor < 1:
		return fmt.Errorf("speed cap factor must be at least 1, got %g", c.Game.SpeedCapFactor)
	case c.Game.RecoveryMs < 0:
		return fmt.Errorf("recovery delay must not be negative, got %dms", c.Game.RecoveryMs)
	case c.Track.MinTiles <= 0:
		return fmt.Errorf("min tiles must be positive, got %d", c.Track.MinTiles)
	case c.Track.MaxTiles < c.Track.MinTiles:
		return fmt.Errorf("max tiles %d must not be below min tiles %d", c.Track.MaxTiles, c.Track.MinTiles)
	case c.Track.StraightRun < 0:
		return fmt.Errorf("straight run must not be negative, got %d", c.Track.StraightRun)
	case c.Track.TrimBehind < 0:
		return fmt.Errorf("trim behind must not be negative, got %d", c.Track.TrimBehind)
	case c.Collision.ShipTolerance <= 0:
		return fmt.Errorf("ship tolerance must be positive, got %g", c.Collision.ShipTolerance)
	case c.Collision.MajorThreshold <= 0:
		return fmt.Errorf("major threshold must be positive, got %g", c.Collision.MajorThreshold)
	case c.Collision.MinorThreshold < c.Collision.MajorThreshold:
		return fmt.Errorf("minor threshold %g must not be below major threshold %g",
			c.Collision.MinorThreshold, c.Collision.MajorThreshold)
	case c.Collision.GraceTiles < 0 || c.Collision.LookAheadRows < 0 || c.Collision.GraceWindow < 0:
		return fmt.Errorf("collision grace and lookahead values must not be negative")
	case c.Ship.Smoothing <= 0:
		return fmt.Errorf("ship smoothing must be positive, got %g", c.Ship.Smoothing)
	case c.Ship.MaxStep <= 0:
		return fmt.Errorf("ship max step must be positive, got %g", c.Ship.MaxStep)
	case c.Ship.RepeatDelayMs < 0:
		return fmt.Errorf("repeat delay must not be negative, got %dms", c.Ship.RepeatDelayMs)
	case c.Powerups.SpawnChance < 0 || c.Powerups.SpawnChance > 1:
		return fmt.Errorf("powerup spawn chance must be in [0,1], got %g", c.Powerups.SpawnChance)
	case c.Fx.FogEnd <= c.Fx.FogStart:
		return fmt.Errorf("fog end %g must be beyond fog start %g", c.Fx.FogEnd, c.Fx.FogStart)
	case c.Fx.LodSparse < c.Fx.LodOutline || c.Fx.LodHidden < c.Fx.LodSparse:
		return fmt.Errorf("lod thresholds must be ordered outline <= sparse <= hidden")
	}
	return nil
}

// RecoveryDelay returns the post-major-collision recenter delay.
func (c Config) RecoveryDelay() time.Duration {
	return time.Duration(c.Game.RecoveryMs) * time.Millisecond
}

// RepeatDelay returns the minimum gap between accepted lane moves.
func (c Config) RepeatDelay() time.Duration {
	return time.Duration(c.Ship.RepeatDelayMs) * time.Millisecond
}

// ComboWindow returns the max gap between scoring actions in a chain.
func (c Config) ComboWindow() time.Duration {
	return time.Duration(c.Combo.WindowMs) * time.Millisecond
}

// RngSeed resolves the random seed for a session: STARLANE_SEED wins,
// then a non-zero Seed value, then the wall clock.
func (c Config) RngSeed() int64 {
	if env, ok := os.LookupEnv("STARLANE_SEED"); ok {
		if seed, err := strconv.ParseInt(env, 10, 64); err == nil {
			return seed
		}
	}
	if c.Seed != 0 {
		return c.Seed
	}
	return time.Now().UnixNano()
}
