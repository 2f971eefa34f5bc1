package bonus

import (
	"encoding/json"
	"fmt"
	"math/rand"

	"starlane/internal/track"
)

// Effect names a power-up's influence on the run.
type Effect int

const (
	EffectShield Effect = iota // absorbs the next major collision
	EffectBoost                // raises scroll speed, and with it scoring rate
	EffectSlow                 // eases scroll speed for a breather
)

const effectCount = 3

func (e Effect) String() string {
	switch e {
	case EffectShield:
		return "shield"
	case EffectBoost:
		return "boost"
	case EffectSlow:
		return "slow"
	default:
		return "unknown"
	}
}

// Pickup is a collectible placed on a path tile. The lane/row pair rides the
// same coordinate space as the track window.
type Pickup struct {
	Effect Effect `json:"effect"`
	Lane   int    `json:"lane"`
	Row    int    `json:"row"`
}

// PowerupEventKind names a power-up state change.
type PowerupEventKind int

const (
	PowerupCollected PowerupEventKind = iota
	PowerupExpired
)

func (k PowerupEventKind) String() string {
	switch k {
	case PowerupCollected:
		return "collected"
	case PowerupExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// PowerupEvent is emitted from Update when an effect starts or runs out.
type PowerupEvent struct {
	Kind   PowerupEventKind
	Effect Effect
}

// PowerupConfig tunes spawning and effect durations.
type PowerupConfig struct {
	SpawnChance   float64 // per freshly generated tile
	CollectRadius float64 // lanes within which the ship collects
	ShieldSeconds float64
	BoostSeconds  float64
	SlowSeconds   float64
	BoostFactor   float64 // scroll speed multiplier while boosted
	SlowFactor    float64 // scroll speed multiplier while slowed
}

// Powerups spawns pickups onto fresh track tiles and tracks active effect
// timers. All timing is tick-driven; there are no deferred callbacks to go
// stale across run resets.
type Powerups struct {
	cfg PowerupConfig
	rng *rand.Rand

	pickups    []Pickup
	spawnedRow int // highest row already rolled for a spawn

	shieldLeft float64
	boostLeft  float64
	slowLeft   float64
}

// NewPowerups validates the configuration and returns an empty manager.
func NewPowerups(cfg PowerupConfig, rng *rand.Rand) (*Powerups, error) {
	if cfg.SpawnChance < 0 || cfg.SpawnChance > 1 {
		return nil, fmt.Errorf("bonus: spawn chance %g outside [0,1]", cfg.SpawnChance)
	}
	if cfg.CollectRadius <= 0 {
		return nil, fmt.Errorf("bonus: collect radius %g must be positive", cfg.CollectRadius)
	}
	if cfg.ShieldSeconds < 0 || cfg.BoostSeconds < 0 || cfg.SlowSeconds < 0 {
		return nil, fmt.Errorf("bonus: effect durations must not be negative")
	}
	if cfg.BoostFactor <= 0 || cfg.SlowFactor <= 0 {
		return nil, fmt.Errorf("bonus: speed factors must be positive")
	}
	if rng == nil {
		return nil, fmt.Errorf("bonus: random source must not be nil")
	}
	return &Powerups{cfg: cfg, rng: rng}, nil
}

// SpawnOnTiles rolls a spawn for every tile row it hasn't seen yet. Pickups
// land exactly on path tiles so collecting them never requires leaving the
// corridor.
func (p *Powerups) SpawnOnTiles(tiles []track.Tile) {
	for _, t := range tiles {
		if t.Row <= p.spawnedRow {
			continue
		}
		p.spawnedRow = t.Row
		if p.rng.Float64() >= p.cfg.SpawnChance {
			continue
		}
		p.pickups = append(p.pickups, Pickup{
			Effect: Effect(p.rng.Intn(effectCount)),
			Lane:   t.Lane,
			Row:    t.Row,
		})
	}
}

// Update ticks effect timers and collects pickups at the ship's position.
// Pickups whose row has scrolled past are dropped silently.
func (p *Powerups) Update(dt float64, shipLane float64, shipRow int) []PowerupEvent {
	var events []PowerupEvent

	events = p.tickTimer(&p.shieldLeft, EffectShield, dt, events)
	events = p.tickTimer(&p.boostLeft, EffectBoost, dt, events)
	events = p.tickTimer(&p.slowLeft, EffectSlow, dt, events)

	kept := p.pickups[:0]
	for _, pk := range p.pickups {
		switch {
		case pk.Row < shipRow:
			// missed
		case pk.Row == shipRow && within(shipLane, float64(pk.Lane), p.cfg.CollectRadius):
			p.activate(pk.Effect)
			events = append(events, PowerupEvent{Kind: PowerupCollected, Effect: pk.Effect})
		default:
			kept = append(kept, pk)
		}
	}
	p.pickups = kept

	return events
}

func (p *Powerups) tickTimer(left *float64, effect Effect, dt float64, events []PowerupEvent) []PowerupEvent {
	if *left <= 0 {
		return events
	}
	*left -= dt
	if *left <= 0 {
		*left = 0
		events = append(events, PowerupEvent{Kind: PowerupExpired, Effect: effect})
	}
	return events
}

func (p *Powerups) activate(effect Effect) {
	switch effect {
	case EffectShield:
		p.shieldLeft = p.cfg.ShieldSeconds
	case EffectBoost:
		p.boostLeft = p.cfg.BoostSeconds
	case EffectSlow:
		p.slowLeft = p.cfg.SlowSeconds
	}
}

// ShieldActive reports whether a shield is currently held.
func (p *Powerups) ShieldActive() bool {
	return p.shieldLeft > 0
}

// ConsumeShield spends an active shield to absorb a hit. Reports whether a
// shield was there to spend.
func (p *Powerups) ConsumeShield() bool {
	if p.shieldLeft <= 0 {
		return false
	}
	p.shieldLeft = 0
	return true
}

// SpeedFactor returns the combined scroll-speed multiplier of the active
// effects. Boost and slow overlap multiplicatively.
func (p *Powerups) SpeedFactor() float64 {
	factor := 1.0
	if p.boostLeft > 0 {
		factor *= p.cfg.BoostFactor
	}
	if p.slowLeft > 0 {
		factor *= p.cfg.SlowFactor
	}
	return factor
}

// EffectRemaining returns the seconds left on an effect, zero when inactive.
func (p *Powerups) EffectRemaining(effect Effect) float64 {
	switch effect {
	case EffectShield:
		return p.shieldLeft
	case EffectBoost:
		return p.boostLeft
	case EffectSlow:
		return p.slowLeft
	default:
		return 0
	}
}

// Pickups exposes the live pickups for rendering. The slice is owned by the
// manager; callers must not mutate it.
func (p *Powerups) Pickups() []Pickup {
	return p.pickups
}

// Reset drops all pickups and effects for a fresh run.
func (p *Powerups) Reset() {
	p.pickups = p.pickups[:0]
	p.spawnedRow = 0
	p.shieldLeft = 0
	p.boostLeft = 0
	p.slowLeft = 0
}

// powerupState is the serialized form of the manager.
type powerupState struct {
	Pickups    []Pickup `json:"pickups"`
	SpawnedRow int      `json:"spawnedRow"`
	ShieldLeft float64  `json:"shieldLeft"`
	BoostLeft  float64  `json:"boostLeft"`
	SlowLeft   float64  `json:"slowLeft"`
}

// MarshalState serializes pickups and effect timers.
func (p *Powerups) MarshalState() (string, error) {
	data, err := json.Marshal(powerupState{
		Pickups:    p.pickups,
		SpawnedRow: p.spawnedRow,
		ShieldLeft: p.shieldLeft,
		BoostLeft:  p.boostLeft,
		SlowLeft:   p.slowLeft,
	})
	if err != nil {
		return "", fmt.Errorf("bonus: marshal powerup state: %w", err)
	}
	return string(data), nil
}

// UnmarshalState restores state serialized by MarshalState.
func (p *Powerups) UnmarshalState(s string) error {
	var st powerupState
	if err := json.Unmarshal([]byte(s), &st); err != nil {
		return fmt.Errorf("bonus: unmarshal powerup state: %w", err)
	}
	if st.ShieldLeft < 0 || st.BoostLeft < 0 || st.SlowLeft < 0 {
		return fmt.Errorf("bonus: powerup state %q has negative timers", s)
	}
	p.pickups = st.Pickups
	p.spawnedRow = st.SpawnedRow
	p.shieldLeft = st.ShieldLeft
	p.boostLeft = st.BoostLeft
	p.slowLeft = st.SlowLeft
	return nil
}

func within(a, b, radius float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= radius
}
