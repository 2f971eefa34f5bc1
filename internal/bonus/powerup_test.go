package bonus

import (
	"math/rand"
	"testing"

	"starlane/internal/track"
)

func testPowerupConfig() PowerupConfig {
	return PowerupConfig{
		SpawnChance:   0.04,
		CollectRadius: 0.6,
		ShieldSeconds: 6,
		BoostSeconds:  4,
		SlowSeconds:   4,
		BoostFactor:   2.0,
		SlowFactor:    0.5,
	}
}

func newTestPowerups(t *testing.T, cfg PowerupConfig) *Powerups {
	t.Helper()
	p, err := NewPowerups(cfg, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewPowerups: %v", err)
	}
	return p
}

func TestNewPowerupsValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*PowerupConfig)
	}{
		{"spawn chance above one", func(c *PowerupConfig) { c.SpawnChance = 1.5 }},
		{"negative spawn chance", func(c *PowerupConfig) { c.SpawnChance = -0.1 }},
		{"zero collect radius", func(c *PowerupConfig) { c.CollectRadius = 0 }},
		{"negative duration", func(c *PowerupConfig) { c.BoostSeconds = -1 }},
		{"zero boost factor", func(c *PowerupConfig) { c.BoostFactor = 0 }},
		{"zero slow factor", func(c *PowerupConfig) { c.SlowFactor = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testPowerupConfig()
			tc.mutate(&cfg)
			if _, err := NewPowerups(cfg, rand.New(rand.NewSource(1))); err == nil {
				t.Fatal("degenerate config accepted")
			}
		})
	}

	if _, err := NewPowerups(testPowerupConfig(), nil); err == nil {
		t.Fatal("nil random source accepted")
	}
}

func TestSpawnOnTilesRollsEachRowOnce(t *testing.T) {
	cfg := testPowerupConfig()
	cfg.SpawnChance = 1 // every fresh row spawns
	p := newTestPowerups(t, cfg)

	tiles := []track.Tile{{Lane: 3, Row: 1}, {Lane: 3, Row: 2}, {Lane: 4, Row: 3}}
	p.SpawnOnTiles(tiles)
	if got := len(p.Pickups()); got != 3 {
		t.Fatalf("pickups after first spawn pass = %d, want 3", got)
	}

	// The same rows must not roll again.
	p.SpawnOnTiles(tiles)
	if got := len(p.Pickups()); got != 3 {
		t.Fatalf("pickups after repeat pass = %d, want still 3", got)
	}

	// Pickups sit exactly on their tiles.
	for i, pk := range p.Pickups() {
		if pk.Lane != tiles[i].Lane || pk.Row != tiles[i].Row {
			t.Fatalf("pickup %d at (%d,%d), want on tile (%d,%d)",
				i, pk.Lane, pk.Row, tiles[i].Lane, tiles[i].Row)
		}
	}
}

func TestSpawnChanceZeroStillAdvancesFrontier(t *testing.T) {
	cfg := testPowerupConfig()
	cfg.SpawnChance = 0
	p := newTestPowerups(t, cfg)

	p.SpawnOnTiles([]track.Tile{{Lane: 3, Row: 1}, {Lane: 3, Row: 2}})
	if len(p.Pickups()) != 0 {
		t.Fatal("zero chance spawned pickups")
	}

	// Raising the chance later must not retroactively roll old rows.
	p.cfg.SpawnChance = 1
	p.SpawnOnTiles([]track.Tile{{Lane: 3, Row: 2}})
	if len(p.Pickups()) != 0 {
		t.Fatal("already-seen row rolled again")
	}
}

func TestCollectWithinRadius(t *testing.T) {
	p := newTestPowerups(t, testPowerupConfig())
	p.pickups = []Pickup{{Effect: EffectBoost, Lane: 3, Row: 5}}

	events := p.Update(0.016, 3.4, 5)
	if len(events) != 1 || events[0].Kind != PowerupCollected || events[0].Effect != EffectBoost {
		t.Fatalf("events = %v, want one boost collection", events)
	}
	if len(p.Pickups()) != 0 {
		t.Fatal("collected pickup not removed")
	}
	if got := p.SpeedFactor(); got != 2.0 {
		t.Fatalf("speed factor after boost = %v, want 2.0", got)
	}
}

func TestCollectOutsideRadiusKeepsPickup(t *testing.T) {
	p := newTestPowerups(t, testPowerupConfig())
	p.pickups = []Pickup{{Effect: EffectBoost, Lane: 3, Row: 5}}

	events := p.Update(0.016, 4.5, 5)
	if len(events) != 0 {
		t.Fatalf("out-of-radius pass emitted %v", events)
	}
	if len(p.Pickups()) != 1 {
		t.Fatal("uncollected pickup on the ship's row dropped early")
	}
}

func TestMissedPickupDropsSilently(t *testing.T) {
	p := newTestPowerups(t, testPowerupConfig())
	p.pickups = []Pickup{{Effect: EffectShield, Lane: 0, Row: 5}}

	events := p.Update(0.016, 3, 7)
	if len(events) != 0 {
		t.Fatalf("missed pickup emitted %v", events)
	}
	if len(p.Pickups()) != 0 {
		t.Fatal("passed pickup still live")
	}
}

func TestPickupAheadIsKept(t *testing.T) {
	p := newTestPowerups(t, testPowerupConfig())
	p.pickups = []Pickup{{Effect: EffectShield, Lane: 3, Row: 9}}

	p.Update(0.016, 3, 5)
	if len(p.Pickups()) != 1 {
		t.Fatal("pickup ahead of the ship dropped")
	}
}

func TestEffectExpires(t *testing.T) {
	p := newTestPowerups(t, testPowerupConfig())
	p.pickups = []Pickup{{Effect: EffectBoost, Lane: 3, Row: 5}}
	p.Update(0.016, 3, 5) // collect: 4s of boost

	var expired bool
	for i := 0; i < 5; i++ {
		for _, ev := range p.Update(1.0, 3, 6) {
			if ev.Kind == PowerupExpired && ev.Effect == EffectBoost {
				expired = true
			}
		}
	}
	if !expired {
		t.Fatal("boost never expired")
	}
	if got := p.SpeedFactor(); got != 1.0 {
		t.Fatalf("speed factor after expiry = %v, want 1.0", got)
	}
	if got := p.EffectRemaining(EffectBoost); got != 0 {
		t.Fatalf("remaining after expiry = %v, want 0", got)
	}
}

func TestShieldConsumption(t *testing.T) {
	p := newTestPowerups(t, testPowerupConfig())
	p.pickups = []Pickup{{Effect: EffectShield, Lane: 3, Row: 5}}
	p.Update(0.016, 3, 5)

	if !p.ShieldActive() {
		t.Fatal("shield not active after collection")
	}
	if !p.ConsumeShield() {
		t.Fatal("active shield not consumable")
	}
	if p.ShieldActive() {
		t.Fatal("shield still active after consumption")
	}
	if p.ConsumeShield() {
		t.Fatal("spent shield consumed twice")
	}
}

func TestBoostAndSlowOverlap(t *testing.T) {
	p := newTestPowerups(t, testPowerupConfig())
	p.activate(EffectBoost)
	p.activate(EffectSlow)

	if got := p.SpeedFactor(); got != 1.0 {
		t.Fatalf("overlapped factor = %v, want 2.0*0.5 = 1.0", got)
	}
}

func TestPowerupsReset(t *testing.T) {
	p := newTestPowerups(t, testPowerupConfig())
	p.pickups = []Pickup{{Effect: EffectBoost, Lane: 3, Row: 5}}
	p.spawnedRow = 9
	p.activate(EffectShield)

	p.Reset()
	if len(p.Pickups()) != 0 || p.ShieldActive() || p.SpeedFactor() != 1.0 {
		t.Fatal("reset left residue")
	}

	// Rows spawn again after reset.
	p.cfg.SpawnChance = 1
	p.SpawnOnTiles([]track.Tile{{Lane: 3, Row: 1}})
	if len(p.Pickups()) != 1 {
		t.Fatal("spawn frontier not reset")
	}
}

func TestPowerupStateRoundTrip(t *testing.T) {
	p := newTestPowerups(t, testPowerupConfig())
	p.pickups = []Pickup{{Effect: EffectSlow, Lane: 2, Row: 8}}
	p.spawnedRow = 8
	p.activate(EffectShield)

	s, err := p.MarshalState()
	if err != nil {
		t.Fatalf("MarshalState: %v", err)
	}

	restored := newTestPowerups(t, testPowerupConfig())
	if err := restored.UnmarshalState(s); err != nil {
		t.Fatalf("UnmarshalState: %v", err)
	}
	if len(restored.Pickups()) != 1 || restored.Pickups()[0] != p.pickups[0] {
		t.Fatalf("pickups after round trip = %v", restored.Pickups())
	}
	if !restored.ShieldActive() {
		t.Fatal("shield timer lost in round trip")
	}

	if err := restored.UnmarshalState("nope"); err == nil {
		t.Fatal("garbage state accepted")
	}
	if err := restored.UnmarshalState(`{"shieldLeft":-2}`); err == nil {
		t.Fatal("negative timer accepted")
	}
}

func TestEffectStrings(t *testing.T) {
	if EffectShield.String() != "shield" || EffectBoost.String() != "boost" || EffectSlow.String() != "slow" {
		t.Fatal("effect strings wrong")
	}
	if Effect(99).String() != "unknown" {
		t.Fatal("out-of-range effect string wrong")
	}
}
