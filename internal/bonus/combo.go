// Package bonus holds the gameplay-feel state machines riding on top of the
// core loop: combo streaks and power-up effects. Both report state changes
// as returned event values the orchestrator consumes, never via stored
// callbacks.
package bonus

import (
	"encoding/json"
	"fmt"
	"time"
)

// ComboEventKind names a combo state change.
type ComboEventKind int

const (
	ComboChanged ComboEventKind = iota // multiplier stepped up
	ComboMilestone
	ComboBroken
)

func (k ComboEventKind) String() string {
	switch k {
	case ComboChanged:
		return "combo-changed"
	case ComboMilestone:
		return "combo-milestone"
	case ComboBroken:
		return "combo-broken"
	default:
		return "unknown"
	}
}

// ComboEvent is emitted from Record and Update calls when the streak state
// changes.
type ComboEvent struct {
	Kind       ComboEventKind
	Chain      int
	Multiplier int
}

// ComboConfig tunes streak scoring.
type ComboConfig struct {
	Window        time.Duration // max gap between actions before the streak breaks
	ChainPerStep  int           // actions per multiplier step
	MaxMultiplier int
	Milestone     int // chain interval worth celebrating
}

// Combo chains timed actions into a score multiplier. The streak survives as
// long as actions arrive within the window of the previous one.
type Combo struct {
	cfg ComboConfig

	chain      int
	total      int // value accumulated over the current streak
	lastAction time.Time
	active     bool
}

// NewCombo validates the configuration and returns an idle combo.
func NewCombo(cfg ComboConfig) (*Combo, error) {
	if cfg.Window <= 0 {
		return nil, fmt.Errorf("bonus: combo window %v must be positive", cfg.Window)
	}
	if cfg.ChainPerStep <= 0 {
		return nil, fmt.Errorf("bonus: chain per step %d must be positive", cfg.ChainPerStep)
	}
	if cfg.MaxMultiplier < 1 {
		return nil, fmt.Errorf("bonus: max multiplier %d must be at least 1", cfg.MaxMultiplier)
	}
	if cfg.Milestone <= 0 {
		return nil, fmt.Errorf("bonus: milestone %d must be positive", cfg.Milestone)
	}
	return &Combo{cfg: cfg}, nil
}

// Record feeds one scored action into the streak. A stale streak breaks
// first, then the action starts a fresh one.
func (c *Combo) Record(value int, at time.Time) []ComboEvent {
	var events []ComboEvent

	if c.active && at.Sub(c.lastAction) > c.cfg.Window {
		events = append(events, c.breakStreak())
	}

	before := c.Multiplier()
	c.chain++
	c.total += value
	c.lastAction = at
	c.active = true

	if after := c.Multiplier(); after > before {
		events = append(events, ComboEvent{Kind: ComboChanged, Chain: c.chain, Multiplier: after})
	}
	if c.chain%c.cfg.Milestone == 0 {
		events = append(events, ComboEvent{Kind: ComboMilestone, Chain: c.chain, Multiplier: c.Multiplier()})
	}

	return events
}

// Update expires the streak when the window has lapsed with no action.
// Call once per tick with the current time.
func (c *Combo) Update(now time.Time) []ComboEvent {
	if !c.active || now.Sub(c.lastAction) <= c.cfg.Window {
		return nil
	}
	return []ComboEvent{c.breakStreak()}
}

func (c *Combo) breakStreak() ComboEvent {
	ev := ComboEvent{Kind: ComboBroken, Chain: c.chain, Multiplier: 1}
	c.chain = 0
	c.total = 0
	c.active = false
	return ev
}

// Multiplier returns the current score multiplier, stepping up every
// ChainPerStep actions and capped at MaxMultiplier.
func (c *Combo) Multiplier() int {
	m := 1 + c.chain/c.cfg.ChainPerStep
	if m > c.cfg.MaxMultiplier {
		return c.cfg.MaxMultiplier
	}
	return m
}

// Chain returns the current streak length.
func (c *Combo) Chain() int {
	return c.chain
}

// Total returns the value accumulated over the current streak.
func (c *Combo) Total() int {
	return c.total
}

// Reset drops the streak without emitting events. Used on run restarts where
// nobody is listening for a break.
func (c *Combo) Reset() {
	c.chain = 0
	c.total = 0
	c.active = false
	c.lastAction = time.Time{}
}

// comboState is the serialized form of a streak.
type comboState struct {
	Chain      int       `json:"chain"`
	Total      int       `json:"total"`
	LastAction time.Time `json:"lastAction"`
	Active     bool      `json:"active"`
}

// MarshalState serializes the streak for host-side persistence.
func (c *Combo) MarshalState() (string, error) {
	data, err := json.Marshal(comboState{
		Chain:      c.chain,
		Total:      c.total,
		LastAction: c.lastAction,
		Active:     c.active,
	})
	if err != nil {
		return "", fmt.Errorf("bonus: marshal combo state: %w", err)
	}
	return string(data), nil
}

// UnmarshalState restores a streak serialized by MarshalState.
func (c *Combo) UnmarshalState(s string) error {
	var st comboState
	if err := json.Unmarshal([]byte(s), &st); err != nil {
		return fmt.Errorf("bonus: unmarshal combo state: %w", err)
	}
	if st.Chain < 0 || st.Total < 0 {
		return fmt.Errorf("bonus: combo state %q has negative counters", s)
	}
	c.chain = st.Chain
	c.total = st.Total
	c.lastAction = st.LastAction
	c.active = st.Active
	return nil
}
