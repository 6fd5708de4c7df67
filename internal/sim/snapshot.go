package sim

import (
	"encoding/json"

	"github.com/torvik/doomloop/internal/events"
	"github.com/torvik/doomloop/internal/risk"
)

// #region snapshot-types

// Snapshot is the flat persisted layout of a simulation state, captured at
// a turn boundary (phase turn_start, no pending events). Field names are
// part of the save contract; missing keys deserialize to the defaults
// DefaultSnapshot documents.
type Snapshot struct {
	Turn int `json:"turn"`

	Currency   float64 `json:"currency"`
	Compute    float64 `json:"compute"`
	Research   float64 `json:"research"`
	Papers     float64 `json:"papers"`
	Reputation float64 `json:"reputation"`

	Staff map[string]int `json:"staff"`

	ActionPoints  int      `json:"action_points"`
	QueuedActions []string `json:"queued_actions"`

	RiskSystem RiskSnapshot `json:"risk_system"`

	CurrentDoom     float64            `json:"current_doom"`
	DoomVelocity    float64            `json:"doom_velocity"`
	DoomMomentum    float64            `json:"doom_momentum"`
	DoomSources     map[string]float64 `json:"doom_sources"`
	DoomModifiers   map[string]float64 `json:"doom_modifiers"`
	DoomMultipliers map[string]float64 `json:"doom_multipliers"`

	GameOver bool `json:"game_over"`
	Victory  bool `json:"victory"`
}

// RiskSnapshot is the nested persisted layout of the risk pool engine.
type RiskSnapshot struct {
	Pools               map[string]float64  `json:"pools"`
	ThresholdsTriggered map[string]int      `json:"thresholds_triggered"`
	History             []risk.HistoryEntry `json:"history"`
}

// #endregion snapshot-types

// #region defaults

// DefaultSnapshot returns the documented defaults every missing save key
// falls back to: a fresh game at turn 0.
func DefaultSnapshot() Snapshot {
	return New().Snapshot()
}

// #endregion defaults

// #region capture

// Snapshot captures the current state in the persisted layout.
func (s *State) Snapshot() Snapshot {
	staff := make(map[string]int, len(RoleOrder))
	for _, r := range RoleOrder {
		staff[string(r)] = s.Staff[r]
	}

	pools := make(map[string]float64, len(risk.PoolOrder))
	triggered := make(map[string]int, len(risk.PoolOrder))
	for _, p := range risk.PoolOrder {
		pools[string(p)] = s.Risk.Value(p)
		triggered[string(p)] = s.Risk.TriggeredTier(p)
	}

	return Snapshot{
		Turn: s.Turn,

		Currency:   s.Resource(events.ResourceCurrency),
		Compute:    s.Resource(events.ResourceCompute),
		Research:   s.Resource(events.ResourceResearch),
		Papers:     s.Resource(events.ResourcePapers),
		Reputation: s.Resource(events.ResourceReputation),

		Staff: staff,

		ActionPoints:  s.ActionPoints,
		QueuedActions: append([]string(nil), s.QueuedActions...),

		RiskSystem: RiskSnapshot{
			Pools:               pools,
			ThresholdsTriggered: triggered,
			History:             append([]risk.HistoryEntry(nil), s.Risk.History()...),
		},

		CurrentDoom:     s.Doom.Value(),
		DoomVelocity:    s.Doom.Velocity(),
		DoomMomentum:    s.Doom.Momentum(),
		DoomSources:     s.Doom.Sources(),
		DoomModifiers:   s.Doom.Modifiers(),
		DoomMultipliers: s.Doom.Multipliers(),

		GameOver: s.GameOver,
		Victory:  s.Victory,
	}
}

// MarshalJSON-friendly helper for storage layers.
func (s *State) SnapshotJSON() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}

// #endregion capture

// #region restore

// FromSnapshot rebuilds a state from a persisted snapshot.
func FromSnapshot(snap Snapshot) *State {
	s := New()
	s.Turn = snap.Turn

	s.Set(events.ResourceCurrency, snap.Currency)
	s.Set(events.ResourceCompute, snap.Compute)
	s.Set(events.ResourceResearch, snap.Research)
	s.Set(events.ResourcePapers, snap.Papers)
	s.Set(events.ResourceReputation, snap.Reputation)

	for _, r := range RoleOrder {
		if n, ok := snap.Staff[string(r)]; ok && n > 0 {
			s.Staff[r] = n
		}
	}

	s.ActionPoints = snap.ActionPoints
	s.QueuedActions = append([]string(nil), snap.QueuedActions...)

	pools := make(map[risk.Pool]float64, len(snap.RiskSystem.Pools))
	for k, v := range snap.RiskSystem.Pools {
		pools[risk.Pool(k)] = v
	}
	triggered := make(map[risk.Pool]int, len(snap.RiskSystem.ThresholdsTriggered))
	for k, v := range snap.RiskSystem.ThresholdsTriggered {
		triggered[risk.Pool(k)] = v
	}
	s.Risk.Restore(pools, triggered, snap.RiskSystem.History)

	s.Doom.Restore(
		snap.CurrentDoom,
		snap.DoomVelocity,
		snap.DoomMomentum,
		snap.DoomSources,
		snap.DoomModifiers,
		snap.DoomMultipliers,
	)

	s.GameOver = snap.GameOver
	s.Victory = snap.Victory
	s.Phase = PhaseTurnStart
	return s
}

// FromJSON rebuilds a state from persisted JSON. Missing keys fall back to
// DefaultSnapshot values; fields of the wrong JSON shape are treated as
// absent rather than failing the whole load.
func FromJSON(data []byte) (*State, error) {
	snap := DefaultSnapshot()
	if err := json.Unmarshal(data, &snap); err != nil {
		// encoding/json keeps decoding sibling fields past a type
		// mismatch and reports the first one; only structural errors
		// (malformed JSON) abort the load.
		if _, ok := err.(*json.UnmarshalTypeError); !ok {
			return nil, err
		}
	}
	return FromSnapshot(snap), nil
}

// #endregion restore
