// Package risk maintains the six independent hazard-adjacent meters: each
// decays every turn, escalates through latched threshold tiers with
// guaranteed events, and stochastically emits lower-severity events at a
// rate rising with its level.
package risk

import (
	"github.com/torvik/doomloop/internal/events"
	"github.com/torvik/doomloop/internal/rng"
)

// #region engine

// Engine owns the pool values, the latched tier triggers, and the audit
// history. One engine belongs to one simulation state.
type Engine struct {
	config    Config
	values    map[Pool]float64
	triggered map[Pool]int // highest tier already fired, latched forever
	history   []HistoryEntry
}

// NewEngine creates an engine with all pools at zero.
func NewEngine(config Config) *Engine {
	e := &Engine{
		config:    config,
		values:    make(map[Pool]float64, len(PoolOrder)),
		triggered: make(map[Pool]int, len(PoolOrder)),
	}
	for _, p := range PoolOrder {
		e.values[p] = 0
		e.triggered[p] = 0
	}
	return e
}

// #endregion engine

// #region accessors

// Value returns the level of a pool. Unknown pools read as 0.
func (e *Engine) Value(p Pool) float64 { return e.values[p] }

// TriggeredTier returns the highest tier already fired for a pool.
func (e *Engine) TriggeredTier(p Pool) int { return e.triggered[p] }

// Values returns a copy of all pool levels.
func (e *Engine) Values() map[Pool]float64 {
	out := make(map[Pool]float64, len(e.values))
	for k, v := range e.values {
		out[k] = v
	}
	return out
}

// TriggeredTiers returns a copy of the latched tier map.
func (e *Engine) TriggeredTiers() map[Pool]int {
	out := make(map[Pool]int, len(e.triggered))
	for k, v := range e.triggered {
		out[k] = v
	}
	return out
}

// History returns the append-only audit log. The returned slice is shared;
// callers must not mutate it.
func (e *Engine) History() []HistoryEntry { return e.history }

// #endregion accessors

// #region add-risk

// AddRisk adds a signed amount to a pool, clamped into [0,100], and
// appends an audit entry. Unknown pool names are silently ignored: stale
// identifiers from external effect functions are not an error.
func (e *Engine) AddRisk(pool Pool, amount float64, source string, turn int) {
	if !KnownPool(pool) {
		return
	}
	e.values[pool] = clamp(e.values[pool]+amount, 0, 100)
	e.history = append(e.history, HistoryEntry{
		Pool:   pool,
		Delta:  amount,
		Source: source,
		Turn:   turn,
	})
}

// AddRiskMulti applies deltas to several pools from one causal source.
// Pools are applied in fixed order so the audit history is deterministic.
func (e *Engine) AddRiskMulti(deltas map[Pool]float64, source string, turn int) {
	for _, p := range PoolOrder {
		if amount, ok := deltas[p]; ok {
			e.AddRisk(p, amount, source, turn)
		}
	}
}

// #endregion add-risk

// #region process-turn

// ProcessTurn runs the per-turn pass over every pool in PoolOrder: decay,
// tier-edge detection with a guaranteed event per newly reached tier, and
// an independent probabilistic draw for a minor event when the pool sits
// above the activation floor. All draws come from the supplied generator.
func (e *Engine) ProcessTurn(turn int, gen *rng.Generator) []events.Event {
	var triggered []events.Event

	for _, p := range PoolOrder {
		if e.config.Decay > 0 && e.values[p] > 0 {
			decayed := clamp(e.values[p]-e.config.Decay, 0, 100)
			delta := decayed - e.values[p]
			e.values[p] = decayed
			e.history = append(e.history, HistoryEntry{
				Pool:   p,
				Delta:  delta,
				Source: "decay",
				Turn:   turn,
			})
		}

		tier := tierFor(e.values[p])
		if tier > e.triggered[p] {
			ev := events.RiskEvent(string(p), tier, gen)
			e.triggered[p] = tier
			if !ev.IsZero() {
				triggered = append(triggered, ev)
			}
		}

		if e.values[p] >= e.config.ActivationFloor {
			prob := (e.values[p] / 100.0) * e.config.MinorEventRate
			if gen.Chance(prob) {
				ev := events.RiskEvent(string(p), 1, gen)
				if !ev.IsZero() {
					triggered = append(triggered, ev)
				}
			}
		}
	}

	return triggered
}

// #endregion process-turn

// #region restore

// Restore overwrites pool levels, latched tiers, and history from a
// deserialized snapshot. Unknown pools in the input are dropped; missing
// pools default to zero.
func (e *Engine) Restore(values map[Pool]float64, triggered map[Pool]int, history []HistoryEntry) {
	for _, p := range PoolOrder {
		e.values[p] = clamp(values[p], 0, 100)
		e.triggered[p] = triggered[p]
	}
	e.history = append([]HistoryEntry(nil), history...)
}

// #endregion restore

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
