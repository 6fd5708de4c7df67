// Package doom is the hazard scalar engine: a single bounded [0,100]
// meter with velocity and momentum dynamics, computed once per turn from
// named contributing sources.
package doom

// #region engine

// Engine holds the hazard scalar and its dynamics state. It is mutated
// once per turn by the turn manager via CalculateTurnDelta; external
// collaborators may queue one-off event pushes between turns.
type Engine struct {
	config   Config
	value    float64
	velocity float64
	momentum float64

	sources     map[string]float64 // last-computed adjusted contributions
	modifiers   map[string]float64 // persistent additive, per source
	multipliers map[string]float64 // persistent multiplicative, per source

	pendingEvents float64 // one-off pushes queued since last turn
}

// NewEngine creates an engine at the configured start value.
func NewEngine(config Config) *Engine {
	return &Engine{
		config:      config,
		value:       clamp(config.StartValue, 0, 100),
		sources:     map[string]float64{},
		modifiers:   map[string]float64{},
		multipliers: map[string]float64{},
	}
}

// #endregion engine

// #region accessors

// Value returns the current hazard scalar.
func (e *Engine) Value() float64 { return e.value }

// Velocity returns the smoothed rate of change.
func (e *Engine) Velocity() float64 { return e.velocity }

// Momentum returns the momentum contribution of the last computation.
func (e *Engine) Momentum() float64 { return e.momentum }

// Sources returns a copy of the last per-source breakdown.
func (e *Engine) Sources() map[string]float64 { return copyMap(e.sources) }

// Modifiers returns a copy of the persistent additive modifiers.
func (e *Engine) Modifiers() map[string]float64 { return copyMap(e.modifiers) }

// Multipliers returns a copy of the persistent multiplicative factors.
func (e *Engine) Multipliers() map[string]float64 { return copyMap(e.multipliers) }

// #endregion accessors

// #region external-mutation

// SetModifier sets a persistent additive modifier on a named source.
// It persists across turns until overwritten.
func (e *Engine) SetModifier(source string, v float64) {
	e.modifiers[source] = v
}

// SetMultiplier sets a persistent multiplicative factor on a named source.
func (e *Engine) SetMultiplier(source string, v float64) {
	e.multipliers[source] = v
}

// PushEvent queues a one-off contribution that feeds the "events" source
// at the next per-turn computation. Pushes accumulate; the queue drains
// exactly once per turn.
func (e *Engine) PushEvent(delta float64) {
	e.pendingEvents += delta
}

// Restore overwrites the dynamics state from a deserialized snapshot.
func (e *Engine) Restore(value, velocity, momentum float64, sources, modifiers, multipliers map[string]float64) {
	e.value = clamp(value, 0, 100)
	e.velocity = velocity
	e.momentum = momentum
	e.sources = copyOrEmpty(sources)
	e.modifiers = copyOrEmpty(modifiers)
	e.multipliers = copyOrEmpty(multipliers)
}

// #endregion external-mutation

// #region productivity

// coverage applies the productivity rule: capacity comes from managers
// (plus a small base), compute is allocated greedily one unit per head,
// and a staff member missing either counts once toward the penalty.
// Safety staff are allocated first; the order is fixed for determinism.
func (e *Engine) coverage(in TurnInput) Productivity {
	total := in.SafetyStaff + in.CapabilityStaff
	capacity := e.config.BaseCapacity + e.config.ManagerCapacity*in.Managers

	covered := int(in.Compute)
	if covered > total {
		covered = total
	}

	productive := total
	if capacity < productive {
		productive = capacity
	}
	if covered < productive {
		productive = covered
	}
	if productive < 0 {
		productive = 0
	}

	prodSafety := in.SafetyStaff
	if productive < prodSafety {
		prodSafety = productive
	}

	return Productivity{
		ProductiveSafety:     prodSafety,
		ProductiveCapability: productive - prodSafety,
		Unproductive:         total - productive,
		Capacity:             capacity,
		ComputeCovered:       covered,
	}
}

// #endregion productivity

// #region turn-delta

// CalculateTurnDelta runs the per-turn hazard computation:
// collect named sources, apply persistent modifiers and multipliers,
// smooth velocity, cap momentum, and clamp the new value into [0,100].
func (e *Engine) CalculateTurnDelta(in TurnInput) Result {
	cov := e.coverage(in)

	raw := map[string]float64{
		SourceBase:         e.config.BasePressure,
		SourceCapabilities: e.config.CapabilityPressure * float64(cov.ProductiveCapability),
		SourceSafety:       -e.config.SafetyReduction * float64(cov.ProductiveSafety),
		SourceUnproductive: e.config.UnproductivePenalty * float64(cov.Unproductive),
		SourceRivals:       in.RivalPressure,
		SourceEvents:       e.pendingEvents,
	}
	e.pendingEvents = 0

	adjusted := make(map[string]float64, len(Sources))
	var rawDelta float64
	for _, src := range Sources {
		v := raw[src] + e.modifiers[src]
		if m, ok := e.multipliers[src]; ok {
			v *= m
		}
		adjusted[src] = v
		rawDelta += v
	}

	e.velocity = e.config.VelocityRetention*e.velocity + e.config.DeltaWeight*rawDelta
	e.momentum = clamp(e.velocity*e.config.MomentumFactor, -e.config.MomentumCap, e.config.MomentumCap)

	total := rawDelta + e.momentum
	e.value = clamp(e.value+total, 0, 100)
	e.sources = adjusted

	return Result{
		TotalChange: total,
		RawChange:   rawDelta,
		Momentum:    e.momentum,
		Velocity:    e.velocity,
		Sources:     copyMap(adjusted),
		NewValue:    e.value,
		Trend:       e.trend(),
		Coverage:    cov,
	}
}

// trend labels the velocity: stable inside ±TrendThreshold, strong beyond
// ±StrongTrendThreshold.
func (e *Engine) trend() Trend {
	switch {
	case e.velocity >= e.config.StrongTrendThreshold:
		return TrendStronglyIncreasing
	case e.velocity >= e.config.TrendThreshold:
		return TrendIncreasing
	case e.velocity <= -e.config.StrongTrendThreshold:
		return TrendStronglyDecreasing
	case e.velocity <= -e.config.TrendThreshold:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

// #endregion turn-delta

// #region helpers

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func copyMap(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyOrEmpty(m map[string]float64) map[string]float64 {
	if m == nil {
		return map[string]float64{}
	}
	return copyMap(m)
}

// #endregion helpers
