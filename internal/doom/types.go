package doom

// #region sources

// Named contribution sources, used for attribution in the per-turn
// breakdown and as keys for persistent modifiers and multipliers.
const (
	SourceBase         = "base"
	SourceCapabilities = "capabilities"
	SourceSafety       = "safety"
	SourceUnproductive = "unproductive_staff"
	SourceRivals       = "rivals"
	SourceEvents       = "events"
)

// Sources lists every named source in canonical order.
var Sources = []string{
	SourceBase,
	SourceCapabilities,
	SourceSafety,
	SourceUnproductive,
	SourceRivals,
	SourceEvents,
}

// #endregion sources

// #region trend

// Trend is the qualitative label derived from velocity magnitude and sign.
type Trend string

const (
	TrendStable             Trend = "stable"
	TrendIncreasing         Trend = "increasing"
	TrendStronglyIncreasing Trend = "strongly_increasing"
	TrendDecreasing         Trend = "decreasing"
	TrendStronglyDecreasing Trend = "strongly_decreasing"
)

// #endregion trend

// #region config

// Config holds the coefficients of the hazard dynamics. The velocity and
// momentum coefficients are gameplay-tuned: sustained strategies build
// inertia that a single reversal cannot fully cancel, so changing them
// changes game balance, not just numbers.
type Config struct {
	StartValue          float64 // initial hazard value
	BasePressure        float64 // constant per-turn upward pressure
	CapabilityPressure  float64 // per productive capabilities researcher
	SafetyReduction     float64 // per productive safety researcher
	UnproductivePenalty float64 // per unmanaged-or-uncomputed staff member

	VelocityRetention float64 // velocity' = retention*velocity + weight*raw
	DeltaWeight       float64
	MomentumFactor    float64 // momentum = velocity' * factor, capped
	MomentumCap       float64

	BaseCapacity    int // staff covered with zero managers
	ManagerCapacity int // additional staff covered per manager

	TrendThreshold       float64 // |velocity| below this is stable
	StrongTrendThreshold float64
}

// DefaultConfig returns the tuned coefficients.
func DefaultConfig() Config {
	return Config{
		StartValue:          25.0,
		BasePressure:        1.0,
		CapabilityPressure:  0.4,
		SafetyReduction:     0.3,
		UnproductivePenalty: 0.5,

		VelocityRetention: 0.7,
		DeltaWeight:       0.3,
		MomentumFactor:    0.3,
		MomentumCap:       8.0,

		BaseCapacity:    9,
		ManagerCapacity: 9,

		TrendThreshold:       0.5,
		StrongTrendThreshold: 2.0,
	}
}

// #endregion config

// #region turn-input

// TurnInput carries everything external the per-turn computation reads:
// staff counts, available compute, and the summed rival contribution.
type TurnInput struct {
	SafetyStaff     int
	CapabilityStaff int
	Managers        int
	Compute         float64
	RivalPressure   float64
}

// #endregion turn-input

// #region productivity

// Productivity is the per-turn staff coverage breakdown. A staff member is
// productive only when both under management capacity and allocated a unit
// of compute; missing either counts once, never twice.
type Productivity struct {
	ProductiveSafety     int
	ProductiveCapability int
	Unproductive         int
	Capacity             int
	ComputeCovered       int
}

// #endregion productivity

// #region result

// Result is the full outcome of one per-turn hazard computation.
type Result struct {
	TotalChange float64 // raw + momentum, the applied delta
	RawChange   float64 // sum of adjusted source contributions
	Momentum    float64
	Velocity    float64
	Sources     map[string]float64 // adjusted contribution per named source
	NewValue    float64
	Trend       Trend
	Coverage    Productivity
}

// #endregion result
