package risk

// #region pools

// Pool names a risk meter. The set is fixed at six.
type Pool string

const (
	PoolCapabilityOverhang  Pool = "capability_overhang"
	PoolFinancialExposure   Pool = "financial_exposure"
	PoolInsiderThreat       Pool = "insider_threat"
	PoolPublicAwareness     Pool = "public_awareness"
	PoolRegulatoryAttention Pool = "regulatory_attention"
	PoolResearchIntegrity   Pool = "research_integrity"
)

// PoolOrder is the fixed iteration order for every per-turn pass,
// alphabetical by name. Generator draws happen in this order, so changing
// it silently breaks determinism against recorded runs.
var PoolOrder = []Pool{
	PoolCapabilityOverhang,
	PoolFinancialExposure,
	PoolInsiderThreat,
	PoolPublicAwareness,
	PoolRegulatoryAttention,
	PoolResearchIntegrity,
}

// KnownPool reports whether p is one of the six pools.
func KnownPool(p Pool) bool {
	for _, k := range PoolOrder {
		if k == p {
			return true
		}
	}
	return false
}

// #endregion pools

// #region config

// Config holds the pool dynamics parameters.
type Config struct {
	Decay           float64 // subtracted from every pool each turn, floored at 0
	ActivationFloor float64 // below this, no probabilistic events fire
	MinorEventRate  float64 // probability scale: p = (value/100) * rate
}

// DefaultConfig returns the tuned pool dynamics.
func DefaultConfig() Config {
	return Config{
		Decay:           2.0,
		ActivationFloor: 25.0,
		MinorEventRate:  0.25,
	}
}

// #endregion config

// #region tiers

// Threshold tiers: crossing 50 is tier 1, 75 is tier 2, 100 is tier 3.
// Each tier's guaranteed event fires at most once per pool; the trigger is
// latched forever and does not reset when the pool decays back down.
var tierThresholds = []float64{50, 75, 100}

// tierFor returns the tier for a pool value: 0 when below every threshold.
func tierFor(value float64) int {
	tier := 0
	for i, th := range tierThresholds {
		if value >= th {
			tier = i + 1
		}
	}
	return tier
}

// #endregion tiers

// #region history

// HistoryEntry is one audit record: who changed which pool, by how much,
// and when. The history is append-only.
type HistoryEntry struct {
	Pool   Pool    `json:"pool"`
	Delta  float64 `json:"delta"`
	Source string  `json:"source"`
	Turn   int     `json:"turn"`
}

// #endregion history
