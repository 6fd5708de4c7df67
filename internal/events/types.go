package events

// #region resource

// Resource enumerates the closed set of resource keys an event effect map
// may touch. Effect maps are keyed by this type so an invalid key is a
// compile-time concern, not a runtime one.
type Resource string

const (
	ResourceCurrency   Resource = "currency"
	ResourceCompute    Resource = "compute"
	ResourceResearch   Resource = "research"
	ResourcePapers     Resource = "papers"
	ResourceReputation Resource = "reputation"
	ResourceDoom       Resource = "doom"
)

// KnownResources lists every legal effect key, in canonical order.
var KnownResources = []Resource{
	ResourceCompute,
	ResourceCurrency,
	ResourceDoom,
	ResourcePapers,
	ResourceReputation,
	ResourceResearch,
}

// KnownResource reports whether r belongs to the closed resource set.
func KnownResource(r Resource) bool {
	for _, k := range KnownResources {
		if k == r {
			return true
		}
	}
	return false
}

// #endregion resource

// #region effects

// Effects maps resources to signed deltas. A doom delta is queued as a
// one-off push into the hazard engine rather than applied immediately.
type Effects map[Resource]float64

// StringKeys converts effects to a plain string-keyed map for the
// verification chain and other serialization boundaries.
func (e Effects) StringKeys() map[string]float64 {
	if len(e) == 0 {
		return nil
	}
	out := make(map[string]float64, len(e))
	for k, v := range e {
		out[string(k)] = v
	}
	return out
}

// #endregion effects

// #region event

// Choice is a player-facing option on an event, with its own cost/effect map.
type Choice struct {
	ID      string
	Label   string
	Effects Effects
}

// Event is a value produced on demand by the catalog. Events are not owned
// state and are never persisted individually; only their consequences
// (the applied effects) persist in the simulation state.
type Event struct {
	ID          string
	Name        string
	Description string
	Effects     Effects
	Choices     []Choice
}

// IsZero reports whether the event is the empty value, which the catalog
// returns for unknown pool/severity combinations.
func (e Event) IsZero() bool {
	return e.ID == ""
}

// Choice returns the choice with the given id, or false when absent.
func (e Event) Choice(id string) (Choice, bool) {
	for _, c := range e.Choices {
		if c.ID == id {
			return c, true
		}
	}
	return Choice{}, false
}

// #endregion event

// #region snapshot

// Snapshot is the minimal read-only view of simulation state the catalog's
// trigger predicates evaluate against.
type Snapshot struct {
	Turn       int
	Currency   float64
	Compute    float64
	Reputation float64
	Doom       float64
}

// #endregion snapshot
