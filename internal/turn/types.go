package turn

import (
	"github.com/torvik/doomloop/internal/doom"
	"github.com/torvik/doomloop/internal/events"
	"github.com/torvik/doomloop/internal/rng"
	"github.com/torvik/doomloop/internal/sim"
)

// EngineVersion tags the verification chain. Bump it whenever the turn
// sequencing, the catalogs, or the canonical fact serialization changes,
// so digests from incompatible engine builds never compare equal.
const EngineVersion = "doomloop/1.0"

// #region config

// Config holds the turn-cycle parameters.
type Config struct {
	BaseActionPoints   int     // action points before the staff bonus
	UpkeepPerStaff     float64 // currency deducted per staff member per turn
	ResearchPerPaper   float64 // research points consumed per published paper
	ReputationPerPaper float64 // reputation granted per published paper
}

// DefaultConfig returns the tuned turn-cycle parameters.
func DefaultConfig() Config {
	return Config{
		BaseActionPoints:   3,
		UpkeepPerStaff:     1000,
		ResearchPerPaper:   100,
		ReputationPerPaper: 5,
	}
}

// #endregion config

// #region collaborators

// ActionResult is what an action catalog returns for one queued entry.
// Unknown action ids return the zero value: not applied, no effects.
type ActionResult struct {
	Applied bool
	Effects events.Effects
}

// ActionCatalog executes discrete actions. Implementations may mutate the
// state's risk pools and staff directly; resource deltas are returned as
// an effect map so the manager can apply and record them uniformly.
type ActionCatalog interface {
	Execute(id string, s *sim.State) ActionResult
}

// RivalResult is one rival agent's per-turn output.
type RivalResult struct {
	DoomPressure float64
}

// RivalAgent models a competing lab whose activity feeds the "rivals"
// hazard source. Agents draw only from the supplied generator.
type RivalAgent interface {
	ProcessTurn(s *sim.State, gen *rng.Generator) RivalResult
}

// StaffHook runs once per turn before productivity is computed. It may
// mutate morale-like bookkeeping but must not touch the six core resources.
type StaffHook func(s *sim.State)

// #endregion collaborators

// #region results

// StartResult describes the outcome of StartTurn.
type StartResult struct {
	Success bool
	Reason  string

	Turn             int
	Phase            sim.Phase
	CanSelectActions bool
	PendingEvents    []events.Event
	ActionPoints     int
}

// OpResult is the structured outcome of ResolveEvent and QueueAction.
// Illegal-phase calls return Success=false with no state change; unknown
// identifiers are silent no-ops that return Success=true.
type OpResult struct {
	Success          bool
	Reason           string
	CanSelectActions bool
}

// ExecuteResult describes the outcome of ExecuteTurn.
type ExecuteResult struct {
	Success bool
	Reason  string

	Executed        []string
	PapersPublished int
	Doom            doom.Result
	GameOver        bool
	Victory         bool
}

// #endregion results
