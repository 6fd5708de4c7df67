// Package sim holds the root simulation aggregate: the resource scalars,
// staff counts, action queue, pending events, phase tag, and the embedded
// risk and hazard engines. All public mutation clamps into declared bounds.
package sim

import (
	"github.com/torvik/doomloop/internal/doom"
	"github.com/torvik/doomloop/internal/events"
	"github.com/torvik/doomloop/internal/risk"
)

// #region phase

// Phase is the turn-cycle position. Illegal calls for the current phase
// return structured failures and mutate nothing.
type Phase string

const (
	PhaseTurnStart       Phase = "turn_start"
	PhaseActionSelection Phase = "action_selection"
	PhaseTurnExecution   Phase = "turn_execution"
)

// #endregion phase

// #region roles

// Role names a staff category.
type Role string

const (
	RoleSafety       Role = "safety"
	RoleCapabilities Role = "capabilities"
	RoleManager      Role = "manager"
)

// RoleOrder is the fixed iteration order over roles.
var RoleOrder = []Role{RoleCapabilities, RoleManager, RoleSafety}

// #endregion roles

// #region state

// State is the root aggregate. It is constructed once per game, mutated in
// place every turn by the turn manager, and round-trips exactly through
// Snapshot/Restore.
type State struct {
	Turn int

	resources map[events.Resource]float64
	Staff     map[Role]int

	ActionPoints  int
	QueuedActions []string
	Pending       []events.Event

	GameOver bool
	Victory  bool
	Phase    Phase

	Risk *risk.Engine
	Doom *doom.Engine
}

// New creates a fresh game state with starting resources.
func New() *State {
	return &State{
		resources: map[events.Resource]float64{
			events.ResourceCurrency:   100000,
			events.ResourceCompute:    100,
			events.ResourceResearch:   0,
			events.ResourcePapers:     0,
			events.ResourceReputation: 50,
		},
		Staff: map[Role]int{
			RoleCapabilities: 0,
			RoleManager:      0,
			RoleSafety:       0,
		},
		Phase: PhaseTurnStart,
		Risk:  risk.NewEngine(risk.DefaultConfig()),
		Doom:  doom.NewEngine(doom.DefaultConfig()),
	}
}

// #endregion state

// #region resources

// Resource reads a resource scalar. The doom key reads through to the
// hazard engine, which owns that value.
func (s *State) Resource(r events.Resource) float64 {
	if r == events.ResourceDoom {
		return s.Doom.Value()
	}
	return s.resources[r]
}

// Credit adds a signed delta to a resource, clamped into its bounds:
// reputation stays in [0,100], every other scalar stays non-negative.
// A doom delta is queued as a one-off push into the hazard engine rather
// than applied immediately, so attribution and momentum stay intact.
func (s *State) Credit(r events.Resource, delta float64) {
	if r == events.ResourceDoom {
		s.Doom.PushEvent(delta)
		return
	}
	if !events.KnownResource(r) {
		return
	}
	v := s.resources[r] + delta
	if v < 0 {
		v = 0
	}
	if r == events.ResourceReputation && v > 100 {
		v = 100
	}
	s.resources[r] = v
}

// Set overwrites a resource, clamped the same way Credit clamps.
func (s *State) Set(r events.Resource, v float64) {
	if r == events.ResourceDoom || !events.KnownResource(r) {
		return
	}
	s.resources[r] = 0
	s.Credit(r, v)
}

// ApplyEffects applies an event or action effect map. Resource keys are
// applied in canonical order so any downstream clamping interacts with
// them deterministically.
func (s *State) ApplyEffects(e events.Effects) {
	for _, r := range events.KnownResources {
		if delta, ok := e[r]; ok {
			s.Credit(r, delta)
		}
	}
}

// #endregion resources

// #region staff

// TotalStaff counts heads across every role.
func (s *State) TotalStaff() int {
	total := 0
	for _, n := range s.Staff {
		total += n
	}
	return total
}

// Hire adds heads to a role, never dropping below zero.
func (s *State) Hire(role Role, n int) {
	v := s.Staff[role] + n
	if v < 0 {
		v = 0
	}
	s.Staff[role] = v
}

// #endregion staff

// #region views

// EventView builds the minimal snapshot the event catalog's predicates
// evaluate against.
func (s *State) EventView() events.Snapshot {
	return events.Snapshot{
		Turn:       s.Turn,
		Currency:   s.Resource(events.ResourceCurrency),
		Compute:    s.Resource(events.ResourceCompute),
		Reputation: s.Resource(events.ResourceReputation),
		Doom:       s.Doom.Value(),
	}
}

// DoomInput builds the per-turn hazard computation input from staff and
// compute, with the rival contribution supplied by the turn manager.
func (s *State) DoomInput(rivalPressure float64) doom.TurnInput {
	return doom.TurnInput{
		SafetyStaff:     s.Staff[RoleSafety],
		CapabilityStaff: s.Staff[RoleCapabilities],
		Managers:        s.Staff[RoleManager],
		Compute:         s.Resource(events.ResourceCompute),
		RivalPressure:   rivalPressure,
	}
}

// PendingEventIDs lists pending event identifiers in resolution order.
func (s *State) PendingEventIDs() []string {
	ids := make([]string, 0, len(s.Pending))
	for _, ev := range s.Pending {
		ids = append(ids, ev.ID)
	}
	return ids
}

// #endregion views
