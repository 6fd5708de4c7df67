package turn

import (
	"github.com/torvik/doomloop/internal/events"
	"github.com/torvik/doomloop/internal/risk"
	"github.com/torvik/doomloop/internal/sim"
)

// #region catalog

// actionFunc performs an action's side effects (staff, risk pools) and
// returns its resource effect map.
type actionFunc func(s *sim.State) events.Effects

// Catalog is the built-in reference action catalog. The core treats the
// catalog as an external collaborator; this one exists so the loop is
// playable and testable without a surrounding game.
type Catalog struct {
	actions map[string]actionFunc
}

// Execute runs one action. Unknown ids return the zero result: not an
// error, since stale ids can legitimately arrive from old UI state.
func (c *Catalog) Execute(id string, s *sim.State) ActionResult {
	fn, ok := c.actions[id]
	if !ok {
		return ActionResult{}
	}
	return ActionResult{Applied: true, Effects: fn(s)}
}

// ActionIDs lists the known action identifiers. The "reserve" pseudo-action
// costs nothing and does nothing; reserving all action points is a valid
// strategy, not an error.
func (c *Catalog) ActionIDs() []string {
	return []string{
		"buy_compute",
		"fundraise",
		"hire_capabilities",
		"hire_manager",
		"hire_safety",
		"lobby_regulators",
		"research_capabilities",
		"research_safety",
		"reserve",
	}
}

// #endregion catalog

// #region default-catalog

// DefaultCatalog builds the reference catalog.
func DefaultCatalog() *Catalog {
	return &Catalog{actions: map[string]actionFunc{
		"reserve": func(s *sim.State) events.Effects {
			return nil
		},
		"fundraise": func(s *sim.State) events.Effects {
			s.Risk.AddRisk(risk.PoolFinancialExposure, 4, "fundraise", s.Turn)
			return events.Effects{events.ResourceCurrency: 20000}
		},
		"research_capabilities": func(s *sim.State) events.Effects {
			s.Risk.AddRisk(risk.PoolCapabilityOverhang, 3, "research_capabilities", s.Turn)
			return events.Effects{events.ResourceResearch: 15}
		},
		"research_safety": func(s *sim.State) events.Effects {
			return events.Effects{
				events.ResourceResearch: 6,
				events.ResourceDoom:     -1.5,
			}
		},
		"hire_safety": func(s *sim.State) events.Effects {
			s.Hire(sim.RoleSafety, 1)
			return events.Effects{events.ResourceCurrency: -10000}
		},
		"hire_capabilities": func(s *sim.State) events.Effects {
			s.Hire(sim.RoleCapabilities, 1)
			s.Risk.AddRisk(risk.PoolCapabilityOverhang, 1, "hire_capabilities", s.Turn)
			return events.Effects{events.ResourceCurrency: -10000}
		},
		"hire_manager": func(s *sim.State) events.Effects {
			s.Hire(sim.RoleManager, 1)
			return events.Effects{events.ResourceCurrency: -12000}
		},
		"buy_compute": func(s *sim.State) events.Effects {
			return events.Effects{
				events.ResourceCurrency: -5000,
				events.ResourceCompute:  25,
			}
		},
		"lobby_regulators": func(s *sim.State) events.Effects {
			s.Risk.AddRisk(risk.PoolRegulatoryAttention, -5, "lobby_regulators", s.Turn)
			return events.Effects{events.ResourceCurrency: -8000}
		},
	}}
}

// #endregion default-catalog
