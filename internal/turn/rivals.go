package turn

import (
	"github.com/torvik/doomloop/internal/rng"
	"github.com/torvik/doomloop/internal/sim"
)

// #region simple-rival

// SimpleRival is the built-in rival agent: a competing lab applying steady
// hazard pressure with a seeded random component. Real games can register
// richer agents through the RivalAgent interface.
type SimpleRival struct {
	Name       string
	Aggression float64 // scales the per-turn pressure, 1.0 is baseline
}

// ProcessTurn emits this rival's hazard pressure for the turn. Exactly one
// draw per turn keeps the session's draw sequence stable.
func (r *SimpleRival) ProcessTurn(s *sim.State, gen *rng.Generator) RivalResult {
	base := 0.3 + 0.4*gen.Float64()
	return RivalResult{DoomPressure: base * r.Aggression}
}

// #endregion simple-rival
