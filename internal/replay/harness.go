// Package replay re-runs recorded games for verification: given a seed and
// the per-turn script of queued actions and event choices, it drives the
// turn manager to completion and reports the digest after every turn. Two
// replays of the same script must agree bit for bit; a mismatch against a
// recorded digest means non-determinism or a tampered record.
package replay

import (
	"github.com/torvik/doomloop/internal/sim"
	"github.com/torvik/doomloop/internal/turn"
)

// #region types

// TurnScript is one recorded turn: the actions queued, and the choice taken
// for each event that blocked the turn start.
type TurnScript struct {
	Actions []string          `json:"actions"`
	Choices map[string]string `json:"choices,omitempty"`
}

// RivalScript describes a rival agent registered for the run.
type RivalScript struct {
	Name       string  `json:"name"`
	Aggression float64 `json:"aggression"`
}

// Script is a complete recorded game: the seed, the rivals, and the
// per-turn inputs in play order.
type Script struct {
	Seed   string        `json:"seed"`
	Rivals []RivalScript `json:"rivals,omitempty"`
	Turns  []TurnScript  `json:"turns"`
}

// TurnOutcome captures one replayed turn.
type TurnOutcome struct {
	Turn            int          `json:"turn"`
	ResolvedEvents  []string     `json:"resolved_events,omitempty"`
	Executed        []string     `json:"executed,omitempty"`
	PapersPublished int          `json:"papers_published,omitempty"`
	DoomValue       float64      `json:"doom_value"`
	Digest          string       `json:"digest"`
	Snapshot        sim.Snapshot `json:"snapshot"`
	GameOver        bool         `json:"game_over"`
	Victory         bool         `json:"victory"`
}

// RunResult is the outcome of replaying a full script.
type RunResult struct {
	FinalDigest string        `json:"final_digest"`
	Final       sim.Snapshot  `json:"final"`
	Turns       []TurnOutcome `json:"turns"`
	GameOver    bool          `json:"game_over"`
	Victory     bool          `json:"victory"`
}

// #endregion types

// #region run

// Run replays a script through the full turn pipeline. Event choices not
// present in the script fall back to the event's first option, matching
// what an unattended session would pick; scripted turns after a terminal
// state are dropped.
func Run(script Script, config turn.Config) RunResult {
	m := turn.NewManager(script.Seed, config)
	for _, r := range script.Rivals {
		m.AddRival(&turn.SimpleRival{Name: r.Name, Aggression: r.Aggression})
	}

	result := RunResult{}
	for _, ts := range script.Turns {
		start := m.StartTurn()
		if !start.Success {
			break
		}

		var resolved []string
		for _, ev := range start.PendingEvents {
			choice := ""
			if len(ev.Choices) > 0 {
				choice = ev.Choices[0].ID
				if c, ok := ts.Choices[ev.ID]; ok {
					choice = c
				}
			}
			if res := m.ResolveEvent(ev.ID, choice); res.Success {
				resolved = append(resolved, ev.ID)
			}
		}

		for _, a := range ts.Actions {
			m.QueueAction(a)
		}

		exec := m.ExecuteTurn()
		result.Turns = append(result.Turns, TurnOutcome{
			Turn:            start.Turn,
			ResolvedEvents:  resolved,
			Executed:        exec.Executed,
			PapersPublished: exec.PapersPublished,
			DoomValue:       exec.Doom.NewValue,
			Digest:          m.Digest(),
			Snapshot:        m.State().Snapshot(),
			GameOver:        exec.GameOver,
			Victory:         exec.Victory,
		})
		if exec.GameOver {
			result.GameOver = true
			result.Victory = exec.Victory
			break
		}
	}

	result.FinalDigest = m.Digest()
	result.Final = m.State().Snapshot()
	return result
}

// #endregion run
