// Package turn sequences the three-phase turn cycle and exposes the only
// entry points the surrounding game may call: StartTurn, QueueAction,
// ResolveEvent, and ExecuteTurn. The manager owns one game session: the
// seed, the generator, the verification tracker, and the state aggregate.
package turn

import (
	"fmt"

	"github.com/torvik/doomloop/internal/events"
	"github.com/torvik/doomloop/internal/rng"
	"github.com/torvik/doomloop/internal/sim"
	"github.com/torvik/doomloop/internal/verify"
)

// #region manager

// Manager drives one game from seed to terminal state. All calls run to
// completion before returning; callers must serialize access through a
// single logical queue and never share a manager between games.
type Manager struct {
	seed    string
	config  Config
	state   *sim.State
	gen     *rng.Generator
	tracker *verify.Tracker

	catalog   ActionCatalog
	rivals    []RivalAgent
	staffHook StaffHook
}

// NewManager creates a session keyed by the seed, with the built-in
// action catalog and no rivals.
func NewManager(seed string, config Config) *Manager {
	tracker := verify.New()
	tracker.Start(seed, EngineVersion)
	return &Manager{
		seed:    seed,
		config:  config,
		state:   sim.New(),
		gen:     rng.NewFromString(seed),
		tracker: tracker,
		catalog: DefaultCatalog(),
	}
}

// Seed returns the session seed.
func (m *Manager) Seed() string { return m.seed }

// State exposes the owned aggregate. External effect functions received
// through the catalog and hook interfaces mutate it; nothing else should.
func (m *Manager) State() *sim.State { return m.state }

// Tracker exposes the verification tracker for digest reads.
func (m *Manager) Tracker() *verify.Tracker { return m.tracker }

// Digest returns the current verification digest.
func (m *Manager) Digest() string { return m.tracker.Digest() }

// Generator exposes the session generator for collaborators that need
// derived child streams.
func (m *Manager) Generator() *rng.Generator { return m.gen }

// SetCatalog replaces the action catalog.
func (m *Manager) SetCatalog(c ActionCatalog) { m.catalog = c }

// AddRival registers a rival agent; contributions are summed per turn.
func (m *Manager) AddRival(r RivalAgent) { m.rivals = append(m.rivals, r) }

// SetStaffHook registers the per-turn staff bookkeeping hook.
func (m *Manager) SetStaffHook(h StaffHook) { m.staffHook = h }

// CanSelectActions reports whether the player may queue actions right now.
func (m *Manager) CanSelectActions() bool {
	return !m.state.GameOver && m.state.Phase == sim.PhaseActionSelection
}

// #endregion manager

// #region start-turn

// StartTurn begins the next turn: advances the counter, clears the prior
// queue and pending events, recomputes action points, deducts upkeep, runs
// staff bookkeeping, and gathers triggered events. When events trigger,
// the phase stays at turn start and action selection is blocked until
// every event is resolved.
func (m *Manager) StartTurn() StartResult {
	if m.state.GameOver {
		return StartResult{Reason: "game is over"}
	}
	if m.state.Phase != sim.PhaseTurnStart {
		return StartResult{Reason: fmt.Sprintf("start_turn is not legal in phase %s", m.state.Phase)}
	}

	m.state.Turn++
	m.state.Pending = nil
	m.state.QueuedActions = nil
	m.state.ActionPoints = m.config.BaseActionPoints + m.state.TotalStaff()/2

	if upkeep := m.config.UpkeepPerStaff * float64(m.state.TotalStaff()); upkeep > 0 {
		m.state.Credit(events.ResourceCurrency, -upkeep)
	}

	if m.staffHook != nil {
		m.staffHook(m.state)
	}

	triggered := m.state.Risk.ProcessTurn(m.state.Turn, m.gen)
	view := m.state.EventView()
	triggered = append(triggered, events.ThresholdEvents(view)...)
	triggered = append(triggered, events.RandomEvents(view, m.gen)...)
	m.state.Pending = triggered

	m.tracker.RecordTurnStart(m.state.Turn, m.state.PendingEventIDs())

	canSelect := len(triggered) == 0
	if canSelect {
		m.state.Phase = sim.PhaseActionSelection
	}

	return StartResult{
		Success:          true,
		Turn:             m.state.Turn,
		Phase:            m.state.Phase,
		CanSelectActions: canSelect,
		PendingEvents:    triggered,
		ActionPoints:     m.state.ActionPoints,
	}
}

// #endregion start-turn

// #region resolve-event

// ResolveEvent applies the chosen option of a pending event. Events are
// resolved strictly in order of appearance from the pending list; once the
// list empties, the phase advances to action selection.
//
// Calling outside the turn-start phase is a structured failure with no
// state change. A stale event id is a silent no-op; an unknown choice id
// on a multi-choice event leaves the event pending so a fresh choice can
// be made.
func (m *Manager) ResolveEvent(eventID, choiceID string) OpResult {
	if m.state.GameOver {
		return OpResult{Reason: "game is over"}
	}
	if m.state.Phase != sim.PhaseTurnStart {
		return OpResult{
			Reason:           fmt.Sprintf("resolve_event is not legal in phase %s", m.state.Phase),
			CanSelectActions: m.CanSelectActions(),
		}
	}

	idx := -1
	for i, ev := range m.state.Pending {
		if ev.ID == eventID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return OpResult{Success: true, Reason: "no-op: event not pending"}
	}

	ev := m.state.Pending[idx]
	effects := ev.Effects
	if len(ev.Choices) > 0 {
		choice, ok := ev.Choice(choiceID)
		if !ok {
			return OpResult{Success: true, Reason: "no-op: unknown choice"}
		}
		effects = choice.Effects
	}

	m.state.ApplyEffects(effects)
	m.tracker.RecordEvent(m.state.Turn, ev.ID, choiceID, effects.StringKeys())
	m.state.Pending = append(m.state.Pending[:idx], m.state.Pending[idx+1:]...)

	if len(m.state.Pending) == 0 {
		m.state.Phase = sim.PhaseActionSelection
	}
	return OpResult{Success: true, CanSelectActions: m.CanSelectActions()}
}

// #endregion resolve-event

// #region queue-action

// QueueAction appends an action id to this turn's queue, bounded by the
// turn's action points. Ending the turn with an empty queue is always
// legal, so queuing nothing is a valid strategy.
func (m *Manager) QueueAction(id string) OpResult {
	if m.state.GameOver {
		return OpResult{Reason: "game is over"}
	}
	if m.state.Phase != sim.PhaseActionSelection {
		return OpResult{Reason: fmt.Sprintf("queue_action is not legal in phase %s", m.state.Phase)}
	}
	if len(m.state.QueuedActions) >= m.state.ActionPoints {
		return OpResult{Reason: "no action points remaining", CanSelectActions: true}
	}
	m.state.QueuedActions = append(m.state.QueuedActions, id)
	return OpResult{Success: true, CanSelectActions: true}
}

// #endregion queue-action

// #region execute-turn

// ExecuteTurn applies the queued actions in FIFO order, publishes papers
// from accumulated research, folds in rival activity, runs the per-turn
// hazard computation, and evaluates terminal conditions. The phase resets
// to turn start for the next StartTurn call.
func (m *Manager) ExecuteTurn() ExecuteResult {
	if m.state.GameOver {
		return ExecuteResult{Reason: "game is over"}
	}
	if m.state.Phase != sim.PhaseActionSelection {
		return ExecuteResult{Reason: fmt.Sprintf("execute_turn is not legal in phase %s", m.state.Phase)}
	}
	m.state.Phase = sim.PhaseTurnExecution

	var executed []string
	for _, id := range m.state.QueuedActions {
		res := m.catalog.Execute(id, m.state)
		if res.Applied {
			m.state.ApplyEffects(res.Effects)
			executed = append(executed, id)
		}
		m.tracker.RecordAction(m.state.Turn, id, res.Effects.StringKeys())
	}

	published := m.publishPapers()

	var rivalSum float64
	for _, r := range m.rivals {
		rivalSum += r.ProcessTurn(m.state, m.gen).DoomPressure
	}

	doomRes := m.state.Doom.CalculateTurnDelta(m.state.DoomInput(rivalSum))

	reputation := m.state.Resource(events.ResourceReputation)
	switch {
	case doomRes.NewValue <= 0:
		m.state.GameOver = true
		m.state.Victory = true
	case doomRes.NewValue >= 100 || reputation <= 0:
		m.state.GameOver = true
	}

	m.tracker.RecordTurnEnd(m.state.Turn, map[string]float64{
		"currency":   m.state.Resource(events.ResourceCurrency),
		"compute":    m.state.Resource(events.ResourceCompute),
		"research":   m.state.Resource(events.ResourceResearch),
		"papers":     m.state.Resource(events.ResourcePapers),
		"reputation": reputation,
		"doom":       doomRes.NewValue,
	}, m.gen.Draws())

	m.state.Phase = sim.PhaseTurnStart

	return ExecuteResult{
		Success:         true,
		Executed:        executed,
		PapersPublished: published,
		Doom:            doomRes,
		GameOver:        m.state.GameOver,
		Victory:         m.state.Victory,
	}
}

// publishPapers converts accumulated research into published papers at the
// configured threshold. Excess research carries over; each paper grants a
// fixed reputation bonus.
func (m *Manager) publishPapers() int {
	if m.config.ResearchPerPaper <= 0 {
		return 0
	}
	research := m.state.Resource(events.ResourceResearch)
	published := int(research / m.config.ResearchPerPaper)
	if published <= 0 {
		return 0
	}
	m.state.Set(events.ResourceResearch, research-float64(published)*m.config.ResearchPerPaper)
	m.state.Credit(events.ResourcePapers, float64(published))
	m.state.Credit(events.ResourceReputation, m.config.ReputationPerPaper*float64(published))
	return published
}

// #endregion execute-turn
