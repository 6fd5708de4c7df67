package events

import (
	"testing"

	"github.com/torvik/doomloop/internal/rng"
)

// collectCatalog walks every event the catalog can ever produce.
func collectCatalog() []Event {
	var all []Event
	for _, bySeverity := range riskCatalog {
		for _, variants := range bySeverity {
			all = append(all, variants...)
		}
	}
	all = append(all, ThresholdEvents(Snapshot{Turn: 100, Currency: 0, Reputation: 0})...)
	for _, re := range randomCatalog {
		all = append(all, re.event)
	}
	return all
}

// 1. Every effect key in the whole catalog, including choices, belongs to
// the closed resource set. The engine trusts the catalog at runtime, so
// this is validated here instead.
func TestCatalogEffectsUseClosedResourceSet(t *testing.T) {
	for _, ev := range collectCatalog() {
		for r := range ev.Effects {
			if !KnownResource(r) {
				t.Errorf("event %s uses unknown resource key %q", ev.ID, r)
			}
		}
		for _, c := range ev.Choices {
			for r := range c.Effects {
				if !KnownResource(r) {
					t.Errorf("event %s choice %s uses unknown resource key %q", ev.ID, c.ID, r)
				}
			}
		}
	}
}

// 2. Every event has an id, and choice ids are unique within an event.
func TestCatalogIdentifiers(t *testing.T) {
	for _, ev := range collectCatalog() {
		if ev.ID == "" {
			t.Error("catalog produced an event without an id")
		}
		seen := map[string]bool{}
		for _, c := range ev.Choices {
			if c.ID == "" {
				t.Errorf("event %s has a choice without an id", ev.ID)
			}
			if seen[c.ID] {
				t.Errorf("event %s has duplicate choice id %s", ev.ID, c.ID)
			}
			seen[c.ID] = true
		}
	}
}

// 3. Unknown pool/severity combinations return the zero event, not an error.
func TestRiskEventUnknownCombos(t *testing.T) {
	gen := rng.NewFromString("t1")

	if ev := RiskEvent("volcano_risk", 1, gen); !ev.IsZero() {
		t.Errorf("unknown pool returned event %s", ev.ID)
	}
	if ev := RiskEvent("insider_threat", 9, gen); !ev.IsZero() {
		t.Errorf("unknown severity returned event %s", ev.ID)
	}
}

// 4. Every known pool covers severities 1..3.
func TestRiskEventAllTiersCovered(t *testing.T) {
	gen := rng.NewFromString("t1")
	for pool := range riskCatalog {
		for sev := 1; sev <= 3; sev++ {
			if ev := RiskEvent(pool, sev, gen); ev.IsZero() {
				t.Errorf("pool %s has no event at severity %d", pool, sev)
			}
		}
	}
}

// 5. Same seed, same cell → same variant.
func TestRiskEventDeterministic(t *testing.T) {
	a := RiskEvent("regulatory_attention", 2, rng.NewFromString("t1"))
	b := RiskEvent("regulatory_attention", 2, rng.NewFromString("t1"))
	if a.ID != b.ID {
		t.Fatalf("same seed picked different variants: %s vs %s", a.ID, b.ID)
	}
}

// Funding crisis predicate: turn >= 5 and currency < 50,000.
func TestFundingCrisisPredicate(t *testing.T) {
	fired := func(s Snapshot) bool {
		for _, ev := range ThresholdEvents(s) {
			if ev.ID == "funding_crisis" {
				return true
			}
		}
		return false
	}

	if !fired(Snapshot{Turn: 10, Currency: 40000, Reputation: 50}) {
		t.Error("expected funding_crisis at turn 10 with 40k currency")
	}
	if fired(Snapshot{Turn: 4, Currency: 40000, Reputation: 50}) {
		t.Error("funding_crisis must not fire before turn 5")
	}
	if fired(Snapshot{Turn: 10, Currency: 50000, Reputation: 50}) {
		t.Error("funding_crisis must not fire at or above the 50k floor")
	}
}

// Funding crisis carries the emergency_fundraise choice the turn manager
// resolves in the gate scenario.
func TestFundingCrisisChoices(t *testing.T) {
	evs := ThresholdEvents(Snapshot{Turn: 10, Currency: 40000, Reputation: 50})
	if len(evs) != 1 {
		t.Fatalf("expected exactly 1 event, got %d", len(evs))
	}
	if _, ok := evs[0].Choice("emergency_fundraise"); !ok {
		t.Error("funding_crisis is missing the emergency_fundraise choice")
	}
	if _, ok := evs[0].Choice("accept_acquisition"); !ok {
		t.Error("funding_crisis is missing the accept_acquisition choice")
	}
	if _, ok := evs[0].Choice("nonexistent"); ok {
		t.Error("Choice returned true for an unknown id")
	}
}

// Random events draw once per gated entry whether or not they fire, so the
// generator position after RandomEvents depends only on the turn number.
func TestRandomEventsDrawDiscipline(t *testing.T) {
	gen := rng.NewFromString("t1")
	RandomEvents(Snapshot{Turn: 1}, gen)
	if gen.Draws() != 0 {
		t.Fatalf("no entries are active at turn 1, yet %d draws were consumed", gen.Draws())
	}

	RandomEvents(Snapshot{Turn: 15}, gen)
	if gen.Draws() != 1 {
		t.Fatalf("one entry is active at turn 15, yet %d draws were consumed", gen.Draws())
	}

	RandomEvents(Snapshot{Turn: 25}, gen)
	if gen.Draws() != 3 {
		t.Fatalf("two entries are active at turn 25, expected 3 total draws, got %d", gen.Draws())
	}
}
