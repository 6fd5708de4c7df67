// Package events is the event catalog: it maps risk-pool conditions and
// simple state predicates to discrete game events with closed-key effect
// maps. Events are generated on demand from (pool, severity, generator
// draw); the catalog holds no mutable state.
package events

import "github.com/torvik/doomloop/internal/rng"

// #region risk-events

// riskCatalog holds event variants per pool and severity (1..3). When a
// pool/severity cell has several variants, the generator picks one; a draw
// is consumed even for single-variant cells so the draw sequence depends
// only on which cells fire, never on catalog size.
var riskCatalog = map[string]map[int][]Event{
	"capability_overhang": {
		1: {{
			ID: "capability_surprise", Name: "Capability surprise",
			Description: "An internal eval shows a jump nobody predicted.",
			Effects:     Effects{ResourceDoom: 2, ResourceResearch: 5},
		}},
		2: {{
			ID: "emergent_behavior", Name: "Emergent behavior",
			Description: "A deployed model does something it was never trained for.",
			Effects:     Effects{ResourceDoom: 5, ResourceReputation: -3},
		}},
		3: {{
			ID: "capability_overhang_break", Name: "Overhang breaks",
			Description: "Accumulated capability lands all at once.",
			Effects:     Effects{ResourceDoom: 12, ResourceReputation: -5},
		}},
	},
	"financial_exposure": {
		1: {{
			ID: "budget_overrun", Name: "Budget overrun",
			Description: "Compute bills came in well above forecast.",
			Effects:     Effects{ResourceCurrency: -8000},
		}},
		2: {{
			ID: "investor_pullout", Name: "Investor pullout",
			Description: "A major backer walks over burn-rate concerns.",
			Effects:     Effects{ResourceCurrency: -25000, ResourceReputation: -2},
		}},
		3: {{
			ID: "insolvency_scare", Name: "Insolvency scare",
			Description: "Payroll clears by hours. Staff notice.",
			Effects:     Effects{ResourceCurrency: -40000, ResourceReputation: -6},
		}},
	},
	"insider_threat": {
		1: {{
			ID: "leaked_memo", Name: "Leaked memo",
			Description: "An internal doc shows up on a forum.",
			Effects:     Effects{ResourceReputation: -2},
		}},
		2: {{
			ID: "weights_exfiltration_attempt", Name: "Exfiltration attempt",
			Description: "Someone tried to walk out with a checkpoint.",
			Effects:     Effects{ResourceDoom: 4, ResourceReputation: -3},
		}},
		3: {{
			ID: "weights_stolen", Name: "Weights stolen",
			Description: "A frontier checkpoint is confirmed outside the lab.",
			Effects:     Effects{ResourceDoom: 10, ResourceReputation: -8},
		}},
	},
	"public_awareness": {
		1: {{
			ID: "viral_thread", Name: "Viral thread",
			Description: "A thread about the lab's safety posture takes off.",
			Effects:     Effects{ResourceReputation: -1},
		}},
		2: {{
			ID: "documentary_feature", Name: "Documentary feature",
			Description: "A streaming documentary names the lab directly.",
			Effects:     Effects{ResourceReputation: -4, ResourceCurrency: -5000},
		}},
		3: {{
			ID: "mass_protest", Name: "Mass protest",
			Description: "Protesters block the office entrance for a week.",
			Effects:     Effects{ResourceReputation: -7, ResourceResearch: -10},
		}},
	},
	"regulatory_attention": {
		1: {{
			ID: "information_request", Name: "Information request",
			Description: "A regulator asks pointed questions about evals.",
			Effects:     Effects{ResourceCurrency: -3000},
		}},
		2: {{
			ID: "compliance_audit", Name: "Compliance audit",
			Description: "Auditors occupy a conference room for a month.",
			Effects:     Effects{ResourceCurrency: -15000, ResourceResearch: -5},
		}},
		3: {{
			ID: "operations_injunction", Name: "Operations injunction",
			Description: "A court order halts the flagship training run.",
			Effects:     Effects{ResourceCurrency: -30000, ResourceResearch: -20, ResourceReputation: -4},
		}},
	},
	"research_integrity": {
		1: {{
			ID: "retracted_figure", Name: "Retracted figure",
			Description: "A headline benchmark number doesn't replicate.",
			Effects:     Effects{ResourceReputation: -2, ResourcePapers: -1},
		}},
		2: {{
			ID: "benchmark_gaming_expose", Name: "Benchmark gaming exposé",
			Description: "A blog post shows the eval suite leaked into training.",
			Effects:     Effects{ResourceReputation: -5, ResourceResearch: -8},
		}},
		3: {{
			ID: "fabrication_scandal", Name: "Fabrication scandal",
			Description: "A senior researcher fabricated a flagship result.",
			Effects:     Effects{ResourceReputation: -10, ResourcePapers: -2, ResourceResearch: -15},
		}},
	},
}

// RiskEvent returns an event for the given pool and severity, drawing from
// the generator to pick among variants. Unknown pool/severity combinations
// return the zero event, not an error.
func RiskEvent(pool string, severity int, gen *rng.Generator) Event {
	bySeverity, ok := riskCatalog[pool]
	if !ok {
		return Event{}
	}
	variants, ok := bySeverity[severity]
	if !ok || len(variants) == 0 {
		return Event{}
	}
	return variants[gen.Intn(len(variants))]
}

// #endregion risk-events

// #region threshold-events

// fundingCrisisTurn is the earliest turn the funding crisis can trigger.
const fundingCrisisTurn = 5

// fundingCrisisFloor is the currency level below which the crisis triggers.
const fundingCrisisFloor = 50000

// ThresholdEvents returns deterministic events whose boolean predicates
// over the state snapshot hold this turn. No generator draws are consumed.
func ThresholdEvents(s Snapshot) []Event {
	var out []Event

	if s.Turn >= fundingCrisisTurn && s.Currency < fundingCrisisFloor {
		out = append(out, Event{
			ID:          "funding_crisis",
			Name:        "Funding crisis",
			Description: "Runway is down to weeks. The board wants a plan today.",
			Choices: []Choice{
				{
					ID: "emergency_fundraise", Label: "Emergency fundraise",
					Effects: Effects{ResourceCurrency: 25000, ResourceReputation: -3},
				},
				{
					ID: "accept_acquisition", Label: "Accept acquisition offer",
					Effects: Effects{ResourceCurrency: 80000, ResourceReputation: -10, ResourceDoom: 5},
				},
			},
		})
	}

	if s.Turn >= 8 && s.Reputation <= 10 {
		out = append(out, Event{
			ID:          "credibility_collapse",
			Name:        "Credibility collapse",
			Description: "Partners stop returning calls. Something has to give.",
			Choices: []Choice{
				{
					ID: "public_apology", Label: "Public apology tour",
					Effects: Effects{ResourceReputation: 8, ResourceCurrency: -10000},
				},
				{
					ID: "leadership_shakeup", Label: "Leadership shakeup",
					Effects: Effects{ResourceReputation: 12, ResourceResearch: -10},
				},
			},
		})
	}

	return out
}

// #endregion threshold-events

// #region random-events

// randomEvent pairs a purely random event with its gate: a minimum turn
// and a per-turn probability.
type randomEvent struct {
	minTurn int
	chance  float64
	event   Event
}

// randomCatalog is iterated in declaration order; a draw is consumed for
// every entry whose minimum turn has passed, fired or not, so the draw
// sequence is a function of turn number alone.
var randomCatalog = []randomEvent{
	{
		minTurn: 15,
		chance:  0.08,
		event: Event{
			ID:          "talent_poaching",
			Name:        "Talent poaching",
			Description: "A rival lab is picking off senior staff with absurd offers.",
			Effects:     Effects{ResourceReputation: -2, ResourceResearch: -5},
		},
	},
	{
		minTurn: 20,
		chance:  0.05,
		event: Event{
			ID:          "compute_donation",
			Name:        "Compute donation",
			Description: "A sympathetic cloud provider donates a cluster allocation.",
			Effects:     Effects{ResourceCompute: 40},
		},
	},
}

// RandomEvents returns the purely random events that fire this turn.
func RandomEvents(s Snapshot, gen *rng.Generator) []Event {
	var out []Event
	for _, re := range randomCatalog {
		if s.Turn < re.minTurn {
			continue
		}
		if gen.Chance(re.chance) {
			out = append(out, re.event)
		}
	}
	return out
}

// #endregion random-events
