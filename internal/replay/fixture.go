package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/torvik/doomloop/internal/turn"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture: a recorded
// script plus the digests and per-turn outcomes the replay must reproduce.
type Fixture struct {
	Description      string            `json:"description"`
	Script           Script            `json:"script"`
	ExpectedDigest   string            `json:"expected_digest"`
	ExpectedOutcomes []ExpectedOutcome `json:"expected_outcomes,omitempty"`
}

// ExpectedOutcome captures the recorded result of one turn. Zero-valued
// optional fields are not checked, so fixtures only pin what they care
// about.
type ExpectedOutcome struct {
	Turn            int     `json:"turn"`
	Digest          string  `json:"digest,omitempty"`
	PapersPublished int     `json:"papers_published,omitempty"`
	DoomValue       float64 `json:"doom_value,omitempty"`
	GameOver        bool    `json:"game_over,omitempty"`
	Victory         bool    `json:"victory,omitempty"`
}

// VerifyResult reports how a replay compared against a fixture's
// expectations.
type VerifyResult struct {
	Match      bool
	GotDigest  string
	Mismatches []string
	Run        RunResult
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if f.Script.Seed == "" {
		return nil, fmt.Errorf("fixture %s: script has no seed", path)
	}
	return &f, nil
}

// #endregion fixture-loader

// #region verify

// Verify replays the fixture's script and compares the result against its
// expectations. Every divergence is collected rather than failing fast, so
// one run reports everything that drifted.
func Verify(f *Fixture, config turn.Config) VerifyResult {
	run := Run(f.Script, config)
	res := VerifyResult{GotDigest: run.FinalDigest, Run: run}

	if f.ExpectedDigest != "" && run.FinalDigest != f.ExpectedDigest {
		res.Mismatches = append(res.Mismatches,
			fmt.Sprintf("final digest: got %s, want %s", run.FinalDigest, f.ExpectedDigest))
	}

	byTurn := make(map[int]TurnOutcome, len(run.Turns))
	for _, out := range run.Turns {
		byTurn[out.Turn] = out
	}
	for _, want := range f.ExpectedOutcomes {
		got, ok := byTurn[want.Turn]
		if !ok {
			res.Mismatches = append(res.Mismatches,
				fmt.Sprintf("turn %d: expected but never reached", want.Turn))
			continue
		}
		if want.Digest != "" && got.Digest != want.Digest {
			res.Mismatches = append(res.Mismatches,
				fmt.Sprintf("turn %d digest: got %s, want %s", want.Turn, got.Digest, want.Digest))
		}
		if want.PapersPublished != 0 && got.PapersPublished != want.PapersPublished {
			res.Mismatches = append(res.Mismatches,
				fmt.Sprintf("turn %d papers: got %d, want %d", want.Turn, got.PapersPublished, want.PapersPublished))
		}
		if want.DoomValue != 0 && got.DoomValue != want.DoomValue {
			res.Mismatches = append(res.Mismatches,
				fmt.Sprintf("turn %d doom: got %f, want %f", want.Turn, got.DoomValue, want.DoomValue))
		}
		if want.GameOver != got.GameOver {
			res.Mismatches = append(res.Mismatches,
				fmt.Sprintf("turn %d game_over: got %t, want %t", want.Turn, got.GameOver, want.GameOver))
		}
		if want.Victory != got.Victory {
			res.Mismatches = append(res.Mismatches,
				fmt.Sprintf("turn %d victory: got %t, want %t", want.Turn, got.Victory, want.Victory))
		}
	}

	res.Match = len(res.Mismatches) == 0
	return res
}

// #endregion verify
