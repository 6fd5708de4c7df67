package journal

import (
	"path/filepath"
	"reflect"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/torvik/doomloop/internal/risk"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAndGetRun(t *testing.T) {
	s := tempStore(t)

	rec, err := s.CreateRun("seed-1", "doomloop/1.0", "")
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if rec.RunID == "" {
		t.Fatal("expected non-empty run ID")
	}
	if rec.Finished() {
		t.Fatal("new run must not be finished")
	}

	got, err := s.GetRun(rec.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Seed != "seed-1" || got.EngineVersion != "doomloop/1.0" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.Finished() {
		t.Fatal("unfinished run read back as finished")
	}
}

func TestAppendAndReadTurnLog(t *testing.T) {
	s := tempStore(t)
	run, err := s.CreateRun("seed-1", "doomloop/1.0", "")
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}

	turns := []TurnRecord{
		{
			RunID: run.RunID, Turn: 1,
			Actions:   []string{"hire_safety", "buy_compute"},
			DoomValue: 27.18, Digest: "d1", SnapshotJSON: `{"turn":1}`,
		},
		{
			RunID: run.RunID, Turn: 2,
			Actions:        []string{"research_safety"},
			ResolvedEvents: []string{"funding_crisis"},
			Choices:        map[string]string{"funding_crisis": "emergency_fundraise"},
			DoomValue:      28.5, Digest: "d2", SnapshotJSON: `{"turn":2}`,
			PapersPublished: 1,
		},
	}
	for _, rec := range turns {
		if err := s.AppendTurn(rec); err != nil {
			t.Fatalf("AppendTurn(%d): %v", rec.Turn, err)
		}
	}

	log, err := s.TurnLog(run.RunID)
	if err != nil {
		t.Fatalf("TurnLog: %v", err)
	}
	if len(log) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(log))
	}
	if !reflect.DeepEqual(log[0].Actions, turns[0].Actions) {
		t.Fatalf("turn 1 actions %v, want %v", log[0].Actions, turns[0].Actions)
	}
	if !reflect.DeepEqual(log[1].ResolvedEvents, turns[1].ResolvedEvents) {
		t.Fatalf("turn 2 events %v, want %v", log[1].ResolvedEvents, turns[1].ResolvedEvents)
	}
	if log[1].Digest != "d2" || log[1].PapersPublished != 1 {
		t.Fatalf("turn 2 round trip mismatch: %+v", log[1])
	}
	if log[1].Choices["funding_crisis"] != "emergency_fundraise" {
		t.Fatalf("turn 2 choices mismatch: %v", log[1].Choices)
	}
}

func TestAppendTurnRejectsDuplicates(t *testing.T) {
	s := tempStore(t)
	run, _ := s.CreateRun("seed-1", "doomloop/1.0", "")

	rec := TurnRecord{RunID: run.RunID, Turn: 1, Digest: "d1", SnapshotJSON: "{}"}
	if err := s.AppendTurn(rec); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := s.AppendTurn(rec); err == nil {
		t.Fatal("expected duplicate turn append to fail")
	}
}

func TestFinishRun(t *testing.T) {
	s := tempStore(t)
	run, _ := s.CreateRun("seed-1", "doomloop/1.0", "")

	if err := s.FinishRun(run.RunID, "final-digest", 12, true, false); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	got, err := s.GetRun(run.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if !got.Finished() {
		t.Fatal("expected run to be finished")
	}
	if got.FinalDigest != "final-digest" || got.FinalTurn != 12 {
		t.Fatalf("final fields mismatch: %+v", got)
	}
	if !got.GameOver || got.Victory {
		t.Fatalf("terminal flags mismatch: %+v", got)
	}

	if err := s.FinishRun("ghost-run", "d", 1, false, false); err == nil {
		t.Fatal("expected FinishRun on an unknown run to fail")
	}
}

func TestRiskHistoryRoundTrip(t *testing.T) {
	s := tempStore(t)
	run, _ := s.CreateRun("seed-1", "doomloop/1.0", "")

	entries := []risk.HistoryEntry{
		{Pool: risk.PoolFinancialExposure, Delta: 4, Source: "fundraise", Turn: 1},
		{Pool: risk.PoolFinancialExposure, Delta: -2, Source: "decay", Turn: 2},
		{Pool: risk.PoolCapabilityOverhang, Delta: 3, Source: "research_capabilities", Turn: 2},
	}
	if err := s.AppendRiskHistory(run.RunID, entries); err != nil {
		t.Fatalf("AppendRiskHistory: %v", err)
	}
	// Empty appends are fine.
	if err := s.AppendRiskHistory(run.RunID, nil); err != nil {
		t.Fatalf("empty AppendRiskHistory: %v", err)
	}

	got, err := s.RiskHistory(run.RunID)
	if err != nil {
		t.Fatalf("RiskHistory: %v", err)
	}
	if !reflect.DeepEqual(got, entries) {
		t.Fatalf("risk history mismatch:\ngot  %+v\nwant %+v", got, entries)
	}
}

func TestListAndLatestRuns(t *testing.T) {
	s := tempStore(t)
	var last string
	for i := 0; i < 3; i++ {
		run, err := s.CreateRun("seed", "doomloop/1.0", "")
		if err != nil {
			t.Fatalf("CreateRun: %v", err)
		}
		last = run.RunID
	}

	runs, err := s.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}

	latest, err := s.LatestRun()
	if err != nil {
		t.Fatalf("LatestRun: %v", err)
	}
	if latest.RunID != last {
		t.Fatalf("latest run %s, want %s", latest.RunID, last)
	}
}
