// replay verifies recorded games: it re-runs a fixture or a journaled run
// from its seed and compares digests turn by turn. Exit code 0 means the
// record reproduces exactly; 1 means divergence; 2 means the record could
// not be read.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/torvik/doomloop/internal/journal"
	"github.com/torvik/doomloop/internal/replay"
	"github.com/torvik/doomloop/internal/turn"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to journal database (DB mode)")
	runID := flag.String("run", "", "run id to verify (DB mode, default latest)")
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	flag.Parse()

	if (*dbPath == "" && *fixturePath == "") || (*dbPath != "" && *fixturePath != "") {
		fmt.Fprintln(os.Stderr, "usage: replay --db path/to/journal.db [--run id]")
		fmt.Fprintln(os.Stderr, "       replay --fixture path/to/fixture.json")
		os.Exit(2)
	}

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(*fixturePath)
	} else {
		exitCode = runDBMode(*dbPath, *runID)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region fixture-mode

func runFixtureMode(path string) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	res := replay.Verify(f, turn.DefaultConfig())
	for _, m := range res.Mismatches {
		fmt.Printf("DIFF %s\n", m)
	}
	fmt.Printf("\nreplayed %d turns, final digest %s\n", len(res.Run.Turns), res.GotDigest)
	if !res.Match {
		fmt.Printf("Summary: %d divergences\n", len(res.Mismatches))
		return 1
	}
	fmt.Println("Summary: record reproduces exactly")
	return 0
}

// #endregion fixture-mode

// #region db-mode

func runDBMode(dbPath, runID string) int {
	store, err := journal.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open journal: %v\n", err)
		return 2
	}
	defer store.Close()

	var run journal.RunRecord
	if runID != "" {
		run, err = store.GetRun(runID)
	} else {
		run, err = store.LatestRun()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "load run: %v\n", err)
		return 2
	}
	if run.EngineVersion != turn.EngineVersion {
		fmt.Fprintf(os.Stderr, "run %s was recorded by %s, this build is %s\n",
			run.RunID, run.EngineVersion, turn.EngineVersion)
		return 2
	}

	log, err := store.TurnLog(run.RunID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load turn log: %v\n", err)
		return 2
	}
	if len(log) == 0 {
		fmt.Fprintf(os.Stderr, "run %s has no journaled turns\n", run.RunID)
		return 2
	}

	script, err := scriptFromJournal(run, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rebuild script: %v\n", err)
		return 2
	}

	result := replay.Run(script, turn.DefaultConfig())
	return printComparison(run, log, result)
}

// scriptFromJournal rebuilds the replayable script from a run's journal.
func scriptFromJournal(run journal.RunRecord, log []journal.TurnRecord) (replay.Script, error) {
	script := replay.Script{Seed: run.Seed}
	if run.RivalsJSON != "" {
		if err := json.Unmarshal([]byte(run.RivalsJSON), &script.Rivals); err != nil {
			return replay.Script{}, fmt.Errorf("unmarshal rivals: %w", err)
		}
	}
	for _, rec := range log {
		script.Turns = append(script.Turns, replay.TurnScript{
			Actions: rec.Actions,
			Choices: rec.Choices,
		})
	}
	return script, nil
}

// printComparison outputs a per-turn digest comparison and returns the
// exit code.
func printComparison(run journal.RunRecord, log []journal.TurnRecord, result replay.RunResult) int {
	fmt.Printf("run %s (seed %q)\n\n", run.RunID, run.Seed)
	fmt.Printf("%-6s| %-20s| %-20s| %s\n", "Turn", "Journaled", "Replayed", "Match")
	fmt.Printf("%-6s+%-21s+%-21s+%s\n", "------", "---------------------", "---------------------", "------")

	byTurn := make(map[int]replay.TurnOutcome, len(result.Turns))
	for _, out := range result.Turns {
		byTurn[out.Turn] = out
	}

	diverge := 0
	for _, rec := range log {
		got, ok := byTurn[rec.Turn]
		replayed := "(not reached)"
		match := "DIFF"
		if ok {
			replayed = shortDigest(got.Digest)
			if got.Digest == rec.Digest {
				match = "OK"
			}
		}
		if match == "DIFF" {
			diverge++
		}
		fmt.Printf("%-6d| %-20s| %-20s| %s\n", rec.Turn, shortDigest(rec.Digest), replayed, match)
	}

	if run.FinalDigest != "" && run.FinalDigest != result.FinalDigest {
		fmt.Printf("\nfinal digest DIFF: journaled %s, replayed %s\n",
			shortDigest(run.FinalDigest), shortDigest(result.FinalDigest))
		diverge++
	}

	fmt.Printf("\nSummary: %d turns, %d diverge\n", len(log), diverge)
	if diverge > 0 {
		return 1
	}
	return 0
}

func shortDigest(d string) string {
	if len(d) > 16 {
		return d[:16]
	}
	return d
}

// #endregion db-mode
